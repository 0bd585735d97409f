package features

import (
	"github.com/pkmn-analytics/battle-features/internal/gamedata"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

// CheckpointTurns are the turns at which damage snapshots are captured.
var CheckpointTurns = [...]int{10, 20, 25, 30}

const confusion = "confusion"

// SideState is everything accumulated for one player over the timeline.
type SideState struct {
	Side models.Side
	Lead models.Pokemon
	Seen *SeenState

	// Per-turn series, one entry per snapshot.
	HP       []float64 // total hp_pct over all known Pokémon
	Boosts   []float64 // boost-stage sum of the active Pokémon
	Statused []float64 // known Pokémon with a status condition

	StatusMoves int
	SetupMoves  int
	KeyAttacks  int
	MovesUsed   int
	BasePower   float64
	MoveTypes   map[string]struct{}

	Switches int
	Attacks  int

	ConfusedTurns int
	Healing       float64

	LeadStay      int
	LeadForcedOut bool
	lastActive    string

	ActiveHPEnd float64
	EndBoost    float64

	// Names seen in timeline states, in first-seen order.
	TimelineSeen []string
	timelineKeys map[string]struct{}
}

func newSideState(side models.Side, lead models.Pokemon, roster []string) *SideState {
	return &SideState{
		Side:         side,
		Lead:         lead,
		Seen:         newSeenState(roster...),
		MoveTypes:    make(map[string]struct{}),
		ActiveHPEnd:  FullHP,
		lastActive:   gamedata.NormalizeName(lead.Name),
		timelineKeys: make(map[string]struct{}),
	}
}

// BattleState is the accumulated result of one forward pass over a battle's
// timeline. Feature units read it; nothing writes to it after Accumulate.
type BattleState struct {
	Battle *models.BattleRecord
	P1     *SideState
	P2     *SideState

	Turns    int // snapshots in the timeline
	LastTurn int // turn number of the final snapshot

	HPDiff    []float64 // P1.HP - P2.HP per turn
	BoostDiff []float64 // P1.Boosts - P2.Boosts per turn

	StatusTurns    float64
	DamageDealt    float64
	FirstFaintTurn int
	FirstKOTurn    int

	// P2 total minus P1 total at each of CheckpointTurns.
	Checkpoints [len(CheckpointTurns)]float64
	captured    [len(CheckpointTurns)]bool
}

// Side returns the state for one player.
func (s *BattleState) Side(side models.Side) *SideState {
	if side == models.Player1 {
		return s.P1
	}
	return s.P2
}

// Accumulate runs the single forward pass over b's timeline. b must already be
// validated.
func Accumulate(b *models.BattleRecord) *BattleState {
	s := &BattleState{
		Battle: b,
		P1:     newSideState(models.Player1, b.P1Lead(), b.KnownRoster(models.Player1)),
		P2:     newSideState(models.Player2, *b.P2Lead, b.KnownRoster(models.Player2)),
		Turns:  len(b.Timeline),
	}

	n := len(b.Timeline)
	if n == 0 {
		return s
	}
	s.LastTurn = b.Timeline[n-1].Turn

	s.P1.HP = make([]float64, 0, n)
	s.P2.HP = make([]float64, 0, n)
	s.HPDiff = make([]float64, 0, n)
	s.BoostDiff = make([]float64, 0, n)

	for i := range b.Timeline {
		turn := &b.Timeline[i]
		final := i == n-1

		for _, side := range []*SideState{s.P1, s.P2} {
			side.observe(turn, i, final)
		}

		if st := turn.P2State; st != nil && st.HPPct.Valid {
			s.DamageDealt += max(0, FullHP-st.HPPct.Value)
		}

		p1Total, p2Total := s.P1.Seen.TotalHP(), s.P2.Seen.TotalHP()
		s.P1.HP = append(s.P1.HP, p1Total)
		s.P2.HP = append(s.P2.HP, p2Total)
		s.HPDiff = append(s.HPDiff, p1Total-p2Total)
		s.BoostDiff = append(s.BoostDiff, s.P1.Boosts[i]-s.P2.Boosts[i])
		s.StatusTurns += s.P1.Statused[i] + s.P2.Statused[i]

		if s.FirstFaintTurn == 0 && (s.P1.Seen.FaintedCount() > 0 || s.P2.Seen.FaintedCount() > 0) {
			s.FirstFaintTurn = turn.Turn
		}
		if s.FirstKOTurn == 0 && (activeFainted(turn.P1State) || activeFainted(turn.P2State)) {
			s.FirstKOTurn = turn.Turn
		}

		s.captureCheckpoints(turn.Turn, final, p2Total-p1Total)
	}
	return s
}

// captureCheckpoints records the damage difference at each checkpoint turn.
// A checkpoint the battle never reaches takes the final turn's value; one the
// turn numbering skips over takes the first turn past it.
func (s *BattleState) captureCheckpoints(turn int, final bool, damageDiff float64) {
	for k, cp := range CheckpointTurns {
		if s.captured[k] {
			continue
		}
		if turn >= cp || final {
			s.Checkpoints[k] = damageDiff
			s.captured[k] = true
		}
	}
}

func activeFainted(st *models.PokemonState) bool {
	return st != nil && st.HPPct.Valid && st.HPPct.Value == 0
}

// observe applies one snapshot to the side and appends its per-turn series.
func (ss *SideState) observe(turn *models.TurnSnapshot, index int, final bool) {
	st := turn.State(ss.Side)

	if st.Named() {
		prev := ss.Seen.Observe(st)
		if st.HPPct.Valid && st.HPPct.Value > prev {
			ss.Healing += st.HPPct.Value - prev
		}

		key := gamedata.NormalizeName(st.Name)
		if _, ok := ss.timelineKeys[key]; !ok {
			ss.timelineKeys[key] = struct{}{}
			ss.TimelineSeen = append(ss.TimelineSeen, st.Name)
		}

		lead := gamedata.NormalizeName(ss.Lead.Name)
		if key == lead {
			ss.LeadStay++
		}
		if index > 0 && key != ss.lastActive && ss.lastActive == lead {
			ss.LeadForcedOut = true
		}
		ss.lastActive = key
	}

	if st.HasVolatile(confusion) {
		ss.ConfusedTurns++
	}

	ss.Boosts = append(ss.Boosts, st.BoostSum())
	ss.Statused = append(ss.Statused, float64(ss.Seen.StatusCount()))

	if mv := turn.Move(ss.Side); mv != nil {
		ss.MovesUsed++
		if gamedata.IsStatusMove(mv.Name) {
			ss.StatusMoves++
		}
		if gamedata.IsSetupMove(mv.Name) {
			ss.SetupMoves++
		}
		if gamedata.IsKeyAttack(mv.Name) {
			ss.KeyAttacks++
		}
		ss.BasePower += mv.BasePower.Or(0)
		ss.MoveTypes[gamedata.NormalizeType(mv.Type)] = struct{}{}
	}

	switch turn.Action(ss.Side) {
	case models.ActionSwitch:
		ss.Switches++
	case models.ActionAttack:
		ss.Attacks++
	}

	if final {
		ss.EndBoost = st.BoostSum()
		ss.ActiveHPEnd = 0
		if st != nil {
			ss.ActiveHPEnd = st.HPPct.Or(0)
		}
	}
}
