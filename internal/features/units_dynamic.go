package features

import (
	"fmt"
	"math"

	"github.com/pkmn-analytics/battle-features/internal/gamedata"
)

// stallThreshold is the hp-diff change, in percentage points, below which a
// turn counts as stalled.
const stallThreshold = 5.0

func dynamicUnits() []Unit {
	return []Unit{
		{
			Name:    "seen_state",
			Dynamic: true,
			Columns: numeric("hp_advantage_seen", "mons_revealed_diff", "team_status_diff",
				"fainted_mons_diff", "status_inflicted_diff", "num_turns", "first_faint_turn", "first_ko_turn"),
			Compute: func(s *BattleState, r Row) {
				p1, p2 := s.P1.Seen, s.P2.Seen
				r.Set("hp_advantage_seen", p1.TotalHP()-p2.TotalHP())
				r.Set("mons_revealed_diff", float64(p2.Len()-p1.Len()))
				r.Set("team_status_diff", float64(p1.StatusCount()-p2.StatusCount()))
				r.Set("fainted_mons_diff", float64(p2.FaintedCount()-p1.FaintedCount()))
				r.Set("status_inflicted_diff", float64(p2.StatusCount()-p1.StatusCount()))
				r.Set("num_turns", float64(s.LastTurn))
				r.Set("first_faint_turn", float64(s.FirstFaintTurn))
				r.Set("first_ko_turn", float64(s.FirstKOTurn))
			},
		},
		{
			Name:    "weighted_status",
			Dynamic: true,
			Columns: numeric("weighted_status_diff"),
			Compute: func(s *BattleState, r Row) {
				r.Set("weighted_status_diff", s.P1.Seen.StatusWeight()-s.P2.Seen.StatusWeight())
			},
		},
		{
			Name:    "move_usage",
			Dynamic: true,
			Columns: numeric("status_move_diff", "setup_move_diff", "key_attack_diff",
				"total_base_power_diff", "move_power_diff", "move_diversity_diff"),
			Compute: func(s *BattleState, r Row) {
				p1, p2 := s.P1, s.P2
				r.Set("status_move_diff", float64(p1.StatusMoves-p2.StatusMoves))
				r.Set("setup_move_diff", float64(p1.SetupMoves-p2.SetupMoves))
				r.Set("key_attack_diff", float64(p1.KeyAttacks-p2.KeyAttacks))
				r.Set("total_base_power_diff", p1.BasePower-p2.BasePower)
				r.Set("move_power_diff", safeDiv(p1.BasePower, float64(p1.MovesUsed))-safeDiv(p2.BasePower, float64(p2.MovesUsed)))
				r.Set("move_diversity_diff", float64(len(p1.MoveTypes)-len(p2.MoveTypes)))
			},
		},
		{
			Name:    "active_state",
			Dynamic: true,
			Columns: numeric("end_boost_diff", "hp_advantage_active", "volatile_status_diff"),
			Compute: func(s *BattleState, r Row) {
				r.Set("end_boost_diff", s.P1.EndBoost-s.P2.EndBoost)
				r.Set("hp_advantage_active", s.P1.ActiveHPEnd-s.P2.ActiveHPEnd)
				r.Set("volatile_status_diff", float64(s.P2.ConfusedTurns-s.P1.ConfusedTurns))
			},
		},
		{
			Name:    "damage",
			Dynamic: true,
			Columns: numeric(append(checkpointColumns(),
				"total_damage_dealt", "total_healing_done",
				"damage_ratio_turn10_20", "damage_ratio_turn10_30",
				"damage_ratio_turn20_25", "damage_ratio_turn25_30",
				"hp_vs_stats_ratio")...),
			Compute: computeDamage,
		},
		{
			Name:    "hp_series",
			Dynamic: true,
			Columns: numeric("p1_hp_mean", "p2_hp_mean", "hp_diff_mean", "hp_diff_std",
				"hp_diff_range", "hp_diff_last", "hp_trend_diff"),
			Compute: func(s *BattleState, r Row) {
				r.Set("p1_hp_mean", mean(s.P1.HP))
				r.Set("p2_hp_mean", mean(s.P2.HP))
				r.Set("hp_diff_mean", mean(s.HPDiff))
				r.Set("hp_diff_std", stddev(s.HPDiff))
				r.Set("hp_diff_range", span(s.HPDiff))
				r.Set("hp_diff_last", last(s.HPDiff))
				r.Set("hp_trend_diff", trend(s.HPDiff))
			},
		},
		{
			Name:    "momentum",
			Dynamic: true,
			Columns: numeric("momentum_flips", "momentum_shift_turn", "comeback_score",
				"early_sustain", "stall_ratio", "aggression_index"),
			Compute: computeMomentum,
		},
		{
			Name:    "boosts",
			Dynamic: true,
			Columns: numeric("p1_boost_mean", "p2_boost_mean", "boost_diff_mean", "boost_volatility", "boost_trend"),
			Compute: func(s *BattleState, r Row) {
				r.Set("p1_boost_mean", mean(s.P1.Boosts))
				r.Set("p2_boost_mean", mean(s.P2.Boosts))
				r.Set("boost_diff_mean", mean(s.BoostDiff))
				r.Set("boost_volatility", stddev(s.BoostDiff))
				r.Set("boost_trend", trend(s.BoostDiff))
			},
		},
		{
			Name:    "status_dynamics",
			Dynamic: true,
			Columns: numeric("status_turns", "p1_status_total", "p2_status_total", "status_balance"),
			Compute: func(s *BattleState, r Row) {
				p1, p2 := sum(s.P1.Statused), sum(s.P2.Statused)
				r.Set("status_turns", s.StatusTurns)
				r.Set("p1_status_total", p1)
				r.Set("p2_status_total", p2)
				r.Set("status_balance", p1-p2)
			},
		},
		{
			Name:    "actions",
			Dynamic: true,
			Columns: numeric("switch_diff", "p1_aggression", "p2_aggression", "aggression_diff"),
			Compute: func(s *BattleState, r Row) {
				turns := float64(s.Turns)
				a1 := safeDiv(float64(s.P1.Attacks), turns)
				a2 := safeDiv(float64(s.P2.Attacks), turns)
				r.Set("switch_diff", float64(s.P1.Switches-s.P2.Switches))
				r.Set("p1_aggression", a1)
				r.Set("p2_aggression", a2)
				r.Set("aggression_diff", a1-a2)
			},
		},
		{
			Name:    "lead_occupancy",
			Dynamic: true,
			Columns: numeric("p1_lead_stay_duration", "p2_lead_stay_duration", "p1_lead_forced_out", "p2_lead_forced_out"),
			Compute: func(s *BattleState, r Row) {
				for _, side := range []*SideState{s.P1, s.P2} {
					p := side.Side.String()
					r.Set(p+"_lead_stay_duration", float64(side.LeadStay))
					r.Set(p+"_lead_forced_out", boolFloat(side.LeadForcedOut))
				}
			},
		},
		{
			Name:    "seen_encoding",
			Dynamic: true,
			Columns: numeric(append(prefixed("p1_seen_", gamedata.RankedSpecies()), prefixed("p2_seen_", gamedata.RankedSpecies())...)...),
			Compute: func(s *BattleState, r Row) {
				ranked := gamedata.RankedSpecies()
				for _, side := range []*SideState{s.P1, s.P2} {
					enc := gamedata.EncodeSeen(side.TimelineSeen)
					for i, name := range ranked {
						r.Set(side.Side.String()+"_seen_"+name, enc[i])
					}
				}
			},
		},
		{
			Name:    "team_similarity",
			Dynamic: true,
			Columns: numeric("team_emb_sim"),
			Compute: func(s *BattleState, r Row) {
				a := gamedata.MeanEmbedding(s.P1.Seen.Names())
				b := gamedata.MeanEmbedding(s.P2.Seen.Names())
				r.Set("team_emb_sim", cosine(a[:], b[:]))
			},
		},
	}
}

func checkpointColumns() []string {
	cols := make([]string, len(CheckpointTurns))
	for i, t := range CheckpointTurns {
		cols[i] = fmt.Sprintf("damage_diff_turn%d", t)
	}
	return cols
}

func computeDamage(s *BattleState, r Row) {
	for i, name := range checkpointColumns() {
		r.Set(name, s.Checkpoints[i])
	}
	cp := s.Checkpoints
	r.Set("total_damage_dealt", s.DamageDealt)
	r.Set("total_healing_done", s.P1.Healing)
	r.Set("damage_ratio_turn10_20", safeDiv(cp[0], cp[1]))
	r.Set("damage_ratio_turn10_30", safeDiv(cp[0], cp[3]))
	r.Set("damage_ratio_turn20_25", safeDiv(cp[1], cp[2]))
	r.Set("damage_ratio_turn25_30", safeDiv(cp[2], cp[3]))

	statsDiff := s.P1.Lead.Stats().Total() - s.P2.Lead.Stats().Total()
	r.Set("hp_vs_stats_ratio", safeDiv(s.P1.Seen.TotalHP()-s.P2.Seen.TotalHP(), statsDiff))
}

func computeMomentum(s *BattleState, r Row) {
	d := s.HPDiff
	flips, shift := signFlips(d)
	r.Set("momentum_flips", float64(flips))
	r.Set("momentum_shift_turn", float64(shift))

	var comeback, early float64
	if len(d) > 0 {
		mid := d[len(d)/2]
		comeback = math.Abs(last(d) - mid)
		early = mid - d[0]
	}
	r.Set("comeback_score", comeback)
	r.Set("early_sustain", early)

	changes := deltas(d)
	stalled := 0.0
	for i, c := range changes {
		changes[i] = math.Abs(c)
		if changes[i] < stallThreshold {
			stalled++
		}
	}
	stall := safeDiv(stalled, float64(len(changes)))
	aggression := 0.0
	if len(changes) > 0 {
		aggression = (1 - stall) * mean(changes)
	}
	r.Set("stall_ratio", stall)
	r.Set("aggression_index", aggression)
}
