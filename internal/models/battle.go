package models

import (
	"github.com/pkmn-analytics/battle-features/internal/gamedata"
)

// Side identifies one of the two players.
type Side int

const (
	Player1 Side = 1
	Player2 Side = 2
)

func (s Side) String() string {
	if s == Player1 {
		return "p1"
	}
	return "p2"
}

// Action is the categorical action a player took in a turn
type Action string

const (
	ActionNone   Action = ""
	ActionAttack Action = "attack"
	ActionSwitch Action = "switch"
)

// BattleRecord is one battle as it appears in the JSONL logs
type BattleRecord struct {
	BattleID  FlexID         `json:"battle_id" validate:"required"`
	P1Team    []Pokemon      `json:"p1_team_details" validate:"required,min=1,dive"`
	P2Lead    *Pokemon       `json:"p2_lead_details" validate:"required"`
	Timeline  []TurnSnapshot `json:"battle_timeline"`
	PlayerWon FlexBool       `json:"player_won"`
}

// P1Lead returns the first roster member of player 1. Callers must have
// validated the record first.
func (b *BattleRecord) P1Lead() Pokemon {
	return b.P1Team[0]
}

// Lead returns the pre-battle lead for a side.
func (b *BattleRecord) Lead(side Side) Pokemon {
	if side == Player1 {
		return b.P1Lead()
	}
	return *b.P2Lead
}

// KnownRoster returns the species known before the battle starts: player 1's
// full team, but only the revealed lead for player 2.
func (b *BattleRecord) KnownRoster(side Side) []string {
	if side == Player2 {
		return []string{b.P2Lead.Name}
	}
	names := make([]string, 0, len(b.P1Team))
	for _, p := range b.P1Team {
		names = append(names, p.Name)
	}
	return names
}

// Pokemon is a roster descriptor. Stats may be missing in the logs; use
// Stats() to read a complete stat line.
type Pokemon struct {
	Name    string    `json:"name" validate:"required"`
	Level   FlexFloat `json:"level"`
	Types   []string  `json:"types,omitempty"`
	BaseHP  FlexFloat `json:"base_hp"`
	BaseAtk FlexFloat `json:"base_atk"`
	BaseDef FlexFloat `json:"base_def"`
	BaseSpA FlexFloat `json:"base_spa"`
	BaseSpD FlexFloat `json:"base_spd"`
	BaseSpe FlexFloat `json:"base_spe"`
}

// Stats returns the descriptor's base stats. Missing values are filled from
// the species table, which itself falls back to the neutral stat line.
func (p Pokemon) Stats() gamedata.Stats {
	ref := gamedata.BaseStats(p.Name)
	return gamedata.Stats{
		HP:  p.BaseHP.Or(ref.HP),
		Atk: p.BaseAtk.Or(ref.Atk),
		Def: p.BaseDef.Or(ref.Def),
		SpA: p.BaseSpA.Or(ref.SpA),
		SpD: p.BaseSpD.Or(ref.SpD),
		Spe: p.BaseSpe.Or(ref.Spe),
	}
}

// TurnSnapshot is the observed state of one battle turn. Every optional part
// is a pointer; nil means "not observed this turn".
type TurnSnapshot struct {
	Turn     int           `json:"turn"`
	P1State  *PokemonState `json:"p1_pokemon_state,omitempty"`
	P2State  *PokemonState `json:"p2_pokemon_state,omitempty"`
	P1Move   *MoveDetails  `json:"p1_move_details,omitempty"`
	P2Move   *MoveDetails  `json:"p2_move_details,omitempty"`
	P1Action Action        `json:"p1_action,omitempty"`
	P2Action Action        `json:"p2_action,omitempty"`
}

// State returns the side's active Pokémon state, or nil.
func (t *TurnSnapshot) State(side Side) *PokemonState {
	if side == Player1 {
		return t.P1State
	}
	return t.P2State
}

// Move returns the side's move this turn, or nil.
func (t *TurnSnapshot) Move(side Side) *MoveDetails {
	if side == Player1 {
		return t.P1Move
	}
	return t.P2Move
}

// Action returns the side's action this turn.
func (t *TurnSnapshot) Action(side Side) Action {
	if side == Player1 {
		return t.P1Action
	}
	return t.P2Action
}

// PokemonState is the active Pokémon of one side during a turn
type PokemonState struct {
	Name            string             `json:"name"`
	HPPct           FlexFloat          `json:"hp_pct"`
	Status          *string            `json:"status,omitempty"`
	VolatileEffects []string           `json:"volatile_effects,omitempty"`
	Boosts          map[string]float64 `json:"boosts,omitempty"`
}

// Named reports whether the state identifies a Pokémon.
func (s *PokemonState) Named() bool {
	return s != nil && s.Name != ""
}

// BoostSum adds up all boost stages. A nil state has no boosts.
func (s *PokemonState) BoostSum() float64 {
	if s == nil {
		return 0
	}
	total := 0.0
	for _, v := range s.Boosts {
		total += v
	}
	return total
}

// HasVolatile reports whether the named volatile effect is active.
func (s *PokemonState) HasVolatile(effect string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.VolatileEffects {
		if gamedata.NormalizeName(e) == effect {
			return true
		}
	}
	return false
}

// MoveDetails is the move a side used in a turn
type MoveDetails struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Category  string    `json:"category,omitempty"`
	BasePower FlexFloat `json:"base_power"`
	Accuracy  FlexFloat `json:"accuracy"`
	Priority  int       `json:"priority,omitempty"`
}
