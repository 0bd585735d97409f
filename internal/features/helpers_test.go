package features

import (
	"math"
	"testing"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

func strPtr(s string) *string { return &s }

func mon(name string, types ...string) models.Pokemon {
	return models.Pokemon{Name: name, Level: models.Float(100), Types: types}
}

func activeState(name string, hp float64) *models.PokemonState {
	return &models.PokemonState{Name: name, HPPct: models.Float(hp)}
}

func move(name, typ string, power float64) *models.MoveDetails {
	return &models.MoveDetails{Name: name, Type: typ, BasePower: models.Float(power)}
}

// alakazamVsSnorlax is a three-turn battle where Snorlax drops 100 -> 60 -> 0
// while Alakazam stays healthy.
func alakazamVsSnorlax() models.BattleRecord {
	lead := mon("Snorlax", "normal")
	return models.BattleRecord{
		BattleID:  "e2e",
		PlayerWon: models.Bool(true),
		P1Team: []models.Pokemon{
			mon("Alakazam", "psychic"),
			mon("Chansey", "normal"),
			mon("Tauros", "normal"),
		},
		P2Lead: &lead,
		Timeline: []models.TurnSnapshot{
			{
				Turn:     1,
				P1State:  activeState("Alakazam", 100),
				P2State:  activeState("Snorlax", 100),
				P1Move:   move("Thunder Wave", "electric", 0),
				P2Move:   move("Body Slam", "normal", 85),
				P1Action: models.ActionAttack,
				P2Action: models.ActionAttack,
			},
			{
				Turn:     2,
				P1State:  activeState("Alakazam", 100),
				P2State:  &models.PokemonState{Name: "Snorlax", HPPct: models.Float(60), Status: strPtr("par")},
				P1Move:   move("Psychic", "psychic", 90),
				P2Move:   move("Amnesia", "psychic", 0),
				P1Action: models.ActionAttack,
				P2Action: models.ActionAttack,
			},
			{
				Turn:     3,
				P1State:  activeState("Alakazam", 100),
				P2State:  activeState("Snorlax", 0),
				P1Move:   move("Psychic", "psychic", 90),
				P1Action: models.ActionAttack,
			},
		},
	}
}

func mustExtractor(t testing.TB, profile string, opts ...Option) *Extractor {
	t.Helper()
	p, err := DefaultProfiles().Get(profile)
	if err != nil {
		t.Fatalf("profile %q: %v", profile, err)
	}
	e, err := New(p, opts...)
	if err != nil {
		t.Fatalf("New(%q): %v", profile, err)
	}
	return e
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
