package models

import (
	"encoding/json"
	"testing"
)

func TestFlexUnmarshal_AllStrings(t *testing.T) {
	input := `{"battle_id": "42", "player_won": "true", "p1_team_details": [{"name": "alakazam", "level": "100", "types": ["psychic", "notype"], "base_hp": "55", "base_atk": "50", "base_def": "45", "base_spa": "135", "base_spd": "81", "base_spe": "120"}], "p2_lead_details": {"name": "snorlax", "base_hp": "160"}, "battle_timeline": [{"turn": 1, "p1_pokemon_state": {"name": "alakazam", "hp_pct": "100", "status": "nostatus"}, "p2_move_details": {"name": "body slam", "type": "normal", "base_power": "85"}}]}`

	var b BattleRecord
	if err := json.Unmarshal([]byte(input), &b); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if b.BattleID != "42" {
		t.Errorf("BattleID = %q, want 42", b.BattleID)
	}
	if !b.PlayerWon.Valid || !b.PlayerWon.Value {
		t.Errorf("PlayerWon = %+v, want true", b.PlayerWon)
	}
	lead := b.P1Lead()
	if lead.BaseSpA.Value != 135 || lead.Level.Value != 100 {
		t.Errorf("lead stats = %+v", lead)
	}
	if got := b.Timeline[0].P1State.HPPct; !got.Valid || got.Value != 100 {
		t.Errorf("HPPct = %+v, want 100", got)
	}
	if got := b.Timeline[0].P2Move.BasePower.Value; got != 85 {
		t.Errorf("BasePower = %v, want 85", got)
	}
	if b.Timeline[0].P2State != nil {
		t.Error("P2State should be nil when absent")
	}

	for _, raw := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Inf"`, `"infinity"`, `"+Infinity"`} {
		t.Run(raw, func(t *testing.T) {
			var f FlexFloat
			if err := json.Unmarshal([]byte(raw), &f); err != nil {
				t.Fatalf("Failed to unmarshal %s: %v", raw, err)
			}
			if f.Valid || f.Value != 0 {
				t.Errorf("%s decoded as %+v, want absent", raw, f)
			}
		})
	}
}

func TestFlexUnmarshal_NativeTypes(t *testing.T) {
	input := `{"battle_id": 7, "player_won": 0, "p1_team_details": [{"name": "tauros", "base_hp": 75}], "p2_lead_details": {"name": "chansey"}, "battle_timeline": []}`

	var b BattleRecord
	if err := json.Unmarshal([]byte(input), &b); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if b.BattleID != "7" {
		t.Errorf("BattleID = %q, want 7", b.BattleID)
	}
	if !b.PlayerWon.Valid || b.PlayerWon.Value {
		t.Errorf("PlayerWon = %+v, want false", b.PlayerWon)
	}
	if b.P1Team[0].BaseAtk.Valid {
		t.Error("BaseAtk should be absent")
	}
}

func TestFlexUnmarshal_NestedValue(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		{"Nested number", `{"value": 95}`, true, 95},
		{"Nested string", `{"value": "95.5"}`, true, 95.5},
		{"Nested null", `{"value": null}`, false, 0},
		{"Missing value key", `{}`, false, 0},
		{"Null", `null`, false, 0},
		{"Empty string", `""`, false, 0},
		{"Bad string", `"abc"`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexFloat
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Valid != tt.wantValid || f.Value != tt.wantValue {
				t.Errorf("got %+v, want valid=%v value=%v", f, tt.wantValid, tt.wantValue)
			}
		})
	}
}

func TestFlexFloat_RejectsArrays(t *testing.T) {
	var f FlexFloat
	if err := json.Unmarshal([]byte(`[1,2]`), &f); err == nil {
		t.Error("expected error for array input")
	}
}

func TestPokemonStats_FillsMissing(t *testing.T) {
	known := Pokemon{Name: "Snorlax", BaseHP: Float(150)}
	s := known.Stats()
	if s.HP != 150 {
		t.Errorf("present stat should win, got %v", s.HP)
	}
	if s.Atk != 110 {
		t.Errorf("missing stat should come from species table, got %v", s.Atk)
	}

	unknown := Pokemon{Name: "missingno"}
	if got := unknown.Stats().Spe; got != 80 {
		t.Errorf("unknown species stat = %v, want 80", got)
	}
}

func TestPokemonState_Helpers(t *testing.T) {
	var nilState *PokemonState
	if nilState.Named() || nilState.BoostSum() != 0 || nilState.HasVolatile("confusion") {
		t.Error("nil state helpers should be zero-valued")
	}

	s := &PokemonState{
		Name:            "starmie",
		VolatileEffects: []string{"Confusion"},
		Boosts:          map[string]float64{"atk": 2, "spe": -1},
	}
	if !s.Named() || s.BoostSum() != 1 || !s.HasVolatile("confusion") {
		t.Errorf("unexpected helpers for %+v", s)
	}
}
