package features

import (
	"testing"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

func TestAccumulate_SeriesLengthMatchesTurns(t *testing.T) {
	b := alakazamVsSnorlax()
	s := Accumulate(&b)

	n := len(b.Timeline)
	series := map[string][]float64{
		"p1 hp":       s.P1.HP,
		"p2 hp":       s.P2.HP,
		"hp diff":     s.HPDiff,
		"boost diff":  s.BoostDiff,
		"p1 boosts":   s.P1.Boosts,
		"p2 statused": s.P2.Statused,
	}
	for name, xs := range series {
		if len(xs) != n {
			t.Errorf("%s has %d entries, want %d", name, len(xs), n)
		}
	}
}

func TestAccumulate_KnownNamesOnlyGrow(t *testing.T) {
	b := alakazamVsSnorlax()
	b.Timeline = append(b.Timeline,
		models.TurnSnapshot{Turn: 4, P1State: activeState("Chansey", 80), P2State: activeState("Starmie", 100)},
		models.TurnSnapshot{Turn: 5, P1State: activeState("alakazam", 90)},
		models.TurnSnapshot{Turn: 6},
	)

	var prev []string
	for i := 1; i <= len(b.Timeline); i++ {
		partial := b
		partial.Timeline = b.Timeline[:i]
		names := Accumulate(&partial).P2.Seen.Names()
		if len(names) < len(prev) {
			t.Fatalf("turn %d: known names shrank from %v to %v", i, prev, names)
		}
		for j := range prev {
			if names[j] != prev[j] {
				t.Fatalf("turn %d: known names reordered: %v -> %v", i, prev, names)
			}
		}
		prev = names
	}
	if len(prev) != 2 {
		t.Errorf("p2 known names = %v, want Snorlax and Starmie", prev)
	}

	// Case differences do not create a second entry.
	if got := Accumulate(&b).P1.Seen.Len(); got != 3 {
		t.Errorf("p1 known = %d, want 3", got)
	}
}

func TestAccumulate_Checkpoints(t *testing.T) {
	lead := mon("Starmie")
	b := models.BattleRecord{
		BattleID: "long",
		P1Team:   []models.Pokemon{mon("Jynx")},
		P2Lead:   &lead,
	}
	// P2 loses one point per turn, so damage_diff at turn t is -t.
	for turn := 1; turn <= 27; turn++ {
		b.Timeline = append(b.Timeline, models.TurnSnapshot{
			Turn:    turn,
			P2State: activeState("Starmie", float64(100-turn)),
		})
	}

	s := Accumulate(&b)
	want := [len(CheckpointTurns)]float64{-10, -20, -25, -27}
	if s.Checkpoints != want {
		t.Errorf("checkpoints = %v, want %v", s.Checkpoints, want)
	}
}

func TestAccumulate_CheckpointSkippedTurn(t *testing.T) {
	lead := mon("Starmie")
	b := models.BattleRecord{
		BattleID: "gap",
		P1Team:   []models.Pokemon{mon("Jynx")},
		P2Lead:   &lead,
		Timeline: []models.TurnSnapshot{
			{Turn: 9, P2State: activeState("Starmie", 90)},
			{Turn: 11, P2State: activeState("Starmie", 70)},
			{Turn: 12, P2State: activeState("Starmie", 50)},
		},
	}
	s := Accumulate(&b)
	if s.Checkpoints[0] != -30 {
		t.Errorf("turn 10 checkpoint = %v, want -30 from turn 11", s.Checkpoints[0])
	}
	if s.Checkpoints[1] != -50 {
		t.Errorf("turn 20 checkpoint = %v, want -50 from the final turn", s.Checkpoints[1])
	}
}

func TestAccumulate_LeadOccupancy(t *testing.T) {
	tests := []struct {
		name       string
		p1         []string
		wantStay   int
		wantForced bool
	}{
		{"Lead stays", []string{"Alakazam", "Alakazam", "Alakazam"}, 3, false},
		{"Lead switched out", []string{"Alakazam", "Chansey", "Chansey"}, 1, true},
		{"Lead returns after switch", []string{"Chansey", "Alakazam", "Tauros"}, 1, true},
		{"Absent states keep last active", []string{"Alakazam", "", "Alakazam"}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := alakazamVsSnorlax()
			for i, name := range tt.p1 {
				b.Timeline[i].P1State = nil
				if name != "" {
					b.Timeline[i].P1State = activeState(name, 100)
				}
			}
			s := Accumulate(&b)
			if s.P1.LeadStay != tt.wantStay {
				t.Errorf("LeadStay = %d, want %d", s.P1.LeadStay, tt.wantStay)
			}
			if s.P1.LeadForcedOut != tt.wantForced {
				t.Errorf("LeadForcedOut = %v, want %v", s.P1.LeadForcedOut, tt.wantForced)
			}
		})
	}
}

func TestAccumulate_Healing(t *testing.T) {
	b := alakazamVsSnorlax()
	b.Timeline[0].P1State = activeState("Alakazam", 40)
	b.Timeline[1].P1State = activeState("Alakazam", 90)
	b.Timeline[2].P1State = activeState("Alakazam", 70)

	s := Accumulate(&b)
	if s.P1.Healing != 50 {
		t.Errorf("Healing = %v, want 50", s.P1.Healing)
	}
}

func TestSeenState_ObserveOnlyPresentFields(t *testing.T) {
	s := newSeenState("Gengar")
	s.Observe(&models.PokemonState{Name: "Gengar", HPPct: models.Float(50), Status: strPtr("slp")})
	s.Observe(&models.PokemonState{Name: "GENGAR"})

	e, ok := s.Get("gengar")
	if !ok {
		t.Fatal("gengar not tracked")
	}
	if e.HPPct != 50 || e.Status != "slp" {
		t.Errorf("entry = %+v, want hp 50 and slp", e)
	}
	if s.StatusWeight() != 5 || s.StatusCount() != 1 {
		t.Errorf("weight %v count %d", s.StatusWeight(), s.StatusCount())
	}

	s.Observe(&models.PokemonState{Name: "Gengar", HPPct: models.Float(0), Status: strPtr("fnt")})
	if s.FaintedCount() != 1 || s.StatusCount() != 0 {
		t.Errorf("fainted %d statused %d", s.FaintedCount(), s.StatusCount())
	}
}

func TestSignFlips(t *testing.T) {
	tests := []struct {
		name      string
		xs        []float64
		wantFlips int
		wantFirst int
	}{
		{"Empty", nil, 0, 0},
		{"Constant sign", []float64{1, 5, 3}, 0, 0},
		{"Through zero", []float64{10, 0, -10}, 2, 1},
		{"Late flip", []float64{5, 4, 3, -1, 2}, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flips, first := signFlips(tt.xs)
			if flips != tt.wantFlips || first != tt.wantFirst {
				t.Errorf("signFlips(%v) = %d, %d; want %d, %d", tt.xs, flips, first, tt.wantFlips, tt.wantFirst)
			}
		})
	}
}

func TestMomentum_StallAndAggression(t *testing.T) {
	tests := []struct {
		name           string
		hpDiff         []float64
		wantStall      float64
		wantAggression float64
	}{
		{"Empty", nil, 0, 0},
		{"Single turn", []float64{3}, 0, 0},
		{"Exactly threshold is not stalled", []float64{0, 5, 10}, 0, 5},
		{"Just below threshold", []float64{0, 4.9}, 1, 0},
		{"Mixed gains", []float64{0, 2, 12, 9, 29}, 0.5, 0.5 * 8.75},
		{"Mixed signs around threshold", []float64{10, 5, 5, -1}, 1.0 / 3, (2.0 / 3) * (11.0 / 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.NewFeatureRecord("m", 6)
			computeMomentum(&BattleState{HPDiff: tt.hpDiff}, Row{rec: &rec})

			if got := rec.Numeric["stall_ratio"]; !approx(got, tt.wantStall) {
				t.Errorf("stall_ratio = %v, want %v", got, tt.wantStall)
			}
			if got := rec.Numeric["aggression_index"]; !approx(got, tt.wantAggression) {
				t.Errorf("aggression_index = %v, want %v", got, tt.wantAggression)
			}
		})
	}
}
