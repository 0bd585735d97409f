package ingest

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	battleA = `{"battle_id": 1, "p1_team_details": [{"name": "tauros", "level": 100}], "p2_lead_details": {"name": "snorlax"}, "battle_timeline": []}`
	battleB = `{"battle_id": "2", "p1_team_details": [{"name": "chansey", "level": "100"}], "p2_lead_details": {"name": "starmie"}}`
	lowLvl  = `{"battle_id": 3, "p1_team_details": [{"name": "tauros", "level": 100}, {"name": "jynx", "level": 88}], "p2_lead_details": {"name": "snorlax"}}`
)

func TestReadJSONL(t *testing.T) {
	input := strings.Join([]string{battleA, "", "   ", "{not json", battleB, `[1, 2]`}, "\n")

	res, err := ReadJSONL(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}
	if len(res.Battles) != 2 {
		t.Fatalf("got %d battles, want 2", len(res.Battles))
	}
	if res.Battles[0].BattleID != "1" || res.Battles[1].BattleID != "2" {
		t.Errorf("ids = %s, %s", res.Battles[0].BattleID, res.Battles[1].BattleID)
	}

	if len(res.LineErrors) != 2 {
		t.Fatalf("got %d line errors, want 2", len(res.LineErrors))
	}
	if res.LineErrors[0].Line != 4 || res.LineErrors[1].Line != 6 {
		t.Errorf("line numbers = %d, %d; want 4, 6", res.LineErrors[0].Line, res.LineErrors[1].Line)
	}

	failures := res.Failures()
	if len(failures) != 2 || failures[0].Line != 4 || failures[0].Reason == "" {
		t.Errorf("failures = %+v", failures)
	}
}

func TestReadJSONL_Duplicates(t *testing.T) {
	input := strings.Join([]string{battleA, battleB, battleA}, "\n")

	res, err := ReadJSONL(strings.NewReader(input), Options{ExpectedBattles: 10})
	if err != nil {
		t.Fatal(err)
	}
	if res.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", res.Duplicates)
	}
	if len(res.Battles) != 3 {
		t.Errorf("duplicates must be kept, got %d battles", len(res.Battles))
	}
}

func TestReadJSONL_LevelFilter(t *testing.T) {
	input := strings.Join([]string{battleA, lowLvl, battleB}, "\n")

	tests := []struct {
		name         string
		require      bool
		wantBattles  int
		wantFiltered int
	}{
		{"Filter off", false, 3, 0},
		{"Filter on", true, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ReadJSONL(strings.NewReader(input), Options{RequireFullLevel: tt.require})
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Battles) != tt.wantBattles || res.Filtered != tt.wantFiltered {
				t.Errorf("battles %d filtered %d; want %d, %d", len(res.Battles), res.Filtered, tt.wantBattles, tt.wantFiltered)
			}
		})
	}
}

func TestReadJSONL_LineTooLong(t *testing.T) {
	huge := `{"battle_id": "` + strings.Repeat("x", MaxLineSize) + `"}`
	input := battleA + "\n" + huge + "\n" + battleB

	res, err := ReadJSONL(strings.NewReader(input), Options{})
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("err = %v, want bufio.ErrTooLong", err)
	}
	if len(res.Battles) != 1 {
		t.Errorf("battles before the failure should be kept, got %d", len(res.Battles))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.jsonl")
	if err := os.WriteFile(path, []byte(battleA+"\n"+battleB+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(res.Battles) != 2 {
		t.Errorf("got %d battles", len(res.Battles))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.jsonl"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}
