package features

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProfiles(t *testing.T) {
	ps := DefaultProfiles()

	if ps.Default != "full" {
		t.Errorf("Default = %q, want full", ps.Default)
	}
	for _, name := range []string{"core", "advanced", "specialist", "full"} {
		p, err := ps.Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if p.Name != name {
			t.Errorf("profile name = %q, want %q", p.Name, name)
		}
	}

	full, _ := ps.Get("")
	if len(full.Units) != len(Units()) {
		t.Errorf("full has %d units, registry has %d", len(full.Units), len(Units()))
	}
}

func TestParseProfiles_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Unknown unit", "default: a\nprofiles:\n  a:\n    units: [no_such_unit]\n"},
		{"Duplicate unit", "default: a\nprofiles:\n  a:\n    units: [seen_state, seen_state]\n"},
		{"Wildcard overlap", "default: a\nprofiles:\n  a:\n    units: [seen_state, \"*\"]\n"},
		{"Missing default", "default: b\nprofiles:\n  a:\n    units: [seen_state]\n"},
		{"Empty profile", "default: a\nprofiles:\n  a:\n    units: []\n"},
		{"No profiles", "default: a\n"},
		{"Bad yaml", "profiles: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseProfiles([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadProfiles_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	data := "default: tiny\nprofiles:\n  tiny:\n    description: two units\n    units: [lead_identity, seen_state]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	ps, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	p, err := ps.Get("")
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	schema := e.Schema()
	if len(schema) != 10 || schema[0].Name != "p1_lead_name" || schema[2].Name != "hp_advantage_seen" {
		t.Errorf("unexpected schema %+v", schema)
	}

	if _, err := ps.Get("core"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("err = %v, want ErrUnknownProfile", err)
	}
	if _, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
