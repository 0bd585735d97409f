package features

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var embeddedProfiles []byte

const allUnits = "*"

// ErrUnknownProfile is returned when a profile name is not defined.
var ErrUnknownProfile = errors.New("unknown feature profile")

// Profile is a named, ordered selection of feature units.
type Profile struct {
	Name        string   `yaml:"-"`
	Description string   `yaml:"description"`
	Units       []string `yaml:"units"`
}

// ProfileSet holds every available profile.
type ProfileSet struct {
	Default  string             `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfiles reads profiles from a YAML file, or the built-in set when path
// is empty.
func LoadProfiles(path string) (*ProfileSet, error) {
	if path == "" {
		return ParseProfiles(embeddedProfiles)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}
	return ParseProfiles(data)
}

// DefaultProfiles returns the built-in profile set.
func DefaultProfiles() *ProfileSet {
	ps, err := ParseProfiles(embeddedProfiles)
	if err != nil {
		panic(err)
	}
	return ps
}

// ParseProfiles decodes and validates a YAML profile set. Every unit must be
// registered and no unit may appear twice in one profile.
func ParseProfiles(data []byte) (*ProfileSet, error) {
	var ps ProfileSet
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(ps.Profiles) == 0 {
		return nil, errors.New("parse profiles: no profiles defined")
	}

	for name, p := range ps.Profiles {
		p.Name = name
		expanded := make([]string, 0, len(p.Units))
		used := make(map[string]struct{}, len(p.Units))
		for _, u := range p.Units {
			names := []string{u}
			if u == allUnits {
				names = unitOrder
			} else if _, ok := units[u]; !ok {
				return nil, fmt.Errorf("profile %q: unknown unit %q", name, u)
			}
			for _, n := range names {
				if _, dup := used[n]; dup {
					return nil, fmt.Errorf("profile %q: unit %q listed twice", name, n)
				}
				used[n] = struct{}{}
				expanded = append(expanded, n)
			}
		}
		if len(expanded) == 0 {
			return nil, fmt.Errorf("profile %q: no units", name)
		}
		p.Units = expanded
		ps.Profiles[name] = p
	}

	if ps.Default == "" {
		return nil, errors.New("parse profiles: no default profile")
	}
	if _, ok := ps.Profiles[ps.Default]; !ok {
		return nil, fmt.Errorf("parse profiles: default %q: %w", ps.Default, ErrUnknownProfile)
	}
	return &ps, nil
}

// Get returns a profile by name; the empty name selects the default.
func (ps *ProfileSet) Get(name string) (Profile, error) {
	if name == "" {
		name = ps.Default
	}
	p, ok := ps.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Names returns the profile names sorted alphabetically.
func (ps *ProfileSet) Names() []string {
	names := make([]string, 0, len(ps.Profiles))
	for n := range ps.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
