package features

import (
	"github.com/pkmn-analytics/battle-features/internal/gamedata"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

// FullHP is the hp_pct every known Pokémon starts at.
const FullHP = 100.0

// SeenEntry is the last known condition of one Pokémon.
type SeenEntry struct {
	Name   string
	HPPct  float64
	Status gamedata.Status
}

// SeenState tracks the last known condition of every Pokémon a side is known
// to have. Entries are never removed, so the set of known names only grows.
type SeenState struct {
	order   []string // normalized keys in first-seen order
	entries map[string]*SeenEntry
}

func newSeenState(names ...string) *SeenState {
	s := &SeenState{entries: make(map[string]*SeenEntry, len(names)+2)}
	for _, n := range names {
		s.ensure(n)
	}
	return s
}

func (s *SeenState) ensure(name string) *SeenEntry {
	key := gamedata.NormalizeName(name)
	if e, ok := s.entries[key]; ok {
		return e
	}
	e := &SeenEntry{Name: name, HPPct: FullHP}
	s.entries[key] = e
	s.order = append(s.order, key)
	return e
}

// Observe applies a turn observation. HP and status are only overwritten when
// present. It returns the HP the Pokémon had before the observation.
func (s *SeenState) Observe(st *models.PokemonState) (prevHP float64) {
	e := s.ensure(st.Name)
	prevHP = e.HPPct
	if st.HPPct.Valid {
		e.HPPct = st.HPPct.Value
	}
	if st.Status != nil {
		e.Status = gamedata.ParseStatus(*st.Status)
	}
	return prevHP
}

// Len is the number of known Pokémon.
func (s *SeenState) Len() int { return len(s.order) }

// Get returns the entry for a name.
func (s *SeenState) Get(name string) (SeenEntry, bool) {
	e, ok := s.entries[gamedata.NormalizeName(name)]
	if !ok {
		return SeenEntry{}, false
	}
	return *e, true
}

// Names returns the known Pokémon in first-seen order.
func (s *SeenState) Names() []string {
	out := make([]string, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.entries[k].Name)
	}
	return out
}

// TotalHP sums hp_pct across all known Pokémon.
func (s *SeenState) TotalHP() float64 {
	total := 0.0
	for _, e := range s.entries {
		total += e.HPPct
	}
	return total
}

// StatusCount is the number of known Pokémon with a status condition.
func (s *SeenState) StatusCount() int {
	n := 0
	for _, e := range s.entries {
		if e.Status.Active() {
			n++
		}
	}
	return n
}

// StatusWeight sums the severity weights of all known conditions.
func (s *SeenState) StatusWeight() float64 {
	total := 0.0
	for _, e := range s.entries {
		total += e.Status.Weight()
	}
	return total
}

// FaintedCount is the number of known Pokémon at 0 HP or below.
func (s *SeenState) FaintedCount() int {
	n := 0
	for _, e := range s.entries {
		if e.HPPct <= 0 {
			n++
		}
	}
	return n
}
