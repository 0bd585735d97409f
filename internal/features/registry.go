package features

import (
	"fmt"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// Row is the write side of a feature record handed to a unit.
type Row struct {
	rec *models.FeatureRecord
}

// Set writes a numeric column.
func (r Row) Set(name string, v float64) { r.rec.Numeric[name] = v }

// SetCat writes a categorical column.
func (r Row) SetCat(name, v string) { r.rec.Categorical[name] = v }

// Unit is a named group of feature columns computed together from the
// accumulated battle state.
type Unit struct {
	Name string
	// Dynamic units read the timeline and are skipped when it is empty;
	// static units only read rosters.
	Dynamic bool
	Columns []models.Column
	Compute func(s *BattleState, r Row)
}

func numeric(names ...string) []models.Column {
	cols := make([]models.Column, len(names))
	for i, n := range names {
		cols[i] = models.Column{Name: n, Kind: models.ColumnNumeric}
	}
	return cols
}

func categorical(names ...string) []models.Column {
	cols := make([]models.Column, len(names))
	for i, n := range names {
		cols[i] = models.Column{Name: n, Kind: models.ColumnCategorical}
	}
	return cols
}

var (
	unitOrder []string
	units     = map[string]Unit{}
)

func init() {
	seen := map[string]string{}
	for _, group := range [][]Unit{staticUnits(), dynamicUnits()} {
		for _, u := range group {
			if _, dup := units[u.Name]; dup {
				panic(fmt.Sprintf("features: duplicate unit %q", u.Name))
			}
			for i := range u.Columns {
				c := &u.Columns[i]
				if owner, dup := seen[c.Name]; dup {
					panic(fmt.Sprintf("features: column %q declared by %q and %q", c.Name, owner, u.Name))
				}
				seen[c.Name] = u.Name
				c.Unit = u.Name
			}
			units[u.Name] = u
			unitOrder = append(unitOrder, u.Name)
		}
	}
}

// Units returns every registered unit name in registration order.
func Units() []string {
	return append([]string(nil), unitOrder...)
}

// LookupUnit returns a registered unit by name.
func LookupUnit(name string) (Unit, bool) {
	u, ok := units[name]
	return u, ok
}
