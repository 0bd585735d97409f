// Package gamedata holds the fixed Gen 1 lookup tables used by the feature
// extractor: the type chart, species base stats, move categories and the
// meta-threat roster. Tables are built once at package init and only exposed
// through read-only lookup functions.
package gamedata

import "strings"

// NoType is the placeholder some logs put in a single-typed Pokémon's second
// type slot. It never contributes to effectiveness.
const NoType = "NOTYPE"

// typeChart maps attacking type -> defending type -> multiplier. Pairs that
// are absent are neutral (1.0).
var typeChart = map[string]map[string]float64{
	"NORMAL":   {"ROCK": 0.5, "GHOST": 0.0},
	"FIRE":     {"FIRE": 0.5, "WATER": 0.5, "GRASS": 2.0, "ICE": 2.0, "BUG": 2.0, "ROCK": 0.5},
	"WATER":    {"FIRE": 2.0, "WATER": 0.5, "GRASS": 0.5, "GROUND": 2.0, "ROCK": 2.0, "DRAGON": 0.5},
	"ELECTRIC": {"WATER": 2.0, "ELECTRIC": 0.5, "GRASS": 0.5, "GROUND": 0.0, "FLYING": 2.0, "DRAGON": 0.5},
	"GRASS":    {"FIRE": 0.5, "WATER": 2.0, "ELECTRIC": 1.0, "GRASS": 0.5, "POISON": 0.5, "GROUND": 2.0, "FLYING": 0.5, "BUG": 0.5, "ROCK": 2.0, "DRAGON": 0.5},
	"ICE":      {"WATER": 0.5, "GRASS": 2.0, "ICE": 0.5, "GROUND": 2.0, "FLYING": 2.0, "DRAGON": 2.0},
	"FIGHTING": {"NORMAL": 2.0, "POISON": 0.5, "FLYING": 0.5, "PSYCHIC": 0.5, "BUG": 0.5, "ROCK": 2.0, "GHOST": 0.0},
	"POISON":   {"GRASS": 2.0, "POISON": 0.5, "GROUND": 0.5, "BUG": 2.0, "ROCK": 0.5, "GHOST": 0.5},
	"GROUND":   {"FIRE": 2.0, "ELECTRIC": 2.0, "GRASS": 0.5, "POISON": 2.0, "FLYING": 0.0, "BUG": 0.5, "ROCK": 2.0},
	"FLYING":   {"ELECTRIC": 0.5, "GRASS": 2.0, "FIGHTING": 2.0, "BUG": 2.0, "ROCK": 0.5},
	"PSYCHIC":  {"FIGHTING": 2.0, "POISON": 2.0, "PSYCHIC": 0.5, "GHOST": 1.0},
	"BUG":      {"FIRE": 0.5, "GRASS": 2.0, "FIGHTING": 0.5, "POISON": 2.0, "FLYING": 0.5, "PSYCHIC": 2.0},
	"ROCK":     {"FIRE": 2.0, "ICE": 2.0, "FIGHTING": 0.5, "GROUND": 0.5, "FLYING": 2.0, "BUG": 2.0},
	// Gen 1 Ghost moves do not affect Psychic.
	"GHOST":  {"NORMAL": 0.0, "PSYCHIC": 0.0, "GHOST": 2.0},
	"DRAGON": {"DRAGON": 2.0},
}

// NormalizeType upper-cases and trims a type name.
func NormalizeType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// CleanTypes normalizes a type list and drops empty and NOTYPE entries.
func CleanTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		n := NormalizeType(t)
		if n == "" || n == NoType {
			continue
		}
		out = append(out, n)
	}
	return out
}

// KnownType reports whether t is an attacking type in the chart.
func KnownType(t string) bool {
	_, ok := typeChart[NormalizeType(t)]
	return ok
}

// Effectiveness returns the damage multiplier of a move of moveType against a
// defender with the given types. Multipliers compose across defending types,
// so the result does not depend on their order. Unknown move types are
// neutral.
func Effectiveness(moveType string, defenderTypes []string) float64 {
	row, ok := typeChart[NormalizeType(moveType)]
	if !ok {
		return 1.0
	}

	multiplier := 1.0
	for _, d := range defenderTypes {
		if m, ok := row[NormalizeType(d)]; ok {
			multiplier *= m
		}
	}
	return multiplier
}

// BestSTABAdvantage returns the best multiplier any of the attacker's own
// types achieves against the defender. An attacker without types is neutral.
// When no own type is better than immune but one of them is at least neutral
// the result is 1.0; otherwise it is the best multiplier found, which is 0
// only when every own type is fully blocked.
func BestSTABAdvantage(attackerTypes, defenderTypes []string) float64 {
	attackers := CleanTypes(attackerTypes)
	defenders := CleanTypes(defenderTypes)

	if len(attackers) == 0 {
		return 1.0
	}

	best := 0.0
	for _, t := range attackers {
		if m := Effectiveness(t, defenders); m > best {
			best = m
		}
	}

	if best == 0.0 {
		for _, t := range attackers {
			if Effectiveness(t, defenders) >= 1.0 {
				return 1.0
			}
		}
	}
	return best
}

// MaxEffectiveness returns the largest multiplier among the attacker's types
// against the defender, never below neutral.
func MaxEffectiveness(attackerTypes, defenderTypes []string) float64 {
	defenders := CleanTypes(defenderTypes)
	best := 1.0
	for _, t := range CleanTypes(attackerTypes) {
		if m := Effectiveness(t, defenders); m > best {
			best = m
		}
	}
	return best
}

// CombinedEffectiveness multiplies the effectiveness of every attacker type
// against the defender. An attacker without types is neutral.
func CombinedEffectiveness(attackerTypes, defenderTypes []string) float64 {
	attackers := CleanTypes(attackerTypes)
	if len(attackers) == 0 {
		return 1.0
	}
	defenders := CleanTypes(defenderTypes)
	product := 1.0
	for _, t := range attackers {
		product *= Effectiveness(t, defenders)
	}
	return product
}
