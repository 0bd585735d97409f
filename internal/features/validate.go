package features

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// ErrMalformedBattle marks a record that lacks required identity fields.
var ErrMalformedBattle = errors.New("malformed battle record")

// MalformedBattleError reports why one battle could not be processed.
type MalformedBattleError struct {
	BattleID string
	Reason   string
}

func (e *MalformedBattleError) Error() string {
	if e.BattleID == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedBattle, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrMalformedBattle, e.BattleID, e.Reason)
}

func (e *MalformedBattleError) Unwrap() error { return ErrMalformedBattle }

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateBattle checks the required fields of a record.
func validateBattle(v *validator.Validate, b *models.BattleRecord) error {
	if b == nil {
		return &MalformedBattleError{Reason: "nil record"}
	}
	err := v.Struct(b)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &MalformedBattleError{BattleID: b.BattleID.String(), Reason: err.Error()}
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, fmt.Sprintf("%s failed %q", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return &MalformedBattleError{BattleID: b.BattleID.String(), Reason: strings.Join(reasons, "; ")}
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// MissingFields lists the optional fields absent from a battle, as JSON paths.
// Absent fields are not errors; this feeds the completeness report.
func MissingFields(b *models.BattleRecord) []string {
	var missing []string
	add := func(format string, args ...any) {
		missing = append(missing, fmt.Sprintf(format, args...))
	}

	checkPokemon := func(path string, p *models.Pokemon) {
		stats := []struct {
			name string
			v    models.FlexFloat
		}{
			{"level", p.Level},
			{"base_hp", p.BaseHP}, {"base_atk", p.BaseAtk}, {"base_def", p.BaseDef},
			{"base_spa", p.BaseSpA}, {"base_spd", p.BaseSpD}, {"base_spe", p.BaseSpe},
		}
		for _, s := range stats {
			if !s.v.Valid {
				add("%s.%s", path, s.name)
			}
		}
		if len(p.Types) == 0 {
			add("%s.types", path)
		}
	}

	for i := range b.P1Team {
		checkPokemon(fmt.Sprintf("p1_team_details[%d]", i), &b.P1Team[i])
	}
	if b.P2Lead != nil {
		checkPokemon("p2_lead_details", b.P2Lead)
	}
	if !b.PlayerWon.Valid {
		add("player_won")
	}

	for i := range b.Timeline {
		turn := &b.Timeline[i]
		for _, side := range []models.Side{models.Player1, models.Player2} {
			st := turn.State(side)
			if st == nil {
				add("battle_timeline[%d].%s_pokemon_state", i, side)
			} else if !st.HPPct.Valid {
				add("battle_timeline[%d].%s_pokemon_state.hp_pct", i, side)
			}
			if turn.Move(side) == nil {
				add("battle_timeline[%d].%s_move_details", i, side)
			}
		}
	}
	return missing
}
