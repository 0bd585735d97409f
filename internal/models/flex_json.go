package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Battle logs come from several exporters. Some write numbers as quoted
// strings, some wrap values as {"value": x}, and ids may be numeric. The
// types below accept all of these forms and remember whether a value was
// present at all.

var nullLiteral = []byte("null")

// FlexFloat is an optional number.
type FlexFloat struct {
	Value float64
	Valid bool
}

// Float returns a present FlexFloat.
func Float(v float64) FlexFloat {
	return FlexFloat{Value: v, Valid: true}
}

// Or returns the value, or fallback when absent.
func (f FlexFloat) Or(fallback float64) float64 {
	if f.Valid {
		return f.Value
	}
	return fallback
}

// UnmarshalJSON accepts 12, 12.5, "12.5", {"value": 12} and null.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullLiteral) {
		*f = FlexFloat{}
		return nil
	}

	// Fast path: native number
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = Float(n)
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex float: %w", err)
		}
		v, ok := coerceFloat(s)
		*f = FlexFloat{Value: v, Valid: ok}
		return nil
	case '{':
		var wrapped struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("flex float: %w", err)
		}
		if len(wrapped.Value) == 0 {
			*f = FlexFloat{}
			return nil
		}
		return f.UnmarshalJSON(wrapped.Value)
	}

	return fmt.Errorf("flex float: unsupported value %s", truncate(data, 40))
}

// MarshalJSON writes null when absent.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return nullLiteral, nil
	}
	return json.Marshal(f.Value)
}

// FlexBool is an optional boolean that also accepts 0/1 and "true"/"false".
type FlexBool struct {
	Value bool
	Valid bool
}

// Bool returns a present FlexBool.
func Bool(v bool) FlexBool {
	return FlexBool{Value: v, Valid: true}
}

// Ptr returns nil when absent.
func (b FlexBool) Ptr() *bool {
	if !b.Valid {
		return nil
	}
	v := b.Value
	return &v
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullLiteral) {
		*b = FlexBool{}
		return nil
	}

	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Bool(v)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*b = Bool(n != 0)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flex bool: %w", err)
	}
	if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		*b = Bool(parsed)
		return nil
	}
	if n, ok := coerceFloat(s); ok {
		*b = Bool(n != 0)
		return nil
	}
	*b = FlexBool{}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return nullLiteral, nil
	}
	return json.Marshal(b.Value)
}

// FlexID is an identifier that may be written as a string or an integer.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullLiteral) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex id: %w", err)
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex id: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string { return string(id) }

// coerceFloat parses a string-encoded number. Empty strings and non-finite
// values ("NaN", "Inf") are absent.
func coerceFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
