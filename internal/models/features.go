package models

import (
	"strconv"
	"time"
)

// ColumnKind distinguishes numeric from categorical feature columns
type ColumnKind string

const (
	ColumnNumeric     ColumnKind = "numeric"
	ColumnCategorical ColumnKind = "categorical"
)

// Column is one named feature column.
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
	Unit string     `json:"unit"` // feature unit that produces the column
}

// FeatureRecord is the flat feature row for one battle
type FeatureRecord struct {
	BattleID    string             `json:"battle_id"`
	PlayerWon   *bool              `json:"player_won,omitempty"`
	Numeric     map[string]float64 `json:"numeric"`
	Categorical map[string]string  `json:"categorical,omitempty"`
}

// NewFeatureRecord allocates an empty record for a battle.
func NewFeatureRecord(battleID string, columns int) FeatureRecord {
	return FeatureRecord{
		BattleID:    battleID,
		Numeric:     make(map[string]float64, columns),
		Categorical: make(map[string]string),
	}
}

// Format renders a column value as text for tabular export.
func (r *FeatureRecord) Format(col Column) string {
	if col.Kind == ColumnCategorical {
		return r.Categorical[col.Name]
	}
	return strconv.FormatFloat(r.Numeric[col.Name], 'g', -1, 64)
}

// ExtractionRun summarizes one batch extraction
type ExtractionRun struct {
	ID         string    `json:"id"`
	Profile    string    `json:"profile"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Battles    int       `json:"battles"`
	Extracted  int       `json:"extracted"`
	CacheHits  int       `json:"cache_hits"`
	Failed     int       `json:"failed"`
	Incomplete int       `json:"incomplete"`
}

// ExtractionFailure reports a battle (or input line) that could not be turned
// into a feature row.
type ExtractionFailure struct {
	BattleID string `json:"battle_id,omitempty"`
	Line     int    `json:"line,omitempty"`
	Reason   string `json:"reason"`
}

// CompletenessIssue lists optional fields that were absent in a battle.
type CompletenessIssue struct {
	BattleID      string   `json:"battle_id"`
	MissingFields []string `json:"missing_fields"`
}
