package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// LabelColumn is the trailing target column in labelled exports.
const LabelColumn = "player_won"

// WriteCSV writes battle_id, the schema columns in order and, when withLabel
// is set, player_won. Unlabelled rows leave the label empty.
func WriteCSV(w io.Writer, schema []models.Column, rows []models.FeatureRecord, withLabel bool) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(schema)+2)
	header = append(header, "battle_id")
	for _, c := range schema {
		header = append(header, c.Name)
	}
	if withLabel {
		header = append(header, LabelColumn)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for i := range rows {
		r := &rows[i]
		record[0] = r.BattleID
		for j, c := range schema {
			record[j+1] = r.Format(c)
		}
		if withLabel {
			record[len(record)-1] = ""
			if r.PlayerWon != nil {
				record[len(record)-1] = strconv.FormatBool(*r.PlayerWon)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write battle %s: %w", r.BattleID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes a CSV export to path, replacing any existing file.
func WriteCSVFile(path string, schema []models.Column, rows []models.FeatureRecord, withLabel bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, schema, rows, withLabel); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
