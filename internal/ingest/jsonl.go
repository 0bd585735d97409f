// Package ingest reads battle records from JSON Lines input.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// MaxLineSize caps a single JSONL record.
const MaxLineSize = 16 * 1024 * 1024

const (
	defaultExpected = 100000
	falsePositive   = 0.001
	fullLevel       = 100
)

var (
	linesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_lines_rejected_total",
		Help: "JSONL lines that could not be decoded",
	})
	possibleDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_possible_duplicate_battles_total",
		Help: "Battle ids the bloom filter has probably seen before",
	})
	battlesFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_battles_filtered_total",
		Help: "Battles dropped by the level filter",
	})
)

// LineError reports an input line that could not be decoded.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// Options controls loading.
type Options struct {
	// RequireFullLevel drops battles where a player 1 team member has a level
	// other than 100. Members without a level are kept.
	RequireFullLevel bool
	// ExpectedBattles sizes the duplicate filter.
	ExpectedBattles uint
	Logger          *zap.Logger
}

// Result is everything read from one input.
type Result struct {
	Battles    []models.BattleRecord
	LineErrors []LineError
	// Duplicates counts ids the filter flagged; flagged battles are still kept
	// because a bloom hit may be a false positive.
	Duplicates int
	Filtered   int
}

// Failures converts line errors into extraction failures.
func (r *Result) Failures() []models.ExtractionFailure {
	out := make([]models.ExtractionFailure, 0, len(r.LineErrors))
	for _, le := range r.LineErrors {
		out = append(out, models.ExtractionFailure{Line: le.Line, Reason: le.Err.Error()})
	}
	return out
}

// LoadFile reads a JSONL file.
func LoadFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	res, err := ReadJSONL(f, opts)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	return res, nil
}

// ReadJSONL decodes one battle per non-blank line. Undecodable lines are
// recorded and skipped; the returned error is reserved for read failures, in
// which case the battles read so far are still returned.
func ReadJSONL(r io.Reader, opts Options) (*Result, error) {
	logger := zap.NewNop().Sugar()
	if opts.Logger != nil {
		logger = opts.Logger.Sugar()
	}
	expected := opts.ExpectedBattles
	if expected == 0 {
		expected = defaultExpected
	}
	seen := bloom.NewWithEstimates(expected, falsePositive)

	res := &Result{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var b models.BattleRecord
		if err := json.Unmarshal(raw, &b); err != nil {
			linesRejected.Inc()
			logger.Warnw("Skipping undecodable line", "line", line, "error", err)
			res.LineErrors = append(res.LineErrors, LineError{Line: line, Err: err})
			continue
		}

		if opts.RequireFullLevel && !fullLevelTeam(&b) {
			battlesFiltered.Inc()
			res.Filtered++
			continue
		}

		if id := b.BattleID.String(); id != "" {
			if seen.TestString(id) {
				possibleDuplicates.Inc()
				res.Duplicates++
				logger.Warnw("Possible duplicate battle", "battle_id", id, "line", line)
			}
			seen.AddString(id)
		}
		res.Battles = append(res.Battles, b)
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan line %d: %w", line+1, err)
	}
	return res, nil
}

func fullLevelTeam(b *models.BattleRecord) bool {
	for _, p := range b.P1Team {
		if p.Level.Valid && p.Level.Value != fullLevel {
			return false
		}
	}
	return true
}
