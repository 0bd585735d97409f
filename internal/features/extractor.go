// Package features turns battle timelines into flat feature rows.
//
// A single forward pass over each timeline builds a BattleState; registered
// feature units then derive their columns from it. A Profile selects which
// units run, and therefore the column schema.
package features

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

var (
	battlesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "features_battles_extracted_total",
		Help: "Battles turned into feature rows",
	}, []string{"profile"})

	battlesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "features_battles_failed_total",
		Help: "Battles that could not be turned into feature rows",
	}, []string{"profile"})

	extractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "features_extract_all_duration_seconds",
		Help:    "Time spent extracting one batch of battles",
		Buckets: prometheus.DefBuckets,
	})
)

// Result is the outcome of extracting a batch. Records keep input order, minus
// the failed battles; Index[i] is the input position of Records[i]. Battle ids
// may repeat, so callers pair rows with inputs by position.
type Result struct {
	Records    []models.FeatureRecord
	Index      []int
	Failures   []models.ExtractionFailure
	Incomplete []models.CompletenessIssue
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWorkers bounds the goroutines used by ExtractAll.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger used to report failed battles.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l.Sugar()
		}
	}
}

// WithCompletenessReport makes ExtractAll list battles with absent optional
// fields.
func WithCompletenessReport(enabled bool) Option {
	return func(e *Extractor) { e.completeness = enabled }
}

// Extractor computes feature rows for one profile. It is safe for concurrent
// use.
type Extractor struct {
	profile      Profile
	units        []Unit
	schema       []models.Column
	validate     *validator.Validate
	workers      int
	completeness bool
	logger       *zap.SugaredLogger
}

// New builds an extractor for a profile.
func New(profile Profile, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		profile:  profile,
		validate: newValidator(),
		workers:  runtime.GOMAXPROCS(0),
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, name := range profile.Units {
		u, ok := units[name]
		if !ok {
			return nil, fmt.Errorf("profile %q: unknown unit %q", profile.Name, name)
		}
		e.units = append(e.units, u)
		e.schema = append(e.schema, u.Columns...)
	}
	if len(e.units) == 0 {
		return nil, fmt.Errorf("profile %q: no units", profile.Name)
	}
	return e, nil
}

// Profile returns the profile name.
func (e *Extractor) Profile() string { return e.profile.Name }

// Schema returns the ordered output columns. The same profile always yields
// the same schema.
func (e *Extractor) Schema() []models.Column {
	return append([]models.Column(nil), e.schema...)
}

// Extract computes the feature row for one battle.
func (e *Extractor) Extract(b *models.BattleRecord) (rec models.FeatureRecord, err error) {
	if err := validateBattle(e.validate, b); err != nil {
		return models.FeatureRecord{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			rec = models.FeatureRecord{}
			err = fmt.Errorf("extract battle %s: panic: %v", b.BattleID, r)
		}
	}()

	state := Accumulate(b)
	rec = models.NewFeatureRecord(b.BattleID.String(), len(e.schema))
	rec.PlayerWon = b.PlayerWon.Ptr()
	for _, c := range e.schema {
		if c.Kind == models.ColumnNumeric {
			rec.Numeric[c.Name] = 0
		} else {
			rec.Categorical[c.Name] = ""
		}
	}

	// Dynamic columns keep their zero defaults when there is no timeline.
	row := Row{rec: &rec}
	for _, u := range e.units {
		if u.Dynamic && state.Turns == 0 {
			continue
		}
		u.Compute(state, row)
	}
	return rec, nil
}

type slot struct {
	rec     models.FeatureRecord
	err     error
	missing []string
}

// ExtractAll extracts every battle concurrently. A failing battle is reported
// in Result.Failures and never aborts the batch; only context cancellation
// returns an error.
func (e *Extractor) ExtractAll(ctx context.Context, battles []models.BattleRecord) (*Result, error) {
	timer := prometheus.NewTimer(extractDuration)
	defer timer.ObserveDuration()

	slots := make([]slot, len(battles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range battles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := &battles[i]
			slots[i].rec, slots[i].err = e.Extract(b)
			if e.completeness && slots[i].err == nil {
				slots[i].missing = MissingFields(b)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract batch: %w", err)
	}

	res := &Result{
		Records: make([]models.FeatureRecord, 0, len(battles)),
		Index:   make([]int, 0, len(battles)),
	}
	for i, s := range slots {
		if s.err != nil {
			id := battles[i].BattleID.String()
			e.logger.Warnw("Skipping battle", "battle_id", id, "error", s.err)
			res.Failures = append(res.Failures, models.ExtractionFailure{BattleID: id, Reason: s.err.Error()})
			continue
		}
		res.Records = append(res.Records, s.rec)
		res.Index = append(res.Index, i)
		if len(s.missing) > 0 {
			res.Incomplete = append(res.Incomplete, models.CompletenessIssue{
				BattleID:      s.rec.BattleID,
				MissingFields: s.missing,
			})
		}
	}

	battlesExtracted.WithLabelValues(e.profile.Name).Add(float64(len(res.Records)))
	battlesFailed.WithLabelValues(e.profile.Name).Add(float64(len(res.Failures)))
	return res, nil
}
