package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkmn-analytics/battle-features/internal/models"
	"github.com/pkmn-analytics/battle-features/internal/store"
)

// ErrNoRunStore is returned when run history is requested without a run store.
var ErrNoRunStore = errors.New("run history is not configured")

// ExtractionConfig wires the service. Only Extractor is required; a nil
// backend is skipped.
type ExtractionConfig struct {
	Extractor Extractor
	Sink      FeatureSink
	Runs      RunStore
	Cache     FeatureCache
	Logger    *zap.Logger
}

type extractionService struct {
	extractor Extractor
	sink      FeatureSink
	runs      RunStore
	cache     FeatureCache
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewExtractionService builds the service.
func NewExtractionService(cfg ExtractionConfig) ExtractionService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &extractionService{
		extractor: cfg.Extractor,
		sink:      cfg.Sink,
		runs:      cfg.Runs,
		cache:     cfg.Cache,
		logger:    logger.Sugar(),
		now:       time.Now,
	}
}

func (s *extractionService) Schema() []models.Column { return s.extractor.Schema() }

func (s *extractionService) Profile() string { return s.extractor.Profile() }

// Run extracts a batch, serving cached rows where possible, writes the rows
// to the sink and records the run. Rows keep input order.
func (s *extractionService) Run(ctx context.Context, source string, battles []models.BattleRecord) (*models.ExtractionReport, error) {
	run := models.ExtractionRun{
		ID:        uuid.NewString(),
		Profile:   s.extractor.Profile(),
		Source:    source,
		StartedAt: s.now(),
		Battles:   len(battles),
	}

	cached, keys := s.lookupCache(ctx, battles)

	pending := make([]models.BattleRecord, 0, len(battles))
	origin := make([]int, 0, len(battles))
	for i := range battles {
		if cached[i] == nil {
			pending = append(pending, battles[i])
			origin = append(origin, i)
		}
	}

	res, err := s.extractor.ExtractAll(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if len(res.Index) != len(res.Records) {
		return nil, fmt.Errorf("run %s: extractor returned %d rows with %d positions", run.ID, len(res.Records), len(res.Index))
	}

	// Pair rows with inputs by position; ids may repeat within a batch.
	extracted := make([]*models.FeatureRecord, len(battles))
	for j, pos := range res.Index {
		if pos < 0 || pos >= len(origin) {
			return nil, fmt.Errorf("run %s: extractor returned position %d for %d battles", run.ID, pos, len(pending))
		}
		i := origin[pos]
		extracted[i] = &res.Records[j]
		s.storeCache(ctx, keys[i], res.Records[j])
	}

	rows := make([]models.FeatureRecord, 0, len(battles))
	for i := range battles {
		switch {
		case cached[i] != nil:
			rows = append(rows, *cached[i])
			run.CacheHits++
		case extracted[i] != nil:
			rows = append(rows, *extracted[i])
		}
	}

	run.Extracted = len(rows)
	run.Failed = len(res.Failures)
	run.Incomplete = len(res.Incomplete)

	if s.sink != nil {
		if err := s.sink.WriteFeatures(ctx, run.Profile, s.extractor.Schema(), rows); err != nil {
			return nil, fmt.Errorf("run %s: write features: %w", run.ID, err)
		}
	}

	run.FinishedAt = s.now()
	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run, res.Failures); err != nil {
			s.logger.Warnw("Failed to record extraction run", "run", run.ID, "error", err)
		}
	}

	s.logger.Infow("Extraction run finished",
		"run", run.ID,
		"profile", run.Profile,
		"source", source,
		"battles", run.Battles,
		"extracted", run.Extracted,
		"cacheHits", run.CacheHits,
		"failed", run.Failed,
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)

	return &models.ExtractionReport{
		Run:        run,
		Rows:       rows,
		Failures:   res.Failures,
		Incomplete: res.Incomplete,
	}, nil
}

// lookupCache returns a cached row (or nil) and the cache key per battle.
// Cache errors degrade to misses.
func (s *extractionService) lookupCache(ctx context.Context, battles []models.BattleRecord) ([]*models.FeatureRecord, []string) {
	cached := make([]*models.FeatureRecord, len(battles))
	keys := make([]string, len(battles))
	if s.cache == nil {
		return cached, keys
	}

	profile := s.extractor.Profile()
	for i := range battles {
		key, err := store.CacheKey(profile, &battles[i])
		if err != nil {
			continue
		}
		keys[i] = key
		rec, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warnw("Cache lookup failed", "key", key, "error", err)
			continue
		}
		if ok {
			cached[i] = &rec
		}
	}
	return cached, keys
}

func (s *extractionService) storeCache(ctx context.Context, key string, rec models.FeatureRecord) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Put(ctx, key, rec); err != nil {
		s.logger.Warnw("Cache store failed", "key", key, "error", err)
	}
}

// RecentRuns lists recent runs from the run store.
func (s *extractionService) RecentRuns(ctx context.Context, limit int) ([]models.ExtractionRun, error) {
	if s.runs == nil {
		return nil, ErrNoRunStore
	}
	return s.runs.RecentRuns(ctx, limit)
}
