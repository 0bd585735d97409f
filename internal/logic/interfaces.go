package logic

import (
	"context"

	"github.com/pkmn-analytics/battle-features/internal/features"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

// ExtractionService runs batches of battles through the feature extractor
// and its storage backends
type ExtractionService interface {
	Run(ctx context.Context, source string, battles []models.BattleRecord) (*models.ExtractionReport, error)
	Schema() []models.Column
	Profile() string
	RecentRuns(ctx context.Context, limit int) ([]models.ExtractionRun, error)
}

// Extractor computes feature rows for one profile
type Extractor interface {
	ExtractAll(ctx context.Context, battles []models.BattleRecord) (*features.Result, error)
	Schema() []models.Column
	Profile() string
}

// FeatureSink persists feature rows
type FeatureSink interface {
	WriteFeatures(ctx context.Context, profile string, schema []models.Column, rows []models.FeatureRecord) error
}

// RunStore records extraction runs and their failures
type RunStore interface {
	SaveRun(ctx context.Context, run models.ExtractionRun, failures []models.ExtractionFailure) error
	RecentRuns(ctx context.Context, limit int) ([]models.ExtractionRun, error)
}

// FeatureCache caches computed rows by key
type FeatureCache interface {
	Get(ctx context.Context, key string) (models.FeatureRecord, bool, error)
	Put(ctx context.Context, key string, rec models.FeatureRecord) error
}
