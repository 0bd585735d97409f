package handlers

import (
	"context"

	"github.com/pkmn-analytics/battle-features/internal/logic"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

// MockIngestQueue implements IngestQueue for testing
type MockIngestQueue struct {
	EnqueueFunc func(battle models.BattleRecord) bool
	Enqueued    []models.BattleRecord
}

func (m *MockIngestQueue) Enqueue(battle models.BattleRecord) bool {
	if m.EnqueueFunc != nil && !m.EnqueueFunc(battle) {
		return false
	}
	m.Enqueued = append(m.Enqueued, battle)
	return true
}

func (m *MockIngestQueue) QueueDepth() int { return len(m.Enqueued) }

// MockService implements logic.ExtractionService for testing
type MockService struct {
	RunFunc  func(ctx context.Context, source string, battles []models.BattleRecord) (*models.ExtractionReport, error)
	Runs     []models.ExtractionRun
	RunsErr  error
	Sources  []string
	Received [][]models.BattleRecord
}

var _ logic.ExtractionService = (*MockService)(nil)

func (m *MockService) Run(ctx context.Context, source string, battles []models.BattleRecord) (*models.ExtractionReport, error) {
	m.Sources = append(m.Sources, source)
	m.Received = append(m.Received, battles)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, source, battles)
	}
	report := &models.ExtractionReport{Run: models.ExtractionRun{ID: "run-1", Profile: "core", Battles: len(battles)}}
	for _, b := range battles {
		rec := models.NewFeatureRecord(b.BattleID.String(), 1)
		rec.Numeric["num_turns"] = float64(len(b.Timeline))
		report.Rows = append(report.Rows, rec)
	}
	report.Run.Extracted = len(report.Rows)
	return report, nil
}

func (m *MockService) Schema() []models.Column {
	return []models.Column{{Name: "num_turns", Kind: models.ColumnNumeric, Unit: "seen_state"}}
}

func (m *MockService) Profile() string { return "core" }

func (m *MockService) RecentRuns(ctx context.Context, limit int) ([]models.ExtractionRun, error) {
	if m.RunsErr != nil {
		return nil, m.RunsErr
	}
	if limit < len(m.Runs) {
		return m.Runs[:limit], nil
	}
	return m.Runs, nil
}
