package logic

import (
	"context"
	"errors"
	"sync"

	"github.com/pkmn-analytics/battle-features/internal/features"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

var errBackendDown = errors.New("backend down")

// MockExtractor returns one row per battle, failing battles whose id is in Fail
type MockExtractor struct {
	Fail  map[string]bool
	Err   error
	Calls [][]string
}

func (m *MockExtractor) ExtractAll(ctx context.Context, battles []models.BattleRecord) (*features.Result, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(battles))
	res := &features.Result{}
	for i, b := range battles {
		id := b.BattleID.String()
		ids = append(ids, id)
		if m.Fail[id] {
			res.Failures = append(res.Failures, models.ExtractionFailure{BattleID: id, Reason: "malformed"})
			continue
		}
		rec := models.NewFeatureRecord(id, 1)
		rec.Numeric["num_turns"] = float64(len(b.Timeline))
		res.Records = append(res.Records, rec)
		res.Index = append(res.Index, i)
	}
	m.Calls = append(m.Calls, ids)
	return res, nil
}

func (m *MockExtractor) Schema() []models.Column {
	return []models.Column{{Name: "num_turns", Kind: models.ColumnNumeric}}
}

func (m *MockExtractor) Profile() string { return "mock" }

// MockSink records written rows
type MockSink struct {
	Err  error
	Rows []models.FeatureRecord
}

func (m *MockSink) WriteFeatures(ctx context.Context, profile string, schema []models.Column, rows []models.FeatureRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.Rows = append(m.Rows, rows...)
	return nil
}

// MockRunStore keeps runs in memory
type MockRunStore struct {
	Err      error
	Runs     []models.ExtractionRun
	Failures []models.ExtractionFailure
}

func (m *MockRunStore) SaveRun(ctx context.Context, run models.ExtractionRun, failures []models.ExtractionFailure) error {
	if m.Err != nil {
		return m.Err
	}
	m.Runs = append(m.Runs, run)
	m.Failures = append(m.Failures, failures...)
	return nil
}

func (m *MockRunStore) RecentRuns(ctx context.Context, limit int) ([]models.ExtractionRun, error) {
	if limit > 0 && limit < len(m.Runs) {
		return m.Runs[:limit], nil
	}
	return m.Runs, nil
}

// MockCache is an in-memory FeatureCache
type MockCache struct {
	mu     sync.Mutex
	Data   map[string]models.FeatureRecord
	GetErr error
}

func NewMockCache() *MockCache {
	return &MockCache{Data: map[string]models.FeatureRecord{}}
}

func (m *MockCache) Get(ctx context.Context, key string) (models.FeatureRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return models.FeatureRecord{}, false, m.GetErr
	}
	rec, ok := m.Data[key]
	return rec, ok, nil
}

func (m *MockCache) Put(ctx context.Context, key string, rec models.FeatureRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = rec
	return nil
}
