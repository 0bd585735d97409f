package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// MockProcessor records every batch it is given.
type MockProcessor struct {
	mu      sync.Mutex
	Batches [][]models.BattleRecord
	Sources []string
	Err     error
}

func (m *MockProcessor) Run(ctx context.Context, source string, battles []models.BattleRecord) (*models.ExtractionReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, battles)
	m.Sources = append(m.Sources, source)
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.ExtractionReport{
		Run: models.ExtractionRun{ID: "run", Source: source, Battles: len(battles), Extracted: len(battles)},
	}, nil
}

// Total returns the number of battles processed so far.
func (m *MockProcessor) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.Batches {
		n += len(b)
	}
	return n
}

var errSinkDown = errors.New("sink down")
