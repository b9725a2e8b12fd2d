package storage

import (
	"context"
	"sync"

	"galvani/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	populations map[string]model.Population
	criteria    map[string]model.CriterionSummary
	history     map[string][]float64
	diagnostics map[string][]model.GenerationDiagnostics
	bestGenomes map[string][]model.BestGenomeRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.populations = make(map[string]model.Population)
	s.criteria = make(map[string]model.CriterionSummary)
	s.history = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	s.bestGenomes = make(map[string][]model.BestGenomeRecord)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *MemoryStore) SavePopulation(_ context.Context, population model.Population) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.populations[population.ID] = population
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, id string) (model.Population, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	population, ok := s.populations[id]
	return population, ok, nil
}

func (s *MemoryStore) SaveCriterionSummary(_ context.Context, summary model.CriterionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetCriterionSummary(_ context.Context, name string) (model.CriterionSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.criteria[name]
	return summary, ok, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.diagnostics[runID] = append([]model.GenerationDiagnostics(nil), diagnostics...)
	return nil
}

func (s *MemoryStore) GetDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.GenerationDiagnostics(nil), diagnostics...), true, nil
}

func (s *MemoryStore) SaveBestGenomes(_ context.Context, runID string, best []model.BestGenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bestGenomes[runID] = append([]model.BestGenomeRecord(nil), best...)
	return nil
}

func (s *MemoryStore) GetBestGenomes(_ context.Context, runID string) ([]model.BestGenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best, ok := s.bestGenomes[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.BestGenomeRecord(nil), best...), true, nil
}
