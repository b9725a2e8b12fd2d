package storage

import (
	"context"

	"galvani/internal/model"
)

// Store defines persistence operations for search runs: population
// snapshots, per-run fitness histories and diagnostics, top genomes, and
// per-criterion summaries.
type Store interface {
	Init(ctx context.Context) error
	SavePopulation(ctx context.Context, population model.Population) error
	GetPopulation(ctx context.Context, id string) (model.Population, bool, error)
	SaveCriterionSummary(ctx context.Context, summary model.CriterionSummary) error
	GetCriterionSummary(ctx context.Context, name string) (model.CriterionSummary, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveBestGenomes(ctx context.Context, runID string, best []model.BestGenomeRecord) error
	GetBestGenomes(ctx context.Context, runID string) ([]model.BestGenomeRecord, bool, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
