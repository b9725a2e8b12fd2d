// Package platform hosts the measurement bench: it owns the store, the
// registered criteria, and the generational search loop that drives an
// optimizer against one criterion while recording run history.
package platform

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"galvani/internal/criterion"
	"galvani/internal/model"
	"galvani/internal/optim"
	"galvani/internal/storage"
)

const defaultTopCount = 5

type Config struct {
	Store storage.Store
}

// SearchConfig describes one generational search run.
type SearchConfig struct {
	RunID               string
	Criterion           string
	GeneRanges          [][]float64
	Partition           []int
	Epochs              int
	Seed                int64
	Workers             int
	InitialMutationRate float64
	FloorMutationRate   float64

	// FitnessGoal stops the run early once the best measured fitness
	// reaches it. Zero disables the goal.
	FitnessGoal float64
	// EvaluationsLimit stops the run early once this many measurements have
	// been taken. Zero disables the limit.
	EvaluationsLimit int
	// TopCount sizes the persisted leaderboard. Zero means the default.
	TopCount int
}

// SearchResult summarizes a completed run.
type SearchResult struct {
	RunID            string
	BestByEpoch      []float64
	Diagnostics      []model.GenerationDiagnostics
	FinalBestFitness float64
	BestGenes        []float64
	TopGenomes       []model.BestGenomeRecord
	Evaluations      int
	EpochsRun        int
	StoppedEarly     bool
}

// Bench coordinates criteria and runs against a single store.
type Bench struct {
	store storage.Store

	mu       sync.RWMutex
	criteria map[string]criterion.Criterion
	started  bool
}

func NewBench(cfg Config) *Bench {
	return &Bench{
		store:    cfg.Store,
		criteria: make(map[string]criterion.Criterion),
	}
}

func (b *Bench) Init(ctx context.Context) error {
	if b.store == nil {
		return fmt.Errorf("store is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	if err := b.store.Init(ctx); err != nil {
		return err
	}
	b.started = true
	return nil
}

// Reset drops all persisted state when the store supports it, then
// re-initializes the bench. Registered criteria are cleared.
func (b *Bench) Reset(ctx context.Context) error {
	b.mu.Lock()
	b.started = false
	b.criteria = make(map[string]criterion.Criterion)
	b.mu.Unlock()

	if resetter, ok := b.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return b.Init(ctx)
}

func (b *Bench) RegisterCriterion(c criterion.Criterion) error {
	if c == nil {
		return fmt.Errorf("criterion is nil")
	}
	name := c.Name()
	if name == "" {
		return fmt.Errorf("criterion name is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return fmt.Errorf("bench is not initialized")
	}
	b.criteria[name] = c
	return nil
}

func (b *Bench) Criterion(name string) (criterion.Criterion, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.criteria[name]
	return c, ok
}

func (b *Bench) RegisteredCriteria() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.criteria))
	for name := range b.criteria {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Bench) Started() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.started
}

// RunSearch drives a full generational search against the named criterion
// and persists the run's history, diagnostics, leaderboard, and population
// snapshots. It returns once the epoch horizon is exhausted, an early-stop
// condition fires, or ctx is cancelled.
func (b *Bench) RunSearch(ctx context.Context, cfg SearchConfig) (SearchResult, error) {
	if cfg.Criterion == "" {
		return SearchResult{}, fmt.Errorf("criterion name is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TopCount <= 0 {
		cfg.TopCount = defaultTopCount
	}

	b.mu.RLock()
	target, ok := b.criteria[cfg.Criterion]
	started := b.started
	b.mu.RUnlock()

	if !started {
		return SearchResult{}, fmt.Errorf("bench is not initialized")
	}
	if !ok {
		return SearchResult{}, fmt.Errorf("criterion not registered: %s", cfg.Criterion)
	}
	if dimAware, ok := target.(criterion.DimAwareCriterion); ok {
		if want := dimAware.Dim(); want != len(cfg.GeneRanges) {
			return SearchResult{}, fmt.Errorf("criterion %s expects %d genes, gene ranges describe %d", cfg.Criterion, want, len(cfg.GeneRanges))
		}
	}

	opt, err := optim.New(optim.Config{
		GeneRanges:          cfg.GeneRanges,
		Partition:           cfg.Partition,
		Epochs:              cfg.Epochs,
		Seed:                cfg.Seed,
		InitialMutationRate: cfg.InitialMutationRate,
		FloorMutationRate:   cfg.FloorMutationRate,
	})
	if err != nil {
		return SearchResult{}, err
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	if err := b.savePopulationSnapshot(ctx, runID+":seed", runID, 0, opt.Population()); err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{RunID: runID, FinalBestFitness: math.Inf(-1)}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		pool := opt.Population()
		fitness, err := b.measurePool(ctx, target, pool, cfg.Workers)
		if err != nil {
			return SearchResult{}, err
		}
		result.Evaluations += len(fitness)
		appliedRate := opt.MutationRate()

		step, err := opt.Step(fitness)
		if err != nil {
			return SearchResult{}, err
		}

		result.BestByEpoch = append(result.BestByEpoch, step.BestFitness)
		result.Diagnostics = append(result.Diagnostics, generationDiagnostics(step, fitness, appliedRate))
		result.EpochsRun = step.Epoch
		if step.BestFitness > result.FinalBestFitness {
			result.FinalBestFitness = step.BestFitness
			result.BestGenes = step.Best
		}
		result.TopGenomes = leaderboard(pool, fitness, cfg.TopCount)

		if cfg.FitnessGoal != 0 && step.BestFitness >= cfg.FitnessGoal {
			result.StoppedEarly = true
			break
		}
		if cfg.EvaluationsLimit > 0 && result.Evaluations >= cfg.EvaluationsLimit {
			result.StoppedEarly = true
			break
		}
	}
	if len(result.BestByEpoch) == 0 {
		result.FinalBestFitness = 0
	}

	if err := b.persistResult(ctx, runID, opt, result); err != nil {
		return SearchResult{}, err
	}
	if err := b.updateCriterionSummary(ctx, target, result); err != nil {
		return SearchResult{}, err
	}
	return result, nil
}

func (b *Bench) persistResult(ctx context.Context, runID string, opt *optim.Optimizer, result SearchResult) error {
	if err := b.savePopulationSnapshot(ctx, runID, runID, result.EpochsRun, opt.Population()); err != nil {
		return err
	}
	if err := b.store.SaveFitnessHistory(ctx, runID, result.BestByEpoch); err != nil {
		return err
	}
	if err := b.store.SaveDiagnostics(ctx, runID, result.Diagnostics); err != nil {
		return err
	}
	return b.store.SaveBestGenomes(ctx, runID, result.TopGenomes)
}

func (b *Bench) savePopulationSnapshot(ctx context.Context, id, runID string, epoch int, genomes [][]float64) error {
	return b.store.SavePopulation(ctx, model.Population{
		VersionedRecord: storage.Stamp(),
		ID:              id,
		RunID:           runID,
		Epoch:           epoch,
		Genomes:         genomes,
	})
}

func (b *Bench) updateCriterionSummary(ctx context.Context, target criterion.Criterion, result SearchResult) error {
	if len(result.BestByEpoch) == 0 {
		return nil
	}

	summary, ok, err := b.store.GetCriterionSummary(ctx, target.Name())
	if err != nil {
		return err
	}
	if !ok {
		summary = model.CriterionSummary{
			VersionedRecord: storage.Stamp(),
			Name:            target.Name(),
			Description:     target.Description(),
			BestValue:       math.Inf(-1),
		}
	}
	if result.FinalBestFitness > summary.BestValue {
		summary.BestValue = result.FinalBestFitness
	}
	return b.store.SaveCriterionSummary(ctx, summary)
}

// measurePool evaluates every genome of the pool, fanning measurements out
// over a bounded worker pool. The returned vector aligns with the pool.
func (b *Bench) measurePool(ctx context.Context, target criterion.Criterion, pool [][]float64, workers int) ([]float64, error) {
	type job struct {
		idx   int
		genes []float64
	}
	type answer struct {
		idx   int
		value float64
		err   error
	}

	jobs := make(chan job)
	answers := make(chan answer, len(pool))

	workerCount := workers
	if workerCount > len(pool) {
		workerCount = len(pool)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					answers <- answer{idx: j.idx, err: err}
					continue
				}
				value, err := target.Measure(ctx, j.genes)
				answers <- answer{idx: j.idx, value: value, err: err}
			}
		}()
	}

	for i := range pool {
		jobs <- job{idx: i, genes: pool[i]}
	}
	close(jobs)

	wg.Wait()
	close(answers)

	fitness := make([]float64, len(pool))
	for ans := range answers {
		if ans.err != nil {
			return nil, fmt.Errorf("measure %s: %w", target.Name(), ans.err)
		}
		fitness[ans.idx] = ans.value
	}
	return fitness, nil
}

func generationDiagnostics(step optim.StepResult, fitness []float64, appliedRate float64) model.GenerationDiagnostics {
	diag := model.GenerationDiagnostics{
		Epoch:             step.Epoch,
		BestFitness:       step.BestFitness,
		MeanFitness:       stat.Mean(fitness, nil),
		MinFitness:        minOf(fitness),
		MutationRate:      appliedRate,
		DuplicatesRemoved: step.DuplicatesRemoved,
	}
	if len(fitness) > 1 {
		diag.StdDevFitness = stat.StdDev(fitness, nil)
	}
	return diag
}

func minOf(values []float64) float64 {
	min := math.Inf(1)
	for _, v := range values {
		if v < min {
			min = v
		}
	}
	return min
}

// leaderboard ranks the evaluated pool and keeps the top entries.
func leaderboard(pool [][]float64, fitness []float64, count int) []model.BestGenomeRecord {
	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fitness[order[i]] > fitness[order[j]]
	})

	if count > len(order) {
		count = len(order)
	}
	top := make([]model.BestGenomeRecord, 0, count)
	for rank, idx := range order[:count] {
		top = append(top, model.BestGenomeRecord{
			Rank:    rank + 1,
			Fitness: fitness[idx],
			Genes:   append([]float64(nil), pool[idx]...),
		})
	}
	return top
}
