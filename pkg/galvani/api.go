// Package galvani is the embedding API: it wires a store, a measurement
// bench, and run artifacts into one client, mirroring what the galvanictl
// command exposes on the command line.
package galvani

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"galvani/internal/criterion"
	"galvani/internal/model"
	"galvani/internal/platform"
	"galvani/internal/stats"
	"galvani/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "galvani.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

type Client struct {
	store storage.Store
	bench *platform.Bench

	benchmarksDir string
	exportsDir    string
}

type RunRequest struct {
	Criterion           string
	CriterionSeed       int64
	GeneRanges          [][]float64
	Partition           []int
	Epochs              int
	Seed                int64
	Workers             int
	InitialMutationRate float64
	FloorMutationRate   float64
	FitnessGoal         float64
	EvaluationsLimit    int
	TopCount            int
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByEpoch      []float64
	FinalBestFitness float64
	BestGenes        []float64
	Evaluations      int
	EpochsRun        int
	StoppedEarly     bool
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Criterion        string
	Seed             int64
	Population       int
	Epochs           int
	Workers          int
	FinalBestFitness float64
	Evaluations      int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type BestGenomesRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type CriterionSummaryItem struct {
	Name        string
	Description string
	BestValue   float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureBench(ctx)
	return err
}

func (c *Client) Reset(ctx context.Context) error {
	bench, err := c.ensureBench(ctx)
	if err != nil {
		return err
	}
	if err := bench.Reset(ctx); err != nil {
		return err
	}
	return registerDefaultCriteria(bench)
}

// Criteria lists the names runnable through Run.
func (c *Client) Criteria(ctx context.Context) ([]string, error) {
	bench, err := c.ensureBench(ctx)
	if err != nil {
		return nil, err
	}
	return bench.RegisteredCriteria(), nil
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Criterion == "" {
		req.Criterion = "sphere"
	}
	if len(req.GeneRanges) == 0 {
		req.GeneRanges = [][]float64{{-1.2, 0.6}, {-1.2, 0.6}}
	}
	if len(req.Partition) == 0 {
		req.Partition = []int{4, 22}
	}
	if req.Epochs <= 0 {
		req.Epochs = 100
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}

	bench, err := c.ensureBench(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	if req.Criterion == "dnpu" {
		surrogate, err := criterion.NewDNPUSurrogate(req.CriterionSeed, len(req.GeneRanges))
		if err != nil {
			return RunSummary{}, err
		}
		if err := bench.RegisterCriterion(surrogate); err != nil {
			return RunSummary{}, err
		}
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%d-%d", req.Criterion, req.Seed, now.Unix())

	result, err := bench.RunSearch(ctx, platform.SearchConfig{
		RunID:               runID,
		Criterion:           req.Criterion,
		GeneRanges:          req.GeneRanges,
		Partition:           req.Partition,
		Epochs:              req.Epochs,
		Seed:                req.Seed,
		Workers:             req.Workers,
		InitialMutationRate: req.InitialMutationRate,
		FloorMutationRate:   req.FloorMutationRate,
		FitnessGoal:         req.FitnessGoal,
		EvaluationsLimit:    req.EvaluationsLimit,
		TopCount:            req.TopCount,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:               runID,
			Criterion:           req.Criterion,
			PopulationSize:      req.Partition[0] + req.Partition[1],
			EliteCount:          req.Partition[0],
			OffspringCount:      req.Partition[1],
			Epochs:              req.Epochs,
			Seed:                req.Seed,
			Workers:             req.Workers,
			InitialMutationRate: req.InitialMutationRate,
			FloorMutationRate:   req.FloorMutationRate,
			FitnessGoal:         req.FitnessGoal,
			EvaluationsLimit:    req.EvaluationsLimit,
		},
		BestByEpoch:      result.BestByEpoch,
		Diagnostics:      result.Diagnostics,
		FinalBestFitness: result.FinalBestFitness,
		BestGenes:        result.BestGenes,
		TopGenomes:       result.TopGenomes,
		Evaluations:      result.Evaluations,
		StoppedEarly:     result.StoppedEarly,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            runID,
		Criterion:        req.Criterion,
		PopulationSize:   req.Partition[0] + req.Partition[1],
		Epochs:           req.Epochs,
		Seed:             req.Seed,
		Workers:          req.Workers,
		FinalBestFitness: result.FinalBestFitness,
		Evaluations:      result.Evaluations,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByEpoch:      append([]float64(nil), result.BestByEpoch...),
		FinalBestFitness: result.FinalBestFitness,
		BestGenes:        append([]float64(nil), result.BestGenes...),
		Evaluations:      result.Evaluations,
		EpochsRun:        result.EpochsRun,
		StoppedEarly:     result.StoppedEarly,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Criterion:        e.Criterion,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Epochs:           e.Epochs,
			Workers:          e.Workers,
			FinalBestFitness: e.FinalBestFitness,
			Evaluations:      e.Evaluations,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("fitness history requires run id or latest")
	}

	if _, err := c.ensureBench(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("diagnostics requires run id or latest")
	}

	if _, err := c.ensureBench(ctx); err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	out := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}

func (c *Client) BestGenomes(ctx context.Context, req BestGenomesRequest) ([]model.BestGenomeRecord, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("best genomes requires run id or latest")
	}

	if _, err := c.ensureBench(ctx); err != nil {
		return nil, err
	}
	best, ok, err := c.store.GetBestGenomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("best genomes not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(best) > req.Limit {
		best = best[:req.Limit]
	}
	out := make([]model.BestGenomeRecord, len(best))
	copy(out, best)
	return out, nil
}

func (c *Client) CriterionSummary(ctx context.Context, name string) (CriterionSummaryItem, error) {
	if name == "" {
		return CriterionSummaryItem{}, errors.New("criterion name is required")
	}
	if _, err := c.ensureBench(ctx); err != nil {
		return CriterionSummaryItem{}, err
	}
	summary, ok, err := c.store.GetCriterionSummary(ctx, name)
	if err != nil {
		return CriterionSummaryItem{}, err
	}
	if !ok {
		return CriterionSummaryItem{}, fmt.Errorf("criterion summary not found: %s", name)
	}
	return CriterionSummaryItem{
		Name:        summary.Name,
		Description: summary.Description,
		BestValue:   summary.BestValue,
	}, nil
}

func (c *Client) ensureBench(ctx context.Context) (*platform.Bench, error) {
	if c.bench != nil {
		return c.bench, nil
	}
	bench := platform.NewBench(platform.Config{Store: c.store})
	if err := bench.Init(ctx); err != nil {
		return nil, err
	}
	if err := registerDefaultCriteria(bench); err != nil {
		return nil, err
	}
	c.bench = bench
	return c.bench, nil
}

func registerDefaultCriteria(bench *platform.Bench) error {
	if err := bench.RegisterCriterion(criterion.Sphere{}); err != nil {
		return err
	}
	if err := bench.RegisterCriterion(criterion.Rastrigin{}); err != nil {
		return err
	}
	return bench.RegisterCriterion(criterion.StyblinskiTang{})
}
