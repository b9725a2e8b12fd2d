package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"galvani/internal/config"
	"galvani/internal/platform"
	"galvani/internal/storage"
	galvaniapi "galvani/pkg/galvani"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
	defaultDBPath = "galvani.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "criteria":
		return runCriteria(ctx, args[1:])
	case "criterion-summary":
		return runCriterionSummary(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	bench := platform.NewBench(platform.Config{Store: store})
	if err := bench.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	bench := platform.NewBench(platform.Config{Store: store})
	if err := bench.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional search config YAML path")
	criterionName := fs.String("criterion", "sphere", "criterion name")
	criterionSeed := fs.Int64("criterion-seed", 0, "seed for seeded criteria such as dnpu")
	dim := fs.Int("dim", 2, "gene count when no config file is given")
	geneMin := fs.Float64("gene-min", -1.2, "lower voltage bound applied to every gene")
	geneMax := fs.Float64("gene-max", 0.6, "upper voltage bound applied to every gene")
	elite := fs.Int("elite", 4, "elite share of the population partition")
	offspring := fs.Int("offspring", 22, "offspring share of the population partition")
	epochs := fs.Int("epochs", 100, "epoch count")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	initialRate := fs.Float64("mutation-initial", 0, "initial mutation rate (0 uses default)")
	floorRate := fs.Float64("mutation-floor", 0, "floor mutation rate (0 uses default)")
	fitnessGoal := fs.Float64("fitness-goal", 0, "early-stop best fitness goal (0 disables)")
	evaluationsLimit := fs.Int("evaluations-limit", 0, "early-stop total measurement limit (0 disables)")
	topCount := fs.Int("top-count", 0, "persisted leaderboard size (0 uses default)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req galvaniapi.RunRequest
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		req = galvaniapi.RunRequest{
			Criterion:           cfg.Criterion,
			CriterionSeed:       cfg.CriterionSeed,
			GeneRanges:          cfg.GeneRanges,
			Partition:           cfg.Partition,
			Epochs:              cfg.Epochs,
			Seed:                cfg.Seed,
			Workers:             cfg.Workers,
			InitialMutationRate: cfg.MutationRate.Initial,
			FloorMutationRate:   cfg.MutationRate.Floor,
			FitnessGoal:         cfg.FitnessGoal,
			EvaluationsLimit:    cfg.EvaluationsLimit,
			TopCount:            cfg.TopCount,
		}
	} else {
		if *dim <= 0 {
			return errors.New("dim must be > 0")
		}
		if *geneMax <= *geneMin {
			return errors.New("gene-max must be greater than gene-min")
		}
		ranges := make([][]float64, *dim)
		for i := range ranges {
			ranges[i] = []float64{*geneMin, *geneMax}
		}
		req = galvaniapi.RunRequest{
			Criterion:           *criterionName,
			CriterionSeed:       *criterionSeed,
			GeneRanges:          ranges,
			Partition:           []int{*elite, *offspring},
			Epochs:              *epochs,
			Seed:                *seed,
			Workers:             *workers,
			InitialMutationRate: *initialRate,
			FloorMutationRate:   *floorRate,
			FitnessGoal:         *fitnessGoal,
			EvaluationsLimit:    *evaluationsLimit,
			TopCount:            *topCount,
		}
	}

	client, err := galvaniapi.New(galvaniapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s criterion=%s epochs=%d seed=%d\n", summary.RunID, req.Criterion, summary.EpochsRun, req.Seed)
	for i, best := range summary.BestByEpoch {
		fmt.Printf("epoch=%d best_fitness=%.6f\n", i+1, best)
	}
	fmt.Printf("final_best_fitness=%.6f evaluations=%s stopped_early=%t\n",
		summary.FinalBestFitness,
		humanize.Comma(int64(summary.Evaluations)),
		summary.StoppedEarly,
	)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient("", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, galvaniapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, item := range runs {
		fmt.Printf("run_id=%s created=%s criterion=%s seed=%d pop=%d epochs=%d workers=%d final_best_fitness=%.6f evaluations=%s\n",
			item.RunID,
			createdDisplay(item.CreatedAtUTC),
			item.Criterion,
			item.Seed,
			item.Population,
			item.Epochs,
			item.Workers,
			item.FinalBestFitness,
			humanize.Comma(int64(item.Evaluations)),
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max epochs to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, galvaniapi.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	for i, best := range history {
		fmt.Printf("epoch=%d best_fitness=%.6f\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run from run index")
	limit := fs.Int("limit", 50, "max epochs to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, galvaniapi.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}
	for _, diag := range diagnostics {
		fmt.Printf("epoch=%d best=%.6f mean=%.6f min=%.6f stddev=%.6f mutation_rate=%.4f duplicates_removed=%d\n",
			diag.Epoch,
			diag.BestFitness,
			diag.MeanFitness,
			diag.MinFitness,
			diag.StdDevFitness,
			diag.MutationRate,
			diag.DuplicatesRemoved,
		)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show top genomes for the most recent run from run index")
	limit := fs.Int("limit", 5, "max genomes to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit top genomes as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	best, err := client.BestGenomes(ctx, galvaniapi.BestGenomesRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(best)
	}
	for _, record := range best {
		fmt.Printf("rank=%d fitness=%.6f genes=%v\n", record.Rank, record.Fitness, record.Genes)
	}
	return nil
}

func runCriteria(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("criteria", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient("memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	names, err := client.Criteria(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runCriterionSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("criterion-summary", flag.ContinueOnError)
	name := fs.String("criterion", "", "criterion name")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("criterion-summary requires --criterion")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.CriterionSummary(ctx, *name)
	if err != nil {
		return err
	}
	fmt.Printf("criterion=%s best_value=%.6f description=%q\n", summary.Name, summary.BestValue, summary.Description)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient("", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, galvaniapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
	return nil
}

func newClient(storeKind, dbPath string) (*galvaniapi.Client, error) {
	return galvaniapi.New(galvaniapi.Options{
		StoreKind:     storeKind,
		DBPath:        dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
}

// createdDisplay prefers a relative time when the index timestamp parses.
func createdDisplay(createdAtUTC string) string {
	if ts, err := time.Parse(time.RFC3339Nano, createdAtUTC); err == nil {
		return humanize.Time(ts)
	}
	return createdAtUTC
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: galvanictl <init|reset|run|runs|fitness|diagnostics|top|criteria|criterion-summary|export> [flags]", msg)
}
