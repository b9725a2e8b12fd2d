package galvani

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:     "memory",
		BenchmarksDir: filepath.Join(t.TempDir(), "benchmarks"),
		ExportsDir:    filepath.Join(t.TempDir(), "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func testRunRequest() RunRequest {
	return RunRequest{
		Criterion:  "sphere",
		GeneRanges: [][]float64{{-1.2, 0.6}, {-1.2, 0.6}},
		Partition:  []int{4, 22},
		Epochs:     5,
		Seed:       1,
		Workers:    2,
	}
}

func TestClientInitAndCriteria(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if err := client.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	names, err := client.Criteria(ctx)
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 default criteria, got %v", names)
	}
}

func TestClientRunWritesArtifactsAndIndex(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, testRunRequest())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" || summary.ArtifactsDir == "" {
		t.Fatalf("incomplete summary: %+v", summary)
	}
	if summary.EpochsRun != 5 || len(summary.BestByEpoch) != 5 {
		t.Fatalf("expected 5 epochs, got %+v", summary)
	}
	if summary.Evaluations != 5*26 {
		t.Fatalf("expected 130 evaluations, got %d", summary.Evaluations)
	}
	if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, "run.json")); err != nil {
		t.Fatalf("expected run.json: %v", err)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID {
		t.Fatalf("unexpected run list: %+v", runs)
	}
	if runs[0].Criterion != "sphere" || runs[0].Population != 26 {
		t.Fatalf("unexpected run item: %+v", runs[0])
	}
}

func TestClientRunDefaults(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, RunRequest{Epochs: 2})
	if err != nil {
		t.Fatalf("run with defaults: %v", err)
	}
	if summary.Evaluations != 2*26 {
		t.Fatalf("expected default 26-genome population, got %d evaluations", summary.Evaluations)
	}
	if len(summary.BestGenes) != 2 {
		t.Fatalf("expected default two-gene ranges, got %v", summary.BestGenes)
	}
}

func TestClientRunDNPUCriterion(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	req := testRunRequest()
	req.Criterion = "dnpu"
	req.CriterionSeed = 42
	summary, err := client.Run(ctx, req)
	if err != nil {
		t.Fatalf("run dnpu: %v", err)
	}
	if len(summary.BestGenes) != 2 {
		t.Fatalf("unexpected best genes: %v", summary.BestGenes)
	}

	item, err := client.CriterionSummary(ctx, "dnpu")
	if err != nil {
		t.Fatalf("criterion summary: %v", err)
	}
	if item.BestValue != summary.FinalBestFitness {
		t.Fatalf("summary best %v does not match run best %v", item.BestValue, summary.FinalBestFitness)
	}
}

func TestClientHistoryDiagnosticsAndBestGenomes(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, testRunRequest())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	history, err := client.FitnessHistory(ctx, FitnessHistoryRequest{RunID: summary.RunID})
	if err != nil || len(history) != 5 {
		t.Fatalf("fitness history: err=%v got=%v", err, history)
	}
	limited, err := client.FitnessHistory(ctx, FitnessHistoryRequest{Latest: true, Limit: 2})
	if err != nil || len(limited) != 2 {
		t.Fatalf("limited history: err=%v got=%v", err, limited)
	}

	diagnostics, err := client.Diagnostics(ctx, DiagnosticsRequest{Latest: true})
	if err != nil || len(diagnostics) != 5 {
		t.Fatalf("diagnostics: err=%v got=%d", err, len(diagnostics))
	}

	best, err := client.BestGenomes(ctx, BestGenomesRequest{RunID: summary.RunID, Limit: 3})
	if err != nil || len(best) != 3 {
		t.Fatalf("best genomes: err=%v got=%d", err, len(best))
	}
	if best[0].Rank != 1 {
		t.Fatalf("expected leaderboard to start at rank 1, got %+v", best[0])
	}

	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{RunID: summary.RunID, Latest: true}); err == nil {
		t.Fatal("expected error for both run id and latest")
	}
	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{}); err == nil {
		t.Fatal("expected error for neither run id nor latest")
	}
	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestClientExport(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, testRunRequest())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	exported, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.RunID != summary.RunID {
		t.Fatalf("exported wrong run: %+v", exported)
	}
	if _, err := os.Stat(filepath.Join(exported.Directory, "fitness_history.csv")); err != nil {
		t.Fatalf("expected exported csv: %v", err)
	}

	if _, err := client.Export(ctx, ExportRequest{RunID: summary.RunID, Latest: true}); err == nil {
		t.Fatal("expected error for both run id and latest")
	}
	if _, err := client.Export(ctx, ExportRequest{}); err == nil {
		t.Fatal("expected error for neither run id nor latest")
	}
}

func TestClientResetKeepsDefaultCriteria(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Run(ctx, testRunRequest()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := client.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	names, err := client.Criteria(ctx)
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected default criteria after reset, got %v", names)
	}

	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{Latest: true}); err == nil {
		t.Fatal("expected store history to be gone after reset")
	}
}
