package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"

	"galvani/internal/model"
)

const (
	runIndexFile    = "run_index.json"
	runFile         = "run.json"
	fitnessCSVFile  = "fitness_history.csv"
	diagnosticsFile = "diagnostics.json"
	bestFile        = "best_genomes.json"
)

type RunConfig struct {
	RunID               string  `json:"run_id"`
	Criterion           string  `json:"criterion"`
	PopulationSize      int     `json:"population_size"`
	EliteCount          int     `json:"elite_count"`
	OffspringCount      int     `json:"offspring_count"`
	Epochs              int     `json:"epochs"`
	Seed                int64   `json:"seed"`
	Workers             int     `json:"workers"`
	InitialMutationRate float64 `json:"initial_mutation_rate"`
	FloorMutationRate   float64 `json:"floor_mutation_rate"`
	FitnessGoal         float64 `json:"fitness_goal"`
	EvaluationsLimit    int     `json:"evaluations_limit"`
}

type RunArtifacts struct {
	Config           RunConfig                     `json:"config"`
	BestByEpoch      []float64                     `json:"best_by_epoch"`
	Diagnostics      []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
	FinalBestFitness float64                       `json:"final_best_fitness"`
	BestGenes        []float64                     `json:"best_genes"`
	TopGenomes       []model.BestGenomeRecord      `json:"top_genomes,omitempty"`
	Evaluations      int                           `json:"evaluations"`
	StoppedEarly     bool                          `json:"stopped_early"`
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Criterion        string  `json:"criterion"`
	PopulationSize   int     `json:"population_size"`
	Epochs           int     `json:"epochs"`
	Seed             int64   `json:"seed"`
	Workers          int     `json:"workers"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	Evaluations      int     `json:"evaluations"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

type fitnessRow struct {
	Epoch       int     `csv:"epoch"`
	BestFitness float64 `csv:"best_fitness"`
}

// WriteRunArtifacts materializes one run's artifacts under
// baseDir/<run id>: run.json and a CSV of the best fitness per epoch.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, runFile), artifacts); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, diagnosticsFile), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, bestFile), artifacts.TopGenomes); err != nil {
		return "", err
	}
	if err := writeFitnessCSV(filepath.Join(runDir, fitnessCSVFile), artifacts.BestByEpoch); err != nil {
		return "", err
	}

	return runDir, nil
}

// ReadRunArtifacts loads a run's run.json back.
func ReadRunArtifacts(baseDir, runID string) (RunArtifacts, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, runFile))
	if err != nil {
		if os.IsNotExist(err) {
			return RunArtifacts{}, false, nil
		}
		return RunArtifacts{}, false, err
	}

	var artifacts RunArtifacts
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return RunArtifacts{}, false, err
	}
	return artifacts, true, nil
}

// AppendRunIndex inserts or replaces the run's entry in the index file.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	replaced := false
	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		index = append(index, entry)
	}
	sortRunIndex(index)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index entries, newest first. A missing index file
// is an empty index, not an error.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sortRunIndex(entries)
	return entries, nil
}

// ExportRunArtifacts copies a run's artifact directory into outDir/<run id>.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, runID)
	info, err := os.Stat(runDir)
	if err != nil {
		return "", fmt.Errorf("run artifacts not found for %s: %w", runID, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("run artifacts path is not a directory: %s", runDir)
	}

	exportDir := filepath.Join(outDir, runID)
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(runDir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(runDir, entry.Name())
		dst := filepath.Join(exportDir, entry.Name())
		if err := copyFile(src, dst); err != nil {
			return "", err
		}
	}
	return exportDir, nil
}

func sortRunIndex(entries []RunIndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
}

func writeFitnessCSV(path string, bestByEpoch []float64) error {
	rows := make([]fitnessRow, len(bestByEpoch))
	for i, best := range bestByEpoch {
		rows[i] = fitnessRow{Epoch: i + 1, BestFitness: best}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.MarshalFile(&rows, file)
}

// ReadFitnessCSV loads a run's per-epoch best fitness back from its CSV.
func ReadFitnessCSV(baseDir, runID string) ([]float64, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, fitnessCSVFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []fitnessRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, err
	}
	best := make([]float64, len(rows))
	for i, row := range rows {
		best[i] = row.BestFitness
	}
	return best, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
