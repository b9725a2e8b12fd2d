package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is one candidate control-voltage assignment.
type Genome struct {
	VersionedRecord
	ID    string    `json:"id"`
	Genes []float64 `json:"genes"`
}

// Population is a snapshot of one generation's pool of genomes.
type Population struct {
	VersionedRecord
	ID      string      `json:"id"`
	RunID   string      `json:"run_id"`
	Epoch   int         `json:"epoch"`
	Genomes [][]float64 `json:"genomes"`
}

type GenerationDiagnostics struct {
	Epoch             int     `json:"epoch"`
	BestFitness       float64 `json:"best_fitness"`
	MeanFitness       float64 `json:"mean_fitness"`
	MinFitness        float64 `json:"min_fitness"`
	StdDevFitness     float64 `json:"stddev_fitness"`
	MutationRate      float64 `json:"mutation_rate"`
	DuplicatesRemoved int     `json:"duplicates_removed"`
}

// BestGenomeRecord is one entry of the top-k ranking of a finished search.
type BestGenomeRecord struct {
	Rank    int       `json:"rank"`
	Fitness float64   `json:"fitness"`
	Genes   []float64 `json:"genes"`
}

// CriterionSummary tracks the best value ever measured against a criterion.
type CriterionSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestValue   float64 `json:"best_value"`
}
