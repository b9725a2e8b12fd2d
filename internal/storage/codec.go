package storage

import (
	"encoding/json"
	"errors"

	"galvani/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodePopulation(p model.Population) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePopulation(data []byte) (model.Population, error) {
	var population model.Population
	if err := json.Unmarshal(data, &population); err != nil {
		return model.Population{}, err
	}
	if err := checkVersion(population.VersionedRecord); err != nil {
		return model.Population{}, err
	}
	return population, nil
}

func EncodeCriterionSummary(s model.CriterionSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeCriterionSummary(data []byte) (model.CriterionSummary, error) {
	var summary model.CriterionSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.CriterionSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.CriterionSummary{}, err
	}
	return summary, nil
}

func EncodeDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeBestGenomes(best []model.BestGenomeRecord) ([]byte, error) {
	return json.Marshal(best)
}

func DecodeBestGenomes(data []byte) ([]model.BestGenomeRecord, error) {
	var best []model.BestGenomeRecord
	if err := json.Unmarshal(data, &best); err != nil {
		return nil, err
	}
	return best, nil
}

func checkVersion(record model.VersionedRecord) error {
	if record.SchemaVersion != CurrentSchemaVersion || record.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Stamp fills the current schema and codec versions into a record.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}
