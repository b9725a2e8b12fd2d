package optim

import (
	"errors"
	"math"
	"testing"
)

func TestLinearRankRejectsBadInput(t *testing.T) {
	if _, err := LinearRank(nil); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for nil, got %v", err)
	}
	if _, err := LinearRank([]float64{}); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for empty, got %v", err)
	}
}

func TestLinearRankSumsToOneAndFollowsRank(t *testing.T) {
	fitness := []float64{0.2, 0.9, -3.0, 0.5}
	probs, err := LinearRank(fitness)
	if err != nil {
		t.Fatalf("linear rank: %v", err)
	}
	if len(probs) != len(fitness) {
		t.Fatalf("expected %d probabilities, got %d", len(fitness), len(probs))
	}

	total := 0.0
	for _, p := range probs {
		if p < 0 {
			t.Fatalf("negative probability mass: %v", probs)
		}
		total += p
	}
	if math.Abs(total-1) > 1e-12 {
		t.Fatalf("mass sums to %v, want 1", total)
	}

	// Best individual (index 1) carries the most mass, worst (index 2) the least.
	if probs[1] <= probs[3] || probs[3] <= probs[0] || probs[0] <= probs[2] {
		t.Fatalf("mass does not follow fitness rank: %v", probs)
	}
}

func TestLinearRankTiesKeepPopulationOrder(t *testing.T) {
	probs, err := LinearRank([]float64{1, 1, 1})
	if err != nil {
		t.Fatalf("linear rank: %v", err)
	}
	// Stable sort keeps the earlier individual ahead among equals.
	if !(probs[0] > probs[1] && probs[1] > probs[2]) {
		t.Fatalf("expected tie-break by original order, got %v", probs)
	}
}

func TestLinearRankSingleton(t *testing.T) {
	probs, err := LinearRank([]float64{42})
	if err != nil {
		t.Fatalf("linear rank: %v", err)
	}
	if len(probs) != 1 || probs[0] != 1 {
		t.Fatalf("expected [1], got %v", probs)
	}
}
