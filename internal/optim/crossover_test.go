package optim

import (
	"errors"
	"testing"
)

func newTestOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	o, err := New(Config{
		GeneRanges: [][]float64{{-1.2, 0.6}, {-1.2, 0.6}},
		Partition:  []int{4, 22},
		Epochs:     100,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	return o
}

func TestCrossoverBLXABRejectsBadParents(t *testing.T) {
	o := newTestOptimizer(t)

	if _, err := o.CrossoverBLXAB(nil, []float64{0, 0}); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for nil parent, got %v", err)
	}
	if _, err := o.CrossoverBLXAB([]float64{0, 0}, nil); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for nil parent, got %v", err)
	}
	if _, err := o.CrossoverBLXAB([]float64{}, []float64{}); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for empty parents, got %v", err)
	}
	if _, err := o.CrossoverBLXAB([]float64{0, 0}, []float64{0, 0, 0}); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for length mismatch, got %v", err)
	}
}

func TestCrossoverBLXABIdenticalParentsCollapse(t *testing.T) {
	o := newTestOptimizer(t)
	parent := []float64{-0.3, 0.25}

	child, err := o.CrossoverBLXAB(parent, parent)
	if err != nil {
		t.Fatalf("crossover: %v", err)
	}
	for i := range parent {
		if child[i] != parent[i] {
			t.Fatalf("identical parents must reproduce themselves, got %v", child)
		}
	}
}

func TestCrossoverBLXABOffspringWithinBounds(t *testing.T) {
	o := newTestOptimizer(t)

	for i := 0; i < 100; i++ {
		a := o.bounds.SampleUniform(o.rng)
		b := o.bounds.SampleUniform(o.rng)
		child, err := o.CrossoverBLXAB(a, b)
		if err != nil {
			t.Fatalf("crossover: %v", err)
		}
		if len(child) != len(a) {
			t.Fatalf("expected %d genes, got %d", len(a), len(child))
		}
		if !o.bounds.Contains(child) {
			t.Fatalf("offspring out of bounds: %v", child)
		}
	}
}

func TestCrossoverBuildsOffspringShare(t *testing.T) {
	o := newTestOptimizer(t)
	fitness := make([]float64, o.PopulationSize())
	for i := range fitness {
		fitness[i] = float64(i)
	}
	probs, err := LinearRank(fitness)
	if err != nil {
		t.Fatalf("linear rank: %v", err)
	}

	bred, err := o.Crossover(fitness, probs)
	if err != nil {
		t.Fatalf("crossover: %v", err)
	}
	if len(bred) != 22 {
		t.Fatalf("expected 22 offspring, got %d", len(bred))
	}
	for _, child := range bred {
		if !o.bounds.Contains(child) {
			t.Fatalf("offspring out of bounds: %v", child)
		}
	}
}

func TestCrossoverRejectsMisalignedVectors(t *testing.T) {
	o := newTestOptimizer(t)

	if _, err := o.Crossover(nil, nil); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for nil vectors, got %v", err)
	}
	if _, err := o.Crossover([]float64{1, 2, 3}, []float64{0.5, 0.3, 0.2}); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for short vectors, got %v", err)
	}
}
