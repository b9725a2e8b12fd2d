package optim

import (
	"errors"
	"testing"
)

func TestNewValidConstruction(t *testing.T) {
	o, err := New(Config{
		GeneRanges: [][]float64{{-1.2, 0.6}, {-1.2, 0.6}},
		Partition:  []int{4, 22},
		Epochs:     100,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	if o.Epoch() != 0 {
		t.Fatalf("epoch after construction = %d, want 0", o.Epoch())
	}
	if o.PopulationSize() != 26 {
		t.Fatalf("population size = %d, want 26", o.PopulationSize())
	}
	pool := o.Population()
	if len(pool) != 26 {
		t.Fatalf("initial pool has %d genomes, want 26", len(pool))
	}
	for _, genome := range pool {
		if !o.Bounds().Contains(genome) {
			t.Fatalf("initial genome out of bounds: %v", genome)
		}
	}
}

func TestNewRejectsBadPartition(t *testing.T) {
	ranges := [][]float64{{-1.2, 0.6}, {-1.2, 0.6}}
	cases := [][]int{
		nil,
		{},
		{26},
		{4, 11, 11},
		{-11, 2},
		{4, -22},
		{0, 0},
	}
	for i, partition := range cases {
		_, err := New(Config{GeneRanges: ranges, Partition: partition, Epochs: 100})
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("case %d (%v): expected configuration error, got %v", i, partition, err)
		}
	}
}

func TestNewRejectsNegativeEpochs(t *testing.T) {
	_, err := New(Config{
		GeneRanges: [][]float64{{-1.2, 0.6}},
		Partition:  []int{1, 3},
		Epochs:     -1,
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewRejectsBadMutationRates(t *testing.T) {
	ranges := [][]float64{{-1.2, 0.6}}
	if _, err := New(Config{GeneRanges: ranges, Partition: []int{1, 3}, Epochs: 10, InitialMutationRate: 1.5}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for rate > 1, got %v", err)
	}
	if _, err := New(Config{GeneRanges: ranges, Partition: []int{1, 3}, Epochs: 10, InitialMutationRate: 0.05, FloorMutationRate: 0.2}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for floor > initial, got %v", err)
	}
}

func TestStepAdvancesEpochByExactlyOne(t *testing.T) {
	o := newTestOptimizer(t)

	fitness := make([]float64, o.PopulationSize())
	for i := range fitness {
		fitness[i] = float64(i)
	}

	result, err := o.Step(fitness)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if result.Epoch != 1 || o.Epoch() != 1 {
		t.Fatalf("epoch after one step = %d, want 1", o.Epoch())
	}

	for i := 0; i < 9; i++ {
		if _, err := o.Step(fitness); err != nil {
			t.Fatalf("step %d: %v", i+2, err)
		}
	}
	if o.Epoch() != 10 {
		t.Fatalf("epoch after ten steps = %d, want 10", o.Epoch())
	}
}

func TestStepRejectsBadFitness(t *testing.T) {
	o := newTestOptimizer(t)

	if _, err := o.Step(nil); !errors.Is(err, ErrContract) {
		t.Fatalf("expected contract error for nil fitness, got %v", err)
	}
	if o.Epoch() != 0 {
		t.Fatal("failed step must not advance the epoch")
	}

	if _, err := o.Step([]float64{1, 2, 3, 4}); !errors.Is(err, ErrFitnessSize) {
		t.Fatalf("expected fitness size error, got %v", err)
	}
	if o.Epoch() != 0 {
		t.Fatal("failed step must not advance the epoch")
	}
}

func TestStepMaintainsPopulationInvariants(t *testing.T) {
	o := newTestOptimizer(t)

	fitness := make([]float64, o.PopulationSize())
	for epoch := 0; epoch < 30; epoch++ {
		pool := o.Population()
		for i, genome := range pool {
			// Quadratic criterion peaking inside the bounds.
			fitness[i] = -(genome[0]-0.1)*(genome[0]-0.1) - (genome[1]+0.4)*(genome[1]+0.4)
		}
		result, err := o.Step(fitness)
		if err != nil {
			t.Fatalf("step at epoch %d: %v", epoch, err)
		}
		if len(result.Best) != o.Bounds().Dim() {
			t.Fatalf("best genome has %d genes, want %d", len(result.Best), o.Bounds().Dim())
		}

		next := o.Population()
		if len(next) != o.PopulationSize() {
			t.Fatalf("population size drifted to %d at epoch %d", len(next), epoch+1)
		}
		for _, genome := range next {
			if !o.Bounds().Contains(genome) {
				t.Fatalf("genome escaped bounds at epoch %d: %v", epoch+1, genome)
			}
		}
	}
}

func TestStepReturnsBestOfEvaluatedGeneration(t *testing.T) {
	o := newTestOptimizer(t)
	pool := o.Population()

	fitness := make([]float64, len(pool))
	for i := range fitness {
		fitness[i] = -float64(i)
	}
	// Index 0 is the best by construction.
	result, err := o.Step(fitness)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if result.BestFitness != 0 {
		t.Fatalf("best fitness = %v, want 0", result.BestFitness)
	}
	for g := range pool[0] {
		if result.Best[g] != pool[0][g] {
			t.Fatalf("best genome mismatch: got %v, want %v", result.Best, pool[0])
		}
	}
}

func TestStepDeterministicForSeed(t *testing.T) {
	build := func() *Optimizer {
		o, err := New(Config{
			GeneRanges: [][]float64{{-1.2, 0.6}, {-1.2, 0.6}},
			Partition:  []int{4, 22},
			Epochs:     100,
			Seed:       99,
		})
		if err != nil {
			t.Fatalf("new optimizer: %v", err)
		}
		return o
	}

	a, b := build(), build()
	fitness := make([]float64, a.PopulationSize())
	for i := range fitness {
		fitness[i] = float64(i % 5)
	}
	for step := 0; step < 5; step++ {
		if _, err := a.Step(fitness); err != nil {
			t.Fatalf("step a: %v", err)
		}
		if _, err := b.Step(fitness); err != nil {
			t.Fatalf("step b: %v", err)
		}
	}

	poolA, poolB := a.Population(), b.Population()
	for i := range poolA {
		for g := range poolA[i] {
			if poolA[i][g] != poolB[i][g] {
				t.Fatal("same seed produced diverging populations")
			}
		}
	}
}

func TestStepCarriesEliteUnmodified(t *testing.T) {
	o := newTestOptimizer(t)
	pool := o.Population()

	fitness := make([]float64, len(pool))
	for i := range fitness {
		fitness[i] = -float64(i)
	}
	if _, err := o.Step(fitness); err != nil {
		t.Fatalf("step: %v", err)
	}

	// The top-4 of the evaluated generation survive verbatim at the head of
	// the next pool (they are distinct uniform draws, so dedup keeps them).
	next := o.Population()
	for i := 0; i < 4; i++ {
		for g := range pool[i] {
			if next[i][g] != pool[i][g] {
				t.Fatalf("elite genome %d was modified", i)
			}
		}
	}
}
