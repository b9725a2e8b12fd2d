package optim

import (
	"fmt"
	"math/rand"
)

// Default mutation-rate schedule endpoints. The rate interpolates linearly
// from the initial rate to the floor across the configured epoch horizon.
const (
	DefaultInitialMutationRate = 0.25
	DefaultFloorMutationRate   = 0.01
)

// Config holds the construction arguments of an Optimizer. All of it is
// validated eagerly by New; nothing is deferred to the first Step.
type Config struct {
	// GeneRanges is a rows-by-two table of per-gene [min,max] bounds.
	GeneRanges [][]float64
	// Partition is exactly two non-negative counts: the elite share carried
	// over unmodified and the offspring share regenerated by crossover.
	// Their sum fixes the population size for the optimizer's lifetime.
	Partition []int
	// Epochs is the decay horizon of the mutation schedule. It does not cap
	// how often Step may be called.
	Epochs int
	// Seed initializes the optimizer's private random source.
	Seed int64

	// InitialMutationRate and FloorMutationRate override the default decay
	// schedule endpoints when > 0.
	InitialMutationRate float64
	FloorMutationRate   float64
}

// Optimizer evolves a fixed-size population of bounded real-valued genomes,
// one generation per Step call. Fitness is supplied externally each
// generation; the optimizer never measures anything itself.
//
// An Optimizer owns its population, epoch counter, and mutation rate
// exclusively and is not safe for concurrent use.
type Optimizer struct {
	bounds    *BoundsTable
	elite     int
	offspring int
	genomeNo  int
	epochs    int

	initialRate float64
	floorRate   float64

	epoch        int
	mutationRate float64
	rng          *rand.Rand
	pool         [][]float64
}

// StepResult summarizes one completed generation.
type StepResult struct {
	// Epoch is the counter value after the step.
	Epoch int
	// Best is the highest-fitness genome of the generation that was just
	// evaluated, copied before replacement.
	Best []float64
	// BestFitness is the fitness of Best.
	BestFitness float64
	// MutationRate is the rate that will apply to the next generation.
	MutationRate float64
	// DuplicatesRemoved counts genomes dropped by deduplication and
	// replaced with fresh uniform draws.
	DuplicatesRemoved int
}

// New validates the configuration, builds the bounds table, and initializes
// the population with uniform draws. The epoch counter starts at 0.
func New(cfg Config) (*Optimizer, error) {
	bounds, err := NewBoundsTable(cfg.GeneRanges)
	if err != nil {
		return nil, err
	}
	if cfg.Partition == nil {
		return nil, fmt.Errorf("partition is nil: %w", ErrConfiguration)
	}
	if len(cfg.Partition) != 2 {
		return nil, fmt.Errorf("partition must have exactly two counts, got %d: %w", len(cfg.Partition), ErrConfiguration)
	}
	for i, count := range cfg.Partition {
		if count < 0 {
			return nil, fmt.Errorf("partition count %d is negative (%d): %w", i, count, ErrConfiguration)
		}
	}
	genomeNo := cfg.Partition[0] + cfg.Partition[1]
	if genomeNo == 0 {
		return nil, fmt.Errorf("partition sums to zero: %w", ErrConfiguration)
	}
	if cfg.Epochs < 0 {
		return nil, fmt.Errorf("epochs must be >= 0, got %d: %w", cfg.Epochs, ErrConfiguration)
	}

	initialRate := cfg.InitialMutationRate
	if initialRate == 0 {
		initialRate = DefaultInitialMutationRate
	}
	floorRate := cfg.FloorMutationRate
	if floorRate == 0 {
		floorRate = DefaultFloorMutationRate
	}
	if initialRate <= 0 || initialRate > 1 {
		return nil, fmt.Errorf("initial mutation rate must be in (0,1], got %g: %w", initialRate, ErrConfiguration)
	}
	if floorRate <= 0 || floorRate > initialRate {
		return nil, fmt.Errorf("floor mutation rate must be in (0, initial], got %g: %w", floorRate, ErrConfiguration)
	}

	o := &Optimizer{
		bounds:       bounds,
		elite:        cfg.Partition[0],
		offspring:    cfg.Partition[1],
		genomeNo:     genomeNo,
		epochs:       cfg.Epochs,
		initialRate:  initialRate,
		floorRate:    floorRate,
		mutationRate: initialRate,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
	}
	o.pool = make([][]float64, genomeNo)
	for i := range o.pool {
		o.pool[i] = bounds.SampleUniform(o.rng)
	}
	return o, nil
}

// Epoch returns the number of generations executed so far.
func (o *Optimizer) Epoch() int {
	return o.epoch
}

// PopulationSize returns the fixed genome count per generation.
func (o *Optimizer) PopulationSize() int {
	return o.genomeNo
}

// MutationRate returns the rate that applies to the next generation.
func (o *Optimizer) MutationRate() float64 {
	return o.mutationRate
}

// Bounds returns the validated gene-range table.
func (o *Optimizer) Bounds() *BoundsTable {
	return o.bounds
}

// Population returns a copy of the current pool, aligned with the ordering
// fitness vectors must follow.
func (o *Optimizer) Population() [][]float64 {
	return copyPool(o.pool)
}

// Step executes exactly one generation cycle against the supplied fitness
// vector: rank, sample, crossover, mutate, deduplicate-and-refill, replace.
// The fitness vector must align with the current Population ordering and
// match its length. On any validation failure the population, epoch, and
// mutation rate are left untouched.
func (o *Optimizer) Step(fitness []float64) (StepResult, error) {
	if fitness == nil {
		return StepResult{}, fmt.Errorf("step: fitness vector is nil: %w", ErrContract)
	}
	if len(fitness) != o.genomeNo {
		return StepResult{}, fmt.Errorf("step: got %d fitness values for %d genomes: %w", len(fitness), o.genomeNo, ErrFitnessSize)
	}

	probs, err := LinearRank(fitness)
	if err != nil {
		return StepResult{}, err
	}
	order := rankOrder(fitness)

	next := make([][]float64, 0, o.genomeNo)
	for i := 0; i < o.elite; i++ {
		next = append(next, copyGenome(o.pool[order[i]]))
	}

	if o.offspring > 0 {
		bred, err := o.Crossover(fitness, probs)
		if err != nil {
			return StepResult{}, err
		}
		mutated, err := o.Mutation(bred)
		if err != nil {
			return StepResult{}, err
		}
		next = append(next, mutated...)
	}

	deduped, err := o.RemoveDuplicates(next)
	if err != nil {
		return StepResult{}, err
	}
	removed := len(next) - len(deduped)
	for len(deduped) < o.genomeNo {
		deduped = append(deduped, o.bounds.SampleUniform(o.rng))
	}

	best := copyGenome(o.pool[order[0]])
	o.pool = deduped
	o.epoch++
	o.UpdateMutationRate()

	return StepResult{
		Epoch:             o.epoch,
		Best:              best,
		BestFitness:       fitness[order[0]],
		MutationRate:      o.mutationRate,
		DuplicatesRemoved: removed,
	}, nil
}

// UpdateMutationRate recomputes the mutation rate for the current epoch:
// linear interpolation from the initial rate to the floor across the
// configured horizon, clamped at the floor beyond it. Deterministic given
// the epoch counter.
func (o *Optimizer) UpdateMutationRate() {
	if o.epochs <= 0 {
		o.mutationRate = o.floorRate
		return
	}
	frac := float64(o.epoch) / float64(o.epochs)
	if frac > 1 {
		frac = 1
	}
	o.mutationRate = o.initialRate - (o.initialRate-o.floorRate)*frac
}

func copyGenome(genome []float64) []float64 {
	return append([]float64(nil), genome...)
}

func copyPool(pool [][]float64) [][]float64 {
	copied := make([][]float64, len(pool))
	for i, genome := range pool {
		copied[i] = copyGenome(genome)
	}
	return copied
}
