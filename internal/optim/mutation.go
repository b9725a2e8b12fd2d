package optim

import "fmt"

// Mutation returns a copy of the pool in which each gene of each genome is,
// independently with probability equal to the current mutation rate,
// replaced by a fresh uniform draw from its range. The input is never
// modified and fitness is never consulted.
func (o *Optimizer) Mutation(pool [][]float64) ([][]float64, error) {
	if err := o.checkPool("mutation", pool); err != nil {
		return nil, err
	}

	mutated := make([][]float64, len(pool))
	for i, genome := range pool {
		out := copyGenome(genome)
		for g := range out {
			if o.rng.Float64() < o.mutationRate {
				out[g] = o.bounds.Min(g) + o.rng.Float64()*(o.bounds.Max(g)-o.bounds.Min(g))
			}
		}
		mutated[i] = out
	}
	return mutated, nil
}

// checkPool validates that pool is population-shaped: non-nil rows of
// exactly the bounds-table gene count.
func (o *Optimizer) checkPool(op string, pool [][]float64) error {
	if pool == nil {
		return fmt.Errorf("%s: pool is nil: %w", op, ErrContract)
	}
	for i, genome := range pool {
		if genome == nil {
			return fmt.Errorf("%s: genome %d is nil: %w", op, i, ErrContract)
		}
		if len(genome) != o.bounds.Dim() {
			return fmt.Errorf("%s: genome %d has %d genes, want %d: %w", op, i, len(genome), o.bounds.Dim(), ErrContract)
		}
	}
	return nil
}
