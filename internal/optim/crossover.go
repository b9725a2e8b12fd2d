package optim

import "fmt"

// Blend extension factors. The interval around two parents is stretched by
// alpha times the gene distance on the fitter parent's side and beta times
// on the worse parent's side, so exploration is biased toward the fitter
// parent while still extrapolating past both.
const (
	BlendAlpha = 0.6
	BlendBeta  = 0.4
)

// CrossoverBLXAB blends one offspring from two equal-length parents, the
// fitter parent first. For each gene the offspring is drawn uniformly from
// the asymmetrically extended interval and then clipped into bounds. Two
// identical parents collapse every interval to a point, so the offspring
// equals the parents.
func (o *Optimizer) CrossoverBLXAB(better, worse []float64) ([]float64, error) {
	if better == nil || worse == nil {
		return nil, fmt.Errorf("crossover: parent vector is nil: %w", ErrContract)
	}
	if len(better) == 0 {
		return nil, fmt.Errorf("crossover: parent vector is empty: %w", ErrContract)
	}
	if len(better) != len(worse) {
		return nil, fmt.Errorf("crossover: parent lengths differ (%d vs %d): %w", len(better), len(worse), ErrContract)
	}

	child := make([]float64, len(better))
	for i := range better {
		lo, hi := better[i], worse[i]
		betterLow := true
		if lo > hi {
			lo, hi = hi, lo
			betterLow = false
		}
		d := hi - lo

		var low, high float64
		if betterLow {
			low = lo - BlendAlpha*d
			high = hi + BlendBeta*d
		} else {
			low = lo - BlendBeta*d
			high = hi + BlendAlpha*d
		}
		child[i] = low + o.rng.Float64()*(high-low)
	}
	return o.bounds.Clip(child), nil
}

// Crossover breeds the offspring share of the next generation. Parents are
// selected by stochastic universal sampling over the supplied probability
// mass vector, consumed pairwise; each pair is ordered by fitness before
// blending so the alpha extension follows the fitter parent. Fitness and
// probs must align with the current population ordering.
func (o *Optimizer) Crossover(fitness, probs []float64) ([][]float64, error) {
	if fitness == nil || probs == nil {
		return nil, fmt.Errorf("crossover: fitness or probability vector is nil: %w", ErrContract)
	}
	if len(fitness) != o.genomeNo || len(probs) != o.genomeNo {
		return nil, fmt.Errorf("crossover: vector length mismatch with population size %d: %w", o.genomeNo, ErrContract)
	}
	if o.offspring == 0 {
		return [][]float64{}, nil
	}

	parents, err := UniversalSample(o.rng, probs, 2*o.offspring)
	if err != nil {
		return nil, err
	}

	bred := make([][]float64, 0, o.offspring)
	for k := 0; k < o.offspring; k++ {
		a, b := parents[2*k], parents[2*k+1]
		if fitness[b] > fitness[a] {
			a, b = b, a
		}
		child, err := o.CrossoverBLXAB(o.pool[a], o.pool[b])
		if err != nil {
			return nil, err
		}
		bred = append(bred, child)
	}
	return bred, nil
}
