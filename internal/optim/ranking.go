package optim

import (
	"fmt"
	"sort"
)

// selectivePressure sets the slope of the linear ranking distribution. With
// n individuals the best receives selectivePressure/n of the mass and the
// worst (2-selectivePressure)/n.
const selectivePressure = 1.5

// LinearRank converts a fitness vector into a selection probability mass
// vector aligned with the input order. Individuals are stable-sorted by
// fitness descending, assigned mass linearly by rank position, and the mass
// is written back at the original indices so the sampler stays aligned with
// the population. Ties keep their original order, so results are
// reproducible for a given seed.
func LinearRank(fitness []float64) ([]float64, error) {
	if fitness == nil {
		return nil, fmt.Errorf("linear rank: fitness vector is nil: %w", ErrContract)
	}
	n := len(fitness)
	if n == 0 {
		return nil, fmt.Errorf("linear rank: fitness vector is empty: %w", ErrContract)
	}

	probs := make([]float64, n)
	if n == 1 {
		probs[0] = 1
		return probs, nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fitness[order[i]] > fitness[order[j]]
	})

	for pos, idx := range order {
		rankFrac := float64(pos) / float64(n-1)
		probs[idx] = (selectivePressure - (2*selectivePressure-2)*rankFrac) / float64(n)
	}
	return probs, nil
}

// rankOrder returns population indices sorted best-first by fitness, ties
// broken by original order.
func rankOrder(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fitness[order[i]] > fitness[order[j]]
	})
	return order
}
