package optim

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// massTolerance is how far the probability mass may drift from 1 before the
// sampler treats the input as corrupt.
const massTolerance = 1e-6

// UniversalSample selects count indices from the probability mass vector
// using stochastic universal sampling: one uniform offset in [0, 1/count)
// and count equally spaced pointers walked across the cumulative
// distribution. Each index is selected close to its expected proportional
// share, with far lower variance than independent roulette draws.
//
// The mass vector is produced by LinearRank; negative mass or a total far
// from 1 signals a bug upstream, not caller misuse.
func UniversalSample(rng *rand.Rand, probs []float64, count int) ([]int, error) {
	if rng == nil {
		return nil, fmt.Errorf("universal sample: random source is nil: %w", ErrContract)
	}
	if len(probs) == 0 {
		return nil, fmt.Errorf("universal sample: probability vector is empty: %w", ErrContract)
	}
	if count <= 0 {
		return nil, fmt.Errorf("universal sample: count must be > 0, got %d: %w", count, ErrContract)
	}
	if minMass := floats.Min(probs); minMass < 0 {
		return nil, fmt.Errorf("universal sample: negative mass %g: %w", minMass, ErrInvariant)
	}
	if total := floats.Sum(probs); math.Abs(total-1) > massTolerance {
		return nil, fmt.Errorf("universal sample: mass sums to %g: %w", total, ErrInvariant)
	}

	step := 1.0 / float64(count)
	offset := rng.Float64() * step

	chosen := make([]int, 0, count)
	idx := 0
	cum := probs[0]
	for k := 0; k < count; k++ {
		pointer := offset + float64(k)*step
		for pointer > cum && idx < len(probs)-1 {
			idx++
			cum += probs[idx]
		}
		chosen = append(chosen, idx)
	}
	return chosen, nil
}
