package optim

import (
	"fmt"
	"math/rand"
)

// BoundsTable holds the per-gene [min,max] ranges every genome must stay
// inside, at construction and after every operator.
type BoundsTable struct {
	ranges [][2]float64
}

// NewBoundsTable validates a rectangular min/max table. The table must be
// non-nil, non-empty, and every row must hold exactly two columns with
// max > min.
func NewBoundsTable(table [][]float64) (*BoundsTable, error) {
	if table == nil {
		return nil, fmt.Errorf("gene ranges: table is nil: %w", ErrConfiguration)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("gene ranges: table is empty: %w", ErrShape)
	}
	ranges := make([][2]float64, len(table))
	for i, row := range table {
		if len(row) != 2 {
			return nil, fmt.Errorf("gene ranges: row %d has %d columns: %w", i, len(row), ErrShape)
		}
		if row[1] <= row[0] {
			return nil, fmt.Errorf("gene ranges: row %d: max %g <= min %g: %w", i, row[1], row[0], ErrRange)
		}
		ranges[i] = [2]float64{row[0], row[1]}
	}
	return &BoundsTable{ranges: ranges}, nil
}

// Dim returns the number of gene dimensions.
func (b *BoundsTable) Dim() int {
	return len(b.ranges)
}

// Min returns the lower bound of gene i.
func (b *BoundsTable) Min(i int) float64 {
	return b.ranges[i][0]
}

// Max returns the upper bound of gene i.
func (b *BoundsTable) Max(i int) float64 {
	return b.ranges[i][1]
}

// Contains reports whether every gene of the genome lies inside its range.
// A genome of the wrong length is never contained.
func (b *BoundsTable) Contains(genome []float64) bool {
	if len(genome) != len(b.ranges) {
		return false
	}
	for i, v := range genome {
		if v < b.ranges[i][0] || v > b.ranges[i][1] {
			return false
		}
	}
	return true
}

// Clip returns a copy of the genome with every gene clamped into its range.
func (b *BoundsTable) Clip(genome []float64) []float64 {
	clipped := make([]float64, len(genome))
	for i, v := range genome {
		if i >= len(b.ranges) {
			clipped[i] = v
			continue
		}
		if v < b.ranges[i][0] {
			v = b.ranges[i][0]
		}
		if v > b.ranges[i][1] {
			v = b.ranges[i][1]
		}
		clipped[i] = v
	}
	return clipped
}

// SampleUniform draws one genome uniformly within all ranges.
func (b *BoundsTable) SampleUniform(rng *rand.Rand) []float64 {
	genome := make([]float64, len(b.ranges))
	for i, r := range b.ranges {
		genome[i] = r[0] + rng.Float64()*(r[1]-r[0])
	}
	return genome
}
