package optim

import (
	"math"
	"strconv"
	"strings"
)

// RemoveDuplicates drops every genome that is an exact duplicate of an
// earlier one, keeping first occurrences in iteration order. The result may
// be shorter than the population size; refilling is the controller's job so
// the size invariant holds only at generation boundaries.
func (o *Optimizer) RemoveDuplicates(pool [][]float64) ([][]float64, error) {
	if err := o.checkPool("remove duplicates", pool); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(pool))
	unique := make([][]float64, 0, len(pool))
	for _, genome := range pool {
		key := genomeKey(genome)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, copyGenome(genome))
	}
	return unique, nil
}

// genomeKey encodes the exact bit pattern of every gene, so equality is
// bitwise rather than tolerance-based.
func genomeKey(genome []float64) string {
	var sb strings.Builder
	for _, v := range genome {
		sb.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
		sb.WriteByte('|')
	}
	return sb.String()
}
