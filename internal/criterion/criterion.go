// Package criterion defines the black-box objective the optimizer is driven
// by: one scalar response per candidate control-voltage vector, higher is
// better. Implementations stand in for the measured device response.
package criterion

import "context"

type Criterion interface {
	Name() string
	Description() string
	// Measure returns the criterion value for one candidate. It must be
	// deterministic given the construction parameters of the criterion.
	Measure(ctx context.Context, genes []float64) (float64, error)
}

// DimAwareCriterion optionally constrains the gene dimension it accepts.
type DimAwareCriterion interface {
	Criterion
	Dim() int
}
