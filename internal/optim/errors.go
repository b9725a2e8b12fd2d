package optim

import "errors"

// Construction failures and runtime contract failures are kept as distinct
// sentinel classes so callers can match them with errors.Is. ErrShape and
// ErrRange are configuration errors with a more specific cause attached.
var (
	// ErrConfiguration marks malformed construction arguments: bad partition
	// arity or sign, negative epochs, or a missing gene-range table.
	ErrConfiguration = errors.New("optim: invalid configuration")

	// ErrShape marks a gene-range table that is not rows of exactly two columns.
	ErrShape = errors.New("optim: gene range table must have exactly two columns")

	// ErrRange marks a gene-range row whose max does not exceed its min.
	ErrRange = errors.New("optim: gene range max must be greater than min")

	// ErrContract marks a runtime operation input that is not the expected
	// vector or population shape. The operation fails before any state change.
	ErrContract = errors.New("optim: operation input violates its contract")

	// ErrFitnessSize marks a fitness vector whose length does not match the
	// current population size.
	ErrFitnessSize = errors.New("optim: fitness vector must match current population size")

	// ErrInvariant marks defensive checks that are unreachable given correct
	// inputs. Seeing it means an implementation bug, not caller misuse.
	ErrInvariant = errors.New("optim: internal invariant violated")
)
