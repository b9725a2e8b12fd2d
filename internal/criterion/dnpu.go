package criterion

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// DNPUSurrogate is a seeded synthetic stand-in for a dopant-network
// processing unit: a smooth nonlinear response over a fixed number of
// control electrodes, built as a random sum of saturating projections. The
// surface is frozen at construction, so repeated measurements of the same
// genes return the same value.
type DNPUSurrogate struct {
	electrodes int
	weights    [][]float64
	biases     []float64
	gains      []float64
}

const dnpuHiddenUnits = 12

// NewDNPUSurrogate builds a surrogate surface for the given electrode count,
// deterministically from the seed.
func NewDNPUSurrogate(seed int64, electrodes int) (*DNPUSurrogate, error) {
	if electrodes <= 0 {
		return nil, fmt.Errorf("dnpu: electrode count must be > 0, got %d", electrodes)
	}

	rng := rand.New(rand.NewSource(seed))
	weights := make([][]float64, dnpuHiddenUnits)
	biases := make([]float64, dnpuHiddenUnits)
	gains := make([]float64, dnpuHiddenUnits)
	for k := range weights {
		row := make([]float64, electrodes)
		for i := range row {
			row[i] = rng.NormFloat64()
		}
		weights[k] = row
		biases[k] = rng.NormFloat64() * 0.5
		gains[k] = rng.NormFloat64()
	}

	return &DNPUSurrogate{
		electrodes: electrodes,
		weights:    weights,
		biases:     biases,
		gains:      gains,
	}, nil
}

func (d *DNPUSurrogate) Name() string {
	return "dnpu"
}

func (d *DNPUSurrogate) Description() string {
	return fmt.Sprintf("synthetic dopant-network response over %d control electrodes", d.electrodes)
}

func (d *DNPUSurrogate) Dim() int {
	return d.electrodes
}

// Measure returns the simulated output current for one control-voltage
// assignment.
func (d *DNPUSurrogate) Measure(ctx context.Context, genes []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(genes) != d.electrodes {
		return 0, fmt.Errorf("dnpu: got %d control voltages, want %d", len(genes), d.electrodes)
	}

	out := 0.0
	for k, row := range d.weights {
		act := d.biases[k]
		for i, w := range row {
			act += w * genes[i]
		}
		out += d.gains[k] * math.Tanh(act)
	}
	return out, nil
}
