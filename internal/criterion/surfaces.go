package criterion

import (
	"context"
	"fmt"
	"math"
)

// Sphere is the negated sphere function. Maximum 0 at the origin.
type Sphere struct{}

func (Sphere) Name() string {
	return "sphere"
}

func (Sphere) Description() string {
	return "negated sum of squares, maximum 0 at the origin"
}

func (Sphere) Measure(ctx context.Context, genes []float64) (float64, error) {
	if err := checkGenes(ctx, "sphere", genes); err != nil {
		return 0, err
	}
	total := 0.0
	for _, v := range genes {
		total += v * v
	}
	return -total, nil
}

// Rastrigin is the negated Rastrigin function, a heavily multimodal surface
// with its maximum 0 at the origin.
type Rastrigin struct{}

func (Rastrigin) Name() string {
	return "rastrigin"
}

func (Rastrigin) Description() string {
	return "negated Rastrigin function, multimodal, maximum 0 at the origin"
}

func (Rastrigin) Measure(ctx context.Context, genes []float64) (float64, error) {
	if err := checkGenes(ctx, "rastrigin", genes); err != nil {
		return 0, err
	}
	total := 10 * float64(len(genes))
	for _, v := range genes {
		total += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return -total, nil
}

// StyblinskiTang is the negated Styblinski-Tang function. Its maximum is
// about 39.166*n at x_i = -2.903534.
type StyblinskiTang struct{}

func (StyblinskiTang) Name() string {
	return "styblinski_tang"
}

func (StyblinskiTang) Description() string {
	return "negated Styblinski-Tang function, maximum near x_i = -2.903534"
}

func (StyblinskiTang) Measure(ctx context.Context, genes []float64) (float64, error) {
	if err := checkGenes(ctx, "styblinski_tang", genes); err != nil {
		return 0, err
	}
	total := 0.0
	for _, v := range genes {
		total += v*v*v*v - 16*v*v + 5*v
	}
	return -total / 2, nil
}

func checkGenes(ctx context.Context, name string, genes []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(genes) == 0 {
		return fmt.Errorf("%s: empty gene vector", name)
	}
	return nil
}
