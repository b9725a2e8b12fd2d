package optim

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewBoundsTableRejectsNil(t *testing.T) {
	if _, err := NewBoundsTable(nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewBoundsTableRejectsBadShape(t *testing.T) {
	cases := [][][]float64{
		{},
		{{-1.2}, {0.6}},
		{{-1.2, 0.6, 1.0}, {-1.2, 0.6}},
		{{-1.2, 0.6}, {}},
	}
	for i, table := range cases {
		if _, err := NewBoundsTable(table); !errors.Is(err, ErrShape) {
			t.Fatalf("case %d: expected shape error, got %v", i, err)
		}
	}
}

func TestNewBoundsTableRejectsInvertedRange(t *testing.T) {
	if _, err := NewBoundsTable([][]float64{{1.2, 0.6}, {1.2, 0.6}}); !errors.Is(err, ErrRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if _, err := NewBoundsTable([][]float64{{0.6, 0.6}}); !errors.Is(err, ErrRange) {
		t.Fatalf("expected range error for min == max, got %v", err)
	}
}

func TestBoundsTableContainsAndClip(t *testing.T) {
	bounds, err := NewBoundsTable([][]float64{{-1.2, 0.6}, {-1.2, 0.6}})
	if err != nil {
		t.Fatalf("new bounds table: %v", err)
	}

	if !bounds.Contains([]float64{0, -1.2}) {
		t.Fatal("expected in-range genome to be contained")
	}
	if bounds.Contains([]float64{0.7, 0}) {
		t.Fatal("expected out-of-range genome to be rejected")
	}
	if bounds.Contains([]float64{0}) {
		t.Fatal("expected wrong-length genome to be rejected")
	}

	clipped := bounds.Clip([]float64{-5, 5})
	if clipped[0] != -1.2 || clipped[1] != 0.6 {
		t.Fatalf("unexpected clip result: %v", clipped)
	}
	if !bounds.Contains(clipped) {
		t.Fatal("clipped genome must be contained")
	}
}

func TestBoundsTableSampleUniformStaysInRange(t *testing.T) {
	bounds, err := NewBoundsTable([][]float64{{-1.2, 0.6}, {0, 10}, {-3, -2}})
	if err != nil {
		t.Fatalf("new bounds table: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		genome := bounds.SampleUniform(rng)
		if len(genome) != bounds.Dim() {
			t.Fatalf("expected %d genes, got %d", bounds.Dim(), len(genome))
		}
		if !bounds.Contains(genome) {
			t.Fatalf("sampled genome out of range: %v", genome)
		}
	}
}
