package likelihood

import (
	"fmt"
	"math"

	"github.com/milosgajdos/trackstar/matrix"
)

// rowVec and colVec lift a plain vector into the 1×N / N×1 shapes the
// matrix kernel expects, so the quadratic and bilinear forms below go
// through matrix.Mul rather than a hand-rolled dot product — the hot path
// described in matrix.go's package doc is exactly these shapes.
func rowVec(v []float64) *matrix.Matrix {
	return matrix.New([][]float64{append([]float64(nil), v...)})
}

func colVec(v []float64) *matrix.Matrix {
	data := make([][]float64, len(v))
	for i, x := range v {
		data[i] = []float64{x}
	}
	return matrix.New(data)
}

// quadraticForm computes v · m · vᵀ for a vector v and square matrix m of
// matching dimension, via two matrix.Mul calls (1×N * N×N, then 1×N *
// N×1).
func quadraticForm(v []float64, m *matrix.Matrix) (float64, error) {
	return bilinearForm(v, m, v)
}

// bilinearForm computes v · m · wᵀ.
func bilinearForm(v []float64, m *matrix.Matrix, w []float64) (float64, error) {
	tmp, err := matrix.Mul(rowVec(v), m)
	if err != nil {
		return 0, err
	}
	result, err := matrix.Mul(tmp, colVec(w))
	if err != nil {
		return 0, err
	}
	r, c := result.Dims()
	if r != 1 || c != 1 {
		panic(fmt.Sprintf("likelihood: internal error: bilinear form returned %dx%d, want 1x1", r, c))
	}
	return result.At(0, 0), nil
}

func vectorSub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// norm2 returns the Euclidean length of v — the segment length Δm between
// two consecutive track vertices.
func norm2(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
