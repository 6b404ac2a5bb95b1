package synth

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// SPDMatrix builds a random n×n symmetric positive-definite matrix,
// A·Aᵀ plus a small diagonal floor to keep it safely invertible, for
// fuzzing the matrix kernel's Determinant/Invert round-trip law and the
// covariance package's recompute-on-write invariant.
func SPDMatrix(n int, seed int64) *mat.SymDense {
	src := rand.New(rand.NewSource(seed))
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, src.NormFloat64())
		}
	}

	var prod mat.Dense
	prod.Mul(a, a.T())

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := prod.At(i, j)
			if i == j {
				v += 1e-3
			}
			sym.SetSym(i, j, v)
		}
	}
	return sym
}

// DenseRows returns the rows of m as independent float64 slices, for
// callers that want plain [][]float64 data (e.g. to feed
// covariance.CovarianceMatrix.Set or matrix.New).
func DenseRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		rows[i] = row
	}
	return rows
}
