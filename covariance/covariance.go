// Package covariance implements CovarianceMatrix: a symmetric matrix with
// a cached inverse and an optional shared reference to the owning Datum's
// label array.
package covariance

import (
	"fmt"

	"github.com/milosgajdos/trackstar"
	"github.com/milosgajdos/trackstar/matrix"
)

// MinVariance is the minimum permitted magnitude of a diagonal entry,
// guarding against catastrophic cancellation in χ² evaluation.
const MinVariance = 1e-12

// CovarianceMatrix is a symmetric, positive-definite (by construction
// policy; not enforced beyond the diagonal floor) size×size matrix, with
// its inverse recomputed whenever any element changes.
//
// labels, when set, is a shared reference to the owning Datum's label
// slice: CovarianceMatrix never allocates or frees it.
type CovarianceMatrix struct {
	size   int
	data   [][]float64
	inv    *matrix.Matrix
	labels []string
}

// New returns a new size×size CovarianceMatrix initialized to the identity.
func New(size int) *CovarianceMatrix {
	c := &CovarianceMatrix{size: size, data: zeros(size)}
	for i := 0; i < size; i++ {
		c.data[i][i] = 1
	}
	c.recompute()
	return c
}

func zeros(n int) [][]float64 {
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
	}
	return data
}

// Dims implements trackstar.MatrixView.
func (c *CovarianceMatrix) Dims() (int, int) { return c.size, c.size }

// At implements trackstar.MatrixView.
func (c *CovarianceMatrix) At(i, j int) float64 { return c.data[i][j] }

// Size returns the dimension of the (square) covariance matrix.
func (c *CovarianceMatrix) Size() int { return c.size }

// SetLabels attaches labels as a shared, non-owning reference for
// label-addressed indexing. Callers pass the owning Datum's label slice;
// CovarianceMatrix never mutates or frees it.
func (c *CovarianceMatrix) SetLabels(labels []string) { c.labels = labels }

// Labels returns the shared label slice, or nil if none was attached.
func (c *CovarianceMatrix) Labels() []string { return c.labels }

// SetDiag assigns the diagonal element i to value. value must be strictly
// positive and greater than MinVariance, or SetDiag fails with
// trackstar.ErrInvalidCovariance. The inverse is recomputed after a
// successful assignment.
func (c *CovarianceMatrix) SetDiag(i int, value float64) error {
	if value <= MinVariance {
		return fmt.Errorf("covariance: diagonal[%d]=%g: %w", i, value, trackstar.ErrInvalidCovariance)
	}
	c.data[i][i] = value
	c.recompute()
	return nil
}

// Set assigns the off-diagonal pair (i, j) and (j, i) to value, preserving
// symmetry. Diagonal assignment (i == j) is delegated to SetDiag and obeys
// its rules. The inverse is recomputed after a successful assignment.
func (c *CovarianceMatrix) Set(i, j int, value float64) error {
	if i == j {
		return c.SetDiag(i, value)
	}
	c.data[i][j] = value
	c.data[j][i] = value
	c.recompute()
	return nil
}

func (c *CovarianceMatrix) recompute() {
	inv, err := matrix.Invert(matrix.New(c.data))
	if err != nil {
		c.inv = nil
		return
	}
	c.inv = inv
}

// Inv returns the cached inverse of the covariance matrix, or nil if the
// matrix is currently singular. Likelihood evaluation treats a nil inverse
// as trackstar.ErrSingular.
func (c *CovarianceMatrix) Inv() *matrix.Matrix { return c.inv }

// Det returns the determinant of the covariance matrix.
func (c *CovarianceMatrix) Det() (float64, error) {
	return matrix.Determinant(matrix.New(c.data))
}

// Submatrix returns a new CovarianceMatrix formed by selecting the rows
// and columns at the given indices, in the given order. It is used by
// Datum.Project to restrict a covariance to a label subset.
func (c *CovarianceMatrix) Submatrix(indices []int) *CovarianceMatrix {
	n := len(indices)
	out := &CovarianceMatrix{size: n, data: zeros(n)}
	for oi, i := range indices {
		for oj, j := range indices {
			out.data[oi][oj] = c.data[i][j]
		}
	}
	out.recompute()
	return out
}
