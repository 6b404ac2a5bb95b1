// Package matrix implements the dense real matrix kernel used throughout
// trackstar's hot path: construction, elementwise arithmetic, transpose,
// determinant and inverse. Shapes in the hot path are small (the likelihood
// engine only ever multiplies 1×N, N×N and N×1 matrices with N typically
// ≤ 20), so the naive algorithms below are sufficient; see Determinant and
// Invert for the one place that matters more than asymptotic complexity:
// numerical stability.
package matrix

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/milosgajdos/trackstar"
)

// Matrix is a dense, row-major real matrix. The zero value is not usable;
// construct with New or Zeros. Ownership is exclusive: a Matrix is mutated
// only through its own methods or by direct element assignment, never by
// another package reaching into its storage.
type Matrix struct {
	rows, cols int
	data       [][]float64
}

// New wraps data as a Matrix without copying. Every row of data must have
// the same length; callers that need a private copy should copy data
// themselves before calling New.
func New(data [][]float64) *Matrix {
	rows := len(data)
	cols := 0
	if rows > 0 {
		cols = len(data[0])
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// Zeros returns a new r×c Matrix with every element set to 0.
func Zeros(r, c int) *Matrix {
	data := make([][]float64, r)
	for i := range data {
		data[i] = make([]float64, c)
	}
	return &Matrix{rows: r, cols: c, data: data}
}

// Identity returns a new n×n identity matrix.
func Identity(n int) *Matrix {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = 1
	}
	return m
}

// Dims returns the number of rows and columns. Dims implements
// trackstar.MatrixView.
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// At returns the element at (i, j). At implements trackstar.MatrixView.
func (m *Matrix) At(i, j int) float64 { return m.data[i][j] }

// Set assigns value to the element at (i, j).
func (m *Matrix) Set(i, j int, value float64) { m.data[i][j] = value }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.cols)
	copy(row, m.data[i])
	return row
}

// sameShape reports whether a and b have equal dimensions.
func sameShape(a, b trackstar.MatrixView) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}

// Add returns a new Matrix holding the elementwise sum of a and b. It fails
// with trackstar.ErrShape if their dimensions differ.
func Add(a, b trackstar.MatrixView) (*Matrix, error) {
	if !sameShape(a, b) {
		ar, ac := a.Dims()
		br, bc := b.Dims()
		return nil, fmt.Errorf("add: %dx%d + %dx%d: %w", ar, ac, br, bc, trackstar.ErrShape)
	}
	r, c := a.Dims()
	out := Zeros(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i][j] = a.At(i, j) + b.At(i, j)
		}
	}
	return out, nil
}

// Sub returns a new Matrix holding the elementwise difference a - b. It
// fails with trackstar.ErrShape if their dimensions differ.
func Sub(a, b trackstar.MatrixView) (*Matrix, error) {
	if !sameShape(a, b) {
		ar, ac := a.Dims()
		br, bc := b.Dims()
		return nil, fmt.Errorf("sub: %dx%d - %dx%d: %w", ar, ac, br, bc, trackstar.ErrShape)
	}
	r, c := a.Dims()
	out := Zeros(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i][j] = a.At(i, j) - b.At(i, j)
		}
	}
	return out, nil
}

// Mul returns the matrix product a*b. It is legal when a.cols == b.rows;
// the result has shape a.rows × b.cols. It fails with trackstar.ErrShape
// otherwise.
func Mul(a, b trackstar.MatrixView) (*Matrix, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return nil, fmt.Errorf("mul: %dx%d * %dx%d: %w", ar, ac, br, bc, trackstar.ErrShape)
	}
	out := Zeros(ar, bc)
	for i := 0; i < ar; i++ {
		for k := 0; k < ac; k++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < bc; j++ {
				out.data[i][j] += aik * b.At(k, j)
			}
		}
	}
	return out, nil
}

// Transpose returns a new Matrix with out[j][i] = a[i][j].
func Transpose(a trackstar.MatrixView) *Matrix {
	r, c := a.Dims()
	out := Zeros(c, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[j][i] = a.At(i, j)
		}
	}
	return out
}

// Determinant computes the determinant of the square matrix a.
//
// For size ≤ 2 it uses the closed form. Otherwise it expands by minors
// along the "ideal axis" — the row or column with the greatest number of
// zero entries — recursing on (size-1) submatrices formed by deleting one
// row and one column, with the cofactor sign (-1)^(i+j). This keeps the
// recursion shallow on the sparse, near-diagonal covariance matrices the
// likelihood engine actually inverts, without needing a pivoted LU
// factorization.
func Determinant(a trackstar.MatrixView) (float64, error) {
	r, c := a.Dims()
	if r != c {
		return 0, fmt.Errorf("determinant: %dx%d: %w", r, c, trackstar.ErrNonSquare)
	}
	return determinant(a, r)
}

func determinant(a trackstar.MatrixView, n int) (float64, error) {
	switch n {
	case 0:
		return 1, nil
	case 1:
		return a.At(0, 0), nil
	case 2:
		return a.At(0, 0)*a.At(1, 1) - a.At(0, 1)*a.At(1, 0), nil
	}

	axis, index := idealAxis(a, n)

	var det float64
	for k := 0; k < n; k++ {
		var i, j int
		if axis == rowAxis {
			i, j = index, k
		} else {
			i, j = k, index
		}
		entry := a.At(i, j)
		if entry == 0 {
			continue
		}
		sub := minor(a, n, i, j)
		subDet, err := determinant(sub, n-1)
		if err != nil {
			return 0, err
		}
		sign := 1.0
		if (i+j)%2 != 0 {
			sign = -1
		}
		det += sign * entry * subDet
	}
	return det, nil
}

type axisKind int

const (
	rowAxis axisKind = iota
	colAxis
)

// idealAxis returns the row or column of a (n×n) with the greatest number
// of zero entries, and its index, to minimize the number of cofactor terms
// the minor expansion has to evaluate.
func idealAxis(a trackstar.MatrixView, n int) (axisKind, int) {
	bestAxis, bestIndex, bestZeros := rowAxis, 0, -1
	for i := 0; i < n; i++ {
		zeros := 0
		for j := 0; j < n; j++ {
			if a.At(i, j) == 0 {
				zeros++
			}
		}
		if zeros > bestZeros {
			bestAxis, bestIndex, bestZeros = rowAxis, i, zeros
		}
	}
	for j := 0; j < n; j++ {
		zeros := 0
		for i := 0; i < n; i++ {
			if a.At(i, j) == 0 {
				zeros++
			}
		}
		if zeros > bestZeros {
			bestAxis, bestIndex, bestZeros = colAxis, j, zeros
		}
	}
	return bestAxis, bestIndex
}

// minor returns the (n-1)x(n-1) submatrix of a (n×n) formed by deleting
// row delRow and column delCol.
func minor(a trackstar.MatrixView, n, delRow, delCol int) *Matrix {
	out := Zeros(n-1, n-1)
	oi := 0
	for i := 0; i < n; i++ {
		if i == delRow {
			continue
		}
		oj := 0
		for j := 0; j < n; j++ {
			if j == delCol {
				continue
			}
			out.data[oi][oj] = a.At(i, j)
			oj++
		}
		oi++
	}
	return out
}

// Cofactors returns the cofactor matrix of the square matrix a:
// C[i][j] = (-1)^(i+j) * det(minor(a, i, j)).
func Cofactors(a trackstar.MatrixView) (*Matrix, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("cofactors: %dx%d: %w", r, c, trackstar.ErrNonSquare)
	}
	out := Zeros(r, r)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			sub := minor(a, r, i, j)
			subDet, err := determinant(sub, r-1)
			if err != nil {
				return nil, err
			}
			sign := 1.0
			if (i+j)%2 != 0 {
				sign = -1
			}
			out.data[i][j] = sign * subDet
		}
	}
	return out, nil
}

// Invert returns the inverse of the square matrix a: adjugate(a)/det(a),
// where adjugate is the transpose of the cofactor matrix. It fails with
// trackstar.ErrSingular if det(a) == 0.
func Invert(a trackstar.MatrixView) (*Matrix, error) {
	det, err := Determinant(a)
	if err != nil {
		return nil, err
	}
	if det == 0 {
		return nil, fmt.Errorf("invert: %w", trackstar.ErrSingular)
	}
	cof, err := Cofactors(a)
	if err != nil {
		return nil, err
	}
	adj := Transpose(cof)
	r, c := adj.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			adj.data[i][j] /= det
		}
	}
	return adj, nil
}

// RowSums returns a slice containing the sum of each row of m.
func RowSums(m trackstar.MatrixView) []float64 {
	rows, cols := m.Dims()
	sums := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = m.At(i, j)
		}
		sums[i] = floats.Sum(row)
	}
	return sums
}

// ColSums returns a slice containing the sum of each column of m.
func ColSums(m trackstar.MatrixView) []float64 {
	rows, cols := m.Dims()
	sums := make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := make([]float64, rows)
		for i := 0; i < rows; i++ {
			col[i] = m.At(i, j)
		}
		sums[j] = floats.Sum(col)
	}
	return sums
}

// Format returns a fmt.Formatter that renders m as a bracketed grid, in the
// style of gonum's mat.Formatted, without depending on gonum/mat itself.
func Format(m trackstar.MatrixView) fmt.Formatter {
	return matrixFormatter{m}
}

type matrixFormatter struct{ m trackstar.MatrixView }

func (f matrixFormatter) Format(fs fmt.State, verb rune) {
	rows, cols := f.m.Dims()
	var b strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch {
		case rows == 1:
			b.WriteByte('[')
		case i == 0:
			b.WriteString("⎡")
		case i == rows-1:
			b.WriteString("⎣")
		default:
			b.WriteString("⎢")
		}
		for j := 0; j < cols; j++ {
			if j > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%v", f.m.At(i, j))
		}
		switch {
		case rows == 1:
			b.WriteByte(']')
		case i == 0:
			b.WriteString("⎤")
		case i == rows-1:
			b.WriteString("⎦")
		default:
			b.WriteString("⎥")
		}
	}
	fmt.Fprint(fs, b.String())
}
