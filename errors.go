// Package trackstar computes the log-likelihood that a set of measured
// data vectors was drawn from a model whose central prediction is a
// weighted, piecewise-linear track through the same observable space.
//
// The root package holds the error vocabulary and the shared MatrixView
// interface consumed by the matrix, covariance, datum, track, sample and
// likelihood packages. The numerical core lives in those subpackages.
package trackstar

import "errors"

// Sentinel errors returned (optionally wrapped with context via
// fmt.Errorf("...: %w", err)) by the core. Callers should compare against
// these with errors.Is rather than matching error strings.
var (
	// ErrShape indicates incompatible matrix dimensions for add/sub/mul.
	ErrShape = errors.New("trackstar: incompatible matrix shape")

	// ErrNonSquare indicates a determinant or inverse was requested of a
	// non-square matrix.
	ErrNonSquare = errors.New("trackstar: matrix is not square")

	// ErrSingular indicates a zero (or non-positive, where a positive
	// determinant is required) determinant during inversion.
	ErrSingular = errors.New("trackstar: matrix is singular")

	// ErrInvalidCovariance indicates a covariance diagonal assignment
	// that is not strictly greater than the minimum variance floor.
	ErrInvalidCovariance = errors.New("trackstar: invalid covariance diagonal")

	// ErrUnknownLabel indicates a lookup by a label that is not present.
	ErrUnknownLabel = errors.New("trackstar: unknown label")

	// ErrDuplicateLabel indicates duplicate labels were supplied at
	// construction time.
	ErrDuplicateLabel = errors.New("trackstar: duplicate label")

	// ErrMissingBase indicates an uncertainty key (`err_x` or `x_err`)
	// was supplied without a matching base quantity `x`.
	ErrMissingBase = errors.New("trackstar: uncertainty key has no matching base quantity")

	// ErrNonASCII indicates a label contains non-ASCII bytes or is empty.
	// Labels over the maximum length fail with ErrLabelTooLong instead.
	ErrNonASCII = errors.New("trackstar: label is not ASCII")

	// ErrLabelTooLong indicates a label exceeds MaxLabelLength.
	ErrLabelTooLong = errors.New("trackstar: label exceeds maximum length")

	// ErrDuplicateWeights indicates weights were supplied both as a
	// mapping entry and as a separate constructor argument.
	ErrDuplicateWeights = errors.New("trackstar: weights supplied twice")

	// ErrProjectionIncomplete indicates a Track lacks a label required
	// by a Datum during likelihood evaluation.
	ErrProjectionIncomplete = errors.New("trackstar: track projection missing a datum label")

	// ErrNoConcurrency indicates a request for n_threads > 1 when
	// multi-threaded evaluation is unavailable or disabled.
	ErrNoConcurrency = errors.New("trackstar: concurrency unavailable")

	// ErrEmptySample is a non-fatal condition surfaced to a logger, not
	// returned, when a filter leaves a Sample empty; exported so callers
	// that wish to check for it in their own log hooks may do so.
	ErrEmptySample = errors.New("trackstar: filtered sample is empty")
)

// MaxLabelLength is the maximum permitted length, in bytes, of a label.
const MaxLabelLength = 100

// MatrixView is a read-only view onto a dense matrix of known shape: "a
// thing with known rows, columns and element access". Both Matrix and
// CovarianceMatrix satisfy MatrixView, so kernel routines (Add, Mul,
// Determinant, Invert, ...) can operate on either without taking
// ownership. Datum exposes its vector through its own label-addressed
// At(string) instead, since a second At(int, int) of the same name is not
// possible on one type; the likelihood engine reads it via Vector() and
// lifts it into a Matrix row/column where the kernel needs one (see
// likelihood/chi2.go).
type MatrixView interface {
	// Dims returns the number of rows and columns.
	Dims() (rows, cols int)
	// At returns the element at (i, j). It panics if i or j is out of range.
	At(i, j int) float64
}
