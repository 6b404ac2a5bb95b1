// Package datum implements Datum: a measured row vector with per-component
// labels and a CovarianceMatrix describing its measurement uncertainty.
package datum

import (
	"fmt"
	"sort"
	"strings"

	"github.com/milosgajdos/trackstar"
	"github.com/milosgajdos/trackstar/covariance"
)

// Datum is a single measured data vector: dim components, each addressed
// by a unique label, plus a dim×dim CovarianceMatrix describing their
// joint measurement uncertainty.
type Datum struct {
	labels []string
	vector []float64
	cov    *covariance.CovarianceMatrix
}

// isUncertaintyKey reports whether key names a 1-σ uncertainty (prefix
// "err_" or suffix "_err") and returns the base quantity it refers to.
func isUncertaintyKey(key string) (base string, ok bool) {
	if strings.HasPrefix(key, "err_") {
		return strings.TrimPrefix(key, "err_"), true
	}
	if strings.HasSuffix(key, "_err") {
		return strings.TrimSuffix(key, "_err"), true
	}
	return "", false
}

// New builds a Datum from a mapping of label to value. Keys are
// partitioned into base quantities and uncertainty keys (prefix "err_" or
// suffix "_err"); every uncertainty key must reference an existing base
// key, or New fails with trackstar.ErrMissingBase. The resulting
// covariance starts as the identity, then has diagonal i set to σᵢ²,
// where σᵢ is the uncertainty supplied for the i-th base label (default 1
// when absent). Labels must be unique, non-empty, ASCII, and no longer
// than trackstar.MaxLabelLength.
func New(values map[string]float64) (*Datum, error) {
	bases := make([]string, 0, len(values))
	sigma := make(map[string]float64)

	for key := range values {
		if _, ok := isUncertaintyKey(key); !ok {
			bases = append(bases, key)
		}
	}
	sort.Strings(bases)

	baseSet := make(map[string]bool, len(bases))
	for _, b := range bases {
		baseSet[b] = true
	}

	for key, val := range values {
		base, ok := isUncertaintyKey(key)
		if !ok {
			continue
		}
		if !baseSet[base] {
			return nil, fmt.Errorf("datum: uncertainty key %q: %w", key, trackstar.ErrMissingBase)
		}
		sigma[base] = val
	}

	if err := validateLabels(bases); err != nil {
		return nil, err
	}

	vector := make([]float64, len(bases))
	for i, b := range bases {
		vector[i] = values[b]
	}

	cov := covariance.New(len(bases))
	for i, b := range bases {
		s, ok := sigma[b]
		if !ok {
			s = 1
		}
		if err := cov.SetDiag(i, s*s); err != nil {
			return nil, fmt.Errorf("datum: label %q: %w", b, err)
		}
	}

	labels := append([]string(nil), bases...)
	cov.SetLabels(labels)

	return &Datum{labels: labels, vector: vector, cov: cov}, nil
}

func validateLabels(labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" {
			return fmt.Errorf("datum: empty label: %w", trackstar.ErrNonASCII)
		}
		if len(l) > trackstar.MaxLabelLength {
			return fmt.Errorf("datum: label %q: %w", l, trackstar.ErrLabelTooLong)
		}
		for i := 0; i < len(l); i++ {
			if l[i] > 127 {
				return fmt.Errorf("datum: label %q: %w", l, trackstar.ErrNonASCII)
			}
		}
		if seen[l] {
			return fmt.Errorf("datum: label %q: %w", l, trackstar.ErrDuplicateLabel)
		}
		seen[l] = true
	}
	return nil
}

// Dim returns the number of components.
func (d *Datum) Dim() int { return len(d.labels) }

// Labels returns the datum's labels, in storage order. The returned slice
// must not be mutated by the caller.
func (d *Datum) Labels() []string { return d.labels }

// Vector returns a copy of the datum's value vector.
func (d *Datum) Vector() []float64 {
	v := make([]float64, len(d.vector))
	copy(v, d.vector)
	return v
}

// Cov returns the datum's covariance matrix.
func (d *Datum) Cov() *covariance.CovarianceMatrix { return d.cov }

func (d *Datum) indexOf(label string) int {
	for i, l := range d.labels {
		if l == label {
			return i
		}
	}
	return -1
}

// HasLabel reports whether label is one of the datum's components.
func (d *Datum) HasLabel(label string) bool { return d.indexOf(label) >= 0 }

// At returns the value of the component named label. It fails with
// trackstar.ErrUnknownLabel if label is not present.
func (d *Datum) At(label string) (float64, error) {
	i := d.indexOf(label)
	if i < 0 {
		return 0, fmt.Errorf("datum: %q: %w", label, trackstar.ErrUnknownLabel)
	}
	return d.vector[i], nil
}

// SetAt assigns the value of the component named label. It fails with
// trackstar.ErrUnknownLabel if label is not present.
func (d *Datum) SetAt(label string, value float64) error {
	i := d.indexOf(label)
	if i < 0 {
		return fmt.Errorf("datum: %q: %w", label, trackstar.ErrUnknownLabel)
	}
	d.vector[i] = value
	return nil
}

// Project returns a new Datum exposing only the components named by
// labels, in that order, with the corresponding covariance submatrix. If
// none of labels are present on d, Project returns (nil, nil).
func (d *Datum) Project(labels []string) (*Datum, error) {
	var keep []string
	var indices []int
	for _, l := range labels {
		if i := d.indexOf(l); i >= 0 {
			keep = append(keep, l)
			indices = append(indices, i)
		}
	}
	if len(keep) == 0 {
		return nil, nil
	}

	vector := make([]float64, len(keep))
	for oi, i := range indices {
		vector[oi] = d.vector[i]
	}

	cov := d.cov.Submatrix(indices)
	cov.SetLabels(keep)

	return &Datum{labels: keep, vector: vector, cov: cov}, nil
}
