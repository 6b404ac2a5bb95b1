// Package track implements Track: an ordered, weighted sequence of
// predicted vectors ("vertices") approximating a density-weighted curve
// through an N-dimensional observable space.
package track

import (
	"fmt"
	"log"
	"sort"

	"github.com/milosgajdos/trackstar"
)

// Track is a piecewise-linear curve through an N-dimensional space: the
// segment connecting vertex i to vertex i+1, for i in [0, n_vertices-1), is
// part of the curve; the final vertex closes a zero-length segment.
type Track struct {
	labels      []string
	predictions [][]float64 // predictions[i][j]: vertex i, label j
	weights     []float64

	useLineSegmentCorrections bool
	normalizeWeights          bool
	nThreads                  int
	concurrencyEnabled        bool
}

// New builds a Track from a mapping of label to a sequence of predicted
// values, one per vertex. Every sequence must have the same length; labels
// are collected in sorted order for deterministic indexing (Go maps have
// no iteration order of their own). A "weights" key in data and a non-nil
// weights argument are mutually exclusive and fail with
// trackstar.ErrDuplicateWeights. Weights default to 1 per vertex.
// use_line_segment_corrections defaults to false, normalize_weights to
// true, n_threads to 1.
func New(data map[string][]float64, weights []float64) (*Track, error) {
	mapWeights, hasMapWeights := data["weights"]
	if hasMapWeights && weights != nil {
		return nil, fmt.Errorf("track: %w", trackstar.ErrDuplicateWeights)
	}

	labels := make([]string, 0, len(data))
	for l := range data {
		if l == "weights" {
			continue
		}
		labels = append(labels, l)
	}
	sort.Strings(labels)

	if err := validateLabels(labels); err != nil {
		return nil, err
	}

	nVertices := -1
	for _, l := range labels {
		if nVertices < 0 {
			nVertices = len(data[l])
		} else if len(data[l]) != nVertices {
			return nil, fmt.Errorf("track: label %q has %d values, want %d: %w", l, len(data[l]), nVertices, trackstar.ErrShape)
		}
	}
	if nVertices < 0 {
		nVertices = 0
	}

	var w []float64
	switch {
	case hasMapWeights:
		if len(mapWeights) != nVertices {
			return nil, fmt.Errorf("track: weights has %d values, want %d: %w", len(mapWeights), nVertices, trackstar.ErrShape)
		}
		w = append([]float64(nil), mapWeights...)
	case weights != nil:
		if len(weights) != nVertices {
			return nil, fmt.Errorf("track: weights has %d values, want %d: %w", len(weights), nVertices, trackstar.ErrShape)
		}
		w = append([]float64(nil), weights...)
	default:
		w = make([]float64, nVertices)
		for i := range w {
			w[i] = 1
		}
	}

	predictions := make([][]float64, nVertices)
	for i := 0; i < nVertices; i++ {
		predictions[i] = make([]float64, len(labels))
		for j, l := range labels {
			predictions[i][j] = data[l][i]
		}
	}

	return &Track{
		labels:             labels,
		predictions:        predictions,
		weights:            w,
		normalizeWeights:   true,
		nThreads:           1,
		concurrencyEnabled: true,
	}, nil
}

func validateLabels(labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" {
			return fmt.Errorf("track: empty label: %w", trackstar.ErrNonASCII)
		}
		if len(l) > trackstar.MaxLabelLength {
			return fmt.Errorf("track: label %q: %w", l, trackstar.ErrLabelTooLong)
		}
		for i := 0; i < len(l); i++ {
			if l[i] > 127 {
				return fmt.Errorf("track: label %q: %w", l, trackstar.ErrNonASCII)
			}
		}
		if seen[l] {
			return fmt.Errorf("track: label %q: %w", l, trackstar.ErrDuplicateLabel)
		}
		seen[l] = true
	}
	return nil
}

// NVertices returns the number of vertices.
func (t *Track) NVertices() int { return len(t.predictions) }

// Dim returns the number of labeled components per vertex.
func (t *Track) Dim() int { return len(t.labels) }

// Labels returns the track's labels, in storage order. The returned slice
// must not be mutated.
func (t *Track) Labels() []string { return t.labels }

func (t *Track) indexOf(label string) int {
	for i, l := range t.labels {
		if l == label {
			return i
		}
	}
	return -1
}

// HasLabel reports whether label is one of the track's components.
func (t *Track) HasLabel(label string) bool { return t.indexOf(label) >= 0 }

// ByLabel returns the sequence of values for label across all vertices. It
// fails with trackstar.ErrUnknownLabel if label is not present.
func (t *Track) ByLabel(label string) ([]float64, error) {
	j := t.indexOf(label)
	if j < 0 {
		return nil, fmt.Errorf("track: %q: %w", label, trackstar.ErrUnknownLabel)
	}
	out := make([]float64, len(t.predictions))
	for i := range t.predictions {
		out[i] = t.predictions[i][j]
	}
	return out, nil
}

// ByVertex returns a mapping of label to value (including "weights") for
// vertex i. It fails if i is out of range.
func (t *Track) ByVertex(i int) (map[string]float64, error) {
	if i < 0 || i >= len(t.predictions) {
		return nil, fmt.Errorf("track: vertex index %d out of range [0,%d)", i, len(t.predictions))
	}
	out := make(map[string]float64, len(t.labels)+1)
	for j, l := range t.labels {
		out[l] = t.predictions[i][j]
	}
	out["weights"] = t.weights[i]
	return out, nil
}

// At returns the scalar value of label at vertex index i. It fails with
// trackstar.ErrUnknownLabel if label is unknown, or an out-of-range error
// if i is invalid.
func (t *Track) At(label string, i int) (float64, error) {
	if label == "weights" {
		if i < 0 || i >= len(t.weights) {
			return 0, fmt.Errorf("track: vertex index %d out of range [0,%d)", i, len(t.weights))
		}
		return t.weights[i], nil
	}
	j := t.indexOf(label)
	if j < 0 {
		return 0, fmt.Errorf("track: %q: %w", label, trackstar.ErrUnknownLabel)
	}
	if i < 0 || i >= len(t.predictions) {
		return 0, fmt.Errorf("track: vertex index %d out of range [0,%d)", i, len(t.predictions))
	}
	return t.predictions[i][j], nil
}

// Vertex returns a copy of the prediction row for vertex i.
func (t *Track) Vertex(i int) []float64 {
	row := make([]float64, len(t.labels))
	copy(row, t.predictions[i])
	return row
}

// Weight returns the weight of vertex i.
func (t *Track) Weight(i int) float64 { return t.weights[i] }

// Weights returns a copy of the weight vector.
func (t *Track) Weights() []float64 {
	w := make([]float64, len(t.weights))
	copy(w, t.weights)
	return w
}

// Slice returns a new Track containing vertices [lo, hi).
func (t *Track) Slice(lo, hi int) (*Track, error) {
	if lo < 0 || hi > len(t.predictions) || lo > hi {
		return nil, fmt.Errorf("track: slice [%d:%d) out of range [0,%d)", lo, hi, len(t.predictions))
	}
	predictions := make([][]float64, hi-lo)
	for i := range predictions {
		predictions[i] = append([]float64(nil), t.predictions[lo+i]...)
	}
	return &Track{
		labels:                    append([]string(nil), t.labels...),
		predictions:               predictions,
		weights:                   append([]float64(nil), t.weights[lo:hi]...),
		useLineSegmentCorrections: t.useLineSegmentCorrections,
		normalizeWeights:          t.normalizeWeights,
		nThreads:                  t.nThreads,
		concurrencyEnabled:        t.concurrencyEnabled,
	}, nil
}

// Project returns a new Track exposing only the given labels, in that
// order. It fails with trackstar.ErrUnknownLabel if any label is absent.
func (t *Track) Project(labels []string) (*Track, error) {
	indices := make([]int, len(labels))
	for k, l := range labels {
		j := t.indexOf(l)
		if j < 0 {
			return nil, fmt.Errorf("track: %q: %w", l, trackstar.ErrUnknownLabel)
		}
		indices[k] = j
	}

	predictions := make([][]float64, len(t.predictions))
	for i, row := range t.predictions {
		out := make([]float64, len(indices))
		for oi, j := range indices {
			out[oi] = row[j]
		}
		predictions[i] = out
	}

	return &Track{
		labels:                    append([]string(nil), labels...),
		predictions:               predictions,
		weights:                   append([]float64(nil), t.weights...),
		useLineSegmentCorrections: t.useLineSegmentCorrections,
		normalizeWeights:          t.normalizeWeights,
		nThreads:                  t.nThreads,
		concurrencyEnabled:        t.concurrencyEnabled,
	}, nil
}

// UseLineSegmentCorrections reports whether per-segment marginalization is
// enabled.
func (t *Track) UseLineSegmentCorrections() bool { return t.useLineSegmentCorrections }

// SetUseLineSegmentCorrections enables or disables per-segment
// marginalization.
func (t *Track) SetUseLineSegmentCorrections(v bool) { t.useLineSegmentCorrections = v }

// NormalizeWeights reports whether the likelihood engine rescales this
// track's weights before evaluation.
func (t *Track) NormalizeWeights() bool { return t.normalizeWeights }

// SetNormalizeWeights sets the weight-normalization policy.
func (t *Track) SetNormalizeWeights(v bool) { t.normalizeWeights = v }

// NThreads returns the configured worker-thread count.
func (t *Track) NThreads() int { return t.nThreads }

// DisableConcurrency marks this Track as unable to use multi-threaded
// evaluation; a subsequent SetNThreads(n) with n > 1 fails with
// trackstar.ErrNoConcurrency. Builds that always support goroutines will
// not normally need this; it exists for hosts that embed trackstar on a
// single logical core and wish that to be enforced rather than silently
// ignored.
func (t *Track) DisableConcurrency() { t.concurrencyEnabled = false }

// SetNThreads sets the worker-thread count, clamped to
// trackstar.MaxThreadsAllowed(). It fails with trackstar.ErrNoConcurrency
// if n > 1 and concurrency has been disabled on this Track.
func (t *Track) SetNThreads(n int) error {
	if n > 1 && !t.concurrencyEnabled {
		return fmt.Errorf("track: n_threads=%d: %w", n, trackstar.ErrNoConcurrency)
	}
	clamped, wasClamped := trackstar.ClampThreads(n)
	if wasClamped {
		log.Printf("track: n_threads=%d clamped to %d", n, clamped)
	}
	t.nThreads = clamped
	return nil
}
