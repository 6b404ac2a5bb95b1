// Package sample implements Sample: an ordered, possibly heterogeneous
// collection of Datum values. Different data in a Sample may expose
// different label subsets; a label absent from a given Datum is a
// "shadow" label for that Datum and reads as NaN rather than failing.
package sample

import (
	"fmt"
	"log"
	"math"

	"github.com/milosgajdos/trackstar"
	"github.com/milosgajdos/trackstar/datum"
)

// Sample is an ordered collection of Datum values, grown by Add and never
// shrunk except by deriving a new, filtered or projected Sample.
type Sample struct {
	data []*datum.Datum
	keys []string // union of datum labels, first-appearance order
}

// New returns an empty Sample.
func New() *Sample {
	return &Sample{}
}

// Len returns the number of data in the sample.
func (s *Sample) Len() int { return len(s.data) }

// Keys returns the union of all datum labels, in first-appearance order.
// The returned slice must not be mutated.
func (s *Sample) Keys() []string { return s.keys }

// Add appends d to the sample. Labels of d not already in the sample's key
// union are appended to it; this is the only place the shadow-label union
// changes, since a label absent from a given Datum already reads as NaN by
// construction — Add only needs to track which labels exist *somewhere*
// in the sample, not a per-datum exclusion set.
func (s *Sample) Add(d *datum.Datum) {
	s.data = append(s.data, d)
	seen := make(map[string]bool, len(s.keys))
	for _, k := range s.keys {
		seen[k] = true
	}
	for _, l := range d.Labels() {
		if !seen[l] {
			s.keys = append(s.keys, l)
			seen[l] = true
		}
	}
}

// At returns the datum at index i.
func (s *Sample) At(i int) (*datum.Datum, error) {
	if i < 0 || i >= len(s.data) {
		return nil, fmt.Errorf("sample: index %d out of range [0,%d)", i, len(s.data))
	}
	return s.data[i], nil
}

func (s *Sample) isKey(label string) bool {
	for _, k := range s.keys {
		if k == label {
			return true
		}
	}
	return false
}

// ByLabel returns the per-datum values for label, with math.NaN() in place
// of any datum that does not expose label (a "shadow" read). It fails with
// trackstar.ErrUnknownLabel if label is not a key of any datum in the
// sample.
func (s *Sample) ByLabel(label string) ([]float64, error) {
	if !s.isKey(label) {
		return nil, fmt.Errorf("sample: %q: %w", label, trackstar.ErrUnknownLabel)
	}
	out := make([]float64, len(s.data))
	for i, d := range s.data {
		if d.HasLabel(label) {
			v, _ := d.At(label)
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// AtLabelIndex returns the scalar value of label for datum i, or NaN if
// that datum does not expose label. It fails with
// trackstar.ErrUnknownLabel if label is not a key of any datum in the
// sample, or with an out-of-range error if i is invalid.
func (s *Sample) AtLabelIndex(label string, i int) (float64, error) {
	if i < 0 || i >= len(s.data) {
		return 0, fmt.Errorf("sample: index %d out of range [0,%d)", i, len(s.data))
	}
	if !s.isKey(label) {
		return 0, fmt.Errorf("sample: %q: %w", label, trackstar.ErrUnknownLabel)
	}
	d := s.data[i]
	if !d.HasLabel(label) {
		return math.NaN(), nil
	}
	return d.At(label)
}

// Slice returns a new Sample containing data[lo:hi].
func (s *Sample) Slice(lo, hi int) (*Sample, error) {
	if lo < 0 || hi > len(s.data) || lo > hi {
		return nil, fmt.Errorf("sample: slice [%d:%d) out of range [0,%d)", lo, hi, len(s.data))
	}
	out := New()
	for _, d := range s.data[lo:hi] {
		out.Add(d)
	}
	return out, nil
}

// Relation is a comparison operator used by Filter.
type Relation string

// The relations Filter supports.
const (
	Eq Relation = "=="
	Lt Relation = "<"
	Le Relation = "<="
	Gt Relation = ">"
	Ge Relation = ">="
)

func (r Relation) apply(a, b float64) bool {
	switch r {
	case Eq:
		return a == b
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	default:
		return false
	}
}

// Filter returns a new Sample containing the data d of s for which
// d[label] <relation> value holds. Data that do not expose label are kept
// iff keepMissing is true. Filter logs a warning (it does not fail) when
// the resulting sample is empty.
func (s *Sample) Filter(label string, relation Relation, value float64, keepMissing bool) *Sample {
	out := New()
	for _, d := range s.data {
		if !d.HasLabel(label) {
			if keepMissing {
				out.Add(d)
			}
			continue
		}
		v, _ := d.At(label)
		if relation.apply(v, value) {
			out.Add(d)
		}
	}
	if out.Len() == 0 {
		log.Printf("sample.Filter(%q, %q, %v): %v", label, relation, value, trackstar.ErrEmptySample)
	}
	return out
}

// Project applies Datum.Project to every datum in s and keeps those for
// which at least one label matched, preserving order.
func (s *Sample) Project(labels []string) (*Sample, error) {
	out := New()
	for _, d := range s.data {
		proj, err := d.Project(labels)
		if err != nil {
			return nil, err
		}
		if proj != nil {
			out.Add(proj)
		}
	}
	return out, nil
}
