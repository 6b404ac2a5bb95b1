// Package synth generates synthetic Gaussian-distributed fixtures for the
// property-based tests spread across trackstar's packages. It is internal
// because it exists purely to seed tests, not as part of the library's
// public surface.
package synth

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian draws vectors from a multivariate normal distribution with a
// fixed mean and covariance, seeded deterministically so property tests
// are reproducible across runs.
type Gaussian struct {
	dist *distmv.Normal
	mean []float64
	cov  mat.Symmetric
}

// NewGaussian builds a Gaussian generator for the given mean and
// covariance, seeded by seed. It fails if cov is not symmetric
// positive-definite.
func NewGaussian(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	src := rand.New(rand.NewSource(seed))
	dist, ok := distmv.NewNormal(mean, cov, src)
	if !ok {
		return nil, fmt.Errorf("synth: covariance is not positive-definite")
	}
	return &Gaussian{dist: dist, mean: mean, cov: cov}, nil
}

// Sample draws one vector from the distribution.
func (g *Gaussian) Sample() []float64 {
	return g.dist.Rand(nil)
}

// Mean returns the generator's mean.
func (g *Gaussian) Mean() []float64 { return g.mean }

// Cov returns the generator's covariance.
func (g *Gaussian) Cov() mat.Symmetric { return g.cov }
