package sample

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stats returns the column-wise mean and empirical covariance of the
// labels every datum in s shares (the intersection of per-datum label
// sets), in the order they first appear among s.Keys(). It is the
// gonum/mat analogue of github.com/milosgajdos/go-estimate's
// estimate.Base.Covariance, generalized from a single state vector's
// self-outer-product to the sample covariance across data: a diagnostic a
// caller can use to sanity-check a Sample before fitting a Track against
// it, not part of the likelihood hot path. It fails if s is empty or no
// label is common to every datum.
func (s *Sample) Stats() ([]float64, *mat.SymDense, error) {
	if len(s.data) == 0 {
		return nil, nil, fmt.Errorf("sample: stats: empty sample")
	}

	var shared []string
	for _, k := range s.keys {
		common := true
		for _, d := range s.data {
			if !d.HasLabel(k) {
				common = false
				break
			}
		}
		if common {
			shared = append(shared, k)
		}
	}
	if len(shared) == 0 {
		return nil, nil, fmt.Errorf("sample: stats: no label shared by every datum")
	}

	n := len(s.data)
	p := len(shared)
	x := mat.NewDense(n, p, nil)
	for i, d := range s.data {
		for j, l := range shared {
			v, _ := d.At(l)
			x.Set(i, j, v)
		}
	}

	mean := make([]float64, p)
	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x.At(i, j)
		}
		mean[j] = sum / float64(n)
	}

	centered := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			centered.Set(i, j, x.At(i, j)-mean[j])
		}
	}

	cov := mat.NewSymDense(p, nil)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += centered.At(i, a) * centered.At(i, b)
			}
			denom := float64(n - 1)
			if denom <= 0 {
				denom = 1
			}
			cov.SetSym(a, b, sum/denom)
		}
	}

	return mean, cov, nil
}
