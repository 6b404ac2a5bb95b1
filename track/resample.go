package track

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// EffectiveSampleSize returns the standard particle-filter diagnostic
// 1 / sum(w_i^2) for the track's weights, normalized to sum to 1. A value
// close to NVertices indicates a well-spread density sample; a value close
// to 1 indicates the weight mass is concentrated on a single vertex.
func (t *Track) EffectiveSampleSize() float64 {
	w := append([]float64(nil), t.weights...)
	total := floats.Sum(w)
	if total == 0 {
		return 0
	}
	floats.Scale(1/total, w)
	var sumSq float64
	for _, wi := range w {
		sumSq += wi * wi
	}
	if sumSq == 0 {
		return 0
	}
	return 1 / sumSq
}

// Resample importance-resamples n vertices from the track's weight
// distribution via a roulette draw over the CDF of weights (the algorithm
// of github.com/milosgajdos/go-estimate's bootstrap.Resample /
// rand.RouletteDrawN), then regularizes the draw with a small Gaussian
// jitter scaled by alpha, the way a bootstrap/particle filter regularizes
// a resampled particle cloud. A non-positive alpha selects the
// Gaussian-kernel-optimal value via AlphaGauss. The returned Track's
// vertices carry uniform weights 1/n; its labels and configuration flags
// are copied from t.
func (t *Track) Resample(n int, alpha float64) (*Track, error) {
	if n <= 0 {
		return nil, fmt.Errorf("track: resample: invalid vertex count %d", n)
	}
	if len(t.weights) == 0 {
		return nil, fmt.Errorf("track: resample: track has no vertices")
	}

	indices, err := rouletteDrawN(t.weights, n)
	if err != nil {
		return nil, fmt.Errorf("track: resample: %w", err)
	}

	dim := len(t.labels)
	predictions := make([][]float64, n)
	for oi, i := range indices {
		predictions[oi] = append([]float64(nil), t.predictions[i]...)
	}

	if alpha <= 0 {
		alpha = AlphaGauss(dim, n)
	}
	if dim > 0 && n > 1 {
		jitter, err := gaussianJitter(predictions, dim, n, alpha)
		if err == nil {
			for i := range predictions {
				for j := 0; j < dim; j++ {
					predictions[i][j] += jitter.At(j, i)
				}
			}
		}
	}

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}

	return &Track{
		labels:                    append([]string(nil), t.labels...),
		predictions:               predictions,
		weights:                   weights,
		useLineSegmentCorrections: t.useLineSegmentCorrections,
		normalizeWeights:          t.normalizeWeights,
		nThreads:                  t.nThreads,
		concurrencyEnabled:        t.concurrencyEnabled,
	}, nil
}

// rouletteDrawN draws n indices into p, a probability mass function
// (need not be normalized), using the Roulette Wheel / Fitness
// Proportionate Selection algorithm: build the CDF of p, then binary
// search it against n uniform draws scaled to the CDF's total.
func rouletteDrawN(p []float64, n int) ([]int, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("empty weight vector")
	}

	cdf := make([]float64, len(p))
	floats.CumSum(cdf, p)

	indices := make([]int, n)
	for i := range indices {
		val := distuv.UnitUniform.Rand() * cdf[len(cdf)-1]
		indices[i] = sort.Search(len(cdf), func(k int) bool { return cdf[k] > val })
	}
	return indices, nil
}

// gaussianJitter draws a dim×n matrix of correlated Gaussian perturbations
// with covariance equal to the empirical covariance of the resampled
// vertices (columns), scaled by alpha, following
// bootstrap.Bootstrap.Resample's regularization step: factorize the
// vertex covariance via SVD, scale a standard-normal draw by its square
// root, then by alpha.
func gaussianJitter(vertices [][]float64, dim, n int, alpha float64) (*mat.Dense, error) {
	x := mat.NewDense(dim, n, nil)
	for c := 0; c < n; c++ {
		for r := 0; r < dim; r++ {
			x.Set(r, c, vertices[c][r])
		}
	}

	means := make([]float64, dim)
	for r := 0; r < dim; r++ {
		means[r] = floats.Sum(x.RawRowView(r)) / float64(n)
	}
	for c := 0; c < n; c++ {
		for r := 0; r < dim; r++ {
			x.Set(r, c, x.At(r, c)-means[r])
		}
	}

	sigma := new(mat.Dense)
	sigma.Mul(x, x.T())
	if n > 1 {
		sigma.Scale(1/(float64(n)-1), sigma)
	}

	var svd mat.SVD
	if !svd.Factorize(sigma, mat.SVDFull) {
		return nil, fmt.Errorf("svd factorization failed")
	}
	u := new(mat.Dense)
	svd.UTo(u)
	vals := svd.Values(nil)
	for i := range vals {
		vals[i] = math.Sqrt(math.Max(vals[i], 0))
	}
	diag := mat.NewDiagDense(len(vals), vals)
	u.Mul(u, diag)

	data := make([]float64, dim*n)
	for i := range data {
		data[i] = rand.NormFloat64()
	}
	m := mat.NewDense(dim, n, data)
	m.Mul(u, m)
	m.Scale(alpha, m)

	return m, nil
}

// AlphaGauss computes the Silverman/Gaussian-kernel-optimal regularization
// bandwidth for r dimensions and c samples, following
// bootstrap.AlphaGauss.
func AlphaGauss(r, c int) float64 {
	if r == 0 || c == 0 {
		return 0
	}
	return math.Pow(4.0/(float64(c)*(float64(r)+2.0)), 1/(float64(r)+4.0))
}
