package likelihood

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milosgajdos/trackstar/datum"
	"github.com/milosgajdos/trackstar/quadrature"
	"github.com/milosgajdos/trackstar/sample"
	"github.com/milosgajdos/trackstar/track"
)

// S1: one datum, one-vertex track, 1-D — the last-vertex Δm=0 boundary
// case drives the likelihood to -Inf regardless of weight.
func TestDatumOneVertexBoundary(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d, err := datum.New(map[string]float64{"x": 0.0, "x_err": 1.0})
	require.NoError(err)
	tr, err := track.New(map[string][]float64{"x": {0.0}}, nil)
	require.NoError(err)

	logL, err := Datum(d, tr)
	require.NoError(err)
	assert.True(math.IsInf(logL, -1))
}

// S2: two-vertex track, perfect alignment.
func TestDatumTwoVertexPerfectAlignment(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d, err := datum.New(map[string]float64{"x": 1.0, "x_err": 0.5})
	require.NoError(err)
	tr, err := track.New(map[string][]float64{"x": {0.0, 2.0}}, []float64{1, 1})
	require.NoError(err)
	tr.SetNormalizeWeights(false)

	logL, err := Datum(d, tr)
	require.NoError(err)

	expected := math.Log(2 * math.Exp(-2) / math.Sqrt(math.Pi/2))
	assert.InDelta(expected, logL, 1e-12)
}

// S3: two-dimensional datum, diagonal covariance, unnormalized weights.
func TestSampleTwoDimensionalDiagonalCovariance(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d, err := datum.New(map[string]float64{"x": 0.0, "y": 0.0, "x_err": 1.0, "y_err": 1.0})
	require.NoError(err)
	tr, err := track.New(map[string][]float64{
		"x": {-1, 0, 1},
		"y": {0, 0, 0},
	}, []float64{1, 2, 1})
	require.NoError(err)
	tr.SetNormalizeWeights(false)

	// The sum(weights) term is applied at the Sample level, so evaluate a
	// one-datum Sample rather than Datum alone.
	s := sample.New()
	s.Add(d)
	logL, err := Sample(s, tr)
	require.NoError(err)

	expected := math.Log((math.Exp(-0.5)+2)/math.Sqrt(2*math.Pi)) - 4
	assert.InDelta(expected, logL, 1e-10)
}

// S4: heterogeneous sample — projection and additivity.
func TestSampleHeterogeneous(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d1, err := datum.New(map[string]float64{"x": 0.3, "y": -0.2, "x_err": 1, "y_err": 1})
	require.NoError(err)
	d2, err := datum.New(map[string]float64{"x": 0.1, "x_err": 1})
	require.NoError(err)

	tr, err := track.New(map[string][]float64{
		"x": {-1, 0, 1},
		"y": {-1, 0, 1},
	}, nil)
	require.NoError(err)

	projected, err := tr.Project([]string{"x"})
	require.NoError(err)

	llD2Full, err := Datum(d2, tr)
	require.NoError(err)
	llD2Proj, err := Datum(d2, projected)
	require.NoError(err)
	assert.InDelta(llD2Full, llD2Proj, 1e-12)

	s := sample.New()
	s.Add(d1)
	s.Add(d2)

	llSample, err := Sample(s, tr)
	require.NoError(err)

	llD1, err := Datum(d1, tr)
	require.NoError(err)
	assert.InDelta(llD1+llD2Full, llSample, 1e-9)
}

// S5: threaded equivalence — partition count must not change the result.
func TestSampleThreadedEquivalence(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tr, err := track.New(map[string][]float64{
		"x": {-2, -1, 0, 1, 2},
	}, nil)
	require.NoError(err)

	s := sample.New()
	for i := 0; i < 23; i++ {
		x := -2 + 4*float64(i)/22
		d, err := datum.New(map[string]float64{"x": x, "x_err": 0.7})
		require.NoError(err)
		s.Add(d)
	}

	var baseline float64
	for i, n := range []int{1, 2, 4, 8} {
		require.NoError(tr.SetNThreads(n))
		logL, err := Sample(s, tr)
		require.NoError(err)
		if i == 0 {
			baseline = logL
			continue
		}
		assert.InDelta(baseline, logL, 1e-12)
	}
}

// S6: segment-correction closed-form check against a high-resolution
// direct Simpson pass.
func TestSegmentCorrectionClosedForm(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	const sigma = 1.0
	a := 1.0 / (sigma * sigma)
	b := 0.5 / (sigma * sigma)

	adaptive, err := segmentCorrection(a, b)
	require.NoError(err)

	f := func(q float64) float64 { return math.Exp(-0.5 * (a*q*q - 2*b*q)) }
	direct, err := quadrature.Integrate(f, 0, 1, 1<<20, 1<<20, 1e-3)
	require.NoError(err)

	rel := math.Abs((adaptive - direct.Value) / direct.Value)
	assert.Less(rel, 1e-3)
}

// Weight-scaling invariance: with normalize_weights true, scaling every
// track weight by a positive constant leaves the Sample log-likelihood
// unchanged.
func TestSampleWeightScalingInvariance(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tr, err := track.New(map[string][]float64{"x": {-1, 0, 1}}, []float64{1, 3, 2})
	require.NoError(err)
	trScaled, err := track.New(map[string][]float64{"x": {-1, 0, 1}}, []float64{5, 15, 10})
	require.NoError(err)

	s := sample.New()
	for _, x := range []float64{-0.6, 0.1, 0.9} {
		d, err := datum.New(map[string]float64{"x": x, "x_err": 0.4})
		require.NoError(err)
		s.Add(d)
	}

	ll1, err := Sample(s, tr)
	require.NoError(err)
	ll2, err := Sample(s, trScaled)
	require.NoError(err)
	assert.InDelta(ll1, ll2, 1e-10)
}

// Delta-function limit: a non-final vertex placed exactly at the datum's
// vector, one unit of arc length from the next vertex, with identity
// covariance, contributes exactly its own weight (scaled by the standard
// normalization) to the likelihood. The final vertex cannot be used to
// check this directly since its Δm is structurally zero (see
// TestDatumOneVertexBoundary); a non-final vertex with a zero-weight
// successor isolates the same property without that boundary case.
func TestDatumDeltaFunctionLimit(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	for dim := 1; dim <= 3; dim++ {
		values := map[string]float64{}
		trackData := map[string][]float64{}
		labels := []string{"a", "b", "c"}[:dim]
		for i, l := range labels {
			values[l] = 0
			values[l+"_err"] = 1
			if i == 0 {
				trackData[l] = []float64{0, 1}
			} else {
				trackData[l] = []float64{0, 0}
			}
		}
		d, err := datum.New(values)
		require.NoError(err)
		tr, err := track.New(trackData, []float64{7, 0})
		require.NoError(err)
		tr.SetNormalizeWeights(false)

		logL, err := Datum(d, tr)
		require.NoError(err)

		expected := math.Log(7 / math.Sqrt(2*math.Pi))
		assert.InDelta(expected, logL, 1e-12)
	}
}

// Projection correctness: dropping a label from both Sample and Track
// that is already absent from every datum leaves the log-likelihood
// unchanged.
func TestSampleProjectionCorrectness(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tr, err := track.New(map[string][]float64{
		"x": {-1, 0, 1},
		"y": {-1, 0, 1},
	}, nil)
	require.NoError(err)

	s := sample.New()
	d, err := datum.New(map[string]float64{"x": 0.2, "x_err": 1})
	require.NoError(err)
	s.Add(d)

	llFull, err := Sample(s, tr)
	require.NoError(err)

	trProjected, err := tr.Project([]string{"x"})
	require.NoError(err)
	llProjected, err := Sample(s, trProjected)
	require.NoError(err)

	assert.InDelta(llFull, llProjected, 1e-12)
}

// Segment correction sanity: with a finely sampled track (segment lengths
// small relative to the datum's covariance scale), enabling corrections
// changes the log-likelihood by less than 10^-3 relative to the
// uncorrected value.
func TestSegmentCorrectionSanity(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	const nVertices = 200
	const spacing = 0.01
	trackX := make([]float64, nVertices)
	weights := make([]float64, nVertices)
	for i := range trackX {
		trackX[i] = float64(i) * spacing
		weights[i] = 1
	}

	d, err := datum.New(map[string]float64{"x": 0.97, "x_err": 1.0})
	require.NoError(err)
	tr, err := track.New(map[string][]float64{"x": trackX}, weights)
	require.NoError(err)
	tr.SetNormalizeWeights(false)

	uncorrected, err := Datum(d, tr)
	require.NoError(err)

	tr.SetUseLineSegmentCorrections(true)
	corrected, err := Datum(d, tr)
	require.NoError(err)

	rel := math.Abs((corrected - uncorrected) / uncorrected)
	assert.Less(rel, 1e-3)
}

func TestDatumProjectionIncomplete(t *testing.T) {
	require := require.New(t)
	d, err := datum.New(map[string]float64{"x": 1, "y": 2})
	require.NoError(err)
	tr, err := track.New(map[string][]float64{"x": {0, 1}}, nil)
	require.NoError(err)

	_, err = Datum(d, tr)
	require.Error(err)
}

func TestDatumSingularCovariance(t *testing.T) {
	require := require.New(t)
	d, err := datum.New(map[string]float64{"x": 1, "y": 2})
	require.NoError(err)
	require.NoError(d.Cov().Set(0, 1, 1))

	tr, err := track.New(map[string][]float64{
		"x": {0, 1},
		"y": {0, 1},
	}, nil)
	require.NoError(err)

	_, err = Datum(d, tr)
	require.Error(err)
}
