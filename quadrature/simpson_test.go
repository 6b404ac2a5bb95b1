package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegratePolynomial(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// ∫[0,1] x^2 dx = 1/3, exact to machine precision with Simpson's rule
	// since it is exact for cubics.
	res, err := Integrate(func(x float64) float64 { return x * x }, 0, 1, 4, 1000, 1e-9)
	require.NoError(err)
	assert.InDelta(1.0/3.0, res.Value, 1e-10)
	assert.True(res.Converged)
}

func TestIntegrateGaussian(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	f := func(x float64) float64 { return math.Exp(-0.5 * x * x) }
	res, err := Integrate(f, -8, 8, 64, 1<<20, 1e-3)
	require.NoError(err)
	assert.InDelta(math.Sqrt(2*math.Pi), res.Value, 1e-3*math.Sqrt(2*math.Pi))
}

func TestIntegrateConvergenceFields(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	res, err := Integrate(func(x float64) float64 { return math.Sin(x) }, 0, math.Pi, 8, 1024, 1e-6)
	require.NoError(err)
	assert.True(res.Converged)
	assert.GreaterOrEqual(res.N, 8)
	assert.Less(res.RelError, 1e-6)
}

func TestIntegrateInvalidNMin(t *testing.T) {
	assert := assert.New(t)
	_, err := Integrate(func(x float64) float64 { return x }, 0, 1, 1, 10, 1e-3)
	assert.Error(err)
}

func TestIntegrateInvalidNMax(t *testing.T) {
	assert := assert.New(t)
	_, err := Integrate(func(x float64) float64 { return x }, 0, 1, 64, 10, 1e-3)
	assert.Error(err)
}

func TestIntegrateOddNMinRoundsUp(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	res, err := Integrate(func(x float64) float64 { return 1 }, 0, 1, 3, 100, 1e-9)
	require.NoError(err)
	assert.InDelta(1.0, res.Value, 1e-12)
	// 3 rounds up to 4; one doubling to 8 then meets the tolerance.
	assert.Equal(8, res.N)
}
