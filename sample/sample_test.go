package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milosgajdos/trackstar"
	"github.com/milosgajdos/trackstar/datum"
)

func mustDatum(t *testing.T, values map[string]float64) *datum.Datum {
	t.Helper()
	d, err := datum.New(values)
	require.NoError(t, err)
	return d
}

func TestAddAndKeys(t *testing.T) {
	assert := assert.New(t)

	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1, "y": 2}))
	s.Add(mustDatum(t, map[string]float64{"x": 3, "z": 4}))

	assert.Equal([]string{"x", "y", "z"}, s.Keys())
	assert.Equal(2, s.Len())
}

func TestByLabelShadowsNaN(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1, "y": 2}))
	s.Add(mustDatum(t, map[string]float64{"x": 3}))

	ys, err := s.ByLabel("y")
	require.NoError(err)
	assert.Equal(2.0, ys[0])
	assert.True(math.IsNaN(ys[1]))
}

func TestByLabelUnknown(t *testing.T) {
	assert := assert.New(t)
	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1}))
	_, err := s.ByLabel("q")
	assert.ErrorIs(err, trackstar.ErrUnknownLabel)
}

func TestFilter(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1}))
	s.Add(mustDatum(t, map[string]float64{"x": 5}))
	s.Add(mustDatum(t, map[string]float64{"y": 2}))

	filtered := s.Filter("x", Gt, 2, false)
	require.Equal(1, filtered.Len())
	v, err := filtered.At(0)
	require.NoError(err)
	got, _ := v.At("x")
	assert.Equal(5.0, got)

	withMissing := s.Filter("x", Gt, 2, true)
	assert.Equal(2, withMissing.Len())
}

func TestFilterEmptyDoesNotError(t *testing.T) {
	assert := assert.New(t)
	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1}))
	filtered := s.Filter("x", Gt, 100, false)
	assert.Equal(0, filtered.Len())
}

func TestProjectDropsNonMatching(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1, "y": 2}))
	s.Add(mustDatum(t, map[string]float64{"z": 3}))

	proj, err := s.Project([]string{"x"})
	require.NoError(err)
	assert.Equal(1, proj.Len())
}

func TestSliceStableOrder(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := New()
	for i := 0; i < 5; i++ {
		s.Add(mustDatum(t, map[string]float64{"x": float64(i)}))
	}
	sub, err := s.Slice(1, 4)
	require.NoError(err)
	xs, _ := sub.ByLabel("x")
	assert.Equal([]float64{1, 2, 3}, xs)
}

func TestStats(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1, "y": 2}))
	s.Add(mustDatum(t, map[string]float64{"x": 3, "y": 4}))
	s.Add(mustDatum(t, map[string]float64{"x": 5, "y": 6}))

	mean, cov, err := s.Stats()
	require.NoError(err)
	assert.InDeltaSlice([]float64{3, 4}, mean, 1e-9)
	r, c := cov.Dims()
	assert.Equal(2, r)
	assert.Equal(2, c)
	assert.InDelta(4.0, cov.At(0, 0), 1e-9)
}

func TestStatsNoSharedLabel(t *testing.T) {
	require := require.New(t)
	s := New()
	s.Add(mustDatum(t, map[string]float64{"x": 1}))
	s.Add(mustDatum(t, map[string]float64{"y": 1}))
	_, _, err := s.Stats()
	require.Error(err)
}
