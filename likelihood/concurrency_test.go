package likelihood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milosgajdos/trackstar/datum"
	"github.com/milosgajdos/trackstar/sample"
	"github.com/milosgajdos/trackstar/track"
)

func TestPartitionBoundsCoversWholeRange(t *testing.T) {
	assert := assert.New(t)

	for _, tc := range []struct{ n, p int }{{10, 3}, {7, 7}, {1, 1}, {20, 4}} {
		bounds := partitionBounds(tc.n, tc.p)
		assert.Len(bounds, tc.p)
		assert.Equal(0, bounds[0][0])
		assert.Equal(tc.n, bounds[len(bounds)-1][1])
		for i := 1; i < len(bounds); i++ {
			assert.Equal(bounds[i-1][1], bounds[i][0])
		}
	}
}

func TestSampleMoreThreadsThanData(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tr, err := track.New(map[string][]float64{"x": {0, 1}}, nil)
	require.NoError(err)

	s := sample.New()
	d, err := datum.New(map[string]float64{"x": 0.3, "x_err": 1})
	require.NoError(err)
	s.Add(d)

	require.NoError(tr.SetNThreads(8))
	logL, err := Sample(s, tr)
	require.NoError(err)
	assert.NotEqual(0.0, logL)
}

func TestSampleEmpty(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tr, err := track.New(map[string][]float64{"x": {0, 1}}, nil)
	require.NoError(err)

	logL, err := Sample(sample.New(), tr)
	require.NoError(err)
	assert.Equal(0.0, logL)
}
