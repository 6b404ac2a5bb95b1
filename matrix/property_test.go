package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milosgajdos/trackstar/internal/synth"
)

// TestInvertRoundTripRandomSPD fuzzes the determinant/invert round-trip
// law ("invert(invert(M)) ≈ M whenever det(M) != 0") over random
// symmetric positive-definite matrices of varying size.
func TestInvertRoundTripRandomSPD(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	for _, n := range []int{1, 2, 3, 5, 8} {
		sym := synth.SPDMatrix(n, int64(1000+n))
		m := New(synth.DenseRows(sym))

		inv, err := Invert(m)
		require.NoError(err)
		roundTrip, err := Invert(inv)
		require.NoError(err)

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				assert.InDelta(m.At(i, j), roundTrip.At(i, j), 1e-4)
			}
		}
	}
}

// TestMulByInverseIsIdentity checks that mul(M, invert(M)) is within
// 10^-6 of the identity in every element, for random SPD matrices.
func TestMulByInverseIsIdentity(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	for _, n := range []int{1, 2, 4, 6} {
		sym := synth.SPDMatrix(n, int64(2000+n))
		m := New(synth.DenseRows(sym))

		inv, err := Invert(m)
		require.NoError(err)
		product, err := Mul(m, inv)
		require.NoError(err)

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				assert.InDelta(want, product.At(i, j), 1e-6)
			}
		}
	}
}
