package likelihood

import (
	"math"

	"github.com/milosgajdos/trackstar/quadrature"
)

// segmentTolerance, segmentNMin and segmentNMax bound the adaptive
// quadrature used by the optional finite-segment-length correction: a
// loose tolerance is appropriate since β only rescales an
// already-approximate piecewise-linear segment contribution.
const (
	segmentTolerance = 1e-3
	segmentNMin      = 64
	segmentNMax      = 1 << 20
)

// segmentCorrection integrates exp(-½(a q² - 2 b q)) over q in [0,1],
// folding the quadratic variation of χ² along a track segment into a
// single correction factor β that replaces evaluating χ² only at the
// segment's starting vertex.
func segmentCorrection(a, b float64) (float64, error) {
	f := func(q float64) float64 {
		return math.Exp(-0.5 * (a*q*q - 2*b*q))
	}
	res, err := quadrature.Integrate(f, 0, 1, segmentNMin, segmentNMax, segmentTolerance)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}
