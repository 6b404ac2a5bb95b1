// Package likelihood implements the TrackStar log-likelihood engine: it
// scores how well a Datum or Sample matches a Track's predicted curve,
// combining a per-vertex χ² from each datum's own covariance with the
// track's vertex weights and, optionally, a correction for the finite
// length of each track segment.
package likelihood

import (
	"errors"
	"fmt"
	"math"

	"github.com/milosgajdos/trackstar"
	"github.com/milosgajdos/trackstar/datum"
	"github.com/milosgajdos/trackstar/sample"
	"github.com/milosgajdos/trackstar/track"
)

// Datum returns the log-likelihood of d given tr: the log of a
// weight-and-distance-scaled sum of Gaussian densities, one per track
// vertex, normalized by d's own covariance. It fails with
// trackstar.ErrProjectionIncomplete if tr does not carry every label d
// exposes, and with trackstar.ErrSingular if d's covariance is singular.
//
// Datum normalizes tr's weights itself when tr.NormalizeWeights() is set.
// Sample does the same once for the whole sample rather than once per
// datum — calling Datum in a loop over a Sample's data would renormalize
// redundantly and is not equivalent to Sample's raw-weight subtraction
// term; use Sample for that case.
func Datum(d *datum.Datum, tr *track.Track) (float64, error) {
	return rawDatumLogLikelihood(d, tr, effectiveWeights(tr))
}

// rawDatumLogLikelihood is the shared computation behind Datum and
// Sample: it takes the weight vector to use as a parameter instead of
// deriving it from tr, so a caller that has already normalized once (as
// Sample does) need not redo it per datum — an explicit parameter in
// place of process-wide "already normalized" state.
func rawDatumLogLikelihood(d *datum.Datum, tr *track.Track, weights []float64) (float64, error) {
	projected, err := tr.Project(d.Labels())
	if err != nil {
		if errors.Is(err, trackstar.ErrUnknownLabel) {
			return 0, fmt.Errorf("likelihood: datum exposes a label absent from the track: %w", trackstar.ErrProjectionIncomplete)
		}
		return 0, err
	}

	cinv := d.Cov().Inv()
	if cinv == nil {
		return 0, fmt.Errorf("likelihood: datum covariance is singular: %w", trackstar.ErrSingular)
	}
	det, err := d.Cov().Det()
	if err != nil {
		return 0, err
	}
	if det <= 0 {
		return 0, fmt.Errorf("likelihood: datum covariance determinant %g is not positive: %w", det, trackstar.ErrSingular)
	}

	nVert := projected.NVertices()
	vector := d.Vector()

	var total float64
	for i := 0; i < nVert; i++ {
		vertex := projected.Vertex(i)
		diff := vectorSub(vector, vertex)

		chi2, err := quadraticForm(diff, cinv)
		if err != nil {
			return 0, err
		}

		var deltaM, beta float64
		if i < nVert-1 {
			next := projected.Vertex(i + 1)
			segment := vectorSub(next, vertex)
			deltaM = norm2(segment)

			beta = 1
			if tr.UseLineSegmentCorrections() {
				a, err := bilinearForm(segment, cinv, segment)
				if err != nil {
					return 0, err
				}
				b, err := bilinearForm(diff, cinv, segment)
				if err != nil {
					return 0, err
				}
				beta, err = segmentCorrection(a, b)
				if err != nil {
					return 0, err
				}
			}
		}
		// The final vertex closes a zero-length segment: deltaM and beta
		// stay 0, so it contributes nothing regardless of which factor a
		// reader expects to carry the zero.

		total += weights[i] * math.Exp(-0.5*chi2) * deltaM * beta
	}

	denom := math.Sqrt(2 * math.Pi * det)
	return math.Log(total / denom), nil
}

// Sample returns the log-likelihood of an entire Sample given tr: the
// sum of each datum's log-likelihood, evaluated across tr.NThreads()
// worker goroutines and reduced in index order, so the result does not
// depend on goroutine scheduling (different thread counts may differ only
// by floating-point rounding). Track weights are normalized once,
// up front, rather than once per datum. When tr.NormalizeWeights() is
// false, the raw sum of tr's weights is subtracted from the total.
func Sample(s *sample.Sample, tr *track.Track) (float64, error) {
	weights := effectiveWeights(tr)

	total, err := partitionedSum(s, tr, weights, tr.NThreads())
	if err != nil {
		return 0, err
	}
	if !tr.NormalizeWeights() {
		total -= sumWeights(tr)
	}
	return total, nil
}
