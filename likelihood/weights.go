package likelihood

import "github.com/milosgajdos/trackstar/track"

// effectiveWeights returns the weight vector the engine should use for a
// single evaluation pass: a locally scaled copy when tr.NormalizeWeights()
// is set, or the track's raw weights otherwise. It never mutates tr:
// threading a local, possibly-scaled copy through the inner loop makes
// restoring the original weights afterward unnecessary, since they were
// never touched.
//
// The scale factor W̄ = sum(weights)/1000 * 1/n_vertices keeps
// per-contribution magnitudes away from double-precision overflow for
// common sample sizes.
func effectiveWeights(tr *track.Track) []float64 {
	w := tr.Weights()
	if !tr.NormalizeWeights() {
		return w
	}
	var total float64
	for _, wi := range w {
		total += wi
	}
	n := tr.NVertices()
	if total == 0 || n == 0 {
		return w
	}
	wbar := total / 1000 / float64(n)
	scaled := make([]float64, len(w))
	for i, wi := range w {
		scaled[i] = wi / wbar
	}
	return scaled
}

func sumWeights(tr *track.Track) float64 {
	var total float64
	for _, w := range tr.Weights() {
		total += w
	}
	return total
}
