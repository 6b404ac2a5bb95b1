package likelihood

import (
	"sync"

	"github.com/milosgajdos/trackstar/sample"
	"github.com/milosgajdos/trackstar/track"
)

// partitionedSum evaluates rawDatumLogLikelihood over every datum in s,
// split across nThreads worker goroutines, each owning a contiguous
// index range. The reduction always sums partitions in index order, so
// the result does not depend on goroutine scheduling and is reproducible
// for a given n_threads; different thread counts group the additions
// differently and may differ in the last bits of precision. There
// is no cancellation: a worker that hits an error stops early, and the
// first error found scanning partitions in order is returned rather than
// any partial result.
func partitionedSum(s *sample.Sample, tr *track.Track, weights []float64, nThreads int) (float64, error) {
	n := s.Len()
	if n == 0 {
		return 0, nil
	}

	p := nThreads
	if p < 1 {
		p = 1
	}
	if p > n {
		p = n
	}

	bounds := partitionBounds(n, p)
	partials := make([]float64, p)
	errs := make([]error, p)

	var wg sync.WaitGroup
	for k := 0; k < p; k++ {
		k := k
		wg.Add(1)
		go func() {
			defer wg.Done()
			lo, hi := bounds[k][0], bounds[k][1]
			var sum float64
			for i := lo; i < hi; i++ {
				d, err := s.At(i)
				if err != nil {
					errs[k] = err
					return
				}
				ll, err := rawDatumLogLikelihood(d, tr, weights)
				if err != nil {
					errs[k] = err
					return
				}
				sum += ll
			}
			partials[k] = sum
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}

	var total float64
	for _, part := range partials {
		total += part
	}
	return total, nil
}

// partitionBounds splits [0,n) into p contiguous, near-equal ranges; the
// first n%p ranges get one extra element.
func partitionBounds(n, p int) [][2]int {
	bounds := make([][2]int, p)
	base, rem := n/p, n%p
	start := 0
	for k := 0; k < p; k++ {
		size := base
		if k < rem {
			size++
		}
		bounds[k] = [2]int{start, start + size}
		start += size
	}
	return bounds
}
