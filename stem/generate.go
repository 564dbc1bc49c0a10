package stem

import "sync"

// GeneratePairs cross-joins every source triplet against every target
// triplet, builds a tentative PairOfStemGroups for each combination, and
// keeps those passing the diameter and edge pre-filters:
//
//  1. diameter test: every element of RadiusSimilarity() <= diamTol
//  2. edge test: every element of VerticeDifference() <= 2*ransacTol
//
// The outer loop over source triplets is parallelized across workers
// workers; each worker accumulates its own accepted-pairs bucket, which
// are concatenated at the end. This avoids a hot mutex on the shared
// accept-list, per the preferred per-worker-bucket pattern.
func GeneratePairs(targetTriplets, sourceTriplets []StemTriplet, diamTol, ransacTol float64, workers int) []*PairOfStemGroups {
	if workers < 1 {
		workers = 1
	}
	n := len(sourceTriplets)
	if n == 0 || len(targetTriplets) == 0 {
		return nil
	}

	buckets := make([][]*PairOfStemGroups, workers)
	jobs := make(chan int, n)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			var bucket []*PairOfStemGroups
			for i := range jobs {
				srcTriplet := sourceTriplets[i]
				for _, tgtTriplet := range targetTriplets {
					candidate := NewPairOfStemGroups(tgtTriplet.Group, srcTriplet.Group)
					if passesPreFilter(candidate, diamTol, ransacTol) {
						bucket = append(bucket, candidate)
					}
				}
			}
			buckets[worker] = bucket
		}(w)
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var total int
	for _, b := range buckets {
		total += len(b)
	}
	out := make([]*PairOfStemGroups, 0, total)
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

// passesPreFilter applies the diameter and edge consistency tests to a
// tentative pair.
func passesPreFilter(p *PairOfStemGroups, diamTol, ransacTol float64) bool {
	for _, rs := range p.RadiusSimilarity() {
		if rs > diamTol {
			return false
		}
	}
	edgeTol := 2 * ransacTol
	for _, vd := range p.VerticeDifference() {
		if vd > edgeTol {
			return false
		}
	}
	return true
}
