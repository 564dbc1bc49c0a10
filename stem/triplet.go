package stem

import "sort"

// GenerateTriplets enumerates every C(n,3) 3-subset of a stem map's
// stems, in lexicographic order on the source index tuple, and attaches
// the eigen-spectrum descriptor to each. Each StemGroup within a
// triplet is itself sorted by ascending radius before its eigenvalues
// are computed, matching the radius-sort invariant groups carry
// throughout the pipeline.
func GenerateTriplets(m *StemMap) []StemTriplet {
	n := len(m.Stems)
	if n < 3 {
		return nil
	}
	var out []StemTriplet
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				g := StemGroup{&m.Stems[i], &m.Stems[j], &m.Stems[k]}
				sortByRadius(g)
				out = append(out, StemTriplet{
					Group:       g,
					Eigenvalues: eigenvaluesAscending(covariance3(g)),
				})
			}
		}
	}
	return out
}

// sortByRadius sorts a StemGroup in place by ascending radius, stable
// with respect to the group's input order on ties.
func sortByRadius(g StemGroup) {
	sort.SliceStable(g, func(i, j int) bool {
		return g[i].Radius < g[j].Radius
	})
}

// FilterDegenerate returns the subset of triplets that are not flagged
// degenerate (nearly colinear) under the given linearity tolerance.
func FilterDegenerate(triplets []StemTriplet, linearityTol float64) []StemTriplet {
	out := make([]StemTriplet, 0, len(triplets))
	for _, t := range triplets {
		if !t.Degenerate(linearityTol) {
			out = append(out, t)
		}
	}
	return out
}
