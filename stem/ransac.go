package stem

import "math"

// GrowConsensus iteratively extends a solved pair by incorporating
// additional stems that match under the pair's current transform, then
// re-solving, until an iteration makes no progress.
//
// Each iteration:
//  1. copies the entire source map and applies the pair's current
//     transform to the copy.
//  2. for every (transformed source stem i, target stem j), includes the
//     correspondence when:
//     - distance(transformed source[i], target[j]) <= ransacTol
//     - target[j] is not already in the pair's target group (by
//       coordinate equality)
//     - the relative diameter error between target[j] and the
//       *untransformed* source[i] is <= diamTol
//  3. appends the untransformed source stem (so repeated re-application
//     of the evolving transform cannot drift) and the matched target
//     stem to the pair, in matched order.
//  4. re-solves the transform if any inclusion occurred.
//
// The loop terminates once an iteration adds nothing; per the geometry
// of the problem this happens within min(|source|, |target|) - 3
// iterations since the group strictly grows or the loop halts.
func GrowConsensus(pair *PairOfStemGroups, target, source *StemMap, ransacTol, diamTol float64) error {
	for {
		madeProgress := false

		transformed := source.Clone()
		transformed.ApplyTransform(pair.BestTransform())

		for i := range transformed.Stems {
			for j := range target.Stems {
				if distance(transformed.Stems[i], target.Stems[j]) > ransacTol {
					continue
				}
				if stemAlreadyInGroup(target.Stems[j], pair.TargetGroup()) {
					continue
				}
				if relativeDiameterError(target.Stems[j], source.Stems[i]) > diamTol {
					continue
				}
				pair.AddFittingStem(&source.Stems[i], &target.Stems[j])
				madeProgress = true
			}
		}

		if !madeProgress {
			return nil
		}
		if err := pair.ComputeBestTransform(); err != nil {
			return err
		}
	}
}

// stemAlreadyInGroup reports whether a stem's coordinates already appear
// in a group, used for duplicate prevention during growth.
func stemAlreadyInGroup(s Stem, group StemGroup) bool {
	for _, g := range group {
		if s.Equal(*g) {
			return true
		}
	}
	return false
}

// relativeDiameterError is the same relative-error formula used by the
// pre-filter's radius similarity, applied here to a single stem pair.
func relativeDiameterError(a, b Stem) float64 {
	return math.Abs(a.Radius-b.Radius) / ((a.Radius + b.Radius) / 2)
}
