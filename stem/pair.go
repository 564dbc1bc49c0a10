package stem

import "math"

// PairOfStemGroups is a candidate correspondence between one target
// group and one source group of equal size, at least 3. It caches the
// best rigid transform once solved, the per-index radius-similarity
// vector, and — once a transform exists — the alignment error (the sum
// of squared residuals over all paired stems). Both groups are kept in matched order: group[i] in source
// corresponds to group[i] in target.
type PairOfStemGroups struct {
	targetGroup StemGroup
	sourceGroup StemGroup

	radiusSimilarity  []float64
	bestTransform     Transform4
	transformComputed bool
	meanSquareError   float64
}

// NewPairOfStemGroups builds a pair from a target and source triplet,
// sorting each by ascending radius and computing the initial
// radius-similarity vector.
func NewPairOfStemGroups(target, source StemGroup) *PairOfStemGroups {
	tg := make(StemGroup, len(target))
	copy(tg, target)
	sg := make(StemGroup, len(source))
	copy(sg, source)
	sortByRadius(tg)
	sortByRadius(sg)

	p := &PairOfStemGroups{
		targetGroup:   tg,
		sourceGroup:   sg,
		bestTransform: Identity4(),
	}
	p.updateRadiusSimilarity()
	return p
}

// updateRadiusSimilarity recomputes the per-index relative diameter
// error between the two groups.
func (p *PairOfStemGroups) updateRadiusSimilarity() {
	result := make([]float64, len(p.sourceGroup))
	for i := range p.sourceGroup {
		rs, rt := p.sourceGroup[i].Radius, p.targetGroup[i].Radius
		result[i] = math.Abs(rs-rt) / ((rs + rt) / 2)
	}
	p.radiusSimilarity = result
}

// RadiusSimilarity returns the per-index relative diameter error.
func (p *PairOfStemGroups) RadiusSimilarity() []float64 {
	return p.radiusSimilarity
}

// VerticeDifference returns, for each index i, the absolute difference
// between the edge length src[i]-src[i+1] and tgt[i]-tgt[i+1] (wrapping
// the last index to 0).
func (p *PairOfStemGroups) VerticeDifference() []float64 {
	n := len(p.targetGroup)
	result := make([]float64, n)
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		srcEdge := distance(*p.sourceGroup[i], *p.sourceGroup[next])
		tgtEdge := distance(*p.targetGroup[i], *p.targetGroup[next])
		result[i] = math.Abs(srcEdge - tgtEdge)
	}
	return result
}

// TargetGroup returns the pair's target-side stems, in matched order.
func (p *PairOfStemGroups) TargetGroup() StemGroup { return p.targetGroup }

// SourceGroup returns the pair's source-side stems, in matched order.
func (p *PairOfStemGroups) SourceGroup() StemGroup { return p.sourceGroup }

// BestTransform returns the previously computed best transform, or the
// identity if none has been computed yet.
func (p *PairOfStemGroups) BestTransform() Transform4 { return p.bestTransform }

// TransformComputed reports whether ComputeBestTransform has run.
func (p *PairOfStemGroups) TransformComputed() bool { return p.transformComputed }

// MeanSquareError returns the cached error, the sum of squared
// residuals over all paired stems (not divided by their count), valid
// once a transform has been computed.
func (p *PairOfStemGroups) MeanSquareError() float64 { return p.meanSquareError }

// ComputeBestTransform runs the Procrustes solver over the pair's
// current groups, caches the result, marks transformComputed, and
// updates the MSE. Numeric instability does not panic: it is surfaced
// to the caller so the pair can be ranked last instead of crashing the
// batch.
func (p *PairOfStemGroups) ComputeBestTransform() error {
	t, err := SolveRigidTransform(p.sourceGroup, p.targetGroup)
	if err != nil {
		p.transformComputed = false
		p.meanSquareError = math.Inf(1)
		return err
	}
	p.bestTransform = t
	p.transformComputed = true
	p.updateMeanSquareError()
	return nil
}

func (p *PairOfStemGroups) updateMeanSquareError() {
	var mse float64
	for i := range p.targetGroup {
		aligned := p.bestTransform.Apply(*p.sourceGroup[i])
		dx := p.targetGroup[i].X - aligned.X
		dy := p.targetGroup[i].Y - aligned.Y
		dz := p.targetGroup[i].Z - aligned.Z
		mse += dx*dx + dy*dy + dz*dz
	}
	p.meanSquareError = mse
}

// AddFittingStem appends a newly-discovered correspondence to both
// groups in matched order and refreshes the radius-similarity vector.
// It does not re-sort: once growth starts, append order defines the
// correspondence.
func (p *PairOfStemGroups) AddFittingStem(source, target *Stem) {
	p.sourceGroup = append(p.sourceGroup, source)
	p.targetGroup = append(p.targetGroup, target)
	p.updateRadiusSimilarity()
}

// Less implements the ranking order used for the final sort: pairs
// without a computed transform rank after all others; otherwise larger
// consensus groups win, and on a size tie, lower MSE wins.
func Less(l, r *PairOfStemGroups) bool {
	if l.transformComputed != r.transformComputed {
		return l.transformComputed
	}
	if len(l.sourceGroup) == len(r.sourceGroup) {
		return l.meanSquareError < r.meanSquareError
	}
	return len(l.sourceGroup) > len(r.sourceGroup)
}
