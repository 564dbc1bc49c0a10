package stem

import "testing"

func mkStem(x, y, z, r float64) Stem { return Stem{X: x, Y: y, Z: z, Radius: r} }

func TestNewPairOfStemGroups_SortsByAscendingRadius(t *testing.T) {
	t1, t2, t3 := mkStem(0, 0, 0, 0.3), mkStem(1, 0, 0, 0.1), mkStem(0, 1, 0, 0.2)
	s1, s2, s3 := mkStem(10, 0, 0, 0.31), mkStem(11, 0, 0, 0.11), mkStem(10, 1, 0, 0.21)

	target := StemGroup{&t1, &t2, &t3}
	source := StemGroup{&s1, &s2, &s3}

	p := NewPairOfStemGroups(target, source)

	tg, sg := p.TargetGroup(), p.SourceGroup()
	for i := 1; i < len(tg); i++ {
		if tg[i].Radius < tg[i-1].Radius {
			t.Errorf("target group not sorted ascending by radius: %v", tg.radii())
		}
		if sg[i].Radius < sg[i-1].Radius {
			t.Errorf("source group not sorted ascending by radius: %v", sg.radii())
		}
	}
}

func TestPairOfStemGroups_RadiusSimilarity(t *testing.T) {
	t1 := mkStem(0, 0, 0, 0.10)
	s1 := mkStem(10, 0, 0, 0.11)
	p := NewPairOfStemGroups(StemGroup{&t1}, StemGroup{&s1})

	want := 0.01 / 0.105
	got := p.RadiusSimilarity()[0]
	if !almostEqual(got, want, 1e-12) {
		t.Errorf("radius similarity = %g, want %g", got, want)
	}
}

func TestPairOfStemGroups_VerticeDifference_WrapsAround(t *testing.T) {
	// A right isosceles triangle on each side with matching edge lengths
	// should report near-zero vertice differences.
	t1, t2, t3 := mkStem(0, 0, 0, 0.1), mkStem(1, 0, 0, 0.2), mkStem(0, 1, 0, 0.3)
	s1, s2, s3 := mkStem(5, 5, 0, 0.1), mkStem(6, 5, 0, 0.2), mkStem(5, 6, 0, 0.3)

	p := NewPairOfStemGroups(StemGroup{&t1, &t2, &t3}, StemGroup{&s1, &s2, &s3})
	diffs := p.VerticeDifference()
	if len(diffs) != 3 {
		t.Fatalf("expected 3 vertice differences, got %d", len(diffs))
	}
	for i, d := range diffs {
		if !almostEqual(d, 0, 1e-9) {
			t.Errorf("vertice diff[%d] = %g, want ~0", i, d)
		}
	}
}

func TestPairOfStemGroups_ComputeBestTransformAndMSE(t *testing.T) {
	t1, t2, t3 := mkStem(0, 0, 0, 0.1), mkStem(1, 0, 0, 0.2), mkStem(0, 1, 0, 0.3)
	s1, s2, s3 := mkStem(10, 10, 0, 0.1), mkStem(11, 10, 0, 0.2), mkStem(10, 11, 0, 0.3)

	p := NewPairOfStemGroups(StemGroup{&t1, &t2, &t3}, StemGroup{&s1, &s2, &s3})
	if err := p.ComputeBestTransform(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.TransformComputed() {
		t.Fatal("expected transformComputed = true")
	}
	if !almostEqual(p.MeanSquareError(), 0, 1e-9) {
		t.Errorf("expected near-zero MSE for exact translation, got %g", p.MeanSquareError())
	}
}

func TestPairOfStemGroups_AddFittingStem_DoesNotResort(t *testing.T) {
	t1, t2, t3 := mkStem(0, 0, 0, 0.1), mkStem(1, 0, 0, 0.2), mkStem(0, 1, 0, 0.3)
	s1, s2, s3 := mkStem(0, 0, 0, 0.1), mkStem(1, 0, 0, 0.2), mkStem(0, 1, 0, 0.3)
	p := NewPairOfStemGroups(StemGroup{&t1, &t2, &t3}, StemGroup{&s1, &s2, &s3})

	// A fourth stem with a *smaller* radius than everything already in
	// the group; if AddFittingStem re-sorted, it would move to index 0.
	t4 := mkStem(5, 5, 0, 0.01)
	s4 := mkStem(5, 5, 0, 0.01)
	p.AddFittingStem(&s4, &t4)

	tg := p.TargetGroup()
	if tg[len(tg)-1] != &t4 {
		t.Error("AddFittingStem must append without re-sorting")
	}
}

func TestLess_OrdersBySizeThenMSE(t *testing.T) {
	big := &PairOfStemGroups{sourceGroup: make(StemGroup, 4), meanSquareError: 100}
	small := &PairOfStemGroups{sourceGroup: make(StemGroup, 3), meanSquareError: 0}
	if !Less(big, small) {
		t.Error("larger group should rank before smaller group regardless of MSE")
	}

	lowMSE := &PairOfStemGroups{sourceGroup: make(StemGroup, 3), meanSquareError: 1}
	highMSE := &PairOfStemGroups{sourceGroup: make(StemGroup, 3), meanSquareError: 2}
	if !Less(lowMSE, highMSE) {
		t.Error("on a size tie, lower MSE should rank first")
	}
}
