package stem

import "testing"

func TestStemMap_ApplyTransformAccumulates(t *testing.T) {
	m := NewStemMap()
	m.AddStem(mkStem(1, 0, 0, 0.1))

	t1 := Identity4()
	t1[0][3] = 5
	t2 := Identity4()
	t2[1][3] = 7

	m.ApplyTransform(t1)
	m.ApplyTransform(t2)

	if m.Stems[0].X != 6 || m.Stems[0].Y != 7 {
		t.Fatalf("unexpected coords after two applies: %+v", m.Stems[0])
	}

	want := t2.Mul(t1)
	if m.transform != want {
		t.Errorf("accumulator = %v, want %v", m.transform, want)
	}
}

func TestStemMap_RestoreOriginalCoords(t *testing.T) {
	m := NewStemMap()
	m.AddStem(mkStem(1, 2, 3, 0.1))
	original := m.Stems[0]

	rot := rotationZ(1.2345)
	rot[0][3], rot[1][3], rot[2][3] = 4, -1, 9
	m.ApplyTransform(rot)

	if err := m.RestoreOriginalCoords(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(m.Stems[0].X, original.X, 1e-9) ||
		!almostEqual(m.Stems[0].Y, original.Y, 1e-9) ||
		!almostEqual(m.Stems[0].Z, original.Z, 1e-9) {
		t.Errorf("restored coords = %+v, want %+v", m.Stems[0], original)
	}
	if m.transform != Identity4() {
		t.Errorf("expected accumulator reset to identity, got %v", m.transform)
	}
}

func TestStemMap_RemoveIndices_SingleFilteringPass(t *testing.T) {
	m := NewStemMap()
	for i := 0; i < 5; i++ {
		m.AddStem(mkStem(float64(i), 0, 0, 0.1))
	}
	// Remove indices 0, 2, 4 in one pass; no descending-order discipline required.
	m.RemoveIndices(map[int]bool{0: true, 2: true, 4: true})

	if len(m.Stems) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(m.Stems))
	}
	if m.Stems[0].X != 1 || m.Stems[1].X != 3 {
		t.Errorf("unexpected survivors: %+v", m.Stems)
	}
}

func TestStemMap_Equal(t *testing.T) {
	a := NewStemMap()
	a.AddStem(mkStem(1, 2, 3, 0.1))
	b := NewStemMap()
	b.AddStem(mkStem(1, 2, 3, 0.1))

	if !a.Equal(b) {
		t.Error("expected equal maps to compare equal")
	}

	b.AddStem(mkStem(9, 9, 9, 0.5))
	if a.Equal(b) {
		t.Error("expected maps with different stem counts to compare unequal")
	}
}

func TestStemMap_Summary(t *testing.T) {
	m := NewStemMap()
	m.AddStem(mkStem(0, 0, 0, 0.1))
	m.AddStem(mkStem(2, 0, 0, 0.3))

	s := m.Summary()
	if s.Count != 2 {
		t.Errorf("count = %d, want 2", s.Count)
	}
	if s.MinRadius != 0.1 || s.MaxRadius != 0.3 {
		t.Errorf("radius range = [%g, %g], want [0.1, 0.3]", s.MinRadius, s.MaxRadius)
	}
	if s.Centroid[0] != 1 {
		t.Errorf("centroid.X = %g, want 1", s.Centroid[0])
	}
}
