package stem

import "testing"

func TestGenerateTriplets_CountsAllCombinations(t *testing.T) {
	m := NewStemMap()
	for i := 0; i < 5; i++ {
		m.AddStem(mkStem(float64(i), float64(i*i), 0, 0.1+float64(i)*0.01))
	}
	triplets := GenerateTriplets(m)
	// C(5,3) = 10
	if len(triplets) != 10 {
		t.Fatalf("expected 10 triplets, got %d", len(triplets))
	}
	for _, tr := range triplets {
		if len(tr.Group) != 3 {
			t.Errorf("triplet group size = %d, want 3", len(tr.Group))
		}
	}
}

func TestGenerateTriplets_FewerThanThreeStems(t *testing.T) {
	m := NewStemMap()
	m.AddStem(mkStem(0, 0, 0, 0.1))
	m.AddStem(mkStem(1, 0, 0, 0.1))
	if got := GenerateTriplets(m); got != nil {
		t.Errorf("expected nil for n<3, got %v", got)
	}
}

func TestStemTriplet_DegenerateFlagsColinearPoints(t *testing.T) {
	m := NewStemMap()
	m.AddStem(mkStem(0, 0, 0, 0.1))
	m.AddStem(mkStem(1, 0, 0, 0.1))
	m.AddStem(mkStem(2, 0, 0, 0.1))

	triplets := GenerateTriplets(m)
	if len(triplets) != 1 {
		t.Fatalf("expected 1 triplet, got %d", len(triplets))
	}
	if !triplets[0].Degenerate(DefaultLinearityTol) {
		t.Error("three colinear points should be flagged degenerate")
	}
}

func TestStemTriplet_NonColinearIsNotDegenerate(t *testing.T) {
	m := NewStemMap()
	m.AddStem(mkStem(0, 0, 0, 0.1))
	m.AddStem(mkStem(1, 0, 0, 0.1))
	m.AddStem(mkStem(0, 1, 0, 0.1))

	triplets := GenerateTriplets(m)
	if triplets[0].Degenerate(DefaultLinearityTol) {
		t.Error("a right-angle triplet should not be flagged degenerate")
	}
}

func TestFilterDegenerate_DropsOnlyFlagged(t *testing.T) {
	m := NewStemMap()
	m.AddStem(mkStem(0, 0, 0, 0.1))
	m.AddStem(mkStem(1, 0, 0, 0.1))
	m.AddStem(mkStem(2, 0, 0, 0.1))
	m.AddStem(mkStem(0, 1, 0, 0.1))

	triplets := GenerateTriplets(m)
	filtered := FilterDegenerate(triplets, DefaultLinearityTol)
	if len(filtered) >= len(triplets) {
		t.Errorf("expected at least one colinear triplet dropped: before=%d after=%d", len(triplets), len(filtered))
	}
	for _, tr := range filtered {
		if tr.Degenerate(DefaultLinearityTol) {
			t.Error("filtered set must not contain degenerate triplets")
		}
	}
}
