package stem

import "testing"

func TestGrowConsensus_MonotonicGrowth(t *testing.T) {
	shared := []Stem{
		mkStem(0, 0, 0, 0.10),
		mkStem(1, 0, 0, 0.12),
		mkStem(0, 1, 0, 0.15),
		mkStem(1, 1, 0, 0.11),
		mkStem(2, 2, 0, 0.18),
	}
	offset := Identity4()
	offset[0][3], offset[1][3] = 2, 1

	source := NewStemMap()
	for _, s := range shared {
		source.AddStem(s)
	}
	target := NewStemMap()
	for _, s := range shared {
		target.AddStem(offset.Apply(s))
	}

	// Seed the pair with only the first 3 stems, as a solved triplet
	// would be before growth begins.
	initial := NewPairOfStemGroups(
		StemGroup{&target.Stems[0], &target.Stems[1], &target.Stems[2]},
		StemGroup{&source.Stems[0], &source.Stems[1], &source.Stems[2]},
	)
	if err := initial.ComputeBestTransform(); err != nil {
		t.Fatalf("unexpected error solving initial transform: %v", err)
	}

	sizeBefore := len(initial.SourceGroup())
	if err := GrowConsensus(initial, target, source, 0.05, DefaultDiameterErrorTol); err != nil {
		t.Fatalf("unexpected error during growth: %v", err)
	}
	sizeAfter := len(initial.SourceGroup())

	if sizeAfter < sizeBefore {
		t.Fatalf("group shrank during growth: before=%d after=%d", sizeBefore, sizeAfter)
	}
	if sizeAfter != 5 {
		t.Errorf("expected growth to discover all 5 shared stems, got %d", sizeAfter)
	}
	if !transformsEqual(initial.BestTransform(), offset, 1e-6) {
		t.Errorf("grown transform = %v, want %v", initial.BestTransform(), offset)
	}
}

func TestGrowConsensus_NoEligibleMatchesIsNoop(t *testing.T) {
	target := NewStemMap()
	target.AddStem(mkStem(0, 0, 0, 0.1))
	target.AddStem(mkStem(1, 0, 0, 0.1))
	target.AddStem(mkStem(0, 1, 0, 0.1))

	source := NewStemMap()
	source.AddStem(mkStem(0, 0, 0, 0.1))
	source.AddStem(mkStem(1, 0, 0, 0.1))
	source.AddStem(mkStem(0, 1, 0, 0.1))

	p := NewPairOfStemGroups(
		StemGroup{&target.Stems[0], &target.Stems[1], &target.Stems[2]},
		StemGroup{&source.Stems[0], &source.Stems[1], &source.Stems[2]},
	)
	if err := p.ComputeBestTransform(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := GrowConsensus(p, target, source, 0.05, DefaultDiameterErrorTol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.SourceGroup()) != 3 {
		t.Errorf("expected no growth with no further candidates, got size %d", len(p.SourceGroup()))
	}
}
