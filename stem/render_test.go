package stem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompositeRenderer_RenderPNGWritesFile(t *testing.T) {
	target := baseQuadMap()
	source := baseQuadMap()
	result := Result{
		Transform:  Identity4(),
		MSE:        0,
		TargetUsed: StemGroup{&target.Stems[0], &target.Stems[1], &target.Stems[2]},
	}

	r := NewCompositeRenderer(target, source, result)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := r.RenderPNG(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty PNG file")
	}
}
