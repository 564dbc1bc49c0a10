package stem

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderColors names the colors used for each role in a composite
// registration rendering, mirroring the teacher's VacuumColor/
// DefaultColors split between distinct dataset roles.
type RenderColors struct {
	Target    color.NRGBA
	Source    color.NRGBA
	Consensus color.NRGBA
	Label     color.NRGBA
}

// DefaultRenderColors returns a legible default palette: target in
// blue, aligned source in red, consensus stems outlined in gold.
func DefaultRenderColors() RenderColors {
	return RenderColors{
		Target:    color.NRGBA{60, 90, 220, 255},
		Source:    color.NRGBA{220, 70, 60, 255},
		Consensus: color.NRGBA{230, 180, 20, 255},
		Label:     color.NRGBA{20, 20, 20, 255},
	}
}

// CompositeRenderer rasterizes a target map and an aligned source map
// onto one canvas, scaled to fit, with consensus stems highlighted.
// Mirrors the teacher's CompositeRenderer shape (Maps/Transforms/
// Colors/Scale/Padding), specialized to two stem maps instead of an
// arbitrary set of vacuum floor plans.
type CompositeRenderer struct {
	Target    *StemMap
	Source    *StemMap
	Transform Transform4
	Consensus StemGroup
	Colors    RenderColors
	Width     int
	Height    int
	Padding   int
}

// NewCompositeRenderer builds a renderer for the result of a completed
// registration.
func NewCompositeRenderer(target, source *StemMap, result Result) *CompositeRenderer {
	return &CompositeRenderer{
		Target:    target,
		Source:    source,
		Transform: result.Transform,
		Consensus: result.TargetUsed,
		Colors:    DefaultRenderColors(),
		Width:     1024,
		Height:    1024,
		Padding:   40,
	}
}

// RenderPNG rasterizes the composite and writes it to path.
func (r *CompositeRenderer) RenderPNG(path string) error {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	aligned := r.Source.Clone()
	aligned.ApplyTransform(r.Transform)

	minX, minY, maxX, maxY := r.bounds(r.Target, aligned)
	scaleX := float64(r.Width-2*r.Padding) / math.Max(maxX-minX, 1e-9)
	scaleY := float64(r.Height-2*r.Padding) / math.Max(maxY-minY, 1e-9)
	scale := math.Min(scaleX, scaleY)

	project := func(x, y float64) (int, int) {
		px := r.Padding + int((x-minX)*scale)
		py := r.Height - r.Padding - int((y-minY)*scale)
		return px, py
	}

	for _, s := range r.Target.Stems {
		px, py := project(s.X, s.Y)
		drawCircle(img, px, py, radiusPixels(s.Radius, scale), r.Colors.Target)
	}
	for _, s := range aligned.Stems {
		px, py := project(s.X, s.Y)
		drawCircle(img, px, py, radiusPixels(s.Radius, scale), r.Colors.Source)
	}
	for _, s := range r.Consensus {
		px, py := project(s.X, s.Y)
		drawCircleOutline(img, px, py, radiusPixels(s.Radius, scale)+3, r.Colors.Consensus)
	}

	drawLabel(img, r.Padding, 20, fmt.Sprintf("target=%d source=%d consensus=%d",
		len(r.Target.Stems), len(r.Source.Stems), len(r.Consensus)), r.Colors.Label)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stem: create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("stem: encode png %s: %w", path, err)
	}
	return nil
}

func (r *CompositeRenderer) bounds(maps ...*StemMap) (minX, minY, maxX, maxY float64) {
	first := true
	for _, m := range maps {
		for _, s := range m.Stems {
			if first {
				minX, maxX = s.X, s.X
				minY, maxY = s.Y, s.Y
				first = false
				continue
			}
			minX = math.Min(minX, s.X)
			maxX = math.Max(maxX, s.X)
			minY = math.Min(minY, s.Y)
			maxY = math.Max(maxY, s.Y)
		}
	}
	return
}

func radiusPixels(r, scale float64) int {
	px := int(r * scale)
	if px < 2 {
		return 2
	}
	return px
}

func drawCircle(img *image.RGBA, cx, cy, radius int, c color.NRGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}

func drawCircleOutline(img *image.RGBA, cx, cy, radius int, c color.NRGBA) {
	for angleStep := 0; angleStep < 360; angleStep++ {
		rad := float64(angleStep) * math.Pi / 180
		x := cx + int(float64(radius)*math.Cos(rad))
		y := cy + int(float64(radius)*math.Sin(rad))
		img.SetNRGBA(x, y, c)
	}
}

func drawLabel(img *image.RGBA, x, y int, text string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
