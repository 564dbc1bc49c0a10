package stem

import (
	"fmt"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// canvasRenderer is the shared surface both the SVG and rasterizer
// backends implement, letting one draw routine serve both outputs.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// VectorRenderer renders a target map and an aligned source map as
// scalable vector graphics, for inclusion in a survey report. Mirrors
// the teacher's VectorRenderer (Maps/Transforms/Colors/Scale/Padding
// fields, svg/rasterizer dual backend), specialized to a registration
// result's two stem maps.
type VectorRenderer struct {
	Target     *StemMap
	Source     *StemMap
	Transform  Transform4
	Colors     RenderColors
	Padding    float64
	Resolution canvas.Resolution
}

// NewVectorRenderer builds a vector renderer for a completed
// registration result.
func NewVectorRenderer(target, source *StemMap, result Result) *VectorRenderer {
	return &VectorRenderer{
		Target:     target,
		Source:     source,
		Transform:  result.Transform,
		Colors:     DefaultRenderColors(),
		Padding:    1.0,
		Resolution: canvas.DPI(300),
	}
}

// RenderToSVG writes the composite as an SVG document to w.
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, width, height)
	return svgRenderer.Close()
}

// RenderToSVGFile writes the composite SVG to path.
func (r *VectorRenderer) RenderToSVGFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stem: create %s: %w", path, err)
	}
	defer f.Close()
	if err := r.RenderToSVG(f); err != nil {
		return fmt.Errorf("stem: render svg %s: %w", path, err)
	}
	return nil
}

// RenderToPNG rasterizes the composite and writes it to w as PNG, using
// the canvas rasterizer backend rather than the raw image/draw path
// render.go uses — this is the higher-fidelity, print-resolution output.
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, width, height)
	return png.Encode(w, rast)
}

func (r *VectorRenderer) bounds() (minX, minY, maxX, maxY float64) {
	aligned := r.Source.Clone()
	aligned.ApplyTransform(r.Transform)

	first := true
	for _, m := range []*StemMap{r.Target, aligned} {
		for _, s := range m.Stems {
			if first {
				minX, maxX, minY, maxY = s.X, s.X, s.Y, s.Y
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

func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, width, height float64) {
	bg := canvas.DefaultStyle
	bg.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bg, canvas.Identity)

	toCanvas := func(x, y float64) canvas.Matrix {
		tx := (x - minX) + r.Padding
		ty := (y - minY) + r.Padding
		return canvas.Identity.Translate(tx, ty)
	}

	drawStems := func(m *StemMap, c canvas.Color) {
		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: c}
		for _, s := range m.Stems {
			circle := canvas.Circle(s.Radius)
			renderer.RenderPath(circle, style, toCanvas(s.X, s.Y))
		}
	}

	drawStems(r.Target, nrgbaToCanvasColor(r.Colors.Target))

	aligned := r.Source.Clone()
	aligned.ApplyTransform(r.Transform)
	drawStems(aligned, nrgbaToCanvasColor(r.Colors.Source))
}

func nrgbaToCanvasColor(c interface{ RGBA() (uint32, uint32, uint32, uint32) }) canvas.Color {
	rr, gg, bb, aa := c.RGBA()
	return canvas.Color{R: uint8(rr >> 8), G: uint8(gg >> 8), B: uint8(bb >> 8), A: uint8(aa >> 8)}
}
