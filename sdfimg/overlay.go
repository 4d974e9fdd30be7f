package sdfimg

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfmarch/eval"
	"github.com/soypat/sdfmarch/march"
	"golang.org/x/image/vector"
)

const circleSegments = 48

// Overlay draws antialiased vector primitives given in world coordinates on top of an image.
type Overlay struct {
	dst   draw.Image
	frame Frame
	rast  *vector.Rasterizer
}

// NewOverlay returns an overlay drawing onto dst in the world space given by frame.
func NewOverlay(dst draw.Image, frame Frame) *Overlay {
	r := dst.Bounds()
	return &Overlay{
		dst:   dst,
		frame: frame,
		rast:  vector.NewRasterizer(r.Dx(), r.Dy()),
	}
}

// Frame returns the overlay's world to image mapping.
func (o *Overlay) Frame() Frame { return o.frame }

// Disk fills a disk of world radius r centered at c.
func (o *Overlay) Disk(c ms2.Vec, r float32, col color.Color) {
	o.begin()
	o.circlePath(o.px(c), r*o.frame.Scale(), false)
	o.fill(col)
}

// DiskPx fills a disk centered at world point c with a radius given in pixels.
func (o *Overlay) DiskPx(c ms2.Vec, rpx float32, col color.Color) {
	o.begin()
	o.circlePath(o.px(c), rpx, false)
	o.fill(col)
}

// Ring strokes a circle of world radius r centered at c with a pixel line width.
func (o *Overlay) Ring(c ms2.Vec, r, widthPx float32, col color.Color) {
	rpx := r * o.frame.Scale()
	if rpx <= 0 {
		return
	}
	o.begin()
	cp := o.px(c)
	o.circlePath(cp, rpx+widthPx/2, false)
	if inner := rpx - widthPx/2; inner > 0 {
		// Opposite winding cuts out the inner disk.
		o.circlePath(cp, inner, true)
	}
	o.fill(col)
}

// Segment strokes the world segment a-b with a pixel line width.
func (o *Overlay) Segment(a, b ms2.Vec, widthPx float32, col color.Color) {
	pa, pb := o.px(a), o.px(b)
	dir := ms2.Sub(pb, pa)
	l := ms2.Norm(dir)
	if l == 0 {
		return
	}
	n := ms2.Scale(widthPx/2/l, ms2.Vec{X: -dir.Y, Y: dir.X})
	o.begin()
	o.moveTo(ms2.Add(pa, n))
	o.lineTo(ms2.Add(pb, n))
	o.lineTo(ms2.Sub(pb, n))
	o.lineTo(ms2.Sub(pa, n))
	o.rast.ClosePath()
	o.fill(col)
}

// MarchStyle configures how [Overlay.DrawMarch] draws a raymarch trace.
type MarchStyle struct {
	Path   color.Color // Segments between consecutive steps.
	Circle color.Color // Distance circles around each step.
	Dot    color.Color // Step positions.
	Hit    color.Color // Final step of a hit.
	Miss   color.Color // Final step of a miss.
	Normal color.Color // Surface normal at a hit, see [Overlay.DrawHitNormal].
	// LineWidth, DotRadius and NormalLength are given in pixels.
	LineWidth    float32
	DotRadius    float32
	NormalLength float32
}

// DefaultMarchStyle returns the style used by the example programs.
func DefaultMarchStyle() MarchStyle {
	return MarchStyle{
		Path:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Circle:    color.RGBA{R: 80, G: 160, B: 255, A: 200},
		Dot:       color.RGBA{R: 255, G: 220, B: 40, A: 255},
		Hit:       color.RGBA{R: 40, G: 220, B: 80, A: 255},
		Miss:         color.RGBA{R: 230, G: 40, B: 40, A: 255},
		Normal:       color.RGBA{R: 250, G: 120, B: 250, A: 255},
		LineWidth:    1.5,
		DotRadius:    3,
		NormalLength: 24,
	}
}

// DrawMarch draws the trace of a single march: a circle of radius |distance| around every
// sample, segments joining the ray origin and consecutive samples, and a dot on each sample.
// The last sample is colored by the result status.
func (o *Overlay) DrawMarch(ray march.Ray, res march.Result, style MarchStyle) {
	prev := ray.Origin
	for _, s := range res.Steps {
		o.Ring(s.Position, math32.Abs(s.Distance), style.LineWidth, style.Circle)
		o.Segment(prev, s.Position, style.LineWidth, style.Path)
		prev = s.Position
	}
	if res.Status == march.StatusMiss && res.Traveled > 0 {
		// Show where the ray was heading after the last sample.
		o.Segment(prev, ray.At(res.Traveled), style.LineWidth, style.Miss)
	}
	for i, s := range res.Steps {
		c := style.Dot
		if i == len(res.Steps)-1 {
			c = style.Miss
			if res.Hit() {
				c = style.Hit
			}
		}
		o.DiskPx(s.Position, style.DotRadius, c)
	}
}

// DrawHitNormal draws the surface normal of sdf at the final sample of a hit as a segment
// NormalLength pixels long. The normal is the central difference gradient of sdf
// sampled one pixel apart. Misses draw nothing.
func (o *Overlay) DrawHitNormal(sdf eval.SDF2, res march.Result, style MarchStyle) error {
	if !res.Hit() {
		return nil
	}
	n, err := o.normal(sdf, res.Last().Position)
	if err != nil {
		return err
	}
	p := res.Last().Position
	o.Segment(p, ms2.Add(p, ms2.Scale(style.NormalLength/o.frame.Scale(), n)), style.LineWidth, style.Normal)
	return nil
}

func (o *Overlay) normal(sdf eval.SDF2, p ms2.Vec) (ms2.Vec, error) {
	var grad [1]ms2.Vec
	err := eval.Gradient(sdf, []ms2.Vec{p}, grad[:], 1/o.frame.Scale(), nil)
	if err != nil {
		return ms2.Vec{}, err
	}
	l := ms2.Norm(grad[0])
	if l == 0 || math32.IsNaN(l) {
		return ms2.Vec{}, errors.New("degenerate surface gradient")
	}
	return ms2.Scale(1/l, grad[0]), nil
}

// DrawFan draws the viewer, the fan's start circle and every march in results.
// results must be in ray order as returned by [march.CastFan].
func (o *Overlay) DrawFan(viewer ms2.Vec, fan march.Fan, results []march.Result, style MarchStyle) {
	if fan.StartRadius > 0 {
		o.Ring(viewer, fan.StartRadius, style.LineWidth, style.Path)
	}
	rays := fan.Rays(viewer)
	for i, res := range results {
		if i >= len(rays) {
			break
		}
		o.DrawMarch(rays[i], res, style)
	}
	o.DiskPx(viewer, 2*style.DotRadius, style.Path)
}

func (o *Overlay) px(p ms2.Vec) ms2.Vec {
	rmin := o.dst.Bounds().Min
	q := o.frame.ToPixel(p)
	return ms2.Vec{X: q.X - float32(rmin.X), Y: q.Y - float32(rmin.Y)}
}

func (o *Overlay) begin() {
	r := o.dst.Bounds()
	o.rast.Reset(r.Dx(), r.Dy())
	o.rast.DrawOp = draw.Over
}

func (o *Overlay) fill(col color.Color) {
	r := o.dst.Bounds()
	o.rast.Draw(o.dst, r, image.NewUniform(col), image.Point{})
}

func (o *Overlay) moveTo(p ms2.Vec) { o.rast.MoveTo(p.X, p.Y) }
func (o *Overlay) lineTo(p ms2.Vec) { o.rast.LineTo(p.X, p.Y) }

func (o *Overlay) circlePath(c ms2.Vec, r float32, clockwise bool) {
	if r <= 0 {
		return
	}
	step := 2 * math32.Pi / circleSegments
	if clockwise {
		step = -step
	}
	o.moveTo(ms2.Vec{X: c.X + r, Y: c.Y})
	for i := 1; i < circleSegments; i++ {
		a := float32(i) * step
		o.lineTo(ms2.Vec{X: c.X + r*math32.Cos(a), Y: c.Y + r*math32.Sin(a)})
	}
	o.rast.ClosePath()
}
