package sdfimg

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unicode"

	"github.com/golang/freetype/truetype"
	"github.com/soypat/glgl/math/ms2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Labeler draws single lines of text onto images. Glyph outlines are flattened
// into polygons and filled with an antialiasing rasterizer.
// A Labeler caches flattened glyphs and must not be used concurrently.
type Labeler struct {
	ttf    *truetype.Font
	gb     truetype.GlyphBuf
	size   float32 // Em size in pixels.
	reltol float32
	glyphs map[rune]glyphOutline
	rast   vector.Rasterizer
}

// glyphOutline holds the flattened contours of a glyph in pixels relative to
// the pen position, y pointing down.
type glyphOutline struct {
	contours [][]ms2.Vec
}

// NewLabeler returns a labeler using the Go Regular font at sizePx pixels per em.
func NewLabeler(sizePx float32) (*Labeler, error) {
	return NewLabelerTTF(goregular.TTF, sizePx)
}

// NewLabelerTTF returns a labeler using the TrueType font blob ttf at sizePx pixels per em.
func NewLabelerTTF(ttf []byte, sizePx float32) (*Labeler, error) {
	if !(sizePx >= 1) {
		return nil, fmt.Errorf("invalid label size %g", sizePx)
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return &Labeler{
		ttf:    f,
		size:   sizePx,
		reltol: 0.15,
		glyphs: make(map[rune]glyphOutline),
	}, nil
}

// Size returns the em size in pixels.
func (l *Labeler) Size() float32 { return l.size }

// Measure returns the advance width of s in pixels, taking kerning into account.
func (l *Labeler) Measure(s string) float32 {
	scale := l.scale()
	var (
		adv     fixed.Int26_6
		idxPrev truetype.Index
		first   = true
	)
	for _, c := range s {
		idx := l.ttf.Index(c)
		if !first {
			adv += l.ttf.Kern(scale, idxPrev, idx)
		}
		adv += l.advance(c, idx)
		idxPrev, first = idx, false
	}
	return fix2f(adv)
}

// Draw draws s with its baseline starting at the image point (x, y).
func (l *Labeler) Draw(dst draw.Image, x, y float32, s string, col color.Color) error {
	if s == "" {
		return errors.New("empty label")
	}
	bounds := dst.Bounds()
	l.rast.Reset(bounds.Dx(), bounds.Dy())
	l.rast.DrawOp = draw.Over
	ox, oy := x-float32(bounds.Min.X), y-float32(bounds.Min.Y)

	scale := l.scale()
	var (
		pen     fixed.Int26_6
		idxPrev truetype.Index
		first   = true
	)
	for _, c := range s {
		if !unicode.IsGraphic(c) {
			return fmt.Errorf("char %q not graphic", c)
		}
		idx := l.ttf.Index(c)
		if !first {
			pen += l.ttf.Kern(scale, idxPrev, idx)
		}
		idxPrev, first = idx, false
		if !unicode.IsSpace(c) {
			g, err := l.glyph(c, idx)
			if err != nil {
				return fmt.Errorf("char %q: %w", c, err)
			}
			px := ox + fix2f(pen)
			for _, contour := range g.contours {
				l.rast.MoveTo(px+contour[0].X, oy+contour[0].Y)
				for _, v := range contour[1:] {
					l.rast.LineTo(px+v.X, oy+v.Y)
				}
				l.rast.ClosePath()
			}
		}
		pen += l.advance(c, idx)
	}
	l.rast.Draw(dst, bounds, image.NewUniform(col), image.Point{})
	return nil
}

func (l *Labeler) advance(c rune, idx truetype.Index) fixed.Int26_6 {
	adv := l.ttf.HMetric(l.scale(), idx).AdvanceWidth
	if c == '\t' {
		adv *= 4
	}
	return adv
}

func (l *Labeler) scale() fixed.Int26_6 {
	return fixed.Int26_6(l.size * 64)
}

func (l *Labeler) glyph(c rune, idx truetype.Index) (glyphOutline, error) {
	if g, ok := l.glyphs[c]; ok {
		return g, nil
	}
	g := &l.gb
	err := g.Load(l.ttf, l.scale(), idx, font.HintingNone)
	if err != nil {
		return glyphOutline{}, err
	}
	// Tolerance in pixels, relative to em size.
	tol := l.reltol * l.size / 16
	var out glyphOutline
	start := 0
	for _, end := range g.Ends {
		if end-start >= 2 {
			out.contours = append(out.contours, flattenContour(g.Points[start:end], tol))
		}
		start = end
	}
	l.glyphs[c] = out
	return out, nil
}

// flattenContour converts a closed quadratic TrueType contour into a polygon.
// Off-curve control points between two off-curve points imply an on-curve midpoint.
func flattenContour(points []truetype.Point, tol float32) []ms2.Vec {
	sampler := ms2.Spline3Sampler{Spline: quadBezier, Tolerance: tol}
	n := len(points)
	var poly []ms2.Vec
	i := 0
	for i < n {
		p0, p1, p2 := points[i], points[(i+1)%n], points[(i+2)%n]
		v0, v1, v2 := p2v(p0), p2v(p1), p2v(p2)
		implicit0 := ms2.Scale(0.5, ms2.Add(v0, v1))
		implicit1 := ms2.Scale(0.5, ms2.Add(v1, v2))
		switch onBits3(p0, p1, p2) {
		case 0b010, 0b110, 0b011, 0b111:
			// Straight line to the next point.
			poly = append(poly, v0)
			i++
			continue
		case 0b000:
			sampler.SetSplinePoints(implicit0, v1, implicit1, ms2.Vec{})
			v0 = implicit0
			i++
		case 0b001:
			sampler.SetSplinePoints(v0, v1, implicit1, ms2.Vec{})
			i++
		case 0b100:
			sampler.SetSplinePoints(implicit0, v1, v2, ms2.Vec{})
			v0 = implicit0
			i += 2
		case 0b101:
			sampler.SetSplinePoints(v0, v1, v2, ms2.Vec{})
			i += 2
		}
		poly = append(poly, v0)
		poly = sampler.SampleBisect(poly, 4)
	}
	return poly
}

// p2v converts a glyph point in 26.6 pixels (y up) to image pixels (y down).
func p2v(p truetype.Point) ms2.Vec {
	return ms2.Vec{X: fix2f(p.X), Y: -fix2f(p.Y)}
}

func fix2f(f fixed.Int26_6) float32 { return float32(f) / 64 }

var quadBezier = ms2.NewSpline3([]float32{
	1, 0, 0, 0,
	-2, 2, 0, 0,
	1, -2, 1, 0,
	0, 0, 0, 0,
})

func onBits3(p0, p1, p2 truetype.Point) uint32 {
	return p0.Flags&1 | (p1.Flags&1)<<1 | (p2.Flags&1)<<2
}
