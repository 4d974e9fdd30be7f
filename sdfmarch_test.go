package sdfmarch_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/md2"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfmarch"
)

func TestCircle(t *testing.T) {
	for _, r := range []float32{0.5, 1, 10, 123.25} {
		c, err := sdfmarch.NewCircle(r)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.Evaluate(ms2.Vec{}); got != -r {
			t.Errorf("circle(%g) at center: got %g, want %g", r, got, -r)
		}
		for i := 0; i < 16; i++ {
			s, co := math32.Sincos(float32(i) * 2 * math32.Pi / 16)
			p := ms2.Vec{X: r * co, Y: r * s}
			if got := c.Evaluate(p); math32.Abs(got) > 1e-5*r {
				t.Errorf("circle(%g) boundary %v: got %g, want ~0", r, p, got)
			}
		}
	}
}

func TestBoxSymmetry(t *testing.T) {
	half := ms2.Vec{X: 2, Y: 0.75}
	box, err := sdfmarch.NewBox(half.X, half.Y)
	if err != nil {
		t.Fatal(err)
	}
	bb := ms2.NewBox(-5, -5, 5, 5)
	pos := ms2.AppendGrid(nil, bb, 33, 27)
	for _, p := range pos {
		d := box.Evaluate(p)
		mirrors := []ms2.Vec{{X: -p.X, Y: p.Y}, {X: p.X, Y: -p.Y}, {X: -p.X, Y: -p.Y}}
		for _, m := range mirrors {
			if dm := box.Evaluate(m); dm != d {
				t.Fatalf("box asymmetric at %v -> %v: %g != %g", p, m, d, dm)
			}
		}
	}
	// Edge midpoints and corners are on the boundary.
	onBoundary := []ms2.Vec{{X: half.X}, {Y: -half.Y}, half, {X: -half.X, Y: half.Y}}
	for _, p := range onBoundary {
		if d := box.Evaluate(p); d != 0 {
			t.Errorf("box boundary %v: got %g", p, d)
		}
	}
	if d := box.Evaluate(ms2.Vec{}); d != -half.Y {
		t.Errorf("box center: got %g, want %g", d, -half.Y)
	}
}

func TestBoxParts(t *testing.T) {
	half := ms2.Vec{X: 0.5, Y: 0.5}
	bb := ms2.NewBox(-1.5, -1.5, 1.5, 1.5)
	for _, p := range ms2.AppendGrid(nil, bb, 17, 17) {
		parts := sdfmarch.BoxParts(p, half)
		if parts.Distance != sdfmarch.SDFBox(p, half) {
			t.Fatalf("breakdown distance mismatch at %v", p)
		}
		if parts.Exterior < 0 || parts.Interior > 0 {
			t.Fatalf("bad term signs at %v: %+v", p, parts)
		}
		if parts.Exterior > 0 && parts.Interior != 0 {
			t.Fatalf("both terms active at %v: %+v", p, parts)
		}
	}
}

func TestRegularPolygonBruteForce(t *testing.T) {
	const tol = 1e-4
	for _, sides := range []int{5, 6, 8} {
		for _, r := range []float32{1, 2.5} {
			poly, err := sdfmarch.NewRegularPolygon(r, sides)
			if err != nil {
				t.Fatal(err)
			}
			bb := ms2.NewBox(-2*r, -2*r, 2*r, 2*r)
			pos := ms2.AppendGrid(nil, bb, 64, 64)
			mismatches := 0
			for _, p := range pos {
				got := poly.Evaluate(p)
				want := polygonRef(md2.Vec{X: float64(p.X), Y: float64(p.Y)}, float64(r), sides)
				if diff := math.Abs(float64(got) - want); diff > tol {
					mismatches++
					t.Errorf("sides=%d r=%g at %v: got %g, want %g (diff=%g)", sides, r, p, got, want, diff)
					if mismatches > 8 {
						t.Fatal("too many mismatches")
					}
				}
			}
		}
	}
}

// polygonRef is the signed distance to a regular polygon with a flat top edge computed as the
// minimum distance to every edge segment.
func polygonRef(p md2.Vec, r float64, sides int) float64 {
	n := float64(sides)
	R := r / math.Cos(math.Pi/n)
	vertex := func(k int) md2.Vec {
		angle := math.Pi/2 + math.Pi/n + 2*math.Pi*float64(k)/n
		return md2.Vec{X: R * math.Cos(angle), Y: R * math.Sin(angle)}
	}
	best := math.Inf(1)
	inside := true
	for k := 0; k < sides; k++ {
		a, b := vertex(k), vertex(k+1)
		e := md2.Sub(b, a)
		w := md2.Sub(p, a)
		h := math.Max(0, math.Min(1, md2.Dot(w, e)/md2.Dot(e, e)))
		best = math.Min(best, md2.Norm(md2.Sub(w, md2.Scale(h, e))))
		normalAngle := math.Pi/2 + 2*math.Pi*float64(k+1)/n
		normal := md2.Vec{X: math.Cos(normalAngle), Y: math.Sin(normalAngle)}
		if md2.Dot(p, normal) > r {
			inside = false
		}
	}
	if inside {
		return -best
	}
	return best
}

func TestRegularPolygonCenter(t *testing.T) {
	for _, sides := range []int{5, 6, 8} {
		poly, err := sdfmarch.NewRegularPolygon(3, sides)
		if err != nil {
			t.Fatal(err)
		}
		if d := poly.Evaluate(ms2.Vec{}); math32.Abs(d+3) > 1e-5 {
			t.Errorf("sides=%d center distance %g, want -3", sides, d)
		}
		if d := poly.Evaluate(ms2.Vec{Y: 3}); math32.Abs(d) > 1e-5 {
			t.Errorf("sides=%d top edge distance %g, want 0", sides, d)
		}
	}
}

func TestShapeConstructionErrors(t *testing.T) {
	for _, sides := range []int{-1, 0, 3, 4, 7, 9, 12} {
		_, err := sdfmarch.NewRegularPolygon(1, sides)
		if !errors.Is(err, sdfmarch.ErrUnsupportedShape) {
			t.Errorf("sides=%d: want ErrUnsupportedShape, got %v", sides, err)
		}
	}
	bad := []float32{0, -1, math32.NaN(), math32.Inf(1)}
	for _, v := range bad {
		if _, err := sdfmarch.NewCircle(v); !errors.Is(err, sdfmarch.ErrInvalidDimension) {
			t.Errorf("circle(%g): want ErrInvalidDimension, got %v", v, err)
		}
		if _, err := sdfmarch.NewBox(1, v); !errors.Is(err, sdfmarch.ErrInvalidDimension) {
			t.Errorf("box(1,%g): want ErrInvalidDimension, got %v", v, err)
		}
		if _, err := sdfmarch.NewRegularPolygon(v, 6); !errors.Is(err, sdfmarch.ErrInvalidDimension) {
			t.Errorf("polygon(%g): want ErrInvalidDimension, got %v", v, err)
		}
	}
}

func TestBuilder(t *testing.T) {
	bld := sdfmarch.Builder{NoDimensionPanic: true}
	bld.NewCircle(1)
	bld.NewRegularPolygon(1, 4)
	bld.NewBox(-1, 1)
	err := bld.Err()
	if !errors.Is(err, sdfmarch.ErrUnsupportedShape) || !errors.Is(err, sdfmarch.ErrInvalidDimension) {
		t.Fatalf("expected both accumulated errors, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic from default builder")
		}
	}()
	var panicky sdfmarch.Builder
	panicky.NewRegularPolygon(1, 7)
}

func TestShapeBounds(t *testing.T) {
	shapes := []sdfmarch.Shape{
		mustShape(sdfmarch.NewCircle(2)),
		mustShape(sdfmarch.NewBox(1, 3)),
		mustShape(sdfmarch.NewRegularPolygon(2, 5)),
		mustShape(sdfmarch.NewRegularPolygon(2, 6)),
		mustShape(sdfmarch.NewRegularPolygon(2, 8)),
	}
	for _, s := range shapes {
		bb := s.Bounds()
		// Nothing outside the bounds may be inside the shape.
		outer := ms2.Box{Min: ms2.AddScalar(-1, bb.Min), Max: ms2.AddScalar(1, bb.Max)}
		for _, p := range ms2.AppendGrid(nil, outer, 40, 40) {
			inBB := p.X >= bb.Min.X && p.X <= bb.Max.X && p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
			if !inBB && s.Evaluate(p) < 0 {
				t.Errorf("%s: point %v outside bounds %v is inside shape", s, p, bb)
			}
		}
	}
}

func TestSceneDistance(t *testing.T) {
	var empty sdfmarch.Scene
	if _, err := empty.Distance(ms2.Vec{}); !errors.Is(err, sdfmarch.ErrEmptyScene) {
		t.Fatalf("want ErrEmptyScene, got %v", err)
	}
	scene := sdfmarch.NewScene(
		sdfmarch.Placement{Shape: mustShape(sdfmarch.NewCircle(10)), At: ms2.Vec{X: 40, Y: 40}},
		sdfmarch.Placement{Shape: mustShape(sdfmarch.NewCircle(20)), At: ms2.Vec{X: 200, Y: 50}},
	)
	scene.Add(mustShape(sdfmarch.NewBox(25, 50)), ms2.Vec{X: -200, Y: 200})

	idx, d, err := scene.Nearest(ms2.Vec{X: 40, Y: 40})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 || d != -10 {
		t.Errorf("nearest at first circle center: got idx=%d d=%g", idx, d)
	}
	d, err = scene.Distance(ms2.Vec{X: 200, Y: 80})
	if err != nil {
		t.Fatal(err)
	}
	if math32.Abs(d-10) > 1e-5 {
		t.Errorf("distance above second circle: got %g, want 10", d)
	}
	// Union: distance is the minimum over placements.
	p := ms2.Vec{X: -120, Y: 130}
	want := math32.Inf(1)
	for _, pl := range scene.Placements() {
		want = math32.Min(want, pl.Shape.Evaluate(ms2.Sub(p, pl.At)))
	}
	if got, _ := scene.Distance(p); got != want {
		t.Errorf("union distance got %g, want %g", got, want)
	}

	_, err = scene.Distance(ms2.Vec{X: math32.NaN()})
	if !errors.Is(err, sdfmarch.ErrNumeric) {
		t.Errorf("want ErrNumeric for NaN query, got %v", err)
	}
}

func TestSceneZeroShape(t *testing.T) {
	bld := sdfmarch.Builder{NoDimensionPanic: true}
	scene := sdfmarch.NewScene()
	scene.Add(bld.NewCircle(10), ms2.Vec{})
	scene.Add(bld.NewRegularPolygon(10, 7), ms2.Vec{X: 50})
	if bld.Err() == nil {
		t.Fatal("expected builder error")
	}
	_, err := scene.Distance(ms2.Vec{X: 20})
	if !errors.Is(err, sdfmarch.ErrUnsupportedShape) {
		t.Fatalf("want ErrUnsupportedShape, got %v", err)
	}
	dist := make([]float32, 2)
	err = scene.Evaluate([]ms2.Vec{{}, {X: 1}}, dist, nil)
	if !errors.Is(err, sdfmarch.ErrUnsupportedShape) {
		t.Errorf("batch evaluate: want ErrUnsupportedShape, got %v", err)
	}
	var zero sdfmarch.Placement
	_, err = sdfmarch.NewScene(zero).Distance(ms2.Vec{})
	if !errors.Is(err, sdfmarch.ErrUnsupportedShape) {
		t.Errorf("zero placement: want ErrUnsupportedShape, got %v", err)
	}
}

func TestSceneEvaluate(t *testing.T) {
	scene := sdfmarch.NewScene()
	scene.Add(mustShape(sdfmarch.NewRegularPolygon(30, 5)), ms2.Vec{X: -200, Y: -200})
	scene.Add(mustShape(sdfmarch.NewRegularPolygon(40, 6)), ms2.Vec{X: -100, Y: -200})
	scene.Add(mustShape(sdfmarch.NewRegularPolygon(40, 8)), ms2.Vec{X: 0, Y: -200})
	bb := scene.Bounds()
	pos := ms2.AppendGrid(nil, bb, 20, 20)
	dist := make([]float32, len(pos))
	if err := scene.Evaluate(pos, dist, nil); err != nil {
		t.Fatal(err)
	}
	for i, p := range pos {
		want, _ := scene.Distance(p)
		if dist[i] != want {
			t.Fatalf("batch/single mismatch at %v: %g != %g", p, dist[i], want)
		}
	}
	if err := scene.Evaluate(pos, dist[:1], nil); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestSceneHash(t *testing.T) {
	c := mustShape(sdfmarch.NewCircle(1))
	b := mustShape(sdfmarch.NewBox(1, 2))
	s1 := sdfmarch.NewScene(sdfmarch.Placement{Shape: c}, sdfmarch.Placement{Shape: b, At: ms2.Vec{X: 1}})
	s2 := sdfmarch.NewScene(sdfmarch.Placement{Shape: c}, sdfmarch.Placement{Shape: b, At: ms2.Vec{X: 1}})
	s3 := sdfmarch.NewScene(sdfmarch.Placement{Shape: b, At: ms2.Vec{X: 1}}, sdfmarch.Placement{Shape: c})
	if s1.Hash() != s2.Hash() {
		t.Error("equal scenes hash differently")
	}
	if s1.Hash() == s3.Hash() {
		t.Error("reordered scene hashes equal")
	}
}

func TestCenterUV(t *testing.T) {
	sizes := []ms2.Vec{{X: 100, Y: 100}, {X: 1920, Y: 1080}, {X: 480, Y: 1280}, {X: 1, Y: 3}}
	for _, sz := range sizes {
		c, err := sdfmarch.CenterUV(ms2.Vec{X: 0.5, Y: 0.5}, sz)
		if err != nil {
			t.Fatal(err)
		}
		if math32.Abs(c.X) > 1e-6 || math32.Abs(c.Y) > 1e-6 {
			t.Errorf("size %v: viewport center maps to %v", sz, c)
		}
	}
	// Square viewports are the affine map uv*2-1.
	sq := ms2.Vec{X: 512, Y: 512}
	for _, uv := range ms2.AppendGrid(nil, ms2.NewBox(0, 0, 1, 1), 11, 11) {
		c, _ := sdfmarch.CenterUV(uv, sq)
		want := ms2.AddScalar(-1, ms2.Scale(2, uv))
		if ms2.Norm(ms2.Sub(c, want)) > 1e-6 {
			t.Errorf("square uv %v: got %v, want %v", uv, c, want)
		}
	}
	// Shorter axis spans [-1,1].
	wide := ms2.Vec{X: 200, Y: 100}
	lo, _ := sdfmarch.CenterUV(ms2.Vec{X: 0.5, Y: 0}, wide)
	hi, _ := sdfmarch.CenterUV(ms2.Vec{X: 0.5, Y: 1}, wide)
	if lo.Y != -1 || hi.Y != 1 {
		t.Errorf("short axis range got [%g,%g]", lo.Y, hi.Y)
	}
	left, _ := sdfmarch.CenterUV(ms2.Vec{X: 0, Y: 0.5}, wide)
	if left.X != -2 {
		t.Errorf("long axis left edge got %g, want -2", left.X)
	}

	for _, sz := range []ms2.Vec{{X: 0, Y: 10}, {X: 10}, {X: -1, Y: 1}, {X: math32.NaN(), Y: 1}} {
		if _, err := sdfmarch.CenterUV(ms2.Vec{}, sz); !errors.Is(err, sdfmarch.ErrInvalidViewport) {
			t.Errorf("size %v: want ErrInvalidViewport, got %v", sz, err)
		}
	}
}

func TestUVToPixel(t *testing.T) {
	sz := ms2.Vec{X: 800, Y: 600}
	px, err := sdfmarch.UVToPixel(ms2.Vec{X: 1, Y: 0}, sz)
	if err != nil {
		t.Fatal(err)
	}
	if px != (ms2.Vec{X: 400, Y: 300}) {
		t.Errorf("top right uv maps to %v", px)
	}
	d, _ := sdfmarch.PixelDistance(0.5, sz)
	if d != 150 {
		t.Errorf("pixel distance got %g, want 150", d)
	}
}

func mustShape(s sdfmarch.Shape, err error) sdfmarch.Shape {
	if err != nil {
		panic(err)
	}
	return s
}
