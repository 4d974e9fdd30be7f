package sdfmarch

import (
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

// Kind identifies the variant held by a [Shape].
type Kind uint8

const (
	kindUndefined Kind = iota
	KindCircle
	KindBox
	KindRegularPolygon
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindBox:
		return "box"
	case KindRegularPolygon:
		return "polygon"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Shape is a primitive 2D shape centered at its local origin. It is a small value type
// and is only valid when created by [NewCircle], [NewBox] or [NewRegularPolygon].
type Shape struct {
	kind Kind
	// circle and polygon radius.
	r     float32
	half  ms2.Vec
	sides uint8
}

// NewCircle creates a circle of a radius centered at the origin.
func NewCircle(radius float32) (Shape, error) {
	if !okDim(radius) {
		return Shape{}, dimensionErr("circle", "radius", radius)
	}
	return Shape{kind: KindCircle, r: radius}, nil
}

// NewBox creates an axis aligned box centered at the origin. halfX and halfY are
// half the box width and height respectively.
func NewBox(halfX, halfY float32) (Shape, error) {
	if !okDim(halfX) {
		return Shape{}, dimensionErr("box", "halfX", halfX)
	} else if !okDim(halfY) {
		return Shape{}, dimensionErr("box", "halfY", halfY)
	}
	return Shape{kind: KindBox, half: ms2.Vec{X: halfX, Y: halfY}}, nil
}

// NewRegularPolygon creates a regular polygon with a flat top edge centered at the origin.
// radius is the inradius: distance from the center to the middle of every edge.
// Only pentagons, hexagons and octagons are supported. A 4 sided polygon is
// rejected; use [NewBox] with equal half extents for squares.
func NewRegularPolygon(radius float32, sides int) (Shape, error) {
	switch sides {
	case 5, 6, 8:
	default:
		return Shape{}, fmt.Errorf("%w: regular polygon with %d sides", ErrUnsupportedShape, sides)
	}
	if !okDim(radius) {
		return Shape{}, dimensionErr("polygon", "radius", radius)
	}
	return Shape{kind: KindRegularPolygon, r: radius, sides: uint8(sides)}, nil
}

// Kind returns the shape variant. The zero Shape has an undefined kind.
func (s Shape) Kind() Kind { return s.kind }

// Radius returns the circle radius or polygon inradius. It is zero for boxes.
func (s Shape) Radius() float32 { return s.r }

// HalfExtents returns the box half extents. It is zero for non-box shapes.
func (s Shape) HalfExtents() ms2.Vec { return s.half }

// Sides returns the number of sides of a regular polygon. It is zero for other shapes.
func (s Shape) Sides() int { return int(s.sides) }

func (s Shape) valid() bool {
	switch s.kind {
	case KindCircle, KindBox:
		return true
	case KindRegularPolygon:
		return s.sides == 5 || s.sides == 6 || s.sides == 8
	}
	return false
}

// Evaluate returns the signed distance from p, expressed in the shape's local frame, to the shape's boundary.
// Evaluate panics on the zero Shape; [Scene] queries report it as an error instead.
func (s Shape) Evaluate(p ms2.Vec) float32 {
	switch s.kind {
	case KindCircle:
		return SDFCircle(p, s.r)
	case KindBox:
		return SDFBox(p, s.half)
	case KindRegularPolygon:
		switch s.sides {
		case 5:
			return SDFPentagon(p, s.r)
		case 6:
			return SDFHexagon(p, s.r)
		case 8:
			return SDFOctagon(p, s.r)
		}
	}
	panic("evaluate on invalid shape " + s.String())
}

// Evaluate returns the signed distance from a local point to shape. See [Shape.Evaluate].
func Evaluate(shape Shape, localPoint ms2.Vec) float32 {
	return shape.Evaluate(localPoint)
}

// Bounds returns a box centered at the origin containing the whole shape.
func (s Shape) Bounds() ms2.Box {
	switch s.kind {
	case KindBox:
		return ms2.Box{Min: ms2.Scale(-1, s.half), Max: s.half}
	case KindRegularPolygon:
		// Circumradius.
		R := s.r / math32.Cos(math32.Pi/float32(s.sides))
		return ms2.NewBox(-R, -R, R, R)
	}
	r := s.r
	return ms2.NewBox(-r, -r, r, r)
}

func (s Shape) String() string {
	switch s.kind {
	case KindCircle:
		return "circle(r=" + fmtf(s.r) + ")"
	case KindBox:
		return "box(half=" + fmtf(s.half.X) + "," + fmtf(s.half.Y) + ")"
	case KindRegularPolygon:
		return "polygon(r=" + fmtf(s.r) + ",sides=" + strconv.Itoa(int(s.sides)) + ")"
	}
	return s.kind.String()
}

func fmtf(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', 6, 32)
}
