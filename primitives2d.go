package sdfmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms2"
)

// The functions below take a point in the shape's local frame (shape centered at origin)
// and return the signed distance to the shape boundary: negative inside, positive outside.
// Formulas follow https://iquilezles.org/articles/distfunctions2d/ so results match
// a shader-side evaluation.

// SDFCircle is the signed distance to a circle of radius r.
func SDFCircle(p ms2.Vec, r float32) float32 {
	return ms2.Norm(p) - r
}

// SDFBox is the exact signed distance to an axis aligned box with the given half extents.
func SDFBox(p, half ms2.Vec) float32 {
	d := ms2.Sub(ms2.AbsElem(p), half)
	return ms2.Norm(ms2.MaxElem(d, ms2.Vec{})) + math32.Min(math32.Max(d.X, d.Y), 0)
}

// SDFPentagon is the signed distance to a regular pentagon of inradius r with a flat top edge.
func SDFPentagon(p ms2.Vec, r float32) float32 {
	v1 := ms2.Vec{X: -pentKx, Y: pentKy}
	v2 := ms2.Vec{X: pentKx, Y: pentKy}
	p.X = math32.Abs(p.X)
	p = ms2.Sub(p, ms2.Scale(2*math32.Min(ms2.Dot(v1, p), 0), v1))
	p = ms2.Sub(p, ms2.Scale(2*math32.Min(ms2.Dot(v2, p), 0), v2))
	return edgeDist(p, r, pentKz)
}

// SDFHexagon is the signed distance to a regular hexagon of inradius r with a flat top edge.
func SDFHexagon(p ms2.Vec, r float32) float32 {
	k := ms2.Vec{X: hexKx, Y: hexKy}
	p = ms2.AbsElem(p)
	p = ms2.Sub(p, ms2.Scale(2*math32.Min(ms2.Dot(k, p), 0), k))
	return edgeDist(p, r, hexKz)
}

// SDFOctagon is the signed distance to a regular octagon of inradius r with a flat top edge.
func SDFOctagon(p ms2.Vec, r float32) float32 {
	v1 := ms2.Vec{X: octKx, Y: octKy}
	v2 := ms2.Vec{X: -octKx, Y: octKy}
	p = ms2.AbsElem(p)
	p = ms2.Sub(p, ms2.Scale(2*math32.Min(ms2.Dot(v1, p), 0), v1))
	p = ms2.Sub(p, ms2.Scale(2*math32.Min(ms2.Dot(v2, p), 0), v2))
	return edgeDist(p, r, octKz)
}

// edgeDist is the distance from a folded point to the top edge segment y=r, |x|<=kz*r.
func edgeDist(p ms2.Vec, r, kz float32) float32 {
	kzr := kz * r
	p = ms2.Sub(p, ms2.Vec{X: ms1.Clamp(p.X, -kzr, kzr), Y: r})
	return ms2.Norm(p) * signPos(p.Y)
}

// BoxBreakdown holds the intermediate terms of [SDFBox].
type BoxBreakdown struct {
	// DistanceVector is abs(p)-half.
	DistanceVector ms2.Vec
	// Exterior is length(max(DistanceVector, 0)), zero when p is inside on both axes.
	Exterior float32
	// Interior is min(max(d.x, d.y), 0), zero when p is outside on any axis.
	Interior float32
	// Distance is Exterior+Interior.
	Distance float32
}

// BoxParts evaluates the box SDF and returns every term that makes it up.
func BoxParts(p, half ms2.Vec) BoxBreakdown {
	d := ms2.Sub(ms2.AbsElem(p), half)
	ext := ms2.Norm(ms2.MaxElem(d, ms2.Vec{}))
	in := math32.Min(math32.Max(d.X, d.Y), 0)
	return BoxBreakdown{
		DistanceVector: d,
		Exterior:       ext,
		Interior:       in,
		Distance:       ext + in,
	}
}
