package sdfmarch

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

// Placement is a shape positioned at a world-space translation. Shapes
// are evaluated axis aligned; rotation and scale are not modelled.
type Placement struct {
	Shape Shape
	At    ms2.Vec
}

// Scene is an ordered collection of placed shapes evaluated as their union:
// the distance at a point is the distance to the nearest placed shape.
// A Scene is not safe for concurrent mutation but may be queried concurrently.
type Scene struct {
	placements []Placement
}

// NewScene returns a scene holding a copy of placements.
func NewScene(placements ...Placement) *Scene {
	return &Scene{placements: append([]Placement(nil), placements...)}
}

// Add places shape at the translation at.
func (sc *Scene) Add(shape Shape, at ms2.Vec) {
	sc.placements = append(sc.placements, Placement{Shape: shape, At: at})
}

// Len returns the number of placements in the scene.
func (sc *Scene) Len() int { return len(sc.placements) }

// Placements returns a copy of the scene's placements in order.
func (sc *Scene) Placements() []Placement {
	return append([]Placement(nil), sc.placements...)
}

// Distance returns the signed distance from a world point to the nearest shape in the scene.
func (sc *Scene) Distance(p ms2.Vec) (float32, error) {
	_, d, err := sc.Nearest(p)
	return d, err
}

// Nearest returns the index of the placement nearest to p and its signed distance.
// Ties resolve to the first placement in order. A placement holding the zero Shape,
// such as one returned by a non-panicking [Builder] on invalid arguments, is
// reported as an error wrapping [ErrUnsupportedShape].
func (sc *Scene) Nearest(p ms2.Vec) (idx int, dist float32, err error) {
	if len(sc.placements) == 0 {
		return -1, 0, ErrEmptyScene
	}
	if isNaNVec(p.X, p.Y) {
		return -1, 0, fmt.Errorf("%w: query point (%g,%g)", ErrNumeric, p.X, p.Y)
	}
	for i, pl := range sc.placements {
		if !pl.Shape.valid() {
			return -1, 0, fmt.Errorf("%w: placement %d holds %s", ErrUnsupportedShape, i, pl.Shape.String())
		}
		d := pl.Shape.Evaluate(ms2.Sub(p, pl.At))
		if math32.IsNaN(d) {
			return -1, 0, fmt.Errorf("%w: placement %d %s", ErrNumeric, i, pl.Shape.String())
		}
		if i == 0 || d < dist {
			idx, dist = i, d
		}
	}
	return idx, dist, nil
}

// Evaluate computes distances for every position in pos and stores them in dist.
// It implements the batch evaluation interface used by the eval and sdfimg packages.
func (sc *Scene) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	for i, p := range pos {
		d, err := sc.Distance(p)
		if err != nil {
			return err
		}
		dist[i] = d
	}
	return nil
}

// Bounds returns the world-space bounding box containing all placed shapes.
// An empty scene has a zero box.
func (sc *Scene) Bounds() ms2.Box {
	if len(sc.placements) == 0 {
		return ms2.Box{}
	}
	var bb ms2.Box
	for i, pl := range sc.placements {
		sb := pl.Shape.Bounds()
		sb.Min = ms2.Add(sb.Min, pl.At)
		sb.Max = ms2.Add(sb.Max, pl.At)
		if i == 0 {
			bb = sb
			continue
		}
		bb.Min = ms2.MinElem(bb.Min, sb.Min)
		bb.Max = ms2.MaxElem(bb.Max, sb.Max)
	}
	return bb
}

// Hash returns an order sensitive fingerprint of the scene contents.
// Two scenes with the same placements in the same order hash equal.
func (sc *Scene) Hash() uint64 {
	h := xxhash.New()
	var buf [4]byte
	putf := func(f float32) {
		binary.LittleEndian.PutUint32(buf[:], math32.Float32bits(f))
		h.Write(buf[:])
	}
	for _, pl := range sc.placements {
		s := pl.Shape
		h.Write([]byte{byte(s.kind), s.sides})
		putf(s.r)
		putf(s.half.X)
		putf(s.half.Y)
		putf(pl.At.X)
		putf(pl.At.Y)
	}
	return h.Sum64()
}
