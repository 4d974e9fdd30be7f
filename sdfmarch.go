// Package sdfmarch evaluates 2D signed distance fields for a small set of primitive
// shapes placed in a scene and maps viewport coordinates into the centered space
// used by shader-side evaluation of the same fields. Raymarching over a [Scene]
// lives in the march sub-package.
package sdfmarch

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// Fold constants for regular polygons: (cos, sin, tan) of the half angle used by the reflection technique.
	pentKx, pentKy, pentKz = 0.809016994, 0.587785252, 0.726542528
	hexKx, hexKy, hexKz    = -0.866025404, 0.5, 0.577350269
	octKx, octKy, octKz    = -0.9238795325, 0.3826834323, 0.4142135623
)

var (
	// ErrUnsupportedShape is returned when constructing a regular polygon with a side count other than 5, 6 or 8.
	ErrUnsupportedShape = errors.New("unsupported shape")
	// ErrInvalidDimension is returned for non-positive, NaN or infinite shape dimensions.
	ErrInvalidDimension = errors.New("invalid shape dimension")
	// ErrEmptyScene is returned when querying a scene with no placements.
	ErrEmptyScene = errors.New("empty scene")
	// ErrNumeric is returned when a NaN shows up where distances must be ordered.
	ErrNumeric = errors.New("NaN in distance comparison")
	// ErrInvalidViewport is returned for zero-area or non-finite viewport dimensions.
	ErrInvalidViewport = errors.New("invalid viewport")

	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
	errEmptyBuffers         = errors.New("empty buffers")
)

// Builder wraps shape construction and provides error handling strategies
// with panics or error accumulation. The zero value panics on invalid arguments.
type Builder struct {
	NoDimensionPanic bool
	accumErrs        []error
}

// Err returns all errors accumulated during shape construction joined together, or nil.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

func (bld *Builder) shapeError(err error) {
	if err == nil {
		return
	}
	if !bld.NoDimensionPanic {
		panic(err.Error())
	}
	bld.accumErrs = append(bld.accumErrs, err)
}

// NewCircle creates a circle of a radius centered at the origin.
func (bld *Builder) NewCircle(radius float32) Shape {
	s, err := NewCircle(radius)
	bld.shapeError(err)
	return s
}

// NewBox creates an axis aligned box centered at the origin with the given half extents.
func (bld *Builder) NewBox(halfX, halfY float32) Shape {
	s, err := NewBox(halfX, halfY)
	bld.shapeError(err)
	return s
}

// NewRegularPolygon creates a regular polygon centered at the origin. See [NewRegularPolygon].
func (bld *Builder) NewRegularPolygon(radius float32, sides int) Shape {
	s, err := NewRegularPolygon(radius, sides)
	bld.shapeError(err)
	return s
}

func dimensionErr(shape, param string, v float32) error {
	return fmt.Errorf("%w: %s %s=%g", ErrInvalidDimension, shape, param, v)
}

func okDim(v float32) bool {
	return v > 0 && !math32.IsInf(v, 1)
}

// signPos returns -1 for negative values and 1 otherwise, including zero.
func signPos(a float32) float32 {
	if a < 0 {
		return -1
	}
	return 1
}

func isNaNVec(x, y float32) bool {
	return math32.IsNaN(x) || math32.IsNaN(y)
}
