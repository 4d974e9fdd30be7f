package sdfmarch

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

// CenterUV maps a viewport-fraction coordinate uv (each component nominally in [0,1])
// and the viewport size in pixels to a centered space where the shorter viewport
// axis spans [-1,1] and the viewport center maps to the origin regardless of aspect ratio.
// The orientation of uv is kept: if uv grows downward so does the result.
func CenterUV(uv, size ms2.Vec) (ms2.Vec, error) {
	if err := validateViewport(size); err != nil {
		return ms2.Vec{}, err
	}
	minSize := math32.Min(size.X, size.Y)
	maxSize := math32.Max(size.X, size.Y)
	// Offset needed to re-center the longer axis.
	push := (maxSize - minSize) / 2 / minSize * 2

	coord := ms2.Vec{
		X: uv.X*size.X/minSize*2 - 1,
		Y: uv.Y*size.Y/minSize*2 - 1,
	}
	if size.X > size.Y {
		coord.X -= push
	} else if size.Y > size.X {
		coord.Y -= push
	}
	return coord, nil
}

// UVToPixel maps a viewport-fraction coordinate to pixel coordinates relative to the
// viewport center with y growing upward, the frame used by 2D gizmo drawing.
func UVToPixel(uv, size ms2.Vec) (ms2.Vec, error) {
	if err := validateViewport(size); err != nil {
		return ms2.Vec{}, err
	}
	q := ms2.AddScalar(-1, ms2.Scale(2, uv))
	return ms2.Vec{X: q.X * size.X / 2, Y: -q.Y * size.Y / 2}, nil
}

// PixelDistance converts a distance measured in [CenterUV] space to pixels.
func PixelDistance(d float32, size ms2.Vec) (float32, error) {
	if err := validateViewport(size); err != nil {
		return 0, err
	}
	return d * math32.Min(size.X, size.Y) / 2, nil
}

func validateViewport(size ms2.Vec) error {
	if !okDim(size.X) || !okDim(size.Y) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidViewport, size.X, size.Y)
	}
	return nil
}
