package sdfimg

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

// Frame maps a world-space box onto an image rectangle with a uniform scale.
// World y grows upward, image y grows downward.
type Frame struct {
	world ms2.Box
	rect  image.Rectangle
	scale float32 // pixels per world unit.
}

// NewFrame returns a frame showing at least the world box bb inside rect. The box is grown
// around its center along one axis to match the rectangle's aspect ratio.
func NewFrame(bb ms2.Box, rect image.Rectangle) Frame {
	w, h := float32(rect.Dx()), float32(rect.Dy())
	sz := bb.Size()
	if sz.X <= 0 || sz.Y <= 0 || w <= 0 || h <= 0 {
		return Frame{world: bb, rect: rect}
	}
	scale := math32.Min(w/sz.X, h/sz.Y)
	center := bb.Center()
	half := ms2.Vec{X: w / scale / 2, Y: h / scale / 2}
	return Frame{
		world: ms2.Box{Min: ms2.Sub(center, half), Max: ms2.Add(center, half)},
		rect:  rect,
		scale: scale,
	}
}

// Pad returns a copy of bb grown by margin on every side.
func Pad(bb ms2.Box, margin float32) ms2.Box {
	return ms2.Box{Min: ms2.AddScalar(-margin, bb.Min), Max: ms2.AddScalar(margin, bb.Max)}
}

// World returns the world-space box visible in the frame.
func (f Frame) World() ms2.Box { return f.world }

// Rect returns the image rectangle of the frame.
func (f Frame) Rect() image.Rectangle { return f.rect }

// Scale returns the number of pixels per world unit.
func (f Frame) Scale() float32 { return f.scale }

// ToPixel maps a world point to continuous image coordinates.
func (f Frame) ToPixel(p ms2.Vec) ms2.Vec {
	return ms2.Vec{
		X: (p.X-f.world.Min.X)*f.scale + float32(f.rect.Min.X),
		Y: (f.world.Max.Y-p.Y)*f.scale + float32(f.rect.Min.Y),
	}
}

// ToWorld maps continuous image coordinates to a world point. Use x+0.5, y+0.5 for pixel centers.
func (f Frame) ToWorld(x, y float32) ms2.Vec {
	return ms2.Vec{
		X: (x-float32(f.rect.Min.X))/f.scale + f.world.Min.X,
		Y: f.world.Max.Y - (y-float32(f.rect.Min.Y))/f.scale,
	}
}
