// Package sdfimg renders 2D signed distance fields and raymarch traces to images
// for offline inspection.
package sdfimg

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfmarch"
	"github.com/soypat/sdfmarch/eval"
)

// SetImage is an image that can be drawn to pixel by pixel, such as [*image.RGBA].
type SetImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// Renderer converts 2D SDFs to images. It evaluates the field one image row at a time
// and reuses its buffers between calls, so a Renderer must not be used concurrently.
type Renderer struct {
	conv func(f float32) color.Color
	pos  []ms2.Vec
	dist []float32
}

// NewRenderer instances a new [Renderer]. A nil float->color conversion function
// results in a simple black-white color scheme where black is the interior of the SDF (negative distance).
// evalBufferSize must be at least the width of the images rendered.
func NewRenderer(evalBufferSize int, conversion func(float32) color.Color) (*Renderer, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = func(f float32) color.Color {
			switch {
			case math32.IsNaN(f) || math32.IsInf(f, 0):
				return nanColor
			case f > 0:
				return color.White
			default:
				return color.Black
			}
		}
	}
	return &Renderer{
		conv: conversion,
		pos:  make([]ms2.Vec, evalBufferSize),
		dist: make([]float32, evalBufferSize),
	}, nil
}

// Render draws sdf over its bounds onto img with world y pointing up. The bounds are grown
// along one axis if needed to preserve the aspect ratio.
func (r *Renderer) Render(sdf eval.SDF2, img SetImage, userData any) error {
	return r.RenderFrame(sdf, img, NewFrame(sdf.Bounds(), img.Bounds()), userData)
}

// RenderFrame draws the part of sdf visible in frame onto img.
func (r *Renderer) RenderFrame(sdf eval.SDF2, img SetImage, frame Frame, userData any) error {
	if frame.Scale() <= 0 {
		return errors.New("degenerate render frame")
	}
	return r.render(sdf, img, userData, func(x, y int) ms2.Vec {
		return frame.ToWorld(float32(x)+0.5, float32(y)+0.5)
	})
}

// RenderCentered draws sdf in the centered viewport space given by [sdfmarch.CenterUV]: every pixel
// is evaluated at the centered coordinate of its center. The shorter image axis spans [-1,1]
// and image y grows downward, matching fragment-shader viewport conventions.
func (r *Renderer) RenderCentered(sdf eval.SDF2, img SetImage, userData any) error {
	bb := img.Bounds()
	size := ms2.Vec{X: float32(bb.Dx()), Y: float32(bb.Dy())}
	var uvErr error
	err := r.render(sdf, img, userData, func(x, y int) ms2.Vec {
		uv := ms2.Vec{
			X: (float32(x-bb.Min.X) + 0.5) / size.X,
			Y: (float32(y-bb.Min.Y) + 0.5) / size.Y,
		}
		p, err := sdfmarch.CenterUV(uv, size)
		if err != nil && uvErr == nil {
			uvErr = err
		}
		return p
	})
	if uvErr != nil {
		return uvErr
	}
	return err
}

func (r *Renderer) render(sdf eval.SDF2, img SetImage, userData any, pixelPos func(x, y int) ms2.Vec) error {
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	if dxi <= 0 || imgBB.Dy() <= 0 {
		return fmt.Errorf("empty image %v", imgBB)
	} else if len(r.dist) < dxi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(r.dist), dxi)
	}
	for y := imgBB.Min.Y; y < imgBB.Max.Y; y++ {
		if err := r.renderRow(sdf, y, imgBB, img, userData, pixelPos); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderRow(sdf eval.SDF2, y int, imgBB image.Rectangle, img SetImage, userData any, pixelPos func(x, y int) ms2.Vec) error {
	dxi := imgBB.Dx()
	for i := 0; i < dxi; i++ {
		r.pos[i] = pixelPos(i+imgBB.Min.X, y)
	}
	err := sdf.Evaluate(r.pos[:dxi], r.dist[:dxi], userData)
	if err != nil {
		return err
	}
	conv := r.conv
	for i := 0; i < dxi; i++ {
		img.Set(i+imgBB.Min.X, y, conv(r.dist[i]))
	}
	return nil
}
