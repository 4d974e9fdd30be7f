package sdfimg

import (
	"image/color"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
)

var nanColor = color.RGBA{R: 255, A: 255}

// ColorConversionInigoQuilez colors distances in [Inigo Quilez]'s style: orange outside, blue inside,
// banded by distance with a white isoline at d=0. characteristicDistance sets the band scale; the scene
// bounds diagonal divided by 3 is a good start. NaN distances are red.
//
// [Inigo Quilez]: https://iquilezles.org/articles/distfunctions2d/
func ColorConversionInigoQuilez(characteristicDistance float32) func(float32) color.Color {
	inv := 1 / characteristicDistance
	outside := ms3.Vec{X: 0.9, Y: 0.6, Z: 0.3}
	inside := ms3.Vec{X: 0.65, Y: 0.85, Z: 1.0}
	one := ms3.Vec{X: 1, Y: 1, Z: 1}
	return func(d float32) color.Color {
		if math.IsNaN(d) {
			return nanColor
		}
		d *= inv
		c := inside
		if d > 0 {
			c = outside
		}
		c = ms3.Scale(1-math.Exp(-6*math.Abs(d)), c)
		c = ms3.Scale(0.8+0.2*math.Cos(150*d), c)
		edge := 1 - ms1.SmoothStep(0, 0.01, math.Abs(d))
		c = ms3.InterpElem(c, one, ms3.Vec{X: edge, Y: edge, Z: edge})
		return vecToRGBA(c)
	}
}

// ColorConversionBlackWhite colors the interior black and the exterior white with a
// linear blend of width edgeSmooth centered on the boundary. edgeSmooth=0 disables blending.
func ColorConversionBlackWhite(edgeSmooth float32) func(float32) color.Color {
	return func(d float32) color.Color {
		switch {
		case math.IsNaN(d):
			return nanColor
		case edgeSmooth <= 0:
			if d < 0 {
				return color.Black
			}
			return color.White
		}
		blend := ms1.Clamp(d/edgeSmooth+0.5, 0, 1)
		return color.Gray{Y: uint8(blend * 255)}
	}
}

// ColorConversionBorder draws the boundary band |d|<halfWidth with border and
// fills the interior and exterior with the respective colors.
func ColorConversionBorder(halfWidth float32, interior, exterior, border color.Color) func(float32) color.Color {
	return func(d float32) color.Color {
		switch {
		case math.IsNaN(d):
			return nanColor
		case math.Abs(d) < halfWidth:
			return border
		case d < 0:
			return interior
		}
		return exterior
	}
}

// ColorConversionGradient shows distance as brightness: black on the boundary growing to
// white at maxDist. Interior distances are tinted blue.
func ColorConversionGradient(maxDist float32) func(float32) color.Color {
	inv := 1 / maxDist
	return func(d float32) color.Color {
		if math.IsNaN(d) {
			return nanColor
		}
		v := ms1.Clamp(math.Abs(d)*inv, 0, 1)
		if d < 0 {
			return vecToRGBA(ms3.Vec{X: 0.2 * v, Y: 0.4 * v, Z: v})
		}
		return vecToRGBA(ms3.Vec{X: v, Y: v, Z: v})
	}
}

func vecToRGBA(c ms3.Vec) color.RGBA {
	return color.RGBA{
		R: uint8(ms1.Clamp(c.X, 0, 1) * 255),
		G: uint8(ms1.Clamp(c.Y, 0, 1) * 255),
		B: uint8(ms1.Clamp(c.Z, 0, 1) * 255),
		A: 255,
	}
}
