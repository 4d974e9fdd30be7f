// Package sdfaux provides quick-start helpers to render scenes and log
// raymarching runs. Applications with specific needs should implement their own.
package sdfaux

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	math "github.com/chewxy/math32"
	"github.com/google/uuid"
	"github.com/soypat/sdfmarch"
	"github.com/soypat/sdfmarch/eval"
	"github.com/soypat/sdfmarch/march"
	"github.com/soypat/sdfmarch/sdfimg"
	"go.uber.org/zap"
)

// NewLogger returns a production JSON logger writing to stderr, or a no-op logger if silent is set.
func NewLogger(silent bool) (*zap.Logger, error) {
	if silent {
		return zap.NewNop(), nil
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}

// RunLogger tags log with a fresh run id and the fingerprint of scene.
func RunLogger(log *zap.Logger, scene *sdfmarch.Scene) *zap.Logger {
	return log.With(
		zap.String("run", uuid.NewString()),
		zap.String("scene", fmt.Sprintf("%016x", scene.Hash())),
		zap.Int("shapes", scene.Len()),
	)
}

// MarchFields returns structured fields summarizing a march result.
func MarchFields(res march.Result) []zap.Field {
	fields := []zap.Field{
		zap.Stringer("status", res.Status),
		zap.Int("steps", len(res.Steps)),
		zap.Float32("traveled", res.Traveled),
	}
	if len(res.Steps) > 0 {
		last := res.Last()
		fields = append(fields,
			zap.Float32("x", last.Position.X),
			zap.Float32("y", last.Position.Y),
			zap.Float32("dist", last.Distance),
		)
	}
	return fields
}

// RenderPNGFile renders a 2D SDF as an image and saves result to a PNG file with said filename.
// The image width is sized automatically from the image height argument to preserve SDF aspect ratio.
// If a nil color conversion function is passed then one is automatically chosen.
func RenderPNGFile(filename string, sdf eval.SDF2, picHeight int, colorConversion func(float32) color.Color) error {
	bb := sdf.Bounds()
	sz := bb.Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return errors.New("SDF bounds have no area")
	} else if picHeight <= 0 {
		return fmt.Errorf("invalid picture height %d", picHeight)
	}
	if colorConversion == nil {
		colorConversion = sdfimg.ColorConversionInigoQuilez(bb.Diagonal() / 3)
	}
	pixPerUnit := float64(picHeight) / float64(sz.Y)
	picWidth := max(1, int(pixPerUnit*float64(sz.X)))
	img := image.NewRGBA(image.Rect(0, 0, picWidth, picHeight))
	renderer, err := sdfimg.NewRenderer(max(4096, picWidth), colorConversion)
	if err != nil {
		return err
	}
	err = renderer.Render(sdf, img, nil)
	if err != nil {
		return err
	}
	return WritePNG(filename, img)
}

// WritePNG encodes img as PNG into a new file with said filename.
func WritePNG(filename string, img image.Image) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = png.Encode(fp, img)
	if err != nil {
		return err
	}
	return fp.Sync()
}

// Stopwatch returns a function reporting the time elapsed since Stopwatch was called.
func Stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

// Percent returns num/denom as a percentage truncated to two decimals. It returns 0 when denom is 0.
func Percent(num, denom uint64) float32 {
	if denom == 0 {
		return 0
	}
	return math.Trunc(10000*float32(num)/float32(denom)) / 100
}
