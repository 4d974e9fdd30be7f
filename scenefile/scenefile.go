// Package scenefile loads scenes and marching parameters from YAML documents.
package scenefile

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfmarch"
	"github.com/soypat/sdfmarch/march"
	"gopkg.in/yaml.v3"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

//go:embed presets/*.yaml
var presetFS embed.FS

// File is the document layout of a scene file.
type File struct {
	Shapes []ShapeEntry `yaml:"shapes"`
	March  MarchEntry   `yaml:"march"`
	// RayFan and SingleRay are optional. A file may describe a fan of rays
	// around a viewer, a single ray, both or neither.
	RayFan    *FanEntry  `yaml:"fan,omitempty"`
	SingleRay *RayEntry  `yaml:"ray,omitempty"`
	Image     ImageEntry `yaml:"image"`
}

// ShapeEntry describes a placed shape. Kind is one of circle, box or polygon.
// Boxes take either HalfExtents or full Size, not both.
type ShapeEntry struct {
	Kind        string  `yaml:"kind"`
	Radius      float32 `yaml:"radius,omitempty"`
	HalfExtents *Vec    `yaml:"half_extents,omitempty"`
	Size        *Vec    `yaml:"size,omitempty"`
	Sides       int     `yaml:"sides,omitempty"`
	At          Vec     `yaml:"at"`
}

type MarchEntry struct {
	MaxSteps   int     `yaml:"max_steps"`
	HitEpsilon float32 `yaml:"hit_epsilon"`
	MaxTravel  float32 `yaml:"max_travel"`
}

type FanEntry struct {
	Rays        int     `yaml:"rays"`
	StartRadius float32 `yaml:"start_radius"`
	Viewer      Vec     `yaml:"viewer"`
}

// RayEntry describes a single ray leaving Origin at Angle radians, with its first
// sample StartRadius away from Origin.
type RayEntry struct {
	Origin      Vec     `yaml:"origin"`
	Angle       float32 `yaml:"angle"`
	StartRadius float32 `yaml:"start_radius,omitempty"`
}

type ImageEntry struct {
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// Vec is a 2D vector written in YAML as a two element sequence: [x, y].
type Vec ms2.Vec

// UnmarshalYAML implements [yaml.Unmarshaler].
func (v *Vec) UnmarshalYAML(node *yaml.Node) error {
	var xy []float32
	if err := node.Decode(&xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: want [x, y] vector, got %d elements", node.Line, len(xy))
	}
	*v = Vec{X: xy[0], Y: xy[1]}
	return nil
}

// Load decodes a scene file from r. Unknown fields are rejected.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scene file")
		}
		return nil, err
	}
	return &f, nil
}

// LoadFile decodes the scene file at filename.
func LoadFile(filename string) (*File, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	f, err := Load(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f, nil
}

// Preset returns a built-in scene file by name. See [PresetNames].
func Preset(name string) (*File, error) {
	b, err := presetFS.ReadFile(path.Join("presets", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q, available: %s", name, strings.Join(PresetNames(), ", "))
	}
	f, err := Load(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return f, nil
}

// PresetNames returns the names of the built-in scene files in lexical order.
func PresetNames() []string {
	entries, _ := presetFS.ReadDir("presets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names
}

// Scene builds the scene described by the file's shapes. Every invalid shape
// entry is reported in the returned error.
func (f *File) Scene() (*sdfmarch.Scene, error) {
	if len(f.Shapes) == 0 {
		return nil, sdfmarch.ErrEmptyScene
	}
	bld := sdfmarch.Builder{NoDimensionPanic: true}
	var errs []error
	scene := sdfmarch.NewScene()
	for i, e := range f.Shapes {
		var s sdfmarch.Shape
		switch e.Kind {
		case "circle":
			s = bld.NewCircle(e.Radius)
		case "box":
			var half ms2.Vec
			switch {
			case e.HalfExtents != nil && e.Size != nil:
				errs = append(errs, fmt.Errorf("shape %d: box takes half_extents or size, not both", i))
				continue
			case e.HalfExtents != nil:
				half = ms2.Vec(*e.HalfExtents)
			case e.Size != nil:
				half = ms2.Scale(0.5, ms2.Vec(*e.Size))
			default:
				errs = append(errs, fmt.Errorf("shape %d: box missing half_extents or size", i))
				continue
			}
			s = bld.NewBox(half.X, half.Y)
		case "polygon":
			s = bld.NewRegularPolygon(e.Radius, e.Sides)
		default:
			errs = append(errs, fmt.Errorf("shape %d: %w: kind %q", i, sdfmarch.ErrUnsupportedShape, e.Kind))
			continue
		}
		scene.Add(s, ms2.Vec(e.At))
	}
	if err := bld.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("scene: %w", errors.Join(errs...))
	}
	return scene, nil
}

// MarchConfig returns the validated marching parameters.
func (f *File) MarchConfig() (march.Config, error) {
	cfg := march.Config{
		MaxSteps:   f.March.MaxSteps,
		HitEpsilon: f.March.HitEpsilon,
		MaxTravel:  f.March.MaxTravel,
	}
	if err := cfg.Validate(); err != nil {
		return march.Config{}, err
	}
	return cfg, nil
}

// Fan returns the ray fan and whether the file describes one.
func (f *File) Fan() (march.Fan, bool) {
	if f.RayFan == nil {
		return march.Fan{}, false
	}
	return march.Fan{NumRays: f.RayFan.Rays, StartRadius: f.RayFan.StartRadius}, true
}

// Viewer returns the fan's viewer position, or the origin when there is no fan.
func (f *File) Viewer() ms2.Vec {
	if f.RayFan == nil {
		return ms2.Vec{}
	}
	return ms2.Vec(f.RayFan.Viewer)
}

// Ray returns the single ray and whether the file describes one.
// The ray's origin is offset from the entry origin by its start radius.
func (f *File) Ray() (march.Ray, bool) {
	if f.SingleRay == nil {
		return march.Ray{}, false
	}
	r := march.RayFromAngle(ms2.Vec(f.SingleRay.Origin), f.SingleRay.Angle)
	r.Origin = r.At(f.SingleRay.StartRadius)
	return r, true
}

// ImageSize returns the output image dimensions, 800x600 when unset.
func (f *File) ImageSize() (width, height int) {
	width, height = f.Image.Width, f.Image.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

// Bounds returns the region of interest of the file: the scene bounds grown
// to contain the viewer and ray origin.
func (f *File) Bounds(scene *sdfmarch.Scene) ms2.Box {
	bb := scene.Bounds()
	grow := func(p ms2.Vec) {
		bb.Min = ms2.MinElem(bb.Min, p)
		bb.Max = ms2.MaxElem(bb.Max, p)
	}
	if f.RayFan != nil {
		r := math32.Abs(f.RayFan.StartRadius)
		v := ms2.Vec(f.RayFan.Viewer)
		grow(ms2.AddScalar(-r, v))
		grow(ms2.AddScalar(r, v))
	}
	if ray, ok := f.Ray(); ok {
		grow(ms2.Vec(f.SingleRay.Origin))
		grow(ray.Origin)
	}
	return bb
}
