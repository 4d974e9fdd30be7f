// Package eval provides batch evaluation helpers for 2D signed distance fields.
package eval

import (
	"errors"
	"slices"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

// SDF2 implements a 2D signed distance field in vectorized form.
type SDF2 interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// dist and pos must be of same length. Resulting distances are stored
	// in dist.
	Evaluate(pos []ms2.Vec, dist []float32, userData any) error
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() ms2.Box
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
	errNilSDF               = errors.New("nil SDF2")
)

// Gradient computes the central difference gradient of s at every position and stores it in grads.
// The result is not normalized. step is the full distance between the two samples on each axis.
func Gradient(s SDF2, pos, grads []ms2.Vec, step float32, userData any) error {
	step *= 0.5
	if step <= 0 || math32.IsNaN(step) {
		return errors.New("invalid step")
	} else if len(pos) != len(grads) {
		return errors.New("length of position must match length of gradients")
	} else if s == nil {
		return errNilSDF
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	auxPos := make([]ms2.Vec, len(pos))
	d1 := make([]float32, len(pos))
	d2 := make([]float32, len(pos))
	var vecs = [2]ms2.Vec{{X: step}, {Y: step}}
	for dim, h := range vecs {
		for i, p := range pos {
			auxPos[i] = ms2.Add(p, h)
		}
		err := s.Evaluate(auxPos, d1, userData)
		if err != nil {
			return err
		}
		for i, p := range pos {
			auxPos[i] = ms2.Sub(p, h)
		}
		err = s.Evaluate(auxPos, d2, userData)
		if err != nil {
			return err
		}
		if dim == 0 {
			for i, d := range d1 {
				grads[i].X = d - d2[i]
			}
		} else {
			for i, d := range d1 {
				grads[i].Y = d - d2[i]
			}
		}
	}
	return nil
}

// Cached memoizes distances of an SDF2 keyed on the exact bits of each evaluated position.
// It suits workloads that query the same positions repeatedly such as re-marching a ray
// frame after frame. Cached is not safe for concurrent use.
type Cached struct {
	sdf     SDF2
	m       map[[2]uint32]float32
	posbuf  []ms2.Vec
	distbuf []float32
	idxbuf  []int
	hits    uint64
	evals   uint64
}

// NewCached returns a cache wrapping sdf.
func NewCached(sdf SDF2) (*Cached, error) {
	var c Cached
	err := c.Reset(sdf)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Reset drops all cached entries and statistics and sets the underlying SDF. Buffers are reused.
func (c *Cached) Reset(sdf SDF2) error {
	if sdf == nil {
		return errNilSDF
	}
	if c.m == nil {
		c.m = make(map[[2]uint32]float32)
	} else {
		clear(c.m)
	}
	*c = Cached{
		sdf:     sdf,
		m:       c.m,
		posbuf:  c.posbuf[:0],
		distbuf: c.distbuf[:0],
		idxbuf:  c.idxbuf[:0],
	}
	return nil
}

// CacheHits returns total amount of cached evaluations done since the last reset.
func (c *Cached) CacheHits() uint64 { return c.hits }

// Evaluations returns total evaluations performed successfully since the last reset, including cached.
func (c *Cached) Evaluations() uint64 { return c.evals }

// Bounds returns the underlying SDF's bounding box.
func (c *Cached) Bounds() ms2.Box { return c.sdf.Bounds() }

// Distance evaluates a single position.
func (c *Cached) Distance(p ms2.Vec) (float32, error) {
	var dist [1]float32
	pos := [1]ms2.Vec{p}
	err := c.Evaluate(pos[:], dist[:], nil)
	return dist[0], err
}

// Evaluate implements [SDF2] with cached evaluation.
func (c *Cached) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	seekPos := c.posbuf[:0]
	idx := c.idxbuf[:0]
	for i, p := range pos {
		d, cached := c.m[key(p)]
		if cached {
			dist[i] = d
		} else {
			seekPos = append(seekPos, p)
			idx = append(idx, i)
		}
	}
	if len(idx) > 0 {
		// Renew buffers in case they were grown.
		c.idxbuf = idx
		c.posbuf = seekPos
		c.distbuf = slices.Grow(c.distbuf[:0], len(seekPos))
		seekDist := c.distbuf[:len(seekPos)]
		err := c.sdf.Evaluate(seekPos, seekDist, userData)
		if err != nil {
			return err
		}
		for i, p := range seekPos {
			c.m[key(p)] = seekDist[i]
			dist[idx[i]] = seekDist[i]
		}
	}
	c.evals += uint64(len(dist))
	c.hits += uint64(len(dist) - len(seekPos))
	return nil
}

func key(p ms2.Vec) [2]uint32 {
	return [2]uint32{math32.Float32bits(p.X), math32.Float32bits(p.Y)}
}
