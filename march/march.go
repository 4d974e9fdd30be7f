// Package march implements sphere tracing (raymarching) of 2D signed distance fields.
//
// A ray is advanced by the distance to the nearest surface reported by the field at
// its current position. Stepping by the true unsigned distance never skips past
// a surface. Marching stops on a hit, when the travelled distance exceeds the
// configured maximum or when the step budget is exhausted.
package march

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

// ErrInvalidConfig is returned when a [Config] or [Fan] field is unusable.
var ErrInvalidConfig = errors.New("invalid march config")

// Distancer is a signed distance field queried one point at a time.
// *sdfmarch.Scene and *eval.Cached implement it.
type Distancer interface {
	Distance(p ms2.Vec) (float32, error)
}

// Ray is a half line starting at Origin. Direction is expected to be of unit length;
// it is never normalized by this package.
type Ray struct {
	Origin    ms2.Vec
	Direction ms2.Vec
}

// RayFromAngle returns a ray at origin pointing at angle radians from the positive x axis.
func RayFromAngle(origin ms2.Vec, angle float32) Ray {
	s, c := math32.Sincos(angle)
	return Ray{Origin: origin, Direction: ms2.Vec{X: c, Y: s}}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) ms2.Vec {
	return ms2.Add(r.Origin, ms2.Scale(t, r.Direction))
}

// Config bounds a march. All fields are required, there are no defaults.
type Config struct {
	// MaxSteps is the maximum number of distance samples taken along a ray.
	MaxSteps int
	// HitEpsilon is the distance under which a sample is considered on a surface.
	HitEpsilon float32
	// MaxTravel is the distance along the ray past which marching gives up.
	MaxTravel float32
}

// Validate returns an error wrapping [ErrInvalidConfig] if any field is unusable.
func (cfg Config) Validate() error {
	switch {
	case cfg.MaxSteps <= 0:
		return fmt.Errorf("%w: MaxSteps=%d", ErrInvalidConfig, cfg.MaxSteps)
	case !(cfg.HitEpsilon > 0):
		return fmt.Errorf("%w: HitEpsilon=%g", ErrInvalidConfig, cfg.HitEpsilon)
	case !(cfg.MaxTravel > 0):
		return fmt.Errorf("%w: MaxTravel=%g", ErrInvalidConfig, cfg.MaxTravel)
	}
	return nil
}

// Status is the terminal state of a march.
type Status uint8

const (
	statusUndefined Status = iota
	// StatusHit means the last sample was within HitEpsilon of a surface.
	StatusHit
	// StatusMiss means the ray travelled beyond MaxTravel or ran out of steps.
	StatusMiss
)

func (s Status) String() string {
	switch s {
	case StatusHit:
		return "hit"
	case StatusMiss:
		return "miss"
	case statusUndefined:
		return "undefined"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Step is a single distance sample along a ray.
type Step struct {
	Position ms2.Vec
	Distance float32
}

// Result is the outcome of marching a single ray.
type Result struct {
	// Steps holds between 1 and Config.MaxSteps samples in marching order.
	Steps  []Step
	Status Status
	// Traveled is the distance along the ray when marching stopped.
	Traveled float32
}

// Last returns the final sample of the march. It panics on a zero Result.
func (r Result) Last() Step {
	return r.Steps[len(r.Steps)-1]
}

// Hit reports whether the march terminated on a surface.
func (r Result) Hit() bool { return r.Status == StatusHit }

// March sphere traces ray through sdf. The returned result holds every sample taken.
// Errors from sdf are returned wrapped along with the samples recorded so far.
func March(sdf Distancer, ray Ray, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	steps := make([]Step, 0, cfg.MaxSteps)
	return appendMarch(steps, sdf, ray, cfg)
}

func appendMarch(dst []Step, sdf Distancer, ray Ray, cfg Config) (Result, error) {
	var traveled float32
	for i := 0; i < cfg.MaxSteps; i++ {
		current := ray.At(traveled)
		d, err := sdf.Distance(current)
		if err != nil {
			return Result{Steps: dst, Traveled: traveled}, fmt.Errorf("march step %d at (%g,%g): %w", i, current.X, current.Y, err)
		}
		dst = append(dst, Step{Position: current, Distance: d})
		if d < cfg.HitEpsilon {
			return Result{Steps: dst, Status: StatusHit, Traveled: traveled}, nil
		}
		traveled += d
		if traveled > cfg.MaxTravel {
			break
		}
	}
	return Result{Steps: dst, Status: StatusMiss, Traveled: traveled}, nil
}
