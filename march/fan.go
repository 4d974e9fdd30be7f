package march

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"golang.org/x/sync/errgroup"
)

// Fan describes evenly spaced rays cast in all directions from a viewer.
type Fan struct {
	// NumRays is the number of rays. Ray i points at angle i*2π/NumRays from the positive x axis.
	NumRays int
	// StartRadius offsets each ray origin from the viewer along the ray direction
	// so the viewer's own footprint does not produce a near zero first sample.
	StartRadius float32
}

func (f Fan) validate() error {
	if f.NumRays <= 0 {
		return fmt.Errorf("%w: fan NumRays=%d", ErrInvalidConfig, f.NumRays)
	} else if !(f.StartRadius >= 0) || math32.IsInf(f.StartRadius, 1) {
		return fmt.Errorf("%w: fan StartRadius=%g", ErrInvalidConfig, f.StartRadius)
	}
	return nil
}

// Rays returns the fan's rays in increasing angle order.
func (f Fan) Rays(viewer ms2.Vec) []Ray {
	if f.NumRays <= 0 {
		return nil
	}
	rays := make([]Ray, f.NumRays)
	increment := 2 * math32.Pi / float32(f.NumRays)
	for i := range rays {
		r := RayFromAngle(viewer, float32(i)*increment)
		r.Origin = r.At(f.StartRadius)
		rays[i] = r
	}
	return rays
}

// CastFan marches every ray of fan from viewer sequentially. Results are in ray angle order.
func CastFan(sdf Distancer, viewer ms2.Vec, fan Fan, cfg Config) ([]Result, error) {
	if err := fan.validate(); err != nil {
		return nil, err
	} else if err = cfg.Validate(); err != nil {
		return nil, err
	}
	rays := fan.Rays(viewer)
	results := make([]Result, len(rays))
	for i, ray := range rays {
		res, err := March(sdf, ray, cfg)
		if err != nil {
			return nil, fmt.Errorf("ray %d: %w", i, err)
		}
		results[i] = res
	}
	return results, nil
}

// CastFanParallel is the concurrent counterpart of [CastFan]. Rays are marched by at most
// workers goroutines; workers<=0 uses GOMAXPROCS. sdf must be safe for concurrent reads.
// Results are in ray angle order regardless of completion order. Cancelling ctx stops
// scheduling of remaining rays and returns the context's error.
func CastFanParallel(ctx context.Context, sdf Distancer, viewer ms2.Vec, fan Fan, cfg Config, workers int) ([]Result, error) {
	if err := fan.validate(); err != nil {
		return nil, err
	} else if err = cfg.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rays := fan.Rays(viewer)
	results := make([]Result, len(rays))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ray := range rays {
		if gctx.Err() != nil {
			break
		}
		i, ray := i, ray
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := March(sdf, ray, cfg)
			if err != nil {
				return fmt.Errorf("ray %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	} else if err != nil {
		return nil, err
	}
	return results, nil
}
