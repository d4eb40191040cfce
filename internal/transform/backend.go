package transform

import (
	"context"
	"fmt"

	"github.com/Mavwarf/imaging/internal/config"
)

// Backend performs image transformations.
type Backend interface {
	Resize(ctx context.Context, job Job) error
	ResizeCrop(ctx context.Context, job Job) error
}

// Apply runs job on b according to its Fit.
func Apply(ctx context.Context, b Backend, job Job) error {
	if job.Width <= 0 || job.Height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", job.Width, job.Height)
	}
	if job.Fit == FitCrop {
		return b.ResizeCrop(ctx, job)
	}
	return b.Resize(ctx, job)
}

// New returns the backend selected by cfg.Engine.
func New(cfg config.Backend) (Backend, error) {
	switch cfg.Engine {
	case "", config.EngineImageMagick:
		return NewMagick(cfg)
	case config.EngineNative:
		return NewNative(cfg), nil
	default:
		return nil, fmt.Errorf("unknown backend engine %q", cfg.Engine)
	}
}

func quality(q int) int {
	if q <= 0 || q > 100 {
		return config.DefaultQuality
	}
	return q
}
