// Package compute turns frames into frames. Frames are modified in place and
// the same buffer is handed back.
package compute

import (
	"context"
	"image"
)

// Pipeline transforms a frame. Implementations may modify frame in place and
// must return the frame the caller should use from then on. Pipelines must not
// keep a reference to frame after Compute returns.
type Pipeline interface {
	Compute(ctx context.Context, frame *image.RGBA) *image.RGBA
}

// PipelineFunc adapts a function to a Pipeline.
type PipelineFunc func(ctx context.Context, frame *image.RGBA) *image.RGBA

func (f PipelineFunc) Compute(ctx context.Context, frame *image.RGBA) *image.RGBA {
	return f(ctx, frame)
}

// Multi runs pipelines in order, feeding each the previous result.
func Multi(pipelines ...Pipeline) Pipeline {
	return PipelineFunc(func(ctx context.Context, frame *image.RGBA) *image.RGBA {
		for _, p := range pipelines {
			frame = p.Compute(ctx, frame)
		}
		return frame
	})
}
