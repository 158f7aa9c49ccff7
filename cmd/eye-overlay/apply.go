package main

import (
	"context"
	"image"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/config"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

func newApplyCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <input image> <output image>",
		Short: "Process a single still image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(cmd.Context(), cfg, args[0], args[1])
		},
	}
}

func apply(ctx context.Context, cfg *config.Config, in, out string) error {
	pipeline, closer, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	img, err := imaging.Open(in)
	if err != nil {
		return errors.Wrap(err, "imaging.Open")
	}
	frame := image.NewRGBA(img.Bounds())
	draw.Draw(frame, frame.Rect, img, img.Bounds().Min, draw.Src)

	frame = pipeline.Compute(ctx, frame)

	if err := imaging.Save(frame, out); err != nil {
		return errors.Wrap(err, "imaging.Save")
	}
	logger.Entry(ctx).WithField("path", out).Info("wrote image")
	return nil
}
