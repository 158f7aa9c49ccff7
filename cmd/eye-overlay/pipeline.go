package main

import (
	"context"
	"io"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/assets"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/compute"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/config"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/landmark"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/worker"
	"github.com/pkg/errors"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newDetector replays recorded landmarks when configured, otherwise it
// fetches the model and starts the helper.
func newDetector(ctx context.Context, cfg *config.Config) (landmark.Detector, io.Closer, error) {
	log := logger.Entry(ctx)

	if cfg.LandmarkFile != "" {
		d, err := landmark.LoadScripted(cfg.LandmarkFile)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("faces", len(d.Faces)).Info("replaying recorded landmarks")
		return d, nopCloser{}, nil
	}
	if cfg.DetectorCmd == "" {
		return nil, nil, errors.New("no detector configured, set --detector-cmd or --landmarks")
	}

	fetcher := assets.NewFetcher()
	fetcher.URL = cfg.ModelURL
	model, err := fetcher.Fetch(ctx, cfg.ModelDir)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetching model")
	}
	p, err := worker.Start(ctx, "sh", "-c", cfg.DetectorCmd+` "$0"`, model)
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}

func newPipeline(ctx context.Context, cfg *config.Config) (compute.Pipeline, io.Closer, error) {
	overlay, err := compute.LoadOverlay(cfg.OverlayPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading overlay %s", cfg.OverlayPath)
	}
	d, closer, err := newDetector(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	eo, err := compute.NewEyeOverlay(d, overlay,
		compute.WithDebug(cfg.Debug),
		compute.WithInflate(cfg.Inflate),
	)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return eo, closer, nil
}
