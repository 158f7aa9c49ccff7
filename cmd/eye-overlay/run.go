package main

import (
	"context"
	"os"
	"sync"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/config"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/stream"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/terminal"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/video"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the camera (or a video file) live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&cfg.Device, "device", cfg.Device, "camera device index")
	flags.StringVar(&cfg.VideoFile, "video", cfg.VideoFile, "read frames from this video file instead of the camera")
	flags.IntVar(&cfg.Width, "width", cfg.Width, "requested frame width")
	flags.IntVar(&cfg.Height, "height", cfg.Height, "requested frame height")
	flags.IntVar(&cfg.ANSIEvery, "ansi-art", cfg.ANSIEvery, "output ansi art on modulo frame, 0 disables")
	flags.BoolVar(&cfg.Headless, "headless", cfg.Headless, "do not open a window, quit with q on the terminal")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Entry(ctx)

	pipeline, closer, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	var src stream.Source
	if cfg.VideoFile != "" {
		src, err = video.OpenFile(cfg.VideoFile)
	} else {
		src, err = video.OpenCamera(cfg.Device, cfg.Width, cfg.Height)
	}
	if err != nil {
		return err
	}

	quit := make(chan struct{})
	opts := []stream.StreamOption{
		stream.WithSource(src),
		stream.WithPipeline(pipeline),
		stream.WithQuit(quit),
	}
	if !cfg.Headless {
		opts = append(opts, stream.WithSink(video.NewWindow(video.WindowTitle)))
	}
	if cfg.ANSIEvery > 0 {
		opts = append(opts, stream.WithSink(terminal.NewANSI(cfg.ANSIEvery)))
	}
	s, err := stream.NewStream(opts...)
	if err != nil {
		src.Close()
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("stream.Close")
		}
	}()

	var background []func(context.Context) error
	if cfg.Headless {
		keys := keyMap(quit)
		background = append(background, func(ctx context.Context) error {
			if err := terminal.ScanKeys(ctx, keys); err != nil {
				log.WithError(err).Warn("key polling disabled")
			}
			return nil
		})
	}
	return drive(ctx, s.Run, background...)
}

// drive calls fg on the calling goroutine, since HighGUI windows must stay on
// the main thread, with each of bg on its own goroutine. bg is canceled once
// fg returns.
func drive(ctx context.Context, fg func(context.Context) error, bg ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range bg {
		f := f
		g.Go(func() error { return f(gctx) })
	}

	fgErr := fg(ctx)
	cancel()
	if err := g.Wait(); err != nil && fgErr == nil {
		return err
	}
	return fgErr
}

func keyMap(quit chan struct{}) terminal.KeyMap {
	var (
		km   terminal.KeyMap
		once sync.Once
	)
	km = terminal.KeyMap{
		'q': {
			Desc:   "Quit",
			Handle: func(context.Context) { once.Do(func() { close(quit) }) },
		},
		'?': {
			Desc:   "Help",
			Handle: func(context.Context) { km.Help(os.Stdout) },
		},
	}
	return km
}
