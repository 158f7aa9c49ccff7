package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/config"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const envFile = ".env"

var log = logrus.New()

func init() {
	// keep main on the main OS thread for the OpenCV window
	runtime.LockOSThread()
}

func main() {
	cfg, err := config.Load(envFile)
	if err != nil {
		log.WithError(err).Fatal("config.Load")
	}

	ctx, ctxCancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, os.Interrupt,
	)
	defer ctxCancel()

	if err := newRootCmd(&cfg).ExecuteContext(ctx); err != nil {
		ctxCancel()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "eye-overlay",
		Short: "Paints an image over the eyes of faces in a video stream",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			l, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
			if err != nil {
				return err
			}
			log = l
			cmd.SetContext(logger.WithLogEntry(cmd.Context(), logrus.NewEntry(log)))
			return nil
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also log to this file, rotated")
	flags.StringVar(&cfg.OverlayPath, "overlay", cfg.OverlayPath, "image painted over each eye")
	flags.StringVar(&cfg.ModelDir, "model-dir", cfg.ModelDir, "directory holding the landmark model")
	flags.StringVar(&cfg.ModelURL, "model-url", cfg.ModelURL, "where to download the landmark model from")
	flags.StringVar(&cfg.DetectorCmd, "detector-cmd", cfg.DetectorCmd, "landmark helper command, receives the model path as its last argument")
	flags.StringVar(&cfg.LandmarkFile, "landmarks", cfg.LandmarkFile, "replay recorded landmarks from this JSON file instead of running a helper")
	flags.IntVar(&cfg.Inflate, "inflate", cfg.Inflate, "margin in pixels added around each eye")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "draw eye boxes instead of the overlay")

	root.AddCommand(
		newRunCmd(cfg),
		newApplyCmd(cfg),
		newFetchCmd(cfg),
		newDumpFSMCmd(),
	)
	return root
}
