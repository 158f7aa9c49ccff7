// Package config holds runtime settings. Values come from flags, falling back
// to EYE_OVERLAY_* environment variables, which may be set in a .env file.
package config

import (
	"os"
	"strconv"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/assets"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const envPrefix = "EYE_OVERLAY_"

type Config struct {
	OverlayPath  string
	ModelDir     string
	ModelURL     string
	DetectorCmd  string // helper command line, run through sh -c
	LandmarkFile string // recorded landmarks, used instead of DetectorCmd
	Device       int
	VideoFile    string
	Width        int
	Height       int
	Inflate      int
	Debug        bool
	ANSIEvery    int // render every Nth frame to the terminal, 0 disables
	Headless     bool
	LogLevel     string
	LogFile      string
}

func Default() Config {
	return Config{
		OverlayPath: "assets/logo.jpeg",
		ModelDir:    "assets",
		ModelURL:    assets.ModelURL,
		Width:       1280,
		Height:      960,
		Inflate:     20,
		LogLevel:    "info",
	}
}

// Load reads envFile when present and overlays the environment onto the
// defaults.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return Config{}, errors.Wrapf(err, "godotenv.Load %s", envFile)
		}
	}
	return FromEnv(Default(), os.LookupEnv)
}

// FromEnv overlays variables found by lookup onto cfg.
func FromEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	var err error
	num := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok && err == nil {
			var n int
			n, err = strconv.Atoi(v)
			err = errors.Wrap(err, envPrefix+name)
			if err == nil {
				*dst = n
			}
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := lookup(envPrefix + name); ok && err == nil {
			var b bool
			b, err = strconv.ParseBool(v)
			err = errors.Wrap(err, envPrefix+name)
			if err == nil {
				*dst = b
			}
		}
	}

	str("OVERLAY", &cfg.OverlayPath)
	str("MODEL_DIR", &cfg.ModelDir)
	str("MODEL_URL", &cfg.ModelURL)
	str("DETECTOR_CMD", &cfg.DetectorCmd)
	str("LANDMARKS", &cfg.LandmarkFile)
	str("VIDEO_FILE", &cfg.VideoFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	num("DEVICE", &cfg.Device)
	num("WIDTH", &cfg.Width)
	num("HEIGHT", &cfg.Height)
	num("INFLATE", &cfg.Inflate)
	num("ANSI_EVERY", &cfg.ANSIEvery)
	flag("DEBUG", &cfg.Debug)
	flag("HEADLESS", &cfg.Headless)

	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Width <= 0 || cfg.Height <= 0:
		return errors.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	case cfg.Inflate < 0:
		return errors.Errorf("negative inflate %d", cfg.Inflate)
	case cfg.ANSIEvery < 0:
		return errors.Errorf("negative ansi interval %d", cfg.ANSIEvery)
	}
	return nil
}
