package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestEntryFallback(t *testing.T) {
	e := Entry(context.Background())
	require.NotNil(t, e)
	require.Equal(t, logrus.StandardLogger(), e.Logger)
}

func TestWithLogEntry(t *testing.T) {
	log := logrus.New()
	e := log.WithField("component", "test")
	ctx := WithLogEntry(context.Background(), e)
	require.Same(t, e, Entry(ctx))
}

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug", NoColors: true})
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, log.Level)

	_, err = New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNewWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "eye-overlay.log")
	log, err := New(Config{File: file, NoColors: true})
	require.NoError(t, err)
	log.Info("hello")
	require.FileExists(t, file)
}
