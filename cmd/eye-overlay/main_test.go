package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/config"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/landmark"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// writeLandmarks records one face whose eyes span left and right.
func writeLandmarks(t *testing.T, path string, left, right landmark.Bounds) {
	t.Helper()
	pts := make([]string, landmark.NumPoints)
	for i := range pts {
		pts[i] = "[0,0]"
	}
	place := func(is landmark.IndexSet, b landmark.Bounds) {
		midX, midY := (b.XMin+b.XMax)/2, (b.YMin+b.YMax)/2
		pts[is.Left] = fmt.Sprintf("[%d,%d]", b.XMin, midY)
		pts[is.Right] = fmt.Sprintf("[%d,%d]", b.XMax, midY)
		pts[is.Top] = fmt.Sprintf("[%d,%d]", midX, b.YMin)
		pts[is.Bottom] = fmt.Sprintf("[%d,%d]", midX, b.YMax)
	}
	place(landmark.LeftEye, left)
	place(landmark.RightEye, right)
	body := fmt.Sprintf(`[{"region":[0,0,100,100],"points":[%s]}]`, strings.Join(pts, ","))
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{255, 0, 0, 255}

	cfg := config.Default()
	cfg.OverlayPath = filepath.Join(dir, "logo.png")
	cfg.LandmarkFile = filepath.Join(dir, "faces.json")
	require.NoError(t, imaging.Save(imaging.New(32, 32, red), cfg.OverlayPath))
	writeLandmarks(t, cfg.LandmarkFile,
		landmark.Bounds{XMin: 20, XMax: 30, YMin: 40, YMax: 46},
		landmark.Bounds{XMin: 60, XMax: 70, YMin: 40, YMax: 46},
	)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	require.NoError(t, imaging.Save(imaging.New(120, 90, color.NRGBA{0, 0, 0, 255}), in))

	require.NoError(t, apply(context.Background(), &cfg, in, out))

	img, err := imaging.Open(out)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 120, 90), img.Bounds())
	require.Equal(t, red, color.NRGBAModel.Convert(img.At(25, 43)))
	require.Equal(t, red, color.NRGBAModel.Convert(img.At(65, 43)))
	require.Equal(t, color.NRGBA{0, 0, 0, 255}, color.NRGBAModel.Convert(img.At(45, 80)))
}

func TestApplyWithoutDetector(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.OverlayPath = filepath.Join(dir, "logo.png")
	require.NoError(t, imaging.Save(imaging.New(8, 8, color.White), cfg.OverlayPath))

	err := apply(context.Background(), &cfg, "in.png", filepath.Join(dir, "out.png"))
	require.ErrorContains(t, err, "no detector configured")
}

func TestDumpFSM(t *testing.T) {
	cfg := config.Default()
	root := newRootCmd(&cfg)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"dump-fsm", "--log-level", "error"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	require.Contains(t, buf.String(), "digraph")
}

func TestKeyMapQuitTwice(t *testing.T) {
	quit := make(chan struct{})
	km := keyMap(quit)
	ctx := context.Background()
	require.True(t, km.Dispatch(ctx, 'q'))
	require.NotPanics(t, func() { km.Dispatch(ctx, 'q') })
	_, open := <-quit
	require.False(t, open)
}
