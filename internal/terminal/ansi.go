// Package terminal renders frames as ANSI art and polls the tty for keys.
package terminal

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/stream"
	"github.com/eliukblau/pixterm/pkg/ansimage"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	defaultCols = 80
	defaultRows = 24
)

// ANSI draws every Nth frame to a terminal.
type ANSI struct {
	out     io.Writer
	every   int
	flicker bool
	count   int
	size    func() (cols, rows int)
}

var _ stream.Sink = &ANSI{}

type ANSIOption func(a *ANSI)

// WithFlicker clears the screen before each frame.
func WithFlicker(flicker bool) ANSIOption {
	return func(a *ANSI) { a.flicker = flicker }
}

func WithOutput(out io.Writer, cols, rows int) ANSIOption {
	return func(a *ANSI) {
		a.out = out
		a.size = func() (int, int) { return cols, rows }
	}
}

// NewANSI renders one frame out of every. Values below one render every frame.
func NewANSI(every int, opts ...ANSIOption) *ANSI {
	if every < 1 {
		every = 1
	}
	a := &ANSI{
		out:   os.Stdout,
		every: every,
		size:  stdoutSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ANSI) Show(ctx context.Context, frame *image.RGBA) error {
	defer func() { a.count++ }()
	if a.count%a.every != 0 {
		return nil
	}
	cols, rows := a.size()
	ansi, err := ansimage.NewScaledFromImage(frame, 2*rows, cols, color.Black, ansimage.ScaleModeFit, ansimage.NoDithering)
	if err != nil {
		return errors.Wrap(err, "ansimage.NewScaledFromImage")
	}
	if a.flicker {
		fmt.Fprint(a.out, "\033[H\033[2J")
	}
	_, err = fmt.Fprint(a.out, ansi.Render())
	return err
}

func (a *ANSI) Close() error { return nil }

func stdoutSize() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return defaultCols, defaultRows
	}
	return int(ws.Col), int(ws.Row)
}
