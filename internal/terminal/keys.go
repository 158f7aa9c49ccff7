package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mattn/go-tty"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Key struct {
	Desc   string
	Handle func(ctx context.Context)
}

type KeyMap map[rune]Key

// Help lists the keys in order.
func (km KeyMap) Help(w io.Writer) {
	keys := maps.Keys(km)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", string(k), km[k].Desc)
	}
}

// Dispatch runs the handler bound to r and reports whether there was one.
func (km KeyMap) Dispatch(ctx context.Context, r rune) bool {
	k, ok := km[r]
	if !ok || k.Handle == nil {
		return false
	}
	k.Handle(ctx)
	return true
}

// ScanKeys reads runes from the controlling terminal and dispatches them
// until ctx is done.
func ScanKeys(ctx context.Context, km KeyMap) error {
	t, err := tty.Open()
	if err != nil {
		return errors.Wrap(err, "tty.Open")
	}
	var once sync.Once
	closeTTY := func() { once.Do(func() { t.Close() }) }
	defer closeTTY()
	go func() {
		<-ctx.Done()
		closeTTY()
	}()

	for {
		r, err := t.ReadRune()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "tty.ReadRune")
		}
		km.Dispatch(ctx, r)
	}
}
