package stream

import (
	"context"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/looplab/fsm"
)

const (
	stateIdle    = "idle"
	stateRunning = "running"
	stateStopped = "stopped"
	stateFailed  = "failed"

	eventStart = "start"
	eventQuit  = "quit"
	eventFail  = "fail"
)

type FSM struct {
	*fsm.FSM
}

//go:generate sh -c "cd ../../ && go run ./cmd/eye-overlay dump-fsm | dot -Tsvg /dev/stdin -o fsm.svg"
func newFSM() *FSM {
	return &FSM{
		FSM: fsm.NewFSM(
			stateIdle,
			fsm.Events{
				{Name: eventStart, Src: []string{stateIdle}, Dst: stateRunning},
				{Name: eventQuit, Src: []string{stateRunning}, Dst: stateStopped},
				{Name: eventFail, Src: []string{stateRunning}, Dst: stateFailed},
			},
			fsm.Callbacks{},
		),
	}
}

// Visualize returns the graphviz source of the stream lifecycle.
func Visualize() string {
	return fsm.Visualize(newFSM().FSM)
}

func (f *FSM) push(ctx context.Context, event string) {
	log := logger.Entry(ctx)
	src := f.Current()
	err := f.Event(event)
	if _, ok := err.(fsm.NoTransitionError); err != nil && !ok {
		log.WithError(err).WithField("state", src).Warn("push event error")
		return
	}
	log.Infof("[%s -> %s] %s", src, f.Current(), event)
}
