package stream

import (
	"context"
	"image"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/compute"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrDeviceUnavailable = errors.New("could not open video device")
	ErrFrameRead         = errors.New("could not read frame")
)

// Source produces frames. The returned frame belongs to the caller until the
// next Read.
type Source interface {
	Read(ctx context.Context) (*image.RGBA, error)
	Close() error
}

// Sink consumes processed frames.
type Sink interface {
	Show(ctx context.Context, frame *image.RGBA) error
	Close() error
}

// Quitter is implemented by sinks that can ask the stream to stop, such as a
// window polling for a key press.
type Quitter interface {
	QuitRequested() bool
}

type StreamOption func(s *Stream) error

func WithSource(src Source) StreamOption {
	return func(s *Stream) error {
		s.source = src
		return nil
	}
}

func WithSink(sink Sink) StreamOption {
	return func(s *Stream) error {
		s.sinks = append(s.sinks, sink)
		return nil
	}
}

func WithPipeline(p compute.Pipeline) StreamOption {
	return func(s *Stream) error {
		s.pipeline = p
		return nil
	}
}

// WithQuit stops the stream when c receives or is closed.
func WithQuit(c <-chan struct{}) StreamOption {
	return func(s *Stream) error {
		s.quit = c
		return nil
	}
}

type Stream struct {
	source   Source
	sinks    []Sink
	pipeline compute.Pipeline
	quit     <-chan struct{}

	fsm    *FSM
	frames int
}

func NewStream(opts ...StreamOption) (*Stream, error) {
	s := &Stream{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.source == nil {
		return nil, errors.New("no source")
	}
	if s.pipeline == nil {
		return nil, errors.New("no pipeline")
	}
	s.fsm = newFSM()
	return s, nil
}

// Frames is the number of frames shown so far.
func (s *Stream) Frames() int { return s.frames }

// State is the current lifecycle state.
func (s *Stream) State() string { return s.fsm.Current() }

// Run processes frames one at a time until ctx is done, quit fires, a sink
// asks to quit or the source fails.
func (s *Stream) Run(ctx context.Context) error {
	log := logger.Entry(ctx).WithField("component", "stream")
	ctx = logger.WithLogEntry(ctx, log)

	s.fsm.push(ctx, eventStart)

	for {
		if s.stopRequested(ctx) {
			s.fsm.push(ctx, eventQuit)
			log.WithField("frames", s.frames).Info("stream stopped")
			return nil
		}

		frame, err := s.source.Read(ctx)
		if err != nil {
			s.fsm.push(ctx, eventFail)
			return errors.Wrap(err, "source.Read")
		}

		frameCtx := logger.WithLogEntry(ctx, log.WithField("frame", s.frames))
		frame = s.pipeline.Compute(frameCtx, frame)

		for _, sink := range s.sinks {
			if err := sink.Show(frameCtx, frame); err != nil {
				s.fsm.push(ctx, eventFail)
				return errors.Wrap(err, "sink.Show")
			}
		}
		s.frames++
		log.WithFields(logrus.Fields{"frame": s.frames}).Trace("frame shown")
	}
}

func (s *Stream) stopRequested(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-s.quit:
		return true
	default:
	}
	for _, sink := range s.sinks {
		if q, ok := sink.(Quitter); ok && q.QuitRequested() {
			return true
		}
	}
	return false
}

// Close releases the source and every sink.
func (s *Stream) Close() error {
	var first error
	if err := s.source.Close(); err != nil {
		first = errors.Wrap(err, "source.Close")
	}
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = errors.Wrap(err, "sink.Close")
		}
	}
	return first
}
