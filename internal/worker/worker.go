// Package worker runs a landmark model in a helper process. The helper reads
// length prefixed JSON requests on stdin and answers on file descriptor 3,
// keeping stdout and stderr free for its own logging.
package worker

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/landmark"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/pkg/errors"
)

type Process struct {
	mutex  sync.Mutex
	cmd    *exec.Cmd
	stderr *lockedBuffer
	stdin  io.WriteCloser
	data   io.ReadCloser
}

var _ landmark.Detector = &Process{}

// Start launches the helper. The helper is killed when ctx is done.
func Start(ctx context.Context, name string, args ...string) (*Process, error) {
	log := logger.Entry(ctx).WithField("component", "worker")

	cmd := exec.CommandContext(ctx, name, args...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "os.Pipe")
	}
	cmd.ExtraFiles = []*os.File{w} // fd 3 in the child

	stdin, err := cmd.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, errors.Wrap(err, "cmd.StdinPipe")
	}
	if err := cmd.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, errors.Wrapf(err, "starting %s", name)
	}
	w.Close() // only the child writes

	log.WithField("pid", cmd.Process.Pid).Infof("started landmark helper %s", name)
	return &Process{
		cmd:    cmd,
		stderr: stderr,
		stdin:  stdin,
		data:   r,
	}, nil
}

func (p *Process) Detect(ctx context.Context, gray *image.Gray) ([]image.Rectangle, error) {
	resp, err := p.roundTrip(newRequest(opDetect, gray))
	if err != nil {
		return nil, err
	}
	return resp.regions(), nil
}

func (p *Process) Predict(ctx context.Context, gray *image.Gray, region image.Rectangle) ([]landmark.Point, error) {
	req := newRequest(opPredict, gray)
	req.Region = &[4]int{region.Min.X, region.Min.Y, region.Max.X, region.Max.Y}
	resp, err := p.roundTrip(req)
	if err != nil {
		return nil, err
	}
	return resp.points(), nil
}

func (p *Process) roundTrip(req request) (*response, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := writeMessage(p.stdin, req); err != nil {
		return nil, p.withStderr(errors.Wrap(err, req.Op))
	}
	var resp response
	if err := readMessage(p.data, &resp); err != nil {
		return nil, p.withStderr(errors.Wrap(err, req.Op))
	}
	if resp.Error != "" {
		return nil, errors.Errorf("%s: helper: %s", req.Op, resp.Error)
	}
	return &resp, nil
}

// withStderr attaches whatever the helper logged, which usually explains why
// it died.
func (p *Process) withStderr(err error) error {
	if p.stderr == nil {
		return err
	}
	if s := p.stderr.String(); s != "" {
		return errors.Wrapf(err, "helper stderr: %s", s)
	}
	return err
}

// lockedBuffer collects helper stderr, which exec copies from its own
// goroutine.
type lockedBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (lb *lockedBuffer) Write(p []byte) (int, error) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()
	return lb.buf.Write(p)
}

func (lb *lockedBuffer) String() string {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()
	return lb.buf.String()
}

func (p *Process) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stdin.Close()
	p.data.Close()
	if p.cmd == nil {
		return nil
	}
	if err := p.cmd.Wait(); err != nil {
		return p.withStderr(errors.Wrap(err, "helper exited"))
	}
	return nil
}
