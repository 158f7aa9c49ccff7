package worker

import (
	"bytes"
	"context"
	"image"
	"os/exec"
	"testing"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/landmark"
	"github.com/stretchr/testify/require"
)

// mockCloser lets in-memory buffers stand in for the helper's pipes.
type mockCloser struct {
	*bytes.Buffer
}

func (m *mockCloser) Close() error { return nil }

func newMockProcess(t *testing.T, responses ...response) (*Process, *bytes.Buffer) {
	t.Helper()
	stdin := &mockCloser{Buffer: new(bytes.Buffer)}
	data := &mockCloser{Buffer: new(bytes.Buffer)}
	for _, r := range responses {
		require.NoError(t, writeMessage(data, r))
	}
	return &Process{stdin: stdin, data: data}, stdin.Buffer
}

func TestDetect(t *testing.T) {
	p, sent := newMockProcess(t, response{Regions: [][4]int{{10, 20, 110, 140}}})
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(gray.Pix, []byte{1, 2, 3, 4, 5, 6})

	regions, err := p.Detect(context.Background(), gray)
	require.NoError(t, err)
	require.Equal(t, []image.Rectangle{image.Rect(10, 20, 110, 140)}, regions)

	var req request
	require.NoError(t, readMessage(sent, &req))
	require.Equal(t, opDetect, req.Op)
	require.Equal(t, 3, req.Width)
	require.Equal(t, 2, req.Height)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, req.Gray)
	require.Nil(t, req.Region)
	require.NoError(t, p.Close())
}

func TestPredict(t *testing.T) {
	pts := make([][2]int, landmark.NumPoints)
	for i := range pts {
		pts[i] = [2]int{i, i * 2}
	}
	p, sent := newMockProcess(t, response{Points: pts})

	shape, err := p.Predict(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)), image.Rect(1, 1, 3, 3))
	require.NoError(t, err)
	require.Len(t, shape, landmark.NumPoints)
	require.Equal(t, image.Pt(40, 80), shape[40])

	var req request
	require.NoError(t, readMessage(sent, &req))
	require.Equal(t, opPredict, req.Op)
	require.Equal(t, &[4]int{1, 1, 3, 3}, req.Region)
}

func TestHelperError(t *testing.T) {
	p, _ := newMockProcess(t, response{Error: "no model"})
	_, err := p.Detect(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	require.ErrorContains(t, err, "no model")
}

func TestTruncatedResponse(t *testing.T) {
	p, _ := newMockProcess(t)
	_, err := p.Detect(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	require.Error(t, err)
}

func TestSubImageRequest(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range gray.Pix {
		gray.Pix[i] = byte(i)
	}
	sub := gray.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)

	req := newRequest(opDetect, sub)
	require.Equal(t, 2, req.Width)
	require.Equal(t, 2, req.Height)
	require.Equal(t, []byte{5, 6, 9, 10}, req.Gray)
}

func TestStartEcho(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh")
	}
	ctx := context.Background()
	// the helper echoes requests back, which decode as empty responses
	p, err := Start(ctx, "sh", "-c", "exec cat >&3")
	require.NoError(t, err)

	regions, err := p.Detect(ctx, image.NewGray(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)
	require.Empty(t, regions)
	require.NoError(t, p.Close())
}
