// Package video connects OpenCV capture devices and windows to a stream.
package video

import (
	"context"
	"image"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/stream"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 960
	WindowTitle   = "Video Stream"
	quitKey       = 'q'
)

// Capture reads frames from a camera or a video file.
type Capture struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

var _ stream.Source = &Capture{}

// OpenCamera opens a capture device and asks it for width x height frames.
func OpenCamera(device, width, height int) (*Capture, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, errors.Wrapf(stream.ErrDeviceUnavailable, "device %d: %v", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(stream.ErrDeviceUnavailable, "device %d", device)
	}
	capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	return &Capture{capture: capture, mat: gocv.NewMat()}, nil
}

// OpenFile plays back a recorded video.
func OpenFile(path string) (*Capture, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, errors.Wrapf(stream.ErrDeviceUnavailable, "%s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrap(stream.ErrDeviceUnavailable, path)
	}
	return &Capture{capture: capture, mat: gocv.NewMat()}, nil
}

func (c *Capture) Read(ctx context.Context) (*image.RGBA, error) {
	if ok := c.capture.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, stream.ErrFrameRead
	}
	frame, err := MatToRGBA(c.mat)
	if err != nil {
		return nil, errors.Wrap(stream.ErrFrameRead, err.Error())
	}
	return frame, nil
}

func (c *Capture) Close() error {
	if err := c.mat.Close(); err != nil {
		return err
	}
	return c.capture.Close()
}

// Window shows frames in an OpenCV window and watches for the quit key.
type Window struct {
	window *gocv.Window
	quit   bool
}

var (
	_ stream.Sink    = &Window{}
	_ stream.Quitter = &Window{}
)

func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

func (w *Window) Show(ctx context.Context, frame *image.RGBA) error {
	mat, err := RGBAToMat(frame)
	if err != nil {
		return err
	}
	defer mat.Close()
	w.window.IMShow(mat)
	if key := w.window.WaitKey(1); key&0xff == quitKey {
		w.quit = true
	}
	return nil
}

func (w *Window) QuitRequested() bool { return w.quit }

func (w *Window) Close() error {
	return w.window.Close()
}

// MatToRGBA converts a BGR mat into a frame.
func MatToRGBA(mat gocv.Mat) (*image.RGBA, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "mat.ToImage")
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// RGBAToMat converts a frame into a BGR mat. The caller closes the mat.
func RGBAToMat(frame *image.RGBA) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "gocv.ImageToMatRGB")
	}
	return mat, nil
}
