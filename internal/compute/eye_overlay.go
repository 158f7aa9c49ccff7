package compute

import (
	"context"
	"image"
	"image/color"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/landmark"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// DefaultInflate is the margin added around a tight eye box so the overlay
// covers lashes and brows.
const DefaultInflate = 20

const markerRadius = 5

// Debug colors.
var (
	OutlineColor           = color.RGBA{0, 255, 0, 255}
	MarkerTopLeftColor     = color.RGBA{0, 0, 255, 255}
	MarkerTopRightColor    = color.RGBA{0, 255, 0, 255}
	MarkerBottomLeftColor  = color.RGBA{255, 0, 0, 255}
	MarkerBottomRightColor = color.RGBA{0, 255, 255, 255}
)

// EyeOverlay paints an overlay image over both eyes of every detected face.
// The overlay is shared read only; EyeOverlay keeps no per frame state.
type EyeOverlay struct {
	detector landmark.Detector
	overlay  image.Image
	debug    bool
	inflate  int
}

var _ Pipeline = &EyeOverlay{}

type EyeOverlayOption func(eo *EyeOverlay) error

// WithDebug draws the inflated eye boxes and their corners instead of the
// overlay.
func WithDebug(debug bool) EyeOverlayOption {
	return func(eo *EyeOverlay) error {
		eo.debug = debug
		return nil
	}
}

// WithInflate sets the margin added around each eye box. Negative amounts are
// rejected.
func WithInflate(amount int) EyeOverlayOption {
	return func(eo *EyeOverlay) error {
		if amount < 0 {
			return errors.Errorf("negative inflate amount %d", amount)
		}
		eo.inflate = amount
		return nil
	}
}

// NewEyeOverlay builds the compositor. The overlay is copied and made fully
// opaque, so painted eye regions never carry alpha into the frame.
func NewEyeOverlay(detector landmark.Detector, overlay image.Image, opts ...EyeOverlayOption) (*EyeOverlay, error) {
	if detector == nil {
		return nil, errors.New("nil detector")
	}
	if overlay == nil || overlay.Bounds().Empty() {
		return nil, errors.New("empty overlay")
	}
	eo := &EyeOverlay{
		detector: detector,
		overlay:  opaque(overlay),
		inflate:  DefaultInflate,
	}
	for _, opt := range opts {
		if err := opt(eo); err != nil {
			return nil, err
		}
	}
	return eo, nil
}

// Compute finds faces in frame and composites the overlay onto each eye.
// Detector failures are logged and treated as no faces, a face whose shape
// cannot be predicted is skipped.
func (eo *EyeOverlay) Compute(ctx context.Context, frame *image.RGBA) *image.RGBA {
	log := logger.Entry(ctx)

	gray := Grayscale(frame)
	regions, err := eo.detector.Detect(ctx, gray)
	if err != nil {
		log.WithError(err).Warn("detector.Detect")
		return frame
	}
	log.WithField("num_faces", len(regions)).Trace("detected faces")

	for i, region := range regions {
		log := log.WithFields(logrus.Fields{"face": i, "region": region})

		shape, err := eo.detector.Predict(ctx, gray, region)
		if err != nil {
			log.WithError(err).Warn("detector.Predict")
			continue
		}
		left, err := landmark.LeftEye.Eye(shape)
		if err != nil {
			log.WithError(err).Warn("left eye")
			continue
		}
		right, err := landmark.RightEye.Eye(shape)
		if err != nil {
			log.WithError(err).Warn("right eye")
			continue
		}
		log.WithFields(logrus.Fields{"left": left, "right": right}).Trace("eyes")

		frame = eo.Composite(frame, left, eo.inflate)
		frame = eo.Composite(frame, right, eo.inflate)
	}
	return frame
}

// Composite replaces the pixels of the inflated eye box with the overlay
// resized to exactly fit it. The parts of the box outside frame are clipped.
// Boxes of non-positive size after inflation leave frame untouched.
func (eo *EyeOverlay) Composite(frame *image.RGBA, eye landmark.Bounds, inflate int) *image.RGBA {
	dst := eye.Inflate(inflate)
	if dst.Empty() {
		return frame
	}

	if eo.debug {
		drawDebug(frame, dst)
		return frame
	}

	clipped := dst.Intersect(frame.Rect)
	if clipped.Empty() {
		return frame
	}
	resized := resize(eo.overlay, dst.Dx(), dst.Dy())
	draw.Draw(frame, clipped, resized, clipped.Min.Sub(dst.Min), draw.Src)
	return frame
}

// drawDebug outlines box and marks its corners. The outline runs from
// box.Min to box.Max inclusive, the same corners the overlay is sized from.
func drawDebug(frame *image.RGBA, box image.Rectangle) {
	x0, y0 := box.Min.X, box.Min.Y
	x1, y1 := box.Max.X, box.Max.Y

	outline := image.NewUniform(OutlineColor)
	for _, edge := range []image.Rectangle{
		image.Rect(x0, y0, x1+1, y0+1),
		image.Rect(x0, y1, x1+1, y1+1),
		image.Rect(x0, y0, x0+1, y1+1),
		image.Rect(x1, y0, x1+1, y1+1),
	} {
		draw.Draw(frame, edge, outline, image.Point{}, draw.Src)
	}

	fillCircle(frame, image.Pt(x0, y0), markerRadius, MarkerTopLeftColor)
	fillCircle(frame, image.Pt(x1, y0), markerRadius, MarkerTopRightColor)
	fillCircle(frame, image.Pt(x0, y1), markerRadius, MarkerBottomLeftColor)
	fillCircle(frame, image.Pt(x1, y1), markerRadius, MarkerBottomRightColor)
}

func fillCircle(frame *image.RGBA, center image.Point, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			p := center.Add(image.Pt(dx, dy))
			if p.In(frame.Rect) {
				frame.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}
