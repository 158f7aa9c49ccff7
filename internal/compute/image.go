package compute

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// LoadOverlay decodes the overlay image at path. Any format imaging can open
// is accepted.
func LoadOverlay(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "imaging.Open")
	}
	if img.Bounds().Empty() {
		return nil, errors.Errorf("overlay %s is empty", path)
	}
	return img, nil
}

// Grayscale returns the single channel intensity form of frame used for
// detection. frame is not modified.
func Grayscale(frame *image.RGBA) *image.Gray {
	gray := image.NewGray(frame.Bounds())
	draw.Draw(gray, gray.Rect, frame, frame.Rect.Min, draw.Src)
	return gray
}

// opaque returns a copy of img with every alpha set to 255. Color values are
// kept as stored, so fully transparent pixels keep their RGB.
func opaque(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// resize scales img to exactly width x height with a box filter, which
// averages source areas when shrinking.
func resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Box)
}
