// Package landmark holds the facial landmark data model: points, the eye
// corner index tables of the 68-point model and the bounding boxes derived
// from them.
package landmark

import (
	"image"

	"github.com/pkg/errors"
)

// NumPoints is the size of a shape produced by the 68-point landmark model.
const NumPoints = 68

// Point is a pixel coordinate produced by a Detector.
type Point = image.Point

var ErrShortShape = errors.New("shape is missing eye landmarks")

// IndexSet maps the corner roles of one eye to indices in a shape.
type IndexSet struct {
	Top, Bottom, Left, Right int
}

// Left and right are from the camera's point of view, so LeftEye is the
// subject's right eye.
var (
	LeftEye  = IndexSet{Top: 37, Bottom: 41, Left: 36, Right: 39}
	RightEye = IndexSet{Top: 43, Bottom: 47, Left: 42, Right: 45}
)

func (is IndexSet) Indices() [4]int {
	return [4]int{is.Left, is.Right, is.Top, is.Bottom}
}

// Points picks the four corner points out of shape.
func (is IndexSet) Points(shape []Point) ([4]Point, error) {
	var pts [4]Point
	for i, idx := range is.Indices() {
		if idx < 0 || idx >= len(shape) {
			return pts, errors.Wrapf(ErrShortShape, "index %d of %d points", idx, len(shape))
		}
		pts[i] = shape[idx]
	}
	return pts, nil
}

// Eye returns the bounds of the eye described by is.
func (is IndexSet) Eye(shape []Point) (Bounds, error) {
	pts, err := is.Points(shape)
	if err != nil {
		return Bounds{}, err
	}
	return BoundsFromPoints(pts[:]...), nil
}
