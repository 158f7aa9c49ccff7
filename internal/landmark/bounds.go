package landmark

import (
	"fmt"
	"image"
)

// Bounds is an axis aligned box over a set of landmark points. Max values are
// inclusive: a box over a single point has zero width and height.
type Bounds struct {
	XMin, XMax, YMin, YMax int
}

// BoundsFromPoints returns the min/max box over pts. The zero Bounds is
// returned for no points.
func BoundsFromPoints(pts ...Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{
		XMin: pts[0].X, XMax: pts[0].X,
		YMin: pts[0].Y, YMax: pts[0].Y,
	}
	for _, p := range pts[1:] {
		if p.X < b.XMin {
			b.XMin = p.X
		}
		if p.X > b.XMax {
			b.XMax = p.X
		}
		if p.Y < b.YMin {
			b.YMin = p.Y
		}
		if p.Y > b.YMax {
			b.YMax = p.Y
		}
	}
	return b
}

// Width and Height are the differences between max and min, so a single
// point box is 0x0.
func (b Bounds) Width() int  { return b.XMax - b.XMin }
func (b Bounds) Height() int { return b.YMax - b.YMin }

// Inflate grows the box by amount and returns it as a destination rectangle.
// The origin moves up and left by amount/2 and the size grows by amount, so
// for even amounts the result spans [min-amount/2, max+amount/2).
//
// The rectangle is not canonicalized: an inflated box of non-positive size is
// Empty.
func (b Bounds) Inflate(amount int) image.Rectangle {
	half := amount / 2
	origin := image.Pt(b.XMin-half, b.YMin-half)
	return image.Rectangle{
		Min: origin,
		Max: origin.Add(image.Pt(b.Width()+amount, b.Height()+amount)),
	}
}

func (b Bounds) String() string {
	return fmt.Sprintf("x[%d,%d] y[%d,%d]", b.XMin, b.XMax, b.YMin, b.YMax)
}
