package landmark

import (
	"context"
	"image"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Detector locates faces in a grayscale image and predicts the landmark shape
// of each one. Implementations must be safe to call once per frame from a
// single goroutine; they need not be safe for concurrent use.
type Detector interface {
	Detect(ctx context.Context, gray *image.Gray) ([]image.Rectangle, error)
	Predict(ctx context.Context, gray *image.Gray, region image.Rectangle) ([]Point, error)
}

// ErrUnknownRegion is returned by Predict for a region Detect never reported.
var ErrUnknownRegion = errors.New("region was not returned by Detect")

// Face is a detected region together with its landmark shape.
type Face struct {
	Region image.Rectangle
	Points []Point
}

// Scripted is a Detector that returns the same faces for every image. It is
// used to replay recorded landmarks and in tests.
type Scripted struct {
	Faces []Face
	Err   error // returned by Detect when set
}

var _ Detector = &Scripted{}

func (s *Scripted) Detect(ctx context.Context, gray *image.Gray) ([]image.Rectangle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	regions := make([]image.Rectangle, 0, len(s.Faces))
	for _, f := range s.Faces {
		regions = append(regions, f.Region)
	}
	return regions, nil
}

func (s *Scripted) Predict(ctx context.Context, gray *image.Gray, region image.Rectangle) ([]Point, error) {
	for _, f := range s.Faces {
		if f.Region == region {
			return f.Points, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownRegion, "%v", region)
}

type scriptedFace struct {
	Region [4]int   `json:"region"` // x0, y0, x1, y1
	Points [][2]int `json:"points"`
}

// LoadScripted reads recorded faces from a JSON file of the form
// [{"region":[x0,y0,x1,y1],"points":[[x,y],...]}].
func LoadScripted(path string) (*Scripted, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.ReadFile")
	}
	var raw []scriptedFace
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	s := &Scripted{Faces: make([]Face, 0, len(raw))}
	for _, rf := range raw {
		f := Face{
			Region: image.Rect(rf.Region[0], rf.Region[1], rf.Region[2], rf.Region[3]),
			Points: make([]Point, 0, len(rf.Points)),
		}
		for _, p := range rf.Points {
			f.Points = append(f.Points, image.Pt(p[0], p[1]))
		}
		s.Faces = append(s.Faces, f)
	}
	return s, nil
}
