package worker

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/landmark"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// maxMessage bounds a single response so a confused helper cannot make us
// allocate without limit.
const maxMessage = 64 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	opDetect  = "detect"
	opPredict = "predict"
)

type request struct {
	Op     string  `json:"op"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Gray   []byte  `json:"gray"` // row major, no padding
	Region *[4]int `json:"region,omitempty"`
}

type response struct {
	Regions [][4]int `json:"regions,omitempty"`
	Points  [][2]int `json:"points,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func newRequest(op string, gray *image.Gray) request {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	pix := gray.Pix
	if gray.Stride != w || gray.Rect.Min != (image.Point{}) {
		pix = make([]byte, 0, w*h)
		for y := gray.Rect.Min.Y; y < gray.Rect.Max.Y; y++ {
			i := gray.PixOffset(gray.Rect.Min.X, y)
			pix = append(pix, gray.Pix[i:i+w]...)
		}
	}
	return request{Op: op, Width: w, Height: h, Gray: pix}
}

func (r response) regions() []image.Rectangle {
	out := make([]image.Rectangle, 0, len(r.Regions))
	for _, reg := range r.Regions {
		out = append(out, image.Rect(reg[0], reg[1], reg[2], reg[3]))
	}
	return out
}

func (r response) points() []landmark.Point {
	out := make([]landmark.Point, 0, len(r.Points))
	for _, p := range r.Points {
		out = append(out, image.Pt(p[0], p[1]))
	}
	return out
}

// writeMessage frames v as [uint32 length][json].
func writeMessage(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
		return errors.Wrap(err, "write length")
	}
	if _, err := w.Write(b); err != nil {
		return errors.Wrap(err, "write body")
	}
	return nil
}

func readMessage(r io.Reader, v interface{}) error {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return errors.Wrap(err, "read length")
	}
	if n > maxMessage {
		return errors.Errorf("message of %d bytes exceeds limit", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return errors.Wrap(err, "read body")
	}
	return errors.Wrap(json.Unmarshal(b, v), "json.Unmarshal")
}
