package landmark

import (
	"context"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBoundsFromPoints(t *testing.T) {
	testCases := []struct {
		desc string
		pts  []Point
		want Bounds
	}{
		{
			desc: "empty",
			want: Bounds{},
		},
		{
			desc: "single point",
			pts:  []Point{{X: 5, Y: 7}},
			want: Bounds{XMin: 5, XMax: 5, YMin: 7, YMax: 7},
		},
		{
			desc: "eye corners",
			pts:  []Point{{X: 100, Y: 210}, {X: 130, Y: 208}, {X: 112, Y: 201}, {X: 118, Y: 215}},
			want: Bounds{XMin: 100, XMax: 130, YMin: 201, YMax: 215},
		},
		{
			desc: "negative coordinates",
			pts:  []Point{{X: -3, Y: 4}, {X: 2, Y: -9}},
			want: Bounds{XMin: -3, XMax: 2, YMin: -9, YMax: 4},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			require.Equal(t, tC.want, BoundsFromPoints(tC.pts...))
		})
	}
}

func TestBoundsFromPointsRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		var pts [4]Point
		for j := range pts {
			pts[j] = image.Pt(r.Intn(2000)-1000, r.Intn(2000)-1000)
		}
		b := BoundsFromPoints(pts[:]...)
		require.LessOrEqual(t, b.XMin, b.XMax)
		require.LessOrEqual(t, b.YMin, b.YMax)

		xs := []int{pts[0].X, pts[1].X, pts[2].X, pts[3].X}
		ys := []int{pts[0].Y, pts[1].Y, pts[2].Y, pts[3].Y}
		require.Equal(t, min(xs[0], xs[1], xs[2], xs[3]), b.XMin)
		require.Equal(t, max(xs[0], xs[1], xs[2], xs[3]), b.XMax)
		require.Equal(t, min(ys[0], ys[1], ys[2], ys[3]), b.YMin)
		require.Equal(t, max(ys[0], ys[1], ys[2], ys[3]), b.YMax)
	}
}

func TestInflate(t *testing.T) {
	b := Bounds{XMin: 50, XMax: 60, YMin: 40, YMax: 50}
	r := b.Inflate(20)
	require.Equal(t, image.Rect(40, 30, 70, 60), r)
	require.Equal(t, 30, r.Dx())
	require.Equal(t, 30, r.Dy())

	// odd margins keep the size, the extra pixel lands on the max side
	r = b.Inflate(5)
	require.Equal(t, image.Pt(48, 38), r.Min)
	require.Equal(t, 15, r.Dx())

	degenerate := BoundsFromPoints(image.Pt(3, 3))
	require.True(t, degenerate.Inflate(0).Empty())
	require.False(t, degenerate.Inflate(2).Empty())
}

func TestEyeIndexSets(t *testing.T) {
	require.Equal(t, [4]int{36, 39, 37, 41}, LeftEye.Indices())
	require.Equal(t, [4]int{42, 45, 43, 47}, RightEye.Indices())

	shape := make([]Point, NumPoints)
	for i := range shape {
		shape[i] = image.Pt(i*10, 1000-i)
	}
	left, err := LeftEye.Eye(shape)
	require.NoError(t, err)
	require.Equal(t, Bounds{XMin: 360, XMax: 410, YMin: 959, YMax: 964}, left)

	right, err := RightEye.Eye(shape)
	require.NoError(t, err)
	require.Equal(t, Bounds{XMin: 420, XMax: 470, YMin: 953, YMax: 958}, right)
}

func TestEyeShortShape(t *testing.T) {
	_, err := RightEye.Eye(make([]Point, 5))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrShortShape))
}

func TestScripted(t *testing.T) {
	ctx := context.Background()
	face := Face{Region: image.Rect(0, 0, 10, 10), Points: []Point{{X: 1, Y: 2}}}
	s := &Scripted{Faces: []Face{face}}

	regions, err := s.Detect(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, []image.Rectangle{face.Region}, regions)

	pts, err := s.Predict(ctx, nil, face.Region)
	require.NoError(t, err)
	require.Equal(t, face.Points, pts)

	_, err = s.Predict(ctx, nil, image.Rect(1, 1, 2, 2))
	require.True(t, errors.Is(err, ErrUnknownRegion))
}

func TestLoadScripted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faces.json")
	err := os.WriteFile(path, []byte(`[{"region":[10,20,110,120],"points":[[1,2],[3,4]]}]`), 0600)
	require.NoError(t, err)

	s, err := LoadScripted(path)
	require.NoError(t, err)
	require.Len(t, s.Faces, 1)
	require.Equal(t, image.Rect(10, 20, 110, 120), s.Faces[0].Region)
	require.Equal(t, []Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, s.Faces[0].Points)

	_, err = LoadScripted(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
