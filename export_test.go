package colorbook

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// paintedSession fills the square red and draws a blue brush line across its left edge.
func paintedSession(t *testing.T) *Session {
	t.Helper()
	s := newSession(t, pageSVG)
	require.NoError(t, s.SelectColor("#ff0000"))
	_, ok := s.FillRegionAt(Pt(100, 100))
	require.True(t, ok)

	require.NoError(t, s.SelectTool("brush"))
	require.NoError(t, s.SelectColor("#0000ff"))
	require.NoError(t, s.SelectSize(10))
	drawStroke(s, Pt(50, 80), Pt(50, 160))
	drawStroke(s, Pt(120, 120), Pt(140, 120))
	return s
}

func TestExport_Flat(t *testing.T) {
	assert := assert.New(t)
	s := paintedSession(t)

	img, err := s.Render(context.Background(), ExportOptions{})
	require.NoError(t, err)
	assert.Equal(color.NRGBA{R: 255, A: 255}, img.NRGBAAt(100, 100))
	// The paint covers the outline.
	assert.Equal(color.NRGBA{B: 255, A: 255}, img.NRGBAAt(50, 100))
	assert.Equal(color.NRGBA{A: 255}, img.NRGBAAt(50, 200))
	assert.Equal(uint8(0), img.NRGBAAt(10, 10).A)
}

func TestExport_Layered(t *testing.T) {
	assert := assert.New(t)
	s := paintedSession(t)

	img, err := s.Render(context.Background(), ExportOptions{Layered: true, Background: color.White})
	require.NoError(t, err)
	// The line art is drawn above the paint.
	assert.Equal(color.NRGBA{A: 255}, img.NRGBAAt(50, 100))
	assert.Equal(color.NRGBA{B: 255, A: 255}, img.NRGBAAt(130, 120))
	assert.Equal(color.NRGBA{R: 255, A: 255}, img.NRGBAAt(100, 100))
	assert.Equal(color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(10, 10))
}

func TestExport_Blend(t *testing.T) {
	assert := assert.New(t)
	s := paintedSession(t)

	img, err := s.Render(context.Background(), ExportOptions{Layered: true, Blend: "multiply"})
	require.NoError(t, err)
	// Blue multiplied with the red fill.
	assert.Equal(color.NRGBA{A: 255}, img.NRGBAAt(130, 120))

	// An unknown blend mode falls back to normal compositing.
	img, err = s.Render(context.Background(), ExportOptions{Layered: true, Blend: "dissolve"})
	require.NoError(t, err)
	assert.Equal(color.NRGBA{B: 255, A: 255}, img.NRGBAAt(130, 120))
}

func TestExport_SessionBackground(t *testing.T) {
	s := paintedSession(t)
	s.Background = color.White

	for _, layered := range []bool{false, true} {
		img, err := s.Render(context.Background(), ExportOptions{Layered: layered})
		require.NoError(t, err)
		// The fills and the paint show above the background.
		assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(100, 100), "layered=%v", layered)
		assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(130, 120), "layered=%v", layered)
		assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(10, 10), "layered=%v", layered)
	}

	// The export option wins over the session default.
	img, err := s.Render(context.Background(), ExportOptions{Background: color.Black})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 255}, img.NRGBAAt(10, 10))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(100, 100))
}

func TestExport_Composite(t *testing.T) {
	assert := assert.New(t)
	s := paintedSession(t)
	// A stroke over the blank page, away from every region.
	drawStroke(s, Pt(300, 30), Pt(340, 30))

	tests := []struct {
		op          string
		onFill, off color.NRGBA
	}{
		{"", color.NRGBA{B: 255, A: 255}, color.NRGBA{B: 255, A: 255}},
		{"src_over", color.NRGBA{B: 255, A: 255}, color.NRGBA{B: 255, A: 255}},
		{"dst_over", color.NRGBA{R: 255, A: 255}, color.NRGBA{B: 255, A: 255}},
		{"src_atop", color.NRGBA{B: 255, A: 255}, color.NRGBA{}},
		{"dst_out", color.NRGBA{}, color.NRGBA{}},
	}
	for _, tt := range tests {
		img, err := s.Render(context.Background(), ExportOptions{Layered: true, Composite: tt.op})
		require.NoError(t, err)
		assert.Equal(tt.onFill, img.NRGBAAt(130, 120), tt.op)
		assert.Equal(tt.off, img.NRGBAAt(320, 30), tt.op)
		// Fills without paint over them are kept by every operation.
		assert.Equal(color.NRGBA{R: 255, A: 255}, img.NRGBAAt(200, 200), tt.op)
	}

	// An unknown operation is logged and falls back to source-over.
	var logs bytes.Buffer
	s.Logger = log.New(&logs, "", 0)
	img, err := s.Render(context.Background(), ExportOptions{Layered: true, Composite: "multiply"})
	require.NoError(t, err)
	assert.Equal(color.NRGBA{B: 255, A: 255}, img.NRGBAAt(130, 120))
	assert.Contains(logs.String(), "multiply")
}

func TestExport_Scale(t *testing.T) {
	assert := assert.New(t)
	s := paintedSession(t)

	img, err := s.Render(context.Background(), ExportOptions{Scale: 0.5})
	require.NoError(t, err)
	assert.Equal(image.Rect(0, 0, 400, 300), img.Bounds())
	assert.Equal(color.NRGBA{R: 255, A: 255}, img.NRGBAAt(50, 50))
}

func TestExport_FailedLayerOmitted(t *testing.T) {
	assert := assert.New(t)
	var logs bytes.Buffer
	s := &Session{Logger: log.New(&logs, "", 0)}
	s.init()

	rect := image.Rect(0, 0, 4, 4)
	red := image.NewNRGBA(rect)
	fillImage(red, color.NRGBA{R: 255, A: 255})

	img, err := s.composite(context.Background(), rect, nil, []layerSource{
		{name: "fill", load: func(context.Context) (*image.NRGBA, error) { return red, nil }},
		{name: "outline", load: func(context.Context) (*image.NRGBA, error) { return nil, errors.New("boom") }},
	})
	require.NoError(t, err)
	assert.Equal(color.NRGBA{R: 255, A: 255}, img.NRGBAAt(2, 2))
	assert.Contains(logs.String(), "outline")
	assert.Contains(logs.String(), "boom")
}

func TestExport_Cancelled(t *testing.T) {
	s := paintedSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Render(ctx, ExportOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport_Encodings(t *testing.T) {
	assert := assert.New(t)
	s := paintedSession(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf, ExportOptions{Format: PNG}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(image.Rect(0, 0, 800, 600), img.Bounds())

	buf.Reset()
	require.NoError(t, s.Export(ctx, &buf, ExportOptions{Format: BMP}))
	img, err = bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(800, img.Bounds().Dx())

	buf.Reset()
	require.NoError(t, s.Export(ctx, &buf, ExportOptions{Format: PDF}))
	assert.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestExport_File(t *testing.T) {
	assert := assert.New(t)
	s := paintedSession(t)
	dir := t.TempDir()
	ctx := context.Background()

	for _, name := range []string{"page.png", "page.jpg", "page.bmp", "page.pdf"} {
		path := filepath.Join(dir, name)
		assert.NoError(s.ExportFile(ctx, path, ExportOptions{}), name)
		fi, err := os.Stat(path)
		assert.NoError(err, name)
		assert.NotZero(fi.Size(), name)
	}

	path := filepath.Join(dir, "page.gif")
	assert.Error(s.ExportFile(ctx, path, ExportOptions{}))
	_, err := os.Stat(path)
	assert.True(os.IsNotExist(err))
}

func TestFormatFromPath(t *testing.T) {
	assert := assert.New(t)

	for path, want := range map[string]Format{
		"a.png":  PNG,
		"a":      PNG,
		"a.JPG":  JPEG,
		"a.jpeg": JPEG,
		"a.bmp":  BMP,
		"a.pdf":  PDF,
	} {
		f, err := FormatFromPath(path)
		assert.NoError(err, path)
		assert.Equal(want, f, path)
	}
	_, err := FormatFromPath("a.tiff")
	assert.Error(err)
}
