package colorbook

import (
	"bytes"
	"compress/flate"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// sprayDot is the side of a single spray dot, in logical units.
const sprayDot = 1.5

// sprayStep is the resampling interval of spray segments, in logical units.
const sprayStep = 6

// Surface is the freehand paint layer: a transparent pixel buffer whose backing
// resolution is the logical size times the device pixel ratio. It stays transparent
// where nothing was drawn, so the fills below show through on export. All drawing methods
// take logical coordinates and are clipped to the buffer.
type Surface struct {
	img    *image.RGBA
	dc     *gg.Context
	size   Size
	dpr    float64
	sx, sy float64
}

// NewSurface allocates a transparent surface.
func NewSurface(size Size, dpr float64) *Surface {
	s := &Surface{}
	s.Reset(size, dpr)
	return s
}

// Reset reallocates the buffer for the given logical size and pixel ratio, discarding the content.
func (s *Surface) Reset(size Size, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	w, h := backingSize(size, dpr)

	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.size, s.dpr = size, dpr
	s.sx, s.sy = float64(w)/size.W, float64(h)/size.H

	s.dc = gg.NewContextForRGBA(s.img)
	s.dc.Scale(s.sx, s.sy)
	s.dc.SetLineCapRound()
	s.dc.SetLineJoinRound()
}

// Resize reallocates the buffer and redraws the preserved content scaled into the new size.
func (s *Surface) Resize(size Size, dpr float64) {
	old := s.img
	s.Reset(size, dpr)

	b := s.img.Bounds()
	if old.Bounds().Eq(b) {
		draw.Draw(s.img, b, old, image.Point{}, draw.Src)
		return
	}
	scaled := imaging.Resize(old, b.Dx(), b.Dy(), imaging.Linear)
	draw.Draw(s.img, b, scaled, image.Point{}, draw.Src)
}

// Image returns the backing buffer. The caller must not modify it.
func (s *Surface) Image() *image.RGBA { return s.img }

// Size returns the logical size.
func (s *Surface) Size() Size { return s.size }

// DPR returns the device pixel ratio of the backing buffer.
func (s *Surface) DPR() float64 { return s.dpr }

// Bounds returns the backing buffer bounds, in pixels.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Line draws a round capped segment between two points.
func (s *Surface) Line(a, b Point, ts ToolState) {
	s.dc.SetColor(ts.paint())
	// The context transform does not apply to the line width.
	s.dc.SetLineWidth(ts.Size * (s.sx + s.sy) / 2)
	s.dc.MoveTo(a.X, a.Y)
	s.dc.LineTo(b.X, b.Y)
	s.dc.Stroke()
}

// Spray scatters ceil(1.5·size) dots inside a circle of diameter size centered on p.
// Each dot is a separate draw call, so dots build up where they overlap.
func (s *Surface) Spray(p Point, ts ToolState, rnd *rand.Rand) {
	s.dc.SetColor(ts.paint())

	n := int(math.Ceil(1.5 * ts.Size))
	radius := ts.Size / 2
	for i := 0; i < n; i++ {
		angle := rnd.Float64() * 2 * math.Pi
		dist := rnd.Float64() * radius
		s.dc.DrawRectangle(p.X+math.Cos(angle)*dist, p.Y+math.Sin(angle)*dist, sprayDot, sprayDot)
		s.dc.Fill()
	}
}

// SpraySegment sprays along the segment a -> b, with at most sprayStep units between
// two samples. The start point is not sprayed, it was sprayed by the previous call.
func (s *Surface) SpraySegment(a, b Point, ts ToolState, rnd *rand.Rand) {
	n := int(math.Ceil(a.Dist(b) / sprayStep))
	if n < 1 {
		n = 1
	}
	for i := 1; i <= n; i++ {
		s.Spray(a.Lerp(b, float64(i)/float64(n)), ts, rnd)
	}
}

// Stamp places the selected glyph centered on p.
func (s *Surface) Stamp(p Point, ts ToolState) {
	outline, ok := glyphs[ts.Shape]
	if !ok {
		return
	}
	r := ts.Size / 2
	s.dc.SetColor(ts.paint())
	s.dc.NewSubPath()
	for i, pt := range outline {
		x, y := p.X+pt.X*r, p.Y+pt.Y*r
		if i == 0 {
			s.dc.MoveTo(x, y)
			continue
		}
		s.dc.LineTo(x, y)
	}
	s.dc.ClosePath()
	s.dc.Fill()
}

// StampSegment stamps along the segment a -> b every stampSpacing units of travel.
// carry is the distance already traveled since the last stamp; the updated carry is returned.
func (s *Surface) StampSegment(a, b Point, carry float64, ts ToolState) float64 {
	spacing := stampSpacing(ts.Size)
	dist := a.Dist(b)
	if dist == 0 {
		return carry
	}
	next := spacing - carry
	for next <= dist {
		s.Stamp(a.Lerp(b, next/dist), ts)
		next += spacing
	}
	return dist - (next - spacing)
}

// FillAll paints the whole logical rectangle with the tool color.
func (s *Surface) FillAll(ts ToolState) {
	s.dc.SetColor(ts.paint())
	s.dc.DrawRectangle(0, 0, s.size.W, s.size.H)
	s.dc.Fill()
}

// Clear erases the content.
func (s *Surface) Clear() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}

// rasterBlob is a compressed copy of the backing buffer.
type rasterBlob struct {
	w, h int
	data []byte
}

// capture serializes the buffer content.
func (s *Surface) capture() (*rasterBlob, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, &SnapshotError{Err: err}
	}
	if _, err := zw.Write(s.img.Pix); err != nil {
		return nil, &SnapshotError{Err: err}
	}
	if err := zw.Close(); err != nil {
		return nil, &SnapshotError{Err: err}
	}
	b := s.img.Bounds()
	return &rasterBlob{w: b.Dx(), h: b.Dy(), data: buf.Bytes()}, nil
}

// restore replaces the buffer content with a captured one, scaling it when the
// surface was resized since the capture.
func (s *Surface) restore(blob *rasterBlob) error {
	img := image.NewRGBA(image.Rect(0, 0, blob.w, blob.h))
	zr := flate.NewReader(bytes.NewReader(blob.data))
	defer zr.Close()

	if _, err := io.ReadFull(zr, img.Pix); err != nil {
		return fmt.Errorf("cannot decode the snapshot: %w", err)
	}

	b := s.img.Bounds()
	if img.Bounds().Eq(b) {
		copy(s.img.Pix, img.Pix)
		return nil
	}
	scaled := imaging.Resize(img, b.Dx(), b.Dy(), imaging.Linear)
	draw.Draw(s.img, b, scaled, image.Point{}, draw.Src)
	return nil
}
