package colorbook

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// maskResolution is the pixel extent of the longer artwork side in the hit-test coverage masks.
const maskResolution = 1024

// coverageThreshold is the minimum alpha at which a refined pixel counts as inside a region.
const coverageThreshold = 0x80

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Rasterize renders one layer of the document into an image of w×h pixels.
// The viewBox is stretched over the whole image.
func (d *Document) Rasterize(l Layer, w, h int) (*image.NRGBA, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := d.WriteLayer(buf, l); err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := drawSVG(buf, dst); err != nil {
		return nil, fmt.Errorf("cannot rasterize the %s layer: %w", l, err)
	}
	return imaging.Clone(dst), nil
}

// readIcon parses the markup of a layer or a region mask.
func readIcon(buf *bytes.Buffer) (*oksvg.SvgIcon, error) {
	return oksvg.ReadIconStream(buf, oksvg.IgnoreErrorMode)
}

// drawSVG rasterizes the markup over the full bounds of dst.
func drawSVG(buf *bytes.Buffer, dst *image.RGBA) error {
	icon, err := readIcon(buf)
	if err != nil {
		return err
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	drawIcon(icon, dst, 0, 0, float64(w)/icon.ViewBox.W, float64(h)/icon.ViewBox.H)
	return nil
}

// drawIcon draws icon into dst, mapping the viewBox origin to (ox, oy) and
// scaling the viewBox units by sx and sy.
func drawIcon(icon *oksvg.SvgIcon, dst *image.RGBA, ox, oy, sx, sy float64) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	icon.Transform = rasterx.Identity.
		Translate(ox, oy).
		Scale(sx, sy).
		Translate(-icon.ViewBox.X, -icon.ViewBox.Y)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
}

// refineScale is the magnification of the second hit-test pass over the mask resolution.
const refineScale = 64

type coverageMask struct {
	alpha *image.Alpha
}

// at returns the coverage of the mask pixel at (x, y).
func (m *coverageMask) at(x, y int) uint8 {
	if m == nil {
		return 0
	}
	return m.alpha.AlphaAt(x, y).A
}

// MaskHitTester is the default HitTester. It lets the vector rasterizer decide containment:
// each region's geometry is rendered on its own into a coverage mask, cropped to the
// covered area. Masks are built on the first query.
//
// A mask pixel only partially covered by a region is resolved by rendering the region
// again at a much finer scale around the queried point, so regions smaller than a mask
// pixel stay hit-testable.
type MaskHitTester struct {
	doc   *Document
	scale float64
	w, h  int

	once  sync.Once
	masks []*coverageMask
	icons []*oksvg.SvgIcon

	mu   sync.Mutex
	spot *image.RGBA
}

// NewMaskHitTester returns a hit tester for the regions of doc.
func NewMaskHitTester(doc *Document) *MaskHitTester {
	size := doc.Size()
	scale := maskResolution / math.Max(size.W, size.H)
	w, h := backingSize(size, scale)

	return &MaskHitTester{
		doc:   doc,
		scale: scale,
		w:     w,
		h:     h,
		spot:  image.NewRGBA(image.Rect(0, 0, 3, 3)),
	}
}

// HitTest implements HitTester. Later regions are painted on top of earlier ones, so the
// search runs in reverse document order.
func (m *MaskHitTester) HitTest(p Point) (RegionID, bool) {
	m.once.Do(m.build)

	x := int(math.Floor(p.X * m.scale))
	y := int(math.Floor(p.Y * m.scale))
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return 0, false
	}
	for id := len(m.masks) - 1; id >= 0; id-- {
		mask := m.masks[id]
		if mask == nil {
			// Too small to leave any coverage in the mask.
			if m.refine(id, p) {
				return RegionID(id), true
			}
			continue
		}
		switch a := mask.at(x, y); {
		case a == 0:
		case a == 0xff:
			return RegionID(id), true
		case m.refine(id, p):
			return RegionID(id), true
		}
	}
	return 0, false
}

// refine renders the region into a 3×3 pixel window centered on p, at refineScale times
// the mask resolution, and reports whether the center pixel is covered.
func (m *MaskHitTester) refine(id int, p Point) bool {
	icon := m.icons[id]
	if icon == nil || len(icon.SVGPaths) == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.spot.Pix {
		m.spot.Pix[i] = 0
	}
	f := m.scale * refineScale
	sx := f * m.doc.Size().W / icon.ViewBox.W
	sy := f * m.doc.Size().H / icon.ViewBox.H
	drawIcon(icon, m.spot, 1.5-p.X*f, 1.5-p.Y*f, sx, sy)

	return m.spot.Pix[m.spot.PixOffset(1, 1)+3] >= coverageThreshold
}

func (m *MaskHitTester) build() {
	m.masks = make([]*coverageMask, m.doc.Len())
	m.icons = make([]*oksvg.SvgIcon, m.doc.Len())

	dst := image.NewRGBA(image.Rect(0, 0, m.w, m.h))
	buf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)

	for id := range m.masks {
		for i := range dst.Pix {
			dst.Pix[i] = 0
		}
		buf.Reset()
		if err := m.doc.writeRegionMask(buf, RegionID(id)); err != nil {
			continue
		}
		icon, err := readIcon(buf)
		if err != nil {
			continue
		}
		drawIcon(icon, dst, 0, 0, float64(m.w)/icon.ViewBox.W, float64(m.h)/icon.ViewBox.H)
		m.icons[id] = icon
		m.masks[id] = crop(dst)
	}
}

// crop copies the alpha channel of the covered part of img.
func crop(img *image.RGBA) *coverageMask {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return nil
	}

	alpha := image.NewAlpha(image.Rect(minX, minY, maxX+1, maxY+1))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			alpha.Pix[alpha.PixOffset(x, y)] = img.Pix[img.PixOffset(x, y)+3]
		}
	}
	return &coverageMask{alpha: alpha}
}
