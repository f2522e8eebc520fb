package colorbook

import "math"

// Point is a position in a 2D coordinate space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns the vector p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp returns the point at t along the segment p -> q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Size is a width and height pair.
type Size struct {
	W, H float64
}

// Empty reports whether s has no area.
func (s Size) Empty() bool {
	return !(s.W > 0 && s.H > 0)
}

// Rect is an on-screen bounding rectangle, expressed as origin plus size
// the way a host layout engine reports it.
type Rect struct {
	X, Y, W, H float64
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Mapper converts client positions into the pixel space of a surface whose
// backing store may be oversampled or scaled relative to its displayed box.
type Mapper struct {
	// Bounds is the surface's on-screen rectangle in client units.
	Bounds Rect
	// Backing is the surface's own coordinate extent: backing pixels for a raster,
	// viewBox units for a vector document.
	Backing Size
}

// Map returns p in backing coordinates. A degenerate bounding rectangle maps every position to the origin.
func (m Mapper) Map(p Point) Point {
	if m.Bounds.Size().Empty() {
		return Point{}
	}
	return Point{
		X: (p.X - m.Bounds.X) * (m.Backing.W / m.Bounds.W),
		Y: (p.Y - m.Bounds.Y) * (m.Backing.H / m.Bounds.H),
	}
}

// Layout describes the host element the surfaces are displayed in.
type Layout struct {
	Bounds Rect
	DPR    float64
}

// Ratio returns the device pixel ratio, defaulting to 1.
func (l Layout) Ratio() float64 {
	if l.DPR <= 0 || math.IsNaN(l.DPR) || math.IsInf(l.DPR, 0) {
		return 1
	}
	return l.DPR
}

// Logical maps a client position into a space of the given logical size.
func (l Layout) Logical(p Point, logical Size) Point {
	return Mapper{Bounds: l.Bounds, Backing: logical}.Map(p)
}

// Pixel maps a client position into the backing pixels of a surface of the given
// logical size, taking the device pixel ratio into account.
func (l Layout) Pixel(p Point, logical Size) Point {
	dpr := l.Ratio()
	return Mapper{
		Bounds:  l.Bounds,
		Backing: Size{W: logical.W * dpr, H: logical.H * dpr},
	}.Map(p)
}

// backingSize returns the integer pixel dimensions for a logical size at the given ratio.
func backingSize(logical Size, dpr float64) (int, int) {
	w := int(math.Round(logical.W * dpr))
	h := int(math.Round(logical.H * dpr))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
