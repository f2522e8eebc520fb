package colorbook

import "math"

// glyphSteps is the number of samples used for the curved glyph outlines.
const glyphSteps = 72

// glyphs holds the stamp outlines, closed polygons fitted in the unit circle.
var glyphs = map[Shape][]Point{
	Circle:  polar(func(float64) float64 { return 1 }),
	Star:    star(5, 0.45),
	Heart:   heart(),
	Flower:  polar(func(t float64) float64 { return 0.55 + 0.45*math.Abs(math.Cos(2.5*t)) }),
	Diamond: {{0, -1}, {0.7, 0}, {0, 1}, {-0.7, 0}},
}

// polar samples a closed curve given as radius by angle.
func polar(r func(t float64) float64) []Point {
	pts := make([]Point, glyphSteps)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / glyphSteps
		rad := r(t)
		pts[i] = Point{X: rad * math.Sin(t), Y: -rad * math.Cos(t)}
	}
	return pts
}

func star(spikes int, inner float64) []Point {
	pts := make([]Point, 0, spikes*2)
	for i := 0; i < spikes*2; i++ {
		r := 1.0
		if i%2 == 1 {
			r = inner
		}
		t := math.Pi * float64(i) / float64(spikes)
		pts = append(pts, Point{X: r * math.Sin(t), Y: -r * math.Cos(t)})
	}
	return pts
}

// heart samples the classic parametric heart curve, scaled into the unit circle.
func heart() []Point {
	pts := make([]Point, glyphSteps)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / glyphSteps
		x := 16 * math.Pow(math.Sin(t), 3)
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
		pts[i] = Point{X: x / 17, Y: -(y + 2.5) / 17}
	}
	return pts
}

// stampSpacing is the distance traveled between two stamps.
func stampSpacing(size float64) float64 {
	return math.Max(6, size)
}
