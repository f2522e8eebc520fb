package colorbook

import (
	"fmt"
	"strconv"
	"strings"
)

// FillOp fills the region under a point.
type FillOp struct {
	At    Point
	Color string
}

// StrokeOp draws one stroke through a polyline.
type StrokeOp struct {
	Tool   string
	Color  string
	Size   float64
	Points []Point
}

// Script is a list of operations replayed on a freshly loaded page: every fill,
// then every stroke, in the given order.
type Script struct {
	Fills   []FillOp
	Strokes []StrokeOp
}

// ParseFillOp parses a fill given as "x,y,color".
func ParseFillOp(s string) (FillOp, error) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) != 3 {
		return FillOp{}, fmt.Errorf("invalid fill %q, expected x,y,color", s)
	}
	p, err := parsePoint(parts[0] + "," + parts[1])
	if err != nil {
		return FillOp{}, err
	}
	return FillOp{At: p, Color: strings.TrimSpace(parts[2])}, nil
}

// ParseStrokeOp parses a stroke given as "tool:color:size:x1,y1;x2,y2;...".
func ParseStrokeOp(s string) (StrokeOp, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 {
		return StrokeOp{}, fmt.Errorf("invalid stroke %q, expected tool:color:size:x1,y1;x2,y2", s)
	}
	tool, err := ParseTool(parts[0])
	if err != nil {
		return StrokeOp{}, err
	}
	size, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return StrokeOp{}, fmt.Errorf("invalid stroke size: %w", err)
	}

	op := StrokeOp{Tool: tool.String(), Color: parts[1], Size: size}
	for _, pt := range strings.Split(parts[3], ";") {
		if strings.TrimSpace(pt) == "" {
			continue
		}
		p, err := parsePoint(pt)
		if err != nil {
			return StrokeOp{}, err
		}
		op.Points = append(op.Points, p)
	}
	if len(op.Points) == 0 {
		return StrokeOp{}, fmt.Errorf("stroke %q has no points", s)
	}
	return op, nil
}

func parsePoint(s string) (Point, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return Point{}, fmt.Errorf("invalid point %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}

// Apply replays the script on s, the same way pointer input would.
func (sc Script) Apply(s *Session) error {
	if len(sc.Fills) > 0 {
		if err := s.SelectTool(Fill.String()); err != nil {
			return err
		}
	}
	for _, f := range sc.Fills {
		if err := s.SelectColor(f.Color); err != nil {
			return err
		}
		s.FillRegionAt(f.At)
	}

	for _, st := range sc.Strokes {
		if err := s.SelectTool(st.Tool); err != nil {
			return err
		}
		if err := s.SelectColor(st.Color); err != nil {
			return err
		}
		if err := s.SelectSize(st.Size); err != nil {
			return err
		}
		if st.Tool == Fill.String() {
			s.FillRegionAt(st.Points[0])
			continue
		}

		s.HandleEvent(Event{Kind: PointerDown, Position: st.Points[0]})
		for _, p := range st.Points[1:] {
			s.HandleEvent(Event{Kind: PointerMove, Position: p})
			s.Frame()
		}
		s.HandleEvent(Event{Kind: PointerUp, Position: st.Points[len(st.Points)-1]})
	}
	return nil
}
