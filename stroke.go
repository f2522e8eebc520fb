package colorbook

import "fmt"

// EventKind is the type of a pointer event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerCancel
	PointerLeave
	LostCapture
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	case PointerLeave:
		return "leave"
	case LostCapture:
		return "lost-capture"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a pointer event in client coordinates.
type Event struct {
	Kind      EventKind
	Position  Point
	PointerID int
}

// stroke is the state of one continuous pointer engagement with a drawing tool.
// The zero value is the idle state.
type stroke struct {
	active  bool
	pointer int
	tool    ToolState

	last    Point
	pending *Point
	carry   float64
}

// begin starts a stroke at p, in surface logical coordinates.
func (st *stroke) begin(pointer int, p Point, ts ToolState) {
	*st = stroke{
		active:  true,
		pointer: pointer,
		tool:    ts,
		last:    p,
	}
}

// owns reports whether ev belongs to the active stroke.
func (st *stroke) owns(ev Event) bool {
	return st.active && st.pointer == ev.PointerID
}

// buffer replaces the pending point. Only the newest sample is drawn on the next frame.
func (st *stroke) buffer(p Point) {
	st.pending = &p
}

// end returns the stroke to idle. The pending point is discarded.
func (st *stroke) end() {
	*st = stroke{}
}

// mark draws what a stroke leaves at its starting point.
func (st *stroke) mark(s *Surface, sess *Session) {
	switch st.tool.Tool {
	case Spray:
		s.Spray(st.last, st.tool, sess.rand())
	case Stamp:
		s.Stamp(st.last, st.tool)
	}
}

// flush draws the segment from the last drawn point to the pending one.
func (st *stroke) flush(s *Surface, sess *Session) bool {
	if !st.active || st.pending == nil {
		return false
	}
	p := *st.pending
	st.pending = nil

	switch st.tool.Tool {
	case Pen, Brush, Paintbrush:
		s.Line(st.last, p, st.tool)
	case Spray:
		s.SpraySegment(st.last, p, st.tool, sess.rand())
	case Stamp:
		st.carry = s.StampSegment(st.last, p, st.carry, st.tool)
	}
	st.last = p
	return true
}
