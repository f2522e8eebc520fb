package colorbook

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/esimov/colorbook/utils"
)

// defaultCanvas is the surface size used before any artwork or layout is known.
var defaultCanvas = Size{W: defaultSide, H: defaultSide}

// Session is the coloring engine: the loaded artwork, the paint surface, the tool
// selection and the undo history. Every entry point runs to completion under one
// lock, so a Session can be driven from several goroutines.
//
// The exported fields are options and must be set before the first call.
type Session struct {
	// Marker is the class name tagging the paintable regions. Defaults to DefaultMarker.
	Marker string
	// HistorySize is the undo capacity. Defaults to DefaultHistorySize.
	HistorySize int
	// DPR is the device pixel ratio used until the host reports a layout.
	DPR float64
	// Background is drawn under every layer on export when ExportOptions.Background is nil.
	// The paint surface itself always stays transparent.
	Background color.Color
	// NewHitTester builds the hit tester of a loaded artwork. Defaults to NewMaskHitTester.
	NewHitTester func(*Document) HitTester
	// Rand drives the spray tool.
	Rand   *rand.Rand
	Logger *log.Logger
	Debug  bool

	mu       sync.Mutex
	inited   bool
	doc      *Document
	hit      HitTester
	surface  *Surface
	history  *History
	resizer  resizer
	stroke   stroke
	tool     ToolState
	layout   Layout
	hasHost  bool
	revision uint64
}

func (s *Session) init() {
	if s.inited {
		return
	}
	s.inited = true

	if s.Marker == "" {
		s.Marker = DefaultMarker
	}
	if s.DPR <= 0 {
		s.DPR = 1
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.NewHitTester == nil {
		s.NewHitTester = func(d *Document) HitTester { return NewMaskHitTester(d) }
	}
	s.history = NewHistory(s.HistorySize)
	s.tool = DefaultToolState()
	s.surface = NewSurface(defaultCanvas, s.DPR)
	s.layout = Layout{Bounds: Rect{W: defaultCanvas.W, H: defaultCanvas.H}, DPR: s.DPR}
}

func (s *Session) logf(format string, v ...any) {
	s.Logger.Printf(format, v...)
}

func (s *Session) debugf(format string, v ...any) {
	if s.Debug {
		s.Logger.Printf(format, v...)
	}
}

func (s *Session) rand() *rand.Rand { return s.Rand }

// LoadArtwork parses the markup and replaces the current artwork. On failure the
// session is left untouched. The paint surface and the history are reset.
func (s *Session) LoadArtwork(r io.Reader) error {
	doc, err := ParseArtwork(r, s.Marker)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	s.doc = doc
	s.hit = s.NewHitTester(doc)
	s.stroke.end()
	s.history.Reset()
	s.resizer = resizer{}

	size, dpr := doc.Size(), s.DPR
	if s.hasHost {
		size, dpr = s.layout.Bounds.Size(), s.layout.Ratio()
	} else {
		s.layout = Layout{Bounds: Rect{W: size.W, H: size.H}, DPR: dpr}
	}
	s.surface.Reset(size, dpr)
	s.revision++
	return nil
}

// LoadArtworkFile loads the artwork from a local file or an http(s) URL.
func (s *Session) LoadArtworkFile(path string) error {
	var f *os.File
	if utils.IsValidUrl(path) {
		tmp, err := utils.DownloadArtwork(path)
		if tmp != nil {
			defer os.Remove(tmp.Name())
		}
		if err != nil {
			return fmt.Errorf("failed to load the artwork: %w", err)
		}
		f = tmp
	} else {
		src, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("unable to open the artwork: %w", err)
		}
		f = src
	}
	defer f.Close()

	return s.LoadArtwork(f)
}

// Document returns the loaded artwork, or nil.
func (s *Session) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Surface returns the freehand paint surface.
func (s *Session) Surface() *Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return s.surface
}

// Revision changes whenever the rendered result may have changed.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil {
		return s.revision + s.doc.Revision()
	}
	return s.revision
}

// ToolState returns the current tool selection.
func (s *Session) ToolState() ToolState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return s.tool
}

// SetToolState replaces the tool selection after validating it.
// Switching to another tool cancels the stroke in progress.
func (s *Session) SetToolState(ts ToolState) error {
	return s.update(func(ToolState) (ToolState, error) { return ts, nil })
}

// update applies fn to the current tool selection. The whole read-modify-write runs
// under the session lock, so concurrent selections never lose each other.
func (s *Session) update(fn func(ToolState) (ToolState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	ts, err := fn(s.tool)
	if err != nil {
		return err
	}
	if err := ts.Validate(); err != nil {
		return err
	}
	if ts.Tool != s.tool.Tool && s.stroke.active {
		s.endStroke(false)
	}
	s.tool = ts
	return nil
}

// SelectTool selects a tool by name.
func (s *Session) SelectTool(name string) error {
	t, err := ParseTool(name)
	if err != nil {
		return err
	}
	return s.update(func(ts ToolState) (ToolState, error) { return ts.WithTool(t) })
}

// SelectColor selects the color used by every tool.
func (s *Session) SelectColor(c string) error {
	return s.update(func(ts ToolState) (ToolState, error) { return ts.WithColor(c) })
}

// SelectSize selects the tool size, in logical units.
func (s *Session) SelectSize(size float64) error {
	return s.update(func(ts ToolState) (ToolState, error) { return ts.WithSize(size) })
}

// SelectOpacity selects the tool opacity in [0, 1].
func (s *Session) SelectOpacity(opacity float64) error {
	return s.update(func(ts ToolState) (ToolState, error) { return ts.WithOpacity(opacity) })
}

// SelectStamp selects the stamp glyph by name.
func (s *Session) SelectStamp(name string) error {
	shape, err := ParseShape(name)
	if err != nil {
		return err
	}
	return s.update(func(ts ToolState) (ToolState, error) { return ts.WithShape(shape) })
}

// HandleEvent routes a pointer event to the stroke state machine, or to the
// region fill when the fill tool is active.
func (s *Session) HandleEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	switch ev.Kind {
	case PointerDown:
		if s.stroke.active {
			return
		}
		if s.tool.Tool == Fill {
			s.fillAt(ev.Position)
			return
		}
		s.snapshotRaster()
		p := s.layout.Logical(ev.Position, s.surface.Size())
		s.stroke.begin(ev.PointerID, p, s.tool)
		s.stroke.mark(s.surface, s)
		s.revision++
	case PointerMove:
		if !s.stroke.owns(ev) {
			return
		}
		s.stroke.buffer(s.layout.Logical(ev.Position, s.surface.Size()))
	case PointerUp:
		if !s.stroke.owns(ev) {
			return
		}
		s.stroke.buffer(s.layout.Logical(ev.Position, s.surface.Size()))
		s.endStroke(true)
	case PointerCancel, PointerLeave, LostCapture:
		if !s.stroke.owns(ev) {
			return
		}
		s.endStroke(false)
	}
}

// endStroke returns the stroke to idle, drawing the buffered point first when
// commit is set, then applies a resize deferred during the stroke.
func (s *Session) endStroke(commit bool) {
	if commit && s.stroke.flush(s.surface, s) {
		s.revision++
	}
	s.stroke.end()
	if s.resizer.flush(s.surface, false) {
		s.revision++
	}
}

// Frame is called once per rendering frame. It draws the newest buffered pointer
// position and applies the latest resize request. It reports whether anything changed.
func (s *Session) Frame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	changed := s.stroke.flush(s.surface, s)
	if s.resizer.flush(s.surface, s.stroke.active) {
		changed = true
	} else if s.resizer.deferred() && s.stroke.active {
		s.debugf("resize deferred until the stroke ends")
	}
	if changed {
		s.revision++
	}
	return changed
}

// RequestResize reports a new host layout. The bounds are used for mapping pointer
// positions right away; the backing buffer follows on the next frame, or at the end
// of the active stroke.
func (s *Session) RequestResize(l Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if err := s.resizer.request(l.Bounds.Size(), l.Ratio()); err != nil {
		s.debugf("resize skipped: %v", err)
		return err
	}
	s.layout = l
	s.hasHost = true
	return nil
}

// Layout returns the host layout used for mapping pointer positions.
func (s *Session) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return s.layout
}

// FillRegionAt fills the topmost region under the client position p with the current
// color. It is only effective while the fill tool is selected. Without paintable
// regions the whole paint surface is filled instead.
func (s *Session) FillRegionAt(p Point) (RegionID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if s.tool.Tool != Fill {
		return 0, false
	}
	return s.fillAt(p)
}

func (s *Session) fillAt(p Point) (RegionID, bool) {
	if s.doc == nil || s.doc.Len() == 0 {
		s.snapshotRaster()
		s.surface.FillAll(s.tool)
		s.revision++
		return 0, false
	}

	ap := s.layout.Logical(p, s.doc.Size())
	id, ok := s.hit.HitTest(ap)
	if !ok {
		return 0, false
	}
	c := s.tool.paint()
	if s.doc.Fill(id) != c {
		s.history.Push(fillSnapshot(s.doc.Fills()))
		s.doc.SetFill(id, c)
	}
	return id, true
}

// snapshotRaster pushes the surface content on the history. A failure is
// logged and drawing goes on without an undo entry.
func (s *Session) snapshotRaster() {
	blob, err := s.surface.capture()
	if err != nil {
		s.logf("%v", err)
		return
	}
	s.history.Push(rasterSnapshot(blob))
}

// Clear erases the paint surface and resets every region fill, as one undoable step.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if s.stroke.active {
		s.endStroke(false)
	}
	snap := Snapshot{}
	blob, err := s.surface.capture()
	if err != nil {
		s.logf("%v", err)
	} else {
		snap = rasterSnapshot(blob)
	}
	if s.doc != nil {
		snap.fills = s.doc.Fills()
		s.doc.ClearFills()
	}
	if snap.raster != nil || snap.fills != nil {
		s.history.Push(snap)
	}
	s.surface.Clear()
	s.revision++
}

// ClearFills resets every region fill to transparent. Calling it again changes nothing.
func (s *Session) ClearFills() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if s.doc == nil {
		return
	}
	fills := s.doc.Fills()
	for _, c := range fills {
		if c.A != 0 {
			s.history.Push(fillSnapshot(fills))
			s.doc.ClearFills()
			return
		}
	}
}

// Undo restores the most recent snapshot. It reports false when the history is empty.
func (s *Session) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if s.stroke.active {
		s.endStroke(false)
	}
	snap, ok := s.history.Pop()
	if !ok {
		return false, nil
	}
	if snap.raster != nil {
		if err := s.surface.restore(snap.raster); err != nil {
			return true, err
		}
		s.revision++
	}
	if snap.fills != nil && s.doc != nil {
		if err := s.doc.SetFills(snap.fills); err != nil {
			return true, err
		}
	}
	return true, nil
}

// HistoryLen returns the number of undo steps available.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return s.history.Len()
}
