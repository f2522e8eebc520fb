package main

import (
	"context"
	"image"
	"image/color"
	"log"
	"math"
	"os"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"github.com/esimov/colorbook"
	"github.com/esimov/colorbook/utils"
)

const (
	maxScreenX = 1366
	maxScreenY = 768
)

var toolKeys = map[string]colorbook.Tool{
	"F": colorbook.Fill,
	"P": colorbook.Pen,
	"B": colorbook.Brush,
	"A": colorbook.Paintbrush,
	"S": colorbook.Spray,
	"T": colorbook.Stamp,
}

// previewWindow is an interactive window feeding pointer input into a coloring session.
type previewWindow struct {
	session *colorbook.Session
	export  colorbook.ExportOptions

	img      image.Image
	revision uint64
	rendered bool
	size     image.Point
	palette  int
}

// runPreview opens the artwork in a Gio window. The colored artwork is exported
// to dst when the window is closed.
func runPreview(proc *colorbook.Processor, src, dst string) {
	s := &colorbook.Session{
		Marker: proc.Marker,
		DPR:    proc.DPR,
		Debug:  proc.Debug,
	}
	if err := s.LoadArtworkFile(src); err != nil {
		log.Fatalf(utils.DecorateText("Failed to load the source artwork: %v", utils.ErrorMessage), err)
	}
	if err := proc.Script.Apply(s); err != nil {
		log.Fatalf(utils.DecorateText("Failed to apply the operations: %v", utils.ErrorMessage), err)
	}

	pv := &previewWindow{session: s, export: proc.Export, palette: colorbook.DefaultSwatch}
	if pv.export.Background == nil {
		pv.export.Background = color.White
	}

	size := s.Document().Size()
	w, h := size.W, size.H
	// Retain the aspect ratio in case the artwork is larger than the screen.
	if w > maxScreenX || h > maxScreenY {
		ratio := math.Min(maxScreenX/w, maxScreenY/h)
		w, h = w*ratio, h*ratio
	}

	go func() {
		win := app.NewWindow(
			app.Title("Colorbook"),
			app.Size(unit.Dp(w), unit.Dp(h)),
		)
		if err := pv.run(win); err != nil {
			log.Fatal(err)
		}
		if dst != pipeName {
			if err := s.ExportFile(context.Background(), dst, proc.Export); err != nil {
				log.Fatalf(utils.DecorateText("Error exporting the artwork: %v", utils.ErrorMessage), err)
			}
		}
		os.Exit(0)
	}()
	app.Main()
}

// run the Gio main loop until a DestroyEvent or an ESC key event is captured.
func (pv *previewWindow) run(w *app.Window) error {
	var ops op.Ops
	for e := range w.Events() {
		switch e := e.(type) {
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)
			pv.layout(gtx)
			e.Frame(gtx.Ops)
		case key.Event:
			if e.State == key.Press {
				pv.handleKey(w, e)
			}
		case system.DestroyEvent:
			return e.Err
		}
	}
	return nil
}

func (pv *previewWindow) handleKey(w *app.Window, e key.Event) {
	s := pv.session
	switch {
	case e.Name == key.NameEscape:
		w.Perform(system.ActionClose)
	case e.Name == "Z" && e.Modifiers.Contain(key.ModShortcut):
		if _, err := s.Undo(); err != nil {
			log.Printf("undo failed: %v", err)
		}
	case e.Name == "C":
		s.Clear()
	case e.Name == "X":
		s.ClearFills()
	case e.Name == "]" || e.Name == "[":
		ts := s.ToolState()
		step := 2.0
		if e.Name == "[" {
			step = -step
		}
		size := utils.Clamp(ts.Size+step, colorbook.MinToolSize, colorbook.MaxToolSize)
		s.SelectSize(size)
	case e.Name == key.NameSpace:
		pv.palette = (pv.palette + 1) % len(colorbook.Palette)
		s.SelectColor(colorbook.Palette[pv.palette])
	default:
		if t, ok := toolKeys[e.Name]; ok {
			s.SelectTool(t.String())
		}
	}
	w.Invalidate()
}

func (pv *previewWindow) layout(gtx layout.Context) {
	s := pv.session
	max := gtx.Constraints.Max

	// The host rectangle is expressed in device independent units, the way a
	// browser reports CSS pixels next to the device pixel ratio.
	dpr := float64(gtx.Metric.PxPerDp)
	if max != pv.size {
		pv.size = max
		err := s.RequestResize(colorbook.Layout{
			Bounds: colorbook.Rect{W: float64(max.X) / dpr, H: float64(max.Y) / dpr},
			DPR:    dpr,
		})
		if err != nil {
			return
		}
	}

	area := clip.Rect(image.Rectangle{Max: max}).Push(gtx.Ops)
	pointer.InputOp{
		Tag:   pv,
		Grab:  true,
		Types: pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Leave,
	}.Add(gtx.Ops)
	area.Pop()

	for _, ev := range gtx.Events(pv) {
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		pos := colorbook.Pt(float64(e.Position.X)/dpr, float64(e.Position.Y)/dpr)
		id := int(e.PointerID)

		switch e.Type {
		case pointer.Press:
			s.HandleEvent(colorbook.Event{Kind: colorbook.PointerDown, Position: pos, PointerID: id})
		case pointer.Drag:
			s.HandleEvent(colorbook.Event{Kind: colorbook.PointerMove, Position: pos, PointerID: id})
		case pointer.Release:
			s.HandleEvent(colorbook.Event{Kind: colorbook.PointerUp, Position: pos, PointerID: id})
		case pointer.Cancel:
			s.HandleEvent(colorbook.Event{Kind: colorbook.PointerCancel, Position: pos, PointerID: id})
		case pointer.Leave:
			s.HandleEvent(colorbook.Event{Kind: colorbook.PointerLeave, Position: pos, PointerID: id})
		}
	}
	s.Frame()

	if rev := s.Revision(); !pv.rendered || rev != pv.revision {
		img, err := s.Render(context.Background(), pv.export)
		if err != nil {
			log.Printf("render failed: %v", err)
			return
		}
		pv.img, pv.revision, pv.rendered = img, rev, true
	}
	pv.draw(gtx, max)
}

// draw stretches the rendered artwork over the window, matching the pointer mapping.
func (pv *previewWindow) draw(gtx layout.Context, max image.Point) {
	b := pv.img.Bounds()
	sx := float32(max.X) / float32(b.Dx())
	sy := float32(max.Y) / float32(b.Dy())

	defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(sx, sy))).Push(gtx.Ops).Pop()
	defer clip.Rect(image.Rectangle{Max: b.Size()}).Push(gtx.Ops).Pop()

	src := paint.NewImageOp(pv.img)
	src.Filter = paint.FilterLinear
	src.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
}
