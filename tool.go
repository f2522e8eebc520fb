package colorbook

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/esimov/colorbook/utils"
)

// Tool identifies the active drawing tool.
type Tool int

const (
	Fill Tool = iota
	Pen
	Brush
	Paintbrush
	Spray
	Stamp
)

var toolNames = map[Tool]string{
	Fill:       "fill",
	Pen:        "pen",
	Brush:      "brush",
	Paintbrush: "paintbrush",
	Spray:      "spray",
	Stamp:      "stamp",
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool returns the tool with the given name.
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range toolNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTool, name)
}

// draws reports whether the tool paints on the freehand surface.
func (t Tool) draws() bool {
	return t != Fill && t.valid()
}

func (t Tool) valid() bool {
	_, ok := toolNames[t]
	return ok
}

// Shape is the glyph placed by the stamp tool.
type Shape int

const (
	Circle Shape = iota
	Star
	Heart
	Flower
	Diamond
)

var shapeNames = []string{"circle", "star", "heart", "flower", "diamond"}

func (s Shape) String() string {
	if s.valid() {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

func (s Shape) valid() bool {
	return s >= 0 && int(s) < len(shapeNames)
}

// ParseShape returns the stamp shape with the given name.
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("invalid stamp shape: %q", name)
}

const (
	// MinToolSize and MaxToolSize bound the size parameter, in logical units.
	MinToolSize = 1
	MaxToolSize = 200
)

// Palette is the default set of swatches.
var Palette = []string{
	"#000000", "#7f7f7f", "#ffffff", "#e6194B", "#f58231", "#ffe119",
	"#bfef45", "#3cb44b", "#42d4f4", "#4363d8", "#911eb4", "#f032e6",
	"#a52a2a", "#fabebe", "#ffd8b1", "#dcbeff", "#9A6324", "#800000",
}

// DefaultSwatch is the palette index of the initial color.
const DefaultSwatch = 3

// ToolState is the current tool selection. It is a value: drawing operations receive a
// copy, and a new state is only produced through the With* methods, which validate their input.
type ToolState struct {
	Tool    Tool
	Color   color.NRGBA
	Size    float64
	Opacity float64
	Shape   Shape
}

// DefaultToolState returns the initial selection: the fill tool with the red swatch.
func DefaultToolState() ToolState {
	c, _ := utils.ParseColor(Palette[DefaultSwatch])
	return ToolState{
		Tool:    Fill,
		Color:   c,
		Size:    12,
		Opacity: 1,
		Shape:   Star,
	}
}

// Validate checks every field against its allowed range.
func (ts ToolState) Validate() error {
	if !ts.Tool.valid() {
		return fmt.Errorf("%w: %v", ErrInvalidTool, ts.Tool)
	}
	if !ts.Shape.valid() {
		return fmt.Errorf("invalid stamp shape: %v", ts.Shape)
	}
	if !(ts.Size >= MinToolSize && ts.Size <= MaxToolSize) {
		return fmt.Errorf("tool size %v out of range [%d, %d]", ts.Size, MinToolSize, MaxToolSize)
	}
	if !(ts.Opacity >= 0 && ts.Opacity <= 1) {
		return fmt.Errorf("opacity %v out of range [0, 1]", ts.Opacity)
	}
	return nil
}

// WithTool returns a copy of ts using tool t.
func (ts ToolState) WithTool(t Tool) (ToolState, error) {
	next := ts
	next.Tool = t
	return ts.replace(next)
}

// WithColor returns a copy of ts using the parsed color.
func (ts ToolState) WithColor(s string) (ToolState, error) {
	c, err := utils.ParseColor(s)
	if err != nil {
		return ts, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	ts.Color = c
	return ts, nil
}

// WithSize returns a copy of ts using the given size.
func (ts ToolState) WithSize(size float64) (ToolState, error) {
	next := ts
	next.Size = size
	return ts.replace(next)
}

// WithOpacity returns a copy of ts using the given opacity.
func (ts ToolState) WithOpacity(opacity float64) (ToolState, error) {
	next := ts
	next.Opacity = opacity
	return ts.replace(next)
}

// WithShape returns a copy of ts using the given stamp shape.
func (ts ToolState) WithShape(s Shape) (ToolState, error) {
	next := ts
	next.Shape = s
	return ts.replace(next)
}

// replace returns next when it is valid, or ts unchanged together with the validation error.
func (ts ToolState) replace(next ToolState) (ToolState, error) {
	if err := next.Validate(); err != nil {
		return ts, err
	}
	return next, nil
}

// paint returns the color used by a single draw call: the selected color with the
// opacity folded into its alpha.
func (ts ToolState) paint() color.NRGBA {
	c := ts.Color
	c.A = uint8(utils.Clamp(float64(c.A)*ts.Opacity+0.5, 0, 255))
	return c
}
