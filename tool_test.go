package colorbook

import (
	"image/color"
	"testing"

	"github.com/esimov/colorbook/utils"
	"github.com/stretchr/testify/assert"
)

func TestTool_Parse(t *testing.T) {
	assert := assert.New(t)

	for tool, name := range toolNames {
		got, err := ParseTool(name)
		assert.NoError(err)
		assert.Equal(tool, got)
		assert.Equal(name, tool.String())
	}
	_, err := ParseTool(" SPRAY ")
	assert.NoError(err)

	_, err = ParseTool("eraser")
	assert.ErrorIs(err, ErrInvalidTool)
	assert.Equal("Tool(42)", Tool(42).String())

	assert.False(Fill.draws())
	assert.True(Stamp.draws())
}

func TestTool_ParseShape(t *testing.T) {
	assert := assert.New(t)

	s, err := ParseShape("Heart")
	assert.NoError(err)
	assert.Equal(Heart, s)
	_, err = ParseShape("")
	assert.Error(err)
}

func TestToolState_Setters(t *testing.T) {
	assert := assert.New(t)
	ts := DefaultToolState()
	assert.NoError(ts.Validate())
	assert.Equal(color.NRGBA{R: 0xe6, G: 0x19, B: 0x4b, A: 0xff}, ts.Color)
	assert.Len(Palette, 18)
	assert.Equal("#000000", Palette[0])
	for _, c := range Palette {
		_, err := utils.ParseColor(c)
		assert.NoError(err, c)
	}

	next, err := ts.WithSize(MaxToolSize)
	assert.NoError(err)
	assert.Equal(float64(MaxToolSize), next.Size)

	for _, tt := range []struct {
		name string
		fn   func() (ToolState, error)
	}{
		{"tool", func() (ToolState, error) { return ts.WithTool(Tool(-1)) }},
		{"color", func() (ToolState, error) { return ts.WithColor("#12") }},
		{"size", func() (ToolState, error) { return ts.WithSize(0.5) }},
		{"opacity", func() (ToolState, error) { return ts.WithOpacity(-0.1) }},
		{"shape", func() (ToolState, error) { return ts.WithShape(Shape(99)) }},
	} {
		got, err := tt.fn()
		assert.Error(err, tt.name)
		assert.Equal(ts, got, tt.name)
	}
}

func TestToolState_Paint(t *testing.T) {
	assert := assert.New(t)
	ts := DefaultToolState()

	assert.Equal(uint8(255), ts.paint().A)
	ts, _ = ts.WithOpacity(0)
	assert.Equal(uint8(0), ts.paint().A)
	ts, _ = ts.WithOpacity(0.25)
	assert.Equal(uint8(64), ts.paint().A)
	assert.Equal(ts.Color.R, ts.paint().R)
}
