package colorbook

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript_ParseFillOp(t *testing.T) {
	assert := assert.New(t)

	op, err := ParseFillOp("100, 120,#ff0000")
	require.NoError(t, err)
	assert.Equal(FillOp{At: Pt(100, 120), Color: "#ff0000"}, op)

	op, err = ParseFillOp("1,2,rgb(10,20,30)")
	require.NoError(t, err)
	assert.Equal("rgb(10,20,30)", op.Color)

	for _, in := range []string{"", "1,2", "a,2,red", "1,b,red"} {
		_, err := ParseFillOp(in)
		assert.Error(err, in)
	}
}

func TestScript_ParseStrokeOp(t *testing.T) {
	assert := assert.New(t)

	op, err := ParseStrokeOp("Brush:#0000ff:10:50,50;50,150;")
	require.NoError(t, err)
	assert.Equal("brush", op.Tool)
	assert.Equal("#0000ff", op.Color)
	assert.Equal(10.0, op.Size)
	assert.Equal([]Point{Pt(50, 50), Pt(50, 150)}, op.Points)

	for _, in := range []string{
		"brush:#000:10",
		"eraser:#000:10:1,1",
		"brush:#000:big:1,1",
		"brush:#000:10:",
		"brush:#000:10:1;2",
	} {
		_, err := ParseStrokeOp(in)
		assert.Error(err, in)
	}
}

func TestScript_Apply(t *testing.T) {
	assert := assert.New(t)
	s := newSession(t, pageSVG)

	sc := Script{
		Fills: []FillOp{
			{At: Pt(100, 100), Color: "#ff0000"},
			{At: Pt(470, 270), Color: "#00ff00"},
		},
		Strokes: []StrokeOp{
			{Tool: "pen", Color: "#0000ff", Size: 4, Points: []Point{Pt(300, 400), Pt(400, 400), Pt(400, 500)}},
			{Tool: "fill", Color: "#ffff00", Size: 1, Points: []Point{Pt(500, 350)}},
		},
	}
	require.NoError(t, sc.Apply(s))

	doc := s.Document()
	assert.Equal(color.NRGBA{R: 255, A: 255}, doc.Fill(0))
	assert.Equal(color.NRGBA{R: 255, G: 255, A: 255}, doc.Fill(1))
	assert.Equal(color.NRGBA{G: 255, A: 255}, doc.Fill(2))

	img := s.Surface().Image()
	assert.Equal(color.RGBA{B: 255, A: 255}, img.RGBAAt(350, 400))
	assert.Equal(color.RGBA{B: 255, A: 255}, img.RGBAAt(400, 450))

	bad := Script{Strokes: []StrokeOp{{Tool: "pen", Color: "nope", Size: 4, Points: []Point{Pt(1, 1)}}}}
	assert.ErrorIs(bad.Apply(s), ErrInvalidColor)
}
