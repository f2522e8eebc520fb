package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend_Basic(t *testing.T) {
	assert := assert.New(t)

	op := NewBlend()
	assert.Empty(op.Get())
	err := op.Set("blend_mode_not_supported")
	assert.Error(err)
	assert.Empty(op.Get())

	assert.NoError(op.Set(Darken))
	assert.Equal(Darken, op.Get())
	assert.NoError(op.Set(Lighten))
	assert.Equal(Lighten, op.Get())
}

func TestBlend_Modes(t *testing.T) {
	// Note: all the expected values are taken by using as reference the results
	// obtained in Photoshop by overlapping two layers and applying the blend mode.
	assert := assert.New(t)

	op := InitOp()
	blend := NewBlend()

	pinkFront := color.RGBA{R: 214, G: 20, B: 65, A: 255}
	orangeBack := color.RGBA{R: 250, G: 121, B: 17, A: 255}

	rect := image.Rect(0, 0, 1, 1)
	bmp := NewBitmap(rect)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)

	draw.Draw(source, rect, &image.Uniform{pinkFront}, image.Point{}, draw.Src)
	draw.Draw(backdrop, rect, &image.Uniform{orangeBack}, image.Point{}, draw.Src)

	for _, tc := range []struct {
		mode     string
		expected []uint8
	}{
		{Normal, []uint8{214, 20, 65, 255}},
		{Darken, []uint8{214, 20, 17, 255}},
		{Lighten, []uint8{250, 121, 65, 255}},
		{Multiply, []uint8{209, 9, 4, 255}},
		{Screen, []uint8{254, 131, 77, 255}},
		{Overlay, []uint8{253, 18, 8, 255}},
	} {
		t.Run(tc.mode, func(t *testing.T) {
			assert.NoError(blend.Set(tc.mode))
			op.Draw(bmp, source, backdrop, blend)
			assert.EqualValues(tc.expected, bmp.Img.Pix)
		})
	}
}

func TestBlend_TransparentBackdrop(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	blend := NewBlend()
	assert.NoError(blend.Set(Multiply))

	rect := image.Rect(0, 0, 1, 1)
	bmp := NewBitmap(rect)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)

	// Without a backdrop the blend mode has nothing to mix with: the source is kept as is.
	draw.Draw(source, rect, &image.Uniform{color.NRGBA{R: 0, G: 0, B: 255, A: 255}}, image.Point{}, draw.Src)
	op.Draw(bmp, source, backdrop, blend)

	assert.EqualValues([]uint8{0, 0, 255, 255}, bmp.Img.Pix)
}
