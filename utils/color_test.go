package utils

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColor_Parse(t *testing.T) {
	testCases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{R: 0xff, A: 0xff}},
		{"#0000FF", color.NRGBA{B: 0xff, A: 0xff}},
		{"#0f08", color.NRGBA{G: 0xff, A: 0x88}},
		{"#e6194B", color.NRGBA{R: 0xe6, G: 0x19, B: 0x4b, A: 0xff}},
		{"#11223344", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{"rgb(10, 20, 30)", color.NRGBA{R: 10, G: 20, B: 30, A: 0xff}},
		{"rgba(255,255,255,0.5)", color.NRGBA{R: 255, G: 255, B: 255, A: 128}},
		{"red", color.NRGBA{R: 0xff, A: 0xff}},
		{"transparent", color.NRGBA{}},
		{"none", color.NRGBA{}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := ParseColor(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, c)
		})
	}
}

func TestColor_ParseInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "rgb(1,2)", "no-such-color"} {
		_, err := ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestColor_ToHex(t *testing.T) {
	assert.Equal(t, "#e6194b", ToHex(color.NRGBA{R: 0xe6, G: 0x19, B: 0x4b, A: 0xff}))
}
