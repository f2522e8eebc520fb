// Package imop implements the Porter-Duff composition operations and a subset of the
// W3C separable blend modes over *image.NRGBA. The image/draw package covers only
// source and source-over, which is not enough for mixing paint with line art.
package imop

import (
	"fmt"
	"math"
)

const (
	Normal   = "normal"
	Darken   = "darken"
	Lighten  = "lighten"
	Multiply = "multiply"
	Screen   = "screen"
	Overlay  = "overlay"
)

var blendModes = map[string]func(cs, cb float64) float64{
	Normal:   func(cs, cb float64) float64 { return cs },
	Darken:   math.Min,
	Lighten:  math.Max,
	Multiply: func(cs, cb float64) float64 { return cs * cb },
	Screen:   screen,
	Overlay: func(cs, cb float64) float64 {
		// Overlay is hard-light with the layers swapped.
		if cb <= 0.5 {
			return cs * 2 * cb
		}
		return screen(cs, 2*cb-1)
	},
}

func screen(cs, cb float64) float64 {
	return cs + cb - cs*cb
}

// Blend holds the currently active blend mode.
type Blend struct {
	OpType string
}

// NewBlend initializes a new Blend.
func NewBlend() *Blend {
	return &Blend{}
}

// Set activates one of the supported blend modes.
func (o *Blend) Set(opType string) error {
	if _, ok := blendModes[opType]; !ok {
		return fmt.Errorf("unsupported blend mode: %q", opType)
	}
	o.OpType = opType
	return nil
}

// Get returns the currently active blend mode.
func (o *Blend) Get() string {
	return o.OpType
}

func (o *Blend) fn() func(cs, cb float64) float64 {
	if fn, ok := blendModes[o.OpType]; ok {
		return fn
	}
	return nil
}
