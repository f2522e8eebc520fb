package imop

import (
	"fmt"
	"image"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// factors returns the Porter-Duff fractions of the source and the backdrop
// contributing to the result, given their alpha values.
var factors = map[string]func(as, ab float64) (fs, fb float64){
	Clear:   func(as, ab float64) (float64, float64) { return 0, 0 },
	Copy:    func(as, ab float64) (float64, float64) { return 1, 0 },
	Dst:     func(as, ab float64) (float64, float64) { return 0, 1 },
	SrcOver: func(as, ab float64) (float64, float64) { return 1, 1 - as },
	DstOver: func(as, ab float64) (float64, float64) { return 1 - ab, 1 },
	SrcIn:   func(as, ab float64) (float64, float64) { return ab, 0 },
	DstIn:   func(as, ab float64) (float64, float64) { return 0, as },
	SrcOut:  func(as, ab float64) (float64, float64) { return 1 - ab, 0 },
	DstOut:  func(as, ab float64) (float64, float64) { return 0, 1 - as },
	SrcAtop: func(as, ab float64) (float64, float64) { return ab, 1 - as },
	DstAtop: func(as, ab float64) (float64, float64) { return 1 - ab, as },
	Xor:     func(as, ab float64) (float64, float64) { return 1 - ab, 1 - as },
}

// Bitmap is the destination of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap returns a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the active composition operation.
type Composite struct {
	current string
}

// InitOp returns a composite operator set to source-over.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) error {
	if _, ok := factors[cop]; !ok {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes src over the dst backdrop into bitmap. When blend is set, the source
// color is first mixed with the backdrop using the blend mode, as in the W3C compositing model.
// The images are expected to share their bounds; bitmap may alias dst.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) {
	factor, ok := factors[op.current]
	if !ok {
		return
	}
	if bitmap == nil {
		bitmap = NewBitmap(src.Bounds())
	}

	var mix func(cs, cb float64) float64
	if blend != nil {
		mix = blend.fn()
	}

	rect := bitmap.Img.Bounds().Intersect(src.Bounds()).Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			bi := bitmap.Img.PixOffset(x, y)

			s := src.Pix[si : si+4 : si+4]
			b := dst.Pix[di : di+4 : di+4]

			as := float64(s[3]) / 255
			ab := float64(b[3]) / 255
			fs, fb := factor(as, ab)
			ao := as*fs + ab*fb

			var out [4]uint8
			if ao > 0 {
				for c := 0; c < 3; c++ {
					cs := float64(s[c]) / 255
					cb := float64(b[c]) / 255
					if mix != nil {
						cs = (1-ab)*cs + ab*mix(cs, cb)
					}
					co := (as*fs*cs + ab*fb*cb) / ao
					out[c] = toUint8(co)
				}
				out[3] = toUint8(ao)
			}
			copy(bitmap.Img.Pix[bi:bi+4], out[:])
		}
	}
}

// toUint8 converts a normalized channel value, truncating like the reference implementations.
func toUint8(v float64) uint8 {
	v = v*255 + 1e-6
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
