package colorbook

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/bmp"
)

// DefaultFileName is the name offered for a downloaded export.
const DefaultFileName = "colouring.png"

// Format is an export encoding.
type Format int

const (
	PNG Format = iota
	JPEG
	BMP
	PDF
)

func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case BMP:
		return "bmp"
	case PDF:
		return "pdf"
	}
	return "png"
}

// Extensions lists the file extensions accepted as export destinations.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".pdf"}

// FormatFromPath returns the export format matching the file extension.
// An empty extension selects PNG.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".bmp":
		return BMP, nil
	case ".pdf":
		return PDF, nil
	default:
		return PNG, fmt.Errorf("%v file type not supported", ext)
	}
}

// encodeImg encodes the image to w. Formats without an alpha channel are
// flattened over white.
func encodeImg(w io.Writer, img *image.NRGBA, f Format, quality int) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		if quality <= 0 || quality > 100 {
			quality = 100
		}
		return jpeg.Encode(w, flatten(img, color.White), &jpeg.Options{Quality: quality})
	case BMP:
		return bmp.Encode(w, img)
	case PDF:
		return encodePDF(w, flatten(img, color.White))
	default:
		return errors.New("unsupported image format")
	}
}

// encodePDF writes a single page document sized to the image, one point per pixel.
func encodePDF(w io.Writer, img image.Image) error {
	b := img.Bounds()
	pw, ph := float64(b.Dx()), float64(b.Dy())

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("colouring", opts, &buf)
	pdf.ImageOptions("colouring", 0, 0, pw, ph, false, opts, 0, "")

	return pdf.Output(w)
}

// flatten draws img over a solid background.
func flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// fillImage paints the whole image with c.
func fillImage(img *image.NRGBA, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
