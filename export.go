package colorbook

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/esimov/colorbook/imop"
	"golang.org/x/sync/errgroup"
)

// ExportOptions controls the flattening of the layers into a raster image.
type ExportOptions struct {
	Format Format
	// Layered draws the line art above the paint. Otherwise the whole artwork,
	// outlines included, is the bottom layer and the paint covers it.
	Layered bool
	// Background is drawn under every layer. Nil falls back to Session.Background,
	// and leaves the image transparent when that is nil too.
	Background color.Color
	// Blend is the blend mode used to mix the paint with the fills below it.
	Blend string
	// Composite is the Porter-Duff operation stacking the paint onto the layers below it.
	// Empty means source-over.
	Composite string
	// Scale multiplies the artwork logical size. Zero means 1.
	Scale   float64
	Quality int
}

// layerSource materializes one layer of the export.
type layerSource struct {
	name  string
	blend string
	op    string
	load  func(ctx context.Context) (*image.NRGBA, error)
}

// Render flattens the artwork layers and the paint surface into one image
// of the artwork's logical size.
func (s *Session) Render(ctx context.Context, opts ExportOptions) (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if s.doc == nil {
		return nil, ErrNoArtwork
	}
	return s.render(ctx, opts)
}

func (s *Session) render(ctx context.Context, opts ExportOptions) (*image.NRGBA, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := backingSize(s.doc.Size(), scale)
	doc, surface := s.doc, s.surface

	vector := func(l Layer) func(context.Context) (*image.NRGBA, error) {
		return func(context.Context) (*image.NRGBA, error) {
			return doc.Rasterize(l, w, h)
		}
	}

	base := FullLayer
	if opts.Layered {
		base = FillLayer
	}
	sources := []layerSource{
		{name: base.String(), load: vector(base)},
		{name: "paint", blend: opts.Blend, op: opts.Composite, load: func(context.Context) (*image.NRGBA, error) {
			img := surface.Image()
			if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
				return imaging.Clone(img), nil
			}
			return imaging.Resize(img, w, h, imaging.Linear), nil
		}},
	}
	if opts.Layered {
		sources = append(sources, layerSource{name: OutlineLayer.String(), load: vector(OutlineLayer)})
	}
	bg := opts.Background
	if bg == nil {
		bg = s.Background
	}
	return s.composite(ctx, image.Rect(0, 0, w, h), bg, sources)
}

// composite materializes the layer sources concurrently, then stacks them strictly in order.
// A failing layer is logged and left out.
func (s *Session) composite(
	ctx context.Context,
	rect image.Rectangle,
	bg color.Color,
	sources []layerSource,
) (*image.NRGBA, error) {
	layers := make([]*image.NRGBA, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			layers[i], errs[i] = src.load(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bitmap := imop.NewBitmap(rect)
	if bg != nil {
		fillImage(bitmap.Img, bg)
	}
	for i, src := range sources {
		if errs[i] != nil {
			s.logf("%v", &LayerError{Layer: src.name, Err: errs[i]})
			continue
		}
		op := imop.InitOp()
		if src.op != "" {
			if err := op.Set(src.op); err != nil {
				s.logf("%v", &LayerError{Layer: src.name, Err: err})
			}
		}
		var blend *imop.Blend
		if src.blend != "" {
			blend = imop.NewBlend()
			if err := blend.Set(src.blend); err != nil {
				s.logf("%v", &LayerError{Layer: src.name, Err: err})
				blend = nil
			}
		}
		op.Draw(bitmap, layers[i], bitmap.Img, blend)
	}
	return bitmap.Img, nil
}

// Export renders the artwork and encodes it to w.
func (s *Session) Export(ctx context.Context, w io.Writer, opts ExportOptions) error {
	img, err := s.Render(ctx, opts)
	if err != nil {
		return err
	}
	return encodeImg(w, img, opts.Format, opts.Quality)
}

// ExportFile renders the artwork into the named file. The format follows the file
// extension, and an empty path writes DefaultFileName.
func (s *Session) ExportFile(ctx context.Context, path string, opts ExportOptions) (err error) {
	if path == "" {
		path = DefaultFileName
	}
	opts.Format, err = FormatFromPath(path)
	if err != nil {
		return err
	}

	img, err := s.Render(ctx, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = encodeImg(f, img, opts.Format, opts.Quality); err != nil {
		os.Remove(path)
	}
	return err
}
