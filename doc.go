/*
Package colorbook is a coloring book engine. It loads line art given as SVG markup, fills the
paintable regions with flat colors on direct hit, paints freehand strokes on a transparent raster
overlay and flattens everything into a single raster image.

The paintable regions are the elements whose class list contains a marker (by default "paint").
Every other element is decoration and never receives a fill.

The package provides a command line interface, which replays fills and strokes over a single page
or a whole directory of pages. To check the supported commands type:

	$ colorbook --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"

		"github.com/esimov/colorbook"
	)

	func main() {
		s := &colorbook.Session{
			// Initialize struct variables
		}
		if err := s.LoadArtworkFile("page.svg"); err != nil {
			fmt.Printf("Error loading the artwork: %s", err.Error())
			return
		}
		s.SelectColor("#ff0000")
		s.FillRegionAt(colorbook.Pt(100, 100))

		if err := s.ExportFile(context.Background(), colorbook.DefaultFileName, colorbook.ExportOptions{}); err != nil {
			fmt.Printf("Error exporting the image: %s", err.Error())
		}
	}
*/
package colorbook
