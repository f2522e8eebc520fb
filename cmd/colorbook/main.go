package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/esimov/colorbook"
	"github.com/esimov/colorbook/utils"
)

const HelpBanner = `
┌─┐┌─┐┬  ┌─┐┬─┐┌┐ ┌─┐┌─┐┬┌─
│  │ ││  │ │├┬┘├┴┐│ ││ │├┴┐
└─┘└─┘┴─┘└─┘┴└─└─┘└─┘└─┘┴ ┴

Coloring book engine.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

// listFlag collects the values of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, " ") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	// Flags
	source      = flag.String("in", pipeName, "Source artwork, directory of artworks or URL")
	destination = flag.String("out", pipeName, "Destination image or directory")
	layered     = flag.Bool("layered", false, "Draw the line art above the freehand paint")
	background  = flag.String("bg", "", "Background color")
	blend       = flag.String("blend", "", "Blend mode of the paint layer (darken, lighten, multiply, screen, overlay)")
	comp        = flag.String("comp", "", "Composite operation stacking the paint layer (src_over, dst_over, src_atop, ...)")
	marker      = flag.String("marker", colorbook.DefaultMarker, "Class name of the paintable regions")
	dpr         = flag.Float64("dpr", 1, "Device pixel ratio of the paint surface")
	scale       = flag.Float64("scale", 1, "Export scale relative to the artwork size")
	quality     = flag.Int("quality", 100, "JPEG quality")
	debug       = flag.Bool("debug", false, "Use debugger")
	preview     = flag.Bool("preview", false, "Color the artwork interactively")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")

	fills   listFlag
	strokes listFlag
)

func main() {
	log.SetFlags(0)

	flag.Var(&fills, "fill", "Fill the region under a point: x,y,color (repeatable)")
	flag.Var(&strokes, "stroke", "Draw a stroke: tool:color:size:x1,y1;x2,y2;... (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	proc := &colorbook.Processor{
		Marker: *marker,
		DPR:    *dpr,
		Debug:  *debug,
		Export: colorbook.ExportOptions{
			Layered:   *layered,
			Blend:     *blend,
			Composite: *comp,
			Scale:     *scale,
			Quality:   *quality,
		},
	}

	if *background != "" {
		bg, err := utils.ParseColor(*background)
		if err != nil {
			log.Fatalf(utils.DecorateText("Invalid background color: %v", utils.ErrorMessage), err)
		}
		proc.Export.Background = bg
	}

	for _, f := range fills {
		op, err := colorbook.ParseFillOp(f)
		if err != nil {
			log.Fatalf(utils.DecorateText("Invalid fill: %v", utils.ErrorMessage), err)
		}
		proc.Fills = append(proc.Fills, op)
	}
	for _, s := range strokes {
		op, err := colorbook.ParseStrokeOp(s)
		if err != nil {
			log.Fatalf(utils.DecorateText("Invalid stroke: %v", utils.ErrorMessage), err)
		}
		proc.Strokes = append(proc.Strokes, op)
	}

	if *preview {
		if *source == pipeName {
			flag.Usage()
			log.Fatal(utils.DecorateText("\nThe preview mode needs an artwork file or URL!", utils.ErrorMessage))
		}
		runPreview(proc, *source, *destination)
		return
	}

	if len(proc.Fills) == 0 && len(proc.Strokes) == 0 && *background == "" {
		fmt.Fprint(os.Stderr, utils.DecorateText("\nNo fill or stroke given, exporting the blank artwork.\n", utils.WarningMessage))
	}

	op := &colorbook.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
	}
	if err := proc.Execute(op); err != nil {
		log.Fatalf(
			utils.DecorateText("\nError coloring the artwork: %s", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}
}
