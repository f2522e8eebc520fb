package colorbook

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRootElement is wrapped by ParseError when the markup contains no <svg> element.
	ErrNoRootElement = errors.New("no root <svg> element found")

	// ErrDegenerateLayout is returned when the host reports a zero sized rectangle.
	// The resize is skipped and the surface keeps its current size.
	ErrDegenerateLayout = errors.New("degenerate layout: zero sized host rectangle")

	// ErrNoArtwork is returned by the operations that need a loaded artwork.
	ErrNoArtwork = errors.New("no artwork loaded")

	// ErrInvalidTool is returned when a tool name is outside the supported set.
	ErrInvalidTool = errors.New("invalid tool")

	// ErrInvalidColor is returned when a color cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")
)

// ParseError reports an artwork that could not be loaded. No partial state is applied.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse the artwork: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SnapshotError reports a raster serialization failure. The history push is skipped
// and drawing continues.
type SnapshotError struct {
	Err error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("could not snapshot the paint surface: %v", e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// LayerError reports an export layer which failed to materialize.
// The layer is omitted and compositing continues.
type LayerError struct {
	Layer string
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("%s layer omitted: %v", e.Layer, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }
