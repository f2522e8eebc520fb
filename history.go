package colorbook

import (
	"image/color"
	"time"

	"github.com/google/uuid"
)

// DefaultHistorySize is the number of snapshots kept when no capacity is configured.
const DefaultHistorySize = 30

// Snapshot is a restorable capture taken before a destructive change. It holds
// either the paint surface content or the region fill table.
type Snapshot struct {
	ID    uuid.UUID
	Taken time.Time

	raster *rasterBlob
	fills  []color.NRGBA
}

// IsRaster reports whether the snapshot captures the paint surface.
func (s Snapshot) IsRaster() bool { return s.raster != nil }

func rasterSnapshot(blob *rasterBlob) Snapshot {
	return Snapshot{ID: uuid.New(), Taken: time.Now(), raster: blob}
}

func fillSnapshot(fills []color.NRGBA) Snapshot {
	return Snapshot{ID: uuid.New(), Taken: time.Now(), fills: fills}
}

// History is a bounded undo stack. Pushing beyond the capacity evicts the oldest entry.
type History struct {
	capacity int
	items    []Snapshot
}

// NewHistory returns an empty history holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{capacity: capacity}
}

// Push appends a snapshot.
func (h *History) Push(s Snapshot) {
	if len(h.items) == h.capacity {
		copy(h.items, h.items[1:])
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, s)
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.items) == 0 {
		return Snapshot{}, false
	}
	s := h.items[len(h.items)-1]
	h.items[len(h.items)-1] = Snapshot{}
	h.items = h.items[:len(h.items)-1]
	return s, true
}

// Oldest returns the oldest snapshot still held.
func (h *History) Oldest() (Snapshot, bool) {
	if len(h.items) == 0 {
		return Snapshot{}, false
	}
	return h.items[0], true
}

func (h *History) Len() int { return len(h.items) }

func (h *History) Cap() int { return h.capacity }

// Reset drops every snapshot.
func (h *History) Reset() {
	h.items = nil
}
