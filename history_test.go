package colorbook

import (
	"image/color"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHistory_Eviction(t *testing.T) {
	assert := assert.New(t)
	h := NewHistory(0)
	assert.Equal(DefaultHistorySize, h.Cap())

	ids := make([]uuid.UUID, 31)
	for i := range ids {
		snap := fillSnapshot([]color.NRGBA{{A: uint8(i)}})
		ids[i] = snap.ID
		h.Push(snap)
	}
	assert.Equal(30, h.Len())

	oldest, ok := h.Oldest()
	assert.True(ok)
	assert.Equal(ids[1], oldest.ID)

	for i := len(ids) - 1; i >= 1; i-- {
		snap, ok := h.Pop()
		assert.True(ok)
		assert.Equal(ids[i], snap.ID)
	}
	_, ok = h.Pop()
	assert.False(ok)
	_, ok = h.Oldest()
	assert.False(ok)
}

func TestHistory_Reset(t *testing.T) {
	assert := assert.New(t)
	h := NewHistory(2)
	h.Push(rasterSnapshot(&rasterBlob{w: 1, h: 1}))
	h.Push(fillSnapshot(nil))

	snap, _ := h.Pop()
	assert.False(snap.IsRaster())
	snap, _ = h.Pop()
	assert.True(snap.IsRaster())

	h.Push(fillSnapshot(nil))
	h.Reset()
	assert.Equal(0, h.Len())
	assert.Equal(2, h.Cap())
}
