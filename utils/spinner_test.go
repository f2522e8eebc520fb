package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_StartStop(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	s := NewSpinner("coloring", time.Millisecond, false)
	s.writer = &buf
	s.StopMsg = "done"

	s.Start()
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	s.mu.RLock()
	out := buf.String()
	s.mu.RUnlock()

	assert.Contains(out, "coloring")
	assert.Equal(1, strings.Count(out, "done"))
}
