package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMath_MinMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(-1.5, Min(-1.5, 0.5))
}

func TestMath_Clamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3.0, 0, 1))
	assert.Equal(t, 0.0, Clamp(-3.0, 0, 1))
	assert.Equal(t, 0.4, Clamp(0.4, 0, 1))
}
