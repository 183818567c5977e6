package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("#", barWidth), bar(0))
	assert.Equal(t, strings.Repeat("#", barWidth), bar(3))
	assert.Equal(t, strings.Repeat("#", barWidth/2), bar(barFloorDB/2))
	assert.Empty(t, bar(barFloorDB))
	assert.Empty(t, bar(-120))
}
