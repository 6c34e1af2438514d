package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		raw  string
		want Color
		ok   bool
	}{
		{"RED", ColorRed, true},
		{" blue ", ColorBlue, true},
		{"white", ColorWhite, true},
		{"", ColorNone, true},
		{"teal", ColorUnknown, false},
		{"unknown", ColorUnknown, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}

func TestColor_Painted(t *testing.T) {
	assert.False(t, ColorNone.Painted())
	assert.False(t, ColorWhite.Painted())
	assert.True(t, ColorRed.Painted())
	assert.True(t, ColorUnknown.Painted())
	assert.Equal(t, "", ColorNone.Hex())
	assert.NotEmpty(t, ColorOrange.Hex())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("finished")
	assert.True(t, ok)
	assert.Equal(t, StatusEnded, s)
	_, ok = ParseStatus("PAUSED")
	assert.False(t, ok)
}
