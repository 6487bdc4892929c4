package appversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2", "1.2.0", 0},
		{"1.2.0.0", "1.2", 0},
		{"1.10.0", "1.9.9", 1},
		{"1.9.9", "1.10.0", -1},
		{"2", "1.99.99", 1},
		{"0.9", "1", -1},
		{"", "0.0.0", 0},
		{"", "0.0.1", -1},
		{"1.x.3", "1.0.3", 0},
		{"1.beta", "1.1", -1},
		{" 1.2.3 ", "1.2.3", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Compare(tt.a, tt.b), "Compare(%q, %q)", tt.a, tt.b)
		assert.Equal(t, -tt.want, Compare(tt.b, tt.a), "Compare(%q, %q)", tt.b, tt.a)
	}
}

func TestNeedsUpdate(t *testing.T) {
	assert.True(t, NeedsUpdate("1.0.0", "1.0.1"))
	assert.True(t, NeedsUpdate("", "1.0.0"))
	assert.False(t, NeedsUpdate("1.0.1", "1.0.1"))
	assert.False(t, NeedsUpdate("2.0", "1.9.9"))
}
