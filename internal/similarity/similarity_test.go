package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"Both empty", "", "", 1.0},
		{"One empty", "abc", "", 0.0},
		{"Identical", "xyzzy", "xyzzy", 1.0},
		{"One insertion", "xyzzy", "xyzzyz", 10.0 / 11.0},
		{"Substitution counts twice", "abcd", "abce", 6.0 / 8.0},
		{"Nothing shared", "abc", "xyz", 0.0},
		{"Multibyte runes", "café", "cafe", 6.0 / 8.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, Ratio(tt.b, tt.a), 1e-9, "ratio should be symmetric")
		})
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("mod title", "mod titlez"))
	assert.True(t, Matches("xyzzy", "xyzzyz"))
	assert.False(t, Matches("xyzzy", "unrelated"))
	assert.False(t, Matches("abcd", "abce"), "0.75 is not above the threshold")
}
