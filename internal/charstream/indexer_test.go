package charstream

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
)

func TestCodePointIndices(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{name: "narrow", input: "ab", expected: []int{0, 1}},
		{name: "bmp", input: "aΔb", expected: []int{0, 1, 2}},
		{name: "supplementary", input: "a😱bΔc😱d", expected: []int{0, 1, 3, 4, 5, 6, 8}},
		{name: "empty", input: "", expected: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, CodePointIndices(tt.input))
		})
	}
}

func TestBuildIndex_Sentinel(t *testing.T) {
	units := utf16.Encode([]rune("a😱bΔc😱d"))
	table := BuildIndex(units)

	require.Equal(t, []int{0, 1, 3, 4, 5, 6, 8, 9}, table)
	require.Equal(t, len(units), table[len(table)-1])
}

func TestBuildIndex_Empty(t *testing.T) {
	require.Equal(t, []int{0}, BuildIndex([]uint16{}))
	require.Equal(t, []int{0}, BuildIndex([]uint8(nil)))
}

func TestBuildIndex_NarrowIsIdentity(t *testing.T) {
	// Bytes in the surrogate range cannot exist, so every byte is one code point.
	table := BuildIndex([]uint8{0xD8, 0xDC, 'x'})
	require.Equal(t, []int{0, 1, 2, 3}, table)
}

func TestBuildIndex_LoneSurrogates(t *testing.T) {
	tests := []struct {
		name     string
		units    []uint16
		expected []int
	}{
		{name: "lone high", units: []uint16{'a', 0xD83D, 'b'}, expected: []int{0, 1, 2, 3}},
		{name: "lone low", units: []uint16{0xDE31, 'a'}, expected: []int{0, 1, 2}},
		{name: "trailing high", units: []uint16{'a', 0xD83D}, expected: []int{0, 1, 2}},
		{name: "reversed pair", units: []uint16{0xDE31, 0xD83D}, expected: []int{0, 1, 2}},
		{name: "high then pair", units: []uint16{0xD83D, 0xD83D, 0xDE31}, expected: []int{0, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, BuildIndex(tt.units))
		})
	}
}
