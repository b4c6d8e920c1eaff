package charstream

import "unicode/utf16"

const (
	surrHighMin = 0xD800
	surrHighMax = 0xDBFF
	surrLowMin  = 0xDC00
	surrLowMax  = 0xDFFF
)

// codeUnit is the set of fixed-width storage units a Source can hold.
type codeUnit interface {
	~uint8 | ~uint16
}

func isHighSurrogate(u uint16) bool { return u >= surrHighMin && u <= surrHighMax }
func isLowSurrogate(u uint16) bool  { return u >= surrLowMin && u <= surrLowMax }

// BuildIndex scans units once and returns the code-point index table: entry
// i is the storage offset where code point i starts, and a final sentinel
// entry holds len(units). The result has one more entry than there are code
// points.
//
// A high surrogate immediately followed by a low surrogate counts as one code
// point spanning two units. Any other unit, including an unpaired surrogate,
// is one code point.
func BuildIndex[U codeUnit](units []U) []int {
	table := make([]int, 0, len(units)+1)
	for i := 0; i < len(units); {
		table = append(table, i)
		if i+1 < len(units) && isHighSurrogate(uint16(units[i])) && isLowSurrogate(uint16(units[i+1])) {
			i += 2
			continue
		}
		i++
	}
	return append(table, len(units))
}

// CodePointIndices returns the UTF-16 offset at which each code point of s
// starts, without the trailing sentinel.
func CodePointIndices(s string) []int {
	table := BuildIndex(utf16.Encode([]rune(s)))
	return table[:len(table)-1]
}
