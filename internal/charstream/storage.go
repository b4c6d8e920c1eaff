package charstream

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Width identifies the storage class chosen for a Source.
type Width int

const (
	WidthNarrow Width = iota // 8-bit units, code points <= U+00FF
	WidthBMP                 // 16-bit units, no surrogate pairs
	WidthWide                // UTF-16 units with surrogate pairs
)

func (w Width) String() string {
	switch w {
	case WidthNarrow:
		return "narrow"
	case WidthBMP:
		return "bmp"
	case WidthWide:
		return "wide"
	default:
		return "unknown"
	}
}

// storage is the raw unit buffer behind a Source. Implementations differ
// only in how a unit range decodes; cursor semantics live in CharStream.
type storage interface {
	width() Width
	unitLen() int
	buildIndex() []int
	// decode returns the single code point stored in units [start, end).
	decode(start, end int) rune
	text(start, end int) string
	codeUnits(start, end int) []uint16
}

// flat holds one unit per code point (narrow and BMP storage).
type flat[U codeUnit] struct {
	w     Width
	units []U
}

func (f *flat[U]) width() Width { return f.w }
func (f *flat[U]) unitLen() int { return len(f.units) }
func (f *flat[U]) buildIndex() []int { return BuildIndex(f.units) }

func (f *flat[U]) decode(start, _ int) rune {
	return rune(f.units[start])
}

func (f *flat[U]) text(start, end int) string {
	buf := make([]byte, 0, end-start)
	for _, u := range f.units[start:end] {
		buf = utf8.AppendRune(buf, rune(u))
	}
	return string(buf)
}

func (f *flat[U]) codeUnits(start, end int) []uint16 {
	out := make([]uint16, end-start)
	for i, u := range f.units[start:end] {
		out[i] = uint16(u)
	}
	return out
}

// wide holds UTF-16 units; a supplementary code point spans two of them.
type wide struct {
	units []uint16
}

func (w *wide) width() Width { return WidthWide }
func (w *wide) unitLen() int { return len(w.units) }
func (w *wide) buildIndex() []int { return BuildIndex(w.units) }

func (w *wide) decode(start, end int) rune {
	if end-start == 2 {
		return utf16.DecodeRune(rune(w.units[start]), rune(w.units[start+1]))
	}
	return rune(w.units[start])
}

func (w *wide) text(start, end int) string {
	return string(utf16.Decode(w.units[start:end]))
}

func (w *wide) codeUnits(start, end int) []uint16 {
	out := make([]uint16, end-start)
	copy(out, w.units[start:end])
	return out
}

// storageFromString picks the narrowest storage able to hold every code
// point of s.
func storageFromString(s string) storage {
	var maxRune rune
	n := 0
	for _, r := range s {
		maxRune = max(maxRune, r)
		n++
	}

	switch {
	case maxRune <= 0xFF:
		units := make([]uint8, 0, n)
		for _, r := range s {
			units = append(units, uint8(r))
		}
		return &flat[uint8]{w: WidthNarrow, units: units}
	case maxRune <= 0xFFFF:
		units := make([]uint16, 0, n)
		for _, r := range s {
			units = append(units, uint16(r))
		}
		return &flat[uint16]{w: WidthBMP, units: units}
	default:
		units := make([]uint16, 0, n+n/4)
		for _, r := range s {
			units = utf16.AppendRune(units, r)
		}
		return &wide{units: units}
	}
}

// storageFromUTF16 adopts a copy of raw UTF-16 units, narrowing when no
// surrogate pair is present. Unpaired surrogates are kept as-is.
func storageFromUTF16(src []uint16) storage {
	var maxUnit uint16
	paired := false
	for i, u := range src {
		maxUnit = max(maxUnit, u)
		if i+1 < len(src) && isHighSurrogate(u) && isLowSurrogate(src[i+1]) {
			paired = true
		}
	}

	switch {
	case paired:
		units := make([]uint16, len(src))
		copy(units, src)
		return &wide{units: units}
	case maxUnit <= 0xFF:
		units := make([]uint8, len(src))
		for i, u := range src {
			units[i] = uint8(u)
		}
		return &flat[uint8]{w: WidthNarrow, units: units}
	default:
		units := make([]uint16, len(src))
		copy(units, src)
		return &flat[uint16]{w: WidthBMP, units: units}
	}
}
