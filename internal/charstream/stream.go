package charstream

import "fmt"

// EOF is returned by LA for positions at or past the end of the stream.
const EOF rune = -1

// Mark is an opaque checkpoint handle returned by CharStream.Mark. A handle
// is only valid on the stream that issued it and only until it is popped.
type Mark struct {
	stream *CharStream
	serial int
	depth  int
}

type markEntry struct {
	pos    int
	serial int
}

// CharStream is a cursor over a Source addressed by code point.
type CharStream struct {
	src    *Source
	pos    int
	marks  []markEntry
	serial int
}

// Source returns the shared, immutable source behind the stream.
func (cs *CharStream) Source() *Source { return cs.src }

// SourceName returns the diagnostic label of the underlying source.
func (cs *CharStream) SourceName() string { return cs.src.name }

// Size returns the number of code points in the stream.
func (cs *CharStream) Size() int { return cs.src.Size() }

// Units returns the storage length in units.
func (cs *CharStream) Units() int { return cs.src.Units() }

// Index returns the cursor position in code points.
func (cs *CharStream) Index() int { return cs.pos }

// LA returns the code point k-1 positions ahead of the cursor without moving
// it, so LA(1) is the next code point to be consumed. It returns EOF past
// the end of the stream. LA(0) is undefined and returns 0; look-behind is not
// supported and negative k returns EOF.
func (cs *CharStream) LA(k int) rune {
	switch {
	case k == 0:
		return 0
	case k < 0:
		return EOF
	}
	i := cs.pos + k - 1
	if i >= cs.src.Size() {
		return EOF
	}
	return cs.src.at(i)
}

// Consume returns the code point under the cursor and advances by one.
func (cs *CharStream) Consume() (rune, error) {
	if cs.pos >= cs.src.Size() {
		return EOF, fmt.Errorf("consume at %d: %w", cs.pos, ErrEndOfStream)
	}
	r := cs.src.at(cs.pos)
	cs.pos++
	return r, nil
}

// Seek moves the cursor to absolute position n, forwards or backwards.
func (cs *CharStream) Seek(n int) error {
	if n < 0 || n > cs.src.Size() {
		return fmt.Errorf("seek %d in stream of size %d: %w", n, cs.src.Size(), ErrIndexOutOfRange)
	}
	cs.pos = n
	return nil
}

// Mark saves the cursor position and returns a handle for Release or Commit.
// Marks nest without limit but must be released in reverse order.
func (cs *CharStream) Mark() Mark {
	cs.serial++
	cs.marks = append(cs.marks, markEntry{pos: cs.pos, serial: cs.serial})
	return Mark{stream: cs, serial: cs.serial, depth: len(cs.marks)}
}

// Release pops m, which must be the most recent outstanding mark, and
// restores the cursor to the position saved by it. Releasing out of order,
// releasing a handle twice, or releasing a handle issued by another stream
// panics with an error wrapping ErrUnbalancedMark.
func (cs *CharStream) Release(m Mark) {
	cs.pos = cs.pop(m, "release")
}

// Commit pops m like Release but leaves the cursor where it is.
func (cs *CharStream) Commit(m Mark) {
	cs.pop(m, "commit")
}

// Marks returns the number of outstanding marks.
func (cs *CharStream) Marks() int { return len(cs.marks) }

func (cs *CharStream) pop(m Mark, op string) int {
	n := len(cs.marks)
	if m.stream != cs {
		panic(fmt.Errorf("%s mark %d from another stream: %w", op, m.depth, ErrUnbalancedMark))
	}
	if n == 0 || m.depth != n || cs.marks[n-1].serial != m.serial {
		panic(fmt.Errorf("%s mark %d with %d outstanding: %w", op, m.depth, n, ErrUnbalancedMark))
	}
	saved := cs.marks[n-1].pos
	cs.marks = cs.marks[:n-1]
	return saved
}

// GetText returns the original text covered by iv. An empty interval yields
// "". A Stop equal to Size() is clamped to the last code point; any other
// bound outside [0, Size()] is an error. The cursor does not move.
func (cs *CharStream) GetText(iv Interval) (string, error) {
	start, end, err := cs.span(iv)
	if err != nil || start == end {
		return "", err
	}
	return cs.src.store.text(start, end), nil
}

// TextUnits returns the UTF-16 units covered by iv. Unlike GetText it
// preserves unpaired surrogates exactly.
func (cs *CharStream) TextUnits(iv Interval) ([]uint16, error) {
	start, end, err := cs.span(iv)
	if err != nil || start == end {
		return nil, err
	}
	return cs.src.store.codeUnits(start, end), nil
}

// span maps iv onto a half-open storage range.
func (cs *CharStream) span(iv Interval) (int, int, error) {
	size := cs.src.Size()
	if iv.Start < 0 || iv.Start > size || iv.Stop > size {
		return 0, 0, fmt.Errorf("text %s in stream of size %d: %w", iv, size, ErrIndexOutOfRange)
	}
	stop := min(iv.Stop, size-1)
	if iv.Start > stop {
		return 0, 0, nil
	}
	return cs.src.index[iv.Start], cs.src.index[stop+1], nil
}

// Fork returns a sibling cursor over the same Source, positioned where cs is
// and with no outstanding marks.
func (cs *CharStream) Fork() *CharStream {
	return &CharStream{src: cs.src, pos: cs.pos}
}

func (cs *CharStream) String() string {
	text, _ := cs.GetText(Of(0, cs.Size()-1))
	return text
}
