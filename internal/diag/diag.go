// Package diag resolves code-point offsets in a CharStream to line/column
// positions and renders caret snippets for error messages.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/runestream/internal/charstream"
)

// Position is a 1-based line and a 0-based column counted in code points.
type Position struct {
	Line   int
	Column int
}

// String formats the position as line:column with a 1-based column, the way
// editors display it.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column+1)
}

// Lines indexes line starts of a stream. It reads through a private cursor,
// so the caller's stream position is never disturbed.
type Lines struct {
	stream *charstream.CharStream
	starts []int
}

// NewLines scans cs once for '\n' and records where every line starts.
func NewLines(cs *charstream.CharStream) *Lines {
	scan := cs.Source().NewStream()
	starts := []int{0}
	for {
		r, err := scan.Consume()
		if err != nil {
			break
		}
		if r == '\n' {
			starts = append(starts, scan.Index())
		}
	}
	return &Lines{stream: scan, starts: starts}
}

// Count returns the number of lines. A trailing newline starts an empty
// final line.
func (l *Lines) Count() int { return len(l.starts) }

// Locate returns the position of code-point offset index. Offsets past the
// end clamp to the end of the stream.
func (l *Lines) Locate(index int) Position {
	index = max(0, min(index, l.stream.Size()))
	i := sort.SearchInts(l.starts, index+1) - 1
	return Position{Line: i + 1, Column: index - l.starts[i]}
}

// Line returns the text of 1-based line n without its line terminator,
// along with the interval it occupies.
func (l *Lines) Line(n int) (string, charstream.Interval) {
	if n < 1 || n > len(l.starts) {
		return "", charstream.Of(0, -1)
	}
	start := l.starts[n-1]
	stop := l.stream.Size() - 1
	if n < len(l.starts) {
		stop = l.starts[n] - 2 // drop '\n'
	}
	span := charstream.Of(start, stop)
	text, _ := l.stream.GetText(span)
	return strings.TrimSuffix(text, "\r"), span
}

// Caret renders the source line containing iv.Start with a caret underline
// below the interval. Spans running past the end of the line are cut at it.
// The underline is as wide as the grapheme clusters it covers.
//
//	query.bql:1:9
//	title = "😱 fire"
//	        ^^^^^^^^^
func (l *Lines) Caret(iv charstream.Interval) string {
	pos := l.Locate(iv.Start)
	text, span := l.Line(pos.Line)

	prefix, _ := l.stream.GetText(charstream.Of(span.Start, iv.Start-1))
	marked, _ := l.stream.GetText(charstream.Of(iv.Start, min(iv.Stop, span.Stop)))
	marked = strings.TrimSuffix(marked, "\r")

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s\n%s\n", l.stream.SourceName(), pos, text)
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	b.WriteString(strings.Repeat("^", max(1, uniseg.StringWidth(marked))))
	return b.String()
}
