package charstream

// DefaultSourceName labels streams constructed without WithSourceName.
const DefaultSourceName = "<unknown>"

// Source is the immutable storage and code-point index behind one or more
// CharStreams. It is safe to share across goroutines.
type Source struct {
	name  string
	store storage
	index []int
}

func newSource(name string, st storage) *Source {
	if name == "" {
		name = DefaultSourceName
	}
	return &Source{name: name, store: st, index: st.buildIndex()}
}

// Name returns the diagnostic label attached at construction.
func (s *Source) Name() string { return s.name }

// WithName returns a Source sharing s's storage and index under a different
// label.
func (s *Source) WithName(name string) *Source {
	if name == "" {
		name = DefaultSourceName
	}
	cp := *s
	cp.name = name
	return &cp
}

// Size returns the number of code points.
func (s *Source) Size() int { return len(s.index) - 1 }

// Units returns the storage length in units.
func (s *Source) Units() int { return s.index[len(s.index)-1] }

// Width reports the storage class chosen for the text.
func (s *Source) Width() Width { return s.store.width() }

// Offsets returns a copy of the index table, including the trailing
// sentinel.
func (s *Source) Offsets() []int {
	out := make([]int, len(s.index))
	copy(out, s.index)
	return out
}

// NewStream returns a fresh cursor over s positioned at 0.
func (s *Source) NewStream() *CharStream {
	return &CharStream{src: s}
}

// at decodes code point i; callers guarantee 0 <= i < Size().
func (s *Source) at(i int) rune {
	return s.store.decode(s.index[i], s.index[i+1])
}
