package charstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		size  int
		units int
		width Width
	}{
		{name: "narrow", input: "ab", size: 2, units: 2, width: WidthNarrow},
		{name: "latin1", input: "café", size: 4, units: 4, width: WidthNarrow},
		{name: "bmp", input: "aΔb", size: 3, units: 3, width: WidthBMP},
		{name: "supplementary", input: "a😱b", size: 3, units: 4, width: WidthWide},
		{name: "mixed", input: "a😱bΔc😱d", size: 7, units: 9, width: WidthWide},
		{name: "empty", input: "", size: 0, units: 0, width: WidthNarrow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := FromString(tt.input)
			require.Equal(t, tt.size, cs.Size())
			require.Equal(t, tt.units, cs.Units())
			require.Equal(t, tt.width, cs.Source().Width())
		})
	}
}

func TestGetText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		interval Interval
		expected string
	}{
		{name: "narrow", input: "abcdef", interval: Of(2, 4), expected: "cde"},
		{name: "bmp", input: "abcΔef", interval: Of(2, 4), expected: "cΔe"},
		{name: "supplementary", input: "abc😱ef", interval: Of(2, 4), expected: "c😱e"},
		{name: "single supplementary", input: "abc😱ef", interval: Of(3, 3), expected: "😱"},
		{name: "whole", input: "a😱bΔc😱d", interval: Of(0, 6), expected: "a😱bΔc😱d"},
		{name: "empty interval", input: "abc", interval: Of(2, 1), expected: ""},
		{name: "stop clamped", input: "abc", interval: Of(1, 3), expected: "bc"},
		{name: "start at size", input: "abc", interval: Of(3, 3), expected: ""},
		{name: "empty stream", input: "", interval: Of(0, 0), expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := FromString(tt.input)
			got, err := cs.GetText(tt.interval)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
			require.Equal(t, 0, cs.Index(), "GetText must not move the cursor")
		})
	}
}

func TestGetText_OutOfRange(t *testing.T) {
	cs := FromString("abc")
	for _, iv := range []Interval{Of(-1, 1), Of(4, 5), Of(0, 4)} {
		_, err := cs.GetText(iv)
		require.ErrorIs(t, err, ErrIndexOutOfRange, "interval %s", iv)
	}
}

func TestLA(t *testing.T) {
	cs := FromString("a😱b")

	require.Equal(t, 'a', cs.LA(1))
	require.Equal(t, '😱', cs.LA(2))
	require.Equal(t, 'b', cs.LA(3))
	require.Equal(t, EOF, cs.LA(4))
	require.Equal(t, EOF, cs.LA(100))
	require.Equal(t, rune(0), cs.LA(0))
	require.Equal(t, EOF, cs.LA(-1))
	require.Equal(t, 0, cs.Index(), "LA must not move the cursor")
}

func TestConsume(t *testing.T) {
	cs := FromString("aΔ😱")

	var got []rune
	for cs.LA(1) != EOF {
		r, err := cs.Consume()
		require.NoError(t, err)
		got = append(got, r)
	}

	require.Equal(t, []rune{'a', 'Δ', '😱'}, got)
	require.Equal(t, 3, cs.Index())

	r, err := cs.Consume()
	require.ErrorIs(t, err, ErrEndOfStream)
	require.Equal(t, EOF, r)
	require.Equal(t, 3, cs.Index())
}

func TestSeek(t *testing.T) {
	cs := FromString("ab😱cd")

	require.NoError(t, cs.Seek(2))
	require.Equal(t, '😱', cs.LA(1))

	require.NoError(t, cs.Seek(5))
	require.Equal(t, EOF, cs.LA(1))

	require.NoError(t, cs.Seek(0))
	require.Equal(t, 'a', cs.LA(1))

	require.ErrorIs(t, cs.Seek(-1), ErrIndexOutOfRange)
	require.ErrorIs(t, cs.Seek(6), ErrIndexOutOfRange)
	require.Equal(t, 0, cs.Index(), "failed seek must not move the cursor")
}

func TestMarkRelease_Nested(t *testing.T) {
	cs := FromString("abcdef")

	outer := cs.Mark()
	_, _ = cs.Consume()
	_, _ = cs.Consume()

	inner := cs.Mark()
	_, _ = cs.Consume()
	require.Equal(t, 2, cs.Marks())

	cs.Release(inner)
	require.Equal(t, 2, cs.Index())
	require.Equal(t, 1, cs.Marks())

	cs.Release(outer)
	require.Equal(t, 0, cs.Index())
	require.Equal(t, 0, cs.Marks())
}

func TestMarkCommit(t *testing.T) {
	cs := FromString("abc")

	m := cs.Mark()
	_, _ = cs.Consume()
	cs.Commit(m)

	require.Equal(t, 1, cs.Index())
	require.Equal(t, 0, cs.Marks())
}

func TestRelease_Unbalanced(t *testing.T) {
	t.Run("empty stack", func(t *testing.T) {
		cs := FromString("abc")
		m := cs.Mark()
		cs.Release(m)
		require.PanicsWithError(t, "release mark 1 with 0 outstanding: unbalanced mark", func() {
			cs.Release(m)
		})
	})

	t.Run("not top", func(t *testing.T) {
		cs := FromString("abc")
		outer := cs.Mark()
		cs.Mark()
		require.Panics(t, func() { cs.Release(outer) })
	})

	t.Run("double release", func(t *testing.T) {
		cs := FromString("abc")
		m := cs.Mark()
		cs.Release(m)
		require.Panics(t, func() { cs.Commit(m) })
	})

	t.Run("stale handle at same depth", func(t *testing.T) {
		cs := FromString("abc")
		stale := cs.Mark()
		cs.Release(stale)
		_, _ = cs.Consume()
		live := cs.Mark()
		_, _ = cs.Consume()

		require.Panics(t, func() { cs.Release(stale) })
		require.Equal(t, 1, cs.Marks())
		require.Equal(t, 2, cs.Index())

		cs.Release(live)
		require.Equal(t, 1, cs.Index())
	})

	t.Run("handle from fork", func(t *testing.T) {
		cs := FromString("abc")
		fork := cs.Fork()
		foreign := fork.Mark()
		cs.Mark()

		require.PanicsWithError(t, "release mark 1 from another stream: unbalanced mark", func() {
			cs.Release(foreign)
		})
		require.Equal(t, 1, cs.Marks())
		require.Equal(t, 1, fork.Marks())
	})

	t.Run("zero handle", func(t *testing.T) {
		cs := FromString("abc")
		cs.Mark()
		require.Panics(t, func() { cs.Commit(Mark{}) })
		require.Equal(t, 1, cs.Marks())
	})
}

func TestRelease_PanicWrapsSentinel(t *testing.T) {
	cs := FromString("abc")
	defer func() {
		rec := recover()
		err, ok := rec.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, ErrUnbalancedMark)
	}()
	cs.Release(Mark{})
}

func TestFork_SharesSource(t *testing.T) {
	cs := FromString("a😱b")
	_, _ = cs.Consume()
	cs.Mark()

	fork := cs.Fork()
	require.Same(t, cs.Source(), fork.Source())
	require.Equal(t, 1, fork.Index())
	require.Equal(t, 0, fork.Marks())

	_, _ = fork.Consume()
	require.Equal(t, 2, fork.Index())
	require.Equal(t, 1, cs.Index(), "fork cursor must be independent")
}

func TestSourceName(t *testing.T) {
	require.Equal(t, DefaultSourceName, FromString("x").SourceName())
	require.Equal(t, "query.bql", FromString("x", WithSourceName("query.bql")).SourceName())
}

func TestSource_Offsets(t *testing.T) {
	src := FromString("a😱b").Source()
	offsets := src.Offsets()
	require.Equal(t, []int{0, 1, 3, 4}, offsets)

	offsets[1] = 99
	require.Equal(t, []int{0, 1, 3, 4}, src.Offsets(), "Offsets must return a copy")
}

func TestString(t *testing.T) {
	require.Equal(t, "a😱b", FromString("a😱b").String())
	require.Equal(t, "", FromString("").String())
}

func TestSource_WithName(t *testing.T) {
	src := FromString("a😱b", WithSourceName("one")).Source()
	renamed := src.WithName("two")

	require.Equal(t, "one", src.Name())
	require.Equal(t, "two", renamed.Name())
	require.Equal(t, src.Offsets(), renamed.Offsets())
	require.Equal(t, DefaultSourceName, src.WithName("").Name())
	require.Equal(t, "two", renamed.NewStream().SourceName())
}
