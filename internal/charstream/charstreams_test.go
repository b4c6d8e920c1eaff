package charstream

import (
	"errors"
	"os"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestFromBuffer(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		hint  string
		text  string
		size  int
		width Width
	}{
		{
			name:  "default utf-8",
			data:  []byte("aΔb"),
			text:  "aΔb",
			size:  3,
			width: WidthBMP,
		},
		{
			name:  "utf-8 bom stripped",
			data:  []byte("\xEF\xBB\xBFhi"),
			hint:  "utf-8",
			text:  "hi",
			size:  2,
			width: WidthNarrow,
		},
		{
			name:  "invalid utf-8 replaced",
			data:  []byte{'a', 0xFF, 'b'},
			text:  "a�b",
			size:  3,
			width: WidthBMP,
		},
		{
			name:  "utf-16le with bom",
			data:  []byte{0xFF, 0xFE, 0x61, 0x00, 0x3D, 0xD8, 0x31, 0xDE},
			hint:  "utf-16le",
			text:  "a😱",
			size:  2,
			width: WidthWide,
		},
		{
			name:  "utf-16be",
			data:  []byte{0x00, 0x61, 0xD8, 0x3D, 0xDE, 0x31, 0x00, 0x62},
			hint:  "UTF-16BE",
			text:  "a😱b",
			size:  3,
			width: WidthWide,
		},
		{
			name:  "latin1",
			data:  []byte("caf\xE9"),
			hint:  "latin1",
			text:  "café",
			size:  4,
			width: WidthNarrow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := FromBuffer(tt.data, tt.hint)
			require.NoError(t, err)
			require.Equal(t, tt.size, cs.Size())
			require.Equal(t, tt.width, cs.Source().Width())
			require.Equal(t, tt.text, cs.String())
		})
	}
}

func TestFromBuffer_UnknownEncoding(t *testing.T) {
	_, err := FromBuffer([]byte("x"), "klingon")
	require.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestFromBuffer_UTF16KeepsLoneSurrogate(t *testing.T) {
	cs, err := FromBuffer([]byte{0x61, 0x00, 0x3D, 0xD8, 0x62, 0x00}, "utf-16le")
	require.NoError(t, err)
	require.Equal(t, 3, cs.Size())
	require.Equal(t, rune(0xD83D), cs.LA(2))
}

func TestFromUTF16(t *testing.T) {
	t.Run("narrowed", func(t *testing.T) {
		cs := FromUTF16([]uint16{'a', 'b', 0xE9})
		require.Equal(t, WidthNarrow, cs.Source().Width())
		require.Equal(t, "abé", cs.String())
	})

	t.Run("pair makes wide", func(t *testing.T) {
		cs := FromUTF16([]uint16{'a', 0xD83D, 0xDE31})
		require.Equal(t, WidthWide, cs.Source().Width())
		require.Equal(t, 2, cs.Size())
		require.Equal(t, '😱', cs.LA(2))
	})

	t.Run("lone surrogate", func(t *testing.T) {
		cs := FromUTF16([]uint16{'a', 0xD83D, 'b'})
		require.Equal(t, WidthBMP, cs.Source().Width())
		require.Equal(t, 3, cs.Size())

		r, err := cs.Consume()
		require.NoError(t, err)
		require.Equal(t, 'a', r)
		r, err = cs.Consume()
		require.NoError(t, err)
		require.Equal(t, rune(0xD83D), r)

		text, err := cs.GetText(Of(1, 1))
		require.NoError(t, err)
		require.Equal(t, "�", text)

		units, err := cs.TextUnits(Of(0, 2))
		require.NoError(t, err)
		require.Equal(t, []uint16{'a', 0xD83D, 'b'}, units)
	})

	t.Run("input copied", func(t *testing.T) {
		units := []uint16{'x', 0x394}
		cs := FromUTF16(units)
		units[0] = 'y'
		require.Equal(t, 'x', cs.LA(1))
	})
}

func TestTextUnits(t *testing.T) {
	cs := FromString("a😱b")

	units, err := cs.TextUnits(Of(1, 1))
	require.NoError(t, err)
	require.Equal(t, []uint16{0xD83D, 0xDE31}, units)

	units, err = cs.TextUnits(Of(2, 1))
	require.NoError(t, err)
	require.Nil(t, units)

	_, err = cs.TextUnits(Of(0, 9))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestFromReader(t *testing.T) {
	cs, err := FromReader(strings.NewReader("abc😱"), "", WithSourceName("stdin"))
	require.NoError(t, err)
	require.Equal(t, 4, cs.Size())
	require.Equal(t, "stdin", cs.SourceName())

	_, err = FromReader(iotest.ErrReader(errors.New("boom")), "")
	require.ErrorContains(t, err, "boom")
}

func TestFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/queries/open.bql", []byte("status = öpen"), 0o644))

	cs, err := FromFile(fs, "/queries/open.bql", "")
	require.NoError(t, err)
	require.Equal(t, "/queries/open.bql", cs.SourceName())
	require.Equal(t, 13, cs.Size())

	named, err := FromFile(fs, "/queries/open.bql", "", WithSourceName("open"))
	require.NoError(t, err)
	require.Equal(t, "open", named.SourceName())

	_, err = FromFile(fs, "/missing.bql", "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveEncoding(t *testing.T) {
	tests := map[string]string{
		"":         "utf-8",
		"UTF8":     "utf-8",
		"utf-16":   "utf-16le",
		"utf-16be": "utf-16be",
		"latin1":   "windows-1252",
	}
	for label, want := range tests {
		got, err := ResolveEncoding(label)
		require.NoError(t, err, label)
		require.Equal(t, want, got, label)
	}

	_, err := ResolveEncoding("nope")
	require.ErrorIs(t, err, ErrUnknownEncoding)
}
