package charstream

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/zjrosen/runestream/internal/log"
)

type options struct {
	name string
}

// Option configures stream construction.
type Option func(*options)

// WithSourceName attaches a label used only in diagnostics.
func WithSourceName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newStream(st storage, opts []Option) *CharStream {
	o := buildOptions(opts)
	src := newSource(o.name, st)
	log.Debug(log.CatStream, "Indexed source",
		"name", src.name, "width", src.Width(), "size", src.Size(), "units", src.Units())
	return src.NewStream()
}

// FromString builds a stream over text.
func FromString(text string, opts ...Option) *CharStream {
	return newStream(storageFromString(text), opts)
}

// FromUTF16 builds a stream over raw UTF-16 units. Unpaired surrogates are
// kept and each counts as one code point.
func FromUTF16(units []uint16, opts ...Option) *CharStream {
	return newStream(storageFromUTF16(units), opts)
}

// FromBuffer decodes data according to encodingHint and builds a stream over
// the result. An empty hint means UTF-8.
func FromBuffer(data []byte, encodingHint string, opts ...Option) (*CharStream, error) {
	st, err := decodeStorage(data, encodingHint)
	if err != nil {
		return nil, err
	}
	return newStream(st, opts), nil
}

// FromReader reads r to EOF and builds a stream over its contents.
func FromReader(r io.Reader, encodingHint string, opts ...Option) (*CharStream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return FromBuffer(data, encodingHint, opts...)
}

// FromFile loads path from fs and builds a stream over it. The source name
// defaults to path.
func FromFile(fs afero.Fs, path, encodingHint string, opts ...Option) (*CharStream, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		log.ErrorErr(log.CatStream, "Read failed", err, "path", path)
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	opts = append([]Option{WithSourceName(path)}, opts...)
	return FromBuffer(data, encodingHint, opts...)
}
