package charstream

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// ResolveEncoding returns the canonical name for an encoding label such as
// "utf8", "UTF-16LE" or "latin1". An empty label resolves to "utf-8".
func ResolveEncoding(label string) (string, error) {
	_, name, err := lookupEncoding(label)
	return name, err
}

func lookupEncoding(label string) (encoding.Encoding, string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return unicode.UTF8, "utf-8", nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, "", fmt.Errorf("encoding %q: %w", label, ErrUnknownEncoding)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, "", fmt.Errorf("encoding %q: %w", label, ErrUnknownEncoding)
	}
	return enc, name, nil
}

// decodeStorage materializes data into storage. UTF-16 input is read unit
// by unit so unpaired surrogates survive; other encodings go through the
// x/text decoder, which maps invalid sequences to U+FFFD.
func decodeStorage(data []byte, hint string) (storage, error) {
	enc, name, err := lookupEncoding(hint)
	if err != nil {
		return nil, err
	}

	switch name {
	case "utf-16le":
		return storageFromUTF16(readUTF16(data, binary.LittleEndian)), nil
	case "utf-16be":
		return storageFromUTF16(readUTF16(data, binary.BigEndian)), nil
	case "utf-8":
		enc = unicode.UTF8BOM
	}

	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return storageFromString(string(text)), nil
}

// readUTF16 splits data into units, dropping a leading byte-order mark and
// an odd trailing byte.
func readUTF16(data []byte, order binary.ByteOrder) []uint16 {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, order.Uint16(data[i:]))
	}
	if len(units) > 0 && units[0] == 0xFEFF {
		units = units[1:]
	}
	return units
}
