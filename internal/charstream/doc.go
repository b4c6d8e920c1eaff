// Package charstream provides a code-point addressed character stream used as
// the input layer for hand-written lexers and parsers.
//
// Text is materialized once into the narrowest storage that can hold it:
//
//  1. Narrow: one byte per code point, for text whose code points all fit
//     in U+0000..U+00FF.
//  2. BMP: one 16-bit unit per code point, for text with no supplementary
//     characters.
//  3. Wide: UTF-16 units, where supplementary characters occupy a surrogate
//     pair.
//
// Whatever the storage, a CharStream is indexed by code point. Construction
// builds an index table mapping each code-point ordinal to its storage
// offset, so LA, Consume and Seek are table lookups and GetText decodes only
// the requested range.
//
// The storage and index live in an immutable Source that may be shared by
// any number of CharStream cursors, each with its own position and mark
// stack. A single CharStream is not safe for concurrent use.
package charstream
