package tracing

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/runestream/internal/charstream"
)

// Span names.
const (
	SpanLoad   = "source.load"
	SpanLex    = "bql.lex"
	SpanVerify = "source.verify"
)

// Span attribute keys.
const (
	AttrSourceName  = "source.name"
	AttrSourceSize  = "source.size"
	AttrSourceUnits = "source.units"
	AttrSourceWidth = "source.width"
	AttrTokenCount  = "lex.tokens"
	AttrIllegal     = "lex.illegal"
)

// SourceAttributes describes a source for span attributes.
func SourceAttributes(src *charstream.Source) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSourceName, src.Name()),
		attribute.Int(AttrSourceSize, src.Size()),
		attribute.Int(AttrSourceUnits, src.Units()),
		attribute.String(AttrSourceWidth, src.Width().String()),
	}
}
