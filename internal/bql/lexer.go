package bql

import (
	"unicode"

	"github.com/zjrosen/runestream/internal/charstream"
	"github.com/zjrosen/runestream/internal/log"
)

// Lexer tokenizes BQL input read from a CharStream. Token spans are code-point
// intervals into that stream.
type Lexer struct {
	input *charstream.CharStream
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	return NewStreamLexer(charstream.FromString(input))
}

// NewStreamLexer creates a lexer that reads from cs starting at its current
// position.
func NewStreamLexer(cs *charstream.CharStream) *Lexer {
	return &Lexer{input: cs}
}

// Stream returns the underlying character stream.
func (l *Lexer) Stream() *charstream.CharStream { return l.input }

// Tokenize reads tokens up to and including EOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.input.Index()
	ch := l.peek()

	switch ch {
	case '(':
		return l.single(start, TokenLParen)
	case ')':
		return l.single(start, TokenRParen)
	case ',':
		return l.single(start, TokenComma)
	case '=':
		return l.single(start, TokenEq)
	case '~':
		return l.single(start, TokenContains)
	case '!':
		switch l.peekN(2) {
		case '=':
			return l.pair(start, TokenNeq)
		case '~':
			return l.pair(start, TokenNotContains)
		}
		return l.illegal(start)
	case '<':
		if l.peekN(2) == '=' {
			return l.pair(start, TokenLte)
		}
		return l.single(start, TokenLt)
	case '>':
		if l.peekN(2) == '=' {
			return l.pair(start, TokenGte)
		}
		return l.single(start, TokenGt)
	case '"', '\'':
		return l.readString(start, ch)
	case charstream.EOF:
		return Token{Type: TokenEOF, Span: charstream.Of(start, start-1)}
	}

	switch {
	case isLetter(ch):
		l.readIdentifier()
		tok := l.token(start, TokenIdent)
		tok.Type = LookupKeyword(tok.Literal)
		return tok
	case isDigit(ch) || (ch == '-' && isDigit(l.peekN(2))):
		l.readNumber()
		return l.token(start, TokenNumber)
	}
	return l.illegal(start)
}

// token builds a token covering [start, cursor).
func (l *Lexer) token(start int, typ TokenType) Token {
	span := charstream.Of(start, l.input.Index()-1)
	text, _ := l.input.GetText(span)
	return Token{Type: typ, Literal: text, Span: span}
}

func (l *Lexer) single(start int, typ TokenType) Token {
	l.advance()
	return l.token(start, typ)
}

func (l *Lexer) pair(start int, typ TokenType) Token {
	l.advance()
	l.advance()
	return l.token(start, typ)
}

func (l *Lexer) illegal(start int) Token {
	l.advance()
	tok := l.token(start, TokenIllegal)
	log.Debug(log.CatLexer, "Illegal character", "source", l.input.SourceName(), "pos", start, "literal", tok.Literal)
	return tok
}

// peek returns the code point under the cursor.
func (l *Lexer) peek() rune { return l.input.LA(1) }

// peekN returns the code point n-1 positions ahead of the cursor.
func (l *Lexer) peekN(n int) rune { return l.input.LA(n) }

// advance consumes one code point; at end of input it is a no-op.
func (l *Lexer) advance() {
	_, _ = l.input.Consume()
}

// skipWhitespace advances past whitespace characters.
func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// readIdentifier reads an identifier (letters, digits, underscores, hyphens).
func (l *Lexer) readIdentifier() {
	for ch := l.peek(); isLetter(ch) || isDigit(ch) || ch == '-'; ch = l.peek() {
		l.advance()
	}
}

// readString reads a quoted string (supports both " and '). The literal
// excludes the quotes; an unterminated string is illegal.
func (l *Lexer) readString(start int, quote rune) Token {
	l.advance() // skip opening quote
	for ch := l.peek(); ch != quote && ch != charstream.EOF; ch = l.peek() {
		l.advance()
	}
	if l.peek() == charstream.EOF {
		tok := l.token(start, TokenIllegal)
		log.Debug(log.CatLexer, "Unterminated string", "source", l.input.SourceName(), "pos", start)
		return tok
	}

	inner := charstream.Of(start+1, l.input.Index()-1)
	l.advance() // skip closing quote
	text, _ := l.input.GetText(inner)
	return Token{Type: TokenString, Literal: text, Span: charstream.Of(start, l.input.Index()-1)}
}

// readNumber reads an integer, a decimal such as 1.5, or a date/time offset
// like -7d, -24h, -3m.
func (l *Lexer) readNumber() {
	if l.peek() == '-' {
		l.advance()
	}
	l.readDigits()

	// "1." without a following digit leaves the dot for the next token.
	if l.peek() == '.' {
		m := l.input.Mark()
		l.advance()
		if isDigit(l.peek()) {
			l.readDigits()
			l.input.Commit(m)
			return
		}
		l.input.Release(m)
	}

	switch l.peek() {
	case 'd', 'D', 'h', 'H', 'm', 'M':
		l.advance()
	}
}

func (l *Lexer) readDigits() {
	for isDigit(l.peek()) {
		l.advance()
	}
}

// isLetter returns true if c is a Unicode letter or underscore.
func isLetter(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

// isDigit returns true if c is an ASCII digit.
func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
