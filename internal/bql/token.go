// Package bql tokenizes and parses the Beads Query Language over a
// code-point CharStream, so positions count characters rather than bytes.
package bql

import (
	"fmt"
	"strings"

	"github.com/zjrosen/runestream/internal/charstream"
)

// TokenType classifies a lexeme.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdent
	TokenString
	TokenNumber // also date offsets such as -7d

	TokenLParen
	TokenRParen
	TokenComma

	TokenEq
	TokenNeq
	TokenLt
	TokenGt
	TokenLte
	TokenGte
	TokenContains
	TokenNotContains

	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenOrder
	TokenBy
	TokenAsc
	TokenDesc
	TokenTrue
	TokenFalse

	tokenTypeCount
)

var tokenNames = [tokenTypeCount]string{
	TokenEOF:         "EOF",
	TokenIllegal:     "ILLEGAL",
	TokenIdent:       "IDENT",
	TokenString:      "STRING",
	TokenNumber:      "NUMBER",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenComma:       ",",
	TokenEq:          "=",
	TokenNeq:         "!=",
	TokenLt:          "<",
	TokenGt:          ">",
	TokenLte:         "<=",
	TokenGte:         ">=",
	TokenContains:    "~",
	TokenNotContains: "!~",
	TokenAnd:         "AND",
	TokenOr:          "OR",
	TokenNot:         "NOT",
	TokenIn:          "IN",
	TokenOrder:       "ORDER",
	TokenBy:          "BY",
	TokenAsc:         "ASC",
	TokenDesc:        "DESC",
	TokenTrue:        "TRUE",
	TokenFalse:       "FALSE",
}

func (t TokenType) String() string {
	if t < 0 || t >= tokenTypeCount {
		return "UNKNOWN"
	}
	return tokenNames[t]
}

// Token is one lexeme with the code-point interval it covers.
type Token struct {
	Type    TokenType
	Literal string              // string tokens exclude their quotes
	Span    charstream.Interval // quotes included
}

// Pos returns the code-point offset where the token starts.
func (t Token) Pos() int { return t.Span.Start }

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%s", t.Type, t.Literal, t.Span)
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"order": TokenOrder,
	"by":    TokenBy,
	"asc":   TokenAsc,
	"desc":  TokenDesc,
	"true":  TokenTrue,
	"false": TokenFalse,
}

// LookupKeyword maps ident to its keyword type, ignoring case, or TokenIdent.
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return TokenIdent
}

// IsComparisonOp reports whether t may sit between a field and a value.
func (t TokenType) IsComparisonOp() bool {
	return t >= TokenEq && t <= TokenNotContains
}
