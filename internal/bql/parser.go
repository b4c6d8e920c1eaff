package bql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zjrosen/runestream/internal/charstream"
)

// SyntaxError is a parse failure located by code-point interval.
type SyntaxError struct {
	Msg  string
	Span charstream.Interval
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Span)
}

// Parser builds a Query from the tokens of one stream, keeping one token of
// lookahead beyond the current one.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a parser for the input.
func NewParser(input string) *Parser {
	return NewStreamParser(charstream.FromString(input))
}

// NewStreamParser creates a parser reading tokens from cs.
func NewStreamParser(cs *charstream.CharStream) *Parser {
	p := &Parser{lexer: NewStreamLexer(cs)}
	p.advance()
	p.advance()
	return p
}

// Parse reads the whole stream into a Query. Errors are *SyntaxError.
//
//	query      = [ expression ] [ "order" "by" orderTerm { "," orderTerm } ]
//	expression = term { "or" term }
//	term       = factor { "and" factor }
//	factor     = "not" factor | "(" expression ")" | comparison
//	comparison = field op value | field [ "not" ] "in" "(" value { "," value } ")"
func (p *Parser) Parse() (*Query, error) {
	query := &Query{}

	if !p.at(TokenOrder, TokenEOF) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		query.Filter = expr
	}

	if p.at(TokenOrder) {
		orderBy, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		query.OrderBy = orderBy
	}

	if !p.at(TokenEOF) {
		return nil, p.unexpected("end of query")
	}
	return query, nil
}

func (p *Parser) advance() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) at(types ...TokenType) bool {
	for _, tt := range types {
		if p.current.Type == tt {
			return true
		}
	}
	return false
}

// expect consumes a token of type tt and returns it, or fails naming want.
func (p *Parser) expect(tt TokenType, want string) (Token, error) {
	tok := p.current
	if tok.Type != tt {
		return tok, p.unexpected(want)
	}
	p.advance()
	return tok, nil
}

// unexpected reports the current token where want was required.
func (p *Parser) unexpected(want string) *SyntaxError {
	tok := p.current
	var got string
	switch tok.Type {
	case TokenEOF:
		got = "end of query"
	case TokenIllegal:
		return &SyntaxError{Msg: fmt.Sprintf("illegal character %q", tok.Literal), Span: tok.Span}
	default:
		got = strconv.Quote(tok.Literal)
	}
	return &SyntaxError{Msg: fmt.Sprintf("expected %s, got %s", want, got), Span: tok.Span}
}

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseChain(TokenOr, p.parseTerm)
}

func (p *Parser) parseTerm() (Expr, error) {
	return p.parseChain(TokenAnd, p.parseFactor)
}

// parseChain folds operands joined by op into a left-leaning tree.
func (p *Parser) parseChain(op TokenType, operand func() (Expr, error)) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.at(op) {
		p.advance()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (Expr, error) {
	switch {
	case p.at(TokenNot):
		p.advance()
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil

	case p.at(TokenLParen):
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	fieldTok, err := p.expect(TokenIdent, "field name")
	if err != nil {
		return nil, err
	}
	field, start := fieldTok.Literal, fieldTok.Span.Start

	switch {
	case p.at(TokenNot) && p.peek.Type == TokenIn:
		p.advance()
		p.advance()
		return p.parseInList(field, start, true)
	case p.at(TokenIn):
		p.advance()
		return p.parseInList(field, start, false)
	case !p.current.Type.IsComparisonOp():
		return nil, p.unexpected("operator")
	}

	op := p.current.Type
	p.advance()
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &CompareExpr{Field: field, Op: op, Value: value, Span: charstream.Of(start, value.Span.Stop)}, nil
}

func (p *Parser) parseInList(field string, start int, negated bool) (Expr, error) {
	if _, err := p.expect(TokenLParen, "'('"); err != nil {
		return nil, err
	}

	var values []Value
	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if !p.at(TokenComma) {
			break
		}
		p.advance()
	}

	closing, err := p.expect(TokenRParen, "')'")
	if err != nil {
		return nil, err
	}
	return &InExpr{Field: field, Values: values, Not: negated, Span: charstream.Of(start, closing.Span.Stop)}, nil
}

func (p *Parser) parseValue() (Value, error) {
	tok := p.current
	var v Value

	switch tok.Type {
	case TokenString:
		v = Value{Type: ValueString, String: tok.Literal}
	case TokenNumber:
		v = numberValue(tok.Literal)
	case TokenTrue, TokenFalse:
		v = Value{Type: ValueBool, Bool: tok.Type == TokenTrue}
	case TokenIdent:
		v = identValue(tok.Literal)
	default:
		return v, p.unexpected("value")
	}

	v.Raw = tok.Literal
	v.Span = tok.Span
	p.advance()
	return v, nil
}

// numberValue classifies a numeric literal. A trailing d, h or m (any case)
// makes it a relative date such as -7d.
func numberValue(literal string) Value {
	if len(literal) > 1 && strings.ContainsAny(literal[len(literal)-1:], "dDhHmM") {
		return Value{Type: ValueDate, String: literal}
	}
	if strings.Contains(literal, ".") {
		f, _ := strconv.ParseFloat(literal, 64)
		return Value{Type: ValueFloat, Float: f}
	}
	n, _ := strconv.Atoi(literal)
	return Value{Type: ValueInt, Int: n}
}

// identValue recognizes priorities P0 through P4 and the relative dates
// today and yesterday. Any other bare word is a string.
func identValue(literal string) Value {
	if len(literal) == 2 && (literal[0] == 'P' || literal[0] == 'p') && literal[1] >= '0' && literal[1] <= '4' {
		return Value{Type: ValuePriority, String: literal, Int: int(literal[1] - '0')}
	}
	if day := strings.ToLower(literal); day == "today" || day == "yesterday" {
		return Value{Type: ValueDate, String: day}
	}
	return Value{Type: ValueString, String: literal}
}

func (p *Parser) parseOrderBy() ([]OrderTerm, error) {
	p.advance()
	if _, err := p.expect(TokenBy, "'by'"); err != nil {
		return nil, err
	}

	var terms []OrderTerm
	for {
		fieldTok, err := p.expect(TokenIdent, "field name")
		if err != nil {
			return nil, err
		}
		term := OrderTerm{Field: fieldTok.Literal}
		switch {
		case p.at(TokenAsc):
			p.advance()
		case p.at(TokenDesc):
			term.Desc = true
			p.advance()
		}
		terms = append(terms, term)

		if !p.at(TokenComma) {
			return terms, nil
		}
		p.advance()
	}
}
