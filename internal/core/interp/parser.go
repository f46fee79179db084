// Package interp implements the calcmesh expression interpreter.
package interp

import (
	"fmt"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/pkg/decimal"
)

const expectOperand = "number, '-' or '('"

// Parser builds an expression tree from a token stream by recursive descent.
// A Parser is single use.
type Parser struct {
	lx  *Lexer
	tok Token
}

// NewParser returns a parser reading tokens from lx.
func NewParser(lx *Lexer) *Parser {
	return &Parser{lx: lx}
}

// Parse parses src as a complete expression.
func Parse(src string) (Node, error) {
	return NewParser(NewLexer(src)).Parse()
}

// Parse consumes the whole token stream. Tokens left over after a complete
// expression are an error, not silently ignored.
func (p *Parser) Parse() (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	n, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != EndOfInput {
		return nil, p.unexpected(EndOfInput.String())
	}
	return n, nil
}

func (p *Parser) advance() error {
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) unexpected(expected string) error {
	return &ParseError{Expected: expected, Found: p.tok, Pos: p.tok.Pos}
}

// expression := term (('+' | '-') term)*
func (p *Parser) expression() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}

	for p.tok.Kind == Plus || p.tok.Kind == Minus {
		op, pos := OpAdd, p.tok.Pos
		if p.tok.Kind == Minus {
			op = OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

// term := factor (('*' | '/') factor)*
func (p *Parser) term() (Node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}

	for p.tok.Kind == Star || p.tok.Kind == Slash {
		op, pos := OpMul, p.tok.Pos
		if p.tok.Kind == Slash {
			op = OpDiv
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

// factor := '-' factor | Number | '(' expression ')'
func (p *Parser) factor() (Node, error) {
	switch p.tok.Kind {
	case Minus:
		pos := p.tok.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return &Negate{Operand: operand, Pos: pos}, nil

	case Number:
		tok := p.tok
		v, err := decimal.Parse(tok.Lexeme)
		if err != nil {
			// The lexer only produces well-formed numbers.
			return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: v, Pos: tok.Pos}, nil

	case LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != RParen {
			return nil, p.unexpected(RParen.String())
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}

	return nil, p.unexpected(expectOperand)
}
