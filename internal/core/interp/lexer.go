// Package interp implements the calcmesh expression interpreter.
package interp

import (
	"iter"
	"unicode/utf8"
)

var singleCharKinds = map[byte]Kind{
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'(': LParen,
	')': RParen,
}

// Lexer splits request text into tokens on demand.
type Lexer struct {
	src string
	pos int
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Reset rewinds the lexer to the start of its source.
func (l *Lexer) Reset() {
	l.pos = 0
}

// Next returns the next token. Once the source is exhausted it returns
// an EndOfInput token on every call. A character outside the language yields a
// *LexError and the lexer does not advance past it.
func (l *Lexer) Next() (Token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{Kind: EndOfInput, Pos: len(l.src)}, nil
	}

	start := l.pos
	c := l.src[start]

	if isDigit(c) {
		return l.number(), nil
	}
	if kind, ok := singleCharKinds[c]; ok {
		l.pos++
		return Token{Kind: kind, Lexeme: l.src[start:l.pos], Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[start:])
	return Token{}, &LexError{Pos: start, Char: r}
}

// number scans digits, optionally followed by '.' and at least one digit.
func (l *Lexer) number() Token {
	start := l.pos
	l.skipDigits()
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		l.skipDigits()
	}
	return Token{Kind: Number, Lexeme: l.src[start:l.pos], Pos: start}
}

func (l *Lexer) skipDigits() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

// All returns a fresh pass over the source each time it is ranged over.
// The sequence ends after the EndOfInput token or the first error.
func (l *Lexer) All() iter.Seq2[Token, error] {
	src := l.src
	return func(yield func(Token, error) bool) {
		lx := NewLexer(src)
		for {
			tok, err := lx.Next()
			if !yield(tok, err) || err != nil || tok.Kind == EndOfInput {
				return
			}
		}
	}
}

// Tokenize lexes src completely. The last token is always EndOfInput.
func Tokenize(src string) ([]Token, error) {
	var toks []Token
	for tok, err := range NewLexer(src).All() {
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
