// Package interp implements the calcmesh expression interpreter.
package interp

import (
	"strings"

	"github.com/yndnr/calcmesh-go/pkg/decimal"
)

// Node is an expression tree node. The set of shapes is closed:
// *Literal, *Binary and *Negate.
type Node interface {
	node()
	// Position returns the byte offset of the token that introduced the node.
	Position() int
}

// Op is a binary operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

// Literal is a number as written in the source.
type Literal struct {
	Value decimal.Decimal
	Pos   int
}

// Binary applies Op to Left and Right. Pos is the operator's offset.
type Binary struct {
	Op          Op
	Left, Right Node
	Pos         int
}

// Negate flips the sign of Operand. Pos is the '-' offset.
type Negate struct {
	Operand Node
	Pos     int
}

func (*Literal) node() {}
func (*Binary) node()  {}
func (*Negate) node()  {}

func (n *Literal) Position() int { return n.Pos }
func (n *Binary) Position() int  { return n.Pos }
func (n *Negate) Position() int  { return n.Pos }

// Format renders n fully parenthesized, e.g. "((2 - 3) - 4)".
func Format(n Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

func format(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		b.WriteString(n.Value.String())
	case *Negate:
		b.WriteString("-")
		format(b, n.Operand)
	case *Binary:
		b.WriteByte('(')
		format(b, n.Left)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		format(b, n.Right)
		b.WriteByte(')')
	default:
		b.WriteString("<nil>")
	}
}
