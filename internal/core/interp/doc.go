// Package interp implements the calcmesh expression interpreter.
//
// The pipeline has three stages, each pure and stateless per call:
//
//   - Lexer: request text to a lazy, restartable token sequence
//   - Parser: tokens to an expression tree (recursive descent)
//   - Evaluator: expression tree to an exact decimal.Decimal
//
// Grammar:
//
//	expression := term (('+' | '-') term)*
//	term       := factor (('*' | '/') factor)*
//	factor     := '-' factor | Number | '(' expression ')'
//
// Binary operators are left-associative; unary minus binds tighter than
// any binary operator. Each stage reports only its first error, as a
// *LexError, *ParseError or *DivisionByZeroError. All three unwrap to
// the matching sentinel in internal/core/domain.
package interp
