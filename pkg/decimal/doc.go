// Package decimal provides exact base-10 arithmetic for calcmesh.
//
// A Decimal is an arbitrary-precision unscaled integer paired with a
// non-negative scale:
//
//	value = unscaled * 10^-scale
//
// Scale rules:
//
//   - Add, Sub: max(a.scale, b.scale), operands aligned, no rounding
//   - Mul: a.scale + b.scale, exact
//   - Quo: caller-chosen scale, rounded half away from zero
//   - Neg: scale unchanged
//
// Values never pass through binary floating point. The zero value is 0
// with scale 0 and is ready to use.
package decimal
