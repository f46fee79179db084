// Package decimal provides exact base-10 arithmetic.
package decimal

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrSyntax is returned when a literal is not of the form digits[.digits].
	ErrSyntax = errors.New("decimal: invalid syntax")

	// ErrDivisionByZero is returned by Quo when the divisor is zero.
	ErrDivisionByZero = errors.New("decimal: division by zero")

	// ErrNegativeScale is returned by Quo when asked for a negative scale.
	ErrNegativeScale = errors.New("decimal: negative scale")
)

var (
	bigOne = big.NewInt(1)
	bigTen = big.NewInt(10)
)

// Decimal is an immutable exact decimal number.
type Decimal struct {
	// unscaled carries the sign. nil means zero.
	unscaled *big.Int
	scale    int
}

// New returns unscaled * 10^-scale. It panics if scale is negative.
func New(unscaled int64, scale int) Decimal {
	if scale < 0 {
		panic("decimal: negative scale")
	}
	return Decimal{unscaled: big.NewInt(unscaled), scale: scale}
}

// NewFromBigInt returns unscaled * 10^-scale. The argument is copied.
func NewFromBigInt(unscaled *big.Int, scale int) Decimal {
	if scale < 0 {
		panic("decimal: negative scale")
	}
	return Decimal{unscaled: new(big.Int).Set(unscaled), scale: scale}
}

// Parse parses an unsigned literal of the form digits or digits.digits.
// The scale of the result is the number of digits after the point, so
// "1.50" has scale 2 and "007" has scale 0.
func Parse(s string) (Decimal, error) {
	intPart, fracPart, hasPoint := strings.Cut(s, ".")
	if !isDigits(intPart) || (hasPoint && !isDigits(fracPart)) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}

	u, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return Decimal{unscaled: u, scale: len(fracPart)}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Scale returns the number of digits after the decimal point.
func (d Decimal) Scale() int {
	return d.scale
}

// Unscaled returns a copy of the unscaled integer.
func (d Decimal) Unscaled() *big.Int {
	return new(big.Int).Set(d.int())
}

// Sign returns -1, 0 or +1.
func (d Decimal) Sign() int {
	return d.int().Sign()
}

// IsZero reports whether d is zero at any scale.
func (d Decimal) IsZero() bool {
	return d.Sign() == 0
}

func (d Decimal) int() *big.Int {
	if d.unscaled == nil {
		return new(big.Int)
	}
	return d.unscaled
}

// rescale returns the unscaled value of d expressed at a larger scale.
func (d Decimal) rescale(scale int) *big.Int {
	u := new(big.Int).Set(d.int())
	if scale > d.scale {
		u.Mul(u, pow10(scale-d.scale))
	}
	return u
}

// Add returns d + e.
func (d Decimal) Add(e Decimal) Decimal {
	scale := max(d.scale, e.scale)
	u := d.rescale(scale)
	u.Add(u, e.rescale(scale))
	return Decimal{unscaled: u, scale: scale}
}

// Sub returns d - e.
func (d Decimal) Sub(e Decimal) Decimal {
	scale := max(d.scale, e.scale)
	u := d.rescale(scale)
	u.Sub(u, e.rescale(scale))
	return Decimal{unscaled: u, scale: scale}
}

// Mul returns d * e with scale d.scale + e.scale.
func (d Decimal) Mul(e Decimal) Decimal {
	u := new(big.Int).Mul(d.int(), e.int())
	return Decimal{unscaled: u, scale: d.scale + e.scale}
}

// Neg returns -d.
func (d Decimal) Neg() Decimal {
	return Decimal{unscaled: new(big.Int).Neg(d.int()), scale: d.scale}
}

// Quo returns d / e at the given scale, rounding half away from zero.
func (d Decimal) Quo(e Decimal, scale int) (Decimal, error) {
	if scale < 0 {
		return Decimal{}, ErrNegativeScale
	}
	if e.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}

	// q = d.u * 10^(scale - d.scale + e.scale) / e.u
	num := new(big.Int).Set(d.int())
	den := new(big.Int).Set(e.int())
	if shift := scale - d.scale + e.scale; shift >= 0 {
		num.Mul(num, pow10(shift))
	} else {
		den.Mul(den, pow10(-shift))
	}

	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		// |2r| >= |den| rounds away from zero.
		twice := new(big.Int).Abs(r)
		twice.Lsh(twice, 1)
		if twice.Cmp(new(big.Int).Abs(den)) >= 0 {
			if num.Sign()*den.Sign() < 0 {
				q.Sub(q, bigOne)
			} else {
				q.Add(q, bigOne)
			}
		}
	}
	return Decimal{unscaled: q, scale: scale}, nil
}

// Cmp compares d and e numerically, ignoring scale.
func (d Decimal) Cmp(e Decimal) int {
	scale := max(d.scale, e.scale)
	return d.rescale(scale).Cmp(e.rescale(scale))
}

// Equal reports whether d and e have the same value and the same scale.
func (d Decimal) Equal(e Decimal) bool {
	return d.scale == e.scale && d.int().Cmp(e.int()) == 0
}

// String returns the canonical plain text form: digits with a point
// inserted scale places from the right, "-" prefix when negative.
func (d Decimal) String() string {
	u := d.int()
	digits := new(big.Int).Abs(u).String()

	var b strings.Builder
	if u.Sign() < 0 {
		b.WriteByte('-')
	}
	if d.scale == 0 {
		b.WriteString(digits)
		return b.String()
	}

	if len(digits) <= d.scale {
		digits = strings.Repeat("0", d.scale-len(digits)+1) + digits
	}
	point := len(digits) - d.scale
	b.WriteString(digits[:point])
	b.WriteByte('.')
	b.WriteString(digits[point:])
	return b.String()
}

// pow10 returns 10^n for n >= 0.
func pow10(n int) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}
