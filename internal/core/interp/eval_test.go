package interp

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/pkg/decimal"
)

func TestEval(t *testing.T) {
	tests := []struct {
		src       string
		want      string
		wantScale int
	}{
		{"3+3.5", "6.5", 1},
		{"3 + 5", "8", 0},
		{"2+3*4", "14", 0},
		{"(2+3)*4", "20", 0},
		{"2-3-4", "-5", 0},
		{"-3+5", "2", 0},
		{"0.1+0.2", "0.3", 1},
		{"1.50*2", "3.00", 2},
		{"1.5*1.5", "2.25", 2},
		{"--3", "3", 0},
		{"-(2+3)", "-5", 0},
		{"1/3", "0.3333333333", 10},
		{"2/3", "0.6666666667", 10},
		{"-2/3", "-0.6666666667", 10},
		{"1/4", "0.2500000000", 10},
		{"10/4", "2.5000000000", 10},
		{"1.00000000000/3", "0.33333333333", 11},
		{"6/2*3", "9.0000000000", 10},
		{"2.5 - 2.5", "0.0", 1},
		{"-0", "0", 0},
		{"123456789012345678901234567890 * 10", "1234567890123456789012345678900", 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Eval(tt.src)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.src, err)
			}
			if got.String() != tt.want {
				t.Errorf("Eval(%q) = %q, want %q", tt.src, got.String(), tt.want)
			}
			if got.Scale() != tt.wantScale {
				t.Errorf("Eval(%q) scale = %d, want %d", tt.src, got.Scale(), tt.wantScale)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want *domain.DomainError
	}{
		{"3/0", domain.ErrDivisionByZero},
		{"3/0.00", domain.ErrDivisionByZero},
		{"1/(2-2)", domain.ErrDivisionByZero},
		{"3+", domain.ErrUnexpectedToken},
		{"2 3", domain.ErrUnexpectedToken},
		{"3#5", domain.ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Eval(tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Eval(%q) error = %v, want %v", tt.src, err, tt.want)
			}
		})
	}
}

func TestEval_DivisionByZeroPosition(t *testing.T) {
	_, err := Eval("1 + 4 / (2 - 2)")

	var dz *DivisionByZeroError
	if !errors.As(err, &dz) {
		t.Fatalf("error = %v, want *DivisionByZeroError", err)
	}
	if dz.Pos != 6 {
		t.Errorf("Pos = %d, want 6", dz.Pos)
	}
}

func TestEval_Idempotent(t *testing.T) {
	const src = "(1.25 - 7) * 3 / -0.7"
	first, err := Eval(src)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		got, err := Eval(src)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(first) {
			t.Fatalf("evaluation %d = %s, want %s", i, got, first)
		}
	}
}

func TestEvaluator_DivisionScale(t *testing.T) {
	tests := []struct {
		name  string
		opt   EvalOption
		want  string
		scale int
	}{
		{"raised", WithDivisionScale(20), "0.33333333333333333333", 20},
		{"floor enforced", WithDivisionScale(2), "0.3333333333", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := New(tt.opt)
			got, err := ip.Eval("1/3")
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Errorf("Eval = %q, want %q", got.String(), tt.want)
			}
			if ip.Evaluator().DivisionScale() != tt.scale {
				t.Errorf("DivisionScale() = %d, want %d", ip.Evaluator().DivisionScale(), tt.scale)
			}
		})
	}
}

func TestEvaluator_UnknownNode(t *testing.T) {
	_, err := NewEvaluator().Eval(nil)
	if !errors.Is(err, domain.ErrInternal) {
		t.Errorf("Eval(nil) error = %v, want ErrInternal", err)
	}
}

// genTree builds a random tree of nonnegative literals.
func genTree(r *rand.Rand, depth int) Node {
	if depth == 0 || r.IntN(4) == 0 {
		var b strings.Builder
		b.WriteString(string(rune('0' + r.IntN(10))))
		for i := r.IntN(3); i > 0; i-- {
			b.WriteString(string(rune('0' + r.IntN(10))))
		}
		if frac := r.IntN(5); frac > 0 {
			b.WriteByte('.')
			for ; frac > 0; frac-- {
				b.WriteString(string(rune('0' + r.IntN(10))))
			}
		}
		return &Literal{Value: decimal.MustParse(b.String())}
	}
	if r.IntN(6) == 0 {
		return &Negate{Operand: genTree(r, depth-1)}
	}
	return &Binary{
		Op:    Op(r.IntN(4)),
		Left:  genTree(r, depth-1),
		Right: genTree(r, depth-1),
	}
}

// predictScale applies the per-operator scale rules to a tree.
func predictScale(n Node) int {
	switch n := n.(type) {
	case *Literal:
		return n.Value.Scale()
	case *Negate:
		return predictScale(n.Operand)
	case *Binary:
		l, r := predictScale(n.Left), predictScale(n.Right)
		switch n.Op {
		case OpAdd, OpSub:
			return max(l, r)
		case OpMul:
			return l + r
		case OpDiv:
			return max(l, r, DefaultDivisionScale)
		}
	}
	panic("unreachable")
}

func TestEval_ScaleProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	checked := 0

	for i := 0; i < 2000; i++ {
		tree := genTree(r, 4)
		src := Format(tree)

		got, err := Eval(src)
		var dz *DivisionByZeroError
		if errors.As(err, &dz) {
			continue
		}
		if err != nil {
			t.Fatalf("Eval(%q) error = %v", src, err)
		}
		checked++

		want := predictScale(tree)
		if got.Scale() != want {
			t.Fatalf("Eval(%q) scale = %d, want %d", src, got.Scale(), want)
		}

		text := got.String()
		_, frac, hasPoint := strings.Cut(text, ".")
		if want == 0 && hasPoint {
			t.Fatalf("Eval(%q) = %q has a point at scale 0", src, text)
		}
		if want > 0 && len(frac) != want {
			t.Fatalf("Eval(%q) = %q has %d fractional digits, want %d", src, text, len(frac), want)
		}
	}

	if checked < 1000 {
		t.Errorf("only %d generated expressions were evaluable", checked)
	}
}

func TestEval_FormatRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		src := Format(genTree(r, 4))
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", src, err)
		}
		if got := Format(n); got != src {
			t.Fatalf("Format(Parse(%q)) = %q", src, got)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	const src = "(1.5 + 2.25) * (3 - 4.125) / 7 - -(8 * 9.75)"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Eval(src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParallelEval(b *testing.B) {
	ip := New()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := ip.Eval("1/3 + 2/7 * 11"); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
