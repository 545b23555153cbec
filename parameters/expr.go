package parameters

import (
	"fmt"
	"strconv"

	"github.com/gomlx/exceptions"

	"github.com/n-toscano/qadence/tensor"
)

// Expr is a symbolic expression over named parameters. Expressions are
// immutable; Eval is pure and idempotent.
type Expr interface {
	fmt.Stringer

	// Parameters returns the named parameters the expression depends on,
	// in left-to-right order, possibly with duplicates.
	Parameters() []*Parameter

	// Eval evaluates the expression with tensor operations. values maps
	// parameter names to batched tensors; results broadcast scalars
	// against batched operands.
	Eval(values map[string]*tensor.Tensor) *tensor.Tensor
}

type constant struct {
	v float64
}

// Num wraps a numeric literal as an inline expression constant. Unlike
// Fixed, it does not introduce a parameter.
func Num(v float64) Expr { return constant{v} }

func (c constant) String() string                                { return strconv.FormatFloat(c.v, 'g', -1, 64) }
func (c constant) Parameters() []*Parameter                      { return nil }
func (c constant) Eval(map[string]*tensor.Tensor) *tensor.Tensor { return tensor.Scalar(c.v) }

type binary struct {
	op   byte // '+', '-', '*', '/'
	a, b Expr
}

// Add returns a+b.
func Add(a, b Expr) Expr { return binary{'+', a, b} }

// Sub returns a-b.
func Sub(a, b Expr) Expr { return binary{'-', a, b} }

// Mul returns a*b.
func Mul(a, b Expr) Expr { return binary{'*', a, b} }

// Div returns a/b.
func Div(a, b Expr) Expr { return binary{'/', a, b} }

// Scale returns c*e for a numeric literal c.
func Scale(c float64, e Expr) Expr { return Mul(Num(c), e) }

func (b binary) String() string {
	return fmt.Sprintf("(%s%c%s)", b.a, b.op, b.b)
}

func (b binary) Parameters() []*Parameter {
	return append(b.a.Parameters(), b.b.Parameters()...)
}

func (b binary) Eval(values map[string]*tensor.Tensor) *tensor.Tensor {
	x, y := b.a.Eval(values), b.b.Eval(values)
	switch b.op {
	case '+':
		return tensor.Add(x, y)
	case '-':
		return tensor.Sub(x, y)
	case '*':
		return tensor.Mul(x, y)
	case '/':
		return tensor.Div(x, y)
	}
	exceptions.Panicf("parameters: invalid binary operator %q", b.op)
	return nil
}

type unary struct {
	fn string // "neg", "sin", "cos", "exp"
	a  Expr
}

// Neg returns -e.
func Neg(e Expr) Expr { return unary{"neg", e} }

// Sin returns sin(e).
func Sin(e Expr) Expr { return unary{"sin", e} }

// Cos returns cos(e).
func Cos(e Expr) Expr { return unary{"cos", e} }

// Exp returns exp(e).
func Exp(e Expr) Expr { return unary{"exp", e} }

func (u unary) String() string {
	if u.fn == "neg" {
		return fmt.Sprintf("(-%s)", u.a)
	}
	return fmt.Sprintf("%s(%s)", u.fn, u.a)
}

func (u unary) Parameters() []*Parameter { return u.a.Parameters() }

func (u unary) Eval(values map[string]*tensor.Tensor) *tensor.Tensor {
	x := u.a.Eval(values)
	switch u.fn {
	case "neg":
		return tensor.Neg(x)
	case "sin":
		return tensor.Sin(x)
	case "cos":
		return tensor.Cos(x)
	case "exp":
		return tensor.Exp(x)
	}
	exceptions.Panicf("parameters: invalid unary function %q", u.fn)
	return nil
}

// Trainable reports whether the expression depends on at least one
// variational parameter.
func Trainable(e Expr) bool {
	for _, p := range e.Parameters() {
		if p.trainable {
			return true
		}
	}
	return false
}

func panicMissing(name string) {
	exceptions.Panicf("parameters: no value supplied for parameter %q", name)
}

func panicCoerce(v any) {
	exceptions.Panicf("parameters: cannot use %T as a parameter expression", v)
}
