// Package parameters defines the user-facing circuit parameters and the small
// symbolic-expression language gate angles are written in.
//
// A Parameter is either a feature parameter (non-trainable, its value supplied
// per call), a variational parameter (trainable, with an initial value) or a
// fixed parameter (a numeric literal baked into the circuit). Expressions
// combine parameters with arithmetic and a few unary functions; they are
// evaluated numerically with tensor operations so that differentiability is
// preserved whenever any operand is tracked for gradients.
package parameters

import (
	"github.com/google/uuid"

	"github.com/n-toscano/qadence/tensor"
)

// Parameter is a named circuit parameter. It implements Expr.
type Parameter struct {
	name      string
	trainable bool
	value     float64
	hasValue  bool
}

// Feature creates a non-trainable named parameter whose value is supplied by
// the caller on every execution.
func Feature(name string) *Parameter {
	return &Parameter{name: name}
}

// Variational creates a trainable named parameter with an initial value.
func Variational(name string, value float64) *Parameter {
	return &Parameter{name: name, trainable: true, value: value, hasValue: true}
}

// Fixed creates an anonymous non-trainable parameter holding a numeric
// literal. The name is derived from a fresh uuid so that identical literals
// used in different places stay distinct.
func Fixed(value float64) *Parameter {
	return &Parameter{
		name:     "fix_" + uuid.NewString()[:8],
		value:    value,
		hasValue: true,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

// Trainable reports whether the parameter is variational.
func (p *Parameter) Trainable() bool { return p.trainable }

// InitialValue returns the stored value and whether one was set. Feature
// parameters have none.
func (p *Parameter) InitialValue() (float64, bool) { return p.value, p.hasValue }

// String implements Expr.
func (p *Parameter) String() string { return p.name }

// Parameters implements Expr.
func (p *Parameter) Parameters() []*Parameter { return []*Parameter{p} }

// Eval implements Expr. Missing feature parameters panic; parameters with a
// stored value fall back to it when absent from values.
func (p *Parameter) Eval(values map[string]*tensor.Tensor) *tensor.Tensor {
	if t, found := values[p.name]; found {
		return t
	}
	if p.hasValue {
		return tensor.Scalar(p.value)
	}
	panicMissing(p.name)
	return nil
}

// Coerce converts the accepted angle representations to an Expr:
// an Expr is returned as-is, a string becomes a variational parameter with
// initial value 0, a numeric literal becomes a fixed parameter.
func Coerce(angle any) Expr {
	switch v := angle.(type) {
	case Expr:
		return v
	case string:
		return Variational(v, 0)
	case float64:
		return Fixed(v)
	case float32:
		return Fixed(float64(v))
	case int:
		return Fixed(float64(v))
	}
	panicCoerce(angle)
	return nil
}
