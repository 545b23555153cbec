package tensor

import (
	"math"

	"github.com/gomlx/exceptions"
)

// Broadcasting: two operands are compatible when they have the same number of
// elements, or when either is a scalar (size 1). The output takes the shape
// of the larger operand. Gradients flowing into a broadcast scalar are
// sum-reduced back to size 1.

func broadcastDims(a, b *Tensor) []int {
	switch {
	case a.Size() == b.Size():
		return a.dims
	case a.IsScalar():
		return b.dims
	case b.IsScalar():
		return a.dims
	}
	exceptions.Panicf("tensor: incompatible shapes %v and %v", a.dims, b.dims)
	return nil
}

func pick(t *Tensor, i int) float64 {
	if t.IsScalar() {
		return t.data[0]
	}
	return t.data[i]
}

// reduceTo sum-reduces grad to the number of elements of t, undoing scalar
// broadcast.
func reduceTo(grad []float64, t *Tensor) []float64 {
	if len(grad) == t.Size() {
		return grad
	}
	total := 0.0
	for _, g := range grad {
		total += g
	}
	return []float64{total}
}

func binaryOp(a, b *Tensor, fwd func(x, y float64) float64, dx, dy func(x, y float64) float64) *Tensor {
	dims := broadcastDims(a, b)
	size := 1
	for _, d := range dims {
		size *= d
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = fwd(pick(a, i), pick(b, i))
	}
	out := New(data, dims...)
	if !a.requiresGrad && !b.requiresGrad {
		return out
	}
	out.requiresGrad = true
	out.inputs = []*Tensor{a, b}
	out.vjp = func(upstream []float64) [][]float64 {
		ga := make([]float64, len(upstream))
		gb := make([]float64, len(upstream))
		for i, u := range upstream {
			x, y := pick(a, i), pick(b, i)
			ga[i] = u * dx(x, y)
			gb[i] = u * dy(x, y)
		}
		return [][]float64{reduceTo(ga, a), reduceTo(gb, b)}
	}
	return out
}

func unaryOp(t *Tensor, fwd, deriv func(x float64) float64) *Tensor {
	data := make([]float64, t.Size())
	for i, x := range t.data {
		data[i] = fwd(x)
	}
	out := New(data, t.dims...)
	if !t.requiresGrad {
		return out
	}
	out.requiresGrad = true
	out.inputs = []*Tensor{t}
	out.vjp = func(upstream []float64) [][]float64 {
		g := make([]float64, len(upstream))
		for i, u := range upstream {
			g[i] = u * deriv(t.data[i])
		}
		return [][]float64{g}
	}
	return out
}

// Add returns a+b, element-wise.
func Add(a, b *Tensor) *Tensor {
	return binaryOp(a, b,
		func(x, y float64) float64 { return x + y },
		func(x, y float64) float64 { return 1 },
		func(x, y float64) float64 { return 1 })
}

// Sub returns a-b, element-wise.
func Sub(a, b *Tensor) *Tensor {
	return binaryOp(a, b,
		func(x, y float64) float64 { return x - y },
		func(x, y float64) float64 { return 1 },
		func(x, y float64) float64 { return -1 })
}

// Mul returns a*b, element-wise.
func Mul(a, b *Tensor) *Tensor {
	return binaryOp(a, b,
		func(x, y float64) float64 { return x * y },
		func(x, y float64) float64 { return y },
		func(x, y float64) float64 { return x })
}

// Div returns a/b, element-wise.
func Div(a, b *Tensor) *Tensor {
	return binaryOp(a, b,
		func(x, y float64) float64 { return x / y },
		func(x, y float64) float64 { return 1 / y },
		func(x, y float64) float64 { return -x / (y * y) })
}

// Neg returns -t.
func Neg(t *Tensor) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return -x },
		func(x float64) float64 { return -1 })
}

// Sin returns sin(t), element-wise.
func Sin(t *Tensor) *Tensor {
	return unaryOp(t, math.Sin, math.Cos)
}

// Cos returns cos(t), element-wise.
func Cos(t *Tensor) *Tensor {
	return unaryOp(t, math.Cos, func(x float64) float64 { return -math.Sin(x) })
}

// Exp returns e^t, element-wise.
func Exp(t *Tensor) *Tensor {
	return unaryOp(t, math.Exp, math.Exp)
}

// Log returns the natural logarithm of t, element-wise.
func Log(t *Tensor) *Tensor {
	return unaryOp(t, math.Log, func(x float64) float64 { return 1 / x })
}

// AddScalar returns t+c.
func AddScalar(t *Tensor, c float64) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return x + c },
		func(x float64) float64 { return 1 })
}

// MulScalar returns t*c.
func MulScalar(t *Tensor, c float64) *Tensor {
	return unaryOp(t,
		func(x float64) float64 { return x * c },
		func(x float64) float64 { return c })
}

// Expand broadcasts a scalar tensor to a 1-D tensor of the given batch size.
// Non-scalar tensors must already have the requested batch size and are
// returned unchanged.
func Expand(t *Tensor, batch int) *Tensor {
	if !t.IsScalar() {
		if t.BatchSize() != batch {
			exceptions.Panicf("tensor.Expand: cannot expand batch %d to %d", t.BatchSize(), batch)
		}
		return t
	}
	out := Full(t.data[0], batch)
	if !t.requiresGrad {
		return out
	}
	out.requiresGrad = true
	out.inputs = []*Tensor{t}
	out.vjp = func(upstream []float64) [][]float64 {
		return [][]float64{reduceTo(upstream, t)}
	}
	return out
}
