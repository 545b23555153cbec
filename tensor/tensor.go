// Package tensor implements small batched float64 tensors with reverse-mode
// automatic differentiation.
//
// Tensors are immutable values: every operation returns a new tensor. When any
// operand requires gradients the operation records its inputs and a VJP
// (vector-Jacobian product) closure, forming an implicit computation graph that
// Backward walks in reverse topological order, accumulating gradients on the
// leaves.
//
// The expected shapes are [batch] for parameter values and [batch, columns]
// for expectation outputs. Scalars (size-1 tensors) broadcast against any
// shape.
//
// Functions panic (see github.com/gomlx/exceptions) on shape errors: those are
// programming errors, not runtime conditions.
package tensor

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// Tensor is a batched float64 value, optionally tracked for reverse-mode
// differentiation. The zero value is not usable; use the constructors.
type Tensor struct {
	data []float64
	dims []int

	requiresGrad bool
	grad         []float64

	// inputs and vjp are only set on tensors produced by an operation with
	// at least one gradient-tracked operand.
	inputs []*Tensor
	vjp    func(upstream []float64) [][]float64
}

// New creates a tensor with the given data and dimensions. The product of
// dims must equal len(data).
func New(data []float64, dims ...int) *Tensor {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	size := 1
	for _, d := range dims {
		if d <= 0 {
			exceptions.Panicf("tensor.New: invalid dimension %d in %v", d, dims)
		}
		size *= d
	}
	if size != len(data) {
		exceptions.Panicf("tensor.New: dims %v require %d elements, got %d", dims, size, len(data))
	}
	t := &Tensor{data: make([]float64, len(data)), dims: append([]int{}, dims...)}
	copy(t.data, data)
	return t
}

// FromSlice creates a 1-D tensor with a copy of values.
func FromSlice(values []float64) *Tensor {
	return New(values)
}

// Scalar creates a size-1 tensor. Scalars broadcast against any shape.
func Scalar(v float64) *Tensor {
	return New([]float64{v})
}

// Full creates a tensor of the given dimensions filled with v.
func Full(v float64, dims ...int) *Tensor {
	size := 1
	for _, d := range dims {
		size *= d
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = v
	}
	return New(data, dims...)
}

// Zeros creates a tensor of the given dimensions filled with 0.
func Zeros(dims ...int) *Tensor { return Full(0, dims...) }

// Ones creates a tensor of the given dimensions filled with 1.
func Ones(dims ...int) *Tensor { return Full(1, dims...) }

// Linspace creates a 1-D tensor with n evenly spaced points from start to
// stop, inclusive.
func Linspace(start, stop float64, n int) *Tensor {
	if n < 2 {
		return Scalar(start)
	}
	data := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range data {
		data[i] = start + float64(i)*step
	}
	return New(data)
}

// Dims returns a copy of the tensor dimensions.
func (t *Tensor) Dims() []int {
	return append([]int{}, t.dims...)
}

// Size returns the total number of elements.
func (t *Tensor) Size() int { return len(t.data) }

// BatchSize returns the leading dimension.
func (t *Tensor) BatchSize() int { return t.dims[0] }

// IsScalar reports whether the tensor has exactly one element.
func (t *Tensor) IsScalar() bool { return len(t.data) == 1 }

// At returns the element at the given indices. A 1-D tensor takes one index,
// a 2-D tensor two.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset(indices)]
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.dims) {
		exceptions.Panicf("tensor.At: %d indices for %d dimensions", len(indices), len(t.dims))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.dims[i] {
			exceptions.Panicf("tensor.At: index %d out of range for dimension %d (size %d)", idx, i, t.dims[i])
		}
		offset = offset*t.dims[i] + idx
	}
	return offset
}

// Value returns a copy of the flat data.
func (t *Tensor) Value() []float64 {
	return append([]float64{}, t.data...)
}

// SetRequiresGrad marks a leaf tensor for gradient accumulation and returns
// the tensor for chaining. It cannot be applied to tensors produced by an
// operation.
func (t *Tensor) SetRequiresGrad(v bool) *Tensor {
	if v && t.vjp != nil {
		exceptions.Panicf("tensor.SetRequiresGrad: only leaf tensors can be marked")
	}
	t.requiresGrad = v
	return t
}

// RequiresGrad reports whether the tensor participates in gradient
// computation.
func (t *Tensor) RequiresGrad() bool { return t.requiresGrad }

// Detach returns a new leaf tensor with the same data and no gradient
// tracking.
func (t *Tensor) Detach() *Tensor {
	return New(t.data, t.dims...)
}

// Clone returns a deep copy of the tensor, preserving the requires-grad flag
// but dropping any recorded graph.
func (t *Tensor) Clone() *Tensor {
	c := New(t.data, t.dims...)
	c.requiresGrad = t.requiresGrad
	return c
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tensor%v", t.dims)
	if t.requiresGrad {
		sb.WriteString("(grad)")
	}
	fmt.Fprintf(&sb, "%v", t.data)
	return sb.String()
}
