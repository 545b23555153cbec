package tensor

import (
	"github.com/gomlx/exceptions"
)

// This file implements the reverse sweep. The graph is implicit: each
// operation records its input tensors and a VJP closure mapping the upstream
// gradient to one gradient slice per input. Backward visits the recorded
// graph once, in reverse topological order, and accumulates gradients on the
// requires-grad leaves.

// Custom wraps an externally computed value as a differentiable function of
// inputs. The vjp closure receives the upstream gradient (flat, with the
// shape of value) and must return one gradient slice per input, each with the
// input's number of elements.
//
// This is the registration hook for backward rules that are not expressed as
// tensor operations: the statevector backend's adjoint differentiation and
// the parameter-shift-rule estimator both splice their gradients into the
// graph through it.
func Custom(value *Tensor, inputs []*Tensor, vjp func(upstream []float64) [][]float64) *Tensor {
	out := New(value.data, value.dims...)
	for _, in := range inputs {
		if in.requiresGrad {
			out.requiresGrad = true
			break
		}
	}
	if !out.requiresGrad {
		return out
	}
	out.inputs = append([]*Tensor{}, inputs...)
	out.vjp = vjp
	return out
}

// Backward computes the gradient of t with respect to every requires-grad
// leaf reachable from it, seeding the sweep with ones (i.e. gradients of the
// element-wise sum of t). Gradients accumulate across calls; use ZeroGrad to
// reset a leaf.
func (t *Tensor) Backward() {
	if !t.requiresGrad {
		exceptions.Panicf("tensor.Backward: tensor does not require gradients")
	}

	// Reverse topological order over the recorded graph.
	var order []*Tensor
	visited := map[*Tensor]bool{}
	var visit func(n *Tensor)
	visit = func(n *Tensor) {
		if visited[n] || !n.requiresGrad {
			return
		}
		visited[n] = true
		for _, in := range n.inputs {
			visit(in)
		}
		order = append(order, n)
	}
	visit(t)

	// Transient upstream gradients for interior nodes; leaves accumulate
	// into their persistent grad slice.
	upstream := map[*Tensor][]float64{}
	seed := make([]float64, t.Size())
	for i := range seed {
		seed[i] = 1
	}
	upstream[t] = seed

	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		u := upstream[node]
		if u == nil {
			continue
		}
		if node.vjp == nil {
			// Leaf: accumulate.
			if node.grad == nil {
				node.grad = make([]float64, node.Size())
			}
			for j, g := range u {
				node.grad[j] += g
			}
			continue
		}
		grads := node.vjp(u)
		if len(grads) != len(node.inputs) {
			exceptions.Panicf("tensor.Backward: vjp returned %d gradients for %d inputs", len(grads), len(node.inputs))
		}
		for j, in := range node.inputs {
			if !in.requiresGrad {
				continue
			}
			acc := upstream[in]
			if acc == nil {
				acc = make([]float64, in.Size())
				upstream[in] = acc
			}
			for k, g := range grads[j] {
				acc[k] += g
			}
		}
	}
}

// Grad returns the gradient accumulated on a leaf by Backward, or nil if none
// was computed. The returned tensor does not track gradients.
func (t *Tensor) Grad() *Tensor {
	if t.grad == nil {
		return nil
	}
	return New(t.grad, t.dims...)
}

// ZeroGrad clears the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}
