package backend

import (
	"github.com/n-toscano/qadence/parameters"
	"github.com/n-toscano/qadence/tensor"
	"github.com/n-toscano/qadence/types/xslices"
)

// NewEmbedding builds the embedding function for a compiled circuit. exprs
// maps each native parameter identifier to the expression that produces it.
//
// The returned function substitutes user values for named parameters, falls
// back to initial/fixed values for parameters absent from the user mapping,
// evaluates derived expressions with tensor operations (preserving
// differentiability) and broadcasts everything to the common batch size.
func NewEmbedding(exprs map[string]parameters.Expr) EmbeddingFn {
	keys := xslices.SortedKeys(exprs)
	return func(params, values ParamValues) (ParamValues, error) {
		batch, err := values.BatchSize()
		if err != nil {
			return nil, err
		}

		merged := make(map[string]*tensor.Tensor, len(params)+len(values))
		for name, t := range params {
			merged[name] = t
		}
		for name, t := range values {
			merged[name] = t
		}

		out := make(ParamValues, len(exprs))
		for _, key := range keys {
			out[key] = tensor.Expand(exprs[key].Eval(merged), batch)
		}
		return out, nil
	}
}

// InitialParameters builds the initial parameter mapping of a circuit:
// variational parameters become gradient-tracked scalar leaves, fixed
// literals plain scalars. Feature parameters have no initial value and are
// omitted; their values arrive per call.
func InitialParameters(ps []*parameters.Parameter) ParamValues {
	out := ParamValues{}
	for _, p := range ps {
		v, has := p.InitialValue()
		if !has {
			continue
		}
		t := tensor.Scalar(v)
		if p.Trainable() {
			t.SetRequiresGrad(true)
		}
		out[p.Name()] = t
	}
	return out
}
