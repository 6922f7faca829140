package nn

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// Linear is a fully connected layer: y = x @ Wᵀ + b.
//
// Weight shape is [outFeatures, inFeatures]; bias is [outFeatures],
// broadcast as [1, outFeatures] over the batch.
type Linear[B tensor.Backend] struct {
	weight  *Parameter[B]
	bias    *Parameter[B] // nil when the layer has no bias
	backend B

	inFeatures, outFeatures int
}

// NewLinear creates a fully connected layer with Xavier-initialized weights
// and zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, withBias bool, backend B) *Linear[B] {
	weight := tensor.Zeros[float32](tensor.Shape{outFeatures, inFeatures}, backend)
	xavierUniform(weight.Raw(), inFeatures, outFeatures)

	l := &Linear[B]{
		weight:      NewParameter("weight", weight),
		backend:     backend,
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
	}
	if withBias {
		l.bias = NewParameter("bias", tensor.Zeros[float32](tensor.Shape{outFeatures}, backend))
	}
	return l
}

// InFeatures returns the input feature count.
func (l *Linear[B]) InFeatures() int { return l.inFeatures }

// OutFeatures returns the output feature count.
func (l *Linear[B]) OutFeatures() int { return l.outFeatures }

// Forward computes x @ Wᵀ + b for input [batch, inFeatures].
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := input.MatMul(l.weight.Tensor().T())
	if l.bias != nil {
		out = out.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	}
	return out
}

// Parameters returns weight and bias (when present).
func (l *Linear[B]) Parameters() []*Parameter[B] {
	params := []*Parameter[B]{l.weight}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}

// StateDict returns the layer parameters keyed by name.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	state := map[string]*tensor.RawTensor{"weight": l.weight.Raw()}
	if l.bias != nil {
		state["bias"] = l.bias.Raw()
	}
	return state
}

// LoadStateDict restores parameter values by name.
func (l *Linear[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadParams(state, l.Parameters())
}

// loadParams copies state entries into parameters, requiring every
// parameter to be present.
func loadParams[B tensor.Backend](state map[string]*tensor.RawTensor, params []*Parameter[B]) error {
	for _, p := range params {
		src, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("state dict: missing %q", p.Name())
		}
		if err := p.CopyFrom(src); err != nil {
			return err
		}
	}
	return nil
}
