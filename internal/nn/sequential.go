package nn

import (
	"fmt"
	"strconv"

	"github.com/primer-ml/primer/internal/tensor"
)

// Sequential chains modules, feeding each output to the next layer.
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a module chain.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

// Forward runs the input through every module in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := input
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

// Parameters returns the parameters of all modules in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// StateDict returns all parameters keyed as "<index>.<name>".
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for i, m := range s.modules {
		for name, raw := range m.StateDict() {
			state[strconv.Itoa(i)+"."+name] = raw
		}
	}
	return state
}

// LoadStateDict routes "<index>.<name>" entries back to each module.
func (s *Sequential[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	for i, m := range s.modules {
		prefix := strconv.Itoa(i) + "."
		sub := make(map[string]*tensor.RawTensor)
		for name, raw := range state {
			if len(name) > len(prefix) && name[:len(prefix)] == prefix {
				sub[name[len(prefix):]] = raw
			}
		}
		if err := m.LoadStateDict(sub); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
	}
	return nil
}
