// Package nn provides neural network layers, losses, and metrics built on
// the tensor and autodiff layers.
package nn

import "github.com/primer-ml/primer/internal/tensor"

// Module is a neural network building block.
type Module[B tensor.Backend] interface {
	// Forward computes the layer output.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters.
	Parameters() []*Parameter[B]

	// StateDict returns the parameter tensors keyed by name.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict replaces parameter values from a state dict.
	LoadStateDict(state map[string]*tensor.RawTensor) error
}
