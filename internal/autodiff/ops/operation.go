// Package ops defines the differentiable operations recorded on the
// gradient tape. Each operation captures its inputs and output during the
// forward pass and knows how to produce input gradients from the output
// gradient during the backward pass.
package ops

import "github.com/primer-ml/primer/internal/tensor"

// Operation is one recorded forward step.
type Operation interface {
	// Backward computes the gradient for every input, in Inputs() order,
	// given the gradient flowing into the output.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the tensors gradients flow back to.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor produced by the forward pass.
	Output() *tensor.RawTensor
}
