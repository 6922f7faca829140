// Package optim implements gradient descent optimizers over nn parameters.
//
// Optimizers consume the gradient map produced by the autodiff tape and
// update parameter tensors in place, so the RawTensor identity every layer
// holds stays stable across steps.
package optim

import "github.com/primer-ml/primer/internal/tensor"

// Optimizer updates parameters from a gradient map.
type Optimizer interface {
	// Step applies one update using gradients keyed by parameter RawTensor.
	// Parameters without a gradient entry are left unchanged.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor) error

	// LR returns the current learning rate.
	LR() float64
}
