package ops

import "github.com/primer-ml/primer/internal/tensor"

// reduceBroadcast sums a gradient back down to the shape of the input it
// belongs to. Broadcasting during the forward pass fans one input element
// out to many output positions; the chain rule sums their gradients.
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}

	// Collapse leading dimensions the input never had.
	for len(grad.Shape()) > len(target) {
		grad = backend.SumDim(grad, 0, false)
	}

	// Sum over dimensions the input held at size 1.
	for i, dim := range target {
		if dim == 1 && grad.Shape()[i] != 1 {
			grad = backend.SumDim(grad, i, true)
		}
	}

	if !grad.Shape().Equal(target) {
		grad = backend.Reshape(grad, target)
	}
	return grad
}
