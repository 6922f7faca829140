package ops

import "github.com/primer-ml/primer/internal/tensor"

// Conv2DOp records z = conv2d(input, kernel, stride, padding).
//
// Backward delegates to the backend's dedicated convolution backward
// kernels: the input gradient is a transposed convolution of the output
// gradient with the kernel; the kernel gradient correlates the input with
// the output gradient.
type Conv2DOp struct {
	input, kernel, output *tensor.RawTensor
	stride, padding       int
}

// NewConv2DOp creates a convolution operation.
func NewConv2DOp(input, kernel, output *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{input: input, kernel: kernel, output: output, stride: stride, padding: padding}
}

func (op *Conv2DOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input, op.kernel}
}

func (op *Conv2DOp) Output() *tensor.RawTensor { return op.output }

func (op *Conv2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradInput := backend.Conv2DInputBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	gradKernel := backend.Conv2DKernelBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	return []*tensor.RawTensor{gradInput, gradKernel}
}
