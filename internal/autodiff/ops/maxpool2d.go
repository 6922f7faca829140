package ops

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// MaxPool2DOp records z = maxpool2d(input, kernelSize, stride).
//
// The winning input index of every pool window is captured at construction
// time, while the forward input is current; backward routes the output
// gradient to exactly those positions.
type MaxPool2DOp struct {
	input, output      *tensor.RawTensor
	kernelSize, stride int
	maxIndices         []int
}

// NewMaxPool2DOp creates a max pooling operation and captures the argmax of
// every pool window.
func NewMaxPool2DOp(input, output *tensor.RawTensor, kernelSize, stride int) *MaxPool2DOp {
	return &MaxPool2DOp{
		input:      input,
		output:     output,
		kernelSize: kernelSize,
		stride:     stride,
		maxIndices: computeMaxIndices(input, kernelSize, stride),
	}
}

func (op *MaxPool2DOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *MaxPool2DOp) Output() *tensor.RawTensor   { return op.output }

func (op *MaxPool2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := backend.MaxPool2DBackward(op.input, outputGrad, op.maxIndices, op.kernelSize, op.stride)
	return []*tensor.RawTensor{grad}
}

// computeMaxIndices finds the flat input index of the maximum inside every
// pool window, in output element order.
func computeMaxIndices(input *tensor.RawTensor, kernelSize, stride int) []int {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: input must be NCHW, got %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	outH := (h-kernelSize)/stride + 1
	outW := (w-kernelSize)/stride + 1

	src := input.AsFloat32()
	indices := make([]int, 0, n*c*outH*outW)

	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * h * w
			for oy := 0; oy < outH; oy++ {
				for ox := 0; ox < outW; ox++ {
					bestIdx := base + oy*stride*w + ox*stride
					best := src[bestIdx]
					for ky := 0; ky < kernelSize; ky++ {
						row := base + (oy*stride+ky)*w
						for kx := 0; kx < kernelSize; kx++ {
							idx := row + ox*stride + kx
							if src[idx] > best {
								best = src[idx]
								bestIdx = idx
							}
						}
					}
					indices = append(indices, bestIdx)
				}
			}
		}
	}

	return indices
}
