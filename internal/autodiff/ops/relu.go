package ops

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// ReLUOp records z = max(0, x).
//
// Backward: the gradient passes through where the input was positive and is
// zero elsewhere.
type ReLUOp struct {
	input, output *tensor.RawTensor
}

// NewReLUOp creates a ReLU operation.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ReLUOp) Output() *tensor.RawTensor   { return op.output }

func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.input.Shape(), op.input.DType(), op.input.Device())
	if err != nil {
		panic(fmt.Sprintf("relu backward: %v", err))
	}

	switch op.input.DType() {
	case tensor.Float32:
		src := op.input.AsFloat32()
		g := outputGrad.AsFloat32()
		dst := grad.AsFloat32()
		for i, v := range src {
			if v > 0 {
				dst[i] = g[i]
			}
		}
	case tensor.Float64:
		src := op.input.AsFloat64()
		g := outputGrad.AsFloat64()
		dst := grad.AsFloat64()
		for i, v := range src {
			if v > 0 {
				dst[i] = g[i]
			}
		}
	default:
		panic(fmt.Sprintf("relu backward: unsupported dtype %s", op.input.DType()))
	}

	return []*tensor.RawTensor{grad}
}
