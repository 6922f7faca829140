package ops

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// SumOp records z = sum(x), a full reduction to a [1] scalar.
//
// Backward: every input element contributed with weight 1, so the scalar
// gradient is broadcast back to the input shape.
type SumOp struct {
	input, output *tensor.RawTensor
}

// NewSumOp creates a full-sum operation.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{input: input, output: output}
}

func (op *SumOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *SumOp) Output() *tensor.RawTensor   { return op.output }

func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.input.Shape(), op.input.DType(), op.input.Device())
	if err != nil {
		panic(fmt.Sprintf("sum backward: %v", err))
	}

	switch op.input.DType() {
	case tensor.Float32:
		g := outputGrad.AsFloat32()[0]
		dst := grad.AsFloat32()
		for i := range dst {
			dst[i] = g
		}
	case tensor.Float64:
		g := outputGrad.AsFloat64()[0]
		dst := grad.AsFloat64()
		for i := range dst {
			dst[i] = g
		}
	default:
		panic(fmt.Sprintf("sum backward: unsupported dtype %s", op.input.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// ScaleOp records z = x * scalar.
type ScaleOp struct {
	input, output *tensor.RawTensor
	scalar        float64
}

// NewScaleOp creates a scalar multiplication operation.
func NewScaleOp(input, output *tensor.RawTensor, scalar float64) *ScaleOp {
	return &ScaleOp{input: input, output: output, scalar: scalar}
}

func (op *ScaleOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ScaleOp) Output() *tensor.RawTensor   { return op.output }

func (op *ScaleOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// ShiftOp records z = x + scalar. The gradient passes through unchanged.
type ShiftOp struct {
	input, output *tensor.RawTensor
}

// NewShiftOp creates a scalar addition operation.
func NewShiftOp(input, output *tensor.RawTensor) *ShiftOp {
	return &ShiftOp{input: input, output: output}
}

func (op *ShiftOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ShiftOp) Output() *tensor.RawTensor   { return op.output }

func (op *ShiftOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}
