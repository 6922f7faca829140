package ops

import "github.com/primer-ml/primer/internal/tensor"

// MatMulOp records z = a @ b for 2D matrices.
//
// Backward:
//
//	dz/da = grad @ bᵀ
//	dz/db = aᵀ @ grad
type MatMulOp struct {
	a, b, output *tensor.RawTensor
}

// NewMatMulOp creates a matrix multiplication operation.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{a: a, b: b, output: output}
}

func (op *MatMulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *MatMulOp) Output() *tensor.RawTensor   { return op.output }

func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradA := backend.MatMul(outputGrad, backend.Transpose(op.b))
	gradB := backend.MatMul(backend.Transpose(op.a), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}
