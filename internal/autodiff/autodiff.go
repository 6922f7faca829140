// Package autodiff implements reverse-mode automatic differentiation as a
// backend decorator.
//
// Backend[B] wraps any tensor.Backend and satisfies tensor.Backend itself.
// While its tape is recording, differentiable operations are captured; a
// later Backward walk applies the chain rule in reverse and returns
// gradients keyed by input RawTensor.
//
//	ad := autodiff.New(cpu.New())
//	ad.Tape().StartRecording()
//	loss := model.Forward(batch)           // ops land on the tape
//	grads := ad.Tape().Backward(ones, ad)  // map[*RawTensor]*RawTensor
//	ad.Tape().Clear()
package autodiff

import (
	"fmt"
	"math"

	"github.com/primer-ml/primer/internal/autodiff/ops"
	"github.com/primer-ml/primer/internal/tensor"
)

// Backend decorates an inner backend with gradient recording.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New wraps a backend with autodiff support.
func New[B tensor.Backend](inner B) *Backend[B] {
	return &Backend[B]{inner: inner, tape: NewGradientTape()}
}

// Tape returns the gradient tape for recording control.
func (b *Backend[B]) Tape() *GradientTape { return b.tape }

// Inner returns the wrapped backend.
func (b *Backend[B]) Inner() B { return b.inner }

// Name returns the decorated backend name.
func (b *Backend[B]) Name() string { return "autodiff(" + b.inner.Name() + ")" }

// Device returns the inner backend's device.
func (b *Backend[B]) Device() tensor.Device { return b.inner.Device() }

// Add computes a + b and records the operation.
func (b *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, result))
	return result
}

// Sub computes a - b and records the operation.
func (b *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, result))
	return result
}

// Mul computes a * b and records the operation.
func (b *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, result))
	return result
}

// Div computes a / b and records the operation.
func (b *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, result))
	return result
}

// MatMul computes a @ b and records the operation.
func (b *Backend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, result))
	return result
}

// Reshape changes the shape and records the operation.
func (b *Backend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(x, shape)
	b.tape.Record(ops.NewReshapeOp(x, result))
	return result
}

// Transpose permutes axes and records the operation.
func (b *Backend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(x.Shape())
	resolved := axes
	if len(resolved) == 0 {
		resolved = make([]int, ndim)
		for i := range resolved {
			resolved[i] = ndim - 1 - i
		}
	}
	result := b.inner.Transpose(x, resolved...)
	b.tape.Record(ops.NewTransposeOp(x, result, resolved))
	return result
}

// ReLU rectifies and records the operation.
func (b *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.ReLU(x)
	b.tape.Record(ops.NewReLUOp(x, result))
	return result
}

// Conv2D convolves and records the operation.
func (b *Backend[B]) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	result := b.inner.Conv2D(input, kernel, stride, padding)
	b.tape.Record(ops.NewConv2DOp(input, kernel, result, stride, padding))
	return result
}

// MaxPool2D pools and records the operation, capturing window argmaxes for
// the backward pass.
func (b *Backend[B]) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	result := b.inner.MaxPool2D(input, kernelSize, stride)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMaxPool2DOp(input, result, kernelSize, stride))
	}
	return result
}

// CrossEntropy computes mean(-log_softmax(logits)[target]) as a [1] scalar
// and records the fused operation. Loss layers discover this method by
// interface assertion.
func (b *Backend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross-entropy: logits must be [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]

	logitsData := logits.AsFloat32()
	targetsData := targets.AsInt32()

	var total float64
	for i := 0; i < batch; i++ {
		row := logitsData[i*classes : (i+1)*classes]
		target := int(targetsData[i])
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("cross-entropy: target %d out of range [0, %d)", target, classes))
		}

		// log_softmax via log-sum-exp.
		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxVal))
		}
		total += -(float64(row[target]-maxVal) - math.Log(sumExp))
	}

	result, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, b.Device())
	if err != nil {
		panic(fmt.Sprintf("cross-entropy: %v", err))
	}
	result.AsFloat32()[0] = float32(total / float64(batch))

	b.tape.Record(ops.NewCrossEntropyOp(logits, targets, result))
	return result
}

// AddScalar shifts every element and records the operation.
func (b *Backend[B]) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := b.inner.AddScalar(x, s)
	b.tape.Record(ops.NewShiftOp(x, result))
	return result
}

// MulScalar scales every element and records the operation.
func (b *Backend[B]) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, s)
	b.tape.Record(ops.NewScaleOp(x, result, s))
	return result
}

// Sum reduces to a [1] scalar and records the operation.
func (b *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, result))
	return result
}

// The remaining Backend methods are not differentiated: they either appear
// only outside training (metrics, preprocessing) or inside backward kernels.

func (b *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor  { return b.inner.Exp(x) }
func (b *Backend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor  { return b.inner.Log(x) }
func (b *Backend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor { return b.inner.Sqrt(x) }

func (b *Backend[B]) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Softmax(x, dim)
}

func (b *Backend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.inner.SumDim(x, dim, keepDim)
}

func (b *Backend[B]) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.inner.MeanDim(x, dim, keepDim)
}

func (b *Backend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}

func (b *Backend[B]) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

func (b *Backend[B]) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DKernelBackward(input, kernel, grad, stride, padding)
}

func (b *Backend[B]) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	return b.inner.MaxPool2DBackward(input, grad, maxIndices, kernelSize, stride)
}
