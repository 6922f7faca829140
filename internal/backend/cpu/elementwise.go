package cpu

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

type float interface {
	~float32 | ~float64
}

// binary dispatches an element-wise binary op by dtype. Both inputs must
// share a dtype; shapes follow broadcast rules.
func (cpu *CPUBackend) binary(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		broadcastBinary(a.AsFloat32(), b.AsFloat32(), result.AsFloat32(), a.Shape(), b.Shape(), outShape, f32)
	case tensor.Float64:
		broadcastBinary(a.AsFloat64(), b.AsFloat64(), result.AsFloat64(), a.Shape(), b.Shape(), outShape, f64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// broadcastBinary computes out[i] = f(a, b) with a and b broadcast to
// outShape. Equal shapes take a contiguous fast path.
func broadcastBinary[F float](a, b, out []F, aShape, bShape, outShape tensor.Shape, f func(x, y F) F) {
	if aShape.Equal(bShape) {
		for i := range out {
			out[i] = f(a[i], b[i])
		}
		return
	}

	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)
	outStrides := outShape.ComputeStrides()

	for flat := range out {
		aIdx, bIdx := 0, 0
		remaining := flat
		for d := 0; d < len(outShape); d++ {
			coord := remaining / outStrides[d]
			remaining %= outStrides[d]
			aIdx += coord * aStrides[d]
			bIdx += coord * bStrides[d]
		}
		out[flat] = f(a[aIdx], b[bIdx])
	}
}

// broadcastStrides returns per-output-dimension strides into a tensor of
// shape `shape`, with stride 0 where the input dimension is broadcast.
func broadcastStrides(shape, outShape tensor.Shape) []int {
	ndim := len(outShape)
	strides := make([]int, ndim)
	srcStrides := shape.ComputeStrides()

	offset := ndim - len(shape)
	for i := 0; i < len(shape); i++ {
		if shape[i] == outShape[offset+i] {
			strides[offset+i] = srcStrides[i]
		}
		// Broadcast dimension (size 1): stride stays 0.
	}
	return strides
}

// unary dispatches an element-wise unary op by dtype.
func (cpu *CPUBackend) unary(name string, x *tensor.RawTensor, f64 func(v float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i := range src {
			dst[i] = float32(f64(float64(src[i])))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i := range src {
			dst[i] = f64(src[i])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}
