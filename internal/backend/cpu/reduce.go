package cpu

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// Sum reduces the whole tensor to a scalar of shape [1].
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{1}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// SumDim sums along dim. keepDim keeps the reduced dimension with size 1.
// Negative dim counts from the end.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sumdim", x, dim, keepDim, false)
}

// MeanDim averages along dim. keepDim keeps the reduced dimension.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("meandim", x, dim, keepDim, true)
}

func (cpu *CPUBackend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension out of range for shape %v", name, shape))
	}

	outShape := reducedShape(shape, dim, keepDim)
	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		reduceDimData(x.AsFloat32(), result.AsFloat32(), shape, dim, mean)
	case tensor.Float64:
		reduceDimData(x.AsFloat64(), result.AsFloat64(), shape, dim, mean)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	if len(shape) == 1 {
		return tensor.Shape{1}
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, s := range shape {
		if i != dim {
			out = append(out, s)
		}
	}
	return out
}

func reduceDimData[F float](src, dst []F, shape tensor.Shape, dim int, mean bool) {
	strides := shape.ComputeStrides()
	dimSize := shape[dim]
	dimStride := strides[dim]

	numRows := len(dst)
	if len(dst) == 1 && len(shape) == 1 {
		numRows = 1
	}

	for row := 0; row < numRows; row++ {
		base := 0
		remaining := row
		for i := len(shape) - 1; i >= 0; i-- {
			if i == dim {
				continue
			}
			base += (remaining % shape[i]) * strides[i]
			remaining /= shape[i]
		}

		var sum F
		for i := 0; i < dimSize; i++ {
			sum += src[base+i*dimStride]
		}
		if mean {
			sum /= F(dimSize)
		}
		dst[row] = sum
	}
}

// Argmax returns int32 indices of the maximum along dim, with the reduced
// dimension removed. Ties resolve to the lowest index.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("argmax: dimension out of range for shape %v", shape))
	}

	outShape := reducedShape(shape, dim, false)
	result, err := tensor.NewRaw(outShape, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("argmax: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		argmaxData(x.AsFloat32(), result.AsInt32(), shape, dim)
	case tensor.Float64:
		argmaxData(x.AsFloat64(), result.AsInt32(), shape, dim)
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}

	return result
}

func argmaxData[F float](src []F, dst []int32, shape tensor.Shape, dim int) {
	strides := shape.ComputeStrides()
	dimSize := shape[dim]
	dimStride := strides[dim]

	for row := range dst {
		base := 0
		remaining := row
		for i := len(shape) - 1; i >= 0; i-- {
			if i == dim {
				continue
			}
			base += (remaining % shape[i]) * strides[i]
			remaining /= shape[i]
		}

		best, bestIdx := src[base], 0
		for i := 1; i < dimSize; i++ {
			if v := src[base+i*dimStride]; v > best {
				best, bestIdx = v, i
			}
		}
		dst[row] = int32(bestIdx)
	}
}
