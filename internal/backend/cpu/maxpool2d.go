package cpu

import (
	"fmt"

	"github.com/primer-ml/primer/internal/parallel"
	"github.com/primer-ml/primer/internal/tensor"
)

// MaxPool2D applies non-padded max pooling over NCHW input.
//
//	input:  [N, C, H, W]
//	output: [N, C, (H-kernelSize)/stride+1, (W-kernelSize)/stride+1]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	n, c, h, w := conv2DDims("maxpool2d", input)
	outH := poolOutputSize(h, kernelSize, stride)
	outW := poolOutputSize(w, kernelSize, stride)

	result, err := tensor.NewRaw(tensor.Shape{n, c, outH, outW}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("maxpool2d: %v", err))
	}

	src := input.AsFloat32()
	dst := result.AsFloat32()
	inPlane := h * w
	outPlane := outH * outW

	parallel.ForBatch(n, c, func(b, ch int) {
		plane := src[(b*c+ch)*inPlane : (b*c+ch+1)*inPlane]
		out := dst[(b*c+ch)*outPlane : (b*c+ch+1)*outPlane]
		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				v, _ := poolWindowMax(plane, w, oy*stride, ox*stride, kernelSize)
				out[oy*outW+ox] = v
			}
		}
	})

	return result
}

// MaxPool2DBackward routes the output gradient to the positions that won
// the forward max, given the flat input index of each output element.
func (cpu *CPUBackend) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	if grad.NumElements() != len(maxIndices) {
		panic(fmt.Sprintf("maxpool2d-backward: %d gradient elements but %d max indices",
			grad.NumElements(), len(maxIndices)))
	}

	result, err := tensor.NewRaw(input.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("maxpool2d-backward: %v", err))
	}

	gData := grad.AsFloat32()
	dst := result.AsFloat32()
	for i, idx := range maxIndices {
		dst[idx] += gData[i]
	}

	return result
}

// PoolMaxIndices returns the flat input index of the max inside every pool
// window, in output element order. The autodiff layer captures these during
// the forward pass for use in MaxPool2DBackward.
func PoolMaxIndices(input *tensor.RawTensor, kernelSize, stride int) []int {
	n, c, h, w := conv2DDims("maxpool2d", input)
	outH := poolOutputSize(h, kernelSize, stride)
	outW := poolOutputSize(w, kernelSize, stride)

	src := input.AsFloat32()
	indices := make([]int, n*c*outH*outW)
	inPlane := h * w
	outPlane := outH * outW

	parallel.ForBatch(n, c, func(b, ch int) {
		base := (b*c + ch) * inPlane
		plane := src[base : base+inPlane]
		out := indices[(b*c+ch)*outPlane : (b*c+ch+1)*outPlane]
		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				_, idx := poolWindowMax(plane, w, oy*stride, ox*stride, kernelSize)
				out[oy*outW+ox] = base + idx
			}
		}
	})

	return indices
}

func poolWindowMax(plane []float32, w, y0, x0, k int) (float32, int) {
	best := plane[y0*w+x0]
	bestIdx := y0*w + x0
	for ky := 0; ky < k; ky++ {
		row := (y0 + ky) * w
		for kx := 0; kx < k; kx++ {
			if v := plane[row+x0+kx]; v > best {
				best = v
				bestIdx = row + x0 + kx
			}
		}
	}
	return best, bestIdx
}

func poolOutputSize(in, kernel, stride int) int {
	out := (in-kernel)/stride + 1
	if out <= 0 {
		panic(fmt.Sprintf("maxpool2d: kernel %d with stride %d does not fit input %d", kernel, stride, in))
	}
	return out
}
