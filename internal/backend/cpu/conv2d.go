package cpu

import (
	"fmt"

	"github.com/primer-ml/primer/internal/parallel"
	"github.com/primer-ml/primer/internal/tensor"
)

// Conv2D computes a 2D cross-correlation over NCHW input.
//
//	input:  [N, Cin, H, W]
//	kernel: [Cout, Cin, KH, KW]
//	output: [N, Cout, OH, OW] with OH = (H + 2*padding - KH)/stride + 1
//
// The kernel window is lowered to a column matrix per batch element
// (im2col), and the convolution becomes a single [Cout, Cin*KH*KW] x
// [Cin*KH*KW, OH*OW] matmul.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	n, cin, h, w := conv2DDims("conv2d", input)
	kShape := kernel.Shape()
	if len(kShape) != 4 || kShape[1] != cin {
		panic(fmt.Sprintf("conv2d: kernel %v does not match input %v", kShape, input.Shape()))
	}
	cout, kh, kw := kShape[0], kShape[2], kShape[3]

	outH := convOutputSize(h, kh, stride, padding)
	outW := convOutputSize(w, kw, stride, padding)

	result, err := tensor.NewRaw(tensor.Shape{n, cout, outH, outW}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: %v", err))
	}

	src := input.AsFloat32()
	kData := kernel.AsFloat32()
	dst := result.AsFloat32()

	colRows := cin * kh * kw
	colCols := outH * outW
	inPlane := h * w
	outPlane := outH * outW

	parallel.For(n, func(b int) {
		col := make([]float32, colRows*colCols)
		im2col(src[b*cin*inPlane:(b+1)*cin*inPlane], col, cin, h, w, kh, kw, stride, padding, outH, outW)
		matmulRows(kData, col, dst[b*cout*outPlane:(b+1)*cout*outPlane], cout, colRows, colCols)
	})

	return result
}

// im2col lowers each kernel window position to a column. Out-of-bounds
// (padding) positions stay zero.
func im2col(src, col []float32, cin, h, w, kh, kw, stride, padding, outH, outW int) {
	colCols := outH * outW
	row := 0
	for c := 0; c < cin; c++ {
		plane := src[c*h*w : (c+1)*h*w]
		for ky := 0; ky < kh; ky++ {
			for kx := 0; kx < kw; kx++ {
				dst := col[row*colCols : (row+1)*colCols]
				row++
				for oy := 0; oy < outH; oy++ {
					iy := oy*stride - padding + ky
					if iy < 0 || iy >= h {
						continue
					}
					for ox := 0; ox < outW; ox++ {
						ix := ox*stride - padding + kx
						if ix < 0 || ix >= w {
							continue
						}
						dst[oy*outW+ox] = plane[iy*w+ix]
					}
				}
			}
		}
	}
}

func convOutputSize(in, kernel, stride, padding int) int {
	out := (in+2*padding-kernel)/stride + 1
	if out <= 0 {
		panic(fmt.Sprintf("conv2d: kernel %d with stride %d and padding %d does not fit input %d",
			kernel, stride, padding, in))
	}
	return out
}

func conv2DDims(name string, input *tensor.RawTensor) (n, c, h, w int) {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("%s: input must be NCHW, got %v", name, shape))
	}
	if input.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: only float32 is supported, got %s", name, input.DType()))
	}
	return shape[0], shape[1], shape[2], shape[3]
}
