package cpu

import (
	"fmt"

	"github.com/primer-ml/primer/internal/parallel"
	"github.com/primer-ml/primer/internal/tensor"
)

// Conv2DInputBackward computes the input gradient of Conv2D: the output
// gradient scattered back through every kernel window position.
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	n, cin, h, w := conv2DDims("conv2d-input-backward", input)
	kShape := kernel.Shape()
	cout, kh, kw := kShape[0], kShape[2], kShape[3]
	gShape := grad.Shape()
	outH, outW := gShape[2], gShape[3]

	result, err := tensor.NewRaw(input.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d-input-backward: %v", err))
	}

	kData := kernel.AsFloat32()
	gData := grad.AsFloat32()
	dst := result.AsFloat32()

	inPlane := h * w
	outPlane := outH * outW

	// Each goroutine owns one batch element, so scatter-adds never race.
	parallel.For(n, func(b int) {
		dIn := dst[b*cin*inPlane : (b+1)*cin*inPlane]
		for co := 0; co < cout; co++ {
			gPlane := gData[(b*cout+co)*outPlane : (b*cout+co+1)*outPlane]
			kBase := co * cin * kh * kw
			for oy := 0; oy < outH; oy++ {
				for ox := 0; ox < outW; ox++ {
					g := gPlane[oy*outW+ox]
					if g == 0 {
						continue
					}
					for ci := 0; ci < cin; ci++ {
						kPlane := kData[kBase+ci*kh*kw : kBase+(ci+1)*kh*kw]
						for ky := 0; ky < kh; ky++ {
							iy := oy*stride - padding + ky
							if iy < 0 || iy >= h {
								continue
							}
							for kx := 0; kx < kw; kx++ {
								ix := ox*stride - padding + kx
								if ix < 0 || ix >= w {
									continue
								}
								dIn[ci*inPlane+iy*w+ix] += g * kPlane[ky*kw+kx]
							}
						}
					}
				}
			}
		}
	})

	return result
}

// Conv2DKernelBackward computes the kernel gradient of Conv2D: for every
// kernel tap, the correlation of the input with the output gradient.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	n, cin, h, w := conv2DDims("conv2d-kernel-backward", input)
	kShape := kernel.Shape()
	cout, kh, kw := kShape[0], kShape[2], kShape[3]
	gShape := grad.Shape()
	outH, outW := gShape[2], gShape[3]

	result, err := tensor.NewRaw(kShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d-kernel-backward: %v", err))
	}

	src := input.AsFloat32()
	gData := grad.AsFloat32()
	dst := result.AsFloat32()

	inPlane := h * w
	outPlane := outH * outW

	// Each goroutine owns one output channel's kernel slice.
	parallel.For(cout, func(co int) {
		dK := dst[co*cin*kh*kw : (co+1)*cin*kh*kw]
		for b := 0; b < n; b++ {
			gPlane := gData[(b*cout+co)*outPlane : (b*cout+co+1)*outPlane]
			for ci := 0; ci < cin; ci++ {
				plane := src[(b*cin+ci)*inPlane : (b*cin+ci+1)*inPlane]
				dKPlane := dK[ci*kh*kw : (ci+1)*kh*kw]
				for oy := 0; oy < outH; oy++ {
					for ox := 0; ox < outW; ox++ {
						g := gPlane[oy*outW+ox]
						if g == 0 {
							continue
						}
						for ky := 0; ky < kh; ky++ {
							iy := oy*stride - padding + ky
							if iy < 0 || iy >= h {
								continue
							}
							for kx := 0; kx < kw; kx++ {
								ix := ox*stride - padding + kx
								if ix < 0 || ix >= w {
									continue
								}
								dKPlane[ky*kw+kx] += g * plane[iy*w+ix]
							}
						}
					}
				}
			}
		}
	})

	return result
}
