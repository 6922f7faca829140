package nn

import (
	"github.com/primer-ml/primer/internal/tensor"
)

// Conv2D is a 2D convolution layer over NCHW input.
//
// Weight shape is [outChannels, inChannels, kernelH, kernelW]; bias is
// [outChannels], broadcast as [1, outChannels, 1, 1].
type Conv2D[B tensor.Backend] struct {
	weight  *Parameter[B]
	bias    *Parameter[B] // nil when the layer has no bias
	backend B

	inChannels, outChannels int
	kernelH, kernelW        int
	stride, padding         int
}

// NewConv2D creates a convolution layer with Xavier-initialized weights.
func NewConv2D[B tensor.Backend](inChannels, outChannels, kernelH, kernelW, stride, padding int, withBias bool, backend B) *Conv2D[B] {
	weight := tensor.Zeros[float32](tensor.Shape{outChannels, inChannels, kernelH, kernelW}, backend)
	fanIn := inChannels * kernelH * kernelW
	fanOut := outChannels * kernelH * kernelW
	xavierUniform(weight.Raw(), fanIn, fanOut)

	c := &Conv2D[B]{
		weight:      NewParameter("weight", weight),
		backend:     backend,
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelH:     kernelH,
		kernelW:     kernelW,
		stride:      stride,
		padding:     padding,
	}
	if withBias {
		c.bias = NewParameter("bias", tensor.Zeros[float32](tensor.Shape{outChannels}, backend))
	}
	return c
}

// InChannels returns the input channel count.
func (c *Conv2D[B]) InChannels() int { return c.inChannels }

// OutChannels returns the output channel count.
func (c *Conv2D[B]) OutChannels() int { return c.outChannels }

// KernelSize returns [kernelH, kernelW].
func (c *Conv2D[B]) KernelSize() [2]int { return [2]int{c.kernelH, c.kernelW} }

// OutputSize returns the spatial output size for a given input size.
func (c *Conv2D[B]) OutputSize(inH, inW int) (int, int) {
	outH := (inH+2*c.padding-c.kernelH)/c.stride + 1
	outW := (inW+2*c.padding-c.kernelW)/c.stride + 1
	return outH, outW
}

// Forward convolves input [batch, inChannels, H, W] and adds bias.
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := c.backend.Conv2D(input.Raw(), c.weight.Raw(), c.stride, c.padding)
	out := tensor.New[float32](raw, c.backend)
	if c.bias != nil {
		out = out.Add(c.bias.Tensor().Reshape(1, c.outChannels, 1, 1))
	}
	return out
}

// Parameters returns weight and bias (when present).
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	params := []*Parameter[B]{c.weight}
	if c.bias != nil {
		params = append(params, c.bias)
	}
	return params
}

// StateDict returns the layer parameters keyed by name.
func (c *Conv2D[B]) StateDict() map[string]*tensor.RawTensor {
	state := map[string]*tensor.RawTensor{"weight": c.weight.Raw()}
	if c.bias != nil {
		state["bias"] = c.bias.Raw()
	}
	return state
}

// LoadStateDict restores parameter values by name.
func (c *Conv2D[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadParams(state, c.Parameters())
}
