package nn

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter wraps a tensor as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the underlying tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Raw returns the underlying RawTensor, the key used for gradient lookup.
func (p *Parameter[B]) Raw() *tensor.RawTensor { return p.tensor.Raw() }

// CopyFrom overwrites the parameter's values from a raw tensor of the same
// shape, keeping the parameter's identity stable.
func (p *Parameter[B]) CopyFrom(src *tensor.RawTensor) error {
	dst := p.tensor.Raw()
	if !dst.Shape().Equal(src.Shape()) {
		return fmt.Errorf("parameter %q: shape mismatch %v vs %v", p.name, dst.Shape(), src.Shape())
	}
	if dst.DType() != src.DType() {
		return fmt.Errorf("parameter %q: dtype mismatch %s vs %s", p.name, dst.DType(), src.DType())
	}
	copy(dst.Bytes(), src.Bytes())
	return nil
}
