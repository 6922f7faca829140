package nn

import "github.com/primer-ml/primer/internal/tensor"

// ReLU applies max(0, x). It has no parameters.
type ReLU[B tensor.Backend] struct {
	backend B
}

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend](backend B) *ReLU[B] {
	return &ReLU[B]{backend: backend}
}

// Forward rectifies the input element-wise.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32](r.backend.ReLU(input.Raw()), r.backend)
}

func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }

func (r *ReLU[B]) StateDict() map[string]*tensor.RawTensor { return nil }

func (r *ReLU[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Softmax normalizes logits to probabilities along the last dimension.
// Not used before CrossEntropyLoss, which fuses its own softmax.
type Softmax[B tensor.Backend] struct {
	backend B
}

// NewSoftmax creates a softmax layer over the last dimension.
func NewSoftmax[B tensor.Backend](backend B) *Softmax[B] {
	return &Softmax[B]{backend: backend}
}

func (s *Softmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32](s.backend.Softmax(input.Raw(), -1), s.backend)
}

func (s *Softmax[B]) Parameters() []*Parameter[B] { return nil }

func (s *Softmax[B]) StateDict() map[string]*tensor.RawTensor { return nil }

func (s *Softmax[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
