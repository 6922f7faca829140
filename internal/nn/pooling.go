package nn

import "github.com/primer-ml/primer/internal/tensor"

// MaxPool2D applies non-padded max pooling. It has no parameters.
type MaxPool2D[B tensor.Backend] struct {
	backend            B
	kernelSize, stride int
}

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int, backend B) *MaxPool2D[B] {
	return &MaxPool2D[B]{backend: backend, kernelSize: kernelSize, stride: stride}
}

// Forward pools input [batch, channels, H, W].
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := m.backend.MaxPool2D(input.Raw(), m.kernelSize, m.stride)
	return tensor.New[float32](raw, m.backend)
}

func (m *MaxPool2D[B]) Parameters() []*Parameter[B] { return nil }

func (m *MaxPool2D[B]) StateDict() map[string]*tensor.RawTensor { return nil }

func (m *MaxPool2D[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Flatten reshapes [batch, ...] to [batch, rest]. It has no parameters.
type Flatten[B tensor.Backend] struct{}

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward collapses every dimension after the batch.
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	rest := 1
	for _, dim := range shape[1:] {
		rest *= dim
	}
	return input.Reshape(shape[0], rest)
}

func (f *Flatten[B]) Parameters() []*Parameter[B] { return nil }

func (f *Flatten[B]) StateDict() map[string]*tensor.RawTensor { return nil }

func (f *Flatten[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
