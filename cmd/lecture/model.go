package main

import (
	"github.com/primer-ml/primer/internal/nn"
)

// variant describes one of the lecture's CNN architectures.
type variant struct {
	Name        string
	Description []string
	Build       func() *nn.Sequential[backendT]
}

// newBasicCNN is the first network the lecture builds: one convolutional
// block followed by a small classifier head.
//
//	Input: [batch, 1, 28, 28]
//	Conv:  1 -> 8 channels, 3x3 kernel, padding 1 -> [batch, 8, 28, 28]
//	ReLU
//	MaxPool: 2x2 -> [batch, 8, 14, 14]
//	Flatten -> [batch, 1568]
//	FC: 1568 -> 128 -> 10
func newBasicCNN(backend backendT) *nn.Sequential[backendT] {
	return nn.NewSequential[backendT](
		nn.NewConv2D(1, 8, 3, 3, 1, 1, true, backend),
		nn.NewReLU(backend),
		nn.NewMaxPool2D(2, 2, backend),
		nn.NewFlatten[backendT](),
		nn.NewLinear(8*14*14, 128, true, backend),
		nn.NewReLU(backend),
		nn.NewLinear(128, 10, true, backend),
	)
}

// newLeNetCNN is the lecture's second network, a LeNet-5 style architecture
// adapted for 28x28 inputs.
//
//	Input: [batch, 1, 28, 28]
//	Conv1: 1 -> 6 channels, 5x5 kernel -> [batch, 6, 24, 24]
//	ReLU, MaxPool 2x2 -> [batch, 6, 12, 12]
//	Conv2: 6 -> 16 channels, 5x5 kernel -> [batch, 16, 8, 8]
//	ReLU, MaxPool 2x2 -> [batch, 16, 4, 4]
//	Flatten -> [batch, 256]
//	FC: 256 -> 120 -> 84 -> 10
func newLeNetCNN(backend backendT) *nn.Sequential[backendT] {
	return nn.NewSequential[backendT](
		nn.NewConv2D(1, 6, 5, 5, 1, 0, true, backend),
		nn.NewReLU(backend),
		nn.NewMaxPool2D(2, 2, backend),
		nn.NewConv2D(6, 16, 5, 5, 1, 0, true, backend),
		nn.NewReLU(backend),
		nn.NewMaxPool2D(2, 2, backend),
		nn.NewFlatten[backendT](),
		nn.NewLinear(16*4*4, 120, true, backend),
		nn.NewReLU(backend),
		nn.NewLinear(120, 84, true, backend),
		nn.NewReLU(backend),
		nn.NewLinear(84, 10, true, backend),
	)
}

func variants(backend backendT) map[string]variant {
	return map[string]variant{
		"basic": {
			Name: "basic",
			Description: []string{
				"Conv: 1->8 channels, 3x3 kernel, padding 1",
				"MaxPool: 2x2",
				"FC: 1568->128->10",
			},
			Build: func() *nn.Sequential[backendT] { return newBasicCNN(backend) },
		},
		"lenet": {
			Name: "lenet",
			Description: []string{
				"Conv1: 1->6 channels, 5x5 kernel",
				"MaxPool: 2x2",
				"Conv2: 6->16 channels, 5x5 kernel",
				"MaxPool: 2x2",
				"FC: 256->120->84->10",
			},
			Build: func() *nn.Sequential[backendT] { return newLeNetCNN(backend) },
		},
	}
}

// countParameters sums the element counts of all trainable parameters.
func countParameters(model *nn.Sequential[backendT]) int {
	total := 0
	for _, param := range model.Parameters() {
		total += param.Raw().NumElements()
	}
	return total
}
