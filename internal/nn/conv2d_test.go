package nn

import (
	"testing"

	"github.com/primer-ml/primer/internal/backend/cpu"
	"github.com/primer-ml/primer/internal/tensor"
)

// TestConv2D_Creation tests Conv2D layer creation.
func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(1, 6, 5, 5, 1, 0, true, backend)

	if conv.InChannels() != 1 || conv.OutChannels() != 6 {
		t.Errorf("Expected 1 -> 6 channels, got %d -> %d", conv.InChannels(), conv.OutChannels())
	}
	if ks := conv.KernelSize(); ks[0] != 5 || ks[1] != 5 {
		t.Errorf("Expected kernel [5 5], got %v", ks)
	}
	if !conv.weight.Tensor().Shape().Equal(tensor.Shape{6, 1, 5, 5}) {
		t.Errorf("Weight shape: expected [6 1 5 5], got %v", conv.weight.Tensor().Shape())
	}
	if !conv.bias.Tensor().Shape().Equal(tensor.Shape{6}) {
		t.Errorf("Bias shape: expected [6], got %v", conv.bias.Tensor().Shape())
	}
	if len(conv.Parameters()) != 2 {
		t.Errorf("Expected 2 parameters, got %d", len(conv.Parameters()))
	}
}

// TestConv2D_ForwardShape tests output shape on MNIST-sized input.
func TestConv2D_ForwardShape(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(1, 6, 5, 5, 1, 0, true, backend)
	input := tensor.Zeros[float32](tensor.Shape{2, 1, 28, 28}, backend)

	output := conv.Forward(input)

	// out = (28 - 5)/1 + 1 = 24
	if !output.Shape().Equal(tensor.Shape{2, 6, 24, 24}) {
		t.Errorf("Output shape: expected [2 6 24 24], got %v", output.Shape())
	}

	outH, outW := conv.OutputSize(28, 28)
	if outH != 24 || outW != 24 {
		t.Errorf("OutputSize: expected 24x24, got %dx%d", outH, outW)
	}
}

// TestConv2D_ForwardValues tests forward pass with known values.
func TestConv2D_ForwardValues(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(1, 1, 2, 2, 1, 0, false, backend)
	copy(conv.weight.Tensor().Raw().AsFloat32(), []float32{1, 2, 3, 4})

	input := tensor.FromSlice(
		[]float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
		tensor.Shape{1, 1, 3, 3}, backend)

	output := conv.Forward(input)

	// [0,0]: 1*1+2*2+3*4+4*5 = 37, [0,1]: 47, [1,0]: 67, [1,1]: 77
	expected := []float32{37, 47, 67, 77}
	for i, want := range expected {
		if got := output.Raw().AsFloat32()[i]; got != want {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, want, got)
		}
	}
}

// TestConv2D_WithBias tests bias broadcasting over channels.
func TestConv2D_WithBias(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(1, 2, 2, 2, 1, 0, true, backend)
	w := conv.weight.Tensor().Raw().AsFloat32()
	for i := range w {
		w[i] = 1
	}
	copy(conv.bias.Tensor().Raw().AsFloat32(), []float32{100, 200})

	input := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, backend)
	output := conv.Forward(input)

	got := output.Raw().AsFloat32()
	// Window sum is 10; channel 0 adds 100, channel 1 adds 200.
	if got[0] != 110 || got[1] != 210 {
		t.Errorf("Output: expected [110 210], got %v", got)
	}
}

// TestMaxPool2D_Forward tests 2x2 stride-2 pooling.
func TestMaxPool2D_Forward(t *testing.T) {
	backend := cpu.New()

	pool := NewMaxPool2D(2, 2, backend)
	input := tensor.FromSlice([]float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 10, 13, 14,
		11, 12, 15, 16,
	}, tensor.Shape{1, 1, 4, 4}, backend)

	output := pool.Forward(input)

	if !output.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("Output shape: expected [1 1 2 2], got %v", output.Shape())
	}
	expected := []float32{4, 8, 12, 16}
	for i, want := range expected {
		if got := output.Raw().AsFloat32()[i]; got != want {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, want, got)
		}
	}
}

// TestFlatten tests batch-preserving reshape.
func TestFlatten(t *testing.T) {
	backend := cpu.New()

	flatten := NewFlatten[*cpu.CPUBackend]()
	input := tensor.Zeros[float32](tensor.Shape{2, 16, 4, 4}, backend)

	output := flatten.Forward(input)

	if !output.Shape().Equal(tensor.Shape{2, 256}) {
		t.Errorf("Output shape: expected [2 256], got %v", output.Shape())
	}
}
