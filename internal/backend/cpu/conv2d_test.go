package cpu

import (
	"testing"

	"github.com/primer-ml/primer/internal/tensor"
)

// TestConv2D_KnownValues tests a 2x2 kernel over a 3x3 input.
func TestConv2D_KnownValues(t *testing.T) {
	backend := New()

	input := rawFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	kernel := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})

	output := backend.Conv2D(input, kernel, 1, 0)

	if !output.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("shape: expected [1 1 2 2], got %v", output.Shape())
	}
	// [0,0]: 1*1 + 2*2 + 3*4 + 4*5 = 37
	// [0,1]: 1*2 + 2*3 + 3*5 + 4*6 = 47
	// [1,0]: 1*4 + 2*5 + 3*7 + 4*8 = 67
	// [1,1]: 1*5 + 2*6 + 3*8 + 4*9 = 77
	expected := []float32{37, 47, 67, 77}
	for i, want := range expected {
		if got := output.AsFloat32()[i]; got != want {
			t.Errorf("Conv2D[%d]: expected %.1f, got %.1f", i, want, got)
		}
	}
}

// TestConv2D_Padding tests that padding grows the output.
func TestConv2D_Padding(t *testing.T) {
	backend := New()

	input := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := rawFloat32(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})

	output := backend.Conv2D(input, kernel, 1, 1)

	if !output.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("shape: expected [1 1 2 2], got %v", output.Shape())
	}
	// Each output sums the whole input (the 3x3 window covers every element
	// from each corner under padding=1).
	expected := []float32{10, 10, 10, 10}
	for i, want := range expected {
		if got := output.AsFloat32()[i]; got != want {
			t.Errorf("Conv2D[%d]: expected %.1f, got %.1f", i, want, got)
		}
	}
}

// TestConv2D_MultiChannel tests channel summation into each output.
func TestConv2D_MultiChannel(t *testing.T) {
	backend := New()

	// Two 2x2 input channels.
	input := rawFloat32(t, []float32{
		1, 2, 3, 4, // channel 0
		10, 20, 30, 40, // channel 1
	}, tensor.Shape{1, 2, 2, 2})
	// One 1x1 kernel per input channel: 1 and 0.1.
	kernel := rawFloat32(t, []float32{1, 0.1}, tensor.Shape{1, 2, 1, 1})

	output := backend.Conv2D(input, kernel, 1, 0)

	expected := []float32{2, 4, 6, 8}
	for i, want := range expected {
		if got := output.AsFloat32()[i]; got != want {
			t.Errorf("Conv2D[%d]: expected %.1f, got %.1f", i, want, got)
		}
	}
}

// TestConv2DInputBackward tests the scatter of output grads through a 1x1 kernel.
func TestConv2DInputBackward(t *testing.T) {
	backend := New()

	input := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := rawFloat32(t, []float32{3}, tensor.Shape{1, 1, 1, 1})
	grad := rawFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

	dInput := backend.Conv2DInputBackward(input, kernel, grad, 1, 0)

	// With a 1x1 kernel of value 3, dInput = 3 * grad.
	for i := 0; i < 4; i++ {
		if got := dInput.AsFloat32()[i]; got != 3 {
			t.Errorf("dInput[%d]: expected 3, got %.1f", i, got)
		}
	}
}

// TestConv2DKernelBackward tests the kernel grad of a 1x1 convolution.
func TestConv2DKernelBackward(t *testing.T) {
	backend := New()

	input := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := rawFloat32(t, []float32{3}, tensor.Shape{1, 1, 1, 1})
	grad := rawFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

	dKernel := backend.Conv2DKernelBackward(input, kernel, grad, 1, 0)

	// dK = sum(input * grad) = 1+2+3+4 = 10.
	if got := dKernel.AsFloat32()[0]; got != 10 {
		t.Errorf("dKernel: expected 10, got %.1f", got)
	}
}

// TestMaxPool2D tests 2x2 stride-2 pooling.
func TestMaxPool2D(t *testing.T) {
	backend := New()

	input := rawFloat32(t, []float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 10, 13, 14,
		11, 12, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	output := backend.MaxPool2D(input, 2, 2)

	if !output.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("shape: expected [1 1 2 2], got %v", output.Shape())
	}
	expected := []float32{4, 8, 12, 16}
	for i, want := range expected {
		if got := output.AsFloat32()[i]; got != want {
			t.Errorf("MaxPool2D[%d]: expected %.1f, got %.1f", i, want, got)
		}
	}
}

// TestMaxPool2DBackward tests gradient routing to the max positions.
func TestMaxPool2DBackward(t *testing.T) {
	backend := New()

	input := rawFloat32(t, []float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 10, 13, 14,
		11, 12, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	indices := PoolMaxIndices(input, 2, 2)
	grad := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})

	dInput := backend.MaxPool2DBackward(input, grad, indices, 2, 2)

	data := dInput.AsFloat32()
	// Max positions: 4 (idx 5), 8 (idx 7), 12 (idx 13), 16 (idx 15).
	wantAt := map[int]float32{5: 1, 7: 2, 13: 3, 15: 4}
	for i, v := range data {
		want := wantAt[i]
		if v != want {
			t.Errorf("dInput[%d]: expected %.1f, got %.1f", i, want, v)
		}
	}
}
