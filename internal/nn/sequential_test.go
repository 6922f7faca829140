package nn

import (
	"testing"

	"github.com/primer-ml/primer/internal/backend/cpu"
	"github.com/primer-ml/primer/internal/tensor"
)

// TestSequential_Forward tests chaining through a small conv net.
func TestSequential_Forward(t *testing.T) {
	backend := cpu.New()

	model := NewSequential[*cpu.CPUBackend](
		NewConv2D(1, 4, 3, 3, 1, 0, true, backend),
		NewReLU(backend),
		NewMaxPool2D(2, 2, backend),
		NewFlatten[*cpu.CPUBackend](),
		NewLinear(4*13*13, 10, true, backend),
	)

	input := tensor.Zeros[float32](tensor.Shape{2, 1, 28, 28}, backend)
	output := model.Forward(input)

	if !output.Shape().Equal(tensor.Shape{2, 10}) {
		t.Errorf("Output shape: expected [2 10], got %v", output.Shape())
	}
	// conv weight+bias, linear weight+bias
	if len(model.Parameters()) != 4 {
		t.Errorf("Expected 4 parameters, got %d", len(model.Parameters()))
	}
}

// TestSequential_StateDict tests prefixed keys and round-tripping.
func TestSequential_StateDict(t *testing.T) {
	backend := cpu.New()

	build := func() *Sequential[*cpu.CPUBackend] {
		return NewSequential[*cpu.CPUBackend](
			NewLinear(4, 8, true, backend),
			NewReLU(backend),
			NewLinear(8, 2, true, backend),
		)
	}

	src := build()
	state := src.StateDict()

	for _, key := range []string{"0.weight", "0.bias", "2.weight", "2.bias"} {
		if _, ok := state[key]; !ok {
			t.Errorf("StateDict missing key %q", key)
		}
	}
	if len(state) != 4 {
		t.Errorf("Expected 4 state entries, got %d", len(state))
	}

	src.Parameters()[0].Raw().AsFloat32()[0] = 42

	dst := build()
	if err := dst.LoadStateDict(src.StateDict()); err != nil {
		t.Fatalf("LoadStateDict: %v", err)
	}
	if got := dst.Parameters()[0].Raw().AsFloat32()[0]; got != 42 {
		t.Errorf("Restored weight: expected 42, got %f", got)
	}
}
