package nn

import (
	"testing"

	"github.com/primer-ml/primer/internal/backend/cpu"
	"github.com/primer-ml/primer/internal/tensor"
)

// TestLinear_Creation tests layer construction.
func TestLinear_Creation(t *testing.T) {
	backend := cpu.New()

	l := NewLinear(256, 120, true, backend)

	if l.InFeatures() != 256 || l.OutFeatures() != 120 {
		t.Errorf("Expected 256 -> 120, got %d -> %d", l.InFeatures(), l.OutFeatures())
	}
	if !l.weight.Tensor().Shape().Equal(tensor.Shape{120, 256}) {
		t.Errorf("Weight shape: expected [120 256], got %v", l.weight.Tensor().Shape())
	}
	if !l.bias.Tensor().Shape().Equal(tensor.Shape{120}) {
		t.Errorf("Bias shape: expected [120], got %v", l.bias.Tensor().Shape())
	}
	if len(l.Parameters()) != 2 {
		t.Errorf("Expected 2 parameters, got %d", len(l.Parameters()))
	}
}

// TestLinear_NoBias tests that bias can be disabled.
func TestLinear_NoBias(t *testing.T) {
	backend := cpu.New()

	l := NewLinear(4, 2, false, backend)
	if len(l.Parameters()) != 1 {
		t.Errorf("Expected 1 parameter without bias, got %d", len(l.Parameters()))
	}
}

// TestLinear_ForwardValues tests y = x @ Wᵀ + b with known values.
func TestLinear_ForwardValues(t *testing.T) {
	backend := cpu.New()

	l := NewLinear(3, 2, true, backend)

	// W = [[1,0,1],[0,1,0]], b = [10, 20]
	w := l.weight.Tensor().Raw().AsFloat32()
	copy(w, []float32{1, 0, 1, 0, 1, 0})
	b := l.bias.Tensor().Raw().AsFloat32()
	copy(b, []float32{10, 20})

	input := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, backend)
	output := l.Forward(input)

	if !output.Shape().Equal(tensor.Shape{1, 2}) {
		t.Fatalf("Output shape: expected [1 2], got %v", output.Shape())
	}
	// y0 = 1+3+10 = 14, y1 = 2+20 = 22
	got := output.Raw().AsFloat32()
	if got[0] != 14 || got[1] != 22 {
		t.Errorf("Output: expected [14 22], got %v", got)
	}
}

// TestLinear_StateDictRoundTrip tests save and restore of parameters.
func TestLinear_StateDictRoundTrip(t *testing.T) {
	backend := cpu.New()

	src := NewLinear(4, 3, true, backend)
	src.weight.Tensor().Raw().AsFloat32()[0] = 5.5
	src.bias.Tensor().Raw().AsFloat32()[2] = -1.25

	dst := NewLinear(4, 3, true, backend)
	if err := dst.LoadStateDict(src.StateDict()); err != nil {
		t.Fatalf("LoadStateDict: %v", err)
	}

	if got := dst.weight.Tensor().Raw().AsFloat32()[0]; got != 5.5 {
		t.Errorf("weight[0]: expected 5.5, got %f", got)
	}
	if got := dst.bias.Tensor().Raw().AsFloat32()[2]; got != -1.25 {
		t.Errorf("bias[2]: expected -1.25, got %f", got)
	}
}
