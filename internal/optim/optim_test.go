package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/autodiff"
	"github.com/primer-ml/primer/internal/backend/cpu"
	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/tensor"
)

func gradFor(t *testing.T, p *nn.Parameter[*cpu.CPUBackend], values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	grad, err := tensor.NewRaw(p.Raw().Shape(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(grad.AsFloat32(), values)
	return map[*tensor.RawTensor]*tensor.RawTensor{p.Raw(): grad}
}

// TestSGD_VanillaStep checks p -= lr * g.
func TestSGD_VanillaStep(t *testing.T) {
	backend := cpu.New()

	param := nn.NewParameter("w", tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend))
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{param}, SGDConfig{LR: 0.1})

	require.NoError(t, opt.Step(gradFor(t, param, []float32{1, -1})))

	data := param.Raw().AsFloat32()
	assert.InDelta(t, 0.9, float64(data[0]), 1e-6)
	assert.InDelta(t, 2.1, float64(data[1]), 1e-6)
}

// TestSGD_Momentum checks velocity accumulation over two steps.
func TestSGD_Momentum(t *testing.T) {
	backend := cpu.New()

	param := nn.NewParameter("w", tensor.FromSlice([]float32{0}, tensor.Shape{1}, backend))
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{param}, SGDConfig{LR: 1, Momentum: 0.9})

	// Step 1: v = 1, p = -1.
	require.NoError(t, opt.Step(gradFor(t, param, []float32{1})))
	assert.InDelta(t, -1.0, float64(param.Raw().AsFloat32()[0]), 1e-6)

	// Step 2: v = 0.9 + 1 = 1.9, p = -2.9.
	require.NoError(t, opt.Step(gradFor(t, param, []float32{1})))
	assert.InDelta(t, -2.9, float64(param.Raw().AsFloat32()[0]), 1e-6)
}

// TestSGD_MissingGradSkipped checks untouched parameters stay put.
func TestSGD_MissingGradSkipped(t *testing.T) {
	backend := cpu.New()

	param := nn.NewParameter("w", tensor.FromSlice([]float32{5}, tensor.Shape{1}, backend))
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{param}, SGDConfig{LR: 0.1})

	require.NoError(t, opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{}))
	assert.Equal(t, float32(5), param.Raw().AsFloat32()[0])
}

// TestAdam_FirstStep checks the bias-corrected first update equals lr in
// magnitude for a unit gradient.
func TestAdam_FirstStep(t *testing.T) {
	backend := cpu.New()

	param := nn.NewParameter("w", tensor.FromSlice([]float32{1}, tensor.Shape{1}, backend))
	opt := NewAdam([]*nn.Parameter[*cpu.CPUBackend]{param}, DefaultAdamConfig(0.001))

	require.NoError(t, opt.Step(gradFor(t, param, []float32{1})))

	// mHat = 1, vHat = 1 after bias correction: update ≈ lr.
	assert.InDelta(t, 1-0.001, float64(param.Raw().AsFloat32()[0]), 1e-5)
}

// TestAdam_ShapeMismatch checks the error path.
func TestAdam_ShapeMismatch(t *testing.T) {
	backend := cpu.New()

	param := nn.NewParameter("w", tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend))
	opt := NewAdam([]*nn.Parameter[*cpu.CPUBackend]{param}, DefaultAdamConfig(0.001))

	bad, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	err = opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{param.Raw(): bad})
	assert.Error(t, err)
}

// TestAdam_ReducesLoss trains y = x@W toward a target and checks the loss
// drops over a few steps.
func TestAdam_ReducesLoss(t *testing.T) {
	ad := autodiff.New(cpu.New())
	ad.Tape().StartRecording()

	layer := nn.NewLinear(2, 1, true, ad)
	criterion := nn.NewMSELoss(ad)
	opt := NewAdam(layer.Parameters(), DefaultAdamConfig(0.05))

	input := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, ad)
	target := tensor.FromSlice([]float32{1, -1}, tensor.Shape{2, 1}, ad)

	ones, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	ones.AsFloat32()[0] = 1

	var first, last float32
	for step := 0; step < 30; step++ {
		loss := criterion.Forward(layer.Forward(input), target)
		if step == 0 {
			first = loss.Raw().AsFloat32()[0]
		}
		last = loss.Raw().AsFloat32()[0]

		grads := ad.Tape().Backward(ones, ad)
		require.NoError(t, opt.Step(grads))
		ad.Tape().Clear()
	}

	assert.Less(t, last, first, "loss should decrease: first=%f last=%f", first, last)
}
