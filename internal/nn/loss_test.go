package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/autodiff"
	"github.com/primer-ml/primer/internal/backend/cpu"
	"github.com/primer-ml/primer/internal/tensor"
)

// TestCrossEntropyLoss_UniformLogits checks loss = ln(classes) for zero logits.
func TestCrossEntropyLoss_UniformLogits(t *testing.T) {
	backend := cpu.New()
	criterion := NewCrossEntropyLoss(backend)

	logits := tensor.Zeros[float32](tensor.Shape{4, 10}, backend)
	targets := tensor.Zeros[int32](tensor.Shape{4}, backend)

	loss := criterion.Forward(logits, targets)
	assert.InDelta(t, math.Log(10), float64(loss.Raw().AsFloat32()[0]), 1e-5)
}

// TestCrossEntropyLoss_ConfidentCorrect checks near-zero loss for a
// confident correct prediction.
func TestCrossEntropyLoss_ConfidentCorrect(t *testing.T) {
	backend := cpu.New()
	criterion := NewCrossEntropyLoss(backend)

	logits := tensor.FromSlice([]float32{20, 0, 0}, tensor.Shape{1, 3}, backend)
	targets := tensor.Zeros[int32](tensor.Shape{1}, backend)

	loss := criterion.Forward(logits, targets)
	assert.Less(t, loss.Raw().AsFloat32()[0], float32(1e-6))
}

// TestCrossEntropyLoss_AutodiffMatchesFallback checks that the fused tape
// operation and the direct computation agree.
func TestCrossEntropyLoss_AutodiffMatchesFallback(t *testing.T) {
	plain := cpu.New()
	ad := autodiff.New(cpu.New())
	ad.Tape().StartRecording()

	data := []float32{1.5, -0.5, 0.25, -2, 3, 0.5}

	plainLoss := NewCrossEntropyLoss(plain).Forward(
		tensor.FromSlice(data, tensor.Shape{2, 3}, plain),
		tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, plain),
	)
	adLoss := NewCrossEntropyLoss(ad).Forward(
		tensor.FromSlice(data, tensor.Shape{2, 3}, ad),
		tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, ad),
	)

	assert.InDelta(t,
		float64(plainLoss.Raw().AsFloat32()[0]),
		float64(adLoss.Raw().AsFloat32()[0]), 1e-6)
	assert.Greater(t, ad.Tape().NumOperations(), 0, "fused op should land on the tape")
}

// TestMSELoss checks the mean squared error value and its gradient.
func TestMSELoss(t *testing.T) {
	ad := autodiff.New(cpu.New())
	ad.Tape().StartRecording()

	pred := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, ad)
	target := tensor.FromSlice([]float32{1, 2, 3, 6}, tensor.Shape{4}, ad)

	loss := NewMSELoss(ad).Forward(pred, target)
	// mean([0,0,0,4]) = 1
	assert.InDelta(t, 1.0, float64(loss.Raw().AsFloat32()[0]), 1e-6)

	ones, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	ones.AsFloat32()[0] = 1

	grads := ad.Tape().Backward(ones, ad)
	require.Contains(t, grads, pred.Raw())
	// d/dpred mean((p-t)²) = 2(p-t)/n; last element: 2*(4-6)/4 = -1
	g := grads[pred.Raw()].AsFloat32()
	assert.InDeltaSlice(t, []float32{0, 0, 0, -1}, g, 1e-6)
}

// TestAccuracy checks the argmax-vs-target fraction.
func TestAccuracy(t *testing.T) {
	backend := cpu.New()

	logits := tensor.FromSlice([]float32{
		0.9, 0.1, 0.0, // pred 0
		0.1, 0.8, 0.1, // pred 1
		0.2, 0.3, 0.5, // pred 2
		0.7, 0.2, 0.1, // pred 0
	}, tensor.Shape{4, 3}, backend)
	targets := tensor.FromSlice([]int32{0, 1, 2, 2}, tensor.Shape{4}, backend)

	acc := Accuracy(logits, targets)
	assert.InDelta(t, 0.75, float64(acc), 1e-6)
}
