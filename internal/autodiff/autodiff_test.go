package autodiff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/backend/cpu"
	"github.com/primer-ml/primer/internal/tensor"
)

func rawFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func onesLike(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	for i := range raw.AsFloat32() {
		raw.AsFloat32()[i] = 1
	}
	return raw
}

// TestBackward_Square verifies d(x*x)/dx = 2x, exercising gradient
// accumulation when one tensor feeds both operands.
func TestBackward_Square(t *testing.T) {
	ad := New(cpu.New())
	ad.Tape().StartRecording()

	x := rawFloat32(t, []float32{3}, tensor.Shape{1})
	y := ad.Mul(x, x)
	assert.Equal(t, float32(9), y.AsFloat32()[0])

	grads := ad.Tape().Backward(onesLike(t, tensor.Shape{1}), ad)
	require.Contains(t, grads, x)
	assert.Equal(t, float32(6), grads[x].AsFloat32()[0])
}

// TestBackward_Chain verifies the chain rule through z = (x + y) * x.
func TestBackward_Chain(t *testing.T) {
	ad := New(cpu.New())
	ad.Tape().StartRecording()

	x := rawFloat32(t, []float32{2}, tensor.Shape{1})
	y := rawFloat32(t, []float32{5}, tensor.Shape{1})
	sum := ad.Add(x, y)
	z := ad.Mul(sum, x)
	assert.Equal(t, float32(14), z.AsFloat32()[0])

	grads := ad.Tape().Backward(onesLike(t, tensor.Shape{1}), ad)
	// dz/dx = (x + y) + x = 9, dz/dy = x = 2.
	assert.Equal(t, float32(9), grads[x].AsFloat32()[0])
	assert.Equal(t, float32(2), grads[y].AsFloat32()[0])
}

// TestBackward_BroadcastBias verifies that a [1,n] bias added to a [m,n]
// activation receives a summed gradient.
func TestBackward_BroadcastBias(t *testing.T) {
	ad := New(cpu.New())
	ad.Tape().StartRecording()

	x := rawFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := rawFloat32(t, []float32{10, 20, 30}, tensor.Shape{1, 3})
	_ = ad.Add(x, bias)

	grads := ad.Tape().Backward(onesLike(t, tensor.Shape{2, 3}), ad)
	require.Contains(t, grads, bias)
	assert.True(t, grads[bias].Shape().Equal(tensor.Shape{1, 3}))
	for i := 0; i < 3; i++ {
		assert.Equal(t, float32(2), grads[bias].AsFloat32()[i])
	}
}

// TestBackward_MatMul verifies dA = G@Bᵀ and dB = Aᵀ@G.
func TestBackward_MatMul(t *testing.T) {
	ad := New(cpu.New())
	ad.Tape().StartRecording()

	a := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawFloat32(t, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})
	_ = ad.MatMul(a, b)

	grads := ad.Tape().Backward(onesLike(t, tensor.Shape{2, 2}), ad)

	// dA = ones @ Bᵀ: each row is [5+6, 7+8] = [11, 15].
	wantA := []float32{11, 15, 11, 15}
	// dB = Aᵀ @ ones: rows [1+3, 1+3] and [2+4, 2+4].
	wantB := []float32{4, 4, 6, 6}
	assert.Equal(t, wantA, grads[a].AsFloat32())
	assert.Equal(t, wantB, grads[b].AsFloat32())
}

// TestBackward_ReLU verifies the gradient mask.
func TestBackward_ReLU(t *testing.T) {
	ad := New(cpu.New())
	ad.Tape().StartRecording()

	x := rawFloat32(t, []float32{-1, 0, 2}, tensor.Shape{3})
	_ = ad.ReLU(x)

	grads := ad.Tape().Backward(onesLike(t, tensor.Shape{3}), ad)
	assert.Equal(t, []float32{0, 0, 1}, grads[x].AsFloat32())
}

// TestBackward_Conv2D verifies convolution gradients on a 1x1 kernel.
func TestBackward_Conv2D(t *testing.T) {
	ad := New(cpu.New())
	ad.Tape().StartRecording()

	input := rawFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := rawFloat32(t, []float32{2}, tensor.Shape{1, 1, 1, 1})
	_ = ad.Conv2D(input, kernel, 1, 0)

	grads := ad.Tape().Backward(onesLike(t, tensor.Shape{1, 1, 2, 2}), ad)

	for i := 0; i < 4; i++ {
		assert.Equal(t, float32(2), grads[input].AsFloat32()[i])
	}
	assert.Equal(t, float32(10), grads[kernel].AsFloat32()[0])
}

// TestCrossEntropy_UniformLogits checks loss = ln(classes) and that the
// logit gradient rows sum to zero.
func TestCrossEntropy_UniformLogits(t *testing.T) {
	ad := New(cpu.New())
	ad.Tape().StartRecording()

	logits := rawFloat32(t, make([]float32, 6), tensor.Shape{2, 3})
	targets, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	targets.AsInt32()[0] = 0
	targets.AsInt32()[1] = 2

	loss := ad.CrossEntropy(logits, targets)
	assert.InDelta(t, math.Log(3), float64(loss.AsFloat32()[0]), 1e-5)

	grads := ad.Tape().Backward(onesLike(t, tensor.Shape{1}), ad)
	require.Contains(t, grads, logits)

	g := grads[logits].AsFloat32()
	for row := 0; row < 2; row++ {
		var sum float64
		for i := 0; i < 3; i++ {
			sum += float64(g[row*3+i])
		}
		assert.InDelta(t, 0, sum, 1e-6, "row %d gradient should sum to zero", row)
	}
	// The target entry is pushed down, the rest up.
	assert.Negative(t, g[0])
	assert.Positive(t, g[1])
}

// TestTape_RecordingControl checks that nothing is recorded while stopped
// and that Clear empties the tape.
func TestTape_RecordingControl(t *testing.T) {
	ad := New(cpu.New())

	x := rawFloat32(t, []float32{1}, tensor.Shape{1})
	_ = ad.Mul(x, x)
	assert.Equal(t, 0, ad.Tape().NumOperations())

	ad.Tape().StartRecording()
	_ = ad.Mul(x, x)
	assert.Equal(t, 1, ad.Tape().NumOperations())

	ad.Tape().Clear()
	assert.Equal(t, 0, ad.Tape().NumOperations())
	assert.True(t, ad.Tape().IsRecording(), "Clear must preserve recording state")
}
