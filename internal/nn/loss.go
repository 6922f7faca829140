package nn

import (
	"fmt"
	"math"

	"github.com/primer-ml/primer/internal/tensor"
)

// crossEntropyBackend is implemented by autodiff-aware backends that fuse
// softmax and negative log-likelihood into a single recorded operation.
type crossEntropyBackend interface {
	CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor
}

// CrossEntropyLoss computes mean(-log_softmax(logits)[target]) for
// multi-class classification. Logits are raw scores; targets are int32
// class indices.
type CrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

// NewCrossEntropyLoss creates a cross-entropy loss.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{backend: backend}
}

// Forward computes the scalar mean loss over the batch.
//
// With an autodiff backend the fused operation lands on the tape; other
// backends fall back to a direct log-sum-exp computation.
func (c *CrossEntropyLoss[B]) Forward(
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	if ce, ok := any(c.backend).(crossEntropyBackend); ok {
		return tensor.New[float32](ce.CrossEntropy(logits.Raw(), targets.Raw()), c.backend)
	}

	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross-entropy: logits must be [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]

	logitsData := logits.Raw().AsFloat32()
	targetsData := targets.Raw().AsInt32()

	var total float64
	for b := 0; b < batch; b++ {
		row := logitsData[b*classes : (b+1)*classes]
		target := int(targetsData[b])
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("cross-entropy: target %d out of range [0, %d)", target, classes))
		}

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxVal))
		}
		total += -(float64(row[target]-maxVal) - math.Log(sumExp))
	}

	loss := tensor.Zeros[float32](tensor.Shape{1}, c.backend)
	loss.Raw().AsFloat32()[0] = float32(total / float64(batch))
	return loss
}

// MSELoss computes mean((pred - target)²), expressed through backend ops so
// the whole computation is differentiable.
type MSELoss[B tensor.Backend] struct {
	backend B
}

// NewMSELoss creates a mean squared error loss.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{backend: backend}
}

// Forward computes the scalar mean squared error.
func (m *MSELoss[B]) Forward(pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	diff := pred.Sub(target)
	sq := diff.Mul(diff)
	sum := tensor.New[float32](m.backend.Sum(sq.Raw()), m.backend)
	return sum.MulScalar(1 / float64(pred.NumElements()))
}
