package ops

import (
	"fmt"
	"math"

	"github.com/primer-ml/primer/internal/tensor"
)

// CrossEntropyOp records loss = mean(-log_softmax(logits)[target]).
//
// The fused backward is the classic softmax-minus-one-hot form:
//
//	dL/dlogits[b,i] = (softmax(logits[b])[i] - 1{i == target[b]}) / batch
//
// scaled by the upstream gradient (normally 1 for a scalar loss).
type CrossEntropyOp struct {
	logits  *tensor.RawTensor // [batch, classes], float32
	targets *tensor.RawTensor // [batch], int32 class indices
	output  *tensor.RawTensor // [1] scalar loss
}

// NewCrossEntropyOp creates a cross-entropy loss operation.
func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, output: output}
}

// Inputs returns only the logits; class indices carry no gradient.
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits}
}

func (op *CrossEntropyOp) Output() *tensor.RawTensor { return op.output }

func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross-entropy backward: logits must be [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, tensor.Float32, op.logits.Device())
	if err != nil {
		panic(fmt.Sprintf("cross-entropy backward: %v", err))
	}

	logits := op.logits.AsFloat32()
	targets := op.targets.AsInt32()
	dst := grad.AsFloat32()
	upstream := outputGrad.AsFloat32()[0]
	scale := upstream / float32(batch)

	for b := 0; b < batch; b++ {
		row := logits[b*classes : (b+1)*classes]
		out := dst[b*classes : (b+1)*classes]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum float32
		for i, v := range row {
			e := float32(math.Exp(float64(v - maxVal)))
			out[i] = e
			sum += e
		}
		for i := range out {
			out[i] = out[i] / sum * scale
		}
		out[targets[b]] -= scale
	}

	return []*tensor.RawTensor{grad}
}
