package nn

import (
	"fmt"

	"github.com/primer-ml/primer/internal/tensor"
)

// Accuracy returns the fraction of rows where argmax(logits) equals the
// target class index. Logits are [batch, classes]; targets are [batch].
func Accuracy[B tensor.Backend](
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("accuracy: logits must be [batch, classes], got %v", shape))
	}

	pred := logits.Backend().Argmax(logits.Raw(), 1).AsInt32()
	actual := targets.Raw().AsInt32()
	if len(pred) != len(actual) {
		panic(fmt.Sprintf("accuracy: %d predictions for %d targets", len(pred), len(actual)))
	}

	correct := 0
	for i := range pred {
		if pred[i] == actual[i] {
			correct++
		}
	}
	return float32(correct) / float32(len(pred))
}
