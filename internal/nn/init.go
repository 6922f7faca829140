package nn

import (
	"math"
	"math/rand"

	"github.com/primer-ml/primer/internal/tensor"
)

// xavierUniform fills a float32 tensor with values drawn uniformly from
// [-limit, limit], limit = sqrt(6 / (fanIn + fanOut)). Keeps activation
// variance roughly constant across layers (Glorot & Bengio, 2010).
func xavierUniform(raw *tensor.RawTensor, fanIn, fanOut int) {
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	data := raw.AsFloat32()
	for i := range data {
		data[i] = (rand.Float32()*2 - 1) * limit
	}
}
