package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_VisitsEveryIndexOnce(t *testing.T) {
	const n = 10_000
	counts := make([]int32, n)

	For(n, func(i int) {
		atomic.AddInt32(&counts[i], 1)
	})

	for i, c := range counts {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}

func TestFor_SmallRangeSequential(t *testing.T) {
	var sum int
	For(10, func(i int) { sum += i }) // below minChunk, runs sequentially
	assert.Equal(t, 45, sum)
}

func TestForBatch_CoversGrid(t *testing.T) {
	const batch, channels = 8, 16
	var visited [batch][channels]int32

	ForBatch(batch, channels, func(b, c int) {
		atomic.AddInt32(&visited[b][c], 1)
	})

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			assert.Equal(t, int32(1), visited[b][c], "cell (%d,%d)", b, c)
		}
	}
}
