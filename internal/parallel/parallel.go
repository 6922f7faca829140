// Package parallel provides small fork-join helpers used by CPU kernels.
package parallel

import (
	"runtime"
	"sync"
)

// minChunk is the smallest per-goroutine work unit; below this the
// goroutine overhead outweighs the win.
const minChunk = 64

// For runs f(i) for i in [0, n), splitting the range across workers when it
// is large enough to pay for the goroutines. Falls back to a plain loop for
// small n or single-CPU machines.
func For(n int, f func(i int)) {
	workers := runtime.NumCPU()
	if workers <= 1 || n < minChunk {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch runs f(b, c) over a batch x channels grid, the common iteration
// pattern of convolution and pooling kernels.
func ForBatch(batch, channels int, f func(b, c int)) {
	For(batch*channels, func(k int) {
		f(k/channels, k%channels)
	})
}
