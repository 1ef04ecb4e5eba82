package utils

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// MultiThread calls f for every i in [start, end), spread over runtime.NumCPU() * threadsPerCPU
// goroutines. Each goroutine claims opsPerThread consecutive values at a time. MultiThread returns
// once every call has finished.
//
// Operators use it for their per-sample and per-filter loops; f must only write to memory that no
// other i touches.
func MultiThread(start, end int, f func(int), opsPerThread, threadsPerCPU int) {
	if end <= start {
		return
	}
	if opsPerThread < 1 {
		opsPerThread = 1
	}
	if threadsPerCPU < 1 {
		threadsPerCPU = 1
	}

	chunks := (end - start + opsPerThread - 1) / opsPerThread
	workers := runtime.NumCPU() * threadsPerCPU
	if workers > chunks {
		workers = chunks
	}

	var next int64 = int64(start)
	claim := func() (int, int, bool) {
		lo := int(atomic.AddInt64(&next, int64(opsPerThread))) - opsPerThread
		if lo >= end {
			return 0, 0, false
		}
		hi := lo + opsPerThread
		if hi > end {
			hi = end
		}
		return lo, hi, true
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for lo, hi, ok := claim(); ok; lo, hi, ok = claim() {
				for i := lo; i < hi; i++ {
					f(i)
				}
			}
		}()
	}
	wg.Wait()
}
