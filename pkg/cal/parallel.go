package cal

import (
	"runtime"
	"sync"
)

// forEachFrequency runs fn(k) for every frequency index 0..n-1 on a bounded
// worker pool. The solves are independent across frequency points, so the
// only ordering requirement is on error reporting: the error for the lowest
// failing index is returned, regardless of completion order. Workers write
// results into per-index slots owned by the caller, so no locking is needed
// around the output.
func forEachFrequency(n int, fn func(k int) error) error {
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for k := 0; k < n; k++ {
			if err := fn(k); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, n)
	indices := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for k := range indices {
				errs[k] = fn(k)
			}
		}()
	}
	for k := 0; k < n; k++ {
		indices <- k
	}
	close(indices)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
