package util

import "runtime"

const (
	minWorkers = 4
	maxWorkers = 32
)

// WorkerCount returns the number of extraction workers to start.
//
// A positive override wins. Otherwise: min(max(NumCPU*2, 4), 32). Workers
// spend part of their time blocked on file I/O, so twice the core count keeps
// the CPU busy; the cap bounds the number of simultaneously mapped files.
func WorkerCount(override int) int {
	if override > 0 {
		return override
	}

	n := runtime.NumCPU() * 2
	if n < minWorkers {
		n = minWorkers
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}
