// Package compute provides pairwise gravitational force backends.
//
// The CPU backend evaluates the direct O(N²) sum. For systems with
// 16 or more bodies the per-body outer loop is split across workers:
//
//	backend := compute.NewCPUBackend(runtime.NumCPU())
//	err := backend.Accelerations(masses, positions, acc, g, softening)
//
// Each worker owns a contiguous range of output indices and writes
// nothing else; the call returns only after every worker finished.
package compute
