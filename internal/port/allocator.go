// Package port implements the monitor port allocator described in
// spec.md §4.8: each runner worker gets a stable, lazily-assigned index,
// and that index maps to a monitor port so that no two concurrently armed
// runners share a port.
package port

import "sync/atomic"

// Allocator lazily hands out monotonically increasing runner indices,
// mirroring the teacher's counter-backed lazy-initialization idiom
// (spec.md §4.8, §9 "thread-local monotonically increasing ID").
type Allocator struct {
	next atomic.Int64
}

// NewAllocator creates an empty Allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NextIndex returns the next runner index, starting at 0.
func (a *Allocator) NextIndex() int {
	return int(a.next.Add(1) - 1)
}

// MonitorPort computes the monitor port for a runner with the given index,
// per spec.md §3/§4.4: port(i) = firstMonitorPort + (index mod numRunners).
// When numRunners == 1, defaultPort overrides the formula (spec.md §8
// boundary behavior).
func MonitorPort(index, numRunners, firstMonitorPort, defaultPort int) int {
	if numRunners == 1 {
		return defaultPort
	}
	return firstMonitorPort + (index % numRunners)
}
