// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

// ClaimStrategyKind selects a ClaimStrategy implementation at Engine
// construction. Only SingleThreaded is implemented; requesting
// MultiThreaded is a ConfigurationError — ordering a multi-producer claim
// correctly needs a per-slot "available" map this core does not carry.
type ClaimStrategyKind int

const (
	// SingleThreaded is the only supported claim strategy: exactly one
	// producer goroutine calls NextEntry/Commit on the resulting
	// ProducerBarrier.
	SingleThreaded ClaimStrategyKind = iota
	// MultiThreaded is accepted as a configuration value only to produce
	// a clear ErrMultiProducerUnsupported at New; it has no implementation.
	MultiThreaded
)

// ClaimStrategy assigns producer sequences and answers capacity queries
// against a set of gating sequences (the slowest consumer's progress).
type ClaimStrategy interface {
	// Next adds n to the last-assigned sequence and returns the new
	// value. The caller must already hold capacity for n more entries —
	// in practice ProducerBarrier.NextEntry calls HasAvailableCapacity
	// immediately before calling Next.
	Next(n int64) int64
	// HasAvailableCapacity reports whether n more sequences can be
	// claimed without overwriting a slot no gating sequence has yet
	// consumed.
	HasAvailableCapacity(n int64, gating []*Sequence) bool
}

// singleThreadedClaimStrategy is the only ClaimStrategy this package
// implements, mirroring SingleThreadedClaimStrategy from the original
// disruptor::ClaimStrategy hierarchy. It caches the last-observed gating
// minimum so the fast path — a producer comfortably ahead of its slowest
// consumer — costs one comparison instead of a scan over every gating
// sequence.
type singleThreadedClaimStrategy struct {
	capacity        int64
	nextValue       int64
	cachedGatingMin int64
}

func newSingleThreadedClaimStrategy(capacity int64) *singleThreadedClaimStrategy {
	return &singleThreadedClaimStrategy{
		capacity:        capacity,
		nextValue:       InitialSequenceValue,
		cachedGatingMin: InitialSequenceValue,
	}
}

func (c *singleThreadedClaimStrategy) Next(n int64) int64 {
	c.nextValue += n
	return c.nextValue
}

func (c *singleThreadedClaimStrategy) HasAvailableCapacity(n int64, gating []*Sequence) bool {
	wrapPoint := c.nextValue + n - c.capacity
	if wrapPoint <= c.cachedGatingMin {
		return true
	}
	c.cachedGatingMin = MinSequence(gating)
	return wrapPoint <= c.cachedGatingMin
}

// current returns the last sequence assigned.
func (c *singleThreadedClaimStrategy) current() int64 {
	return c.nextValue
}
