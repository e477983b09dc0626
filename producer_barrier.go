// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import "code.hybscloud.com/iox"

// ProducerBarrier is the producer-facing façade: claim a sequence, write
// the slot it names, commit it. Exactly one goroutine may call NextEntry
// and Commit — the claim strategy backing it keeps no cross-goroutine
// state beyond the Sequences it reads, so a second producer would race
// the first's nextValue without detection.
type ProducerBarrier[T any] struct {
	ringBuffer *RingBuffer[T]
	claim      ClaimStrategy
	gating     []*Sequence
}

func newProducerBarrier[T any](rb *RingBuffer[T], claim ClaimStrategy, gating []*Sequence) *ProducerBarrier[T] {
	return &ProducerBarrier[T]{ringBuffer: rb, claim: claim, gating: gating}
}

// NextEntry blocks, cooperatively yielding via an adaptive backoff, until
// n more sequences can be claimed without overwriting a slot the slowest
// gating consumer has not yet consumed, then claims and returns the
// highest of those n sequences. Because there is only one producer, the
// capacity check and the claim happen back to back on the same goroutine,
// so nothing can erode the invariant between the two calls.
func (p *ProducerBarrier[T]) NextEntry(n int64) int64 {
	backoff := iox.Backoff{}
	for !p.claim.HasAvailableCapacity(n, p.gating) {
		backoff.Wait()
	}
	return p.claim.Next(n)
}

// Entry prepares the slot at sequence for a fresh write and returns it.
// The caller writes fields directly into the returned pointer.
func (p *ProducerBarrier[T]) Entry(sequence int64) *T {
	p.ringBuffer.PrepareForWrite(sequence)
	return p.ringBuffer.Slot(sequence)
}

// Commit publishes sequence, making the entry observable to every
// consumer barrier watching the cursor.
func (p *ProducerBarrier[T]) Commit(sequence int64) {
	p.ringBuffer.Publish(sequence)
}

// CommitRange publishes the batch [lo, hi] at once; equivalent to
// Commit(hi). The caller must have claimed [lo, hi] contiguously and
// written every slot in it before calling this.
func (p *ProducerBarrier[T]) CommitRange(lo, hi int64) {
	p.ringBuffer.PublishRange(lo, hi)
}
