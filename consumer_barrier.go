// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import "code.hybscloud.com/atomix"

// ConsumerBarrier is the consumer-facing façade: resolve the highest
// sequence currently safe to read, then borrow slots up to it. It holds
// non-owning references to the RingBuffer's cursor and to the Sequences
// of whatever upstream consumers this one depends on; those references
// are stable for the lifetime of the Engine that built them.
type ConsumerBarrier[T any] struct {
	ringBuffer   *RingBuffer[T]
	waitStrategy WaitStrategy
	cursor       *Sequence
	dependents   []*Sequence
	running      *atomix.Int32
}

func newConsumerBarrier[T any](rb *RingBuffer[T], wait WaitStrategy, dependents []*Sequence, running *atomix.Int32) *ConsumerBarrier[T] {
	return &ConsumerBarrier[T]{
		ringBuffer:   rb,
		waitStrategy: wait,
		cursor:       rb.Cursor(),
		dependents:   dependents,
		running:      running,
	}
}

// WaitFor blocks until a sequence >= target is available, returning the
// highest such sequence. The result is bounded by both the buffer's
// cursor and the minimum of this barrier's dependency sequences.
//
// If the owning Consumer is told to stop while this call is parked
// waiting, WaitFor returns early with whatever is currently available,
// which may be below target — the caller distinguishes this from a
// genuine wakeup by comparing the result with target before processing.
func (b *ConsumerBarrier[T]) WaitFor(target int64) int64 {
	if a, ok := b.waitStrategy.(alertable); ok {
		return a.waitForOrAlert(target, b.cursor, b.dependents, b.running)
	}
	return b.waitStrategy.WaitFor(target, b.cursor, b.dependents)
}

// Entry borrows the slot at sequence. The caller must only read sequences
// at or below the most recent WaitFor result.
func (b *ConsumerBarrier[T]) Entry(sequence int64) *T {
	return b.ringBuffer.Slot(sequence)
}
