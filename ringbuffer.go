// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

// EntryFactory controls the lifecycle of a RingBuffer's slot storage.
// Construct runs once per slot at buffer creation, Destroy once per slot at
// buffer teardown, and Reset once per slot before every producer write that
// reuses it.
//
// Slot storage is never reallocated: the same T value is overwritten by
// successive producers for the lifetime of the RingBuffer. A payload that
// owns external resources (file handles, pooled buffers) must release them
// in Reset or Destroy; a plain-data payload can leave Reset as a no-op.
type EntryFactory[T any] interface {
	Construct(slot *T)
	Destroy(slot *T)
	Reset(slot *T)
}

// DefaultEntryFactory is the zero-overhead EntryFactory for plain-data
// payloads: Construct leaves the zero value in place, Destroy does
// nothing, and Reset does nothing. Most producers that write every field
// of the slot on every claim never need anything else.
type DefaultEntryFactory[T any] struct{}

func (DefaultEntryFactory[T]) Construct(*T) {}
func (DefaultEntryFactory[T]) Destroy(*T)   {}
func (DefaultEntryFactory[T]) Reset(*T)     {}

// RingBuffer owns a fixed, pre-constructed array of slots and the cursor
// Sequence that publishes them. Capacity is always a power of two, rounded
// up from the requested size.
//
// Slot for sequence s lives at index s & mask — wraparound is implicit in
// the mask, never checked. Callers on the producer path use Slot between
// Claim and Publish; callers on the consumer path use Slot only after
// observing sequence <= Cursor().Get() with acquire ordering.
type RingBuffer[T any] struct {
	cursor   *Sequence
	entries  []T
	factory  EntryFactory[T]
	mask     int64
	capacity int64
}

// NewRingBuffer constructs a RingBuffer of the requested size rounded up
// to the next power of two, invoking factory.Construct on every slot
// exactly once.
func NewRingBuffer[T any](size int, factory EntryFactory[T]) *RingBuffer[T] {
	n := roundToPow2(size)
	rb := &RingBuffer[T]{
		cursor:   NewSequence(InitialSequenceValue),
		entries:  make([]T, n),
		factory:  factory,
		mask:     int64(n - 1),
		capacity: int64(n),
	}
	for i := range rb.entries {
		rb.factory.Construct(&rb.entries[i])
	}
	return rb
}

// Close invokes factory.Destroy on every slot exactly once. Call it only
// after every producer and consumer referencing the buffer has stopped.
func (rb *RingBuffer[T]) Close() {
	for i := range rb.entries {
		rb.factory.Destroy(&rb.entries[i])
	}
}

// Capacity returns the rounded buffer size.
func (rb *RingBuffer[T]) Capacity() int64 {
	return rb.capacity
}

// Slot returns a pointer to the slot storing sequence. There is no
// synchronization here; the caller is responsible for having already
// established, via Sequence acquire/release, that it is safe to read or
// write this slot.
func (rb *RingBuffer[T]) Slot(sequence int64) *T {
	return &rb.entries[sequence&rb.mask]
}

// PrepareForWrite invokes factory.Reset on the slot for sequence, giving
// the factory a chance to clear fields before the producer overwrites it.
func (rb *RingBuffer[T]) PrepareForWrite(sequence int64) {
	rb.factory.Reset(rb.Slot(sequence))
}

// Publish advances the cursor to sequence via SetMonotonic. After this
// returns, the slot contents at sequence are visible to any thread that
// subsequently reads Cursor().Get() with acquire ordering.
func (rb *RingBuffer[T]) Publish(sequence int64) {
	rb.cursor.SetMonotonic(sequence)
}

// PublishRange advances the cursor to hi. The low bound is accepted to
// describe the range of sequences the producer considers committed in
// bulk; publication is always equivalent to publishing hi alone.
func (rb *RingBuffer[T]) PublishRange(lo, hi int64) {
	rb.cursor.SetMonotonic(hi)
}

// Cursor exposes the published-sequence Sequence for wait strategies and
// consumer barriers to observe.
func (rb *RingBuffer[T]) Cursor() *Sequence {
	return rb.cursor
}
