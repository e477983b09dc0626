// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import "code.hybscloud.com/atomix"

// Sequence is a cache-line-isolated monotonic counter, the unit of ordering
// for every producer and consumer in the pipeline.
//
// A Sequence starts at -1 (nothing published, nothing consumed yet). It is
// read with acquire ordering and advanced with release ordering so that any
// value a Sequence's owner wrote before advancing it is visible to whoever
// observes the new value.
type Sequence struct {
	_     pad
	value atomix.Int64
	_     pad
}

// InitialSequenceValue is the value every Sequence starts at before
// anything has been claimed, published, or consumed.
const InitialSequenceValue int64 = -1

// NewSequence returns a Sequence initialized to v.
func NewSequence(v int64) *Sequence {
	s := &Sequence{}
	s.value.StoreRelaxed(v)
	return s
}

// Get returns the current value with acquire ordering.
func (s *Sequence) Get() int64 {
	return s.value.LoadAcquire()
}

// Set stores v with release ordering. Used where exactly one writer owns
// the Sequence, such as a Consumer's own sequence advance.
func (s *Sequence) Set(v int64) {
	s.value.StoreRelease(v)
}

// SetVolatile stores v with the strongest ordering atomix exposes for a
// plain store (release). Reserved for rare fence-style updates; the hot
// path never calls this.
func (s *Sequence) SetVolatile(v int64) {
	s.value.StoreRelease(v)
}

// CompareAndSet atomically sets the value to desired if it currently equals
// expected, releasing on success and acquiring on failure.
func (s *Sequence) CompareAndSet(expected, desired int64) bool {
	return s.value.CompareAndSwapAcqRel(expected, desired)
}

// IncrementAndGet adds 1 and returns the post-increment value.
func (s *Sequence) IncrementAndGet() int64 {
	return s.value.AddAcqRel(1)
}

// AddAndGet adds n and returns the post-add value.
func (s *Sequence) AddAndGet(n int64) int64 {
	return s.value.AddAcqRel(n)
}

// SetMonotonic advances the value to v only if v is strictly greater than
// the current value; no-op otherwise. This is the only setter the
// RingBuffer's cursor uses, guaranteeing the published cursor never moves
// backwards even if, hypothetically, more than one writer raced to call it.
func (s *Sequence) SetMonotonic(v int64) {
	for {
		current := s.value.LoadAcquire()
		if v <= current {
			return
		}
		if s.value.CompareAndSwapAcqRel(current, v) {
			return
		}
	}
}

// MinSequence returns the smallest Get() value among seqs. Callers pass the
// gating or dependency set; an empty seqs returns math.MaxInt64 so it never
// wins a min() against a real sequence.
func MinSequence(seqs []*Sequence) int64 {
	minimum := int64(1<<63 - 1)
	for _, s := range seqs {
		if v := s.Get(); v < minimum {
			minimum = v
		}
	}
	return minimum
}
