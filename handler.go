// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import "code.hybscloud.com/atomix"

// CountingHandler is a reference BatchHandler for smoke tests and
// examples: it counts every entry delivered and remembers the sequence
// of the most recent one, the way the original demo's SimpleHandler
// tracks a running count to signal completion to the driving code.
//
// It does nothing with the entry's own payload, so it is never the
// right handler for a real pipeline stage — it exists for callers that
// just need to observe "how many entries has this consumer seen" from
// another goroutine.
type CountingHandler[T any] struct {
	count atomix.Int64
	last  atomix.Int64
}

func (h *CountingHandler[T]) OnAvailable(entry *T, sequence int64, endOfBatch bool) {
	h.count.AddAcqRel(1)
	h.last.StoreRelease(sequence)
}

func (h *CountingHandler[T]) OnCompletion() {}

// Count returns the number of entries delivered to OnAvailable so far.
func (h *CountingHandler[T]) Count() int64 {
	return h.count.LoadAcquire()
}

// LastSequence returns the sequence of the most recently delivered
// entry. Its zero value is indistinguishable from sequence 0 having
// arrived; callers that need to tell the two apart should check Count
// first.
func (h *CountingHandler[T]) LastSequence() int64 {
	return h.last.LoadAcquire()
}
