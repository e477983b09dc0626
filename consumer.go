// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// BatchHandler processes entries delivered by a Consumer, on the
// Consumer's dedicated goroutine. OnAvailable is called once per entry in
// ascending sequence order; endOfBatch is true only on the last entry of
// the current wait round, letting a handler amortize flushes across a
// batch instead of doing it on every entry.
//
// If OnAvailable panics, the Consumer treats it as a HandlerFault: the run
// loop terminates, OnCompletion is invoked exactly once, and the
// Consumer's own Sequence stops advancing past the last entry it finished
// — which eventually stalls the producer via backpressure. There is no
// automatic restart.
type BatchHandler[T any] interface {
	OnAvailable(entry *T, sequence int64, endOfBatch bool)
	OnCompletion()
}

// consumerState is the Consumer worker's state machine: Idle -> Running ->
// Stopping -> Idle.
type consumerState int32

const (
	consumerIdle consumerState = iota
	consumerRunning
	consumerStopping
)

// Consumer pairs a ConsumerBarrier with a BatchHandler on a dedicated
// goroutine, publishing its own progress through sequence so that
// downstream consumers and the producer's gating set can observe it.
type Consumer[T any] struct {
	barrier  *ConsumerBarrier[T]
	handler  BatchHandler[T]
	sequence *Sequence
	state    *atomix.Int32
	done     chan struct{}
}

func newConsumer[T any](barrier *ConsumerBarrier[T], handler BatchHandler[T], state *atomix.Int32) *Consumer[T] {
	return &Consumer[T]{
		barrier:  barrier,
		handler:  handler,
		sequence: NewSequence(InitialSequenceValue),
		state:    state,
		done:     make(chan struct{}),
	}
}

// Sequence returns this Consumer's own progress Sequence — the handle the
// Engine registers as a gating sequence, and that downstream consumers
// name as a dependency.
func (c *Consumer[T]) Sequence() *Sequence {
	return c.sequence
}

// Start transitions Idle -> Running and launches the worker goroutine.
// Start must not be called more than once.
func (c *Consumer[T]) Start(wg *sync.WaitGroup) {
	c.state.StoreRelease(int32(consumerRunning))
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.run()
	}()
}

// Stop transitions Running -> Stopping and blocks until the worker
// goroutine has observed the transition, finished any in-flight batch,
// invoked OnCompletion, and exited. Cancellation is cooperative: a
// consumer may finish delivering one more batch before it notices.
func (c *Consumer[T]) Stop() {
	c.state.StoreRelease(int32(consumerStopping))
	<-c.done
}

func (c *Consumer[T]) isRunning() bool {
	return consumerState(c.state.LoadAcquire()) == consumerRunning
}

func (c *Consumer[T]) run() {
	defer close(c.done)
	defer c.handler.OnCompletion()
	defer func() {
		// A HandlerFault: OnAvailable panicked mid-batch. The sequence
		// was not advanced past the last successfully handled entry, so
		// recovering here and returning is enough to stop this consumer
		// without corrupting the shared cursor or gating set.
		recover()
	}()

	nextSequence := c.sequence.Get() + 1
	for c.isRunning() {
		available := c.barrier.WaitFor(nextSequence)
		if available < nextSequence {
			// WaitFor returned early because Stop was called while this
			// consumer was parked waiting for more input than ever
			// arrived. isRunning() catches it at the top of the loop.
			continue
		}

		for s := nextSequence; s <= available; s++ {
			entry := c.barrier.Entry(s)
			c.handler.OnAvailable(entry, s, s == available)
		}

		c.sequence.Set(available)
		nextSequence = available + 1
	}
	c.state.StoreRelease(int32(consumerIdle))
}
