// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Config configures an Engine at construction. Capacity rounds up to the
// next power of two; ClaimStrategyKind must be SingleThreaded;
// WaitStrategyKind selects BusySpin or Yielding; EntryFactory may be left
// nil for a plain-data T, in which case DefaultEntryFactory[T] is used.
type Config[T any] struct {
	Capacity      int
	ClaimStrategy ClaimStrategyKind
	WaitStrategy  WaitStrategyKind
	EntryFactory  EntryFactory[T]
}

// Engine builds and owns the component graph for one pipeline: a
// RingBuffer, a ClaimStrategy, a WaitStrategy, a single ProducerBarrier,
// and a DAG of Consumers each wrapping a ConsumerBarrier. All consumers
// must be registered with AddConsumer before Start; the Engine's component
// collections are frozen once Start has been called.
type Engine[T any] struct {
	ringBuffer   *RingBuffer[T]
	claim        ClaimStrategy
	waitStrategy WaitStrategy
	gating       []*Sequence
	consumers    []*Consumer[T]
	producer     *ProducerBarrier[T]
	wg           sync.WaitGroup
	started      bool
}

// New validates cfg and constructs an Engine. It is the only place
// configuration errors surface — capacity < 1, a multi-producer claim
// strategy, or an unrecognized wait strategy are all rejected here, and an
// Engine that fails to construct is not usable afterward.
func New[T any](cfg Config[T]) (*Engine[T], error) {
	if cfg.Capacity < 1 {
		return nil, configError("Capacity", cfg.Capacity, ErrInvalidCapacity)
	}
	if cfg.ClaimStrategy != SingleThreaded {
		return nil, configError("ClaimStrategy", cfg.ClaimStrategy, ErrMultiProducerUnsupported)
	}
	wait, err := newWaitStrategy(cfg.WaitStrategy)
	if err != nil {
		return nil, err
	}

	factory := cfg.EntryFactory
	if factory == nil {
		factory = DefaultEntryFactory[T]{}
	}

	rb := NewRingBuffer[T](cfg.Capacity, factory)
	return &Engine[T]{
		ringBuffer:   rb,
		claim:        newSingleThreadedClaimStrategy(rb.Capacity()),
		waitStrategy: wait,
	}, nil
}

// AddConsumer registers a new terminal consumer: it builds a
// ConsumerBarrier watching dependencies (or, with none, just the cursor),
// wraps it in a Consumer running handler, and appends the Consumer's own
// Sequence to the Engine's gating set so the producer never overwrites a
// slot this consumer has not yet consumed.
//
// A dependency Sequence must already exist — typically another Consumer's
// Sequence returned from an earlier AddConsumer call — which makes a
// dependency cycle structurally impossible: you cannot name a consumer
// that has not been registered yet.
//
// AddConsumer must be called before Start; calling it afterward has no
// defined effect, matching the Engine's component collections being
// frozen at Start.
func (e *Engine[T]) AddConsumer(handler BatchHandler[T], dependencies ...*Sequence) *Consumer[T] {
	state := new(atomix.Int32)
	barrier := newConsumerBarrier[T](e.ringBuffer, e.waitStrategy, dependencies, state)
	consumer := newConsumer[T](barrier, handler, state)
	e.consumers = append(e.consumers, consumer)
	e.gating = append(e.gating, consumer.Sequence())
	return consumer
}

// Producer returns the Engine's single ProducerBarrier, constructing it
// on first call against the gating set as registered at that point. Call
// it only after every consumer has been added.
func (e *Engine[T]) Producer() *ProducerBarrier[T] {
	if e.producer == nil {
		e.producer = newProducerBarrier[T](e.ringBuffer, e.claim, e.gating)
	}
	return e.producer
}

// Start launches every registered consumer's worker goroutine in
// registration order.
func (e *Engine[T]) Start() {
	e.started = true
	for _, c := range e.consumers {
		c.Start(&e.wg)
	}
}

// Stop signals every consumer to stop and blocks until all of their
// worker goroutines have exited. Stop order is not load-bearing — each
// worker polls its own running flag independently — but registration
// order is used for determinism.
func (e *Engine[T]) Stop() {
	for _, c := range e.consumers {
		c.Stop()
	}
	e.wg.Wait()
	e.ringBuffer.Close()
}

// RingBuffer exposes the underlying buffer, mainly for tests asserting
// invariants directly against the cursor and capacity.
func (e *Engine[T]) RingBuffer() *RingBuffer[T] {
	return e.ringBuffer
}
