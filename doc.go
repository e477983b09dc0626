// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipeline provides a single-producer, multi-consumer in-memory
// event pipeline built around a pre-allocated, power-of-two circular
// buffer.
//
// One producer claims sequences from a fixed-capacity RingBuffer, writes
// into the slot each sequence names, and publishes by advancing a shared
// cursor. Any number of consumers, wired as a DAG through dependency
// Sequences, observe that cursor and their upstream dependencies through a
// WaitStrategy, process a batch of newly available entries, and advance
// their own Sequence — which in turn gates how far the producer is allowed
// to run ahead.
//
// # Quick Start
//
//	type Event struct {
//	    Value int64
//	}
//
//	engine, err := pipeline.New(pipeline.Config[Event]{
//	    Capacity:     1024,
//	    WaitStrategy: pipeline.Yielding,
//	})
//	if err != nil {
//	    // invalid capacity or unsupported strategy
//	}
//
//	engine.AddConsumer(myHandler)
//	engine.Start()
//	defer engine.Stop()
//
//	producer := engine.Producer()
//	seq := producer.NextEntry(1)
//	entry := producer.Entry(seq)
//	entry.Value = 42
//	producer.Commit(seq)
//
// # Building a Pipeline DAG
//
// A consumer can depend on one or more upstream consumers' Sequences,
// each obtained from the Sequence method of the Consumer that the
// upstream's AddConsumer call returned:
//
//	stage1 := engine.AddConsumer(stage1Handler)
//	stage2 := engine.AddConsumer(stage2Handler, stage1.Sequence())
//	_ = engine.AddConsumer(stage3Handler, stage2.Sequence())
//
// stage2 never reads past what stage1 has finished; stage3 never reads
// past what stage2 has finished. Two consumers that both depend only on
// the cursor run independently and may converge at different rates.
//
// # Backpressure
//
// The producer's NextEntry blocks (cooperatively, via an adaptive
// backoff — never a goroutine park) until there is room for the claim
// without overwriting a slot some consumer has not yet consumed. A stuck
// consumer halts its own Sequence, which eventually halts the producer.
// This is the pipeline's only flow control; there is no separate queue
// depth limit or timeout.
//
// # Entry Lifecycle
//
// RingBuffer slots are constructed once and reused for the life of the
// Engine. Supply an EntryFactory when a payload needs per-write cleanup
// (for example, clearing a slice before the next producer write); plain
// data payloads can omit EntryFactory entirely and get
// DefaultEntryFactory's no-op Construct/Destroy/Reset.
//
// # Wait Strategies
//
//	pipeline.BusySpin  — lowest latency, pins a core per consumer
//	pipeline.Yielding  — spins up to 100 iterations, then yields
//
// Neither strategy sleeps or parks; a consumer blocked on an upstream that
// never advances spins or yields forever. Callers needing a deadline must
// watch the relevant Sequence externally.
//
// # What This Package Does Not Do
//
// No multi-producer claim strategy (ordering a concurrent claim correctly
// needs a per-slot availability map this core does not carry), no dynamic
// resize, no persistence, no cross-process transport, and no consumer can
// join after Start. These are deliberate; see the package's design notes
// for the reasoning.
package pipeline
