// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline_test

import (
	"testing"
	"time"

	"code.hybscloud.com/atomix"

	"github.com/kestrelsoft/pipeline"
)

// TestThroughputSmoke is scenario S1: capacity 1024, one consumer, 100,000
// sequential publishes. The producer assigns sequences in lockstep with
// the loop counter, so the handler's last-seen sequence doubles as a
// check on delivery order.
func TestThroughputSmoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 100,000-event smoke test in -short mode")
	}
	const iterations = 100_000

	engine, err := pipeline.New(pipeline.Config[event]{
		Capacity:     1024,
		WaitStrategy: pipeline.Yielding,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	handler := &pipeline.CountingHandler[event]{}
	engine.AddConsumer(handler)
	engine.Start()

	producer := engine.Producer()
	for i := int64(0); i < iterations; i++ {
		seq := producer.NextEntry(1)
		entry := producer.Entry(seq)
		entry.Value = i
		producer.Commit(seq)
	}

	deadline := time.Now().Add(10 * time.Second)
	for handler.Count() < iterations && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	engine.Stop()

	if got := handler.Count(); got != iterations {
		t.Fatalf("final count: got %d, want %d", got, iterations)
	}
	if got := handler.LastSequence(); got != iterations-1 {
		t.Fatalf("last observed sequence: got %d, want %d", got, iterations-1)
	}
	if got := engine.RingBuffer().Cursor().Get(); got != iterations-1 {
		t.Fatalf("cursor: got %d, want %d", got, iterations-1)
	}
}

// stageEvent is scenario S2's shared slot: three consumers write into
// three different fields of the same in-place slot, in sequence.
type stageEvent struct {
	Data   int64
	Stage1 int64
	Stage2 int64
	Stage3 int64
}

type stage1Handler struct{}

func (stage1Handler) OnAvailable(e *stageEvent, sequence int64, endOfBatch bool) {
	e.Stage1 = e.Data * 2
}
func (stage1Handler) OnCompletion() {}

type stage2Handler struct{}

func (stage2Handler) OnAvailable(e *stageEvent, sequence int64, endOfBatch bool) {
	e.Stage2 = e.Stage1 + 10
}
func (stage2Handler) OnCompletion() {}

type stage3Result struct {
	sequence int64
	value    int64
}

type stage3Handler struct {
	results chan stage3Result
}

func (h stage3Handler) OnAvailable(e *stageEvent, sequence int64, endOfBatch bool) {
	e.Stage3 = e.Stage2 * 3
	h.results <- stage3Result{sequence: sequence, value: e.Stage3}
}
func (stage3Handler) OnCompletion() {}

// TestThreeStagePipeline is scenario S2: A -> B -> C, each downstream
// consumer depending on the one before it.
func TestThreeStagePipeline(t *testing.T) {
	const n = 1000

	engine, err := pipeline.New(pipeline.Config[stageEvent]{
		Capacity:     64,
		WaitStrategy: pipeline.Yielding,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := make(chan stage3Result, n)
	a := engine.AddConsumer(stage1Handler{})
	b := engine.AddConsumer(stage2Handler{}, a.Sequence())
	engine.AddConsumer(stage3Handler{results: results}, b.Sequence())
	engine.Start()
	defer engine.Stop()

	producer := engine.Producer()
	for i := int64(0); i < n; i++ {
		seq := producer.NextEntry(1)
		entry := producer.Entry(seq)
		entry.Data = i
		producer.Commit(seq)
	}

	seen := make(map[int64]int64, n)
	deadline := time.After(10 * time.Second)
	for len(seen) < n {
		select {
		case r := <-results:
			seen[r.sequence] = r.value
		case <-deadline:
			t.Fatalf("timed out waiting for stage3 results, got %d/%d", len(seen), n)
		}
	}

	for i := int64(0); i < n; i++ {
		want := (i*2 + 10) * 3
		if got := seen[i]; got != want {
			t.Fatalf("sequence %d: got stage3=%d, want %d", i, got, want)
		}
	}
}

// slowHandler implements scenario S3: sleeps per entry, forcing the
// producer into backpressure.
type slowHandler struct {
	consumed atomix.Int64
}

func (h *slowHandler) OnAvailable(entry *event, sequence int64, endOfBatch bool) {
	time.Sleep(time.Millisecond)
	h.consumed.StoreRelease(sequence)
}
func (h *slowHandler) OnCompletion() {}

// TestBackpressure is scenario S3: the gap between the producer's last
// assigned sequence and the slowest consumer's sequence must never exceed
// capacity.
func TestBackpressure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1000x1ms backpressure test in -short mode")
	}
	const capacity = 16
	const iterations = 1000

	engine, err := pipeline.New(pipeline.Config[event]{
		Capacity:     capacity,
		WaitStrategy: pipeline.Yielding,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	handler := &slowHandler{}
	consumer := engine.AddConsumer(handler)
	engine.Start()
	defer engine.Stop()

	producer := engine.Producer()
	violations := 0
	start := time.Now()
	for i := int64(0); i < iterations; i++ {
		seq := producer.NextEntry(1)
		entry := producer.Entry(seq)
		entry.Value = i
		producer.Commit(seq)

		if gap := seq - consumer.Sequence().Get(); gap > capacity {
			violations++
		}
	}
	deadline := time.Now().Add(10 * time.Second)
	for consumer.Sequence().Get() < iterations-1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	elapsed := time.Since(start)

	if violations != 0 {
		t.Fatalf("observed %d claims where producer ran more than capacity ahead of the consumer", violations)
	}
	if elapsed < time.Second {
		t.Fatalf("elapsed %v, want >= 1s given a 1ms sleep per of %d entries", elapsed, iterations)
	}
}

// batchRecord is scenario S4's observation: which sequences saw
// endOfBatch true.
type batchRecord struct {
	sequence   int64
	endOfBatch bool
}

type batchHandler struct {
	records chan batchRecord
}

func (h batchHandler) OnAvailable(entry *event, sequence int64, endOfBatch bool) {
	h.records <- batchRecord{sequence: sequence, endOfBatch: endOfBatch}
}
func (batchHandler) OnCompletion() {}

// TestBatchEndOfBatchFlag is scenario S4: two separate commit rounds
// produce exactly two entries with endOfBatch true, at the last sequence
// of each round.
func TestBatchEndOfBatchFlag(t *testing.T) {
	engine, err := pipeline.New(pipeline.Config[event]{
		Capacity:     64,
		WaitStrategy: pipeline.Yielding,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	records := make(chan batchRecord, 32)
	engine.AddConsumer(batchHandler{records: records})
	engine.Start()
	defer engine.Stop()

	producer := engine.Producer()

	// commit claims n sequences at once and publishes them together, so
	// each round reaches the consumer as a single batch.
	commit := func(n int) {
		hi := producer.NextEntry(int64(n))
		lo := hi - int64(n) + 1
		for seq := lo; seq <= hi; seq++ {
			entry := producer.Entry(seq)
			entry.Value = seq
		}
		producer.CommitRange(lo, hi)
	}

	receive := func(n int) []batchRecord {
		out := make([]batchRecord, 0, n)
		for i := 0; i < n; i++ {
			select {
			case r := <-records:
				out = append(out, r)
			case <-time.After(5 * time.Second):
				t.Fatalf("timed out waiting for %d records, got %d", n, len(out))
			}
		}
		return out
	}

	commit(10)
	firstRound := receive(10)
	commit(5)
	secondRound := receive(5)

	endOfBatchSeqs := map[int64]bool{}
	for _, r := range append(firstRound, secondRound...) {
		if r.endOfBatch {
			endOfBatchSeqs[r.sequence] = true
		}
	}

	if len(endOfBatchSeqs) != 2 {
		t.Fatalf("endOfBatch count: got %d, want 2 (records: %+v)", len(endOfBatchSeqs), append(firstRound, secondRound...))
	}
	if !endOfBatchSeqs[9] {
		t.Errorf("expected endOfBatch at sequence 9, got %v", endOfBatchSeqs)
	}
	if !endOfBatchSeqs[14] {
		t.Errorf("expected endOfBatch at sequence 14, got %v", endOfBatchSeqs)
	}
}

// TestFanOutIndependence is scenario S6: two consumers depending only on
// the cursor both see every entry and converge at quiescence, though
// their progress may diverge mid-run.
func TestFanOutIndependence(t *testing.T) {
	const n = 1000

	engine, err := pipeline.New(pipeline.Config[event]{
		Capacity:     128,
		WaitStrategy: pipeline.Yielding,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := engine.AddConsumer(&pipeline.CountingHandler[event]{})
	y := engine.AddConsumer(&pipeline.CountingHandler[event]{})
	engine.Start()
	defer engine.Stop()

	producer := engine.Producer()
	for i := int64(0); i < n; i++ {
		seq := producer.NextEntry(1)
		entry := producer.Entry(seq)
		entry.Value = i
		producer.Commit(seq)
	}

	deadline := time.Now().Add(10 * time.Second)
	for (x.Sequence().Get() < n-1 || y.Sequence().Get() < n-1) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if got := x.Sequence().Get(); got != n-1 {
		t.Fatalf("consumer X final sequence: got %d, want %d", got, n-1)
	}
	if got := y.Sequence().Get(); got != n-1 {
		t.Fatalf("consumer Y final sequence: got %d, want %d", got, n-1)
	}
}
