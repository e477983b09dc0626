// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"runtime"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// WaitStrategyKind selects a WaitStrategy implementation at Engine
// construction.
type WaitStrategyKind int

const (
	// BusySpin never yields the CPU; lowest latency, highest CPU usage.
	BusySpin WaitStrategyKind = iota
	// Yielding spins a bounded number of iterations before yielding the
	// scheduler, repeating until a target sequence becomes available.
	Yielding
)

// WaitStrategy blocks a consumer until a target sequence has become
// available, where "available" means published on the cursor and caught
// up to by every dependency the consumer declared. Implementations never
// sleep, never park, never allocate — the core has no blocking wait.
type WaitStrategy interface {
	// WaitFor returns the highest sequence h >= target such that
	// h <= cursor.Get() and h <= MinSequence(dependents). The returned
	// value may exceed target, which is what lets a Consumer deliver a
	// batch larger than one entry per wakeup.
	WaitFor(target int64, cursor *Sequence, dependents []*Sequence) int64
	// SignalAllWhenBlocking is a no-op hook retained for a future
	// blocking strategy; spin-based strategies never block, so neither
	// implementation here does anything with it.
	SignalAllWhenBlocking()
}

// alertable is implemented by every WaitStrategy in this package in
// addition to WaitStrategy itself. It is not part of the public
// WaitStrategy contract — WaitFor's documented behavior (block until
// target is available) is unchanged — but it gives a ConsumerBarrier a
// way to unstick a consumer that is parked waiting for a sequence that
// will never arrive because its owning Consumer was told to stop. Real
// LMAX Disruptor implementations call this an alert; the simplified
// waitFor in the original source this package is modeled on drops it,
// which makes Stop() able to hang forever against an idle consumer.
// waitForOrAlert returns early, below target, once running no longer
// reports consumerRunning.
type alertable interface {
	waitForOrAlert(target int64, cursor *Sequence, dependents []*Sequence, running *atomix.Int32) int64
}

func minAvailable(cursor *Sequence, dependents []*Sequence) int64 {
	available := cursor.Get()
	for _, d := range dependents {
		if v := d.Get(); v < available {
			available = v
		}
	}
	return available
}

// BusySpinWaitStrategy spins tightly on the gating minimum, re-reading it
// every iteration. The spin.Wait call is a compiler hint only — the
// acquire loads on cursor and each dependent already provide the
// synchronization; spin.Wait just backs off the core's issue rate the way
// the teacher's CAS-retry loops (spmc_seq.go, mpmc_seq.go) do between
// attempts.
type BusySpinWaitStrategy struct{}

func (BusySpinWaitStrategy) WaitFor(target int64, cursor *Sequence, dependents []*Sequence) int64 {
	sw := spin.Wait{}
	for {
		available := minAvailable(cursor, dependents)
		if available >= target {
			return available
		}
		sw.Once()
	}
}

func (BusySpinWaitStrategy) SignalAllWhenBlocking() {}

func (BusySpinWaitStrategy) waitForOrAlert(target int64, cursor *Sequence, dependents []*Sequence, running *atomix.Int32) int64 {
	sw := spin.Wait{}
	for {
		available := minAvailable(cursor, dependents)
		if available >= target {
			return available
		}
		if consumerState(running.LoadAcquire()) != consumerRunning {
			return available
		}
		sw.Once()
	}
}

// yieldSpinLimit is the number of spin iterations YieldingWaitStrategy
// attempts before surrendering the rest of this scheduling quantum. 100 is
// the constant named in the spec, matching the original
// YieldingWaitStrategy's spin_tries threshold.
const yieldSpinLimit = 100

// YieldingWaitStrategy spins up to yieldSpinLimit iterations, then calls
// runtime.Gosched and resets the counter, repeating until the target
// sequence is available. It never sleeps or parks.
type YieldingWaitStrategy struct{}

func (YieldingWaitStrategy) WaitFor(target int64, cursor *Sequence, dependents []*Sequence) int64 {
	sw := spin.Wait{}
	spinTries := 0
	for {
		available := minAvailable(cursor, dependents)
		if available >= target {
			return available
		}
		spinTries++
		if spinTries > yieldSpinLimit {
			runtime.Gosched()
			spinTries = 0
			continue
		}
		sw.Once()
	}
}

func (YieldingWaitStrategy) SignalAllWhenBlocking() {}

func (YieldingWaitStrategy) waitForOrAlert(target int64, cursor *Sequence, dependents []*Sequence, running *atomix.Int32) int64 {
	sw := spin.Wait{}
	spinTries := 0
	for {
		available := minAvailable(cursor, dependents)
		if available >= target {
			return available
		}
		if consumerState(running.LoadAcquire()) != consumerRunning {
			return available
		}
		spinTries++
		if spinTries > yieldSpinLimit {
			runtime.Gosched()
			spinTries = 0
			continue
		}
		sw.Once()
	}
}

func newWaitStrategy(kind WaitStrategyKind) (WaitStrategy, error) {
	switch kind {
	case BusySpin:
		return BusySpinWaitStrategy{}, nil
	case Yielding:
		return YieldingWaitStrategy{}, nil
	default:
		return nil, configError("WaitStrategy", kind, ErrUnsupportedWaitStrategy)
	}
}
