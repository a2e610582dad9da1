// Package testbench drives a fixed-duration producer/consumer session
// against any queue.Queue implementation, used by both the unit tests and
// the mpsclogbench CLI.
package testbench

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heidenstedt/mpsclog/internal/queue"
)

// Config describes the concurrency shape of a bench session. NumConsumers
// is not exposed: both queue variants this module ships assume exactly one
// consumer goroutine, so RunTimedTest always spawns one.
type Config struct {
	NumProducers int
}

// RunTimedTest spawns cfg.NumProducers producer goroutines and one consumer
// goroutine against q for testDuration, then drains whatever is left in
// the queue. Returns how many messages were actually pushed, how many were
// dropped (ring only — always 0 for an unbounded queue), how many were
// pulled, and the wall-clock elapsed time.
func RunTimedTest[T any](
	q queue.Queue[T],
	cfg Config,
	testDuration time.Duration,
	valueGenerator func(int) T,
) (pushedCount, droppedCount, pulledCount int64, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), testDuration)
	defer cancel()

	var totalPushed, totalDropped, totalPulled int64
	start := time.Now()

	var msgIndex int64
	var prodWg sync.WaitGroup
	prodWg.Add(cfg.NumProducers)

	var productionDone int32

	go func() {
		<-ctx.Done()
		atomic.StoreInt32(&productionDone, 1)
	}()

	for i := 0; i < cfg.NumProducers; i++ {
		go func() {
			defer prodWg.Done()
			for atomic.LoadInt32(&productionDone) == 0 {
				idx := atomic.AddInt64(&msgIndex, 1) - 1
				msg := valueGenerator(int(idx))
				if q.TryPush(msg) {
					atomic.AddInt64(&totalPushed, 1)
				} else {
					atomic.AddInt64(&totalDropped, 1)
				}
			}
		}()
	}

	// stopConsumer is only closed once every producer goroutine has
	// actually returned (see prodWg.Wait below), so the consumer's final
	// drain pass below is race-free: nothing can push after that point.
	stopConsumer := make(chan struct{})
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			select {
			case <-stopConsumer:
				for {
					if _, ok := q.TryPull(); ok {
						atomic.AddInt64(&totalPulled, 1)
					} else {
						return
					}
				}
			default:
			}
			if _, ok := q.TryPull(); ok {
				atomic.AddInt64(&totalPulled, 1)
			} else {
				runtime.Gosched()
			}
		}
	}()

	<-ctx.Done()
	prodWg.Wait()
	close(stopConsumer)
	<-consumerDone

	elapsed = time.Since(start)
	pushedCount = atomic.LoadInt64(&totalPushed)
	droppedCount = atomic.LoadInt64(&totalDropped)
	pulledCount = atomic.LoadInt64(&totalPulled)
	return pushedCount, droppedCount, pulledCount, elapsed
}
