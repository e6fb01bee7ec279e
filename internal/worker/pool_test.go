package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *atomic.Int64
	delay   time.Duration
}

type countResult struct{}

func (countResult) GetError() error { return nil }

func (j *countJob) Execute(ctx context.Context) Result {
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return countResult{}
		}
	}
	j.counter.Add(1)
	return countResult{}
}

func TestPool_AllJobsComplete(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(4)
	pool.Start()

	const n = 50
	for i := 0; i < n; i++ {
		pool.Submit(&countJob{counter: &counter})
	}
	results := pool.Wait()

	if counter.Load() != n {
		t.Errorf("executed %d jobs, want %d", counter.Load(), n)
	}
	if len(results) != n {
		t.Errorf("collected %d results, want %d", len(results), n)
	}
}

func TestPool_SubmissionOutpacesQueueCapacity(t *testing.T) {
	// Far more jobs than the queue buffer holds: submission must keep
	// flowing while workers are busy, not stall behind result consumption.
	var counter atomic.Int64
	pool := NewPool(2)
	pool.Start()

	const n = 200
	done := make(chan []Result, 1)
	go func() {
		for i := 0; i < n; i++ {
			pool.Submit(&countJob{counter: &counter, delay: time.Millisecond})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != n {
			t.Errorf("collected %d results, want %d", len(results), n)
		}
		if counter.Load() != n {
			t.Errorf("executed %d jobs, want %d", counter.Load(), n)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("batch stalled: submission blocked before Wait could drain")
	}
}

func TestPool_WaitIsBarrier(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(2)
	pool.Start()

	for i := 0; i < 6; i++ {
		pool.Submit(&countJob{counter: &counter, delay: 10 * time.Millisecond})
	}
	pool.Wait()

	// By the time Wait returns every submitted job must have resolved.
	if counter.Load() != 6 {
		t.Errorf("Wait returned before all jobs finished: %d of 6", counter.Load())
	}
}

func TestPool_ZeroWorkersClamped(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&countJob{counter: &counter})
	pool.Wait()

	if counter.Load() != 1 {
		t.Error("a zero-worker pool should still run with one worker")
	}
}

func TestPool_SubmitAfterShutdownIsNoop(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	pool.Submit(&countJob{counter: &counter})

	if counter.Load() != 0 {
		t.Error("job submitted after shutdown must not run")
	}
}
