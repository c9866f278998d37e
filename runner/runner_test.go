package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// waitDone wraps a job with a completion signal so tests can block on
// the terminal outcome.
func waitDone(job Job) (Job, <-chan error) {
	done := make(chan error, 1)
	prev := job.OnDone
	job.OnDone = func(err error) {
		if prev != nil {
			prev(err)
		}
		done <- err
	}
	return job, done
}

func TestJobRunsOnce(t *testing.T) {
	r := New(2)
	defer r.Shutdown()

	var runs int32
	job, done := waitDone(Job{
		Key: "job-1",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})
	assert.NoError(t, r.Enqueue(job, KEEP))

	assert.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestJobRetriesUntilSuccess(t *testing.T) {
	r := New(1)
	defer r.Shutdown()

	var runs int32
	job, done := waitDone(Job{
		Key: "flaky",
		Run: func(ctx context.Context) error {
			if atomic.AddInt32(&runs, 1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
	})
	assert.NoError(t, r.Enqueue(job, KEEP))

	assert.NoError(t, <-done)
	assert.Equal(t, int32(3), atomic.LoadInt32(&runs))
}

func TestJobFailsPermanentlyAtAttemptCeiling(t *testing.T) {
	r := New(1)
	r.SetMaxAttempts(2)
	defer r.Shutdown()

	var runs int32
	job, done := waitDone(Job{
		Key: "doomed",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return errors.New("still broken")
		},
	})
	assert.NoError(t, r.Enqueue(job, KEEP))

	err := <-done
	assert.EqualError(t, err, "still broken")
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}

func TestKeepPolicyDropsDuplicate(t *testing.T) {
	r := New(1)
	defer r.Shutdown()

	release := make(chan struct{})
	var first, second int32

	job, done := waitDone(Job{
		Key: "dedup",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&first, 1)
			<-release
			return nil
		},
	})
	assert.NoError(t, r.Enqueue(job, KEEP))

	// wait for the first job to occupy the worker
	for atomic.LoadInt32(&first) == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	assert.NoError(t, r.Enqueue(Job{
		Key: "dedup",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&second, 1)
			return nil
		},
	}, KEEP))

	close(release)
	assert.NoError(t, <-done)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&first))
	assert.Equal(t, int32(0), atomic.LoadInt32(&second))
}

func TestReplacePolicyCancelsRunningJob(t *testing.T) {
	r := New(1)
	defer r.Shutdown()

	firstCanceled := make(chan struct{})
	assert.NoError(t, r.Enqueue(Job{
		Key: "session",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(firstCanceled)
			return ctx.Err()
		},
	}, KEEP))

	time.Sleep(20 * time.Millisecond)

	replacement, done := waitDone(Job{
		Key: "session",
		Run: func(ctx context.Context) error { return nil },
	})
	assert.NoError(t, r.Enqueue(replacement, REPLACE))

	select {
	case <-firstCanceled:
	case <-time.After(2 * time.Second):
		t.Fatal("replaced job was not canceled")
	}
	assert.NoError(t, <-done)
}

func TestNetworkGateHoldsJobs(t *testing.T) {
	r := New(2)
	defer r.Shutdown()

	r.SetOnline(false)

	var ran int32
	job, done := waitDone(Job{
		Key:             "delivery",
		RequiresNetwork: true,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		},
	})
	assert.NoError(t, r.Enqueue(job, KEEP))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))

	r.SetOnline(true)
	assert.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestExpeditedRunsFirst(t *testing.T) {
	r := New(1)
	defer r.Shutdown()

	block := make(chan struct{})
	assert.NoError(t, r.Enqueue(Job{
		Key: "occupier",
		Run: func(ctx context.Context) error {
			<-block
			return nil
		},
	}, KEEP))
	time.Sleep(20 * time.Millisecond)

	var mu sync.Mutex
	order := []string{}
	record := func(key string) Job {
		return Job{
			Key: key,
			Run: func(ctx context.Context) error {
				mu.Lock()
				order = append(order, key)
				mu.Unlock()
				return nil
			},
			Expedited: key == "urgent",
		}
	}

	assert.NoError(t, r.Enqueue(record("ordinary"), KEEP))
	urgent, done := waitDone(record("urgent"))
	assert.NoError(t, r.Enqueue(urgent, KEEP))

	close(block)
	assert.NoError(t, <-done)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"urgent", "ordinary"}, order)
}

func TestShutdownRejectsNewJobs(t *testing.T) {
	r := New(1)
	r.Shutdown()

	err := r.Enqueue(Job{Key: "late", Run: func(ctx context.Context) error { return nil }}, KEEP)
	assert.Equal(t, ErrRunnerClosed, err)
}

func TestShutdownCancelsRunningJob(t *testing.T) {
	r := New(1)

	started := make(chan struct{})
	canceled := make(chan struct{})
	assert.NoError(t, r.Enqueue(Job{
		Key: "session",
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			close(canceled)
			return ctx.Err()
		},
	}, KEEP))

	<-started
	r.Shutdown()

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("running job survived shutdown")
	}
}
