package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const logPrefix = "runner"

const (
	// DefaultMaxAttempts is the retry ceiling per job. Every failure
	// counts as transient until the ceiling, then the job is failed
	// permanently.
	DefaultMaxAttempts = 3

	// DefaultBudget bounds one execution attempt when the job does not
	// set its own.
	DefaultBudget = 450 * time.Second

	retryBackoffBase = 500 * time.Millisecond
)

var ErrRunnerClosed = errors.New("runner is shut down")

type task struct {
	job      Job
	cancel   context.CancelFunc
	canceled bool
}

// Runner executes jobs outside the interactive lifecycle with bounded
// retries and a connectivity gate, in the manner of an OS background
// task scheduler. Execution is at-least-once: after a process restart
// the host re-enqueues persisted jobs, so a job body may run again even
// after it succeeded.
type Runner struct {
	maxAttempts int
	workers     int

	mu      sync.Mutex
	tasks   map[string]*task
	pending []string
	urgent  []string
	online  bool
	closed  bool

	wake chan struct{}
	wg   sync.WaitGroup

	baseCtx context.Context
	stop    context.CancelFunc
}

func New(workers int) *Runner {
	if workers <= 0 {
		workers = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Runner{
		maxAttempts: DefaultMaxAttempts,
		workers:     workers,
		tasks:       map[string]*task{},
		online:      true,
		wake:        make(chan struct{}, 1),
		baseCtx:     ctx,
		stop:        cancel,
	}

	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.work()
	}

	return r
}

// SetMaxAttempts overrides the retry ceiling.
func (r *Runner) SetMaxAttempts(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > 0 {
		r.maxAttempts = n
	}
}

// SetOnline flips the connectivity gate. Network-conditioned jobs only
// run while the gate is open.
func (r *Runner) SetOnline(online bool) {
	r.mu.Lock()
	r.online = online
	r.mu.Unlock()
	r.kick()
}

// Enqueue schedules a job. With KEEP, a job whose key is already queued
// or running wins over the new one and the new job is dropped. With
// REPLACE, the existing job is canceled first.
func (r *Runner) Enqueue(job Job, policy Policy) error {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return ErrRunnerClosed
	}

	if existing, ok := r.tasks[job.Key]; ok {
		if policy == KEEP {
			r.mu.Unlock()
			log.WithField("prefix", logPrefix).Debugf("job %s already scheduled, keeping", job.Key)
			return nil
		}
		existing.canceled = true
		if existing.cancel != nil {
			existing.cancel()
		}
		r.dequeue(job.Key)
	}

	r.tasks[job.Key] = &task{job: job}
	if job.Expedited {
		r.urgent = append(r.urgent, job.Key)
	} else {
		r.pending = append(r.pending, job.Key)
	}
	r.mu.Unlock()

	r.kick()
	return nil
}

// Shutdown cancels running jobs and waits for the workers to exit.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.stop()
	r.kick()
	r.wg.Wait()
}

func (r *Runner) kick() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// dequeue drops key from both queues without touching r.tasks.
func (r *Runner) dequeue(key string) {
	for i, k := range r.urgent {
		if k == key {
			r.urgent = append(r.urgent[:i], r.urgent[i+1:]...)
			return
		}
	}
	for i, k := range r.pending {
		if k == key {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}

// next pops the next runnable task, expedited first. Network-conditioned
// jobs stay queued while the gate is closed.
func (r *Runner) next() *task {
	r.mu.Lock()
	defer r.mu.Unlock()

	queues := []*[]string{&r.urgent, &r.pending}
	for _, q := range queues {
		for i, key := range *q {
			t := r.tasks[key]
			if t == nil {
				*q = append((*q)[:i], (*q)[i+1:]...)
				return nil
			}
			if t.job.RequiresNetwork && !r.online {
				continue
			}
			*q = append((*q)[:i], (*q)[i+1:]...)
			return t
		}
	}
	return nil
}

func (r *Runner) work() {
	defer r.wg.Done()

	for {
		t := r.next()
		if t == nil {
			select {
			case <-r.baseCtx.Done():
				return
			case <-r.wake:
				continue
			case <-time.After(time.Second):
				continue
			}
		}
		r.execute(t)
	}
}

func (r *Runner) execute(t *task) {
	budget := t.job.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	maxAttempts := r.maxAttempts

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(r.baseCtx, budget)

		r.mu.Lock()
		if t.canceled || r.closed {
			r.mu.Unlock()
			cancel()
			return
		}
		t.cancel = cancel
		r.mu.Unlock()

		lastErr = t.job.Run(ctx)
		cancel()

		r.mu.Lock()
		t.cancel = nil
		canceled := t.canceled
		r.mu.Unlock()

		if canceled {
			return
		}

		if lastErr == nil {
			r.finish(t, nil)
			return
		}

		log.WithField("prefix", logPrefix).
			Warnf("job %s attempt %d/%d failed: %s", t.job.Key, attempt, maxAttempts, lastErr)

		if attempt < maxAttempts {
			// exponential backoff between attempts
			delay := retryBackoffBase << uint(attempt-1)
			select {
			case <-r.baseCtx.Done():
				return
			case <-time.After(delay):
			}
		}
	}

	r.finish(t, lastErr)
}

func (r *Runner) finish(t *task, err error) {
	r.mu.Lock()
	if current, ok := r.tasks[t.job.Key]; ok && current == t {
		delete(r.tasks, t.job.Key)
	}
	r.mu.Unlock()

	if err != nil {
		log.WithField("prefix", logPrefix).Errorf("job %s failed permanently: %s", t.job.Key, err)
	}
	if t.job.OnDone != nil {
		t.job.OnDone(err)
	}
}
