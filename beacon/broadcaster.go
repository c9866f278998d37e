package beacon

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const broadcasterLogPrefix = "broadcaster"

// DefaultAdvertiseDuration bounds how long a single advertising session
// holds the radio before it ends on its own.
const DefaultAdvertiseDuration = 45 * time.Second

// Broadcaster holds a radio advertising session open for a bounded
// duration, re-broadcasting a fixed message. One session at a time:
// starting while a session is active stops the previous session first.
type Broadcaster struct {
	radio    Radio
	duration time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBroadcaster(radio Radio) *Broadcaster {
	return &Broadcaster{
		radio:    radio,
		duration: DefaultAdvertiseDuration,
	}
}

// SetDuration overrides the session time budget.
func (b *Broadcaster) SetDuration(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.duration = d
}

// Start begins advertising message under the request's proximity token
// and returns the session's status events. The returned channel is closed
// when the session ends. A missing radio permission arrives as a terminal
// StatusPermissionDenied event, not an error. When the internal time
// budget elapses the session ends silently: advertising just stops, with
// no status event, so callers that need continuous discoverability must
// restart.
func (b *Broadcaster) Start(ctx context.Context, token, message string) (<-chan Status, error) {
	frame, err := Encode(token, message)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.cancel != nil {
		// restart semantics: the previous session gives up the radio
		cancel, done := b.cancel, b.done
		b.mu.Unlock()
		cancel()
		<-done
		b.mu.Lock()
	}

	sessionCtx, cancel := context.WithTimeout(ctx, b.duration)
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done
	b.mu.Unlock()

	events := make(chan Status, 4)

	go func() {
		defer close(events)
		defer close(done)
		defer cancel()

		events <- Status{Kind: StatusStarted}
		log.WithField("prefix", broadcasterLogPrefix).Debug("advertising session started")

		err := b.radio.Advertise(sessionCtx, frame)

		b.mu.Lock()
		if b.done == done {
			b.cancel = nil
			b.done = nil
		}
		stopped := sessionCtx.Err() == context.Canceled
		b.mu.Unlock()

		switch {
		case err == ErrPermissionDenied:
			events <- Status{Kind: StatusPermissionDenied, Err: err}
		case err != nil && sessionCtx.Err() == nil:
			events <- Status{Kind: StatusError, Err: err}
		case stopped:
			events <- Status{Kind: StatusStopped}
		default:
			// time budget elapsed: the session ends without an event
			log.WithField("prefix", broadcasterLogPrefix).Debug("advertising session timed out")
		}
	}()

	return events, nil
}

// Stop ends the active session. Calling it with no active session is a
// no-op, and it is safe from any goroutine.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
