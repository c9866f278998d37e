package beacon

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const scannerLogPrefix = "scanner"

// DefaultScanDuration bounds a scan session's wall clock. It matches the
// budget the background runner grants a detached scan job.
const DefaultScanDuration = 450 * time.Second

// Scanner filters inbound broadcasts by the expected proximity token and
// dispatches the first qualifying message of a session exactly once.
// Frames for other tokens and frames that fail to decode are dropped and
// scanning continues.
type Scanner struct {
	radio    Radio
	duration time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScanner(radio Radio) *Scanner {
	return &Scanner{
		radio:    radio,
		duration: DefaultScanDuration,
	}
}

// SetDuration overrides the session time budget.
func (s *Scanner) SetDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = d
}

// Start begins scanning for the token. The returned channel carries the
// session's status events and is closed when the session ends. At most
// one StatusMessage is ever emitted per session; once a qualifying
// message arrives, later matches are ignored so a single device cannot
// submit duplicate evidence. Radio failures arrive as status events.
// Starting while a session is active stops the previous session first.
func (s *Scanner) Start(ctx context.Context, token string) (<-chan Status, error) {
	if _, err := tokenTag(token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.cancel != nil {
		cancel, done := s.cancel, s.done
		s.mu.Unlock()
		cancel()
		<-done
		s.mu.Lock()
	}

	sessionCtx, cancel := context.WithTimeout(ctx, s.duration)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	events := make(chan Status, 4)
	frames := make(chan []byte, 16)

	go func() {
		defer close(events)
		defer close(done)
		defer cancel()

		radioErr := make(chan error, 1)
		go func() {
			radioErr <- s.radio.Scan(sessionCtx, frames)
		}()

		events <- Status{Kind: StatusStarted}
		log.WithField("prefix", scannerLogPrefix).Debug("scan session started")

		matched := false
		var err error

	loop:
		for {
			select {
			case frame := <-frames:
				message, ok := Decode(token, frame)
				if !ok {
					// malformed or foreign frame, keep scanning
					continue
				}
				if matched {
					// first match wins, drop the rest
					continue
				}
				matched = true
				events <- Status{Kind: StatusMessage, Message: message}
			case err = <-radioErr:
				break loop
			}
		}

		s.mu.Lock()
		if s.done == done {
			s.cancel = nil
			s.done = nil
		}
		stopped := sessionCtx.Err() == context.Canceled
		s.mu.Unlock()

		switch {
		case err == ErrPermissionDenied:
			events <- Status{Kind: StatusPermissionDenied, Err: err}
		case err != nil && sessionCtx.Err() == nil:
			events <- Status{Kind: StatusError, Err: err}
		case stopped:
			events <- Status{Kind: StatusStopped}
		default:
			log.WithField("prefix", scannerLogPrefix).Debug("scan session timed out")
		}
	}()

	return events, nil
}

// Stop ends the active session. Calling it with no active session is a
// no-op, and it is safe from any goroutine.
func (s *Scanner) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
