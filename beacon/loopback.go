package beacon

import (
	"context"
	"sync"
	"time"
)

// rebroadcastInterval is how often a loopback advertiser repeats its frame.
const rebroadcastInterval = 10 * time.Millisecond

// Loopback is an in-process radio medium. Every radio attached to it
// hears every frame any other attached radio advertises. It backs tests
// and the local simulator where no physical radio exists.
type Loopback struct {
	mu        sync.Mutex
	listeners map[chan []byte]struct{}
}

func NewLoopback() *Loopback {
	return &Loopback{
		listeners: map[chan []byte]struct{}{},
	}
}

func (l *Loopback) attach(c chan []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners[c] = struct{}{}
}

func (l *Loopback) detach(c chan []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.listeners, c)
}

func (l *Loopback) broadcast(frame []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for c := range l.listeners {
		select {
		case c <- frame:
		default:
			// a listener that stopped draining misses the repeat,
			// the next rebroadcast reaches it again
		}
	}
}

// NewRadio attaches a device radio to the medium.
func (l *Loopback) NewRadio() *LoopbackRadio {
	return &LoopbackRadio{medium: l}
}

// LoopbackRadio is one device's radio on a Loopback medium.
type LoopbackRadio struct {
	medium *Loopback

	mu               sync.Mutex
	permissionDenied bool
	failWith         error
}

// DenyPermission makes every subsequent session fail with
// ErrPermissionDenied, imitating a host that revoked the radio
// capability.
func (r *LoopbackRadio) DenyPermission() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permissionDenied = true
}

// FailWith makes every subsequent session fail with err, imitating a
// radio-layer fault.
func (r *LoopbackRadio) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func (r *LoopbackRadio) sessionError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.permissionDenied {
		return ErrPermissionDenied
	}
	return r.failWith
}

// Advertise implements Radio.
func (r *LoopbackRadio) Advertise(ctx context.Context, frame []byte) error {
	if err := r.sessionError(); err != nil {
		return err
	}

	ticker := time.NewTicker(rebroadcastInterval)
	defer ticker.Stop()

	r.medium.broadcast(frame)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.medium.broadcast(frame)
		}
	}
}

// Scan implements Radio.
func (r *LoopbackRadio) Scan(ctx context.Context, frames chan<- []byte) error {
	if err := r.sessionError(); err != nil {
		return err
	}

	received := make(chan []byte, 16)
	r.medium.attach(received)
	defer r.medium.detach(received)

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-received:
			select {
			case frames <- frame:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
