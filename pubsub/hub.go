package pubsub

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/standby-inc/standby-api/schema"
)

const logPrefix = "pubsub"

// subscriberBuffer bounds the per-subscriber queue. A help request commits
// at most a handful of transitions over its lifetime, so hitting this limit
// means the consumer stopped reading; such a subscription is closed instead
// of silently dropping a transition, which would break the in-order
// delivery guarantee.
const subscriberBuffer = 16

// Subscription is a live feed of the committed transitions of one help
// request. Updates arrive on C in commit order. Cancel is safe to call
// multiple times and from any goroutine.
type Subscription struct {
	HelpRequestID string

	C chan schema.HelpRequestUpdate

	hub  *Hub
	once sync.Once
}

// Cancel releases the hub-side listener and closes C.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub fans out help request transitions to interested subscribers. The
// store publishes into it after every commit; the API server streams out
// of it. It implements store.TransitionPublisher.
type Hub struct {
	mu   sync.Mutex
	subs map[string][]*Subscription
}

func NewHub() *Hub {
	return &Hub{
		subs: map[string][]*Subscription{},
	}
}

// Subscribe registers a listener for one help request id.
func (h *Hub) Subscribe(helpRequestID string) *Subscription {
	sub := &Subscription{
		HelpRequestID: helpRequestID,
		C:             make(chan schema.HelpRequestUpdate, subscriberBuffer),
		hub:           h,
	}

	h.mu.Lock()
	h.subs[helpRequestID] = append(h.subs[helpRequestID], sub)
	h.mu.Unlock()

	return sub
}

// Publish delivers one committed transition to every subscriber of the
// request, in the order Publish is called.
func (h *Hub) Publish(update schema.HelpRequestUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// eviction must not touch the slice mid-iteration or the
	// subscriber after a stalled one misses the update
	var stalled []*Subscription
	for _, sub := range h.subs[update.HelpRequestID] {
		select {
		case sub.C <- update:
		default:
			log.WithField("prefix", logPrefix).
				Warnf("dropping stalled subscriber of request %s", update.HelpRequestID)
			stalled = append(stalled, sub)
		}
	}
	for _, sub := range stalled {
		h.removeLocked(sub)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscription) {
	subs := h.subs[sub.HelpRequestID]
	for i, s := range subs {
		if s == sub {
			h.subs[sub.HelpRequestID] = append(subs[:i], subs[i+1:]...)
			close(sub.C)
			break
		}
	}
	if len(h.subs[sub.HelpRequestID]) == 0 {
		delete(h.subs, sub.HelpRequestID)
	}
}
