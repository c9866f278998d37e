package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/standby-inc/standby-api/schema"
)

const observerLogPrefix = "observer"

// UpdatesOpener opens the transition stream of one help request.
type UpdatesOpener interface {
	OpenUpdates(ctx context.Context, helpID string) (*http.Response, error)
}

// Subscription is a live observation of one help request. Cancel is safe
// to call multiple times, from any goroutine, and after the observer has
// already been torn down.
type Subscription struct {
	helpID   string
	cancel   context.CancelFunc
	done     chan struct{}
	observer *Observer
	once     sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Observer subscribes to arbiter state changes for specific request ids
// and republishes them to local consumers. Updates arrive in the order
// the arbiter committed them. At most one subscription per request id is
// active: observing an id that is already observed returns the live
// subscription unchanged.
type Observer struct {
	opener UpdatesOpener

	mu   sync.Mutex
	subs map[string]*Subscription
}

func NewObserver(opener UpdatesOpener) *Observer {
	return &Observer{
		opener: opener,
		subs:   map[string]*Subscription{},
	}
}

// Observe starts watching helpID and delivers every committed transition
// to onUpdate, in commit order, until the subscription is canceled.
func (o *Observer) Observe(helpID string, onUpdate func(schema.HelpRequestUpdate)) (*Subscription, error) {
	o.mu.Lock()
	if sub, ok := o.subs[helpID]; ok {
		// idempotent re-subscribe
		o.mu.Unlock()
		return sub, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		helpID:   helpID,
		cancel:   cancel,
		done:     make(chan struct{}),
		observer: o,
	}
	o.subs[helpID] = sub
	o.mu.Unlock()

	resp, err := o.opener.OpenUpdates(ctx, helpID)
	if err != nil {
		o.drop(sub)
		cancel()
		close(sub.done)
		return nil, err
	}

	go func() {
		defer close(sub.done)
		defer o.drop(sub)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			var update schema.HelpRequestUpdate
			if err := json.Unmarshal([]byte(strings.TrimSpace(line[len("data:"):])), &update); err != nil {
				log.WithField("prefix", observerLogPrefix).
					Warnf("dropping malformed update for %s: %s", helpID, err)
				continue
			}

			onUpdate(update)

			if schema.IsTerminalHelpState(update.State) {
				// nothing further can be committed
				return
			}
		}
	}()

	return sub, nil
}

func (o *Observer) drop(sub *Subscription) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if current, ok := o.subs[sub.helpID]; ok && current == sub {
		delete(o.subs, sub.helpID)
	}
}
