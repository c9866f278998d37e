package agent

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/standby-inc/standby-api/schema"
)

type stubOpener struct {
	mu     sync.Mutex
	body   io.ReadCloser
	opened int
	err    error
}

func (o *stubOpener) OpenUpdates(ctx context.Context, helpID string) (*http.Response, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened++
	if o.err != nil {
		return nil, o.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: o.body}, nil
}

func sseStream(updates ...string) io.ReadCloser {
	var b strings.Builder
	for _, u := range updates {
		b.WriteString("event:update\n")
		b.WriteString("data:" + u + "\n\n")
	}
	return ioutil.NopCloser(strings.NewReader(b.String()))
}

func TestObserveDeliversUpdatesInOrder(t *testing.T) {
	opener := &stubOpener{body: sseStream(
		`{"help_request_id":"help-1","seq":1,"state":"MATCHED","helper":"supporter-1"}`,
		`{"help_request_id":"help-1","seq":2,"state":"COMPLETED","helper":"supporter-1"}`,
	)}
	observer := NewObserver(opener)

	var mu sync.Mutex
	got := []schema.HelpRequestUpdate{}
	sub, err := observer.Observe("help-1", func(u schema.HelpRequestUpdate) {
		mu.Lock()
		got = append(got, u)
		mu.Unlock()
	})
	assert.NoError(t, err)

	<-sub.done

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, schema.HELP_MATCHED, got[0].State)
	assert.Equal(t, uint64(2), got[1].Seq)
	assert.Equal(t, schema.HELP_COMPLETED, got[1].State)
}

func TestObserveStopsAtTerminalState(t *testing.T) {
	// the stream stays open past the terminal update; the observer
	// must stop on its own
	pr, pw := io.Pipe()
	opener := &stubOpener{body: pr}
	observer := NewObserver(opener)

	done := make(chan struct{})
	sub, err := observer.Observe("help-1", func(u schema.HelpRequestUpdate) {
		if schema.IsTerminalHelpState(u.State) {
			close(done)
		}
	})
	assert.NoError(t, err)
	defer sub.Cancel()

	go func() {
		fmt.Fprint(pw, "event:update\ndata:{\"help_request_id\":\"help-1\",\"seq\":1,\"state\":\"CANCELED\"}\n\n")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("terminal update not delivered")
	}

	select {
	case <-sub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer kept reading past the terminal state")
	}
	pw.Close()
}

func TestObserveSkipsMalformedLines(t *testing.T) {
	opener := &stubOpener{body: ioutil.NopCloser(strings.NewReader(
		"data:not json\n\n" +
			"event:update\ndata:{\"help_request_id\":\"help-1\",\"seq\":1,\"state\":\"COMPLETED\"}\n\n",
	))}
	observer := NewObserver(opener)

	var mu sync.Mutex
	got := []schema.HelpRequestUpdate{}
	sub, err := observer.Observe("help-1", func(u schema.HelpRequestUpdate) {
		mu.Lock()
		got = append(got, u)
		mu.Unlock()
	})
	assert.NoError(t, err)

	<-sub.done

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 1)
	assert.Equal(t, schema.HELP_COMPLETED, got[0].State)
}

func TestObserveIsIdempotentPerRequest(t *testing.T) {
	pr, pw := io.Pipe()
	opener := &stubOpener{body: pr}
	observer := NewObserver(opener)

	first, err := observer.Observe("help-1", nil)
	assert.NoError(t, err)

	second, err := observer.Observe("help-1", nil)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, opener.opened)

	pw.Close()
	<-first.done
}

func TestObservePropagatesOpenError(t *testing.T) {
	opener := &stubOpener{err: fmt.Errorf("stream refused")}
	observer := NewObserver(opener)

	_, err := observer.Observe("help-1", nil)
	assert.EqualError(t, err, "stream refused")

	// the failed subscription does not block a retry
	opener.err = nil
	opener.body = sseStream(`{"help_request_id":"help-1","seq":1,"state":"COMPLETED"}`)
	sub, err := observer.Observe("help-1", nil)
	assert.NoError(t, err)
	<-sub.done
}
