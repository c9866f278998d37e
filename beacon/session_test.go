package beacon

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// collect drains a session's events until the channel closes.
func collect(events <-chan Status) []Status {
	out := []Status{}
	for e := range events {
		out = append(out, e)
	}
	return out
}

func TestBroadcastReachesScanner(t *testing.T) {
	medium := NewLoopback()
	token := uuid.New().String()

	scanner := NewScanner(medium.NewRadio())
	scanEvents, err := scanner.Start(context.Background(), token)
	assert.NoError(t, err)
	defer scanner.Stop()

	broadcaster := NewBroadcaster(medium.NewRadio())
	_, err = broadcaster.Start(context.Background(), token, "over here")
	assert.NoError(t, err)
	defer broadcaster.Stop()

	assert.Equal(t, StatusStarted, (<-scanEvents).Kind)

	select {
	case e := <-scanEvents:
		assert.Equal(t, StatusMessage, e.Kind)
		assert.Equal(t, "over here", e.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestScannerEmitsFirstMatchOnly(t *testing.T) {
	medium := NewLoopback()
	token := uuid.New().String()

	scanner := NewScanner(medium.NewRadio())
	scanner.SetDuration(300 * time.Millisecond)
	events, err := scanner.Start(context.Background(), token)
	assert.NoError(t, err)

	broadcaster := NewBroadcaster(medium.NewRadio())
	_, err = broadcaster.Start(context.Background(), token, "hello")
	assert.NoError(t, err)
	defer broadcaster.Stop()

	// the broadcaster repeats the frame many times within the window
	messages := 0
	for e := range events {
		if e.Kind == StatusMessage {
			messages++
		}
	}
	assert.Equal(t, 1, messages)
}

func TestScannerIgnoresForeignBroadcast(t *testing.T) {
	medium := NewLoopback()

	scanner := NewScanner(medium.NewRadio())
	scanner.SetDuration(150 * time.Millisecond)
	events, err := scanner.Start(context.Background(), uuid.New().String())
	assert.NoError(t, err)

	broadcaster := NewBroadcaster(medium.NewRadio())
	_, err = broadcaster.Start(context.Background(), uuid.New().String(), "wrong door")
	assert.NoError(t, err)
	defer broadcaster.Stop()

	for _, e := range collect(events) {
		assert.NotEqual(t, StatusMessage, e.Kind)
	}
}

func TestBroadcasterTimesOutSilently(t *testing.T) {
	medium := NewLoopback()

	broadcaster := NewBroadcaster(medium.NewRadio())
	broadcaster.SetDuration(50 * time.Millisecond)

	events, err := broadcaster.Start(context.Background(), uuid.New().String(), "hello")
	assert.NoError(t, err)

	got := collect(events)
	assert.Len(t, got, 1)
	assert.Equal(t, StatusStarted, got[0].Kind)
}

func TestBroadcasterStopEmitsStoppedEvent(t *testing.T) {
	medium := NewLoopback()

	broadcaster := NewBroadcaster(medium.NewRadio())
	events, err := broadcaster.Start(context.Background(), uuid.New().String(), "hello")
	assert.NoError(t, err)

	assert.Equal(t, StatusStarted, (<-events).Kind)
	broadcaster.Stop()
	assert.Equal(t, StatusStopped, (<-events).Kind)

	_, open := <-events
	assert.False(t, open)

	// a second stop with no session is a no-op
	broadcaster.Stop()
}

func TestBroadcasterRestartReplacesSession(t *testing.T) {
	medium := NewLoopback()
	broadcaster := NewBroadcaster(medium.NewRadio())

	first, err := broadcaster.Start(context.Background(), uuid.New().String(), "one")
	assert.NoError(t, err)

	token := uuid.New().String()
	second, err := broadcaster.Start(context.Background(), token, "two")
	assert.NoError(t, err)
	defer broadcaster.Stop()

	got := collect(first)
	assert.Equal(t, StatusStopped, got[len(got)-1].Kind)

	// the new session is live: a scanner hears the new message
	scanner := NewScanner(medium.NewRadio())
	scanEvents, err := scanner.Start(context.Background(), token)
	assert.NoError(t, err)
	defer scanner.Stop()

	assert.Equal(t, StatusStarted, (<-scanEvents).Kind)
	select {
	case e := <-scanEvents:
		assert.Equal(t, StatusMessage, e.Kind)
		assert.Equal(t, "two", e.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("replacement session is not broadcasting")
	}
	_ = second
}

func TestPermissionDeniedIsTerminalEvent(t *testing.T) {
	medium := NewLoopback()

	radio := medium.NewRadio()
	radio.DenyPermission()

	broadcaster := NewBroadcaster(radio)
	events, err := broadcaster.Start(context.Background(), uuid.New().String(), "hello")
	assert.NoError(t, err)

	got := collect(events)
	assert.Equal(t, StatusPermissionDenied, got[len(got)-1].Kind)
	assert.Equal(t, ErrPermissionDenied, got[len(got)-1].Err)

	scanner := NewScanner(radio)
	events, err = scanner.Start(context.Background(), uuid.New().String())
	assert.NoError(t, err)

	got = collect(events)
	assert.Equal(t, StatusPermissionDenied, got[len(got)-1].Kind)
}

func TestRadioFailureSurfacesAsErrorEvent(t *testing.T) {
	medium := NewLoopback()

	radio := medium.NewRadio()
	radio.FailWith(fmt.Errorf("radio reset"))

	scanner := NewScanner(radio)
	events, err := scanner.Start(context.Background(), uuid.New().String())
	assert.NoError(t, err)

	got := collect(events)
	last := got[len(got)-1]
	assert.Equal(t, StatusError, last.Kind)
	assert.EqualError(t, last.Err, "radio reset")
}

func TestStartRejectsInvalidInput(t *testing.T) {
	medium := NewLoopback()

	broadcaster := NewBroadcaster(medium.NewRadio())
	_, err := broadcaster.Start(context.Background(), "bogus", "hello")
	assert.Equal(t, ErrInvalidToken, err)

	scanner := NewScanner(medium.NewRadio())
	_, err = scanner.Start(context.Background(), "bogus")
	assert.Equal(t, ErrInvalidToken, err)
}
