package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/standby-inc/standby-api/beacon"
	"github.com/standby-inc/standby-api/client"
	"github.com/standby-inc/standby-api/pubsub"
	"github.com/standby-inc/standby-api/runner"
	"github.com/standby-inc/standby-api/schema"
	"github.com/standby-inc/standby-api/store"
)

// newArbiterServer runs a minimal arbiter over the in-memory store so
// whole device flows can be exercised against real HTTP and SSE.
// Authentication is a bare account number bearer token.
func newArbiterServer(core *store.InmemoryStore, hub *pubsub.Hub) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	account := func(c *gin.Context) string {
		return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}

	r.POST("/api/help-requests", func(c *gin.Context) {
		var params struct {
			Subject      string `json:"subject"`
			Needs        string `json:"exact_needs"`
			MeetingPlace string `json:"meeting_location"`
			ContactInfo  string `json:"contact_info"`
		}
		if err := c.BindJSON(&params); err != nil {
			return
		}
		help, err := core.RequestHelp(account(c), account(c), params.Subject, params.Needs, params.MeetingPlace, params.ContactInfo)
		if err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": help})
	})

	r.GET("/api/help-requests/:helpID", func(c *gin.Context) {
		help, err := core.GetHelp(c.Param("helpID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": help})
	})

	r.POST("/api/help-requests/:helpID/proximity", func(c *gin.Context) {
		var params struct {
			Outcome bool `json:"outcome"`
		}
		if err := c.BindJSON(&params); err != nil {
			return
		}
		help, err := core.HandleProximityVerification(schema.ProximityEvidence{
			HelpRequestID: c.Param("helpID"),
			AccountNumber: account(c),
			Outcome:       params.Outcome,
			SubmittedAt:   time.Now(),
		})
		switch err {
		case nil:
			c.JSON(http.StatusOK, gin.H{"result": help})
		case store.ErrRequestNotExist:
			c.AbortWithStatus(http.StatusNotFound)
		case store.ErrRequestNotOpen:
			c.AbortWithStatus(http.StatusConflict)
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	})

	r.PATCH("/api/help-requests/:helpID", func(c *gin.Context) {
		var params struct {
			State string `json:"state"`
		}
		if err := c.BindJSON(&params); err != nil {
			return
		}
		help, err := core.UpdateHelpState(account(c), c.Param("helpID"), params.State)
		switch err {
		case nil:
			c.JSON(http.StatusOK, gin.H{"result": help})
		case store.ErrRequestNotExist:
			c.AbortWithStatus(http.StatusNotFound)
		case store.ErrInvalidStateChange:
			c.AbortWithStatus(http.StatusBadRequest)
		default:
			c.AbortWithStatus(http.StatusConflict)
		}
	})

	r.GET("/api/help-requests/:helpID/updates", func(c *gin.Context) {
		sub := hub.Subscribe(c.Param("helpID"))
		defer sub.Cancel()

		help, err := core.GetHelp(c.Param("helpID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.SSEvent("update", schema.HelpRequestUpdate{
			HelpRequestID: help.ID.String(),
			Seq:           help.Seq,
			State:         help.State,
			Helper:        help.Helper,
		})
		c.Writer.Flush()

		if schema.IsTerminalHelpState(help.State) {
			return
		}

		lastSeq := help.Seq
		clientGone := c.Writer.CloseNotify()
		c.Stream(func(w io.Writer) bool {
			select {
			case update, ok := <-sub.C:
				if !ok {
					return false
				}
				if update.Seq <= lastSeq {
					return true
				}
				lastSeq = update.Seq
				c.SSEvent("update", update)
				return !schema.IsTerminalHelpState(update.State)
			case <-clientGone:
				return false
			}
		})
	})

	r.POST("/api/devices", func(c *gin.Context) {
		var params struct {
			PushToken string           `json:"push_token"`
			Location  *schema.Location `json:"location"`
		}
		if err := c.BindJSON(&params); err != nil {
			return
		}
		device, err := core.RegisterDevice(account(c), params.PushToken, params.Location)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": device})
	})

	r.DELETE("/api/devices/:deviceID", func(c *gin.Context) {
		if err := core.DeleteDevice(account(c), c.Param("deviceID")); err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": "OK"})
	})

	return httptest.NewServer(r)
}

type fixture struct {
	core   *store.InmemoryStore
	server *httptest.Server
	medium *beacon.Loopback
	jobs   *runner.Runner
}

func newFixture() *fixture {
	hub := pubsub.NewHub()
	core := store.NewInmemoryStore(hub, false)
	return &fixture{
		core:   core,
		server: newArbiterServer(core, hub),
		medium: beacon.NewLoopback(),
		jobs:   runner.New(4),
	}
}

func (f *fixture) close() {
	f.jobs.Shutdown()
	f.server.Close()
}

func (f *fixture) session(accountNumber, name string) *Session {
	api := client.New(f.server.URL, accountNumber, nil)
	return NewSession(accountNumber, name, NewMemoryKV(), api, f.medium.NewRadio(), f.jobs)
}

func TestHelpRequestLifecycle(t *testing.T) {
	f := newFixture()
	defer f.close()

	holder := f.session("holder-1", "Alice")
	supporter := f.session("supporter-1", "Bob")

	updates := make(chan schema.HelpRequestUpdate, 8)
	help, err := holder.AskForHelp(context.Background(), "delivery", "insulin", "7-11", "",
		func(u schema.HelpRequestUpdate) { updates <- u })
	assert.NoError(t, err)
	assert.Equal(t, schema.HELP_PENDING, help.State)

	pending, ok := holder.kv.Get(KeyPendingHelpRequestID)
	assert.True(t, ok)
	assert.Equal(t, help.ID.String(), pending)

	// snapshot replay arrives first
	first := <-updates
	assert.Equal(t, schema.HELP_PENDING, first.State)

	// the supporter device receives a verification push and scans
	push := fmt.Sprintf(`{"kind":"proximity-verification","data":{"help_request_id":%q,"proximity_token":%q}}`,
		help.ID.String(), help.ProximityToken)
	assert.NoError(t, supporter.HandlePush([]byte(push)))

	select {
	case u := <-updates:
		assert.Equal(t, schema.HELP_MATCHED, u.State)
		assert.Equal(t, "supporter-1", u.Helper)
	case <-time.After(10 * time.Second):
		t.Fatal("request never matched")
	}

	assert.NoError(t, supporter.CompleteHelp(context.Background(), help.ID.String()))

	select {
	case u := <-updates:
		assert.Equal(t, schema.HELP_COMPLETED, u.State)
	case <-time.After(5 * time.Second):
		t.Fatal("completion never observed")
	}

	// terminal state clears the local pending marker
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := holder.kv.Get(KeyPendingHelpRequestID); !ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	_, ok = holder.kv.Get(KeyPendingHelpRequestID)
	assert.False(t, ok)
}

func TestCancelHelp(t *testing.T) {
	f := newFixture()
	defer f.close()

	holder := f.session("holder-1", "Alice")

	help, err := holder.AskForHelp(context.Background(), "chat", "", "", "", nil)
	assert.NoError(t, err)

	assert.NoError(t, holder.CancelHelp(context.Background()))

	got, err := f.core.GetHelp(help.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, schema.HELP_CANCELED, got.State)

	_, ok := holder.kv.Get(KeyPendingHelpRequestID)
	assert.False(t, ok)

	// canceling again with nothing pending is a no-op
	assert.NoError(t, holder.CancelHelp(context.Background()))
}

func TestHandlePushExpiredClearsPendingRequest(t *testing.T) {
	f := newFixture()
	defer f.close()

	holder := f.session("holder-1", "Alice")

	help, err := holder.AskForHelp(context.Background(), "chat", "", "", "", nil)
	assert.NoError(t, err)

	// a matched push keeps the pending marker, the request is still open
	matched := fmt.Sprintf(`{"kind":"help-matched","data":{"help_request_id":%q}}`, help.ID.String())
	assert.NoError(t, holder.HandlePush([]byte(matched)))
	_, ok := holder.kv.Get(KeyPendingHelpRequestID)
	assert.True(t, ok)

	// an expiry push for some other request leaves it alone
	other := `{"kind":"help-expired","data":{"help_request_id":"someone-else"}}`
	assert.NoError(t, holder.HandlePush([]byte(other)))
	_, ok = holder.kv.Get(KeyPendingHelpRequestID)
	assert.True(t, ok)

	// the matching expiry push clears it
	expired := fmt.Sprintf(`{"kind":"help-expired","data":{"help_request_id":%q}}`, help.ID.String())
	assert.NoError(t, holder.HandlePush([]byte(expired)))
	_, ok = holder.kv.Get(KeyPendingHelpRequestID)
	assert.False(t, ok)
}

func TestHandlePushRejectsMalformedPayloads(t *testing.T) {
	f := newFixture()
	defer f.close()

	supporter := f.session("supporter-1", "Bob")

	assert.Error(t, supporter.HandlePush([]byte("junk")))
	assert.Equal(t, schema.ErrUnknownMessageKind,
		supporter.HandlePush([]byte(`{"kind":"mystery","data":{}}`)))
	assert.Error(t, supporter.HandlePush([]byte(`{"kind":"proximity-verification","data":{}}`)))
}

func TestDeviceLifecycleThroughSession(t *testing.T) {
	f := newFixture()
	defer f.close()

	session := f.session("holder-1", "Alice")

	err := session.RegisterDevice(context.Background(), "push-token", &schema.Location{Latitude: 25.0, Longitude: 121.5})
	assert.NoError(t, err)

	deviceID, ok := session.kv.Get(KeyDeviceID)
	assert.True(t, ok)
	assert.NotEmpty(t, deviceID)

	session.SignOut(context.Background())

	_, ok = session.kv.Get(KeyDeviceID)
	assert.False(t, ok)
	assert.Equal(t, store.ErrDeviceNotExist, f.core.DeleteDevice("holder-1", deviceID))
}
