package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/standby-inc/standby-api/api/mocks"
	"github.com/standby-inc/standby-api/pubsub"
	"github.com/standby-inc/standby-api/schema"
	"github.com/standby-inc/standby-api/store"
)

func testRouter(s *Server, requester string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("requester", requester)
	})
	router.POST("/help-requests", s.askForHelp)
	router.GET("/help-requests/:helpID", s.getHelp)
	router.POST("/help-requests/:helpID/proximity", s.handleProximityVerification)
	router.PATCH("/help-requests/:helpID", s.updateHelpState)
	router.GET("/help-requests/:helpID/updates", s.helpRequestUpdates)
	return router
}

func TestAskForHelp(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	helpID := uuid.New()
	core.EXPECT().GetAccount("requester-1").Return(&schema.Account{
		AccountNumber: "requester-1",
		Profile: schema.AccountProfile{
			Name: "Alice",
		},
	}, nil).Times(1)
	core.EXPECT().
		RequestHelp("requester-1", "Alice", "delivery", "water", "7-11", "12345").
		Return(&schema.HelpRequest{
			ID:             helpID,
			Requester:      "requester-1",
			RequesterName:  "Alice",
			Subject:        "delivery",
			Needs:          "water",
			MeetingPlace:   "7-11",
			ContactInfo:    "12345",
			ProximityToken: "token-1",
			State:          schema.HELP_PENDING,
		}, nil).
		Times(1)

	router := testRouter(s, "requester-1")

	body := `{"subject":"delivery","exact_needs":"water","meeting_location":"7-11","contact_info":"12345"}`
	req := httptest.NewRequest("POST", "/help-requests", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")

	var resp struct {
		Result schema.HelpRequest `json:"result"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, helpID, resp.Result.ID)
	assert.Equal(t, schema.HELP_PENDING, resp.Result.State)
	assert.Equal(t, "token-1", resp.Result.ProximityToken)
}

func TestAskForHelpTwice(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	core.EXPECT().GetAccount("requester-1").Return(&schema.Account{AccountNumber: "requester-1"}, nil).Times(1)
	core.EXPECT().
		RequestHelp("requester-1", "", "delivery", "", "", "").
		Return(nil, store.ErrMultipleRequestMade).
		Times(1)

	router := testRouter(s, "requester-1")

	req := httptest.NewRequest("POST", "/help-requests", strings.NewReader(`{"subject":"delivery"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code, "wrong status code")

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1201), resp.Code)
}

func TestGetHelp(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	helpID := uuid.New()
	core.EXPECT().GetHelp(helpID.String()).Return(&schema.HelpRequest{
		ID:    helpID,
		State: schema.HELP_PENDING,
	}, nil).Times(1)

	router := testRouter(s, "someone")

	req := httptest.NewRequest("GET", "/help-requests/"+helpID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")
}

func TestGetHelpNotFound(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	core.EXPECT().GetHelp("missing").Return(nil, store.ErrRequestNotExist).Times(1)

	router := testRouter(s, "someone")

	req := httptest.NewRequest("GET", "/help-requests/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "wrong status code")

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1200), resp.Code)
}

func TestHandleProximityVerificationAlreadyDecided(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	core.EXPECT().
		HandleProximityVerification(gomock.Any()).
		Return(nil, store.ErrRequestNotOpen).
		Times(1)

	router := testRouter(s, "supporter-2")

	req := httptest.NewRequest("POST", "/help-requests/some-id/proximity", strings.NewReader(`{"outcome":true}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code, "wrong status code")

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1202), resp.Code)
}

func TestHandleProximityVerificationNegativeKeepsRequestOpen(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	helpID := uuid.New()
	core.EXPECT().
		HandleProximityVerification(gomock.Any()).
		DoAndReturn(func(evidence schema.ProximityEvidence) (*schema.HelpRequest, error) {
			assert.Equal(t, helpID.String(), evidence.HelpRequestID)
			assert.Equal(t, "supporter-1", evidence.AccountNumber)
			assert.False(t, evidence.Outcome)
			return &schema.HelpRequest{ID: helpID, State: schema.HELP_PENDING}, nil
		}).
		Times(1)

	router := testRouter(s, "supporter-1")

	req := httptest.NewRequest("POST", "/help-requests/"+helpID.String()+"/proximity", strings.NewReader(`{"outcome":false}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")
}

func TestUpdateHelpState(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	helpID := uuid.New()
	core.EXPECT().
		UpdateHelpState("requester-1", helpID.String(), schema.HELP_COMPLETED).
		Return(&schema.HelpRequest{ID: helpID, State: schema.HELP_COMPLETED}, nil).
		Times(1)

	router := testRouter(s, "requester-1")

	req := httptest.NewRequest("PATCH", "/help-requests/"+helpID.String(), strings.NewReader(`{"state":"COMPLETED"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")
}

func TestUpdateHelpStateInvalidTransition(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core}

	core.EXPECT().
		UpdateHelpState("requester-1", "some-id", "PENDING").
		Return(nil, store.ErrInvalidStateChange).
		Times(1)

	router := testRouter(s, "requester-1")

	req := httptest.NewRequest("PATCH", "/help-requests/some-id", strings.NewReader(`{"state":"PENDING"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "wrong status code")

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1203), resp.Code)
}

func TestHelpRequestUpdatesCatchesTransitionDuringSnapshot(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	hub := pubsub.NewHub()
	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core, hub: hub}

	helpID := uuid.New()

	// a transition commits while the snapshot is being read; the
	// stream must deliver it, not replay the stale snapshot forever
	core.EXPECT().GetHelp(helpID.String()).DoAndReturn(func(id string) (*schema.HelpRequest, error) {
		hub.Publish(schema.HelpRequestUpdate{
			HelpRequestID: id,
			Seq:           1,
			State:         schema.HELP_COMPLETED,
			Helper:        "supporter-1",
		})
		return &schema.HelpRequest{
			ID:    helpID,
			State: schema.HELP_PENDING,
			Seq:   0,
		}, nil
	}).Times(1)

	server := httptest.NewServer(testRouter(s, "requester-1"))
	defer server.Close()

	httpClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := httpClient.Get(server.URL + "/help-requests/" + helpID.String() + "/updates")
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), schema.HELP_PENDING)
	assert.Contains(t, string(body), schema.HELP_COMPLETED)
}

func TestHelpRequestUpdatesReplaysTerminalState(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	core := mocks.NewMockStandbyCore(ctl)
	s := &Server{store: core, hub: pubsub.NewHub()}

	helpID := uuid.New()
	core.EXPECT().GetHelp(helpID.String()).Return(&schema.HelpRequest{
		ID:     helpID,
		State:  schema.HELP_COMPLETED,
		Helper: "supporter-1",
		Seq:    3,
	}, nil).Times(1)

	router := testRouter(s, "requester-1")

	req := httptest.NewRequest("GET", "/help-requests/"+helpID.String()+"/updates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "event:update")
	assert.Contains(t, w.Body.String(), schema.HELP_COMPLETED)
}
