package api

import (
	"io"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/gin-gonic/gin"

	"github.com/standby-inc/standby-api/consts"
	"github.com/standby-inc/standby-api/schema"
	"github.com/standby-inc/standby-api/store"
)

// askForHelp is the API for asking help from others. The created request
// carries a freshly issued proximity token the holder's device will
// broadcast.
func (s *Server) askForHelp(c *gin.Context) {
	requester := c.GetString("requester")

	var params struct {
		Subject      string `json:"subject"`
		Needs        string `json:"exact_needs"`
		MeetingPlace string `json:"meeting_location"`
		ContactInfo  string `json:"contact_info"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	requesterName := ""
	account, err := s.store.GetAccount(requester)
	if err == nil && account != nil {
		requesterName = account.Profile.Name
	}

	req, err := s.store.RequestHelp(requester, requesterName, params.Subject, params.Needs, params.MeetingPlace, params.ContactInfo)
	if err != nil {
		if err == store.ErrMultipleRequestMade {
			abortWithEncoding(c, http.StatusForbidden, errorMultipleRequestMade, err)
			return
		}
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	s.broadcastNewHelp(c, req, account)

	c.JSON(http.StatusOK, gin.H{
		"status": "OK",
		"result": req,
	})
}

// broadcastNewHelp queues a notification to the dynamic cohort around the
// requester. A missing location or a task error only loses the push, not
// the request.
func (s *Server) broadcastNewHelp(c *gin.Context, req *schema.HelpRequest, account *schema.Account) {
	if account == nil || account.Profile.State.LastLocation == nil {
		return
	}

	accountNumbers, err := s.mongoStore.NearestDistance(consts.CORHORT_DISTANCE_RANGE, *account.Profile.State.LastLocation)
	if err != nil {
		c.Error(err)
		return
	}

	receivers := make([]string, 0, len(accountNumbers))
	for _, a := range accountNumbers {
		if a != req.Requester {
			receivers = append(receivers, a)
		}
	}
	if len(receivers) == 0 {
		return
	}

	if _, err := s.background.SendTask(&tasks.Signature{
		Name: "broadcast_help",
		Args: []tasks.Arg{
			{Type: "string", Value: req.ID.String()},
			{Type: "string", Value: req.ProximityToken},
			{Type: "[]string", Value: receivers},
		},
		RetryCount: 3,
	}); err != nil {
		c.Error(err)
	}
}

// listHelps returns requests around the caller plus the caller's own.
func (s *Server) listHelps(c *gin.Context) {
	requester := c.GetString("requester")

	account, err := s.store.GetAccount(requester)
	if shouldInterupt(err, c) {
		return
	}

	loc := account.Profile.State.LastLocation
	if loc == nil {
		c.JSON(http.StatusOK, gin.H{"result": []schema.HelpRequest{}})
		return
	}

	helps, err := s.store.ListHelps(requester, loc.Latitude, loc.Longitude, 0)
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": helps})
}

func (s *Server) getHelp(c *gin.Context) {
	help, err := s.store.GetHelp(c.Param("helpID"))
	if err != nil {
		if err == store.ErrRequestNotExist {
			abortWithEncoding(c, http.StatusNotFound, errorRequestNotExist, err)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": help})
}

// handleProximityVerification is the API a supporter device reports its
// scan outcome to. The arbiter accepts the first positive evidence for a
// PENDING request; every other submission observes a conflict, which the
// caller treats as someone else already decided.
func (s *Server) handleProximityVerification(c *gin.Context) {
	requester := c.GetString("requester")
	id := c.Param("helpID")

	var params struct {
		Outcome bool `json:"outcome"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	help, err := s.store.HandleProximityVerification(schema.ProximityEvidence{
		HelpRequestID: id,
		AccountNumber: requester,
		Outcome:       params.Outcome,
		SubmittedAt:   time.Now(),
	})
	if err != nil {
		switch err {
		case store.ErrRequestNotExist:
			abortWithEncoding(c, http.StatusNotFound, errorRequestNotExist, err)
		case store.ErrRequestNotOpen:
			abortWithEncoding(c, http.StatusConflict, errorRequestNotOpen, err)
		default:
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	if help.State == schema.HELP_MATCHED {
		if _, err := s.background.SendTask(&tasks.Signature{
			Name: "notify_help_matched",
			Args: []tasks.Arg{
				{Type: "string", Value: help.ID.String()},
				{Type: "string", Value: help.Requester},
			},
			RetryCount: 3,
		}); err != nil {
			c.Error(err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

// updateHelpState is the API for the participants to complete or cancel
// a request.
func (s *Server) updateHelpState(c *gin.Context) {
	requester := c.GetString("requester")
	id := c.Param("helpID")

	var params struct {
		State string `json:"state"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	help, err := s.store.UpdateHelpState(requester, id, params.State)
	if err != nil {
		switch err {
		case store.ErrRequestNotExist:
			abortWithEncoding(c, http.StatusNotFound, errorRequestNotExist, err)
		case store.ErrRequestNotOpen:
			abortWithEncoding(c, http.StatusConflict, errorRequestNotOpen, err)
		case store.ErrInvalidStateChange:
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidStateChange, err)
		default:
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": help})
}

// helpRequestUpdates streams the committed transitions of one request as
// server-sent events, in commit order. The current state is replayed as
// the first event so a late subscriber is never behind.
func (s *Server) helpRequestUpdates(c *gin.Context) {
	id := c.Param("helpID")

	// subscribe before reading the snapshot so a transition committed
	// in between lands in the subscription instead of being lost; the
	// seq dedup below drops anything the snapshot already covers
	sub := s.hub.Subscribe(id)
	defer sub.Cancel()

	help, err := s.store.GetHelp(id)
	if err != nil {
		if err == store.ErrRequestNotExist {
			abortWithEncoding(c, http.StatusNotFound, errorRequestNotExist, err)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	current := schema.HelpRequestUpdate{
		HelpRequestID: help.ID.String(),
		Seq:           help.Seq,
		State:         help.State,
		Helper:        help.Helper,
	}
	c.SSEvent("update", current)
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
				// already replayed from the snapshot
				return true
			}
			lastSeq = update.Seq
			c.SSEvent("update", update)
			return !schema.IsTerminalHelpState(update.State)
		case <-clientGone:
			return false
		}
	})
}
