package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// metricHelpRequests reports how many requests sit in each state.
func (s *Server) metricHelpRequests(c *gin.Context) {
	metrics, err := s.store.GetHelpMetrics()
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": metrics})
}
