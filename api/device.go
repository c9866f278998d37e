package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/standby-inc/standby-api/geo"
	"github.com/standby-inc/standby-api/schema"
	"github.com/standby-inc/standby-api/store"
)

// deviceRegister binds a push token to the caller so background jobs can
// reach the device.
func (s *Server) deviceRegister(c *gin.Context) {
	accountNumber := c.GetString("requester")

	var params struct {
		PushToken string           `json:"push_token"`
		Location  *schema.Location `json:"location"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	if params.PushToken == "" {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	device, err := s.store.RegisterDevice(accountNumber, params.PushToken, params.Location)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	if params.Location != nil {
		s.syncProfileLocation(c, accountNumber, *params.Location)
	}

	c.JSON(http.StatusOK, gin.H{"result": device})
}

func (s *Server) deviceDelete(c *gin.Context) {
	accountNumber := c.GetString("requester")

	if err := s.store.DeleteDevice(accountNumber, c.Param("deviceID")); err != nil {
		if err == store.ErrDeviceNotExist {
			abortWithEncoding(c, http.StatusNotFound, errorDeviceNotExist)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

// deviceUpdateLocation refreshes the last known position of a device so
// nearby help broadcasts pick the right cohort.
func (s *Server) deviceUpdateLocation(c *gin.Context) {
	accountNumber := c.GetString("requester")

	var params struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	location := schema.Location{Latitude: params.Latitude, Longitude: params.Longitude}

	if err := s.store.UpdateDeviceLocation(accountNumber, c.Param("deviceID"), location); err != nil {
		if err == store.ErrDeviceNotExist {
			abortWithEncoding(c, http.StatusNotFound, errorDeviceNotExist)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	s.syncProfileLocation(c, accountNumber, location)

	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

// syncProfileLocation mirrors a device position into the presence
// profile. The country is best effort, an unresolved one is stored
// empty.
func (s *Server) syncProfileLocation(c *gin.Context, accountNumber string, location schema.Location) {
	country, err := geo.Country(location)
	if err != nil && err != geo.ErrResolverNotInitialized {
		c.Error(err)
	}

	if err := s.mongoStore.UpdateProfileLocation(accountNumber, location, country); err != nil {
		c.Error(err)
	}
}
