package store

import (
	"github.com/jinzhu/gorm"

	"github.com/standby-inc/standby-api/schema"
)

// TransitionPublisher receives every committed help request transition,
// in commit order per request.
type TransitionPublisher interface {
	Publish(update schema.HelpRequestUpdate)
}

// standby main datastore
type StandbyCore interface {
	Ping() error

	// Account
	CreateAccount(accountNumber, pubKey, name string, metadata map[string]interface{}) (*schema.Account, error)
	GetAccount(accountNumber string) (*schema.Account, error)
	UpdateAccountMetadata(accountNumber string, metadata map[string]interface{}) error
	UpdateAccountGeoPosition(accountNumber string, latitude, longitude float64) error
	DeleteAccount(accountNumber string) error

	// Help requests
	RequestHelp(accountNumber, requesterName, subject, needs, meetingPlace, contactInfo string) (*schema.HelpRequest, error)
	GetHelp(helpID string) (*schema.HelpRequest, error)
	ListHelps(accountNumber string, latitude, longitude float64, count int64) ([]schema.HelpRequest, error)
	HandleProximityVerification(evidence schema.ProximityEvidence) (*schema.HelpRequest, error)
	UpdateHelpState(accountNumber, helpID, state string) (*schema.HelpRequest, error)
	ExpireHelps() ([]schema.HelpRequest, error)
	GetHelpMetrics() (map[string]int64, error)

	// Devices
	RegisterDevice(owner, pushToken string, location *schema.Location) (*schema.Device, error)
	DeleteDevice(owner, deviceID string) error
	UpdateDeviceLocation(owner, deviceID string, location schema.Location) error
}

// StandbyStore is an implementation of StandbyCore
type StandbyStore struct {
	ormDB     *gorm.DB
	mongo     MongoStore
	publisher TransitionPublisher

	// failOnNegative turns a false proximity outcome into a FAILED
	// transition instead of leaving the request open for a re-scan.
	failOnNegative bool
}

func NewStandbyStore(ormDB *gorm.DB, mongo MongoStore, publisher TransitionPublisher, failOnNegative bool) *StandbyStore {
	return &StandbyStore{
		ormDB:          ormDB,
		mongo:          mongo,
		publisher:      publisher,
		failOnNegative: failOnNegative,
	}
}

// Ping is to check the storage health status
func (s *StandbyStore) Ping() error {
	return s.ormDB.DB().Ping()
}

func (s *StandbyStore) publish(req *schema.HelpRequest) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(schema.HelpRequestUpdate{
		HelpRequestID: req.ID.String(),
		Seq:           req.Seq,
		State:         req.State,
		Helper:        req.Helper,
	})
}
