package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standby-inc/standby-api/schema"
)

// InmemoryStore is a StandbyCore backed by process memory. It keeps the
// exact transition semantics of the SQL store, with a mutex playing the
// role of the conditional UPDATE, and is used by tests and the local
// simulator where no postgres is available.
type InmemoryStore struct {
	mu sync.Mutex

	accounts  map[string]*schema.Account
	helps     map[string]*schema.HelpRequest
	devices   map[string]*schema.Device
	locations map[string]schema.Location

	publisher      TransitionPublisher
	failOnNegative bool

	// expireAfter mirrors the 12 hour window of the SQL store but is
	// adjustable so expiry is testable without waiting.
	expireAfter time.Duration
}

func NewInmemoryStore(publisher TransitionPublisher, failOnNegative bool) *InmemoryStore {
	return &InmemoryStore{
		accounts:       map[string]*schema.Account{},
		helps:          map[string]*schema.HelpRequest{},
		devices:        map[string]*schema.Device{},
		locations:      map[string]schema.Location{},
		publisher:      publisher,
		failOnNegative: failOnNegative,
		expireAfter:    12 * time.Hour,
	}
}

// SetExpireAfter overrides the request expiry window.
func (s *InmemoryStore) SetExpireAfter(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireAfter = d
}

func (s *InmemoryStore) Ping() error { return nil }

func (s *InmemoryStore) publish(req *schema.HelpRequest) {
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

func (s *InmemoryStore) CreateAccount(accountNumber, pubKey, name string, metadata map[string]interface{}) (*schema.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountNumber]; ok {
		return nil, ErrAccountTaken
	}

	a := &schema.Account{
		AccountNumber: accountNumber,
		PubKey:        pubKey,
		Profile: schema.AccountProfile{
			ID:            uuid.New(),
			AccountNumber: accountNumber,
			Name:          name,
			Metadata:      schema.AccountMetadata(metadata),
			State: schema.ActivityState{
				LastActiveTime: time.Now(),
			},
		},
		CreatedAt: time.Now(),
	}
	s.accounts[accountNumber] = a
	return a, nil
}

func (s *InmemoryStore) GetAccount(accountNumber string) (*schema.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountNumber]
	if !ok {
		return nil, ErrAccountNotExist
	}
	return a, nil
}

func (s *InmemoryStore) UpdateAccountMetadata(accountNumber string, metadata map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountNumber]
	if !ok {
		return ErrAccountNotExist
	}
	if a.Profile.Metadata == nil {
		a.Profile.Metadata = schema.AccountMetadata{}
	}
	for k, v := range metadata {
		a.Profile.Metadata[k] = v
	}
	return nil
}

func (s *InmemoryStore) UpdateAccountGeoPosition(accountNumber string, latitude, longitude float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountNumber]
	if !ok {
		return ErrAccountNotExist
	}
	loc := schema.Location{Latitude: latitude, Longitude: longitude}
	a.Profile.State.LastLocation = &loc
	s.locations[accountNumber] = loc
	return nil
}

func (s *InmemoryStore) DeleteAccount(accountNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, accountNumber)
	delete(s.locations, accountNumber)
	for id, d := range s.devices {
		if d.Owner == accountNumber {
			delete(s.devices, id)
		}
	}
	return nil
}

func (s *InmemoryStore) RequestHelp(accountNumber, requesterName, subject, needs, meetingPlace, contactInfo string) (*schema.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.helps {
		if h.Requester == accountNumber && !schema.IsTerminalHelpState(h.State) {
			return nil, ErrMultipleRequestMade
		}
	}

	h := &schema.HelpRequest{
		ID:             uuid.New(),
		Requester:      accountNumber,
		RequesterName:  requesterName,
		ProximityToken: uuid.New().String(),
		Subject:        subject,
		Needs:          needs,
		MeetingPlace:   meetingPlace,
		ContactInfo:    contactInfo,
		State:          schema.HELP_PENDING,
		CreatedAt:      time.Now(),
	}
	s.helps[h.ID.String()] = h
	return s.copyHelp(h), nil
}

func (s *InmemoryStore) copyHelp(h *schema.HelpRequest) *schema.HelpRequest {
	c := *h
	return &c
}

func (s *InmemoryStore) GetHelp(helpID string) (*schema.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.helps[helpID]
	if !ok {
		return nil, ErrRequestNotExist
	}
	return s.copyHelp(h), nil
}

func (s *InmemoryStore) ListHelps(accountNumber string, latitude, longitude float64, count int64) ([]schema.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	helps := []schema.HelpRequest{}
	for _, h := range s.helps {
		if time.Since(h.CreatedAt) > s.expireAfter {
			continue
		}
		if h.Requester == accountNumber || h.Helper == accountNumber || h.State == schema.HELP_PENDING {
			helps = append(helps, *s.copyHelp(h))
		}
	}
	return helps, nil
}

func (s *InmemoryStore) HandleProximityVerification(evidence schema.ProximityEvidence) (*schema.HelpRequest, error) {
	s.mu.Lock()

	h, ok := s.helps[evidence.HelpRequestID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrRequestNotExist
	}

	if !evidence.Outcome && !s.failOnNegative {
		// the supporter may retry within the scan session budget
		c := s.copyHelp(h)
		s.mu.Unlock()
		return c, nil
	}

	if h.State != schema.HELP_PENDING || h.Requester == evidence.AccountNumber {
		s.mu.Unlock()
		return nil, ErrRequestNotOpen
	}

	if evidence.Outcome {
		h.State = schema.HELP_MATCHED
		h.Helper = evidence.AccountNumber
	} else {
		h.State = schema.HELP_FAILED
	}
	h.Seq++

	c := s.copyHelp(h)
	s.mu.Unlock()

	s.publish(c)
	return c, nil
}

func (s *InmemoryStore) UpdateHelpState(accountNumber, helpID, state string) (*schema.HelpRequest, error) {
	s.mu.Lock()

	h, ok := s.helps[helpID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrRequestNotExist
	}

	allowed := false
	switch state {
	case schema.HELP_COMPLETED:
		allowed = h.State == schema.HELP_MATCHED &&
			(h.Requester == accountNumber || h.Helper == accountNumber)
	case schema.HELP_CANCELED:
		allowed = (h.State == schema.HELP_PENDING || h.State == schema.HELP_MATCHED) &&
			h.Requester == accountNumber
	default:
		s.mu.Unlock()
		return nil, ErrInvalidStateChange
	}

	if !allowed {
		s.mu.Unlock()
		return nil, ErrRequestNotOpen
	}

	h.State = state
	h.Seq++

	c := s.copyHelp(h)
	s.mu.Unlock()

	s.publish(c)
	return c, nil
}

func (s *InmemoryStore) ExpireHelps() ([]schema.HelpRequest, error) {
	s.mu.Lock()

	expired := []schema.HelpRequest{}
	for _, h := range s.helps {
		if h.State == schema.HELP_PENDING && time.Since(h.CreatedAt) >= s.expireAfter {
			h.State = schema.HELP_EXPIRED
			h.Seq++
			expired = append(expired, *s.copyHelp(h))
		}
	}
	s.mu.Unlock()

	for i := range expired {
		s.publish(&expired[i])
	}
	return expired, nil
}

func (s *InmemoryStore) RegisterDevice(owner, pushToken string, location *schema.Location) (*schema.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &schema.Device{
		ID:        uuid.New(),
		Owner:     owner,
		PushToken: pushToken,
		CreatedAt: time.Now(),
	}
	s.devices[d.ID.String()] = d
	if location != nil {
		s.locations[owner] = *location
	}
	return d, nil
}

func (s *InmemoryStore) DeleteDevice(owner, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[deviceID]
	if !ok || d.Owner != owner {
		return ErrDeviceNotExist
	}
	delete(s.devices, deviceID)
	return nil
}

func (s *InmemoryStore) UpdateDeviceLocation(owner, deviceID string, location schema.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[deviceID]
	if !ok || d.Owner != owner {
		return ErrDeviceNotExist
	}
	s.locations[owner] = location
	return nil
}

func (s *InmemoryStore) GetHelpMetrics() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics := map[string]int64{}
	for _, h := range s.helps {
		metrics[h.State]++
	}
	return metrics, nil
}
