package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"

	"github.com/standby-inc/standby-api/consts"
	"github.com/standby-inc/standby-api/schema"
)

var (
	ErrRequestNotExist     = fmt.Errorf("the request does not exist")
	ErrAccountNotExist     = fmt.Errorf("the account is not registered")
	ErrAccountTaken        = fmt.Errorf("the account has already been registered")
	ErrRequestNotOpen      = fmt.Errorf("the request is already decided or not open for you")
	ErrMultipleRequestMade = fmt.Errorf("making multiple requests is not allowed")
	ErrInvalidStateChange  = fmt.Errorf("the requested state change is not allowed")
)

// RequestHelp creates a help entry in PENDING state and issues a fresh
// proximity token for it. Tokens are never reused across requests.
func (s *StandbyStore) RequestHelp(accountNumber, requesterName, subject, needs, meetingPlace, contactInfo string) (*schema.HelpRequest, error) {
	help := schema.HelpRequest{
		Requester:      accountNumber,
		RequesterName:  requesterName,
		ProximityToken: uuid.New().String(),
		Subject:        subject,
		Needs:          needs,
		MeetingPlace:   meetingPlace,
		ContactInfo:    contactInfo,
		State:          schema.HELP_PENDING,
	}

	if err := s.ormDB.Create(&help).Error; err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrMultipleRequestMade
		}
		return nil, err
	}
	return &help, nil
}

// ListHelps first queries accounts within 50KM and returns lists of help
// requests by those accounts
func (s *StandbyStore) ListHelps(accountNumber string, latitude, longitude float64, count int64) ([]schema.HelpRequest, error) {
	helps := []schema.HelpRequest{}

	accounts, err := s.mongo.NearestDistance(consts.CORHORT_DISTANCE_RANGE, schema.Location{
		Latitude:  latitude,
		Longitude: longitude,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ormDB.Raw(
		`SELECT * FROM help_requests
		JOIN unnest(?::text[]) WITH ORDINALITY account(requester, index) USING (requester)
		WHERE (requester = ? OR helper = ? OR state = ?) AND created_at > now() - INTERVAL '12 hours'
		ORDER BY account.index, state;`, // HARDCODED: 12 hours of expiration
		pq.Array(accounts),
		accountNumber,
		accountNumber,
		schema.HELP_PENDING,
	).Scan(&helps).Error; err != nil {
		return nil, err
	}

	return helps, nil
}

func (s *StandbyStore) GetHelp(helpID string) (*schema.HelpRequest, error) {
	var help schema.HelpRequest

	if err := s.ormDB.Where("id = ?", helpID).First(&help).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrRequestNotExist
		}
		return nil, err
	}

	return &help, nil
}

// HandleProximityVerification arbitrates a scan outcome. A true outcome
// moves the request from PENDING to MATCHED and records the helper. The
// state check and the transition are a single conditional UPDATE so that
// when two supporters race, exactly one wins and the other observes
// ErrRequestNotOpen. A false outcome leaves the request open for a
// re-scan unless the store is configured to fail on negative evidence.
func (s *StandbyStore) HandleProximityVerification(evidence schema.ProximityEvidence) (*schema.HelpRequest, error) {
	if _, err := s.GetHelp(evidence.HelpRequestID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"state":  schema.HELP_MATCHED,
		"helper": evidence.AccountNumber,
		"seq":    gorm.Expr("seq + 1"),
	}

	if !evidence.Outcome {
		if !s.failOnNegative {
			// the supporter may retry within the scan session budget
			return s.GetHelp(evidence.HelpRequestID)
		}
		updates = map[string]interface{}{
			"state": schema.HELP_FAILED,
			"seq":   gorm.Expr("seq + 1"),
		}
	}

	result := s.ormDB.Model(schema.HelpRequest{}).
		Where("id = ? AND requester != ? AND state = ?", evidence.HelpRequestID, evidence.AccountNumber, schema.HELP_PENDING).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrRequestNotOpen
	}

	help, err := s.GetHelp(evidence.HelpRequestID)
	if err != nil {
		return nil, err
	}

	s.publish(help)

	return help, nil
}

// UpdateHelpState moves a request to COMPLETED or CANCELED on behalf of a
// participant. COMPLETED is only reachable from MATCHED by the requester
// or the matched helper. CANCELED is reachable from PENDING or MATCHED by
// the requester. Terminal states are immutable; attempts against them
// report ErrRequestNotOpen.
func (s *StandbyStore) UpdateHelpState(accountNumber, helpID, state string) (*schema.HelpRequest, error) {
	if _, err := s.GetHelp(helpID); err != nil {
		return nil, err
	}

	var result *gorm.DB

	switch state {
	case schema.HELP_COMPLETED:
		result = s.ormDB.Model(schema.HelpRequest{}).
			Where("id = ? AND state = ? AND (requester = ? OR helper = ?)", helpID, schema.HELP_MATCHED, accountNumber, accountNumber).
			Updates(map[string]interface{}{
				"state": schema.HELP_COMPLETED,
				"seq":   gorm.Expr("seq + 1"),
			})
	case schema.HELP_CANCELED:
		result = s.ormDB.Model(schema.HelpRequest{}).
			Where("id = ? AND state IN (?) AND requester = ?", helpID, []string{schema.HELP_PENDING, schema.HELP_MATCHED}, accountNumber).
			Updates(map[string]interface{}{
				"state": schema.HELP_CANCELED,
				"seq":   gorm.Expr("seq + 1"),
			})
	default:
		return nil, ErrInvalidStateChange
	}

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrRequestNotOpen
	}

	help, err := s.GetHelp(helpID)
	if err != nil {
		return nil, err
	}

	s.publish(help)

	return help, nil
}

// ExpireHelps expires help requests that are older than 12 hours and
// returns the expired rows so callers can notify their owners.
func (s *StandbyStore) ExpireHelps() ([]schema.HelpRequest, error) {
	expired := []schema.HelpRequest{}

	if err := s.ormDB.Raw(
		`UPDATE help_requests SET state = ?, seq = seq + 1
		WHERE state = ? AND created_at <= now() - interval '12 hours'
		RETURNING *;`,
		schema.HELP_EXPIRED,
		schema.HELP_PENDING,
	).Scan(&expired).Error; err != nil {
		return nil, err
	}

	for i := range expired {
		s.publish(&expired[i])
	}

	return expired, nil
}

// GetHelpMetrics counts help requests grouped by state.
func (s *StandbyStore) GetHelpMetrics() (map[string]int64, error) {
	rows, err := s.ormDB.Raw(`SELECT state, count(*) FROM help_requests GROUP BY state`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := map[string]int64{}
	for rows.Next() {
		var state string
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		metrics[state] = count
	}

	return metrics, rows.Err()
}
