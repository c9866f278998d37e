package schema

import (
	"time"

	"github.com/google/uuid"
)

const (
	HELP_PENDING   = "PENDING"
	HELP_MATCHED   = "MATCHED"
	HELP_COMPLETED = "COMPLETED"
	HELP_FAILED    = "FAILED"
	HELP_EXPIRED   = "EXPIRED"
	HELP_CANCELED  = "CANCELED"
)

// helpTerminalStates are the states a request can never leave.
var helpTerminalStates = map[string]struct{}{
	HELP_COMPLETED: {},
	HELP_FAILED:    {},
	HELP_EXPIRED:   {},
	HELP_CANCELED:  {},
}

// IsTerminalHelpState reports whether a state accepts no further transitions.
func IsTerminalHelpState(state string) bool {
	_, ok := helpTerminalStates[state]
	return ok
}

type HelpRequest struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key" sql:"default:uuid_generate_v4()"`
	Requester      string    `json:"requester"`
	RequesterName  string    `json:"requester_name"`
	Helper         string    `json:"helper"`
	ProximityToken string    `json:"proximity_token" gorm:"unique_index"`
	Subject        string    `json:"subject"`
	Needs          string    `json:"exact_needs"`
	MeetingPlace   string    `json:"meeting_location"`
	ContactInfo    string    `json:"contact_info"`
	State          string    `json:"state" sql:"default:'PENDING'"`
	Seq            uint64    `json:"seq" sql:"default:0"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProximityEvidence is a scan outcome a device submits for arbitration.
// It lives only until the arbiter accepts or rejects it.
type ProximityEvidence struct {
	HelpRequestID string    `json:"help_request_id"`
	AccountNumber string    `json:"account_number"`
	Outcome       bool      `json:"outcome"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// HelpRequestUpdate is one committed state transition of a help request.
// Seq increases by one for every transition of the same request so that
// observers can verify they see changes in commit order.
type HelpRequestUpdate struct {
	HelpRequestID string    `json:"help_request_id"`
	Seq           uint64    `json:"seq"`
	State         string    `json:"state"`
	Helper        string    `json:"helper,omitempty"`
	CommittedAt   time.Time `json:"committed_at"`
}
