package background

import (
	"github.com/standby-inc/standby-api/schema"
)

const (
	BROADCAST_NEW_HELP  = "763b85e1-0675-4277-ae33-7ba1de47b85c"
	NOTIFY_HELP_MATCHED = "abf98dc0-311f-4a1b-99a0-c8d4fe1cc9cf"
	NOTIFY_HELP_EXPIRED = "4d36ad4f-13c5-4412-8640-2d5646e8ab56"
)

// BroadcastNewHelp is a background job to ask the dynamic corhort of a
// requester to verify proximity. The push carries the request's token so
// receiving devices know what to scan for.
func (m *BackgroundManager) BroadcastNewHelp(helpID, proximityToken string, accountNumbers []string) error {
	return m.notifier.NotifyAccountsByTemplate(accountNumbers, BROADCAST_NEW_HELP, map[string]interface{}{
		"kind": schema.MessageKindProximityVerification,
		"data": map[string]interface{}{
			"help_request_id": helpID,
			"proximity_token": proximityToken,
		},
	})
}

// NotifyHelpMatched is a background job to tell a requester someone
// nearby was confirmed for the request
func (m *BackgroundManager) NotifyHelpMatched(helpID string, accountNumber string) error {
	accountNumbers := []string{accountNumber}
	return m.notifier.NotifyAccountsByTemplate(accountNumbers, NOTIFY_HELP_MATCHED, map[string]interface{}{
		"kind": schema.MessageKindHelpMatched,
		"data": map[string]interface{}{
			"help_request_id": helpID,
		},
	})
}

// ExpireHelpRequests is a background job to close out stale requests and
// notify their owners
func (m *BackgroundManager) ExpireHelpRequests() error {
	expired, err := m.store.ExpireHelps()
	if err != nil {
		return err
	}

	for _, help := range expired {
		if err := m.notifier.NotifyAccountsByTemplate([]string{help.Requester}, NOTIFY_HELP_EXPIRED, map[string]interface{}{
			"kind": schema.MessageKindHelpExpired,
			"data": map[string]interface{}{
				"help_request_id": help.ID.String(),
			},
		}); err != nil {
			return err
		}
	}

	return nil
}
