package schema

import (
	"encoding/json"
	"fmt"
)

const (
	MessageKindProximityVerification = "proximity-verification"
	MessageKindHelpRequest           = "help-request"
	MessageKindHelpMatched           = "help-matched"
	MessageKindHelpExpired           = "help-expired"
)

var ErrUnknownMessageKind = fmt.Errorf("unknown push message kind")

// ProximityVerificationMessage asks a supporter device to start a scan
// session for the carried token and report the outcome.
type ProximityVerificationMessage struct {
	HelpRequestID  string `json:"help_request_id"`
	ProximityToken string `json:"proximity_token"`
}

// HelpRequestMessage announces a new nearby request to candidate supporters.
type HelpRequestMessage struct {
	HelpRequestID    string `json:"help_request_id"`
	RequesterProfile struct {
		AccountNumber string `json:"account_number"`
		Name          string `json:"name"`
	} `json:"requester_profile"`
}

// HelpMatchedMessage tells the requester a nearby supporter was
// confirmed for the request.
type HelpMatchedMessage struct {
	HelpRequestID string `json:"help_request_id"`
}

// HelpExpiredMessage tells the requester the request was closed without
// a match.
type HelpExpiredMessage struct {
	HelpRequestID string `json:"help_request_id"`
}

// PushMessage is the envelope every inbound push payload is decoded into.
// Exactly one of the typed fields is set, selected by Kind.
type PushMessage struct {
	Kind                  string
	ProximityVerification *ProximityVerificationMessage
	HelpRequest           *HelpRequestMessage
	HelpMatched           *HelpMatchedMessage
	HelpExpired           *HelpExpiredMessage
}

// DecodePushMessage parses a raw push payload once at the boundary.
// Payloads with an unknown kind or a body that does not match the kind's
// schema are rejected so callers can drop them as malformed.
func DecodePushMessage(raw []byte) (*PushMessage, error) {
	var envelope struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	msg := PushMessage{Kind: envelope.Kind}

	switch envelope.Kind {
	case MessageKindProximityVerification:
		var m ProximityVerificationMessage
		if err := json.Unmarshal(envelope.Data, &m); err != nil {
			return nil, err
		}
		if m.HelpRequestID == "" {
			return nil, fmt.Errorf("proximity verification message without help request id")
		}
		msg.ProximityVerification = &m
	case MessageKindHelpRequest:
		var m HelpRequestMessage
		if err := json.Unmarshal(envelope.Data, &m); err != nil {
			return nil, err
		}
		if m.HelpRequestID == "" {
			return nil, fmt.Errorf("help request message without help request id")
		}
		msg.HelpRequest = &m
	case MessageKindHelpMatched:
		var m HelpMatchedMessage
		if err := json.Unmarshal(envelope.Data, &m); err != nil {
			return nil, err
		}
		if m.HelpRequestID == "" {
			return nil, fmt.Errorf("help matched message without help request id")
		}
		msg.HelpMatched = &m
	case MessageKindHelpExpired:
		var m HelpExpiredMessage
		if err := json.Unmarshal(envelope.Data, &m); err != nil {
			return nil, err
		}
		if m.HelpRequestID == "" {
			return nil, fmt.Errorf("help expired message without help request id")
		}
		msg.HelpExpired = &m
	default:
		return nil, ErrUnknownMessageKind
	}

	return &msg, nil
}
