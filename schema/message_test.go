package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeProximityVerificationMessage(t *testing.T) {
	raw := []byte(`{"kind":"proximity-verification","data":{"help_request_id":"help-1","proximity_token":"token-1"}}`)

	msg, err := DecodePushMessage(raw)
	assert.NoError(t, err)
	assert.Equal(t, MessageKindProximityVerification, msg.Kind)
	assert.NotNil(t, msg.ProximityVerification)
	assert.Equal(t, "help-1", msg.ProximityVerification.HelpRequestID)
	assert.Equal(t, "token-1", msg.ProximityVerification.ProximityToken)
	assert.Nil(t, msg.HelpRequest)
}

func TestDecodeHelpRequestMessage(t *testing.T) {
	raw := []byte(`{"kind":"help-request","data":{"help_request_id":"help-1","requester_profile":{"account_number":"acc-1","name":"Alice"}}}`)

	msg, err := DecodePushMessage(raw)
	assert.NoError(t, err)
	assert.Equal(t, MessageKindHelpRequest, msg.Kind)
	assert.NotNil(t, msg.HelpRequest)
	assert.Equal(t, "Alice", msg.HelpRequest.RequesterProfile.Name)
}

func TestDecodeHelpMatchedAndExpiredMessages(t *testing.T) {
	msg, err := DecodePushMessage([]byte(`{"kind":"help-matched","data":{"help_request_id":"help-1"}}`))
	assert.NoError(t, err)
	assert.Equal(t, MessageKindHelpMatched, msg.Kind)
	assert.Equal(t, "help-1", msg.HelpMatched.HelpRequestID)

	msg, err = DecodePushMessage([]byte(`{"kind":"help-expired","data":{"help_request_id":"help-1"}}`))
	assert.NoError(t, err)
	assert.Equal(t, MessageKindHelpExpired, msg.Kind)
	assert.Equal(t, "help-1", msg.HelpExpired.HelpRequestID)

	_, err = DecodePushMessage([]byte(`{"kind":"help-expired","data":{}}`))
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedMessages(t *testing.T) {
	_, err := DecodePushMessage([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodePushMessage([]byte(`{"kind":"mystery","data":{}}`))
	assert.Equal(t, ErrUnknownMessageKind, err)

	_, err = DecodePushMessage([]byte(`{"kind":"proximity-verification","data":{"proximity_token":"token-1"}}`))
	assert.Error(t, err)

	_, err = DecodePushMessage([]byte(`{"kind":"proximity-verification","data":"nope"}`))
	assert.Error(t, err)
}
