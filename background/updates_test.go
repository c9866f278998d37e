package background

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standby-inc/standby-api/pubsub"
	"github.com/standby-inc/standby-api/schema"
)

func TestPublishHelpUpdateFeedsHub(t *testing.T) {
	hub := pubsub.NewHub()
	sub := hub.Subscribe("help-1")
	defer sub.Cancel()

	task := PublishHelpUpdate(hub)
	assert.NoError(t, task("help-1", 2, schema.HELP_EXPIRED, ""))

	update := <-sub.C
	assert.Equal(t, "help-1", update.HelpRequestID)
	assert.Equal(t, uint64(2), update.Seq)
	assert.Equal(t, schema.HELP_EXPIRED, update.State)
}
