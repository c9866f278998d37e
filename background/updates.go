package background

import (
	"github.com/RichardKnop/machinery/v1"
	"github.com/RichardKnop/machinery/v1/tasks"
	log "github.com/sirupsen/logrus"

	"github.com/standby-inc/standby-api/schema"
	"github.com/standby-inc/standby-api/store"
)

// UpdatesQueue is a dedicated queue the API process consumes so that
// transitions committed by worker processes still reach its SSE
// subscribers.
const UpdatesQueue = "standby_updates"

// PublishHelpUpdateTaskName names the task carrying one forwarded
// transition.
const PublishHelpUpdateTaskName = "publish_help_update"

// QueuePublisher is the store.TransitionPublisher of worker processes:
// instead of a local hub it forwards every committed transition over the
// task queue to the API process.
type QueuePublisher struct {
	server *machinery.Server
}

func NewQueuePublisher(server *machinery.Server) *QueuePublisher {
	return &QueuePublisher{server: server}
}

// Publish forwards one committed transition. Delivery failures are
// logged, not returned: the commit already happened and the observer
// stream degrades to its snapshot-on-reconnect behavior.
func (p *QueuePublisher) Publish(update schema.HelpRequestUpdate) {
	if _, err := p.server.SendTask(&tasks.Signature{
		Name:       PublishHelpUpdateTaskName,
		RoutingKey: UpdatesQueue,
		Args: []tasks.Arg{
			{Type: "string", Value: update.HelpRequestID},
			{Type: "int64", Value: int64(update.Seq)},
			{Type: "string", Value: update.State},
			{Type: "string", Value: update.Helper},
		},
	}); err != nil {
		log.WithField("prefix", "background").
			Errorf("fail to forward transition of request %s: %s", update.HelpRequestID, err)
	}
}

// PublishHelpUpdate returns the task body the API process registers
// against UpdatesQueue to feed forwarded transitions into its hub.
func PublishHelpUpdate(publisher store.TransitionPublisher) func(helpID string, seq int64, state, helper string) error {
	return func(helpID string, seq int64, state, helper string) error {
		publisher.Publish(schema.HelpRequestUpdate{
			HelpRequestID: helpID,
			Seq:           uint64(seq),
			State:         state,
			Helper:        helper,
		})
		return nil
	}
}
