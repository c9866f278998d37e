package expiry

import (
	"net/http"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/cadence/.gen/go/cadence/workflowserviceclient"
	"go.uber.org/cadence/activity"
	"go.uber.org/cadence/worker"
	"go.uber.org/cadence/workflow"
	"go.uber.org/zap"

	"github.com/standby-inc/standby-api/background"
	"github.com/standby-inc/standby-api/external/onesignal"
	"github.com/standby-inc/standby-api/store"
)

const TaskListName = "standby-expiry-tasks"

// ExpiryWorker closes out pending help requests that outlived their
// window and tells the owners about it.
type ExpiryWorker struct {
	notifier background.NotificationCenter
	domain   string
	store    store.StandbyCore
}

func NewExpiryWorker(domain string, appID string, standbyCore store.StandbyCore) *ExpiryWorker {
	o := onesignal.NewClient(&http.Client{
		Timeout: 15 * time.Second,
	})

	return &ExpiryWorker{
		notifier: background.NewOnesignalNotificationCenter(appID, o),
		domain:   domain,
		store:    standbyCore,
	}
}

func (w *ExpiryWorker) Register() {
	workflow.RegisterWithOptions(w.HelpRequestExpiryWorkflow, workflow.RegisterOptions{Name: "HelpRequestExpiryWorkflow"})

	activity.RegisterWithOptions(w.ExpireHelpRequestsActivity, activity.RegisterOptions{Name: "ExpireHelpRequestsActivity"})
	activity.RegisterWithOptions(w.NotifyExpiredRequestsActivity, activity.RegisterOptions{Name: "NotifyExpiredRequestsActivity"})
}

func (w *ExpiryWorker) Start(service workflowserviceclient.Interface, logger *zap.Logger) {
	// TaskListName identifies set of client workflows, activities, and workers.
	// It could be your group or client or application name.
	workerOptions := worker.Options{
		Logger:       logger,
		MetricsScope: tally.NewTestScope(TaskListName, map[string]string{}),
	}

	worker := worker.New(
		service,
		w.domain,
		TaskListName,
		workerOptions)

	if err := worker.Start(); err != nil {
		panic("Failed to start worker")
	}

	logger.Info("Started Worker.", zap.String("worker", TaskListName))

	select {}
}
