package expiry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/cadence/workflow"
	"go.uber.org/zap"

	"github.com/standby-inc/standby-api/schema"
)

const ExpiryCheckInterval = time.Minute

var activityOptions = workflow.ActivityOptions{
	ScheduleToStartTimeout: time.Minute,
	StartToCloseTimeout:    time.Minute,
	HeartbeatTimeout:       time.Second * 20,
}

// HelpRequestExpiryWorkflow periodically moves stale pending requests to
// expired and notifies the requesters whose requests were closed.
func (w *ExpiryWorker) HelpRequestExpiryWorkflow(ctx workflow.Context) error {

	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	logger := workflow.GetLogger(ctx)

	selector := workflow.NewSelector(ctx)

	timerCancelCtx, _ := workflow.WithCancel(ctx)
	timerFuture := workflow.NewTimer(timerCancelCtx, ExpiryCheckInterval)
	selector.AddFuture(timerFuture, func(f workflow.Future) {
		logger.Info("Start periodical help request expiry check")
	})

	selector.Select(ctx)

	expired := make([]schema.HelpRequest, 0)
	err := workflow.ExecuteActivity(ctx, w.ExpireHelpRequestsActivity).Get(ctx, &expired)
	if err != nil {
		logger.Error("Fail to expire help requests", zap.Error(err))
		sentry.CaptureException(err)
		return workflow.NewContinueAsNewError(ctx, w.HelpRequestExpiryWorkflow)
	}

	if len(expired) > 0 {
		err := workflow.ExecuteActivity(ctx, w.NotifyExpiredRequestsActivity, expired).Get(ctx, nil)
		if err != nil {
			logger.Error("Fail to notify requesters", zap.Error(err))
			sentry.CaptureException(err)
			return workflow.NewContinueAsNewError(ctx, w.HelpRequestExpiryWorkflow)
		}
	}

	return workflow.NewContinueAsNewError(ctx, w.HelpRequestExpiryWorkflow)
}
