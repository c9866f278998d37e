package agent

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/standby-inc/standby-api/client"
	"github.com/standby-inc/standby-api/runner"
)

const reporterLogPrefix = "reporter"

// Arbiter is the slice of the arbiter API the reporter needs.
type Arbiter interface {
	SubmitProximityVerification(ctx context.Context, helpID string, outcome bool) error
}

// ReportResult tells the caller what happened to its evidence.
type ReportResult int

const (
	// ReportSkipped - no locally pending request, nothing to report.
	ReportSkipped ReportResult = iota
	// ReportDelivered - the arbiter accepted the evidence.
	ReportDelivered
	// ReportAlreadyDecided - the arbiter rejected with a conflict;
	// someone else already decided and our evidence was discarded.
	ReportAlreadyDecided
	// ReportEnqueued - the evidence was handed to the background
	// runner for resilient delivery.
	ReportEnqueued
)

// Reporter delivers the local scan outcome to the arbiter. Idempotence
// comes from the arbiter's monotonic state machine, not from client-side
// deduplication, so reporting the same outcome twice is harmless.
type Reporter struct {
	kv      KeyValueStore
	arbiter Arbiter
	runner  *runner.Runner
}

func NewReporter(kv KeyValueStore, arbiter Arbiter, jobs *runner.Runner) *Reporter {
	return &Reporter{
		kv:      kv,
		arbiter: arbiter,
		runner:  jobs,
	}
}

// Report submits the outcome once, from an interactive context. A missing
// pending request id is a normal condition and yields ReportSkipped with
// no remote call. A conflict means another device already decided; the
// evidence is discarded silently.
func (r *Reporter) Report(ctx context.Context, outcome bool) (ReportResult, error) {
	helpID, ok := r.kv.Get(KeyPendingHelpRequestID)
	if !ok || helpID == "" {
		return ReportSkipped, nil
	}

	err := r.arbiter.SubmitProximityVerification(ctx, helpID, outcome)
	switch err {
	case nil:
		return ReportDelivered, nil
	case client.ErrConflict:
		log.WithField("prefix", reporterLogPrefix).
			Debugf("request %s already decided elsewhere, dropping evidence", helpID)
		return ReportAlreadyDecided, nil
	default:
		return 0, err
	}
}

// ReportInBackground hands the outcome to the background runner for
// at-least-once delivery with bounded retries. Safe to call when no
// request is pending.
func (r *Reporter) ReportInBackground(outcome bool) (ReportResult, error) {
	helpID, ok := r.kv.Get(KeyPendingHelpRequestID)
	if !ok || helpID == "" {
		return ReportSkipped, nil
	}

	err := r.runner.Enqueue(runner.Job{
		Key:             "deliver-evidence-" + helpID,
		RequiresNetwork: true,
		Expedited:       true,
		Budget:          30 * time.Second,
		Run: func(ctx context.Context) error {
			err := r.arbiter.SubmitProximityVerification(ctx, helpID, outcome)
			if err == client.ErrConflict {
				// someone else already decided
				return nil
			}
			return err
		},
	}, runner.KEEP)
	if err != nil {
		return 0, err
	}

	return ReportEnqueued, nil
}
