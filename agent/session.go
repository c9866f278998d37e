package agent

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/standby-inc/standby-api/beacon"
	"github.com/standby-inc/standby-api/client"
	"github.com/standby-inc/standby-api/runner"
	"github.com/standby-inc/standby-api/schema"
)

const sessionLogPrefix = "agent"

// Session is the explicit, session-scoped context of one signed-in
// account on one device. All state a flow needs travels through it; no
// operation mutates globals.
type Session struct {
	AccountNumber string
	DisplayName   string

	kv       KeyValueStore
	api      *client.Client
	jobs     *runner.Runner
	reporter *Reporter
	observer *Observer

	broadcaster *beacon.Broadcaster
	scanner     *beacon.Scanner
}

func NewSession(accountNumber, displayName string, kv KeyValueStore, api *client.Client, radio beacon.Radio, jobs *runner.Runner) *Session {
	return &Session{
		AccountNumber: accountNumber,
		DisplayName:   displayName,
		kv:            kv,
		api:           api,
		jobs:          jobs,
		reporter:      NewReporter(kv, api, jobs),
		observer:      NewObserver(api),
		broadcaster:   beacon.NewBroadcaster(radio),
		scanner:       beacon.NewScanner(radio),
	}
}

// Reporter exposes the proximity verification reporter of this session.
func (s *Session) Reporter() *Reporter { return s.reporter }

// Observer exposes the live request observer of this session.
func (s *Session) Observer() *Observer { return s.observer }

// AskForHelp creates a help request, remembers it as locally pending,
// starts broadcasting its proximity token and observes its transitions.
// The broadcast ends on its own after the advertising budget; the
// request stays open on the server until decided or expired.
func (s *Session) AskForHelp(ctx context.Context, subject, needs, meetingPlace, contactInfo string, onUpdate func(schema.HelpRequestUpdate)) (*schema.HelpRequest, error) {
	help, err := s.api.CreateHelpRequest(ctx, subject, needs, meetingPlace, contactInfo)
	if err != nil {
		return nil, err
	}

	s.kv.Set(KeyPendingHelpRequestID, help.ID.String())

	events, err := s.broadcaster.Start(ctx, help.ProximityToken, s.DisplayName)
	if err != nil {
		return nil, err
	}
	go s.drainBroadcast(events)

	if _, err := s.observer.Observe(help.ID.String(), func(update schema.HelpRequestUpdate) {
		if schema.IsTerminalHelpState(update.State) {
			s.kv.Clear(KeyPendingHelpRequestID)
			s.broadcaster.Stop()
		}
		if onUpdate != nil {
			onUpdate(update)
		}
	}); err != nil {
		return nil, err
	}

	return help, nil
}

func (s *Session) drainBroadcast(events <-chan beacon.Status) {
	for status := range events {
		switch status.Kind {
		case beacon.StatusPermissionDenied:
			log.WithField("prefix", sessionLogPrefix).
				Warn("advertise permission denied, request stays discoverable only via the ledger")
		case beacon.StatusError:
			log.WithField("prefix", sessionLogPrefix).
				Warnf("advertising failed: %s", status.Err)
		}
	}
}

// HandlePush feeds an inbound, already-authenticated push payload into
// the matching flows. Malformed payloads are dropped.
func (s *Session) HandlePush(raw []byte) error {
	msg, err := schema.DecodePushMessage(raw)
	if err != nil {
		log.WithField("prefix", sessionLogPrefix).Warnf("dropping malformed push: %s", err)
		return err
	}

	switch msg.Kind {
	case schema.MessageKindProximityVerification:
		return s.StartVerification(msg.ProximityVerification.HelpRequestID, msg.ProximityVerification.ProximityToken)
	case schema.MessageKindHelpRequest:
		log.WithField("prefix", sessionLogPrefix).
			Infof("nearby help request %s from %s", msg.HelpRequest.HelpRequestID,
				msg.HelpRequest.RequesterProfile.Name)
		return nil
	case schema.MessageKindHelpMatched:
		// verification succeeded, the token served its purpose
		if id, ok := s.kv.Get(KeyPendingHelpRequestID); ok && id == msg.HelpMatched.HelpRequestID {
			s.broadcaster.Stop()
		}
		return nil
	case schema.MessageKindHelpExpired:
		if id, ok := s.kv.Get(KeyPendingHelpRequestID); ok && id == msg.HelpExpired.HelpRequestID {
			s.broadcaster.Stop()
			s.kv.Clear(KeyPendingHelpRequestID)
		}
		return nil
	default:
		return schema.ErrUnknownMessageKind
	}
}

// StartVerification runs a detached scan session for the request's token
// and reports the outcome. The scan runs as a background job under the
// runner's wall-clock budget: a decoded match reports true, a session
// that ends without one reports false, and either way delivery goes
// through the resilient path so a flaky network cannot lose the
// evidence.
func (s *Session) StartVerification(helpID, token string) error {
	if helpID == "" || token == "" {
		return fmt.Errorf("verification push without request id or token")
	}

	s.kv.Set(KeyPendingHelpRequestID, helpID)

	return s.jobs.Enqueue(runner.Job{
		Key:             "scan-" + helpID,
		Budget:          beacon.DefaultScanDuration,
		RequiresNetwork: false,
		Run: func(ctx context.Context) error {
			events, err := s.scanner.Start(ctx, token)
			if err != nil {
				return err
			}

			matched := false
			for status := range events {
				switch status.Kind {
				case beacon.StatusMessage:
					matched = true
					s.scanner.Stop()
				case beacon.StatusPermissionDenied:
					// terminal for this session, never retried
					log.WithField("prefix", sessionLogPrefix).
						Warn("scan permission denied")
					return nil
				case beacon.StatusError:
					return status.Err
				}
			}

			_, err = s.reporter.ReportInBackground(matched)
			return err
		},
	}, runner.KEEP)
}

// CancelHelp cancels the locally pending request, if any, and clears the
// local pending state.
func (s *Session) CancelHelp(ctx context.Context) error {
	helpID, ok := s.kv.Get(KeyPendingHelpRequestID)
	if !ok || helpID == "" {
		return nil
	}

	s.broadcaster.Stop()

	if err := s.api.UpdateHelpRequestState(ctx, helpID, schema.HELP_CANCELED); err != nil && err != client.ErrConflict {
		return err
	}

	s.kv.Clear(KeyPendingHelpRequestID)
	return nil
}

// CompleteHelp marks a matched request as completed.
func (s *Session) CompleteHelp(ctx context.Context, helpID string) error {
	if err := s.api.UpdateHelpRequestState(ctx, helpID, schema.HELP_COMPLETED); err != nil {
		return err
	}
	s.kv.Clear(KeyPendingHelpRequestID)
	return nil
}

// RegisterDevice registers this device for push delivery and remembers
// its id locally.
func (s *Session) RegisterDevice(ctx context.Context, pushToken string, location *schema.Location) error {
	deviceID, err := s.api.RegisterDevice(ctx, pushToken, location)
	if err != nil {
		return err
	}
	s.kv.Set(KeyDeviceID, deviceID)
	return nil
}

// SignOut stops radio sessions and clears the persisted local state.
func (s *Session) SignOut(ctx context.Context) {
	s.broadcaster.Stop()
	s.scanner.Stop()

	if deviceID, ok := s.kv.Get(KeyDeviceID); ok && deviceID != "" {
		if err := s.api.DeleteDevice(ctx, deviceID); err != nil {
			log.WithField("prefix", sessionLogPrefix).Warnf("delete device: %s", err)
		}
	}

	s.kv.Clear(KeyDeviceID)
	s.kv.Clear(KeyPendingHelpRequestID)
}
