package expiry

import (
	"context"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/cadence/activity"
	"go.uber.org/zap"

	"github.com/standby-inc/standby-api/background"
	"github.com/standby-inc/standby-api/external/onesignal"
	"github.com/standby-inc/standby-api/schema"
	"github.com/standby-inc/standby-api/utils"
)

// ExpireHelpRequestsActivity closes out stale pending requests and
// returns the rows that were expired by this run.
func (w *ExpiryWorker) ExpireHelpRequestsActivity(ctx context.Context) ([]schema.HelpRequest, error) {
	logger := activity.GetLogger(ctx)

	expired, err := w.store.ExpireHelps()
	if err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		logger.Info("Expired help requests", zap.Int("count", len(expired)))
	}

	return expired, nil
}

// expiredRequestMessage returns headings and contents in a map where its
// keys are languages
func expiredRequestMessage() (map[string]string, map[string]string, error) {
	headings := map[string]string{}
	contents := map[string]string{}

	for key, lang := range background.OneSignalLanguageCode {
		loc := utils.NewLocalizer(lang)

		heading, err := loc.Localize(&i18n.LocalizeConfig{
			MessageID: "notification.help_expired.heading",
		})
		if err != nil {
			return nil, nil, err
		}

		headings[key] = heading

		content, err := loc.Localize(&i18n.LocalizeConfig{
			MessageID: "notification.help_expired.content",
		})
		if err != nil {
			return nil, nil, err
		}

		contents[key] = content
	}

	return headings, contents, nil
}

// NotifyExpiredRequestsActivity tells each requester the request was
// closed without a match.
func (w *ExpiryWorker) NotifyExpiredRequestsActivity(ctx context.Context, expired []schema.HelpRequest) error {
	logger := activity.GetLogger(ctx)

	if len(expired) == 0 {
		return fmt.Errorf("no expired requests to notify")
	}

	headings, contents, err := expiredRequestMessage()
	if err != nil {
		logger.Error("can not generate expired request message", zap.Error(err))
		return err
	}

	for _, help := range expired {
		if err := w.notifier.NotifyAccountByText(help.Requester,
			headings, contents,
			map[string]interface{}{
				"kind": schema.MessageKindHelpExpired,
				"data": map[string]interface{}{
					"help_request_id": help.ID.String(),
				},
			},
		); err != nil {
			if !onesignal.IsErrAllPlayersNotSubscribed(err) {
				return err
			}
			logger.Warn("account is not subscribed in onesignal", zap.String("accountNumber", help.Requester))
		}
	}

	return nil
}
