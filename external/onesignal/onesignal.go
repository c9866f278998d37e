package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/spf13/viper"
)

const apiEndpoint = "https://onesignal.com/api/v1"

const errAllPlayersNotSubscribed = "All included players are not subscribed"

// IsErrAllPlayersNotSubscribed reports whether an error from
// SendNotification only means no targeted device is subscribed.
func IsErrAllPlayersNotSubscribed(err error) bool {
	return err != nil && strings.Contains(err.Error(), errAllPlayersNotSubscribed)
}

// NotificationRequest is the request body of the onesignal create
// notification api. Either TemplateID or Headings with Contents has to
// be set.
type NotificationRequest struct {
	AppID          string                 `json:"app_id"`
	TemplateID     string                 `json:"template_id,omitempty"`
	Headings       map[string]string      `json:"headings,omitempty"`
	Contents       map[string]string      `json:"contents,omitempty"`
	Filters        []map[string]string    `json:"filters,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	LocalChannelID string                 `json:"existing_android_channel_id,omitempty"`
}

type OneSignalClient struct {
	httpClient *http.Client
	apiKey     string
}

func NewClient(client *http.Client) *OneSignalClient {
	return &OneSignalClient{
		httpClient: client,
		apiKey:     viper.GetString("onesignal.apikey"),
	}
}

// SendNotification submits a create notification request and fails on
// any non 2xx response.
func (c *OneSignalClient) SendNotification(ctx context.Context, notification *NotificationRequest) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiEndpoint+"/notifications", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		message, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("onesignal responds with status %d: %s", resp.StatusCode, message)
	}

	var result struct {
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && len(result.Errors) > 0 {
		return fmt.Errorf("onesignal errors: %s", strings.Join(result.Errors, ", "))
	}

	return nil
}
