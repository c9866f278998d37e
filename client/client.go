package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/standby-inc/standby-api/schema"
)

var (
	// ErrConflict - the arbiter rejected a transition because the
	// request already left the expected state. Callers treat this as
	// someone else already decided, not as a failure.
	ErrConflict = fmt.Errorf("the request is already decided")

	// ErrNotFound - no record backs the given id.
	ErrNotFound = fmt.Errorf("no such record")
)

// Client calls the standby arbiter API on behalf of one signed-in
// account.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func New(endpoint, jwtToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 15 * time.Second,
		}
	}

	return &Client{
		endpoint:   endpoint,
		token:      jwtToken,
		httpClient: httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.endpoint+path, reader)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	d, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("arbiter call %s %s failed with status %d: %s", method, path, resp.StatusCode, d)
	}

	if out != nil {
		return json.Unmarshal(d, out)
	}
	return nil
}

// CreateHelpRequest opens a new request and returns it with its freshly
// issued proximity token.
func (c *Client) CreateHelpRequest(ctx context.Context, subject, needs, meetingPlace, contactInfo string) (*schema.HelpRequest, error) {
	var resp struct {
		Result schema.HelpRequest `json:"result"`
	}
	err := c.do(ctx, http.MethodPost, "/api/help-requests", map[string]string{
		"subject":          subject,
		"exact_needs":      needs,
		"meeting_location": meetingPlace,
		"contact_info":     contactInfo,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// GetHelpRequest fetches one request by id.
func (c *Client) GetHelpRequest(ctx context.Context, helpID string) (*schema.HelpRequest, error) {
	var resp struct {
		Result schema.HelpRequest `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/help-requests/"+helpID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// SubmitProximityVerification reports a scan outcome for arbitration.
// ErrConflict means another device already decided the request.
func (c *Client) SubmitProximityVerification(ctx context.Context, helpID string, outcome bool) error {
	return c.do(ctx, http.MethodPost, "/api/help-requests/"+helpID+"/proximity", map[string]bool{
		"outcome": outcome,
	}, nil)
}

// UpdateHelpRequestState asks for a COMPLETED or CANCELED transition.
func (c *Client) UpdateHelpRequestState(ctx context.Context, helpID, state string) error {
	return c.do(ctx, http.MethodPatch, "/api/help-requests/"+helpID, map[string]string{
		"state": state,
	}, nil)
}

// RegisterDevice registers this device for push delivery and returns its
// id.
func (c *Client) RegisterDevice(ctx context.Context, pushToken string, location *schema.Location) (string, error) {
	var resp struct {
		Result schema.Device `json:"result"`
	}
	body := map[string]interface{}{
		"push_token": pushToken,
	}
	if location != nil {
		body["location"] = location
	}
	if err := c.do(ctx, http.MethodPost, "/api/devices", body, &resp); err != nil {
		return "", err
	}
	return resp.Result.ID.String(), nil
}

// DeleteDevice removes a device registration.
func (c *Client) DeleteDevice(ctx context.Context, deviceID string) error {
	return c.do(ctx, http.MethodDelete, "/api/devices/"+deviceID, nil, nil)
}

// UpdateDeviceLocation refreshes the device owner's presence location.
func (c *Client) UpdateDeviceLocation(ctx context.Context, deviceID string, location schema.Location) error {
	return c.do(ctx, http.MethodPatch, "/api/devices/"+deviceID+"/location", location, nil)
}

// OpenUpdates opens the transition stream of a request and returns the
// raw response body for the observer to consume as server-sent events.
func (c *Client) OpenUpdates(ctx context.Context, helpID string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.endpoint+"/api/help-requests/"+helpID+"/updates", nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")

	// the stream outlives any per-call timeout of the shared client
	streamClient := &http.Client{Transport: c.httpClient.Transport}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("updates stream for %s failed with status %d", helpID, resp.StatusCode)
	}
	return resp, nil
}
