package surehub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is a non-2xx response from the SureHub API. The body is
// discarded; the status code plus target are enough for the logs, and the
// skill never surfaces transport errors to the user anyway.
type APIError struct {
	StatusCode int
	Host       string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("surehub: %d: %s %s", e.StatusCode, e.Host, e.Path)
}

// Client talks to the SureHub cloud API with a bearer token. Every call is
// attempted exactly once; retry policy belongs to the caller, and the skill
// deliberately has none.
type Client struct {
	baseURL     string
	token       string
	householdID int64
	client      *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// NewClient creates a SureHub API client.
func NewClient(baseURL, token string, householdID int64, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "https://app.api.surehub.io"
	}
	c := &Client{
		baseURL:     baseURL,
		token:       token,
		householdID: householdID,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dataEnvelope is the {"data": ...} wrapper every SureHub response uses.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// Pets fetches pet + position + tag telemetry for the household.
func (c *Client) Pets(ctx context.Context) ([]Pet, error) {
	path := fmt.Sprintf("/api/household/%d/pet?with[]=position&with[]=tag", c.householdID)
	var pets []Pet
	if err := c.get(ctx, path, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

// Devices fetches device, battery, lock and tag telemetry.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	path := "/api/device?with[]=children&with[]=status&with[]=control&with[]=tags"
	var devices []Device
	if err := c.get(ctx, path, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// SetPosition records a pet's new side of the door.
func (c *Client) SetPosition(ctx context.Context, petID int64, where int, since time.Time) error {
	path := fmt.Sprintf("/api/pet/%d/position", petID)
	body := map[string]any{
		"since": since.UTC().Format(time.RFC3339),
		"where": where,
	}
	return c.send(ctx, http.MethodPost, path, body)
}

// SetTagProfile sets a tag's permission profile on one device.
func (c *Client) SetTagProfile(ctx context.Context, deviceID, tagID int64, profile int) error {
	path := fmt.Sprintf("/api/device/%d/tag/%d", deviceID, tagID)
	return c.send(ctx, http.MethodPut, path, map[string]any{"profile": profile})
}

// SetLocking sets a device's lock state.
func (c *Client) SetLocking(ctx context.Context, deviceID int64, locking int) error {
	path := fmt.Sprintf("/api/device/%d/control", deviceID)
	return c.send(ctx, http.MethodPut, path, map[string]any{"locking": locking})
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Host:       req.URL.Host,
			Path:       req.URL.Path,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env dataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal response data: %w", err)
	}
	return nil
}
