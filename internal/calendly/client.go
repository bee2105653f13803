package calendly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 20 * time.Second

// Client talks to the scheduling API that owns event types, availability
// and event creation. The widget never computes availability itself.
type Client struct {
	baseURL       string
	clientID      string
	eventTypeUUID string
	httpClient    *http.Client
	logger        *slog.Logger
}

// Options configures authentication against the scheduling API. When
// TokenURL is set an OAuth2 client-credentials token source is used,
// otherwise StaticToken (if any) is sent as a bearer token.
type Options struct {
	ClientSecret string
	TokenURL     string
	StaticToken  string
}

func NewClient(baseURL, clientID, eventTypeUUID string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	hc := &http.Client{Timeout: defaultTimeout}
	if opts.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		hc = cc.Client(context.Background())
		hc.Timeout = defaultTimeout
	} else if opts.StaticToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.StaticToken})
		hc = oauth2.NewClient(context.Background(), src)
		hc.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:       baseURL,
		clientID:      clientID,
		eventTypeUUID: eventTypeUUID,
		httpClient:    hc,
		logger:        logger,
	}
}

// FetchEventType returns the event type this widget is configured for.
func (c *Client) FetchEventType(ctx context.Context) (*EventType, error) {
	var out EventType
	path := fmt.Sprintf("/event_types/%s", c.eventTypeUUID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchAvailability returns per-date records for [rangeStart, rangeEnd)
// rendered in the given timezone. Dates are YYYY-MM-DD.
func (c *Client) FetchAvailability(ctx context.Context, rangeStart, rangeEnd, timezone string) ([]Availability, error) {
	q := url.Values{}
	q.Set("range_start", rangeStart)
	q.Set("range_end", rangeEnd)
	q.Set("timezone", timezone)
	var out struct {
		Days []Availability `json:"days"`
	}
	path := fmt.Sprintf("/event_types/%s/calendar/range", c.eventTypeUUID)
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out.Days, nil
}

// FetchTimezones returns the timezone list offered by the timezone picker.
func (c *Client) FetchTimezones(ctx context.Context) ([]Timezone, error) {
	var out struct {
		Timezones []Timezone `json:"timezones"`
	}
	if err := c.get(ctx, "/timezones", nil, &out); err != nil {
		return nil, err
	}
	return out.Timezones, nil
}

// Schedule submits a booking. A non-2xx response with a parseable body is
// returned as *APIError so callers can surface field-level details.
func (c *Client) Schedule(ctx context.Context, payload *SchedulePayload) (*ScheduledEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode schedule payload: %w", err)
	}
	path := fmt.Sprintf("/event_types/%s/bookings", c.eventTypeUUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(path, nil), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schedule request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.asAPIError(resp.StatusCode, data)
	}
	var out ScheduledEvent
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode scheduled event: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(path, q), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.asAPIError(resp.StatusCode, data)
	}
	return json.Unmarshal(data, out)
}

func (c *Client) requestURL(path string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("client_id", c.clientID)
	return c.baseURL + path + "?" + q.Encode()
}

func (c *Client) asAPIError(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Title != "" {
		apiErr.StatusCode = status
		c.logger.Warn("scheduling api error",
			"status", status, "title", apiErr.Title, "details", len(apiErr.Details))
		return &apiErr
	}
	c.logger.Warn("scheduling api error", "status", status)
	return &APIError{
		StatusCode: status,
		Title:      "Scheduling request failed",
		Message:    fmt.Sprintf("the scheduling service answered with status %d", status),
	}
}
