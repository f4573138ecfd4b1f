package extService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"picksBot/config"
	"picksBot/services/metrics"
)

const (
	DefaultESPNBaseURL = "https://site.api.espn.com"
	DefaultOddsBaseURL = "https://api.the-odds-api.com"

	// The Odds API meters requests; stay well under its burst limits.
	defaultOddsRateLimit = 2.0
	defaultOddsBurst     = 2
)

// ErrUnknownSport is returned for sport tags missing from the registry.
var ErrUnknownSport = errors.New("unknown sport")

// ErrNoOddsProvider is returned when no odds API key is configured.
var ErrNoOddsProvider = errors.New("odds provider not configured")

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}

// Client talks to the schedule/score provider (ESPN) and the odds provider
// (The Odds API).
type Client struct {
	httpClient  *http.Client
	espnBaseURL string
	oddsBaseURL string
	oddsAPIKey  string
	limiter     *rate.Limiter
	sports      *config.SportRegistry
	metrics     *metrics.Metrics
	location    *time.Location
	now         func() time.Time
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithESPNBaseURL(url string) ClientOption {
	return func(c *Client) { c.espnBaseURL = url }
}

func WithOddsBaseURL(url string) ClientOption {
	return func(c *Client) { c.oddsBaseURL = url }
}

func WithOddsAPIKey(key string) ClientOption {
	return func(c *Client) { c.oddsAPIKey = key }
}

func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithLocation sets the timezone whose calendar day scopes odds lookups.
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) { c.location = loc }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

func NewClient(sports *config.SportRegistry, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		espnBaseURL: DefaultESPNBaseURL,
		oddsBaseURL: DefaultOddsBaseURL,
		limiter:     rate.NewLimiter(rate.Limit(defaultOddsRateLimit), defaultOddsBurst),
		sports:      sports,
		metrics:     metrics.Default(),
		location:    time.UTC,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Sports() *config.SportRegistry {
	return c.sports
}

func (c *Client) Sport(tag string) (config.Sport, error) {
	s, ok := c.sports.Get(tag)
	if !ok {
		return config.Sport{}, fmt.Errorf("%w: %s", ErrUnknownSport, tag)
	}
	return s, nil
}

func (c *Client) Location() *time.Location {
	return c.location
}

// getJSON performs a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, provider, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstream(provider, "error", time.Since(start).Seconds())
		return fmt.Errorf("fetching %s: %w", provider, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstream(provider, http.StatusText(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: provider, StatusCode: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", provider, err)
	}

	return nil
}
