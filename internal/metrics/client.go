package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/Rorical/tunneldesk/internal/models"
)

// ErrUnexpectedStatus is returned for any non-200 response
var ErrUnexpectedStatus = errors.New("unexpected status")

const DefaultTimeout = 15 * time.Second

// Client reads the backend's metrics API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = DefaultTimeout
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Metrics returns every recorded metric
func (c *Client) Metrics(ctx context.Context) ([]models.Metric, error) {
	var metrics []models.Metric
	return metrics, c.getJSON(ctx, "/api/metrics", &metrics)
}

// SiteMetrics returns the metrics of one site
func (c *Client) SiteMetrics(ctx context.Context, siteID string) ([]models.Metric, error) {
	var metrics []models.Metric
	return metrics, c.getJSON(ctx, "/api/metrics/"+url.PathEscape(siteID), &metrics)
}

func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	return events, c.getJSON(ctx, "/api/events", &events)
}

func (c *Client) SiteEvents(ctx context.Context, siteID string) ([]models.Event, error) {
	var events []models.Event
	return events, c.getJSON(ctx, "/api/events/"+url.PathEscape(siteID), &events)
}

// Current returns the most recently started site
func (c *Client) Current(ctx context.Context) (models.CurrentSite, error) {
	var current models.CurrentSite
	return current, c.getJSON(ctx, "/api/current", &current)
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
