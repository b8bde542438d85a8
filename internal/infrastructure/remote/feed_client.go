// Package remote talks to the external "available appointments" service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clinicreserve/reservation-system/internal/api/metrics"
	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config holds the remote endpoints. Empty URLs disable the call, which then
// fails with domain.ErrRemoteServiceUnavailable.
type Config struct {
	BaseURL  string
	SlotsURL string
	Timeout  time.Duration
}

// FeedClient implements ports.AvailabilityFeed over HTTP. Requests are made
// once; there is no retry.
type FeedClient struct {
	cfg    Config
	client *http.Client
}

var _ ports.AvailabilityFeed = (*FeedClient)(nil)

func NewFeedClient(cfg Config) *FeedClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &FeedClient{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// FetchAvailable GETs {BaseURL}/available and returns the JSON body.
func (c *FeedClient) FetchAvailable(ctx context.Context) (json.RawMessage, error) {
	if c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("available feed not configured: %w", domain.ErrRemoteServiceUnavailable)
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/available"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, "available")
}

// AdjustCapacity POSTs the adjustment to SlotsURL.
func (c *FeedClient) AdjustCapacity(ctx context.Context, adj ports.CapacityAdjustment) (json.RawMessage, error) {
	if c.cfg.SlotsURL == "" {
		return nil, fmt.Errorf("capacity endpoint not configured: %w", domain.ErrRemoteServiceUnavailable)
	}
	payload, err := json.Marshal(adj)
	if err != nil {
		return nil, fmt.Errorf("marshal capacity adjustment: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SlotsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build capacity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, "capacity")
}

func (c *FeedClient) do(req *http.Request, endpoint string) (json.RawMessage, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues(endpoint, "unavailable").Inc()
		return nil, fmt.Errorf("%s request: %v: %w", endpoint, err, domain.ErrRemoteServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FeedRequestsTotal.WithLabelValues(endpoint, "unavailable").Inc()
		return nil, fmt.Errorf("%s returned status %d: %w", endpoint, resp.StatusCode, domain.ErrRemoteServiceUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues(endpoint, "unavailable").Inc()
		return nil, fmt.Errorf("%s read body: %v: %w", endpoint, err, domain.ErrRemoteServiceUnavailable)
	}
	if !json.Valid(body) {
		metrics.FeedRequestsTotal.WithLabelValues(endpoint, "unavailable").Inc()
		return nil, fmt.Errorf("%s returned invalid JSON: %w", endpoint, domain.ErrRemoteServiceUnavailable)
	}

	metrics.FeedRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return json.RawMessage(body), nil
}
