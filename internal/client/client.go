// Package client provides an HTTP client for the XRD prediction service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/xrdthermo/internal/metrics"
	"github.com/raphaelgruber/xrdthermo/internal/peak"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Client talks to the prediction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMetrics records request timings into collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// New creates a client for the service at baseURL.
// If baseURL is empty, DefaultBaseURL is used.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns the collector the client records into, or nil.
func (c *Client) Metrics() *metrics.Collector {
	return c.metrics
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type predictRequest struct {
	Pos       float64 `json:"pos"`
	FWHM      float64 `json:"fwhm"`
	Intensity float64 `json:"intensity"`
}

type predictResponse struct {
	Temperature *float64 `json:"temperature"`
}

type simulateRequest struct {
	Temp float64 `json:"temp"`
}

type simulateResponse struct {
	Pos       *float64 `json:"pos"`
	FWHM      *float64 `json:"fwhm"`
	Intensity *float64 `json:"intensity"`
}

type estimateRequest struct {
	Pos       float64 `json:"pos"`
	Intensity float64 `json:"intensity"`
}

type estimateResponse struct {
	FWHM      *float64 `json:"fwhm"`
	PeakShift *float64 `json:"peak_shift,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// Estimate is the physics-baseline FWHM returned by the service.
type Estimate struct {
	FWHM      float64
	PeakShift float64
	Status    string
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Predict maps peak parameters to a temperature in °C.
func (c *Client) Predict(ctx context.Context, params peak.Parameters) (float64, error) {
	var resp predictResponse
	err := c.timed(metrics.OpPredict, func() error {
		if err := c.post(ctx, "/predict", predictRequest{
			Pos:       params.Position,
			FWHM:      params.Width,
			Intensity: params.Height,
		}, &resp); err != nil {
			return err
		}
		return requireNumber("temperature", resp.Temperature)
	})
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return *resp.Temperature, nil
}

// Simulate maps a target temperature to the peak parameters expected at it.
func (c *Client) Simulate(ctx context.Context, temperature float64) (peak.Parameters, error) {
	var resp simulateResponse
	err := c.timed(metrics.OpSimulate, func() error {
		if err := c.post(ctx, "/simulate", simulateRequest{Temp: temperature}, &resp); err != nil {
			return err
		}
		if err := requireNumber("pos", resp.Pos); err != nil {
			return err
		}
		if err := requireNumber("fwhm", resp.FWHM); err != nil {
			return err
		}
		return requireNumber("intensity", resp.Intensity)
	})
	if err != nil {
		return peak.Parameters{}, fmt.Errorf("simulate: %w", err)
	}
	return peak.Parameters{
		Position: *resp.Pos,
		Width:    *resp.FWHM,
		Height:   *resp.Intensity,
	}, nil
}

// EstimateFWHM asks the physics baseline for the width expected at a peak
// position and intensity. The width is rounded to four decimals.
func (c *Client) EstimateFWHM(ctx context.Context, position, intensity float64) (Estimate, error) {
	var resp estimateResponse
	err := c.timed(metrics.OpEstimateFWHM, func() error {
		if err := c.post(ctx, "/estimate-fwhm", estimateRequest{
			Pos:       position,
			Intensity: intensity,
		}, &resp); err != nil {
			return err
		}
		return requireNumber("fwhm", resp.FWHM)
	})
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate fwhm: %w", err)
	}

	est := Estimate{
		FWHM:   Round4(*resp.FWHM),
		Status: resp.Status,
	}
	if resp.PeakShift != nil {
		est.PeakShift = *resp.PeakShift
	} else {
		est.PeakShift = position - peak.RoomTemperaturePeak
	}
	return est, nil
}

// Health checks that the service answers on /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newAPIError(resp, body)
	}
	return nil
}

// Round4 rounds v to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// =============================================================================
// TRANSPORT
// =============================================================================

// post sends body as JSON to path and decodes the response into result.
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, respBody)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// timed runs fn and records its duration under op.
func (c *Client) timed(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.metrics.RecordTiming(op, time.Since(start), err != nil)
	return err
}

func requireNumber(field string, v *float64) error {
	if v == nil {
		return fmt.Errorf("%w: missing %q", ErrMalformedResponse, field)
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Errorf("%w: %q is not finite", ErrMalformedResponse, field)
	}
	return nil
}
