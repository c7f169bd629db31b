// Package httpapi implements the REST sink for the ComplianceMonitor
// and the transport used by the government reporter.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"

	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

// Client posts analysis output to the ComplianceMonitor REST API.
// Failures are non-fatal: every Send returns false and the pipeline
// retries on a later cycle.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a REST sink client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Name implements compliance.Sink.
func (c *Client) Name() string { return "http" }

// Connected implements compliance.Sink. HTTP is connectionless; the
// sink reports healthy as long as the last health check passed.
func (c *Client) Connected() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.HealthCheck(ctx)
}

// HealthCheck probes the monitor's health endpoint.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// SendResult implements compliance.Sink.
func (c *Client) SendResult(ctx context.Context, r compliance.ComplianceResult) bool {
	return c.post(ctx, "/api/compliance/result", r)
}

// SendThaiAnalysis implements compliance.Sink.
func (c *Client) SendThaiAnalysis(ctx context.Context, m *thai.ThaiMetadata) bool {
	return c.post(ctx, "/api/compliance/thai", m)
}

// SendReport implements compliance.Sink.
func (c *Client) SendReport(ctx context.Context, rep *compliance.ETIAnalysisReport) bool {
	return c.post(ctx, "/api/compliance/report", rep)
}

// PostJSON posts an arbitrary JSON payload to an absolute endpoint path.
// Used by the government reporter, which formats its own submissions.
func (c *Client) PostJSON(ctx context.Context, path string, payload any) error {
	if !c.post(ctx, path, payload) {
		return fmt.Errorf("post %s%s failed", c.baseURL, path)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("http sink marshal failed")
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("http sink post failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
