// Package client submits crash reports to the collector service.
//
// Submission is a single blocking POST with a hard timeout. There is no
// retry and no queue: a report that cannot be delivered before the host
// process dies is dropped, and that is acceptable by design of the capture
// path (the faulting thread is the one doing the submitting).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/ezmodegames/crashmon/pkg/report"
)

// DefaultTimeout bounds the whole submission round trip.
const DefaultTimeout = 10 * time.Second

// Response is the collector's acknowledgement. Report ids are opaque
// strings (the collector assigns ULIDs).
type Response struct {
	ID         string `json:"id"`
	ShareToken string `json:"shareToken"`
}

// Client talks to one collector endpoint.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with each submission.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout overrides the submission timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient returns a client for the given intake URL.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:  url,
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts the report and returns the collector's acknowledgement. The
// call blocks until the response arrives, the client timeout fires, or ctx
// is done. Any failure means the report is gone; callers must not retry.
func (c *Client) Submit(ctx context.Context, r *report.CrashReport) (*Response, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to submit invalid report: %w", err)
	}

	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log.WithFields(log.Fields{
		"url":  c.url,
		"size": len(body),
	}).Debug("submitting crash report")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("collector rejected report: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var ack Response
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	log.WithFields(log.Fields{
		"id":    ack.ID,
		"token": ack.ShareToken,
	}).Debug("crash report accepted")

	return &ack, nil
}
