package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client submits jobs to the pipeline over HTTP. Submission is
// fire-and-forget: the pipeline reports results via the webhook callback.
type Client struct {
	baseURL     string
	callbackURL string
	httpClient  *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a pipeline client. baseURL is the pipeline service root;
// callbackURL is the externally reachable webhook endpoint included in every
// job submission.
func NewClient(baseURL, callbackURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitJob posts a job request and returns the pipeline's acknowledgement.
// The request's CallbackURL is filled from the client when unset.
func (c *Client) SubmitJob(ctx context.Context, req JobRequest) (JobResponse, error) {
	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}
	body, err := json.Marshal(req)
	if err != nil {
		return JobResponse{}, fmt.Errorf("encode job request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return JobResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return JobResponse{}, fmt.Errorf("submit pipeline job: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return JobResponse{}, fmt.Errorf("pipeline returned status %d", resp.StatusCode)
	}
	var out JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return JobResponse{}, fmt.Errorf("decode job response: %w", err)
	}
	return out, nil
}
