// Package api fetches the job feed from the upstream HTTP endpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"clientledger/internal/core"
	"clientledger/internal/feed"
)

// Client pulls jobs from GET {base}/jobs?userId=... — the endpoint the
// mobile app reads. It holds no state; every call is a fresh snapshot.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ feed.JobSource = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ListJobs implements feed.JobSource.
func (c *Client) ListJobs(ctx context.Context, userID string) ([]core.Job, error) {
	u := c.baseURL + "/jobs?userId=" + url.QueryEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jobs: unexpected status %d", resp.StatusCode)
	}

	jobs, err := feed.DecodeJobs(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}
	return jobs, nil
}
