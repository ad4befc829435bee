// Package jenkins provides a client for the build server's remote access API
// and normalizes its job/build payloads into the canonical model.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds build-server connection settings.
type Config struct {
	BaseURL  string // e.g. https://jenkins.example.com
	Username string
	APIToken string
}

// Client is a Jenkins REST API client.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *http.Client
}

// New creates a new Jenkins client.
func New(cfg Config) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Job is a build-server job reference.
type Job struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListJobs returns the jobs visible at the server root.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	body, err := c.doGet(ctx, c.baseURL+"/api/json?tree=jobs[name,url]")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	var resp struct {
		Jobs []Job `json:"jobs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode jobs response: %w", err)
	}
	return resp.Jobs, nil
}

// buildsTree selects the build fields the dashboard and report need.
const buildsTree = "builds[number,url,timestamp,duration,result,building]"

// FetchBuilds fetches the build history of one job and returns a tagged
// outcome. Transport and shape failures are folded into the failure reason;
// this method never returns an error.
func (c *Client) FetchBuilds(ctx context.Context, jobName string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/job/%s/api/json?tree=%s",
		c.baseURL, url.PathEscape(jobName), url.QueryEscape(buildsTree))
	return c.doGet(ctx, reqURL)
}

func (c *Client) doGet(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", errorReason(resp, body))
	}

	return body, nil
}

// errorReason builds a human-readable failure reason, preferring a
// structured error field in the body over the bare status line.
func errorReason(resp *http.Response, body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fmt.Sprintf("HTTP %s", resp.Status)
}
