// Package sonarqube provides a client for the code-quality server's Web API
// and normalizes its measures payloads into the canonical model.
package sonarqube

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

// DefaultMetricKeys is the metric set requested when the caller does not
// override it.
var DefaultMetricKeys = []string{
	"bugs", "vulnerabilities", "security_hotspots", "code_smells",
	"coverage", "duplicated_lines_density", "ncloc", "sqale_index",
	"sqale_rating", "security_rating", "reliability_rating", "alert_status",
}

// Config holds code-quality server connection settings.
type Config struct {
	BaseURL string // e.g. https://sonarqube.example.com
	Token   string // user token, sent as basic-auth username
}

// Client is a SonarQube Web API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new SonarQube client.
func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Project is a code-quality project reference.
type Project struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Qualifier  string `json:"qualifier"`
	Visibility string `json:"visibility"`
}

// ListProjects returns up to 500 projects visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	body, err := c.doGet(ctx, c.baseURL+"/api/projects/search?ps=500")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var resp struct {
		Components []Project `json:"components"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode projects response: %w", err)
	}
	return resp.Components, nil
}

// FetchMeasures fetches the component measures for one project key.
func (c *Client) FetchMeasures(ctx context.Context, projectKey string, metricKeys []string) ([]byte, error) {
	if len(metricKeys) == 0 {
		metricKeys = DefaultMetricKeys
	}
	params := url.Values{
		"component":  {projectKey},
		"metricKeys": {strings.Join(metricKeys, ",")},
	}
	return c.doGet(ctx, c.baseURL+"/api/measures/component?"+params.Encode())
}

func (c *Client) doGet(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		// SonarQube token auth: token as username, empty password.
		req.SetBasicAuth(c.token, "")
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

// errorReason prefers the server's structured errors array over the bare
// status line.
func errorReason(resp *http.Response, body []byte) string {
	var e struct {
		Errors []struct {
			Msg string `json:"msg"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 && e.Errors[0].Msg != "" {
		return e.Errors[0].Msg
	}
	return fmt.Sprintf("HTTP %s", resp.Status)
}
