// Package argocd provides a client for the GitOps deployment controller's
// API, with session-token auth, and normalizes its application lists into
// the canonical model.
package argocd

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTokenTTL is how long a session token is reused before a fresh
// login. The controller's own token lifetime is longer; this just bounds
// how stale a cached token can get.
const DefaultTokenTTL = 10 * time.Minute

// Config holds deployment-controller connection settings.
type Config struct {
	BaseURL  string // e.g. https://argocd.example.com
	Username string
	Password string
	Insecure bool // skip TLS verification (self-signed installs)
	TokenTTL time.Duration
}

// Client is an Argo CD API client. Session tokens are fetched lazily and
// cached; a 401/403 on an API call drops the cached token and retries once.
type Client struct {
	baseURL    string
	username   string
	password   string
	tokenTTL   time.Duration
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenIssued time.Time
}

// New creates a new Argo CD client.
func New(cfg Config) *Client {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	transport := http.DefaultTransport
	if cfg.Insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		tokenTTL: ttl,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

// FetchApplications fetches the full application list.
func (c *Client) FetchApplications(ctx context.Context) ([]byte, error) {
	return c.doGet(ctx, c.baseURL+"/api/v1/applications")
}

func (c *Client) doGet(ctx context.Context, reqURL string) ([]byte, error) {
	body, status, err := c.get(ctx, reqURL)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		// Cached token may have expired server-side; log in again and retry.
		c.dropToken()
		body, _, err = c.get(ctx, reqURL)
	}
	return body, err
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("%s", errorReason(resp, body))
	}

	return body, resp.StatusCode, nil
}

// sessionToken returns a cached session token, logging in when the cache is
// empty or past its TTL.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Since(c.tokenIssued) < c.tokenTTL {
		return c.token, nil
	}

	payload, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/session", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("session login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read session response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("session login: %s", errorReason(resp, body))
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &session); err != nil || session.Token == "" {
		return "", fmt.Errorf("session login: no token in response")
	}

	c.token = session.Token
	c.tokenIssued = time.Now()
	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// errorReason prefers the controller's structured message/error fields over
// the bare status line.
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
