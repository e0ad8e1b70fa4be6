// Package remote is the agent's client for the platform REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/autocare/platform/internal/domain/localcache"
	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/autocare/platform/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	loginPath       = "/api/v1/auth/login"
	revenueSyncPath = "/api/v1/revenue/sync"
	fetchPageSize   = 100
	maxFetchPages   = 50
	maxErrorBody    = 4096
)

// ErrFetchTruncated is returned when a list has more pages than the client reads
var ErrFetchTruncated = errors.New("remote list exceeds the page limit")

// ErrNotAuthenticated is returned when the platform rejects the device credentials
var ErrNotAuthenticated = shared.NewDomainError("UNAUTHORIZED", "Platform rejected the agent credentials")

// APIError is a non-2xx platform response
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform returned %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("platform returned %d", e.Status)
}

// envelope is the platform response shape
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Meta    *struct {
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

// Credentials identify the device to the platform
type Credentials struct {
	Username string
	Password string
}

// Option configures a Client
type Option func(*Client)

// WithMaxFetchPages caps how many pages FetchAll reads
func WithMaxFetchPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client calls the platform API with the agent's bearer token. A 401 triggers
// one fresh login and a single retry.
type Client struct {
	baseURL *url.URL
	creds   Credentials
	http    *http.Client
	logger  *zap.Logger
	// maxPages bounds FetchAll
	maxPages int

	mu    sync.Mutex
	token string
}

// New creates a client for baseURL
func New(baseURL string, creds Credentials, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:  u,
		creds:    creds,
		http:     &http.Client{Timeout: timeout},
		logger:   zap.NewNop(),
		maxPages: maxFetchPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the platform root
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Token returns the current access token, logging in first if needed
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	return c.Login(ctx)
}

// InvalidateToken forgets the access token so the next call logs in again
func (c *Client) InvalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Login exchanges the device credentials for an access token
func (c *Client) Login(ctx context.Context) (string, error) {
	body := map[string]string{"username": c.creds.Username, "password": c.creds.Password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	status, err := c.send(ctx, http.MethodPost, loginPath, "", body, &out, nil)
	if status == http.StatusUnauthorized {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login: response has no access token")
	}

	c.mu.Lock()
	c.token = out.AccessToken
	c.mu.Unlock()
	c.logger.Info("Logged in to platform", zap.String("username", c.creds.Username))
	return out.AccessToken, nil
}

// PushRevenue sends one daily rollup to the platform
func (c *Client) PushRevenue(ctx context.Context, data *revenue.RevenueData) error {
	return c.authorized(ctx, http.MethodPost, revenueSyncPath, data, nil, nil)
}

// FetchAll lists every object of kind, following pagination. A list longer
// than the page limit fails with ErrFetchTruncated rather than being cut short.
func (c *Client) FetchAll(ctx context.Context, kind localcache.Kind) ([]json.RawMessage, error) {
	path := kind.RemotePath()
	if path == "" {
		return nil, fmt.Errorf("no remote path for cache kind %q", kind)
	}

	var all []json.RawMessage
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(fetchPageSize))

		var items []json.RawMessage
		var env envelope
		if err := c.authorized(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &items, &env); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", kind, err)
		}
		all = append(all, items...)
		if env.Meta == nil || page >= env.Meta.TotalPages || len(items) == 0 {
			break
		}
		if page >= c.maxPages {
			c.logger.Warn("Remote list exceeds page limit",
				zap.String("kind", string(kind)),
				zap.Int("total_pages", env.Meta.TotalPages),
				zap.Int("max_pages", c.maxPages))
			return nil, fmt.Errorf("fetch %s: %d pages, limit %d: %w", kind, env.Meta.TotalPages, c.maxPages, ErrFetchTruncated)
		}
	}
	return all, nil
}

func (c *Client) authorized(ctx context.Context, method, path string, body, out any, env *envelope) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}
	status, err := c.send(ctx, method, path, token, body, out, env)
	if status != http.StatusUnauthorized {
		return err
	}

	c.logger.Info("Platform token rejected, logging in again")
	c.InvalidateToken()
	if token, err = c.Login(ctx); err != nil {
		return err
	}
	_, err = c.send(ctx, method, path, token, body, out, env)
	return err
}

// send performs one request and decodes the envelope data into out.
// The returned status is 0 when no response was received.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any, env *envelope) (int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e envelope
		if raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); json.Unmarshal(raw, &e) == nil {
			apiErr.Code, apiErr.Message = e.Error, e.Message
		}
		return resp.StatusCode, apiErr
	}

	var e envelope
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	if !e.Success {
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Code: e.Error, Message: e.Message}
	}
	if env != nil {
		*env = e
	}
	if out != nil && len(e.Data) > 0 && string(e.Data) != "null" {
		if err := json.Unmarshal(e.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response data: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// IsUnavailable reports whether err means the platform could not be reached
// or failed on its side, as opposed to rejecting the request.
func IsUnavailable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return err != nil
}
