// Package integrations provides shared HTTP plumbing for the registry and
// vulnerability API clients: response caching, retry with backoff, and
// uniform status-code mapping to sentinel errors.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client provides shared HTTP functionality for all registry API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client with the given cache, key namespace, entry TTL,
// and default headers. Headers are applied to all requests made through this
// client. Pass nil for headers if no default headers are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		cache:     c,
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Used by tests to point
// the client at an httptest server.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// GetJSON performs a cached HTTP GET and JSON-decodes the response into v.
// Responses are cached under the request URL; a fresh fetch is retried with
// backoff on transient failures before the result is stored.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	key := cache.Key(c.namespace, url)
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		return json.Unmarshal(data, v)
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var fetchErr error
		body, fetchErr = c.doRequest(ctx, http.MethodGet, url, nil)
		return fetchErr
	})
	if err != nil {
		return err
	}

	_ = c.cache.Set(ctx, key, body, c.ttl)
	return json.Unmarshal(body, v)
}

// PostJSON performs a cached HTTP POST with a JSON request body and decodes
// the JSON response into v. The cache key covers both URL and request body,
// so distinct queries never collide.
func (c *Client) PostJSON(ctx context.Context, url string, reqBody, v any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	key := cache.Key(c.namespace, url+"\n"+string(payload))
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		return json.Unmarshal(data, v)
	}

	var body []byte
	err = cache.RetryWithBackoff(ctx, func() error {
		var fetchErr error
		body, fetchErr = c.doRequest(ctx, http.MethodPost, url, payload)
		return fetchErr
	})
	if err != nil {
		return err
	}

	_ = c.cache.Set(ctx, key, body, c.ttl)
	return json.Unmarshal(body, v)
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
