// Package supabase provides a minimal HTTP client for the Supabase storage,
// PostgREST and edge-function APIs.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Static errors for Supabase client operations.
var (
	// ErrURLRequired is returned when the project URL is not provided.
	ErrURLRequired = errors.New("supabase: project URL is required")
	// ErrInvalidURL is returned when the project URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("supabase: invalid project URL")
	// ErrKeyRequired is returned when the service role key is not provided.
	ErrKeyRequired = errors.New("supabase: service role key is required")
	// ErrRequestFailed is returned when the API answers with a non-2xx status code.
	ErrRequestFailed = errors.New("supabase: request failed")
)

// Client talks to a single Supabase project.
type Client struct {
	baseURL    string
	base       *url.URL
	serviceKey string
	anonKey    string
	httpClient *http.Client
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(sc *Client) {
		sc.httpClient = c
	}
}

// WithAnonKey sets the anonymous key used to call edge functions.
func WithAnonKey(key string) ClientOption {
	return func(sc *Client) {
		sc.anonKey = key
	}
}

// NewClient creates a new Supabase client for the project at baseURL.
func NewClient(baseURL, serviceKey string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, ErrURLRequired
	}
	if serviceKey == "" {
		return nil, ErrKeyRequired
	}

	trimmed := strings.TrimRight(baseURL, "/")
	base, err := url.Parse(trimmed)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	c := &Client{
		baseURL:    trimmed,
		base:       base,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PublicObjectURL returns the public download URL of key in bucket.
func (c *Client) PublicObjectURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, key)
}

// FunctionURL returns the invocation URL of the named edge function.
func (c *Client) FunctionURL(name string) string {
	return fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
}

// IsFunctionURL reports whether u points at an edge function of this project.
// Scheme and host, port included, must match the project URL exactly.
func (c *Client) IsFunctionURL(u string) bool {
	target, err := url.Parse(u)
	if err != nil || target.User != nil {
		return false
	}
	if !strings.EqualFold(target.Scheme, c.base.Scheme) || !strings.EqualFold(target.Host, c.base.Host) {
		return false
	}
	return strings.HasPrefix(target.EscapedPath(), c.base.EscapedPath()+"/functions/")
}

// AuthorizeFunction adds edge-function credentials to req.
// The anonymous key is preferred when configured.
func (c *Client) AuthorizeFunction(req *http.Request) {
	key := c.anonKey
	if key == "" {
		key = c.serviceKey
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("apikey", key)
}

// Do sends a request to path with service-role credentials and returns the
// response body. Non-2xx answers are reported as ErrRequestFailed.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
