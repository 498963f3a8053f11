package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/dnscache"

	"github.com/matzehuels/pypilink/pkg/observability"
)

// Client provides shared HTTP functionality for registry API clients.
// It applies default headers, a bounded timeout and DNS caching. It never
// retries: every call is exactly one request.
//
// A Client is safe for concurrent use. Call Close to stop the background
// DNS refresh.
type Client struct {
	http    *http.Client
	headers map[string]string

	stop      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a Client with the given timeout and default headers.
// A timeout <= 0 selects [DefaultTimeout]. Pass nil for headers if no
// default headers are needed.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	resolver := &dnscache.Resolver{}
	c := &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(resolver, timeout),
		},
		headers: headers,
		stop:    make(chan struct{}),
	}
	go c.refreshDNS(resolver)
	return c
}

func (c *Client) refreshDNS(resolver *dnscache.Resolver) {
	ticker := time.NewTicker(dnsRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			resolver.Refresh(true)
		}
	}
}

// Close stops the DNS refresh goroutine and drops idle connections.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		c.http.CloseIdleConnections()
	})
}

// Transport returns the round tripper used by this client, so that other
// protocols against the same registry (XML-RPC) share its dialer.
func (c *Client) Transport() http.RoundTripper {
	return c.http.Transport
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
//
// Errors wrap exactly one of [ErrNotFound], [ErrNetwork] or [ErrDecode], or
// are an [*HTTPError] for any other non-2xx status.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	return c.GetWithHeaders(ctx, rawURL, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
		}
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := splitURL(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int, rawURL string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return &HTTPError{StatusCode: code, URL: rawURL}
	}
}

func splitURL(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
