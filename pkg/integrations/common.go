package integrations

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/dnscache"
)

// DefaultTimeout bounds a single registry request, connect through body read.
const DefaultTimeout = 10 * time.Second

// dnsRefreshInterval is how often cached DNS answers are refreshed.
const dnsRefreshInterval = 5 * time.Minute

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures (timeouts, refused connections, resets).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a response body is not the expected encoding.
	ErrDecode = errors.New("decode error")
)

// HTTPError is returned for non-2xx responses other than 404.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// newTransport creates an HTTP transport whose dialer resolves hosts through
// resolver, so repeated lookups against the same registry skip DNS.
func newTransport(resolver *dnscache.Resolver, timeout time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   min(timeout, 5*time.Second),
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var lastErr error
			for _, ip := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			if lastErr == nil {
				lastErr = fmt.Errorf("no addresses for %s", host)
			}
			return nil, lastErr
		},
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   min(timeout, 5*time.Second),
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// isTimeout reports whether err came from a deadline rather than bad data.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores and dots with hyphens, following
// PEP 503 normalization rules used by PyPI.
func NormalizePkgName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "-", ".", "-").Replace(name)
}
