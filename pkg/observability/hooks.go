// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the lookup code.
// Consumers register hooks at startup to receive events about lookups and
// outbound registry calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// A Prometheus implementation ships in this package ([PrometheusHooks]).
//
// # Usage
//
// Register hooks at application startup:
//
//	hooks, err := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	observability.SetLookupHooks(hooks)
//	observability.SetHTTPHooks(hooks)
//
// Libraries call hooks to emit events:
//
//	observability.Lookup().OnLookupStart(ctx, "command", pkg, version)
//	// ... fetch and format ...
//	observability.Lookup().OnLookupComplete(ctx, "command", pkg, "reply", duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Lookup Hooks
// =============================================================================

// LookupHooks receives events from the package lookup pipeline.
type LookupHooks interface {
	// OnLookupStart records the start of one triggered lookup.
	OnLookupStart(ctx context.Context, source, pkg, version string)

	// OnLookupComplete records how a lookup ended. outcome is one of the
	// pipeline outcome names (reply, not_found, error, suppressed, invalid).
	OnLookupComplete(ctx context.Context, source, pkg, outcome string, duration time.Duration)

	// OnSearchFallback records a registry search issued after a miss.
	OnSearchFallback(ctx context.Context, query string, hits int, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLookupHooks is a no-op implementation of LookupHooks.
type NoopLookupHooks struct{}

func (NoopLookupHooks) OnLookupStart(context.Context, string, string, string) {}
func (NoopLookupHooks) OnLookupComplete(context.Context, string, string, string, time.Duration) {
}
func (NoopLookupHooks) OnSearchFallback(context.Context, string, int, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	lookupHooks LookupHooks = NoopLookupHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetLookupHooks registers custom lookup hooks.
// This should be called once at application startup before any lookups.
func SetLookupHooks(h LookupHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lookupHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Lookup returns the registered lookup hooks.
func Lookup() LookupHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lookupHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	lookupHooks = NoopLookupHooks{}
	httpHooks = NoopHTTPHooks{}
}
