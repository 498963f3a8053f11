// Package integrations provides the HTTP plumbing shared by registry clients.
//
// # Overview
//
// Registry-specific clients live in subpackages:
//
//   - [pypi]: Python Package Index JSON API and legacy XML-RPC search
//
// # Client Pattern
//
// [Client] performs a single GET per call with a bounded timeout and a
// DNS-caching dialer. It does not retry and does not cache responses:
//
//	c := integrations.NewClient(10*time.Second, map[string]string{"User-Agent": "pypilink"})
//	defer c.Close()
//
//	var doc map[string]any
//	err := c.Get(ctx, "https://pypi.org/pypi/sopel/json", &doc)
//
// # Errors
//
// Every failure wraps exactly one of the sentinels, so callers can classify
// it with errors.Is / errors.As:
//
//   - [ErrNotFound]: HTTP 404
//   - [*HTTPError]: any other non-2xx status
//   - [ErrNetwork]: connection failures and timeouts
//   - [ErrDecode]: body is not valid JSON for the target type
//
// [pypi]: github.com/matzehuels/pypilink/pkg/integrations/pypi
package integrations
