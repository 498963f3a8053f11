package pypi

import (
	"context"
	"errors"
	"net/http"
	"net/rpc"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"

	perrors "github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/integrations"
	"github.com/matzehuels/pypilink/pkg/observability"
)

// DefaultRPCURL is the legacy PyPI XML-RPC endpoint.
const DefaultRPCURL = "https://pypi.org/pypi"

// SearchHit is one result of a registry search.
type SearchHit struct {
	Name    string `xmlrpc:"name"`
	Version string `xmlrpc:"version"`
	Summary string `xmlrpc:"summary"`
}

// Searcher queries the XML-RPC search method.
//
// No RPC client outlives a call: each Search dials a fresh client over the
// shared transport and closes it before returning.
type Searcher struct {
	http   *integrations.Client
	rpcURL string
}

// NewSearcher creates a Searcher. An empty rpcURL selects [DefaultRPCURL].
func NewSearcher(hc *integrations.Client, rpcURL string) *Searcher {
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}
	return &Searcher{http: hc, rpcURL: strings.TrimRight(rpcURL, "/")}
}

// Search runs search({name: query, summary: query}, "or") and returns the
// hits in registry order.
func (s *Searcher) Search(ctx context.Context, query string) ([]SearchHit, error) {
	ctx, cancel := context.WithTimeout(ctx, s.http.Timeout())
	defer cancel()

	rt := &scopedTransport{ctx: ctx, base: s.http.Transport()}
	client, err := xmlrpc.NewClient(s.rpcURL, rt)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "creating search client")
	}
	defer client.Close()

	fields := map[string]any{"name": query, "summary": query}
	var hits []SearchHit
	if err := client.Call("search", []any{fields, "or"}, &hits); err != nil {
		return nil, rt.classify(err, query)
	}
	return hits, nil
}

// scopedTransport binds every request of one RPC client to ctx and
// remembers the last status so failures can be classified.
type scopedTransport struct {
	ctx    context.Context
	base   http.RoundTripper
	status int
}

func (t *scopedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.WithContext(t.ctx)
	hooks := observability.HTTP()
	hooks.OnRequest(t.ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		hooks.OnError(t.ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, err
	}
	t.status = resp.StatusCode
	hooks.OnResponse(t.ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func (t *scopedTransport) classify(err error, query string) error {
	// Bad statuses and XML-RPC faults both surface as rpc.ServerError.
	var serverErr rpc.ServerError
	switch {
	case t.status == 0 || t.ctx.Err() != nil:
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "searching for %q", query)
	case t.status < 200 || t.status >= 300:
		return perrors.Wrap(perrors.ErrCodeHTTP, err, "searching for %q: status %d", query, t.status)
	case errors.As(err, &serverErr):
		return perrors.Wrap(perrors.ErrCodeHTTP, err, "searching for %q", query)
	default:
		return perrors.Wrap(perrors.ErrCodeDecode, err, "searching for %q", query)
	}
}
