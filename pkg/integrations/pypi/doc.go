// Package pypi talks to the Python Package Index.
//
// # Overview
//
// Two endpoints are used:
//
//   - the JSON API (https://pypi.org/pypi/<name>[/<version>]/json), through
//     [Client.FetchMetadata]
//   - the legacy XML-RPC search method, through [Searcher.Search]
//
// Both share one [integrations.Client], so they share its timeout, headers
// and DNS cache.
//
// # Usage
//
//	hc := integrations.NewClient(10*time.Second, nil)
//	defer hc.Close()
//
//	doc, err := pypi.NewClient(hc, "").FetchMetadata(ctx, "sopel", "7.0.0")
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    fmt.Println(errors.UserMessage(err))
//	}
//
// # Errors
//
// Every failure is an [errors.Error] coded NOT_FOUND, NETWORK_ERROR,
// HTTP_ERROR or DECODE_ERROR. No request is retried.
//
// # Search
//
// The search client is created for one call and closed when the call
// returns; nothing about it is kept on the [Searcher].
package pypi
