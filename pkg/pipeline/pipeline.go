// Package pipeline runs one package lookup from trigger to reply.
//
// A lookup moves strictly forward:
//
//  1. Fetch: read the package document from the registry
//  2. Fallback: after a commanded miss, search the registry and fetch the
//     first hit instead
//  3. Format: render the one-line summary
//  4. Deliver: tag the line and post it, split to the host's limits
//
// Every failure is turned into an [Outcome] at this boundary. Commanded
// lookups answer with a message; passive ones (a link someone pasted) stay
// silent on failure.
//
// # Usage
//
//	runner := pipeline.NewRunner(pypiClient, searcher, logger)
//	outcome, err := runner.Handle(ctx, sender, pipeline.Request{PackageName: "sopel"}, true)
package pipeline

import (
	"context"
	"strings"

	"github.com/matzehuels/pypilink/pkg/integrations/pypi"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTag prefixes every reply.
	DefaultTag = "[PyPI] "

	// DefaultMaxMessages caps how many chat lines one reply may use.
	DefaultMaxMessages = 2

	// DefaultMaxLineLength is the longest line, in runes, sent to chat.
	DefaultMaxLineLength = 400

	// GenericFailure is shown for every commanded failure other than a miss.
	GenericFailure = "Sorry, there was an error accessing PyPI. Please try again later."
)

// =============================================================================
// Collaborators
// =============================================================================

// Fetcher reads package documents. Errors are coded with pkg/errors.
type Fetcher interface {
	FetchMetadata(ctx context.Context, pkg, version string) (*pypi.Document, error)
}

// Searcher runs a registry search. A nil Searcher disables fallback.
type Searcher interface {
	Search(ctx context.Context, query string) ([]pypi.SearchHit, error)
}

// =============================================================================
// Request and Outcome
// =============================================================================

// Request names the package, and optionally the release, to look up.
type Request struct {
	PackageName string
	Version     string
}

// String returns "name" or "name version".
func (r Request) String() string {
	if r.Version == "" {
		return r.PackageName
	}
	return r.PackageName + " " + r.Version
}

// Kind classifies how a lookup ended.
type Kind string

const (
	KindReply      Kind = "reply"
	KindNotFound   Kind = "not_found"
	KindError      Kind = "error"
	KindInvalid    Kind = "invalid"
	KindSuppressed Kind = "suppressed"
)

// Outcome is the result of one lookup.
type Outcome struct {
	Kind Kind

	// Text is the untagged message to deliver. Empty means stay silent.
	Text string

	// Err is the failure behind a non-reply outcome.
	Err error

	// Resolved is the request that produced a reply. It differs from the
	// original request when the reply came from a search hit.
	Resolved Request

	// Searched reports whether the search fallback ran.
	Searched bool
}

// Silent reports whether nothing should be posted.
func (o Outcome) Silent() bool {
	return o.Text == ""
}

// IsPinnedVersion reports whether version consists only of digits and dots,
// which is taken to mean the user asked for one exact release. A miss on a
// pinned version is final; anything else may fall back to search, so
// "1.0.0rc1" still searches.
func IsPinnedVersion(version string) bool {
	if version == "" {
		return false
	}
	return strings.Trim(version, "0123456789.") == ""
}
