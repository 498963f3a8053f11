package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pypilink/pkg/chat"
	"github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/observability"
	"github.com/matzehuels/pypilink/pkg/pypiinfo"
)

// Runner executes lookups. It keeps no state between calls, so one Runner
// may serve many chat contexts concurrently.
type Runner struct {
	Fetcher   Fetcher
	Searcher  Searcher
	Formatter pypiinfo.Formatter
	Logger    *log.Logger

	// Tag prefixes delivered replies.
	Tag string

	// MaxMessages and MaxLineLength bound delivery; see chat.Split.
	MaxMessages   int
	MaxLineLength int
}

// NewRunner creates a runner with default delivery limits.
// A nil searcher disables the search fallback; a nil logger uses log.Default().
func NewRunner(fetcher Fetcher, searcher Searcher, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Fetcher:       fetcher,
		Searcher:      searcher,
		Logger:        logger,
		Tag:           DefaultTag,
		MaxMessages:   DefaultMaxMessages,
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Handle looks req up and delivers the outcome through sender.
// The returned error only reports a failed delivery.
func (r *Runner) Handle(ctx context.Context, sender chat.Sender, req Request, commanded bool) (Outcome, error) {
	outcome := r.Lookup(ctx, req, commanded)
	if outcome.Silent() {
		return outcome, nil
	}
	for _, line := range chat.Split(r.Tag+outcome.Text, r.MaxLineLength, r.MaxMessages) {
		if err := sender.Say(ctx, line); err != nil {
			return outcome, fmt.Errorf("send reply: %w", err)
		}
	}
	return outcome, nil
}

// Lookup resolves req to an outcome without delivering it.
//
// commanded selects the explicit-command behaviour: a release link is
// appended to replies, failures produce a message, and a miss may fall back
// to search. Passive lookups reply only on success.
func (r *Runner) Lookup(ctx context.Context, req Request, commanded bool) Outcome {
	source := "passive"
	if commanded {
		source = "command"
	}
	logger := loggerFrom(ctx, r.Logger).With("package", req.PackageName, "version", req.Version, "commanded", commanded)
	hooks := observability.Lookup()
	hooks.OnLookupStart(ctx, source, req.PackageName, req.Version)
	start := time.Now()

	outcome := r.lookup(ctx, logger, req, commanded)
	if !commanded && outcome.Kind != KindReply {
		outcome.Kind = KindSuppressed
		outcome.Text = ""
	}

	duration := time.Since(start)
	hooks.OnLookupComplete(ctx, source, req.PackageName, string(outcome.Kind), duration)
	if unexpected(outcome.Err) {
		logger.Warn("lookup failed", "outcome", outcome.Kind, "duration", duration, "error", outcome.Err)
	} else {
		logger.Info("lookup complete", "outcome", outcome.Kind, "duration", duration)
	}
	return outcome
}

func (r *Runner) lookup(ctx context.Context, logger *log.Logger, req Request, commanded bool) Outcome {
	if err := validate(req); err != nil {
		return Outcome{Kind: KindInvalid, Text: errors.UserMessage(err), Err: err}
	}

	outcome := r.direct(ctx, req, commanded)
	if outcome.Kind != KindNotFound || !r.shouldSearch(req, commanded) {
		return outcome
	}

	logger.Debug("direct lookup missed, searching")
	return r.fallback(ctx, logger, req, outcome)
}

// direct fetches and formats exactly the requested package and version.
func (r *Runner) direct(ctx context.Context, req Request, includeLink bool) Outcome {
	doc, err := r.Fetcher.FetchMetadata(ctx, req.PackageName, req.Version)
	if err != nil {
		return failure(err)
	}

	line, err := r.Formatter.Format(doc, includeLink)
	if err != nil {
		return failure(err)
	}
	return Outcome{Kind: KindReply, Text: line, Resolved: req}
}

func (r *Runner) shouldSearch(req Request, commanded bool) bool {
	return commanded && r.Searcher != nil && !IsPinnedVersion(req.Version)
}

// fallback searches for req and looks up the first hit. miss is returned
// unchanged when the search finds nothing.
func (r *Runner) fallback(ctx context.Context, logger *log.Logger, req Request, miss Outcome) Outcome {
	query := strings.TrimSpace(req.String())
	hits, err := r.Searcher.Search(ctx, query)
	observability.Lookup().OnSearchFallback(ctx, query, len(hits), err)
	if err != nil {
		out := failure(err)
		out.Searched = true
		return out
	}
	if len(hits) == 0 {
		miss.Searched = true
		return miss
	}

	hit := Request{PackageName: hits[0].Name, Version: hits[0].Version}
	logger.Debug("search hit", "query", query, "hit", hit.String(), "hits", len(hits))
	out := r.direct(ctx, hit, true)
	out.Searched = true
	return out
}

// failure maps a coded error to the message a commanded lookup shows.
func failure(err error) Outcome {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		return Outcome{Kind: KindNotFound, Text: errors.UserMessage(err), Err: err}
	default:
		return Outcome{Kind: KindError, Text: GenericFailure, Err: err}
	}
}

// unexpected reports whether err is worth a warning: anything but a miss
// or a rejected request.
func unexpected(err error) bool {
	if err == nil {
		return false
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidInput:
		return false
	}
	return true
}

func validate(req Request) error {
	if err := errors.ValidatePythonPackageName(req.PackageName); err != nil {
		return err
	}
	return errors.ValidateVersion(req.Version)
}
