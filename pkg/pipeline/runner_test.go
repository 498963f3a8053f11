package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pypilink/pkg/chat"
	"github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/integrations/pypi"
	"github.com/matzehuels/pypilink/pkg/observability"
	"github.com/matzehuels/pypilink/pkg/pypiinfo"
)

var now = time.Date(2020, 6, 18, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	docs  map[string]*pypi.Document
	err   error
	calls []Request
}

func (f *fakeFetcher) FetchMetadata(_ context.Context, pkg, version string) (*pypi.Document, error) {
	f.calls = append(f.calls, Request{PackageName: pkg, Version: version})
	if f.err != nil {
		return nil, f.err
	}
	if doc, ok := f.docs[pkg+"@"+version]; ok {
		return doc, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "%s", pypi.NotFoundMessage(pkg, version))
}

type fakeSearcher struct {
	hits    []pypi.SearchHit
	err     error
	queries []string
}

func (s *fakeSearcher) Search(_ context.Context, query string) ([]pypi.SearchHit, error) {
	s.queries = append(s.queries, query)
	return s.hits, s.err
}

func document(name, version string) *pypi.Document {
	return &pypi.Document{
		Info: pypi.Info{
			Name:       name,
			Version:    version,
			Author:     "Sean B. Palmer",
			Summary:    "Simple and extensible IRC bot",
			ReleaseURL: fmt.Sprintf("https://pypi.org/project/%s/%s/", name, version),
		},
		URLs: []pypi.File{{UploadTime: "2020-06-15T12:00:00"}},
	}
}

func testRunner(f Fetcher, s Searcher) *Runner {
	r := NewRunner(f, s, log.New(io.Discard))
	r.Formatter = pypiinfo.Formatter{Now: func() time.Time { return now }}
	return r
}

func TestLookupCommandedReply(t *testing.T) {
	f := &fakeFetcher{docs: map[string]*pypi.Document{"sopel@": document("sopel", "7.0.0")}}
	r := testRunner(f, nil)

	out := r.Lookup(context.Background(), Request{PackageName: "sopel"}, true)

	assert.Equal(t, KindReply, out.Kind)
	assert.Equal(t,
		"sopel 7.0.0 | Author: Sean B. Palmer | Released 3 days ago | Simple and extensible IRC bot | https://pypi.org/project/sopel/7.0.0/",
		out.Text)
	assert.Equal(t, Request{PackageName: "sopel"}, out.Resolved)
	assert.False(t, out.Searched)
}

func TestLookupPassiveReplyHasNoLink(t *testing.T) {
	f := &fakeFetcher{docs: map[string]*pypi.Document{"sopel@7.0.0": document("sopel", "7.0.0")}}
	r := testRunner(f, &fakeSearcher{})

	out := r.Lookup(context.Background(), Request{PackageName: "sopel", Version: "7.0.0"}, false)

	assert.Equal(t, KindReply, out.Kind)
	assert.NotContains(t, out.Text, "https://")
}

func TestLookupPassiveMissIsSuppressed(t *testing.T) {
	f := &fakeFetcher{}
	s := &fakeSearcher{hits: []pypi.SearchHit{{Name: "sopel", Version: "7.0.0"}}}
	r := testRunner(f, s)

	out := r.Lookup(context.Background(), Request{PackageName: "nope"}, false)

	assert.Equal(t, KindSuppressed, out.Kind)
	assert.True(t, out.Silent())
	assert.True(t, errors.Is(out.Err, errors.ErrCodeNotFound))
	assert.Empty(t, s.queries, "passive lookups never search")
}

func TestLookupPinnedVersionMissDoesNotSearch(t *testing.T) {
	f := &fakeFetcher{}
	s := &fakeSearcher{hits: []pypi.SearchHit{{Name: "sopel", Version: "7.0.0"}}}
	r := testRunner(f, s)

	out := r.Lookup(context.Background(), Request{PackageName: "sopel", Version: "99.99.99"}, true)

	assert.Equal(t, KindNotFound, out.Kind)
	assert.Equal(t, "PyPI couldn't find sopel version 99.99.99. Are you sure it exists?", out.Text)
	assert.Empty(t, s.queries)
	assert.Len(t, f.calls, 1)
}

func TestLookupSearchFallback(t *testing.T) {
	f := &fakeFetcher{docs: map[string]*pypi.Document{"sopel@7.1.9": document("sopel", "7.1.9")}}
	s := &fakeSearcher{hits: []pypi.SearchHit{
		{Name: "sopel", Version: "7.1.9"},
		{Name: "sopel-help", Version: "0.4.0"},
	}}
	r := testRunner(f, s)

	out := r.Lookup(context.Background(), Request{PackageName: "irc-bot"}, true)

	require.Equal(t, KindReply, out.Kind, "outcome: %+v", out)
	assert.True(t, out.Searched)
	assert.Equal(t, Request{PackageName: "sopel", Version: "7.1.9"}, out.Resolved)
	assert.True(t, strings.HasSuffix(out.Text, " | https://pypi.org/project/sopel/7.1.9/"))
	assert.Equal(t, []string{"irc-bot"}, s.queries)
	assert.Equal(t, []Request{
		{PackageName: "irc-bot"},
		{PackageName: "sopel", Version: "7.1.9"},
	}, f.calls)
}

func TestLookupSearchQueryIncludesUnpinnedVersion(t *testing.T) {
	s := &fakeSearcher{}
	r := testRunner(&fakeFetcher{}, s)

	r.Lookup(context.Background(), Request{PackageName: "sopel", Version: "1.0.0rc1"}, true)

	assert.Equal(t, []string{"sopel 1.0.0rc1"}, s.queries)
}

func TestLookupSearchNoHitsKeepsMissMessage(t *testing.T) {
	r := testRunner(&fakeFetcher{}, &fakeSearcher{})

	out := r.Lookup(context.Background(), Request{PackageName: "nope"}, true)

	assert.Equal(t, KindNotFound, out.Kind)
	assert.True(t, out.Searched)
	assert.Equal(t, "PyPI couldn't find nope version (any). Are you sure it exists?", out.Text)
}

func TestLookupSearchHitMissesToo(t *testing.T) {
	f := &fakeFetcher{}
	s := &fakeSearcher{hits: []pypi.SearchHit{{Name: "ghost", Version: "1.0"}}}
	r := testRunner(f, s)

	out := r.Lookup(context.Background(), Request{PackageName: "nope"}, true)

	assert.Equal(t, KindNotFound, out.Kind)
	assert.Equal(t, "PyPI couldn't find ghost version 1.0. Are you sure it exists?", out.Text)
	assert.Len(t, s.queries, 1, "fallback never recurses into another search")
}

func TestLookupSearchError(t *testing.T) {
	s := &fakeSearcher{err: errors.New(errors.ErrCodeHTTP, "search disabled")}
	r := testRunner(&fakeFetcher{}, s)

	out := r.Lookup(context.Background(), Request{PackageName: "nope"}, true)

	assert.Equal(t, KindError, out.Kind)
	assert.Equal(t, GenericFailure, out.Text)
}

func TestLookupFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		code errors.Code
	}{
		{"network", errors.ErrCodeNetwork},
		{"http", errors.ErrCodeHTTP},
		{"decode", errors.ErrCodeDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{}
			r := testRunner(&fakeFetcher{err: errors.New(tt.code, "boom")}, s)

			out := r.Lookup(context.Background(), Request{PackageName: "sopel"}, true)
			assert.Equal(t, KindError, out.Kind)
			assert.Equal(t, GenericFailure, out.Text)
			assert.True(t, errors.Is(out.Err, tt.code))
			assert.Empty(t, s.queries, "only a miss falls back to search")

			out = r.Lookup(context.Background(), Request{PackageName: "sopel"}, false)
			assert.Equal(t, KindSuppressed, out.Kind)
			assert.True(t, out.Silent())
		})
	}
}

func TestLookupMalformedDocument(t *testing.T) {
	doc := document("sopel", "7.0.0")
	doc.URLs = nil
	r := testRunner(&fakeFetcher{docs: map[string]*pypi.Document{"sopel@": doc}}, nil)

	out := r.Lookup(context.Background(), Request{PackageName: "sopel"}, true)

	assert.Equal(t, KindError, out.Kind)
	assert.Equal(t, GenericFailure, out.Text)
	assert.True(t, errors.Is(out.Err, errors.ErrCodeMalformedData))
}

func TestLookupInvalidRequest(t *testing.T) {
	f := &fakeFetcher{}
	r := testRunner(f, &fakeSearcher{})

	out := r.Lookup(context.Background(), Request{PackageName: "../etc"}, true)
	assert.Equal(t, KindInvalid, out.Kind)
	assert.NotEmpty(t, out.Text)

	out = r.Lookup(context.Background(), Request{PackageName: "sopel", Version: "1..0"}, true)
	assert.Equal(t, KindInvalid, out.Kind)

	out = r.Lookup(context.Background(), Request{PackageName: "-bad-"}, false)
	assert.Equal(t, KindSuppressed, out.Kind)

	assert.Empty(t, f.calls, "invalid requests never reach the registry")
}

func TestLookupWithoutSearcher(t *testing.T) {
	f := &fakeFetcher{}
	r := testRunner(f, nil)

	out := r.Lookup(context.Background(), Request{PackageName: "nope"}, true)

	assert.Equal(t, KindNotFound, out.Kind)
	assert.False(t, out.Searched)
}

func TestHandleDelivers(t *testing.T) {
	f := &fakeFetcher{docs: map[string]*pypi.Document{"sopel@": document("sopel", "7.0.0")}}
	r := testRunner(f, nil)
	var rec chat.Recorder

	out, err := r.Handle(context.Background(), &rec, Request{PackageName: "sopel"}, true)
	require.NoError(t, err)

	lines := rec.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, DefaultTag+out.Text, lines[0])
}

func TestHandleSilentSendsNothing(t *testing.T) {
	r := testRunner(&fakeFetcher{}, nil)
	var rec chat.Recorder

	_, err := r.Handle(context.Background(), &rec, Request{PackageName: "nope"}, false)
	require.NoError(t, err)
	assert.Empty(t, rec.Lines())
}

func TestHandleSplitsToLimits(t *testing.T) {
	doc := document("sopel", "7.0.0")
	doc.Info.Summary = strings.Repeat("very long summary ", 20)
	r := testRunner(&fakeFetcher{docs: map[string]*pypi.Document{"sopel@": doc}}, nil)
	r.MaxLineLength = 60
	var rec chat.Recorder

	_, err := r.Handle(context.Background(), &rec, Request{PackageName: "sopel"}, true)
	require.NoError(t, err)

	lines := rec.Lines()
	require.Len(t, lines, DefaultMaxMessages)
	assert.True(t, strings.HasPrefix(lines[0], DefaultTag))
	assert.True(t, strings.HasSuffix(lines[1], chat.Ellipsis))
}

func TestHandleMultilineSummaryStaysWithinLimits(t *testing.T) {
	doc := document("evil", "1.0")
	doc.Info.Summary = "line one\r\nPRIVMSG #chan :spam\nthird\nfourth"
	r := testRunner(&fakeFetcher{docs: map[string]*pypi.Document{"evil@": doc}}, nil)
	var rec chat.Recorder

	_, err := r.Handle(context.Background(), &rec, Request{PackageName: "evil"}, true)
	require.NoError(t, err)

	lines := rec.Lines()
	require.NotEmpty(t, lines)
	assert.LessOrEqual(t, len(lines), DefaultMaxMessages)
	for _, line := range lines {
		assert.NotContains(t, line, "\n")
		assert.NotContains(t, line, "\r")
	}
}

func TestHandleSendError(t *testing.T) {
	f := &fakeFetcher{docs: map[string]*pypi.Document{"sopel@": document("sopel", "7.0.0")}}
	r := testRunner(f, nil)
	failing := chat.SenderFunc(func(context.Context, string) error { return io.ErrClosedPipe })

	out, err := r.Handle(context.Background(), failing, Request{PackageName: "sopel"}, true)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, KindReply, out.Kind)
}

type recordingHooks struct {
	observability.NoopLookupHooks
	mu       sync.Mutex
	outcomes []string
	searches int
}

func (h *recordingHooks) OnLookupComplete(_ context.Context, source, _, outcome string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, source+":"+outcome)
}

func (h *recordingHooks) OnSearchFallback(context.Context, string, int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.searches++
}

func TestLookupEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLookupHooks(hooks)
	t.Cleanup(observability.Reset)

	f := &fakeFetcher{docs: map[string]*pypi.Document{"sopel@": document("sopel", "7.0.0")}}
	r := testRunner(f, &fakeSearcher{})

	r.Lookup(context.Background(), Request{PackageName: "sopel"}, true)
	r.Lookup(context.Background(), Request{PackageName: "nope"}, false)
	r.Lookup(context.Background(), Request{PackageName: "nope"}, true)

	assert.Equal(t, []string{"command:reply", "passive:suppressed", "command:not_found"}, hooks.outcomes)
	assert.Equal(t, 1, hooks.searches)
}
