package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pypilink/pkg/bot"
	"github.com/matzehuels/pypilink/pkg/config"
	"github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/integrations/pypi"
	"github.com/matzehuels/pypilink/pkg/pipeline"
	"github.com/matzehuels/pypilink/pkg/pypiinfo"
	"github.com/matzehuels/pypilink/pkg/trigger"
)

type stubFetcher struct{}

func (stubFetcher) FetchMetadata(_ context.Context, pkg, version string) (*pypi.Document, error) {
	if pkg != "sopel" {
		return nil, errors.New(errors.ErrCodeNotFound, "%s", pypi.NotFoundMessage(pkg, version))
	}
	return &pypi.Document{
		Info: pypi.Info{Name: "sopel", Version: "7.0.0", Summary: "IRC bot", ReleaseURL: "https://pypi.org/project/sopel/7.0.0/"},
		URLs: []pypi.File{{UploadTime: "2020-05-18T04:59:41"}},
	}, nil
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(stubFetcher{}, nil, logger)
	runner.Formatter = pypiinfo.Formatter{Now: func() time.Time { return time.Date(2020, 5, 18, 5, 0, 0, 0, time.UTC) }}
	b := bot.New(trigger.NewExtractor("."), runner, "pypilink", logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "pypilink_test_total", Help: "test"}))

	s := New(b, config.Default().Server, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postMessage(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestPostMessageCommand(t *testing.T) {
	ts := testServer(t)

	resp, data := postMessage(t, ts, `{"channel":"#python","nick":"alice","text":".pypi sopel"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got MessageResponse
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Replies, 1)
	assert.True(t, strings.HasPrefix(got.Replies[0], "[PyPI] sopel 7.0.0 | Author: (unknown name) | Released "))
	assert.True(t, strings.HasSuffix(got.Replies[0], " | https://pypi.org/project/sopel/7.0.0/"))
	assert.Equal(t, []Lookup{{Package: "sopel", Source: "command", Commanded: true, Outcome: "reply"}}, got.Lookups)
}

func TestPostMessagePassiveMiss(t *testing.T) {
	ts := testServer(t)

	resp, data := postMessage(t, ts, `{"nick":"alice","text":"https://pypi.org/project/ghost/"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got MessageResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{}, got.Replies)
	assert.Equal(t, []Lookup{{Package: "ghost", Source: "link", Outcome: "suppressed"}}, got.Lookups)
	assert.Contains(t, string(data), `"replies":[]`)
}

func TestPostMessageBadRequests(t *testing.T) {
	ts := testServer(t)

	for _, body := range []string{`not json`, `{"text":""}`, `{"text":"x","extra":1}`} {
		resp, data := postMessage(t, ts, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)

		var e ErrorResponse
		require.NoError(t, json.Unmarshal(data, &e))
		assert.NotEmpty(t, e.Error)
	}
}

func TestHealthz(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestMetrics(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pypilink_test_total")
}

func TestMethodNotAllowed(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/v1/messages")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerAddr(t *testing.T) {
	s := New(nil, config.Server{Addr: ":1234"}, nil, nil)
	assert.Equal(t, ":1234", s.Addr())
}
