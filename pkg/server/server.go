// Package server exposes the bot over HTTP.
//
// Chat gateways POST each message to /v1/messages and relay the replies
// from the response. The server also serves /healthz and Prometheus
// metrics on /metrics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pypilink/pkg/bot"
	"github.com/matzehuels/pypilink/pkg/chat"
	"github.com/matzehuels/pypilink/pkg/config"
)

// maxBodyBytes bounds a posted message.
const maxBodyBytes = 64 << 10

// MessageResponse is the body returned for a posted message.
type MessageResponse struct {
	Replies []string `json:"replies"`
	Lookups []Lookup `json:"lookups"`
}

// Lookup summarizes one trigger found in the message.
type Lookup struct {
	Package   string `json:"package"`
	Version   string `json:"version,omitempty"`
	Source    string `json:"source"`
	Commanded bool   `json:"commanded"`
	Outcome   string `json:"outcome"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the webhook HTTP server.
type Server struct {
	bot     *bot.Bot
	logger  *log.Logger
	metrics http.Handler
	srv     *http.Server
}

// New creates a Server. A nil metrics handler serves the default
// Prometheus registry.
func New(b *bot.Bot, cfg config.Server, metrics http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	s := &Server{bot: b, logger: logger, metrics: metrics}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.handleMessage)
	})
	return r
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg bot.Message
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message: " + err.Error()})
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "text is required"})
		return
	}

	var rec chat.Recorder
	results, err := s.bot.HandleMessage(r.Context(), msg, &rec)
	if err != nil {
		s.logger.Error("handle message", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "message not handled"})
		return
	}

	resp := MessageResponse{Replies: rec.Lines(), Lookups: make([]Lookup, 0, len(results))}
	if resp.Replies == nil {
		resp.Replies = []string{}
	}
	for _, res := range results {
		resp.Lookups = append(resp.Lookups, Lookup{
			Package:   res.Match.Request.PackageName,
			Version:   res.Match.Request.Version,
			Source:    string(res.Match.Source),
			Commanded: res.Match.Commanded,
			Outcome:   string(res.Outcome.Kind),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
