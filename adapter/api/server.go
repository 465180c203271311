// Package api provides the HTTP API for interviews and their results.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/justinas/alice"

	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux        *http.ServeMux
	server     *http.Server
	logger     *slog.Logger
	interviews *InterviewHandler
	results    *ResultsHandler
	health     *observability.HealthRegistry
	metrics    *observability.InMemoryMetrics
	owner      string
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// DefaultOwner is used when a request carries no X-Owner-Email header.
	DefaultOwner string
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handlers groups the route handlers and probes served by the API.
type Handlers struct {
	Interviews *InterviewHandler
	Results    *ResultsHandler
	Health     *observability.HealthRegistry
	Metrics    *observability.InMemoryMetrics
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, handlers Handlers, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if handlers.Health == nil {
		handlers.Health = observability.NewHealthRegistry()
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		interviews: handlers.Interviews,
		results:    handlers.Results,
		health:     handlers.Health,
		metrics:    handlers.Metrics,
		owner:      cfg.DefaultOwner,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return alice.New(s.recoverPanic, s.requestContext, s.logRequest).Then(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)

	owned := alice.New(s.resolveOwner)

	// Interviews
	s.mux.Handle("GET /api/v1/interviews", owned.ThenFunc(s.interviews.List))
	s.mux.Handle("POST /api/v1/interviews", owned.ThenFunc(s.interviews.Create))
	s.mux.Handle("POST /api/v1/interviews/import", owned.ThenFunc(s.interviews.Import))
	s.mux.Handle("GET /api/v1/interviews/{interviewID}", owned.ThenFunc(s.interviews.Get))
	s.mux.Handle("PUT /api/v1/interviews/{interviewID}", owned.ThenFunc(s.interviews.Submit))
	s.mux.Handle("DELETE /api/v1/interviews/{interviewID}", owned.ThenFunc(s.interviews.Delete))
	s.mux.Handle("POST /api/v1/interviews/{interviewID}/publish", owned.ThenFunc(s.interviews.Publish))
	s.mux.Handle("POST /api/v1/interviews/{interviewID}/close", owned.ThenFunc(s.interviews.Close))
	s.mux.Handle("GET /api/v1/interviews/{interviewID}/export", owned.ThenFunc(s.interviews.Export))

	// Results
	s.mux.Handle("GET /api/v1/interviews/{interviewID}/results", owned.ThenFunc(s.results.List))
	s.mux.Handle("POST /api/v1/interviews/{interviewID}/candidates", owned.ThenFunc(s.results.Invite))
	s.mux.Handle("POST /api/v1/interviews/{interviewID}/candidates/{candidateID}/complete", owned.ThenFunc(s.results.Complete))
	s.mux.Handle("PUT /api/v1/interviews/{interviewID}/candidates/{candidateID}/scores/{criterionID}", owned.ThenFunc(s.results.Score))
	s.mux.Handle("POST /api/v1/interviews/{interviewID}/candidates/{candidateID}/notes", owned.ThenFunc(s.results.Note))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.health.Check(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		writeJSON(w, http.StatusOK, observability.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, apiErr *APIError) {
	writeJSON(w, apiErr.Status, apiErr)
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMessage returns a copy of e carrying message.
func (e *APIError) WithMessage(message string) *APIError {
	return &APIError{Status: e.Status, Code: e.Code, Message: message}
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Resource not found",
	}
	ErrConflict = &APIError{
		Status:  http.StatusConflict,
		Code:    "conflict",
		Message: "Request conflicts with the current state",
	}
	ErrUnprocessable = &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "validation_failed",
		Message: "Request failed validation",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)
