package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// Request headers read by the middleware chain.
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderOwnerEmail    = "X-Owner-Email"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.logger.ErrorContext(r.Context(), "panic while serving request",
					"method", r.Method,
					"uri", r.URL.RequestURI(),
					"error", fmt.Errorf("%v", err),
				)
				writeError(w, ErrInternalServer)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestContext starts a request scope, reusing the caller's correlation id.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get(HeaderCorrelationID))
		w.Header().Set(HeaderCorrelationID, observability.CorrelationIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			start  = time.Now()
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.InfoContext(r.Context(), "request served",
			"method", method,
			"uri", uri,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// resolveOwner sets the acting owner from X-Owner-Email, falling back to the
// configured default. Requests without either are rejected.
func (s *Server) resolveOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := domain.NormalizeOwner(r.Header.Get(HeaderOwnerEmail))
		if owner == "" {
			owner = domain.NormalizeOwner(s.owner)
		}
		if owner == "" {
			writeError(w, ErrBadRequest.WithMessage("X-Owner-Email header is required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(observability.WithActor(r.Context(), owner)))
	})
}

// ownerFrom returns the owner resolved by resolveOwner.
func ownerFrom(r *http.Request) string {
	return observability.ActorFromContext(r.Context())
}
