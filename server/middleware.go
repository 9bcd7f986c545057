package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// requestLogger attaches a logger carrying a fresh request id to the request
// context and logs each completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		logger := s.logger.With(zap.String("request_id", requestID))

		w.Header().Set(requestIDHeader, requestID)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), logger)))

		logger.Debug("handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes_written", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// configuredTable only lets through the tables present in the configuration.
func (s *Server) configuredTable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.config.HasTable(chi.URLParam(r, "table")) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
