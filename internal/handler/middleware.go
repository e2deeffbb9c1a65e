package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pdf-ocr-extractor/internal/domain"
	apperrors "pdf-ocr-extractor/pkg/errors"

	"github.com/google/uuid"
)

// RequestMiddleware tags every request with an id and logs its outcome
type RequestMiddleware struct {
	logger domain.Logger
}

// NewRequestMiddleware creates a new request middleware
func NewRequestMiddleware(logger domain.Logger) *RequestMiddleware {
	return &RequestMiddleware{logger: logger}
}

// Middleware assigns X-Request-Id, recovers panics into a generic 500 and logs the request
func (m *RequestMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)

		defer func() {
			if p := recover(); p != nil {
				m.logger.Error("Panic while serving request",
					apperrors.NewInternalError("handler panicked", fmt.Errorf("%v", p)),
					"request_id", requestID)
				if !rec.wroteHeader {
					writeText(rec, http.StatusInternalServerError, internalErrorMessage)
				}
			}
			m.logger.Info("Request served",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}()

		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	return r.ResponseWriter.Write(b)
}
