// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pdf-ocr-extractor/internal/domain"
	apperrors "pdf-ocr-extractor/pkg/errors"
)

const (
	missingURLMessage    = "Missing 'url' query parameter."
	internalErrorMessage = "Internal Server Error"
)

// ExtractHandler serves OCR text extraction requests
type ExtractHandler struct {
	extractor domain.TextExtractor
	logger    domain.Logger
	timeout   time.Duration
}

// NewExtractHandler creates a new extraction handler. A zero timeout leaves
// the request context as the only deadline.
func NewExtractHandler(extractor domain.TextExtractor, logger domain.Logger, timeout time.Duration) *ExtractHandler {
	return &ExtractHandler{
		extractor: extractor,
		logger:    logger,
		timeout:   timeout,
	}
}

// ExtractText handles GET/POST requests carrying the source PDF in the url parameter
func (h *ExtractHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	requestID, _ := GetRequestIDFromContext(r)

	sourceURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if sourceURL == "" && r.Method == http.MethodPost {
		sourceURL = strings.TrimSpace(r.FormValue("url"))
	}
	if sourceURL == "" {
		writeText(w, http.StatusBadRequest, missingURLMessage)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.extractor.Extract(ctx, sourceURL)
	if err != nil {
		status := apperrors.GetStatusCode(err)
		if status == http.StatusBadRequest {
			writeText(w, status, missingURLMessage)
			return
		}
		h.logger.Error("Error extracting text from PDF", err, "request_id", requestID)
		writeText(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	h.logger.Info("Text extracted", "request_id", requestID, "id", result.ID, "pages", result.Pages)
	writeText(w, http.StatusOK, result.Text)
}
