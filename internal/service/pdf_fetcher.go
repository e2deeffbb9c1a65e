package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pdf-ocr-extractor/internal/domain"
)

var _ domain.PDFSource = (*HTTPPDFSource)(nil)

// HTTPPDFSource streams PDF documents from HTTP(S) URLs
type HTTPPDFSource struct {
	client      *http.Client
	maxFileSize int64
	logger      domain.Logger
}

// NewHTTPPDFSource creates a source with its own client bounded by timeout.
// A maxFileSize of zero or less disables the size limit.
func NewHTTPPDFSource(timeout time.Duration, maxFileSize int64, logger domain.Logger) *HTTPPDFSource {
	return &HTTPPDFSource{
		client:      &http.Client{Timeout: timeout},
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Open issues a GET for sourceURL and returns the response body without reading it.
func (s *HTTPPDFSource) Open(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build source request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source pdf: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", domain.ErrUpstreamStatus, resp.StatusCode)
	}

	if s.maxFileSize > 0 && resp.ContentLength > s.maxFileSize {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d", domain.ErrFileTooLarge, resp.ContentLength, s.maxFileSize)
	}

	s.logger.Debug("Source opened", "host", u.Host, "content_length", resp.ContentLength, "content_type", resp.Header.Get("Content-Type"))

	if s.maxFileSize <= 0 {
		return resp.Body, nil
	}
	return &limitedBody{ReadCloser: resp.Body, remaining: s.maxFileSize}, nil
}

// limitedBody fails with ErrFileTooLarge once more than the limit has been read,
// so a streaming upload aborts instead of storing a truncated file.
type limitedBody struct {
	io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining < 0 {
		return 0, domain.ErrFileTooLarge
	}
	// Read one byte past the limit to detect overflow.
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}
	n, err := b.ReadCloser.Read(p)
	b.remaining -= int64(n)
	if b.remaining < 0 {
		return n, domain.ErrFileTooLarge
	}
	return n, err
}
