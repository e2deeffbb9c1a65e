package domain

import (
	"context"
	"io"
	"time"
)

// PDFSource opens a streaming reader over a remote PDF document
type PDFSource interface {
	Open(ctx context.Context, sourceURL string) (io.ReadCloser, error)
}

// ObjectStore defines the bucket-scoped object operations the pipeline needs
type ObjectStore interface {
	// Create streams r into a new object and returns once the write has
	// finished or failed. A failed write leaves no committed object.
	Create(ctx context.Context, key string, contentType string, r io.Reader) error
	List(ctx context.Context, prefix string) ([]string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// URI returns the scheme://bucket/key address of an object or prefix
	URI(key string) string
}

// AnnotationOperation is the awaitable handle of a submitted annotation request
type AnnotationOperation interface {
	Name() string
	Wait(ctx context.Context) error
}

// DocumentAnnotator submits asynchronous full-document text detection requests
type DocumentAnnotator interface {
	Annotate(ctx context.Context, req *AnnotationRequest) (AnnotationOperation, error)
}

// AnnotationDecoder decodes one OCR output object into page texts
type AnnotationDecoder interface {
	Decode(data []byte) (*AnnotationOutput, error)
}

// TextExtractor runs the whole fetch, stage, annotate and collect pipeline
type TextExtractor interface {
	Extract(ctx context.Context, sourceURL string) (*ExtractionResult, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetLogFormat() string
	GetStorageBucket() string
	GetStagingPrefix() string
	GetOutputPrefix() string
	GetMaxFileSize() int64
	GetFetchTimeout() time.Duration
	GetRequestTimeout() time.Duration
	GetAllowedOrigins() []string
}
