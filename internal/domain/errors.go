package domain

import "errors"

// Domain errors
var (
	ErrMissingSourceURL   = errors.New("missing source url")
	ErrUnsupportedScheme  = errors.New("unsupported source url scheme")
	ErrUpstreamStatus     = errors.New("unexpected upstream status")
	ErrFileTooLarge       = errors.New("source file exceeds maximum size")
	ErrObjectNotFound     = errors.New("object not found")
	ErrAnnotationRejected = errors.New("annotation operation returned no result")
)
