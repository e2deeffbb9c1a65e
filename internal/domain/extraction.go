package domain

import (
	"strings"
	"time"
)

const (
	// MimeTypePDF is the input type submitted for document text detection
	MimeTypePDF = "application/pdf"
	// OutputBatchSize is the number of pages written per output object
	OutputBatchSize = 1
)

// AnnotationRequest describes one asynchronous file annotation
type AnnotationRequest struct {
	SourceURI      string
	MimeType       string
	DestinationURI string
	BatchSize      int
}

// PageText is the full-text annotation of a single processed page
type PageText struct {
	Page int
	Text string
}

// PageError is a per-page failure reported inside an OCR output object
type PageError struct {
	Page    int
	Message string
}

// AnnotationOutput is the decoded content of one OCR output object
type AnnotationOutput struct {
	Pages      []PageText
	Errors     []PageError
	TotalPages int
}

// ExtractionResult is the outcome of one successful pipeline run
type ExtractionResult struct {
	ID            string
	Text          string
	Pages         int
	OutputObjects int
	Duration      time.Duration
}

// TextBuilder accumulates page texts, each followed by a newline
type TextBuilder struct {
	sb    strings.Builder
	pages int
}

// Append adds a page text; empty texts carry no annotation and are skipped
func (b *TextBuilder) Append(text string) {
	if text == "" {
		return
	}
	b.sb.WriteString(text)
	b.sb.WriteByte('\n')
	b.pages++
}

// Pages returns the number of texts appended so far
func (b *TextBuilder) Pages() int {
	return b.pages
}

func (b *TextBuilder) String() string {
	return b.sb.String()
}
