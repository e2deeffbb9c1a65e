package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pdf-ocr-extractor/internal/domain"
	apperrors "pdf-ocr-extractor/pkg/errors"

	"github.com/google/uuid"
)

const defaultCleanupTimeout = 30 * time.Second

var _ domain.TextExtractor = (*ExtractionService)(nil)

// ExtractionOptions configures object naming for the pipeline
type ExtractionOptions struct {
	StagingPrefix  string
	OutputPrefix   string
	CleanupTimeout time.Duration
}

// ExtractionService stages a remote PDF, runs document text detection on it
// and collects the recognized text from the OCR output objects.
type ExtractionService struct {
	source    domain.PDFSource
	store     domain.ObjectStore
	annotator domain.DocumentAnnotator
	decoder   domain.AnnotationDecoder
	logger    domain.Logger

	stagingPrefix  string
	outputPrefix   string
	cleanupTimeout time.Duration
	newID          func() string
}

// NewExtractionService creates a new extraction pipeline
func NewExtractionService(
	source domain.PDFSource,
	store domain.ObjectStore,
	annotator domain.DocumentAnnotator,
	decoder domain.AnnotationDecoder,
	logger domain.Logger,
	opts ExtractionOptions,
) *ExtractionService {
	cleanupTimeout := opts.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = defaultCleanupTimeout
	}
	return &ExtractionService{
		source:         source,
		store:          store,
		annotator:      annotator,
		decoder:        decoder,
		logger:         logger,
		stagingPrefix:  opts.StagingPrefix,
		outputPrefix:   opts.OutputPrefix,
		cleanupTimeout: cleanupTimeout,
		newID:          uuid.NewString,
	}
}

// Extract runs the pipeline for one source URL. Steps run strictly in
// sequence; no step is retried.
func (s *ExtractionService) Extract(ctx context.Context, sourceURL string) (*domain.ExtractionResult, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return nil, apperrors.NewValidationError("Missing 'url' query parameter.", domain.ErrMissingSourceURL.Error())
	}

	start := time.Now()
	id := s.newID()
	stagingKey := s.stagingPrefix + "temp-" + id + ".pdf"
	outputPrefix := s.outputPrefix + id + "/"

	if err := s.stage(ctx, sourceURL, stagingKey); err != nil {
		return nil, err
	}
	defer s.discard(ctx, stagingKey)

	op, err := s.annotator.Annotate(ctx, &domain.AnnotationRequest{
		SourceURI:      s.store.URI(stagingKey),
		MimeType:       domain.MimeTypePDF,
		DestinationURI: s.store.URI(outputPrefix),
		BatchSize:      domain.OutputBatchSize,
	})
	if err != nil {
		return nil, apperrors.NewOCRError("failed to submit annotation request", err)
	}

	s.logger.Info("Waiting for annotation", "id", id, "operation", op.Name())
	if err := op.Wait(ctx); err != nil {
		return nil, apperrors.NewOCRError("annotation operation failed", err)
	}

	text, objects, err := s.collect(ctx, id, outputPrefix)
	if err != nil {
		return nil, err
	}

	result := &domain.ExtractionResult{
		ID:            id,
		Text:          text.String(),
		Pages:         text.Pages(),
		OutputObjects: objects,
		Duration:      time.Since(start),
	}
	s.logger.Info("Extraction completed",
		"id", id,
		"pages", result.Pages,
		"output_objects", result.OutputObjects,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// stage streams the source document into the staging object and returns
// once the write has finished or failed.
func (s *ExtractionService) stage(ctx context.Context, sourceURL, key string) error {
	body, err := s.source.Open(ctx, sourceURL)
	if err != nil {
		return apperrors.NewNetworkError("failed to fetch source pdf", err)
	}
	defer body.Close()

	if err := s.store.Create(ctx, key, domain.MimeTypePDF, body); err != nil {
		return apperrors.NewStorageError("failed to stage source pdf", err)
	}

	s.logger.Debug("Source staged", "object", key)
	return nil
}

// collect reads every output object under prefix in listing order and
// deletes each one once read. On failure the unread objects are discarded too.
func (s *ExtractionService) collect(ctx context.Context, id, prefix string) (*domain.TextBuilder, int, error) {
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("failed to list ocr output", err)
	}

	text := &domain.TextBuilder{}
	for i, key := range keys {
		if err := s.readOutput(ctx, id, key, text); err != nil {
			s.discard(ctx, keys[i:]...)
			return nil, 0, err
		}
		s.discard(ctx, key)
	}
	return text, len(keys), nil
}

func (s *ExtractionService) readOutput(ctx context.Context, id, key string, text *domain.TextBuilder) error {
	data, err := s.store.Read(ctx, key)
	if err != nil {
		return apperrors.NewStorageError("failed to download ocr output", err)
	}

	out, err := s.decoder.Decode(data)
	if err != nil {
		return apperrors.NewProcessingError(fmt.Sprintf("malformed ocr output %s", key), err)
	}

	s.logger.Debug("OCR output decoded", "id", id, "object", key, "pages", len(out.Pages), "total_pages", out.TotalPages)
	for _, pe := range out.Errors {
		s.logger.Warn("Page not annotated", "id", id, "object", key, "page", pe.Page, "reason", pe.Message)
	}
	for _, page := range out.Pages {
		text.Append(page.Text)
	}
	return nil
}

// discard deletes objects on a context detached from request cancellation.
// Failures are logged and never returned.
func (s *ExtractionService) discard(ctx context.Context, keys ...string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("Cleanup failed", "object", key, "error", err)
		}
	}
}
