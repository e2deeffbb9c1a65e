// Package vision submits PDF documents to Cloud Vision for asynchronous
// full-document text detection and decodes the JSON it writes back.
package vision

import (
	"context"
	"fmt"

	"pdf-ocr-extractor/internal/domain"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
)

var _ domain.DocumentAnnotator = (*Annotator)(nil)

// longRunningOp is the subset of *vision.AsyncBatchAnnotateFilesOperation the annotator relies on.
type longRunningOp interface {
	Name() string
	Wait(ctx context.Context, opts ...gax.CallOption) (*visionpb.AsyncBatchAnnotateFilesResponse, error)
}

type submitFunc func(ctx context.Context, req *visionpb.AsyncBatchAnnotateFilesRequest) (longRunningOp, error)

// Annotator implements domain.DocumentAnnotator on the Vision ImageAnnotator API.
type Annotator struct {
	client *vision.ImageAnnotatorClient
	submit submitFunc
	logger domain.Logger
}

// NewAnnotator creates an Annotator using Application Default Credentials.
func NewAnnotator(ctx context.Context, logger domain.Logger) (*Annotator, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create image annotator client: %w", err)
	}

	submit := func(ctx context.Context, req *visionpb.AsyncBatchAnnotateFilesRequest) (longRunningOp, error) {
		op, err := client.AsyncBatchAnnotateFiles(ctx, req)
		if err != nil {
			return nil, err
		}
		return op, nil
	}

	return &Annotator{client: client, submit: submit, logger: logger}, nil
}

// Annotate submits one file for DOCUMENT_TEXT_DETECTION and returns without
// waiting for the operation to finish.
func (a *Annotator) Annotate(ctx context.Context, req *domain.AnnotationRequest) (domain.AnnotationOperation, error) {
	op, err := a.submit(ctx, buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("submit async batch annotate files: %w", err)
	}

	a.logger.Debug("Annotation submitted", "operation", op.Name(), "source", req.SourceURI)
	return &operation{op: op}, nil
}

// Close releases the underlying client.
func (a *Annotator) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func buildRequest(req *domain.AnnotationRequest) *visionpb.AsyncBatchAnnotateFilesRequest {
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = domain.MimeTypePDF
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = domain.OutputBatchSize
	}

	return &visionpb.AsyncBatchAnnotateFilesRequest{
		Requests: []*visionpb.AsyncAnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					GcsSource: &visionpb.GcsSource{Uri: req.SourceURI},
					MimeType:  mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				OutputConfig: &visionpb.OutputConfig{
					GcsDestination: &visionpb.GcsDestination{Uri: req.DestinationURI},
					BatchSize:      int32(batchSize),
				},
			},
		},
	}
}

// operation adapts the Vision long-running operation to domain.AnnotationOperation.
// Polling and backoff stay inside the client library.
type operation struct {
	op longRunningOp
}

func (o *operation) Name() string {
	return o.op.Name()
}

func (o *operation) Wait(ctx context.Context) error {
	resp, err := o.op.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for operation %s: %w", o.op.Name(), err)
	}
	if resp == nil {
		return fmt.Errorf("operation %s: %w", o.op.Name(), domain.ErrAnnotationRejected)
	}
	return nil
}
