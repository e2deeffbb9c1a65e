package vision

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"pdf-ocr-extractor/internal/domain"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/protobuf/encoding/protojson"
)

var _ domain.AnnotationDecoder = OutputDecoder{}

var errMissingResponses = errors.New("output has no responses array")

// OutputDecoder decodes the AnnotateFileResponse JSON objects Vision writes
// to the output prefix.
type OutputDecoder struct{}

// Decode returns the page texts of one output object in response order.
// Responses without a full-text annotation are skipped. An object without a
// top-level responses array is rejected.
func (OutputDecoder) Decode(data []byte) (*domain.AnnotationOutput, error) {
	var shape struct {
		Responses json.RawMessage `json:"responses"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("decode annotate file response: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(shape.Responses), []byte("[")) {
		return nil, fmt.Errorf("decode annotate file response: %w", errMissingResponses)
	}

	var resp visionpb.AnnotateFileResponse
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := opts.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode annotate file response: %w", err)
	}

	out := &domain.AnnotationOutput{TotalPages: int(resp.GetTotalPages())}
	for i, r := range resp.GetResponses() {
		page := int(r.GetContext().GetPageNumber())
		if page == 0 {
			page = i + 1
		}
		if msg := r.GetError().GetMessage(); msg != "" {
			out.Errors = append(out.Errors, domain.PageError{Page: page, Message: msg})
		}
		if text := r.GetFullTextAnnotation().GetText(); text != "" {
			out.Pages = append(out.Pages, domain.PageText{Page: page, Text: text})
		}
	}
	return out, nil
}
