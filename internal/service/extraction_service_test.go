package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"pdf-ocr-extractor/internal/domain"
	"pdf-ocr-extractor/internal/infra/vision"
	apperrors "pdf-ocr-extractor/pkg/errors"
)

const testBucketURI = "gs://test-bucket/"

// Mock implementations for testing
type MockLogger struct{}

func (l *MockLogger) Info(msg string, fields ...interface{})             {}
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockLogger) Warn(msg string, fields ...interface{})             {}

type MockObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	created   []string
	deleted   []string
	listCalls int

	createErr error
	listErr   error
	readErr   error
	deleteErr error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string][]byte)}
}

func (m *MockObjectStore) Create(ctx context.Context, key string, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.created = append(m.created, key)
	return nil
}

func (m *MockObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockObjectStore) Read(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return data, nil
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

func (m *MockObjectStore) URI(key string) string {
	return testBucketURI + key
}

func (m *MockObjectStore) put(key, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = []byte(data)
}

func (m *MockObjectStore) wasDeleted(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.deleted {
		if k == key {
			return true
		}
	}
	return false
}

type MockPDFSource struct {
	body    string
	openErr error
	readErr error
	opened  int
}

func (m *MockPDFSource) Open(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	m.opened++
	if m.openErr != nil {
		return nil, m.openErr
	}
	if m.readErr != nil {
		return io.NopCloser(io.MultiReader(strings.NewReader(m.body), &failingReader{err: m.readErr})), nil
	}
	return io.NopCloser(strings.NewReader(m.body)), nil
}

type failingReader struct{ err error }

func (r *failingReader) Read(p []byte) (int, error) { return 0, r.err }

// MockAnnotator writes its canned outputs into the store when the operation
// completes, the way the OCR service writes to the destination prefix.
type MockAnnotator struct {
	store     *MockObjectStore
	outputs   []string
	submitErr error
	waitErr   error
	requests  []*domain.AnnotationRequest
}

func (m *MockAnnotator) Annotate(ctx context.Context, req *domain.AnnotationRequest) (domain.AnnotationOperation, error) {
	m.requests = append(m.requests, req)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &mockOperation{annotator: m, req: req}, nil
}

type mockOperation struct {
	annotator *MockAnnotator
	req       *domain.AnnotationRequest
}

func (o *mockOperation) Name() string { return "operations/mock" }

func (o *mockOperation) Wait(ctx context.Context) error {
	if o.annotator.waitErr != nil {
		return o.annotator.waitErr
	}
	prefix := strings.TrimPrefix(o.req.DestinationURI, testBucketURI)
	for i, out := range o.annotator.outputs {
		o.annotator.store.put(fmt.Sprintf("%soutput-%d-to-%d.json", prefix, i+1, i+1), out)
	}
	return nil
}

func pageResponse(texts ...string) string {
	parts := make([]string, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, fmt.Sprintf(`{"fullTextAnnotation":{"text":%q}}`, text))
	}
	return `{"responses":[` + strings.Join(parts, ",") + `]}`
}

type fixture struct {
	source    *MockPDFSource
	store     *MockObjectStore
	annotator *MockAnnotator
	svc       *ExtractionService
}

func newFixture(outputs ...string) *fixture {
	store := NewMockObjectStore()
	source := &MockPDFSource{body: "%PDF-1.7 test document"}
	annotator := &MockAnnotator{store: store, outputs: outputs}
	svc := NewExtractionService(source, store, annotator, vision.OutputDecoder{}, &MockLogger{}, ExtractionOptions{
		OutputPrefix: "output/",
	})
	return &fixture{source: source, store: store, annotator: annotator, svc: svc}
}

func TestExtract_MissingURL(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Extract(context.Background(), "  ")
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.source.opened != 0 || len(f.store.created) != 0 || len(f.annotator.requests) != 0 || f.store.listCalls != 0 {
		t.Fatalf("expected no external calls")
	}
}

func TestExtract_SingleOutputTwoPages(t *testing.T) {
	f := newFixture(pageResponse("Page1", "Page2"))

	result, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Text != "Page1\nPage2\n" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if result.Pages != 2 || result.OutputObjects != 1 {
		t.Fatalf("unexpected counts: pages=%d objects=%d", result.Pages, result.OutputObjects)
	}
}

func TestExtract_AnnotationRequest(t *testing.T) {
	f := newFixture(pageResponse("x"))
	f.svc.newID = func() string { return "fixed-id" }

	if _, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf"); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(f.annotator.requests) != 1 {
		t.Fatalf("expected one annotation request, got %d", len(f.annotator.requests))
	}
	req := f.annotator.requests[0]
	if req.SourceURI != "gs://test-bucket/temp-fixed-id.pdf" {
		t.Fatalf("unexpected source uri %s", req.SourceURI)
	}
	if req.DestinationURI != "gs://test-bucket/output/fixed-id/" {
		t.Fatalf("unexpected destination uri %s", req.DestinationURI)
	}
	if req.MimeType != domain.MimeTypePDF || req.BatchSize != 1 {
		t.Fatalf("unexpected request %+v", req)
	}
	if _, ok := f.store.objects["temp-fixed-id.pdf"]; ok {
		t.Fatalf("expected staging object to be removed after extraction")
	}
	if !f.store.wasDeleted("temp-fixed-id.pdf") {
		t.Fatalf("expected staging object delete")
	}
}

func TestExtract_TwoOutputObjects(t *testing.T) {
	f := newFixture(pageResponse("First"), pageResponse("Second"))

	result, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(result.Text, "First\n") || !strings.Contains(result.Text, "Second\n") {
		t.Fatalf("expected both texts, got %q", result.Text)
	}
	if len(f.store.objects) != 0 {
		t.Fatalf("expected every object to be deleted, left %d", len(f.store.objects))
	}
	outputs := 0
	for _, key := range f.store.deleted {
		if strings.HasPrefix(key, "output/") {
			outputs++
		}
	}
	if outputs != 2 {
		t.Fatalf("expected 2 output deletions, got %d", outputs)
	}
}

func TestExtract_FetchFailure(t *testing.T) {
	f := newFixture(pageResponse("x"))
	f.source.openErr = fmt.Errorf("%w: 404", domain.ErrUpstreamStatus)

	_, err := f.svc.Extract(context.Background(), "https://example.com/missing.pdf")
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if apperrors.GetStatusCode(err) != 500 {
		t.Fatalf("expected status 500, got %d", apperrors.GetStatusCode(err))
	}
	if len(f.store.created) != 0 || len(f.annotator.requests) != 0 {
		t.Fatalf("expected no staging write and no annotation")
	}
}

func TestExtract_StreamFailureDuringStaging(t *testing.T) {
	f := newFixture(pageResponse("x"))
	f.source.readErr = errors.New("connection reset")

	_, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(f.store.created) != 0 {
		t.Fatalf("expected no committed staging object, got %v", f.store.created)
	}
	if len(f.annotator.requests) != 0 {
		t.Fatalf("expected no annotation request")
	}
}

func TestExtract_SubmitFailure(t *testing.T) {
	f := newFixture()
	f.annotator.submitErr = errors.New("quota exceeded")

	_, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if !apperrors.IsType(err, apperrors.ErrorTypeOCR) {
		t.Fatalf("expected ocr error, got %v", err)
	}
	if f.store.listCalls != 0 {
		t.Fatalf("expected no output listing")
	}
	if len(f.store.objects) != 0 {
		t.Fatalf("expected staging object to be cleaned up")
	}
}

func TestExtract_OperationFailure(t *testing.T) {
	f := newFixture(pageResponse("never"))
	f.annotator.waitErr = errors.New("operation failed")

	_, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if !apperrors.IsType(err, apperrors.ErrorTypeOCR) {
		t.Fatalf("expected ocr error, got %v", err)
	}
	if f.store.listCalls != 0 {
		t.Fatalf("expected no output listing, got %d", f.store.listCalls)
	}
}

func TestExtract_CleanupFailureIsSwallowed(t *testing.T) {
	f := newFixture(pageResponse("Page1", "Page2"))
	f.store.deleteErr = errors.New("permission denied")

	result, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if err != nil {
		t.Fatalf("expected success despite cleanup failure, got %v", err)
	}
	if result.Text != "Page1\nPage2\n" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(f.store.deleted) != 2 {
		t.Fatalf("expected staging and output deletes to be attempted, got %v", f.store.deleted)
	}
}

func TestExtract_MalformedOutput(t *testing.T) {
	f := newFixture(`{"responses": [`, pageResponse("unread"))

	_, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
		t.Fatalf("expected processing error, got %v", err)
	}
	if len(f.store.objects) != 0 {
		t.Fatalf("expected all objects to be discarded, left %v", f.store.objects)
	}
}

func TestExtract_UnexpectedOutputShape(t *testing.T) {
	for _, body := range []string{`{}`, `{"responses": null}`, `{"unrelated": true}`} {
		f := newFixture(body)

		result, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
		if result != nil {
			t.Fatalf("%s: expected no result, got %+v", body, result)
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
			t.Fatalf("%s: expected processing error, got %v", body, err)
		}
		if got := apperrors.GetStatusCode(err); got != http.StatusInternalServerError {
			t.Fatalf("%s: expected status %d, got %d", body, http.StatusInternalServerError, got)
		}
	}
}

func TestExtract_ListFailure(t *testing.T) {
	f := newFixture(pageResponse("x"))
	f.store.listErr = errors.New("unavailable")

	_, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestExtract_RepeatedRequestsUseDistinctNames(t *testing.T) {
	f := newFixture(pageResponse("Same text"))

	first, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf")
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %s twice", first.ID)
	}
	if len(f.store.created) != 2 || f.store.created[0] == f.store.created[1] {
		t.Fatalf("expected two distinct staging objects, got %v", f.store.created)
	}
	if first.Text != second.Text {
		t.Fatalf("expected equal text, got %q and %q", first.Text, second.Text)
	}
}

func TestExtract_StagingPrefix(t *testing.T) {
	f := newFixture(pageResponse("x"))
	f.svc.stagingPrefix = "staging/"
	f.svc.newID = func() string { return "abc" }

	if _, err := f.svc.Extract(context.Background(), "https://example.com/doc.pdf"); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(f.store.created) != 1 || f.store.created[0] != "staging/temp-abc.pdf" {
		t.Fatalf("unexpected staging key %v", f.store.created)
	}
}
