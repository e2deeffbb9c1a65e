// Package gcs implements the object store on Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pdf-ocr-extractor/internal/domain"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// compile-time check
var _ domain.ObjectStore = (*Store)(nil)

// Scheme is the URI scheme understood by the OCR service for bucket objects.
const Scheme = "gs"

// Options configures the GCS backend.
type Options struct {
	Bucket string // required
}

// Store implements domain.ObjectStore backed by a single GCS bucket.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger domain.Logger
}

// New creates a GCS-backed Store using Application Default Credentials.
func New(ctx context.Context, opts Options, logger domain.Logger) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("gcs store: bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return NewWithClient(client, opts.Bucket, logger), nil
}

// NewWithClient wraps an existing storage client. The Store takes ownership
// of client and closes it in Close.
func NewWithClient(client *storage.Client, bucket string, logger domain.Logger) *Store {
	return &Store{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		logger: logger,
	}
}

// Create streams r into a new object. The call returns only after the
// upload has been committed or has failed; on a read error the upload is
// aborted so no partial object is left behind.
func (s *Store) Create(ctx context.Context, key string, contentType string, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}

	s.logger.Debug("Object written", "bucket", s.name, "object", key, "bytes", n)
	return nil
}

// List returns the names of all objects under prefix in listing order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// Read downloads the full content of an object.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("object %s: %w", key, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes an object.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("object %s: %w", key, domain.ErrObjectNotFound)
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// URI returns the gs://bucket/key address of key.
func (s *Store) URI(key string) string {
	return ObjectURI(s.name, key)
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ObjectURI builds a gs:// URI for an object or prefix in bucket.
func ObjectURI(bucket, key string) string {
	return fmt.Sprintf("%s://%s/%s", Scheme, bucket, strings.TrimPrefix(key, "/"))
}
