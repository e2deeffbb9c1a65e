package config

import (
	"context"
	"errors"
	"fmt"

	"pdf-ocr-extractor/internal/domain"
	"pdf-ocr-extractor/internal/infra/gcs"
	"pdf-ocr-extractor/internal/infra/vision"
	"pdf-ocr-extractor/internal/service"
	"pdf-ocr-extractor/pkg/logger"
)

const serviceName = "pdf-ocr-extractor"

// Container holds all application dependencies
type Container struct {
	Config            *AppConfig
	Logger            domain.Logger
	ObjectStore       *gcs.Store
	Annotator         *vision.Annotator
	ExtractionService domain.TextExtractor
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(logger.Options{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.GetLogFormat(),
		Service: serviceName,
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := gcs.New(ctx, gcs.Options{Bucket: cfg.GetStorageBucket()}, appLogger)
	if err != nil {
		return nil, err
	}

	annotator, err := vision.NewAnnotator(ctx, appLogger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	extractionService := service.NewExtractionService(
		service.NewHTTPPDFSource(cfg.GetFetchTimeout(), cfg.GetMaxFileSize(), appLogger),
		store,
		annotator,
		vision.OutputDecoder{},
		appLogger,
		service.ExtractionOptions{
			StagingPrefix: cfg.GetStagingPrefix(),
			OutputPrefix:  cfg.GetOutputPrefix(),
		},
	)

	appLogger.Info("Container initialized",
		"bucket", cfg.GetStorageBucket(),
		"output_prefix", cfg.GetOutputPrefix(),
		"max_file_size", cfg.GetMaxFileSize(),
	)

	return &Container{
		Config:            cfg,
		Logger:            appLogger,
		ObjectStore:       store,
		Annotator:         annotator,
		ExtractionService: extractionService,
	}, nil
}

// Close releases the cloud clients
func (c *Container) Close() error {
	var errs []error
	if c.Annotator != nil {
		errs = append(errs, c.Annotator.Close())
	}
	if c.ObjectStore != nil {
		errs = append(errs, c.ObjectStore.Close())
	}
	return errors.Join(errs...)
}
