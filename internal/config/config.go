package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-ocr-extractor/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	LogLevel       string
	LogFormat      string
	StorageBucket  string
	StagingPrefix  string
	OutputPrefix   string
	MaxFileSize    int64
	FetchTimeout   time.Duration
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() *AppConfig {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
		StorageBucket:  getEnvOrDefault("STORAGE_BUCKET", ""),
		StagingPrefix:  normalizePrefix(getEnvOrDefault("STAGING_PREFIX", "")),
		OutputPrefix:   normalizePrefix(getEnvOrDefault("OUTPUT_PREFIX", "output/")),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		FetchTimeout:   getEnvDurationOrDefault("FETCH_TIMEOUT", 2*time.Minute),
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 9*time.Minute),
		AllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Validate reports settings the service cannot run without
func (c *AppConfig) Validate() error {
	if c.StorageBucket == "" {
		return fmt.Errorf("STORAGE_BUCKET must be set")
	}
	if c.OutputPrefix == "" {
		return fmt.Errorf("OUTPUT_PREFIX must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	return nil
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns the log output format
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetStorageBucket returns the bucket used for staging and OCR output
func (c *AppConfig) GetStorageBucket() string {
	return c.StorageBucket
}

// GetStagingPrefix returns the key prefix for staged PDFs
func (c *AppConfig) GetStagingPrefix() string {
	return c.StagingPrefix
}

// GetOutputPrefix returns the root key prefix for OCR output
func (c *AppConfig) GetOutputPrefix() string {
	return c.OutputPrefix
}

// GetMaxFileSize returns the maximum allowed source PDF size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetFetchTimeout returns the source download timeout
func (c *AppConfig) GetFetchTimeout() time.Duration {
	return c.FetchTimeout
}

// GetRequestTimeout returns the end-to-end pipeline timeout
func (c *AppConfig) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

var _ domain.Config = (*AppConfig)(nil)
