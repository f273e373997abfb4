package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lumaevents/internal/domain"
)

// Config holds configuration for creating an ObjectStorage.
type Config struct {
	Provider   string
	ProjectURL string
	ServiceKey string
	Bucket     string
}

// NewObjectStorage creates object storage from config. Provider "supabase" uploads through
// the storage REST API; anything else returns a storage that refuses uploads.
func NewObjectStorage(config Config, logger *slog.Logger) (domain.ObjectStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch config.Provider {
	case "supabase":
		if config.ProjectURL == "" || config.ServiceKey == "" {
			return nil, fmt.Errorf("supabase storage: project url and service key are required")
		}
		if config.Bucket == "" {
			return nil, fmt.Errorf("supabase storage: bucket is required")
		}
		return &supabaseStorage{
			baseURL:    strings.TrimSuffix(config.ProjectURL, "/"),
			serviceKey: config.ServiceKey,
			bucket:     config.Bucket,
			client:     &http.Client{Timeout: 30 * time.Second},
			logger:     logger,
		}, nil
	case "noop", "":
		return &noopStorage{logger: logger}, nil
	default:
		logger.Warn("unknown storage provider, uploads disabled", "provider", config.Provider)
		return &noopStorage{logger: logger}, nil
	}
}

type supabaseStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
	logger     *slog.Logger
}

func (s *supabaseStorage) Upload(ctx context.Context, path, contentType string, body []byte) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 500 {
			return "", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return "", err
	}
	s.logger.Debug("object uploaded", "bucket", s.bucket, "path", path, "bytes", len(body))
	return s.PublicURL(path), nil
}

// PublicURL returns the public URL of an object in the bucket.
func (s *supabaseStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}

type noopStorage struct {
	logger *slog.Logger
}

func (n *noopStorage) Upload(ctx context.Context, path, contentType string, body []byte) (string, error) {
	n.logger.Warn("upload refused: object storage is not configured", "path", path)
	return "", fmt.Errorf("%w: object storage is not configured", domain.ErrStoreUnavailable)
}
