package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
)

// GCS stores objects in a Google Cloud Storage bucket using application
// default credentials.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) Put(ctx context.Context, key, contentType string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return apperrors.NewInternalError(fmt.Errorf("failed to write object to GCS: %w", err)).WithContext("key", key)
	}
	if err := w.Close(); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("failed to finalize GCS upload: %w", err)).WithContext("key", key)
	}
	return nil
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, apperrors.NewNotFoundError("Object")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err).WithContext("key", key)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewInternalError(err).WithContext("key", key)
	}
	return data, nil
}
