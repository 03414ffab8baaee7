// Package storage keeps uploaded crop images in a bucket and builds the
// public URLs they are served from.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/config"
)

const publicPath = "/storage/v1/object/public/"

// Store is a flat object store within one bucket.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get returns a NotFound AppError when the object is missing.
	Get(ctx context.Context, key string) ([]byte, error)
}

// New builds the backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "gcs":
		s, err := NewGCS(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "local", "":
		s, err := NewLocal(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Locator maps object keys to public URLs.
type Locator struct {
	BaseURL string
	Bucket  string
}

func NewLocator(cfg config.StorageConfig) Locator {
	return Locator{BaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"), Bucket: cfg.Bucket}
}

func (l Locator) PublicURL(key string) string {
	return l.BaseURL + publicPath + l.Bucket + "/" + key
}

// UserPrefix is the URL prefix every image uploaded by userID starts with.
func (l Locator) UserPrefix(userID uuid.UUID) string {
	return l.PublicURL(userID.String() + "/")
}

// Owns reports whether url points into userID's folder of the bucket.
func (l Locator) Owns(url string, userID uuid.UUID) bool {
	prefix := l.UserPrefix(userID)
	if !strings.HasPrefix(url, prefix) {
		return false
	}
	rest := url[len(prefix):]
	return rest != "" && !strings.Contains(rest, "..")
}

// UserKey builds the object key for a new upload.
func UserKey(userID uuid.UUID, ext string) string {
	return userID.String() + "/" + uuid.NewString() + ext
}
