// Package storage holds the places derived and uploaded images are kept.
// A Backend is chosen once at startup and injected where images are written.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"catalog-service/pkg/config"
)

// ErrNotFound is returned by Open when the referenced object does not exist
var ErrNotFound = errors.New("storage: object not found")

// Object describes a stored asset
type Object struct {
	// Ref is what gets persisted in the database, a media-relative path for
	// the local backend and the canonical URL for remote ones
	Ref  string
	URL  string
	Size int64
}

// Backend stores assets under deterministic keys. Writing the same key twice
// overwrites the previous object.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, data []byte, contentType string) (Object, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	URL(ref string) string
}

// New builds the backend selected by the media configuration
func New(media config.MediaConfig, cld config.CloudinaryConfig) (Backend, error) {
	switch media.Backend {
	case config.StorageLocal:
		return NewLocal(media.Root, media.URL), nil
	case config.StorageCloudinary:
		return NewCloudinary(cld)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", media.Backend)
	}
}

// IsRemote reports whether ref is an absolute http(s) URL
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// fetch downloads a remote reference
func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	case resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
