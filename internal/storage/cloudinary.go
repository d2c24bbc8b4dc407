package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"catalog-service/pkg/config"
	"catalog-service/pkg/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/jpillora/backoff"
	"go.uber.org/zap"
)

const uploadAttempts = 3

// uploadAPI is the part of the Cloudinary SDK the backend needs
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// Cloudinary stores assets in a Cloudinary account. The storage key becomes
// the public id, so re-uploading a key replaces the asset and purges the CDN.
type Cloudinary struct {
	api      uploadAPI
	minDelay time.Duration
	maxDelay time.Duration
}

// NewCloudinary creates a Cloudinary backend from credentials
func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return newCloudinary(&cld.Upload), nil
}

func newCloudinary(api uploadAPI) *Cloudinary {
	return &Cloudinary{
		api:      api,
		minDelay: 500 * time.Millisecond,
		maxDelay: 5 * time.Second,
	}
}

// Name implements Backend
func (c *Cloudinary) Name() string { return "cloudinary" }

// Put uploads data under public id = key and returns the secure URL
func (c *Cloudinary) Put(ctx context.Context, key string, data []byte, contentType string) (Object, error) {
	log := logger.FromCtx(ctx)
	params := uploader.UploadParams{
		PublicID:     key,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	}

	b := &backoff.Backoff{Min: c.minDelay, Max: c.maxDelay, Factor: 2}
	var lastErr error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		res, err := c.api.Upload(ctx, bytes.NewReader(data), params)
		if err == nil && res != nil && res.Error.Message != "" {
			err = fmt.Errorf("cloudinary: %s", res.Error.Message)
		}
		if err == nil && res != nil {
			return Object{Ref: res.SecureURL, URL: res.SecureURL, Size: int64(len(data))}, nil
		}
		if err == nil {
			err = fmt.Errorf("cloudinary: empty upload response")
		}
		lastErr = err

		if attempt == uploadAttempts {
			break
		}
		wait := b.Duration()
		log.Warn("Cloudinary upload failed, retrying",
			zap.String("key", key),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return Object{}, ctx.Err()
		case <-time.After(wait):
		}
	}
	return Object{}, fmt.Errorf("failed to upload %s: %w", key, lastErr)
}

// Open downloads a stored asset by its URL
func (c *Cloudinary) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !IsRemote(ref) {
		return nil, fmt.Errorf("%w: %q is not a remote reference", ErrNotFound, ref)
	}
	return fetch(ctx, ref)
}

// URL implements Backend. References already are canonical URLs.
func (c *Cloudinary) URL(ref string) string { return ref }
