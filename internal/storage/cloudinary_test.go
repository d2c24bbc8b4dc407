package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	calls    []uploader.UploadParams
	payloads [][]byte
	failures int
}

func (f *fakeUploader) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.calls = append(f.calls, params)
	data, err := io.ReadAll(file.(io.Reader))
	if err != nil {
		return nil, err
	}
	f.payloads = append(f.payloads, data)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	return &uploader.UploadResult{
		PublicID:  params.PublicID,
		SecureURL: "https://res.cloudinary.com/demo/image/upload/" + params.PublicID + ".webp",
	}, nil
}

func newTestCloudinary(f *fakeUploader) *Cloudinary {
	c := newCloudinary(f)
	c.minDelay = time.Millisecond
	c.maxDelay = time.Millisecond
	return c
}

func TestCloudinaryPutUsesKeyAsPublicID(t *testing.T) {
	f := &fakeUploader{}
	c := newTestCloudinary(f)

	obj, err := c.Put(context.Background(), "productos/3_principal_zoom_modern", webpBytes, "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/productos/3_principal_zoom_modern.webp", obj.URL)
	assert.Equal(t, obj.URL, obj.Ref)

	require.Len(t, f.calls, 1)
	params := f.calls[0]
	assert.Equal(t, "productos/3_principal_zoom_modern", params.PublicID)
	require.NotNil(t, params.Overwrite)
	assert.True(t, *params.Overwrite)
	require.NotNil(t, params.Invalidate)
	assert.True(t, *params.Invalidate)
	assert.Equal(t, webpBytes, f.payloads[0])
}

func TestCloudinaryPutRetries(t *testing.T) {
	f := &fakeUploader{failures: 2}
	c := newTestCloudinary(f)

	_, err := c.Put(context.Background(), "productos/1_2", jpegBytes, "image/jpeg")
	require.NoError(t, err)
	assert.Len(t, f.calls, 3)

	f = &fakeUploader{failures: 5}
	c = newTestCloudinary(f)
	_, err = c.Put(context.Background(), "productos/1_2", jpegBytes, "image/jpeg")
	assert.Error(t, err)
	assert.Len(t, f.calls, uploadAttempts)
}

type errorUploader struct{}

func (errorUploader) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	return &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}, nil
}

func TestCloudinaryPutReportsAPIError(t *testing.T) {
	c := newCloudinary(errorUploader{})
	c.minDelay, c.maxDelay = time.Millisecond, time.Millisecond

	_, err := c.Put(context.Background(), "productos/1_2", jpegBytes, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestCloudinaryOpenRejectsLocalRefs(t *testing.T) {
	c := newCloudinary(&fakeUploader{})
	_, err := c.Open(context.Background(), "productos/1.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "https://x/y.jpg", c.URL("https://x/y.jpg"))
}
