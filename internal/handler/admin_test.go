package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The admin handlers talk to gorm directly; these tests cover the paths
// that reject a request before any query runs.

func withID(c echo.Context, names []string, values ...string) echo.Context {
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func TestCreateProductValidation(t *testing.T) {
	e := newTestEcho()
	h := &Admin{}

	tests := []struct {
		name  string
		body  string
		field string
		want  string
	}{
		{
			name:  "missing name",
			body:  `{"category_id":1,"brand_id":1,"size":"queen","firmness":"firme","price":"100"}`,
			field: "name",
		},
		{
			name: "unknown size",
			body: `{"name":"X","category_id":1,"brand_id":1,"size":"gigante","firmness":"firme","price":"100"}`,
			want: "invalid size",
		},
		{
			name: "discount above price",
			body: `{"name":"X","category_id":1,"brand_id":1,"size":"queen","firmness":"firme","price":"100","discount_price":"120"}`,
			want: "discount price must be <= price",
		},
		{
			name: "negative stock",
			body: `{"name":"X","category_id":1,"brand_id":1,"size":"queen","firmness":"firme","price":"100","stock":-1}`,
			want: "stock must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := postJSON(e, "/admin/api/products", tt.body)
			require.NoError(t, h.CreateProduct(c))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			if tt.field != "" {
				assert.Contains(t, rec.Body.String(), `"`+tt.field+`"`)
			}
			if tt.want != "" {
				assert.Contains(t, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestAdminRejectsBadIDs(t *testing.T) {
	e := newTestEcho()
	h := &Admin{}

	handlers := map[string]echo.HandlerFunc{
		"product":     h.GetProduct,
		"category":    h.GetCategory,
		"delete":      h.DeleteProduct,
		"testimonial": h.DeleteTestimonial,
		"resolve":     h.ResolveContact,
	}
	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			c, rec := get(e, "/", "")
			require.NoError(t, fn(withID(c, []string{"id"}, "abc")))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateCategoryAndTestimonialValidation(t *testing.T) {
	e := newTestEcho()
	h := &Admin{}

	c, rec := postJSON(e, "/admin/api/categories", `{"name":""}`)
	require.NoError(t, h.CreateCategory(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	c, rec = postJSON(e, "/admin/api/testimonials", `{"author":"Ana","comment":"Bien","rating":6}`)
	require.NoError(t, h.CreateTestimonial(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "rating")

	c, rec = postJSON(e, "/admin/api/newsletter/active", `{"ids":[],"active":true}`)
	require.NoError(t, h.SetSubscribersActive(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func multipartUpload(t *testing.T, e *echo.Echo, data []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "foto.jpg")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUploadImageRejections(t *testing.T) {
	e := newTestEcho()
	h := &Admin{}
	jpegHeader := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

	t.Run("unknown slot", func(t *testing.T) {
		c, rec := multipartUpload(t, e, jpegHeader)
		require.NoError(t, h.UploadImage(withID(c, []string{"id", "slot"}, "1", "5")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		c, rec := postJSON(e, "/", `{}`)
		require.NoError(t, h.UploadImage(withID(c, []string{"id", "slot"}, "1", "principal")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		c, rec := multipartUpload(t, e, []byte("%PDF-1.4 not really a photo"))
		require.NoError(t, h.UploadImage(withID(c, []string{"id", "slot"}, "1", "principal")))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("gif is refused", func(t *testing.T) {
		c, rec := multipartUpload(t, e, []byte("GIF89a\x01\x00\x01\x00"))
		require.NoError(t, h.UploadImage(withID(c, []string{"id", "slot"}, "1", "2")))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestOptimizeImagesValidation(t *testing.T) {
	e := newTestEcho()
	h := &Admin{}

	c, rec := postJSON(e, "/admin/api/images/optimize", `{"format":"gif"}`)
	require.NoError(t, h.OptimizeImages(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown format")

	c, rec = postJSON(e, "/admin/api/images/optimize", `{"format":"modern","quality":150}`)
	require.NoError(t, h.OptimizeImages(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

type pinger struct{ err error }

func (p pinger) PingContext(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := newTestEcho()

	c, rec := get(e, "/health", "")
	require.NoError(t, Health(pinger{})(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = get(e, "/health", "")
	require.NoError(t, Health(pinger{err: errors.New("connection refused")})(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegister(t *testing.T) {
	e := newTestEcho()
	front := newTestStorefront(t, newFakeStore(product(1, "Uno", "10")), &fakeMailer{})
	media := config.MediaConfig{Backend: config.StorageLocal, Root: t.TempDir(), URL: "/media/"}
	Register(e, front, &Admin{}, pinger{}, media, "test")

	serve := func(method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/products").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/search?q=un").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/health").Code)
	assert.JSONEq(t, `{"version":"test"}`, serve(http.MethodGet, "/version").Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/admin/api/products").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodPost, "/admin/api/images/optimize").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/media/productos/missing.jpg").Code)
}
