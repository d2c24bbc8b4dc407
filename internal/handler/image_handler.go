package handler

import (
	"context"
	"io"
	"net/http"

	"catalog-service/internal/imaging"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/h2non/filetype"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MaxUploadBytes bounds a single source image upload
const MaxUploadBytes = 10 << 20

var uploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// readUpload reads the "image" form file and returns its bytes and sniffed
// content type. It writes the error response itself on rejection.
func readUpload(c echo.Context) ([]byte, string, bool, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, "", false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing image file"})
	}
	if fh.Size > MaxUploadBytes {
		return nil, "", false, c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "Image is too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Unreadable image file"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return nil, "", false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Unreadable image file"})
	}
	if len(data) > MaxUploadBytes {
		return nil, "", false, c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "Image is too large"})
	}

	kind, err := filetype.Match(data)
	if err != nil || !uploadTypes[kind.MIME.Value] {
		return nil, "", false, c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "Only JPEG, PNG and WebP images are accepted"})
	}
	return data, kind.MIME.Value, true, nil
}

// UploadImage stores a new source image in a product slot and derives its
// renditions right away
func (h *Admin) UploadImage(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product ID"})
	}
	slot := model.ImageSlot(c.Param("slot"))
	if !slot.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image slot"})
	}

	data, contentType, ok, err := readUpload(c)
	if !ok {
		return err
	}

	ctx := c.Request().Context()
	var product model.Product
	if err := h.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	backend := h.deriver.Backend()
	obj, err := backend.Put(ctx, imaging.SourceKey(h.deriver.Collection(), product.ID, slot), data, contentType)
	if err != nil {
		prometheus.RecordImageError("upload")
		log.Error("Failed to store source image", zap.Uint("product_id", id), zap.String("slot", string(slot)), zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Failed to store image"})
	}
	if err := h.store.UpdateImageRef(ctx, product.ID, slot, obj.Ref); err != nil {
		log.Error("Failed to save image reference", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save image"})
	}
	product.SetImageRef(slot, obj.Ref)

	resp := echo.Map{"ref": obj.Ref, "url": obj.URL, "bytes": obj.Size}

	// The source is kept even when derivation fails; the batch driver retries later.
	d, err := h.deriver.DeriveFrom(ctx, &product, slot, data, imaging.DeriveOptions{Force: true})
	if err != nil {
		prometheus.RecordImageError("derive")
		log.Error("Failed to derive renditions", zap.Uint("product_id", id), zap.String("slot", string(slot)), zap.Error(err))
		resp["renditions_error"] = err.Error()
		return c.JSON(http.StatusCreated, resp)
	}
	if err := h.store.SaveRenditions(ctx, product.ID, slot, d.Renditions); err != nil {
		log.Error("Failed to save renditions", zap.Uint("product_id", id), zap.Error(err))
		resp["renditions_error"] = err.Error()
		return c.JSON(http.StatusCreated, resp)
	}
	prometheus.RecordRenditions(len(d.Renditions))

	log.Info("Product image uploaded",
		zap.Uint("product_id", id),
		zap.String("slot", string(slot)),
		zap.String("ref", obj.Ref),
		zap.Int("renditions", len(d.Renditions)))
	resp["renditions"] = d.Renditions
	return c.JSON(http.StatusCreated, resp)
}

// OptimizeRequest is the payload of a batch optimization run
type OptimizeRequest struct {
	Force   bool   `json:"force"`
	Format  string `json:"format"`
	Quality int    `json:"quality" validate:"gte=0,lte=100"`
}

// OptimizeImages re-derives renditions for every product image and returns
// the batch summary
func (h *Admin) OptimizeImages(c echo.Context) error {
	log := logger.FromContext(c)

	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}
	formats, err := imaging.ParseFormats(req.Format)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	// A dropped client connection must not abort a half written batch
	ctx := logger.WithContext(context.WithoutCancel(c.Request().Context()), log)
	summary, err := h.optimizer.Run(ctx, imaging.OptimizeOptions{
		Force:   req.Force,
		Formats: formats,
		Quality: req.Quality,
	})
	if err != nil {
		log.Error("Image optimization failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Image optimization failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"summary":       summary,
		"reduction_pct": summary.Reduction(),
	})
}
