package handler

import (
	"net/http"

	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TestimonialRequest is the admin payload for a testimonial
type TestimonialRequest struct {
	Author    string `json:"author" validate:"required,max=100"`
	City      string `json:"city" validate:"max=100"`
	Comment   string `json:"comment" validate:"required"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
	ProductID *uint  `json:"product_id"`
	Active    *bool  `json:"active"`
}

func (r *TestimonialRequest) apply(t *model.Testimonial) {
	t.Author = sanitizePlain(r.Author)
	t.City = sanitizePlain(r.City)
	t.Comment = sanitizePlain(r.Comment)
	t.Rating = r.Rating
	t.ProductID = r.ProductID
	if r.Active != nil {
		t.Active = *r.Active
	}
}

func bindTestimonial(c echo.Context, t *model.Testimonial) (bool, error) {
	var req TestimonialRequest
	if err := c.Bind(&req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}
	req.apply(t)
	if err := t.Validate(); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// ListTestimonials returns every testimonial, newest first
func (h *Admin) ListTestimonials(c echo.Context) error {
	var items []model.Testimonial
	if err := h.db.WithContext(c.Request().Context()).Order("created_at DESC").Find(&items).Error; err != nil {
		logger.FromContext(c).Error("Failed to list testimonials", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve testimonials"})
	}
	return c.JSON(http.StatusOK, items)
}

// CreateTestimonial creates a testimonial
func (h *Admin) CreateTestimonial(c echo.Context) error {
	log := logger.FromContext(c)

	t := model.Testimonial{Active: true}
	if ok, err := bindTestimonial(c, &t); !ok {
		return err
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&t).Error; err != nil {
		log.Error("Failed to create testimonial", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create testimonial"})
	}

	prometheus.RecordCatalogOperation("testimonial", "create")
	log.Info("Testimonial created", zap.Uint("testimonial_id", t.ID), zap.Int("rating", t.Rating))
	return c.JSON(http.StatusCreated, t)
}

// UpdateTestimonial updates a testimonial
func (h *Admin) UpdateTestimonial(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid testimonial ID"})
	}

	db := h.db.WithContext(c.Request().Context())
	var t model.Testimonial
	if err := db.First(&t, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Testimonial not found"})
	}
	if ok, err := bindTestimonial(c, &t); !ok {
		return err
	}
	if err := db.Omit("Product").Save(&t).Error; err != nil {
		log.Error("Failed to update testimonial", zap.Uint("testimonial_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update testimonial"})
	}

	prometheus.RecordCatalogOperation("testimonial", "update")
	return c.JSON(http.StatusOK, t)
}

// DeleteTestimonial removes a testimonial
func (h *Admin) DeleteTestimonial(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid testimonial ID"})
	}

	res := h.db.WithContext(c.Request().Context()).Delete(&model.Testimonial{}, id)
	if res.Error != nil {
		log.Error("Failed to delete testimonial", zap.Uint("testimonial_id", id), zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete testimonial"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Testimonial not found"})
	}

	prometheus.RecordCatalogOperation("testimonial", "delete")
	return c.NoContent(http.StatusNoContent)
}
