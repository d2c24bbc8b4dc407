package handler

import (
	"errors"
	"net/http"

	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/pkg/slug"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Slug         string `json:"slug" validate:"max=100"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	Active       *bool  `json:"active"`
}

// ListCategories retrieves all categories, active or not, in display order
func (h *Admin) ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	var categories []model.Category
	if err := h.db.WithContext(c.Request().Context()).Order("display_order, name").Find(&categories).Error; err != nil {
		log.Error("Failed to retrieve categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	log.Info("Categories retrieved successfully", zap.Int("count", len(categories)))
	return c.JSON(http.StatusOK, categories)
}

// GetCategory retrieves a specific category by ID
func (h *Admin) GetCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid category ID"})
	}

	var category model.Category
	if err := h.db.WithContext(c.Request().Context()).First(&category, id).Error; err != nil {
		log.Error("Category not found", zap.Uint("category_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}
	return c.JSON(http.StatusOK, category)
}

// CreateCategory creates a new category
func (h *Admin) CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}

	category := model.Category{
		Name:         sanitizePlain(req.Name),
		Slug:         slug.Make(req.Slug),
		Description:  sanitizeRich(req.Description),
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active == nil || *req.Active,
	}

	db := h.db.WithContext(c.Request().Context())
	var count int64
	db.Model(&model.Category{}).Where("name = ? OR slug = ?", category.Name, slug.Make(firstNonEmpty(req.Slug, req.Name))).Count(&count)
	if count > 0 {
		log.Warn("Category already exists", zap.String("name", category.Name))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category with this name or slug already exists"})
	}

	if err := db.Create(&category).Error; err != nil {
		log.Error("Failed to create category", zap.String("name", category.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create category"})
	}

	prometheus.RecordCatalogOperation("category", "create")
	log.Info("Category created successfully",
		zap.Uint("category_id", category.ID),
		zap.String("slug", category.Slug))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates an existing category
func (h *Admin) UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid category ID"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("category_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}

	db := h.db.WithContext(c.Request().Context())
	var category model.Category
	if err := db.First(&category, id).Error; err != nil {
		log.Error("Category not found for update", zap.Uint("category_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	category.Name = sanitizePlain(req.Name)
	if req.Slug != "" {
		category.Slug = slug.Make(req.Slug)
	}
	category.Description = sanitizeRich(req.Description)
	category.DisplayOrder = req.DisplayOrder
	if req.Active != nil {
		category.Active = *req.Active
	}

	var count int64
	db.Model(&model.Category{}).Where("(name = ? OR slug = ?) AND id <> ?", category.Name, category.Slug, id).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category with this name or slug already exists"})
	}

	if err := db.Save(&category).Error; err != nil {
		log.Error("Failed to update category", zap.Uint("category_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update category"})
	}

	prometheus.RecordCatalogOperation("category", "update")
	log.Info("Category updated successfully", zap.Uint("category_id", id))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category that no product references
func (h *Admin) DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid category ID"})
	}

	db := h.db.WithContext(c.Request().Context())
	var productCount int64
	db.Model(&model.Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		log.Warn("Cannot delete category with products",
			zap.Uint("category_id", id),
			zap.Int64("product_count", productCount))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Category still has products, deactivate it instead",
		})
	}

	res := db.Delete(&model.Category{}, id)
	if res.Error != nil {
		log.Error("Failed to delete category", zap.Uint("category_id", id), zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete category"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	prometheus.RecordCatalogOperation("category", "delete")
	log.Info("Category deleted successfully", zap.Uint("category_id", id))
	return c.NoContent(http.StatusNoContent)
}

// BrandRequest defines the structure for brand creation/update requests
type BrandRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// ListBrands retrieves all brands by name
func (h *Admin) ListBrands(c echo.Context) error {
	var brands []model.Brand
	if err := h.db.WithContext(c.Request().Context()).Order("name").Find(&brands).Error; err != nil {
		logger.FromContext(c).Error("Failed to retrieve brands", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve brands"})
	}
	return c.JSON(http.StatusOK, brands)
}

// CreateBrand creates a new brand
func (h *Admin) CreateBrand(c echo.Context) error {
	log := logger.FromContext(c)

	var req BrandRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}

	brand := model.Brand{
		Name:        sanitizePlain(req.Name),
		Description: sanitizeRich(req.Description),
		Active:      req.Active == nil || *req.Active,
	}
	db := h.db.WithContext(c.Request().Context())
	var count int64
	db.Model(&model.Brand{}).Where("name = ?", brand.Name).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Brand with this name already exists"})
	}
	if err := db.Create(&brand).Error; err != nil {
		log.Error("Failed to create brand", zap.String("name", brand.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create brand"})
	}

	prometheus.RecordCatalogOperation("brand", "create")
	log.Info("Brand created successfully", zap.Uint("brand_id", brand.ID), zap.String("name", brand.Name))
	return c.JSON(http.StatusCreated, brand)
}

// UpdateBrand updates an existing brand
func (h *Admin) UpdateBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid brand ID"})
	}

	var req BrandRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}

	db := h.db.WithContext(c.Request().Context())
	var brand model.Brand
	if err := db.First(&brand, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}
	brand.Name = sanitizePlain(req.Name)
	brand.Description = sanitizeRich(req.Description)
	if req.Active != nil {
		brand.Active = *req.Active
	}
	if err := db.Save(&brand).Error; err != nil {
		log.Error("Failed to update brand", zap.Uint("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update brand"})
	}

	prometheus.RecordCatalogOperation("brand", "update")
	return c.JSON(http.StatusOK, brand)
}

// DeleteBrand removes a brand that no product references
func (h *Admin) DeleteBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid brand ID"})
	}

	db := h.db.WithContext(c.Request().Context())
	var productCount int64
	db.Model(&model.Product{}).Where("brand_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Brand still has products, deactivate it instead"})
	}

	res := db.Delete(&model.Brand{}, id)
	if err := res.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
		}
		log.Error("Failed to delete brand", zap.Uint("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete brand"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}

	prometheus.RecordCatalogOperation("brand", "delete")
	log.Info("Brand deleted successfully", zap.Uint("brand_id", id))
	return c.NoContent(http.StatusNoContent)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
