package handler

import (
	"net/http"
	"strconv"

	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/pkg/slug"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name             string              `json:"name" validate:"required,max=200"`
	Slug             string              `json:"slug" validate:"max=200"`
	CategoryID       uint                `json:"category_id" validate:"required"`
	BrandID          uint                `json:"brand_id" validate:"required"`
	ShortDescription string              `json:"short_description" validate:"max=300"`
	Description      string              `json:"description"`
	Size             model.Size          `json:"size" validate:"required"`
	Firmness         model.Firmness      `json:"firmness" validate:"required"`
	HeightCM         int                 `json:"height_cm"`
	Material         string              `json:"material" validate:"max=100"`
	WarrantyYears    int                 `json:"warranty_years"`
	Price            decimal.Decimal     `json:"price"`
	DiscountPrice    decimal.NullDecimal `json:"discount_price"`
	Stock            int                 `json:"stock"`
	WeightKG         decimal.Decimal     `json:"weight_kg"`
	Featured         bool                `json:"featured"`
	Active           *bool               `json:"active"`
}

// apply copies the request onto p, sanitizing free text
func (r *ProductRequest) apply(p *model.Product) {
	p.Name = sanitizePlain(r.Name)
	if r.Slug != "" {
		p.Slug = slug.Make(r.Slug)
	}
	p.CategoryID = r.CategoryID
	p.BrandID = r.BrandID
	p.ShortDescription = sanitizePlain(r.ShortDescription)
	p.Description = sanitizeRich(r.Description)
	p.Size = r.Size
	p.Firmness = r.Firmness
	p.HeightCM = r.HeightCM
	p.Material = sanitizePlain(r.Material)
	p.WarrantyYears = r.WarrantyYears
	p.Price = r.Price
	p.DiscountPrice = r.DiscountPrice
	p.Stock = r.Stock
	p.WeightKG = r.WeightKG
	p.Featured = r.Featured
	if r.Active != nil {
		p.Active = *r.Active
	}
}

// bindProduct binds and validates a product payload. It writes the error
// response itself and reports false when the request was rejected.
func bindProduct(c echo.Context, p *model.Product) (bool, error) {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Validation failed", "fields": fieldErrors(err)})
	}

	req.apply(p)
	if err := p.Validate(); err != nil {
		log.Warn("Product rejected", zap.String("name", p.Name), zap.Error(err))
		return false, c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// ListProducts retrieves every product, active or not, for the back office.
// Optional filters: category_id, active, featured.
func (h *Admin) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	query := h.db.WithContext(c.Request().Context()).
		Preload("Category").Preload("Brand").
		Order("name")

	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid category_id"})
		}
		query = query.Where("category_id = ?", id)
	}
	if v := c.QueryParam("active"); v != "" {
		active, err := cast.ToBoolE(v)
		if err != nil {
			log.Warn("Invalid active parameter", zap.String("value", v), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid active"})
		}
		query = query.Where("active = ?", active)
	}
	if v := c.QueryParam("featured"); v != "" {
		featured, err := cast.ToBoolE(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid featured"})
		}
		query = query.Where("featured = ?", featured)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct retrieves a product with its renditions
func (h *Admin) GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product ID"})
	}

	ctx := c.Request().Context()
	var product model.Product
	if err := h.db.WithContext(ctx).Preload("Category").Preload("Brand").First(&product, id).Error; err != nil {
		log.Error("Product not found", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	rows, err := h.store.Renditions(ctx, product.ID)
	if err != nil {
		log.Warn("Failed to load renditions", zap.Uint("product_id", id), zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product":    product,
		"renditions": rows,
	})
}

// CreateProduct creates a new product
func (h *Admin) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	product := model.Product{Active: true}
	if ok, err := bindProduct(c, &product); !ok {
		return err
	}

	db := h.db.WithContext(c.Request().Context())
	var count int64
	db.Model(&model.Category{}).Where("id = ?", product.CategoryID).Count(&count)
	if count == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Category does not exist"})
	}
	db.Model(&model.Brand{}).Where("id = ?", product.BrandID).Count(&count)
	if count == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Brand does not exist"})
	}

	if err := db.Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.String("name", product.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	prometheus.RecordCatalogOperation("product", "create")
	log.Info("Product created successfully",
		zap.Uint("product_id", product.ID),
		zap.String("slug", product.Slug),
		zap.String("price", product.Price.StringFixed(2)))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates an existing product
func (h *Admin) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product ID"})
	}

	db := h.db.WithContext(c.Request().Context())
	var product model.Product
	if err := db.First(&product, id).Error; err != nil {
		log.Error("Product not found for update", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	if ok, err := bindProduct(c, &product); !ok {
		return err
	}

	// Save would write the zero-valued associations loaded by Bind
	if err := db.Omit("Category", "Brand").Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	prometheus.RecordCatalogOperation("product", "update")
	log.Info("Product updated successfully", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct deactivates a product. Products are never hard deleted so
// testimonials and renditions keep their owner.
func (h *Admin) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product ID"})
	}

	res := h.db.WithContext(c.Request().Context()).
		Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("active", false)
	if res.Error != nil {
		log.Error("Failed to deactivate product", zap.Uint("product_id", id), zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	prometheus.RecordCatalogOperation("product", "deactivate")
	log.Info("Product deactivated", zap.Uint("product_id", id))
	return c.NoContent(http.StatusNoContent)
}
