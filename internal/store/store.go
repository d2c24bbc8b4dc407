// Package store is the storefront's read/write access to the catalog database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-service/internal/model"
	"catalog-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAlreadySubscribed marks a benign duplicate newsletter signup
var ErrAlreadySubscribed = errors.New("email already subscribed")

// ErrNotFound is returned when a lookup matches nothing
var ErrNotFound = gorm.ErrRecordNotFound

// Stats are the public counters shown on the about page
type Stats struct {
	Products     int64 `json:"productos_total"`
	Categories   int64 `json:"categorias_total"`
	Testimonials int64 `json:"testimonios_total"`
}

// Store is what the storefront handlers need
type Store interface {
	ActiveProducts(ctx context.Context) ([]model.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	RelatedProducts(ctx context.Context, p *model.Product, limit int) ([]model.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]model.Product, error)
	Testimonials(ctx context.Context, productID *uint, limit int) ([]model.Testimonial, error)
	ActiveCategories(ctx context.Context) ([]model.Category, error)
	Stats(ctx context.Context) (Stats, error)
	CreateContact(ctx context.Context, m *model.ContactMessage) error
	Subscribe(ctx context.Context, s *model.NewsletterSubscription) error
	Renditions(ctx context.Context, productIDs ...uint) ([]model.ImageRendition, error)
}

// GormStore implements Store and the image pipeline stores on gorm
type GormStore struct {
	db *gorm.DB
}

// New wraps a gorm connection
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) products(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&model.Product{}).Preload("Category").Preload("Brand")
}

// ActiveProducts lists active products with category and brand loaded, in id order
func (s *GormStore) ActiveProducts(ctx context.Context) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("active_products")(time.Now())
	var items []model.Product
	if err := s.products(ctx).Where("active = ?", true).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return items, nil
}

// ProductBySlug finds an active product
func (s *GormStore) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	defer prometheus.TrackDBOperation("product_by_slug")(time.Now())
	var p model.Product
	if err := s.products(ctx).Where("slug = ? AND active = ?", slug, true).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// RelatedProducts lists other active products of the same category
func (s *GormStore) RelatedProducts(ctx context.Context, p *model.Product, limit int) ([]model.Product, error) {
	var items []model.Product
	err := s.products(ctx).
		Where("category_id = ? AND active = ? AND id <> ?", p.CategoryID, true, p.ID).
		Order("id").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}
	return items, nil
}

// FeaturedProducts lists active featured products
func (s *GormStore) FeaturedProducts(ctx context.Context, limit int) ([]model.Product, error) {
	var items []model.Product
	err := s.products(ctx).Where("featured = ? AND active = ?", true, true).
		Order("id").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return items, nil
}

// Testimonials lists active testimonials, newest first. A non-nil productID
// narrows the list to that product.
func (s *GormStore) Testimonials(ctx context.Context, productID *uint, limit int) ([]model.Testimonial, error) {
	q := s.db.WithContext(ctx).Where("active = ?", true)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	var items []model.Testimonial
	if err := q.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return items, nil
}

// ActiveCategories lists active categories in display order
func (s *GormStore) ActiveCategories(ctx context.Context) ([]model.Category, error) {
	var items []model.Category
	err := s.db.WithContext(ctx).Where("active = ?", true).Order("display_order, name").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return items, nil
}

// Stats counts active products, categories and testimonials
func (s *GormStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Product{}).Where("active = ?", true).Count(&st.Products).Error; err != nil {
		return st, err
	}
	if err := db.Model(&model.Category{}).Where("active = ?", true).Count(&st.Categories).Error; err != nil {
		return st, err
	}
	if err := db.Model(&model.Testimonial{}).Where("active = ?", true).Count(&st.Testimonials).Error; err != nil {
		return st, err
	}
	return st, nil
}

// CreateContact persists a contact message. Messages without consent are refused.
func (s *GormStore) CreateContact(ctx context.Context, m *model.ContactMessage) error {
	if !m.Consent {
		return errors.New("contact message requires consent")
	}
	return s.db.WithContext(ctx).Create(m).Error
}

// Subscribe adds an email to the newsletter. An existing address yields
// ErrAlreadySubscribed.
func (s *GormStore) Subscribe(ctx context.Context, sub *model.NewsletterSubscription) error {
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(sub)
	if res.Error != nil {
		return fmt.Errorf("failed to subscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadySubscribed
	}
	return nil
}

// Renditions lists the stored renditions of the given products
func (s *GormStore) Renditions(ctx context.Context, productIDs ...uint) ([]model.ImageRendition, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []model.ImageRendition
	err := s.db.WithContext(ctx).Where("product_id IN ?", productIDs).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list renditions: %w", err)
	}
	return rows, nil
}

// ProductsWithImages lists every product, active or not, with at least one image slot set
func (s *GormStore) ProductsWithImages(ctx context.Context) ([]model.Product, error) {
	var items []model.Product
	err := s.db.WithContext(ctx).
		Where("image_main <> '' OR image2 <> '' OR image3 <> '' OR image4 <> ''").
		Order("id").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products with images: %w", err)
	}
	return items, nil
}

// SaveRenditions upserts the rendition rows of a product slot on their
// (product, slot, name, format) key
func (s *GormStore) SaveRenditions(ctx context.Context, productID uint, slot model.ImageSlot, rows []model.ImageRendition) error {
	if len(rows) == 0 {
		return nil
	}
	defer prometheus.TrackDBOperation("save_renditions")(time.Now())
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "slot"}, {Name: "name"}, {Name: "format"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"width", "height", "quality", "storage_key", "url", "bytes", "source_hash", "updated_at",
		}),
	}).Create(&rows).Error
}

// UpdateImageRef points a product image slot at a new reference
func (s *GormStore) UpdateImageRef(ctx context.Context, productID uint, slot model.ImageSlot, ref string) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			model.ImageColumn(slot): ref,
			"updated_at":            time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
