package seed

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/model"
	"catalog-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Report counts what a run created and what already existed
type Report struct {
	Created  map[string]int
	Existing map[string]int
}

func newReport() *Report {
	return &Report{Created: map[string]int{}, Existing: map[string]int{}}
}

func (r *Report) add(entity string, created bool) {
	if created {
		r.Created[entity]++
		return
	}
	r.Existing[entity]++
}

// Seeder loads the demo catalog. Every row is looked up by its natural key
// before being created, so running it twice is harmless.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder returns a new Seeder
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run seeds every entity inside one transaction. clean wipes the catalog
// tables first.
func (s *Seeder) Run(ctx context.Context, clean bool) (*Report, error) {
	log := logger.FromCtx(ctx)
	report := newReport()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clean {
			log.Warn("Removing existing catalog data")
			if err := Clean(tx); err != nil {
				return err
			}
		}

		steps := []struct {
			name string
			fn   func(*gorm.DB, *Report) error
		}{
			{"categories", seedCategories},
			{"brands", seedBrands},
			{"products", seedProducts},
			{"testimonials", seedTestimonials},
			{"contacts", seedContacts},
			{"newsletter", seedSubscribers},
		}
		for _, step := range steps {
			log.Info("Seeding", zap.String("entity", step.name))
			if err := step.fn(tx, report); err != nil {
				return fmt.Errorf("seed %s failed: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Seed complete",
		zap.Any("created", report.Created),
		zap.Any("existing", report.Existing))
	return report, nil
}

// Clean deletes every seeded table, children first
func Clean(tx *gorm.DB) error {
	for _, table := range []interface{}{
		&model.ImageRendition{},
		&model.Testimonial{},
		&model.NewsletterSubscription{},
		&model.ContactMessage{},
		&model.Product{},
		&model.Brand{},
		&model.Category{},
	} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clean %T: %w", table, err)
		}
	}
	return nil
}

// firstOrCreate looks dst up by where and creates it when missing
func firstOrCreate(tx *gorm.DB, dst interface{}, where string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(dst).Where(where, args...).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, tx.Where(where, args...).First(dst).Error
	}
	return true, tx.Create(dst).Error
}

func seedCategories(tx *gorm.DB, r *Report) error {
	for _, row := range categories {
		c := &model.Category{Name: row.Name, Description: row.Description, DisplayOrder: row.Order, Active: true}
		created, err := firstOrCreate(tx, c, "name = ?", row.Name)
		if err != nil {
			return err
		}
		r.add("categories", created)
	}
	return nil
}

func seedBrands(tx *gorm.DB, r *Report) error {
	for _, row := range brands {
		b := &model.Brand{Name: row.Name, Description: row.Description, Active: true}
		created, err := firstOrCreate(tx, b, "name = ?", row.Name)
		if err != nil {
			return err
		}
		r.add("brands", created)
	}
	return nil
}

// buildProduct turns a data row into a product bound to the given ids
func buildProduct(row productRow, categoryID, brandID uint) (*model.Product, error) {
	p := &model.Product{
		Name:             row.Name,
		CategoryID:       categoryID,
		BrandID:          brandID,
		ShortDescription: row.Short,
		Description:      row.Description,
		Size:             row.Size,
		Firmness:         row.Firmness,
		HeightCM:         row.HeightCM,
		Material:         row.Material,
		WarrantyYears:    row.Warranty,
		Stock:            row.Stock,
		Featured:         row.Featured,
		Active:           true,
	}
	var err error
	if p.Price, err = decimal.NewFromString(row.Price); err != nil {
		return nil, fmt.Errorf("product %q price: %w", row.Name, err)
	}
	if row.Discount != "" {
		d, err := decimal.NewFromString(row.Discount)
		if err != nil {
			return nil, fmt.Errorf("product %q discount: %w", row.Name, err)
		}
		p.DiscountPrice = decimal.NewNullDecimal(d)
	}
	if p.WeightKG, err = decimal.NewFromString(row.WeightKG); err != nil {
		return nil, fmt.Errorf("product %q weight: %w", row.Name, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("product %q: %w", row.Name, err)
	}
	return p, nil
}

func lookupID(tx *gorm.DB, table interface{}, name string) (uint, error) {
	var id uint
	err := tx.Model(table).Where("name = ?", name).Select("id").Scan(&id).Error
	if err == nil && id == 0 {
		err = fmt.Errorf("%T %q not found", table, name)
	}
	return id, err
}

func seedProducts(tx *gorm.DB, r *Report) error {
	for _, row := range products {
		categoryID, err := lookupID(tx, &model.Category{}, row.Category)
		if err != nil {
			return err
		}
		brandID, err := lookupID(tx, &model.Brand{}, row.Brand)
		if err != nil {
			return err
		}
		p, err := buildProduct(row, categoryID, brandID)
		if err != nil {
			return err
		}
		created, err := firstOrCreate(tx, p, "name = ?", row.Name)
		if err != nil {
			return err
		}
		r.add("products", created)
	}
	return nil
}

func seedTestimonials(tx *gorm.DB, r *Report) error {
	for _, row := range testimonials {
		t := &model.Testimonial{Author: row.Author, City: row.City, Comment: row.Comment, Rating: row.Rating, Active: true}
		if id, err := lookupID(tx, &model.Product{}, row.Product); err == nil {
			t.ProductID = &id
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("testimonial by %q: %w", row.Author, err)
		}
		created, err := firstOrCreate(tx, t, "author = ? AND comment = ?", row.Author, row.Comment)
		if err != nil {
			return err
		}
		r.add("testimonials", created)
	}
	return nil
}

func seedContacts(tx *gorm.DB, r *Report) error {
	now := time.Now()
	for _, row := range contacts {
		m := &model.ContactMessage{
			Name:    row.Name,
			Email:   row.Email,
			Phone:   row.Phone,
			City:    row.City,
			Subject: row.Subject,
			Message: row.Message,
			Consent: true,
		}
		if row.Resolved {
			m.Resolve(now)
		}
		created, err := firstOrCreate(tx, m, "email = ?", row.Email)
		if err != nil {
			return err
		}
		r.add("contacts", created)
	}
	return nil
}

func seedSubscribers(tx *gorm.DB, r *Report) error {
	for _, row := range subscribers {
		sub := &model.NewsletterSubscription{Email: row.Email, Name: row.Name, Active: true}
		created, err := firstOrCreate(tx, sub, "email = ?", row.Email)
		if err != nil {
			return err
		}
		r.add("newsletter", created)
	}
	return nil
}
