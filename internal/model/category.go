package model

import (
	"strings"
	"time"

	"catalog-service/pkg/slug"

	"gorm.io/gorm"
)

// Category groups products on the storefront
type Category struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Name         string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug         string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	DisplayOrder int       `json:"display_order" gorm:"index"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeSave derives the slug from the name when it was left empty
func (c *Category) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(c.Slug) == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

// Brand is the manufacturer of a product
type Brand struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
