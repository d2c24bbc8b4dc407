package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidRating is returned when a rating falls outside 1..5
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Testimonial is a customer review shown on the storefront
type Testimonial struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Author    string    `json:"author" gorm:"type:varchar(100);not null"`
	City      string    `json:"city" gorm:"type:varchar(100)"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	ProductID *uint     `json:"product_id" gorm:"index"`
	Product   *Product  `json:"product,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Active    bool      `json:"active" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the rating bounds and required text
func (t *Testimonial) Validate() error {
	if strings.TrimSpace(t.Author) == "" || strings.TrimSpace(t.Comment) == "" {
		return errors.New("author and comment are required")
	}
	if t.Rating < 1 || t.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
