package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-service/pkg/slug"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Size is the mattress size enum
type Size string

const (
	SizeSingle       Size = "sencillo"
	SizeThreeQuarter Size = "semi"
	SizeDouble       Size = "doble"
	SizeQueen        Size = "queen"
	SizeKing         Size = "king"
)

// Firmness is the mattress firmness enum
type Firmness string

const (
	FirmnessSoft      Firmness = "suave"
	FirmnessMedium    Firmness = "medio"
	FirmnessFirm      Firmness = "firme"
	FirmnessExtraFirm Firmness = "extra_firme"
)

// Choice is a value/label pair used to render filter widgets
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SizeChoices lists sizes in display order
var SizeChoices = []Choice{
	{string(SizeSingle), "Sencillo (90x190)"},
	{string(SizeThreeQuarter), "Semidoble (120x190)"},
	{string(SizeDouble), "Doble (140x190)"},
	{string(SizeQueen), "Queen (160x190)"},
	{string(SizeKing), "King (200x200)"},
}

// FirmnessChoices lists firmness levels in display order
var FirmnessChoices = []Choice{
	{string(FirmnessSoft), "Suave"},
	{string(FirmnessMedium), "Medio"},
	{string(FirmnessFirm), "Firme"},
	{string(FirmnessExtraFirm), "Extra Firme"},
}

// Valid reports whether s is a known size
func (s Size) Valid() bool {
	return hasChoice(SizeChoices, string(s))
}

// Valid reports whether f is a known firmness
func (f Firmness) Valid() bool {
	return hasChoice(FirmnessChoices, string(f))
}

func hasChoice(choices []Choice, v string) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// ImageSlot names one of the four raw image fields of a product
type ImageSlot string

const (
	SlotMain   ImageSlot = "principal"
	SlotSecond ImageSlot = "2"
	SlotThird  ImageSlot = "3"
	SlotFourth ImageSlot = "4"
)

// ImageSlots lists the slots in gallery order
var ImageSlots = []ImageSlot{SlotMain, SlotSecond, SlotThird, SlotFourth}

// Valid reports whether s is a known slot
func (s ImageSlot) Valid() bool {
	switch s {
	case SlotMain, SlotSecond, SlotThird, SlotFourth:
		return true
	}
	return false
}

// Product is a mattress offered in the catalog. Products are never hard deleted.
type Product struct {
	ID               uint                `json:"id" gorm:"primarykey"`
	Name             string              `json:"name" gorm:"type:varchar(200);not null"`
	Slug             string              `json:"slug" gorm:"type:varchar(200);uniqueIndex;not null"`
	CategoryID       uint                `json:"category_id" gorm:"index;not null"`
	Category         Category            `json:"category" gorm:"constraint:OnDelete:RESTRICT"`
	BrandID          uint                `json:"brand_id" gorm:"index;not null"`
	Brand            Brand               `json:"brand" gorm:"constraint:OnDelete:RESTRICT"`
	ShortDescription string              `json:"short_description" gorm:"type:varchar(300)"`
	Description      string              `json:"description" gorm:"type:text"`
	Size             Size                `json:"size" gorm:"type:varchar(20);index;not null"`
	Firmness         Firmness            `json:"firmness" gorm:"type:varchar(20);index;not null"`
	HeightCM         int                 `json:"height_cm"`
	Material         string              `json:"material" gorm:"type:varchar(100)"`
	WarrantyYears    int                 `json:"warranty_years"`
	Price            decimal.Decimal     `json:"price" gorm:"type:numeric(10,2);not null"`
	DiscountPrice    decimal.NullDecimal `json:"discount_price" gorm:"type:numeric(10,2)"`
	Stock            int                 `json:"stock"`
	WeightKG         decimal.Decimal     `json:"weight_kg" gorm:"type:numeric(5,2)"`
	ImageMain        string              `json:"image_main" gorm:"type:varchar(1024)"`
	Image2           string              `json:"image_2" gorm:"type:varchar(1024)"`
	Image3           string              `json:"image_3" gorm:"type:varchar(1024)"`
	Image4           string              `json:"image_4" gorm:"type:varchar(1024)"`
	Featured         bool                `json:"featured" gorm:"index"`
	Active           bool                `json:"active" gorm:"index"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// BeforeSave derives the slug from name and size when it was left empty
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(p.Slug) == "" {
		p.Slug = slug.Make(fmt.Sprintf("%s-%s", p.Name, p.Size))
	}
	return nil
}

// ImageRef returns the stored reference of an image slot
func (p *Product) ImageRef(slot ImageSlot) string {
	switch slot {
	case SlotMain:
		return p.ImageMain
	case SlotSecond:
		return p.Image2
	case SlotThird:
		return p.Image3
	case SlotFourth:
		return p.Image4
	}
	return ""
}

// SetImageRef replaces the stored reference of an image slot
func (p *Product) SetImageRef(slot ImageSlot, ref string) {
	switch slot {
	case SlotMain:
		p.ImageMain = ref
	case SlotSecond:
		p.Image2 = ref
	case SlotThird:
		p.Image3 = ref
	case SlotFourth:
		p.Image4 = ref
	}
}

// ImageColumn maps a slot to its database column
func ImageColumn(slot ImageSlot) string {
	switch slot {
	case SlotSecond:
		return "image2"
	case SlotThird:
		return "image3"
	case SlotFourth:
		return "image4"
	}
	return "image_main"
}

// HasImages reports whether any slot holds a reference
func (p *Product) HasImages() bool {
	for _, s := range ImageSlots {
		if p.ImageRef(s) != "" {
			return true
		}
	}
	return false
}

// FinalPrice is the discounted price when one is set, else the base price
func (p *Product) FinalPrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// DiscountPercent is the rounded discount over the base price, 0 without a discount
func (p *Product) DiscountPercent() int64 {
	if !p.DiscountPrice.Valid || !p.DiscountPrice.Decimal.LessThan(p.Price) || p.Price.IsZero() {
		return 0
	}
	pct := p.Price.Sub(p.DiscountPrice.Decimal).Div(p.Price).Mul(decimal.NewFromInt(100))
	return pct.Round(0).IntPart()
}

// Savings is the amount saved by the discount
func (p *Product) Savings() decimal.Decimal {
	if !p.DiscountPrice.Valid {
		return decimal.Zero
	}
	return p.Price.Sub(p.DiscountPrice.Decimal)
}

// Validation errors returned by Product.Validate
var (
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidSize      = errors.New("invalid size")
	ErrInvalidFirmness  = errors.New("invalid firmness")
	ErrNegativePrice    = errors.New("price must be >= 0")
	ErrDiscountTooHigh  = errors.New("discount price must be <= price")
	ErrNegativeStock    = errors.New("stock must be >= 0")
	ErrNegativeQuantity = errors.New("height, warranty and weight must be >= 0")
)

// Validate checks the product invariants
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !p.Size.Valid() {
		return ErrInvalidSize
	}
	if !p.Firmness.Valid() {
		return ErrInvalidFirmness
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.DiscountPrice.Valid {
		if p.DiscountPrice.Decimal.IsNegative() {
			return ErrNegativePrice
		}
		if p.DiscountPrice.Decimal.GreaterThan(p.Price) {
			return ErrDiscountTooHigh
		}
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	if p.HeightCM < 0 || p.WarrantyYears < 0 || p.WeightKG.IsNegative() {
		return ErrNegativeQuantity
	}
	return nil
}

// Label returns the display label of the product size
func (s Size) Label() string {
	return choiceLabel(SizeChoices, string(s))
}

// Label returns the display label of the firmness level
func (f Firmness) Label() string {
	return choiceLabel(FirmnessChoices, string(f))
}

func choiceLabel(choices []Choice, v string) string {
	for _, c := range choices {
		if c.Value == v {
			return c.Label
		}
	}
	return v
}

// URL is the storefront path of the product detail page
func (p *Product) URL() string {
	return "/producto/" + p.Slug + "/"
}
