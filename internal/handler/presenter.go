package handler

import (
	"catalog-service/internal/imaging"
	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
)

// ProductCard is the listing representation of a product
type ProductCard struct {
	ID               uint                `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	URL              string              `json:"url"`
	ShortDescription string              `json:"short_description"`
	Category         string              `json:"category"`
	CategorySlug     string              `json:"category_slug"`
	Brand            string              `json:"brand"`
	Size             model.Size          `json:"size"`
	SizeLabel        string              `json:"size_label"`
	Firmness         model.Firmness      `json:"firmness"`
	FirmnessLabel    string              `json:"firmness_label"`
	Price            decimal.Decimal     `json:"price"`
	DiscountPrice    decimal.NullDecimal `json:"discount_price"`
	FinalPrice       decimal.Decimal     `json:"final_price"`
	DiscountPercent  int64               `json:"discount_percent"`
	Featured         bool                `json:"featured"`
	InStock          bool                `json:"in_stock"`
	Image            imaging.Picture     `json:"image"`
}

// ProductDetail is the detail page representation of a product
type ProductDetail struct {
	ProductCard
	Description   string                                  `json:"description"`
	HeightCM      int                                     `json:"height_cm"`
	Material      string                                  `json:"material"`
	WarrantyYears int                                     `json:"warranty_years"`
	WeightKG      decimal.Decimal                         `json:"weight_kg"`
	Stock         int                                     `json:"stock"`
	Savings       decimal.Decimal                         `json:"savings"`
	Images        map[model.RenditionName]imaging.Picture `json:"images"`
	Gallery       []imaging.GalleryImage                  `json:"gallery"`
}

func groupRenditions(rows []model.ImageRendition) map[uint][]model.ImageRendition {
	out := make(map[uint][]model.ImageRendition)
	for _, r := range rows {
		out[r.ProductID] = append(out[r.ProductID], r)
	}
	return out
}

func productIDs(items []model.Product) []uint {
	ids := make([]uint, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	return ids
}

func newProductCard(p *model.Product, pic imaging.Picture) ProductCard {
	return ProductCard{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		URL:              p.URL(),
		ShortDescription: p.ShortDescription,
		Category:         p.Category.Name,
		CategorySlug:     p.Category.Slug,
		Brand:            p.Brand.Name,
		Size:             p.Size,
		SizeLabel:        p.Size.Label(),
		Firmness:         p.Firmness,
		FirmnessLabel:    p.Firmness.Label(),
		Price:            p.Price,
		DiscountPrice:    p.DiscountPrice,
		FinalPrice:       p.FinalPrice(),
		DiscountPercent:  p.DiscountPercent(),
		Featured:         p.Featured,
		InStock:          p.Stock > 0,
		Image:            pic,
	}
}

func (h *Storefront) cards(items []model.Product, rows []model.ImageRendition, name model.RenditionName) []ProductCard {
	byProduct := groupRenditions(rows)
	cards := make([]ProductCard, 0, len(items))
	for i := range items {
		p := &items[i]
		cards = append(cards, newProductCard(p, h.selector.Select(p, byProduct[p.ID], name)))
	}
	return cards
}
