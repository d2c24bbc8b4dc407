package model

import "time"

// RenditionName identifies one entry of the rendition table
type RenditionName string

const (
	RenditionThumbnail RenditionName = "thumbnail"
	RenditionCard      RenditionName = "card"
	RenditionDetail    RenditionName = "detail"
	RenditionZoom      RenditionName = "zoom"
	RenditionHero      RenditionName = "hero"
)

// ImageFormat is the encoding family of a rendition
type ImageFormat string

const (
	// FormatModern is encoded as WebP
	FormatModern ImageFormat = "modern"
	// FormatLegacy is encoded as JPEG
	FormatLegacy ImageFormat = "legacy"
)

// Extension returns the file extension used for stored assets of the format
func (f ImageFormat) Extension() string {
	if f == FormatModern {
		return "webp"
	}
	return "jpg"
}

// ContentType returns the MIME type of the format
func (f ImageFormat) ContentType() string {
	if f == FormatModern {
		return "image/webp"
	}
	return "image/jpeg"
}

// ImageRendition is one derived asset of a product image slot
type ImageRendition struct {
	ID         uint          `json:"id" gorm:"primarykey"`
	ProductID  uint          `json:"product_id" gorm:"not null;uniqueIndex:idx_rendition_key"`
	Slot       ImageSlot     `json:"slot" gorm:"type:varchar(20);not null;uniqueIndex:idx_rendition_key"`
	Name       RenditionName `json:"name" gorm:"type:varchar(20);not null;uniqueIndex:idx_rendition_key"`
	Format     ImageFormat   `json:"format" gorm:"type:varchar(10);not null;uniqueIndex:idx_rendition_key"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Quality    int           `json:"quality"`
	StorageKey string        `json:"storage_key" gorm:"type:varchar(255);not null"`
	URL        string        `json:"url" gorm:"type:varchar(1024);not null"`
	Bytes      int64         `json:"bytes"`
	SourceHash string        `json:"source_hash" gorm:"type:varchar(64);index"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
