package imaging

import (
	"strings"

	"catalog-service/internal/model"
)

// Origin tells where a picture URL came from
type Origin string

const (
	OriginRendition   Origin = "rendition"
	OriginSource      Origin = "source"
	OriginPlaceholder Origin = "placeholder"
	OriginNone        Origin = "none"
)

// Picture is what the storefront needs to render a <picture> element.
// Modern may be empty when no WebP variant exists; Fallback is always set
// unless Origin is OriginNone.
type Picture struct {
	Modern   string `json:"modern,omitempty"`
	Fallback string `json:"fallback,omitempty"`
	Sizes    string `json:"sizes,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Origin   Origin `json:"origin"`
}

// Best returns the URL to use when only one can be sent
func (p Picture) Best(acceptsWebP bool) string {
	if acceptsWebP && p.Modern != "" {
		return p.Modern
	}
	return p.Fallback
}

// URLResolver maps stored references to public URLs
type URLResolver interface {
	URL(ref string) string
}

// Selector chooses the best stored variant for a rendition request
type Selector struct {
	urls        URLResolver
	placeholder string
}

// NewSelector creates a Selector. placeholder is a URL without extension;
// ".webp" and ".jpg" variants of it are expected to exist.
func NewSelector(urls URLResolver, placeholder string) *Selector {
	return &Selector{urls: urls, placeholder: strings.TrimSpace(placeholder)}
}

type renditionIndex map[model.ImageSlot]map[model.RenditionName]map[model.ImageFormat]model.ImageRendition

func index(rends []model.ImageRendition) renditionIndex {
	idx := renditionIndex{}
	for _, r := range rends {
		if idx[r.Slot] == nil {
			idx[r.Slot] = map[model.RenditionName]map[model.ImageFormat]model.ImageRendition{}
		}
		if idx[r.Slot][r.Name] == nil {
			idx[r.Slot][r.Name] = map[model.ImageFormat]model.ImageRendition{}
		}
		idx[r.Slot][r.Name][r.Format] = r
	}
	return idx
}

// Select picks the picture for one rendition of the main image. Unknown
// rendition names resolve like detail. Missing variants degrade to the source
// image, then to the placeholder.
func (s *Selector) Select(p *model.Product, rends []model.ImageRendition, name model.RenditionName) Picture {
	return s.pick(p, index(rends), model.SlotMain, name)
}

func (s *Selector) pick(p *model.Product, idx renditionIndex, slot model.ImageSlot, name model.RenditionName) Picture {
	spec, ok := SpecFor(name)
	if !ok {
		spec, _ = SpecFor(model.RenditionDetail)
	}

	source := p.ImageRef(slot)
	if source == "" {
		if slot != model.SlotMain || s.placeholder == "" {
			return Picture{Origin: OriginNone}
		}
		return Picture{
			Modern:   s.placeholder + ".webp",
			Fallback: s.placeholder + ".jpg",
			Sizes:    spec.Sizes,
			Origin:   OriginPlaceholder,
		}
	}

	pic := Picture{Sizes: spec.Sizes, Origin: OriginSource, Fallback: s.urls.URL(source)}
	variants := idx[slot][spec.Name]
	if modern, ok := variants[model.FormatModern]; ok {
		pic.Modern = modern.URL
		pic.Width, pic.Height = modern.Width, modern.Height
		pic.Origin = OriginRendition
	}
	if legacy, ok := variants[model.FormatLegacy]; ok {
		pic.Fallback = legacy.URL
		pic.Width, pic.Height = legacy.Width, legacy.Height
		pic.Origin = OriginRendition
	}
	return pic
}

// GalleryImage groups the pictures of one image slot
type GalleryImage struct {
	Slot     model.ImageSlot `json:"slot"`
	Original string          `json:"original"`
	Thumb    Picture         `json:"thumbnail"`
	Detail   Picture         `json:"detail"`
	Zoom     Picture         `json:"zoom"`
}

// Gallery lists every filled image slot in order
func (s *Selector) Gallery(p *model.Product, rends []model.ImageRendition) []GalleryImage {
	idx := index(rends)
	images := make([]GalleryImage, 0, len(model.ImageSlots))
	for _, slot := range model.ImageSlots {
		ref := p.ImageRef(slot)
		if ref == "" {
			continue
		}
		images = append(images, GalleryImage{
			Slot:     slot,
			Original: s.urls.URL(ref),
			Thumb:    s.pick(p, idx, slot, model.RenditionThumbnail),
			Detail:   s.pick(p, idx, slot, model.RenditionDetail),
			Zoom:     s.pick(p, idx, slot, model.RenditionZoom),
		})
	}
	return images
}

// PictureSet maps every rendition name to its picture
func (s *Selector) PictureSet(p *model.Product, rends []model.ImageRendition) map[model.RenditionName]Picture {
	idx := index(rends)
	set := make(map[model.RenditionName]Picture, len(Renditions))
	for _, spec := range Renditions {
		set[spec.Name] = s.pick(p, idx, model.SlotMain, spec.Name)
	}
	return set
}

// AcceptsWebP reports whether an Accept header allows WebP images
func AcceptsWebP(accept string) bool {
	return strings.Contains(accept, "image/webp")
}
