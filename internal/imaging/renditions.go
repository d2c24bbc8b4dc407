package imaging

import (
	"fmt"
	"strings"

	"catalog-service/internal/model"
)

// FitPolicy decides how a source is brought into a rendition box
type FitPolicy int

const (
	// FitWithin scales down preserving aspect ratio, no crop
	FitWithin FitPolicy = iota
	// FitFill crops the overflow so the output matches the box exactly
	FitFill
)

// Spec is one row of the rendition table
type Spec struct {
	Name    model.RenditionName
	Width   int
	Height  int
	Fit     FitPolicy
	Quality int
	Sharpen bool
	// Sizes is the responsive sizes hint shipped with the picture
	Sizes string
}

// Renditions is the fixed table every source image is derived into
var Renditions = []Spec{
	{Name: model.RenditionThumbnail, Width: 300, Height: 300, Fit: FitFill, Quality: 85, Sharpen: true,
		Sizes: "(max-width: 576px) 150px, (max-width: 768px) 200px, 300px"},
	{Name: model.RenditionCard, Width: 400, Height: 300, Fit: FitWithin, Quality: 80,
		Sizes: "(max-width: 768px) 300px, 400px"},
	{Name: model.RenditionDetail, Width: 800, Height: 600, Fit: FitWithin, Quality: 90,
		Sizes: "(max-width: 768px) 90vw, 800px"},
	{Name: model.RenditionZoom, Width: 1200, Height: 900, Fit: FitWithin, Quality: 95,
		Sizes: "(max-width: 1200px) 90vw, 1200px"},
	{Name: model.RenditionHero, Width: 1920, Height: 800, Fit: FitWithin, Quality: 85,
		Sizes: "100vw"},
}

// SpecFor looks up a rendition by name
func SpecFor(name model.RenditionName) (Spec, bool) {
	for _, s := range Renditions {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Legacy JPEG quality stays inside this window whatever the primary quality is
const (
	legacyQualityMin = 85
	legacyQualityMax = 90
)

// LegacyQuality derives the fallback encoder quality from the primary one
func LegacyQuality(primary int) int {
	if primary < legacyQualityMin {
		return legacyQualityMin
	}
	if primary > legacyQualityMax {
		return legacyQualityMax
	}
	return primary
}

// QualityFor is the encoder quality of a spec in a format. override, when
// between 1 and 100, replaces the table quality.
func QualityFor(spec Spec, format model.ImageFormat, override int) int {
	q := spec.Quality
	if override >= 1 && override <= 100 {
		q = override
	}
	if format == model.FormatLegacy {
		return LegacyQuality(q)
	}
	return q
}

// AllFormats is the default output selection
var AllFormats = []model.ImageFormat{model.FormatModern, model.FormatLegacy}

// ParseFormats maps a format selection flag to output formats. The encoder
// names are accepted as aliases.
func ParseFormats(s string) ([]model.ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return AllFormats, nil
	case "modern", "webp":
		return []model.ImageFormat{model.FormatModern}, nil
	case "legacy", "jpeg", "jpg":
		return []model.ImageFormat{model.FormatLegacy}, nil
	}
	return nil, fmt.Errorf("unknown format %q, expected modern, legacy or both", s)
}
