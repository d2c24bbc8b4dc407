package imaging

import (
	"testing"

	"catalog-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenditionTable(t *testing.T) {
	tests := []struct {
		name    model.RenditionName
		w, h    int
		fit     FitPolicy
		quality int
		sharpen bool
	}{
		{model.RenditionThumbnail, 300, 300, FitFill, 85, true},
		{model.RenditionCard, 400, 300, FitWithin, 80, false},
		{model.RenditionDetail, 800, 600, FitWithin, 90, false},
		{model.RenditionZoom, 1200, 900, FitWithin, 95, false},
		{model.RenditionHero, 1920, 800, FitWithin, 85, false},
	}
	require.Len(t, Renditions, len(tests))
	for _, tt := range tests {
		spec, ok := SpecFor(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.w, spec.Width)
		assert.Equal(t, tt.h, spec.Height)
		assert.Equal(t, tt.fit, spec.Fit)
		assert.Equal(t, tt.quality, spec.Quality)
		assert.Equal(t, tt.sharpen, spec.Sharpen)
	}
	_, ok := SpecFor("poster")
	assert.False(t, ok)
}

func TestQualityFor(t *testing.T) {
	card, _ := SpecFor(model.RenditionCard)
	zoom, _ := SpecFor(model.RenditionZoom)

	assert.Equal(t, 80, QualityFor(card, model.FormatModern, 0))
	assert.Equal(t, 85, QualityFor(card, model.FormatLegacy, 0))
	assert.Equal(t, 95, QualityFor(zoom, model.FormatModern, 0))
	assert.Equal(t, 90, QualityFor(zoom, model.FormatLegacy, 0))

	assert.Equal(t, 60, QualityFor(zoom, model.FormatModern, 60))
	assert.Equal(t, 85, QualityFor(zoom, model.FormatLegacy, 60))
	assert.Equal(t, 95, QualityFor(zoom, model.FormatModern, 101))
}

func TestParseFormats(t *testing.T) {
	f, err := ParseFormats("both")
	require.NoError(t, err)
	assert.Equal(t, AllFormats, f)

	f, err = ParseFormats("webp")
	require.NoError(t, err)
	assert.Equal(t, []model.ImageFormat{model.FormatModern}, f)

	f, err = ParseFormats("LEGACY")
	require.NoError(t, err)
	assert.Equal(t, []model.ImageFormat{model.FormatLegacy}, f)

	_, err = ParseFormats("gif")
	assert.Error(t, err)
}
