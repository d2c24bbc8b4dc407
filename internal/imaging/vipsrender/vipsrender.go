// Package vipsrender renders image renditions with libvips.
package vipsrender

import (
	"fmt"

	"catalog-service/internal/imaging"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"

	"github.com/davidbyttow/govips/v2/vips"
	"go.uber.org/zap"
)

// Startup initialises libvips. Call once before rendering.
func Startup(concurrency int) {
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(&vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024,
	})
	logger.GetLogger().Info("libvips started", zap.String("version", vips.Version))
}

// Shutdown releases libvips resources
func Shutdown() {
	vips.Shutdown()
}

var white = &vips.Color{R: 255, G: 255, B: 255}

// Renderer implements imaging.Renderer on libvips
type Renderer struct{}

// New returns a libvips renderer. Startup must have been called.
func New() *Renderer {
	return &Renderer{}
}

// Render decodes src, fixes orientation, resizes by the spec fit policy and
// encodes to the requested format.
func (r *Renderer) Render(src []byte, spec imaging.Spec, format model.ImageFormat, quality int) (imaging.Output, error) {
	img, err := vips.NewImageFromBuffer(src)
	if err != nil {
		return imaging.Output{}, fmt.Errorf("decode: %w", err)
	}
	defer img.Close()

	if err := img.AutoRotate(); err != nil {
		return imaging.Output{}, fmt.Errorf("autorotate: %w", err)
	}

	switch spec.Fit {
	case imaging.FitFill:
		err = img.ThumbnailWithSize(spec.Width, spec.Height, vips.InterestingCentre, vips.SizeBoth)
	default:
		err = img.ThumbnailWithSize(spec.Width, spec.Height, vips.InterestingNone, vips.SizeDown)
	}
	if err != nil {
		return imaging.Output{}, fmt.Errorf("resize %s: %w", spec.Name, err)
	}

	if spec.Sharpen {
		if err := img.Sharpen(0.5, 1.0, 2.0); err != nil {
			return imaging.Output{}, fmt.Errorf("sharpen: %w", err)
		}
	}

	var (
		buf  []byte
		meta *vips.ImageMetadata
	)
	switch format {
	case model.FormatModern:
		params := vips.NewWebpExportParams()
		params.Quality = quality
		params.Lossless = false
		params.StripMetadata = true
		if spec.Sharpen {
			params.ReductionEffort = 6
		}
		buf, meta, err = img.ExportWebp(params)
	case model.FormatLegacy:
		if img.HasAlpha() {
			if err := img.Flatten(white); err != nil {
				return imaging.Output{}, fmt.Errorf("flatten: %w", err)
			}
		}
		params := vips.NewJpegExportParams()
		params.Quality = quality
		params.StripMetadata = true
		params.OptimizeCoding = true
		params.Interlace = true
		buf, meta, err = img.ExportJpeg(params)
	default:
		return imaging.Output{}, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return imaging.Output{}, fmt.Errorf("encode %s: %w", format, err)
	}

	return imaging.Output{Data: buf, Width: meta.Width, Height: meta.Height}, nil
}
