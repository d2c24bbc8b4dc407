// Package imaging derives the responsive renditions of product images and
// picks the best stored variant for display.
package imaging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"catalog-service/internal/model"
	"catalog-service/internal/storage"
	"catalog-service/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoSource is returned when the requested slot holds no image
var ErrNoSource = errors.New("image slot is empty")

// RenditionKey is the deterministic storage key of a derived asset
func RenditionKey(collection string, productID uint, slot model.ImageSlot, name model.RenditionName, format model.ImageFormat) string {
	return fmt.Sprintf("%s/%d_%s_%s_%s", collection, productID, slot, name, format)
}

// SourceKey is the deterministic storage key of an uploaded source image
func SourceKey(collection string, productID uint, slot model.ImageSlot) string {
	return fmt.Sprintf("%s/%d_%s", collection, productID, slot)
}

// Fingerprint identifies source content
func Fingerprint(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// DeriveOptions tunes a single derivation
type DeriveOptions struct {
	Formats []model.ImageFormat
	// Quality overrides the table quality when between 1 and 100
	Quality int
	// Force re-renders even when Existing already covers the source
	Force    bool
	Existing []model.ImageRendition
}

// Derivation is the outcome of deriving one image slot
type Derivation struct {
	Renditions  []model.ImageRendition
	Skipped     bool
	SourceBytes int64
	OutputBytes int64
}

// Deriver renders every rendition of a source and stores it through the backend
type Deriver struct {
	backend    storage.Backend
	renderer   Renderer
	collection string
}

// NewDeriver creates a Deriver writing under collection
func NewDeriver(backend storage.Backend, renderer Renderer, collection string) *Deriver {
	return &Deriver{backend: backend, renderer: renderer, collection: collection}
}

// Backend returns the storage the deriver writes to
func (d *Deriver) Backend() storage.Backend { return d.backend }

// Collection returns the key prefix of stored assets
func (d *Deriver) Collection() string { return d.collection }

// LoadSource reads the raw bytes of an image slot
func (d *Deriver) LoadSource(ctx context.Context, p *model.Product, slot model.ImageSlot) ([]byte, error) {
	ref := p.ImageRef(slot)
	if ref == "" {
		return nil, ErrNoSource
	}
	rc, err := d.backend.Open(ctx, ref)
	if err != nil {
		return nil, errors.Wrapf(err, "open source %s", ref)
	}
	defer rc.Close()

	src, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "read source %s", ref)
	}
	if len(src) == 0 {
		return nil, errors.Errorf("source %s is empty", ref)
	}
	return src, nil
}

// Derive renders and stores every (rendition, format) pair of a product image
// slot. Keys are deterministic, so deriving the same slot again overwrites the
// previous assets. Unless opts.Force is set, a slot whose existing renditions
// already match the source fingerprint is skipped.
func (d *Deriver) Derive(ctx context.Context, p *model.Product, slot model.ImageSlot, opts DeriveOptions) (*Derivation, error) {
	src, err := d.LoadSource(ctx, p, slot)
	if err != nil {
		return nil, errors.Wrapf(err, "product %d slot %s", p.ID, slot)
	}
	return d.DeriveFrom(ctx, p, slot, src, opts)
}

// DeriveFrom is Derive with the source bytes already in hand
func (d *Deriver) DeriveFrom(ctx context.Context, p *model.Product, slot model.ImageSlot, src []byte, opts DeriveOptions) (*Derivation, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("product_id", p.ID), zap.String("slot", string(slot)))

	formats := opts.Formats
	if len(formats) == 0 {
		formats = AllFormats
	}
	hash := Fingerprint(src)

	if !opts.Force && covered(opts.Existing, slot, hash, formats) {
		log.Debug("Renditions up to date, skipping")
		return &Derivation{Skipped: true}, nil
	}

	out := &Derivation{SourceBytes: int64(len(src))}
	for _, spec := range Renditions {
		for _, format := range formats {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			quality := QualityFor(spec, format, opts.Quality)
			rendered, err := d.renderer.Render(src, spec, format, quality)
			if err != nil {
				return nil, errors.Wrapf(err, "product %d slot %s: render %s/%s", p.ID, slot, spec.Name, format)
			}

			key := RenditionKey(d.collection, p.ID, slot, spec.Name, format)
			obj, err := d.backend.Put(ctx, key, rendered.Data, format.ContentType())
			if err != nil {
				return nil, errors.Wrapf(err, "product %d slot %s: store %s", p.ID, slot, key)
			}

			out.OutputBytes += obj.Size
			out.Renditions = append(out.Renditions, model.ImageRendition{
				ProductID:  p.ID,
				Slot:       slot,
				Name:       spec.Name,
				Format:     format,
				Width:      rendered.Width,
				Height:     rendered.Height,
				Quality:    quality,
				StorageKey: key,
				URL:        obj.URL,
				Bytes:      obj.Size,
				SourceHash: hash,
			})
		}
	}

	log.Info("Renditions derived",
		zap.Int("count", len(out.Renditions)),
		zap.Int64("source_bytes", out.SourceBytes),
		zap.Int64("output_bytes", out.OutputBytes))
	return out, nil
}

// covered reports whether existing rows hold every rendition of slot in
// formats, all derived from the source with fingerprint hash
func covered(existing []model.ImageRendition, slot model.ImageSlot, hash string, formats []model.ImageFormat) bool {
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.Slot == slot && r.SourceHash == hash {
			have[string(r.Name)+"/"+string(r.Format)] = true
		}
	}
	for _, spec := range Renditions {
		for _, f := range formats {
			if !have[string(spec.Name)+"/"+string(f)] {
				return false
			}
		}
	}
	return true
}
