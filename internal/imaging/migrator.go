package imaging

import (
	"context"
	"fmt"
	"io"

	"catalog-service/internal/model"
	"catalog-service/internal/storage"
	"catalog-service/pkg/logger"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SourceStore is the persistence the source migration needs
type SourceStore interface {
	ProductsWithImages(ctx context.Context) ([]model.Product, error)
	UpdateImageRef(ctx context.Context, productID uint, slot model.ImageSlot, ref string) error
}

// MigrationSummary aggregates a migration run. Counts are per image slot.
type MigrationSummary struct {
	Migrated int       `json:"migrated"`
	Skipped  int       `json:"skipped"`
	Errors   int       `json:"errors"`
	Failures []Failure `json:"failures,omitempty"`
}

// Migrator moves raw source images from one backend to another, typically
// from local media to the remote store when a deployment goes hosted.
type Migrator struct {
	from       storage.Backend
	to         storage.Backend
	store      SourceStore
	collection string
}

// NewMigrator creates a Migrator
func NewMigrator(from, to storage.Backend, store SourceStore, collection string) *Migrator {
	return &Migrator{from: from, to: to, store: store, collection: collection}
}

// Run uploads every source that is not already remote under
// SourceKey and points the product slot at the new reference. Sources that
// cannot be read are counted and skipped over.
func (m *Migrator) Run(ctx context.Context) (MigrationSummary, error) {
	log := logger.FromCtx(ctx)
	var summary MigrationSummary

	products, err := m.store.ProductsWithImages(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list products: %w", err)
	}

	for i := range products {
		p := &products[i]
		for _, slot := range model.ImageSlots {
			ref := p.ImageRef(slot)
			if ref == "" {
				continue
			}
			if storage.IsRemote(ref) {
				summary.Skipped++
				continue
			}
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			newRef, err := m.migrate(ctx, p, slot, ref)
			if err != nil {
				summary.Errors++
				summary.Failures = append(summary.Failures, Failure{ProductID: p.ID, Slot: slot, Error: err.Error()})
				log.Error("Failed to migrate image",
					zap.Uint("product_id", p.ID),
					zap.String("slot", string(slot)),
					zap.Error(err))
				continue
			}
			summary.Migrated++
			log.Info("Image migrated",
				zap.Uint("product_id", p.ID),
				zap.String("slot", string(slot)),
				zap.String("ref", newRef))
		}
	}
	return summary, nil
}

func (m *Migrator) migrate(ctx context.Context, p *model.Product, slot model.ImageSlot, ref string) (string, error) {
	rc, err := m.from.Open(ctx, ref)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", ref)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "", errors.Wrapf(err, "read %s", ref)
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}

	obj, err := m.to.Put(ctx, SourceKey(m.collection, p.ID, slot), data, contentType)
	if err != nil {
		return "", errors.Wrap(err, "upload")
	}
	if err := m.store.UpdateImageRef(ctx, p.ID, slot, obj.Ref); err != nil {
		return "", errors.Wrap(err, "update product")
	}
	p.SetImageRef(slot, obj.Ref)
	return obj.Ref, nil
}
