package imaging

import (
	"context"
	"fmt"
	"sync"

	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RenditionStore is the persistence the batch driver needs
type RenditionStore interface {
	ProductsWithImages(ctx context.Context) ([]model.Product, error)
	Renditions(ctx context.Context, productIDs ...uint) ([]model.ImageRendition, error)
	SaveRenditions(ctx context.Context, productID uint, slot model.ImageSlot, rows []model.ImageRendition) error
}

// OptimizeOptions are the batch entry point options
type OptimizeOptions struct {
	Force   bool
	Formats []model.ImageFormat
	// Quality between 1 and 100 overrides the table, 0 keeps it
	Quality int
}

// Validate checks the option ranges
func (o OptimizeOptions) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", o.Quality)
	}
	return nil
}

// Failure records one image that could not be derived
type Failure struct {
	ProductID uint            `json:"product_id"`
	Slot      model.ImageSlot `json:"slot"`
	Error     string          `json:"error"`
}

// Summary aggregates a batch run. Counts are per image slot.
type Summary struct {
	Products    int       `json:"products"`
	Processed   int       `json:"processed"`
	Skipped     int       `json:"skipped"`
	Errors      int       `json:"errors"`
	BytesBefore int64     `json:"bytes_before"`
	BytesAfter  int64     `json:"bytes_after"`
	Failures    []Failure `json:"failures,omitempty"`
}

// Reduction is the size reduction percentage of processed images
func (s Summary) Reduction() float64 {
	if s.BytesBefore == 0 {
		return 0
	}
	return float64(s.BytesBefore-s.BytesAfter) / float64(s.BytesBefore) * 100
}

// Optimizer re-derives renditions for every product image. Items are
// independent, so they run on a worker pool; a failing item is counted and
// the batch carries on.
type Optimizer struct {
	deriver *Deriver
	store   RenditionStore
	workers int
}

// NewOptimizer creates a batch driver running on workers goroutines
func NewOptimizer(deriver *Deriver, store RenditionStore, workers int) *Optimizer {
	if workers < 1 {
		workers = 1
	}
	return &Optimizer{deriver: deriver, store: store, workers: workers}
}

type job struct {
	product  model.Product
	slot     model.ImageSlot
	existing []model.ImageRendition
}

// Run processes every product image and returns the batch summary. Only
// failures to list the work abort the run.
func (o *Optimizer) Run(ctx context.Context, opts OptimizeOptions) (Summary, error) {
	log := logger.FromCtx(ctx)
	var summary Summary

	if err := opts.Validate(); err != nil {
		return summary, err
	}

	products, err := o.store.ProductsWithImages(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list products: %w", err)
	}
	summary.Products = len(products)
	if len(products) == 0 {
		log.Warn("No products with images found")
		return summary, nil
	}

	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	existing, err := o.store.Renditions(ctx, ids...)
	if err != nil {
		return summary, fmt.Errorf("failed to load renditions: %w", err)
	}
	byProduct := make(map[uint][]model.ImageRendition)
	for _, r := range existing {
		byProduct[r.ProductID] = append(byProduct[r.ProductID], r)
	}

	var jobs []job
	for _, p := range products {
		for _, slot := range model.ImageSlots {
			if p.ImageRef(slot) != "" {
				jobs = append(jobs, job{product: p, slot: slot, existing: byProduct[p.ID]})
			}
		}
	}

	log.Info("Starting image optimization",
		zap.Int("products", len(products)),
		zap.Int("images", len(jobs)),
		zap.Int("workers", o.workers),
		zap.Bool("force", opts.Force))

	pool, err := ants.NewPool(o.workers)
	if err != nil {
		return summary, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, j := range jobs {
		j := j
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			d, err := o.process(ctx, j, opts)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Errors++
				summary.Failures = append(summary.Failures, Failure{ProductID: j.product.ID, Slot: j.slot, Error: err.Error()})
				prometheus.RecordImageError("optimize")
				log.Error("Failed to optimize image",
					zap.Uint("product_id", j.product.ID),
					zap.String("slot", string(j.slot)),
					zap.Error(err))
			case d.Skipped:
				summary.Skipped++
			default:
				summary.Processed++
				summary.BytesBefore += d.SourceBytes
				summary.BytesAfter += d.OutputBytes
				prometheus.RecordRenditions(len(d.Renditions))
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			summary.Errors++
			summary.Failures = append(summary.Failures, Failure{ProductID: j.product.ID, Slot: j.slot, Error: submitErr.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()

	log.Info("Image optimization finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
		zap.Int64("bytes_before", summary.BytesBefore),
		zap.Int64("bytes_after", summary.BytesAfter),
		zap.Float64("reduction_pct", summary.Reduction()))
	return summary, nil
}

func (o *Optimizer) process(ctx context.Context, j job, opts OptimizeOptions) (*Derivation, error) {
	d, err := o.deriver.Derive(ctx, &j.product, j.slot, DeriveOptions{
		Formats:  opts.Formats,
		Quality:  opts.Quality,
		Force:    opts.Force,
		Existing: j.existing,
	})
	if err != nil {
		return nil, err
	}
	if d.Skipped {
		return d, nil
	}
	if err := o.store.SaveRenditions(ctx, j.product.ID, j.slot, d.Renditions); err != nil {
		return nil, errors.Wrapf(err, "product %d slot %s: save renditions", j.product.ID, j.slot)
	}
	return d, nil
}
