package imaging

import (
	"context"
	"testing"

	"catalog-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizerRun(t *testing.T) {
	backend := newMemBackend()
	good := productWithSource(backend, 1, "first-image-bytes")
	good.Image2 = SourceKey("productos", 1, model.SlotSecond)
	backend.objects[good.Image2] = []byte("second-image")
	other := productWithSource(backend, 2, "another-image-bytes")
	broken := model.Product{ID: 3, ImageMain: "productos/3_principal"}
	noImages := model.Product{ID: 4}

	store := newMemStore(good, other, broken, noImages)
	opt := NewOptimizer(NewDeriver(backend, &fakeRenderer{}, "productos"), store, 2)
	ctx := context.Background()

	summary, err := opt.Run(ctx, OptimizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Products)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, uint(3), summary.Failures[0].ProductID)
	assert.Greater(t, summary.BytesBefore, int64(0))
	assert.Greater(t, summary.BytesAfter, int64(0))
	assert.Len(t, store.renditions, 3*len(Renditions)*2)

	again, err := opt.Run(ctx, OptimizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Processed)
	assert.Equal(t, 3, again.Skipped)
	assert.Equal(t, 1, again.Errors)

	forced, err := opt.Run(ctx, OptimizeOptions{Force: true, Formats: []model.ImageFormat{model.FormatModern}})
	require.NoError(t, err)
	assert.Equal(t, 3, forced.Processed)
	assert.Len(t, store.renditions, 3*len(Renditions)*2, "re-derivation replaces rows")
}

func TestOptimizerRejectsQuality(t *testing.T) {
	opt := NewOptimizer(NewDeriver(newMemBackend(), &fakeRenderer{}, "productos"), newMemStore(), 1)
	_, err := opt.Run(context.Background(), OptimizeOptions{Quality: 150})
	assert.Error(t, err)
}

func TestSummaryReduction(t *testing.T) {
	assert.Equal(t, 0.0, Summary{}.Reduction())
	assert.InDelta(t, 75.0, Summary{BytesBefore: 400, BytesAfter: 100}.Reduction(), 0.001)
}

func TestMigratorRun(t *testing.T) {
	local := newMemBackend()
	local.name = "local"
	local.objects["productos/raw.jpg"] = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}
	remote := newMemBackend()
	remote.name = "cloudinary"

	p := model.Product{ID: 5, ImageMain: "productos/raw.jpg", Image3: "https://elsewhere.test/x.jpg", Image4: "productos/gone.jpg"}
	store := newMemStore(p)

	summary, err := NewMigrator(local, remote, store, "productos").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Migrated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Errors)

	assert.Equal(t, "productos/5_principal", store.products[0].ImageMain)
	assert.Equal(t, local.objects["productos/raw.jpg"], remote.objects["productos/5_principal"])
	assert.Equal(t, "productos/gone.jpg", store.products[0].Image4)
}

func TestMigratorSkipsRemoteRefsForAnyTarget(t *testing.T) {
	from := newMemBackend()
	from.name = "cloudinary"
	to := newMemBackend()
	to.name = "local"

	p := model.Product{ID: 9, ImageMain: "https://res.cloudinary.com/demo/productos/9_principal.jpg"}
	store := newMemStore(p)

	summary, err := NewMigrator(from, to, store, "productos").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Migrated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, to.objects)
	assert.Equal(t, p.ImageMain, store.products[0].ImageMain)
}
