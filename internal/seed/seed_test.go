package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRowsAreValid(t *testing.T) {
	categoryNames := map[string]bool{}
	for _, c := range categories {
		categoryNames[c.Name] = true
	}
	brandNames := map[string]bool{}
	for _, b := range brands {
		brandNames[b.Name] = true
	}

	seen := map[string]bool{}
	for _, row := range products {
		t.Run(row.Name, func(t *testing.T) {
			assert.True(t, categoryNames[row.Category], "unknown category %q", row.Category)
			assert.True(t, brandNames[row.Brand], "unknown brand %q", row.Brand)
			assert.False(t, seen[row.Name], "duplicate product")
			seen[row.Name] = true

			p, err := buildProduct(row, 1, 1)
			require.NoError(t, err)
			if row.Discount != "" {
				assert.True(t, p.DiscountPrice.Valid)
				assert.Positive(t, p.DiscountPercent())
			}
		})
	}
}

func TestTestimonialRowsReferenceProducts(t *testing.T) {
	names := map[string]bool{}
	for _, p := range products {
		names[p.Name] = true
	}
	for _, row := range testimonials {
		assert.True(t, names[row.Product], "testimonial by %s references %q", row.Author, row.Product)
		assert.GreaterOrEqual(t, row.Rating, 1)
		assert.LessOrEqual(t, row.Rating, 5)
	}
}

func TestContactRowsUseKnownSubjects(t *testing.T) {
	for _, row := range contacts {
		assert.True(t, row.Subject.Valid(), row.Subject)
	}
}

func TestReport(t *testing.T) {
	r := newReport()
	r.add("products", true)
	r.add("products", true)
	r.add("products", false)
	assert.Equal(t, 2, r.Created["products"])
	assert.Equal(t, 1, r.Existing["products"])
}
