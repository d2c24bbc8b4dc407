package handler

import (
	"testing"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePlain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Colchón O'Brien & Hijos", "Colchón O'Brien & Hijos"},
		{"precio < 500000", "precio < 500000"},
		{`Ana <b>Pérez</b>`, "Ana Pérez"},
		{`<script>alert("x")</script>Hola`, "Hola"},
		{`  "Doble" fácil  `, `"Doble" fácil`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizePlain(tc.in), tc.in)
	}
}

func TestProductRequestKeepsPunctuation(t *testing.T) {
	req := ProductRequest{
		Name:             "Colchón O'Brien & Hijos",
		ShortDescription: "Resortes <i>pocket</i> & espuma",
		Material:         "Látex & algodón",
		CategoryID:       1,
		BrandID:          1,
		Size:             model.SizeQueen,
		Firmness:         model.FirmnessFirm,
		Price:            decimal.NewFromInt(900),
		Active:           boolPtr(true),
	}

	var p model.Product
	req.apply(&p)
	require.NoError(t, p.Validate())
	require.NoError(t, p.BeforeSave(nil))

	assert.Equal(t, "Colchón O'Brien & Hijos", p.Name)
	assert.Equal(t, "Resortes pocket & espuma", p.ShortDescription)
	assert.Equal(t, "Látex & algodón", p.Material)
	assert.NotContains(t, p.Slug, "amp")
	assert.NotContains(t, p.Slug, "39")

	for _, q := range []string{"o'brien", "& hijos", "látex & algodón"} {
		res := catalog.Query([]model.Product{p}, catalog.Params{Search: q, Sort: catalog.SortName, Page: 1})
		assert.Len(t, res.Items, 1, q)
	}
}

func boolPtr(b bool) *bool { return &b }
