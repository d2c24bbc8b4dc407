package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
)

// SortKey selects the listing order
type SortKey string

const (
	SortPriceAsc  SortKey = "precio_asc"
	SortPriceDesc SortKey = "precio_desc"
	SortName      SortKey = "nombre"
	SortFeatured  SortKey = "destacados"
)

// Query string keys accepted by the listing
const (
	ParamCategory = "categoria"
	ParamSearch   = "q"
	ParamSort     = "orden"
	ParamPriceMin = "precio_min"
	ParamPriceMax = "precio_max"
	ParamSize     = "tamano"
	ParamFirmness = "firmeza"
	ParamPage     = "page"
)

// Params is the parsed listing request. Zero values mean "no filter".
type Params struct {
	Category string              `json:"categoria,omitempty"`
	Search   string              `json:"q,omitempty"`
	Sort     SortKey             `json:"orden"`
	PriceMin decimal.NullDecimal `json:"precio_min"`
	PriceMax decimal.NullDecimal `json:"precio_max"`
	Size     model.Size          `json:"tamano,omitempty"`
	Firmness model.Firmness      `json:"firmeza,omitempty"`
	Page     int                 `json:"page"`
}

// ParseParams reads the listing parameters. Malformed values are dropped
// instead of failing the request.
func ParseParams(values url.Values) Params {
	p := Params{
		Category: strings.TrimSpace(values.Get(ParamCategory)),
		Search:   strings.TrimSpace(values.Get(ParamSearch)),
		Sort:     SortKey(strings.TrimSpace(values.Get(ParamSort))),
		Size:     model.Size(strings.TrimSpace(values.Get(ParamSize))),
		Firmness: model.Firmness(strings.TrimSpace(values.Get(ParamFirmness))),
		PriceMin: parsePrice(values.Get(ParamPriceMin)),
		PriceMax: parsePrice(values.Get(ParamPriceMax)),
		Page:     1,
	}
	if p.Sort == "" {
		p.Sort = SortName
	}
	// base 10 only: "010" is page 10
	if page, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage))); err == nil {
		p.Page = page
	}
	return p
}

func parsePrice(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Values encodes the params back into a query string, used for page links
func (p Params) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set(ParamCategory, p.Category)
	set(ParamSearch, p.Search)
	set(ParamSort, string(p.Sort))
	set(ParamSize, string(p.Size))
	set(ParamFirmness, string(p.Firmness))
	if p.PriceMin.Valid {
		v.Set(ParamPriceMin, p.PriceMin.Decimal.String())
	}
	if p.PriceMax.Valid {
		v.Set(ParamPriceMax, p.PriceMax.Decimal.String())
	}
	return v
}
