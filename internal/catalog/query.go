package catalog

import (
	"sort"
	"strings"
	"unicode/utf8"

	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
)

// PageSize is the fixed number of products per listing page
const PageSize = 12

// MinSearchLength is the rune count below which search text is ignored
const MinSearchLength = 2

// PageInfo describes the page returned by Query
type PageInfo struct {
	Number      int  `json:"number"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
	// StartIndex and EndIndex are 1-based and inclusive, both 0 on an empty page
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// CategoryOption is a category that has at least one active product
type CategoryOption struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// FilterOptions carries what the listing filter widgets need
type FilterOptions struct {
	Sizes      []model.Choice      `json:"sizes"`
	Firmnesses []model.Choice      `json:"firmnesses"`
	Categories []CategoryOption    `json:"categories"`
	PriceMin   decimal.NullDecimal `json:"price_min"`
	PriceMax   decimal.NullDecimal `json:"price_max"`
}

// Result is one page of the filtered, sorted collection
type Result struct {
	Items   []model.Product `json:"items"`
	Page    PageInfo        `json:"page"`
	Options FilterOptions   `json:"options"`
	Current Params          `json:"current"`
}

// Query filters, sorts and paginates items. It never fails: filters that
// cannot apply are ignored and the page is clamped into range.
func Query(items []model.Product, p Params) Result {
	active := make([]model.Product, 0, len(items))
	for _, it := range items {
		if it.Active {
			active = append(active, it)
		}
	}

	needle := searchNeedle(p.Search)
	narrowed := make([]model.Product, 0, len(active))
	for _, it := range active {
		if p.Category != "" && it.Category.Slug != p.Category {
			continue
		}
		if needle != "" && !matchesSearch(it, needle) {
			continue
		}
		if p.Size != "" && it.Size != p.Size {
			continue
		}
		if p.Firmness != "" && it.Firmness != p.Firmness {
			continue
		}
		narrowed = append(narrowed, it)
	}

	opts := FilterOptions{
		Sizes:      model.SizeChoices,
		Firmnesses: model.FirmnessChoices,
		Categories: categoryOptions(active),
	}
	opts.PriceMin, opts.PriceMax = priceRange(narrowed)

	filtered := narrowed[:0:0]
	for _, it := range narrowed {
		if p.PriceMin.Valid && it.Price.LessThan(p.PriceMin.Decimal) {
			continue
		}
		if p.PriceMax.Valid && it.Price.GreaterThan(p.PriceMax.Decimal) {
			continue
		}
		filtered = append(filtered, it)
	}

	sortProducts(filtered, p.Sort)
	pageItems, info := paginate(filtered, p.Page)

	return Result{
		Items:   pageItems,
		Page:    info,
		Options: opts,
		Current: p,
	}
}

func searchNeedle(q string) string {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return ""
	}
	return strings.ToLower(q)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func matchesSearch(p model.Product, needle string) bool {
	return containsFold(p.Name, needle) ||
		containsFold(p.ShortDescription, needle) ||
		containsFold(p.Brand.Name, needle) ||
		containsFold(p.Material, needle)
}

func lessName(a, b model.Product) bool {
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// sortProducts orders items in place. Ties keep input order; an unknown key
// leaves the input order untouched.
func sortProducts(items []model.Product, key SortKey) {
	var less func(a, b model.Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b model.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b model.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortName:
		less = lessName
	case SortFeatured:
		less = func(a, b model.Product) bool {
			if a.Featured != b.Featured {
				return a.Featured
			}
			return lessName(a, b)
		}
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func paginate(items []model.Product, page int) ([]model.Product, PageInfo) {
	total := len(items)
	pages := (total + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}

	info := PageInfo{
		Number:      page,
		TotalPages:  pages,
		TotalItems:  total,
		HasPrevious: page > 1,
		HasNext:     page < pages,
	}
	if total > 0 {
		info.StartIndex = start + 1
		info.EndIndex = end
	}
	return items[start:end], info
}

func categoryOptions(items []model.Product) []CategoryOption {
	seen := make(map[string]bool)
	var cats []model.Category
	for _, it := range items {
		c := it.Category
		if !c.Active || c.Slug == "" || seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true
		cats = append(cats, c)
	}
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].DisplayOrder != cats[j].DisplayOrder {
			return cats[i].DisplayOrder < cats[j].DisplayOrder
		}
		return cats[i].Name < cats[j].Name
	})

	out := make([]CategoryOption, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryOption{Slug: c.Slug, Name: c.Name})
	}
	return out
}

func priceRange(items []model.Product) (decimal.NullDecimal, decimal.NullDecimal) {
	var lo, hi decimal.NullDecimal
	for _, it := range items {
		if !lo.Valid || it.Price.LessThan(lo.Decimal) {
			lo = decimal.NewNullDecimal(it.Price)
		}
		if !hi.Valid || it.Price.GreaterThan(hi.Decimal) {
			hi = decimal.NewNullDecimal(it.Price)
		}
	}
	return lo, hi
}
