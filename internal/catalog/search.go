package catalog

import (
	"sort"

	"catalog-service/internal/model"
)

// QuickSearchLimit caps the number of quick search matches
const QuickSearchLimit = 5

// Search is the lightweight matcher behind the search box. It looks at name
// and short description of active products and returns at most limit
// matches in name order. Queries shorter than MinSearchLength match nothing.
func Search(items []model.Product, q string, limit int) []model.Product {
	needle := searchNeedle(q)
	if needle == "" || limit <= 0 {
		return []model.Product{}
	}

	matches := make([]model.Product, 0, limit)
	for _, it := range items {
		if !it.Active {
			continue
		}
		if containsFold(it.Name, needle) || containsFold(it.ShortDescription, needle) {
			matches = append(matches, it)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return lessName(matches[i], matches[j]) })

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
