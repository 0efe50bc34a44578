package catalog

import (
	"cmp"
	"slices"
	"strings"
)

func comparator(key SortKey) func(a, b Product) int {
	switch key {
	case SortByPriceAsc:
		return func(a, b Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortByPriceDesc:
		return func(a, b Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortByDateAsc:
		return func(a, b Product) int { return a.Released.Compare(b.Released.Time) }
	case SortByDateDesc:
		return func(a, b Product) int { return b.Released.Compare(a.Released.Time) }
	default:
		return func(a, b Product) int { return strings.Compare(a.Name, b.Name) }
	}
}

// Sort returns a stably sorted copy of products; unknown keys sort by name.
func Sort(products []Product, key SortKey) []Product {
	out := slices.Clone(products)
	slices.SortStableFunc(out, comparator(key))
	return out
}
