package catalog

// AllBrands is the sentinel shown at index 0 of every brand list.
const AllBrands = "All"

// DeriveBrandList returns AllBrands followed by the distinct brands of products
// in first-seen order. A product brand equal to the sentinel is not repeated.
func DeriveBrandList(products []Product) []string {
	out := []string{AllBrands}
	seen := map[string]struct{}{AllBrands: {}}
	for _, p := range products {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		out = append(out, p.Brand)
	}
	return out
}

// BrandIndex returns the position of brand in brands, or 0 (All) when absent.
func BrandIndex(brands []string, brand string) int {
	for i, b := range brands {
		if b == brand {
			return i
		}
	}
	return 0
}

// ClampBrandIndex resets an index that does not address brands to 0.
func ClampBrandIndex(brands []string, idx int) int {
	if idx < 0 || idx >= len(brands) {
		return 0
	}
	return idx
}

// GroupByBrand buckets products per brand, brands in first-seen order.
func GroupByBrand(products []Product) ([]string, map[string][]Product) {
	groups := make(map[string][]Product)
	var order []string
	for _, p := range products {
		if _, ok := groups[p.Brand]; !ok {
			order = append(order, p.Brand)
		}
		groups[p.Brand] = append(groups[p.Brand], p)
	}
	return order, groups
}
