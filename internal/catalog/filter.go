package catalog

import "time"

type predicate func(Product) bool

// RecencyCutoff is the instant a product must be released strictly after to
// count as new at now.
func RecencyCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -RecencyWindowDays)
}

func IsNew(p Product, now time.Time) bool {
	return p.Released.After(RecencyCutoff(now))
}

func brandIs(brand string) predicate {
	return func(p Product) bool { return p.Brand == brand }
}

func priceBelow(limit float64) predicate {
	return func(p Product) bool { return p.Price < limit }
}

func releasedAfter(cutoff time.Time) predicate {
	return func(p Product) bool { return p.Released.After(cutoff) }
}

func keep(products []Product, preds []predicate) []Product {
	out := make([]Product, 0, len(products))
next:
	for _, p := range products {
		for _, ok := range preds {
			if !ok(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// ApplyFilters keeps the products satisfying every enabled choice: the selected
// brand, the reasonable price and the recency window. brandIndex addresses
// brands; an index outside it selects all brands.
func ApplyFilters(products []Product, c Choices, brands []string, now time.Time) []Product {
	var preds []predicate
	if idx := ClampBrandIndex(brands, c.BrandIndex); idx != 0 {
		preds = append(preds, brandIs(brands[idx]))
	}
	if c.ReasonablePrice {
		preds = append(preds, priceBelow(ReasonablePriceLimit))
	}
	if c.RecentlyReleased {
		preds = append(preds, releasedAfter(RecencyCutoff(now)))
	}
	return keep(products, preds)
}

// FilterPriceRange keeps products priced within [min, max].
func FilterPriceRange(products []Product, min, max float64) []Product {
	return keep(products, []predicate{func(p Product) bool {
		return p.Price >= min && p.Price <= max
	}})
}
