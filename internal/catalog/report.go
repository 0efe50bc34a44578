package catalog

import (
	"strings"
	"time"
)

// CheapestMatching returns the cheapest product whose name contains substr
// (case-insensitive). The first one wins on equal prices.
func CheapestMatching(products []Product, substr string) (Product, bool) {
	needle := strings.ToLower(substr)
	var best Product
	found := false
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if !found || p.Price < best.Price {
			best, found = p, true
		}
	}
	return best, found
}

// IsReasonableShop reports whether every product is priced below limit.
func IsReasonableShop(products []Product, limit float64) bool {
	for _, p := range products {
		if p.Price >= limit {
			return false
		}
	}
	return true
}

func HasNewProducts(products []Product, now time.Time) bool {
	return CountNew(products, now) > 0
}

type BrandReport struct {
	Brand    string    `json:"brand"`
	Count    int       `json:"count"`
	P90      float64   `json:"p90"`
	Newest   Date      `json:"newest"`
	Oldest   Date      `json:"oldest"`
	Products []Product `json:"products"`
}

// BrandReports summarizes each brand; products are listed by price, highest first.
func BrandReports(products []Product) []BrandReport {
	order, groups := GroupByBrand(products)
	out := make([]BrandReport, 0, len(order))
	for _, brand := range order {
		ps := groups[brand]
		p90, _ := Percentile(ps, 0.90)
		byDate := Sort(ps, SortByDateAsc)
		out = append(out, BrandReport{
			Brand:    brand,
			Count:    len(ps),
			P90:      p90,
			Newest:   byDate[len(byDate)-1].Released,
			Oldest:   byDate[0].Released,
			Products: Sort(ps, SortByPriceDesc),
		})
	}
	return out
}

type ReportOptions struct {
	NameContains    string
	RangeMin        float64
	RangeMax        float64
	ReasonableLimit float64
}

func DefaultReportOptions() ReportOptions {
	return ReportOptions{NameContains: "T-shirt", RangeMin: 50, RangeMax: 100, ReasonableLimit: 100}
}

type Report struct {
	Count          int           `json:"count"`
	Brands         []string      `json:"brands"`
	AveragePrice   float64       `json:"averagePrice"`
	Cheapest       *Product      `json:"cheapest,omitempty"`
	InRange        []Product     `json:"inRange"`
	HasNew         bool          `json:"hasNew"`
	ReasonableShop bool          `json:"reasonableShop"`
	ByBrand        []BrandReport `json:"byBrand"`
}

// BuildReport is the market overview of one list of products.
func BuildReport(products []Product, now time.Time, opts ReportOptions) Report {
	r := Report{
		Count:          len(products),
		Brands:         DeriveBrandList(products)[1:],
		InRange:        Sort(FilterPriceRange(products, opts.RangeMin, opts.RangeMax), SortByPriceAsc),
		HasNew:         HasNewProducts(products, now),
		ReasonableShop: IsReasonableShop(products, opts.ReasonableLimit),
		ByBrand:        BrandReports(products),
	}
	r.AveragePrice, _ = AveragePrice(products)
	if opts.NameContains != "" {
		if p, ok := CheapestMatching(products, opts.NameContains); ok {
			r.Cheapest = &p
		}
	}
	return r
}
