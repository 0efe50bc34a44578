package catalog

import (
	"fmt"
	"strings"
)

type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPriceAsc  SortKey = "price-asc"
	SortByPriceDesc SortKey = "price-desc"
	SortByDateAsc   SortKey = "date-asc"
	SortByDateDesc  SortKey = "date-desc"
)

// SortKeys in the order the sort selector lists them.
var SortKeys = []SortKey{SortByName, SortByPriceAsc, SortByPriceDesc, SortByDateAsc, SortByDateDesc}

func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortByName, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return SortByName, fmt.Errorf("unknown sort key %q", s)
}

const (
	ReasonablePriceLimit = 50.0
	RecencyWindowDays    = 14
)

// Choices is the filter/sort configuration chosen in the page controls.
type Choices struct {
	ReasonablePrice  bool    `json:"reasonablePrice"`
	RecentlyReleased bool    `json:"recentlyReleased"`
	BrandIndex       int     `json:"brandIndex"`
	SortKey          SortKey `json:"sortKey"`
	FavoritesOnly    bool    `json:"favoritesOnly"`
}
