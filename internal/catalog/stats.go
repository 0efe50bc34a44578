package catalog

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrEmptyInput is returned by aggregates that are undefined on an empty list.
var ErrEmptyInput = errors.New("catalog: empty product list")

type Stats struct {
	Count        int     `json:"count"`
	NewCount     int     `json:"newCount"`
	P50          float64 `json:"p50"`
	P90          float64 `json:"p90"`
	P95          float64 `json:"p95"`
	LastReleased Date    `json:"lastReleased"`
}

// Percentile returns the nearest-rank price at fraction p: the price at
// position floor(p*n) of an ascending copy, clamped to the last element.
func Percentile(products []Product, p float64) (float64, error) {
	if len(products) == 0 {
		return 0, ErrEmptyInput
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("catalog: percentile fraction %v out of [0,1]", p)
	}
	sorted := Sort(products, SortByPriceAsc)
	idx := int(math.Floor(p * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx].Price, nil
}

// LastReleased returns the most recent release date; ties resolve to the
// first such product in input order.
func LastReleased(products []Product) (Date, error) {
	if len(products) == 0 {
		return Date{}, ErrEmptyInput
	}
	return Sort(products, SortByDateDesc)[0].Released, nil
}

func CountNew(products []Product, now time.Time) int {
	n := 0
	for _, p := range products {
		if IsNew(p, now) {
			n++
		}
	}
	return n
}

// ComputeStatistics summarizes the displayed list. It never reorders the
// caller's slice.
func ComputeStatistics(products []Product, now time.Time) (Stats, error) {
	if len(products) == 0 {
		return Stats{}, ErrEmptyInput
	}
	st := Stats{Count: len(products), NewCount: CountNew(products, now)}
	var err error
	if st.P50, err = Percentile(products, 0.50); err != nil {
		return Stats{}, err
	}
	if st.P90, err = Percentile(products, 0.90); err != nil {
		return Stats{}, err
	}
	if st.P95, err = Percentile(products, 0.95); err != nil {
		return Stats{}, err
	}
	if st.LastReleased, err = LastReleased(products); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func AveragePrice(products []Product) (float64, error) {
	if len(products) == 0 {
		return 0, ErrEmptyInput
	}
	total := 0.0
	for _, p := range products {
		total += p.Price
	}
	return total / float64(len(products)), nil
}
