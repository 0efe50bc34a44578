package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day as published by the product source ("2021-01-11").
type Date struct{ time.Time }

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	// the calendar day as written, whatever the offset
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Product struct {
	UUID     string  `json:"uuid"`
	Brand    string  `json:"brand"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Released Date    `json:"released"`
	Link     string  `json:"link"`
	Photo    string  `json:"photo,omitempty"`
}

// Pagination mirrors the meta block returned with every page.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	PageCount   int `json:"pageCount"`
	Count       int `json:"count"`
}

// Normalize clamps CurrentPage into [1, PageCount] and fixes non-positive sizes.
func (p Pagination) Normalize() Pagination {
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	if p.PageCount < 1 {
		p.PageCount = 1
	}
	if p.Count < 0 {
		p.Count = 0
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.CurrentPage > p.PageCount {
		p.CurrentPage = p.PageCount
	}
	return p
}

// Pages lists the selectable page numbers, 1..PageCount.
func (p Pagination) Pages() []int {
	p = p.Normalize()
	out := make([]int, p.PageCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func FindByUUID(products []Product, uuid string) (Product, bool) {
	for _, p := range products {
		if p.UUID == uuid {
			return p, true
		}
	}
	return Product{}, false
}

// RemoveByUUID returns a copy of products without the entries matching uuid.
func RemoveByUUID(products []Product, uuid string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.UUID != uuid {
			out = append(out, p)
		}
	}
	return out
}
