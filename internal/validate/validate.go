package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"clearfashion/internal/catalog"
)

var (
	reQ  = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
	reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// PageSizes are the sizes offered by the page-size selector.
var PageSizes = []int{12, 24, 48}

const (
	maxPage = 10000
	maxSize = 100
)

// Page parses a 1-based page number. Empty means "keep the current page" (0).
func Page(s string) (int, bool) {
	return boundedInt(s, maxPage)
}

// Size parses a page size within 1..100. Empty means "keep the current size" (0).
func Size(s string) (int, bool) {
	return boundedInt(s, maxSize)
}

func boundedInt(s string, limit int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > limit {
		return 0, false
	}
	return n, true
}

// BrandIndex parses a position in the displayed brand list. Out-of-range
// values are left to the engine, which resets them to All.
func BrandIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Flag reads a checkbox-style boolean: "", "0", "false", "off" are false.
func Flag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "off", "no":
		return false, true
	case "1", "true", "on", "yes":
		return true, true
	}
	return false, false
}

func Sort(s string) (catalog.SortKey, bool) {
	k, err := catalog.ParseSortKey(strings.TrimSpace(s))
	return k, err == nil
}

// Q validates a name substring: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Price parses a non-negative price bound.
func Price(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1e6 {
		return 0, false
	}
	return f, true
}

// ProductID accepts the source's uuids and any simple slug-like identifier.
func ProductID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, reID.MatchString(s) || uuid.Validate(s) == nil
}

// SessionID validates the visitor cookie, which is always a uuid.
func SessionID(s string) bool {
	return uuid.Validate(s) == nil
}
