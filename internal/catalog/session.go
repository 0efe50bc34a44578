package catalog

import (
	"errors"
	"time"
)

// Session is the state of one catalog page: the fetched products, their
// pagination, the chosen filters and the favorites. Transitions return a new
// Session and leave the receiver usable as the previous state.
type Session struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	Choices    Choices    `json:"choices"`
	Favorites  Favorites  `json:"favorites"`
	Brands     []string   `json:"brands"`
}

func NewSession(favorites Favorites) Session {
	s := Session{Favorites: favorites, Choices: Choices{SortKey: SortByName}}
	s.Brands = DeriveBrandList(s.Source())
	return s
}

// Source is the list the filters run over: the favorites in favorites-only
// mode, the current page otherwise.
func (s Session) Source() []Product {
	if s.Choices.FavoritesOnly {
		return s.Favorites
	}
	return s.Products
}

// SelectedBrand is the brand addressed by the current brand index.
func (s Session) SelectedBrand() string {
	idx := ClampBrandIndex(s.Brands, s.Choices.BrandIndex)
	if idx >= len(s.Brands) {
		return AllBrands
	}
	return s.Brands[idx]
}

// rebrand recomputes the brand list and points the brand index at selected in
// the new list, or at All when that brand is gone.
func (s Session) rebrand(selected string) Session {
	s.Brands = DeriveBrandList(s.Source())
	s.Choices.BrandIndex = BrandIndex(s.Brands, selected)
	return s
}

// WithPage replaces the products and pagination wholesale.
func (s Session) WithPage(products []Product, meta Pagination) Session {
	selected := s.SelectedBrand()
	s.Products = products
	s.Pagination = meta.Normalize()
	return s.rebrand(selected)
}

// WithChoices applies c. c.BrandIndex is read against the brand list the
// choice was made on (the receiver's); the selection is carried over by name
// when c switches the active source.
func (s Session) WithChoices(c Choices) Session {
	idx := ClampBrandIndex(s.Brands, c.BrandIndex)
	selected := AllBrands
	if idx < len(s.Brands) {
		selected = s.Brands[idx]
	}
	if c.SortKey == "" {
		c.SortKey = SortByName
	}
	s.Choices = c
	return s.rebrand(selected)
}

// WithFavorite toggles p in the favorites.
func (s Session) WithFavorite(p Product, on bool) Session {
	selected := s.SelectedBrand()
	s.Favorites = ToggleFavorite(s.Favorites, p, on)
	return s.rebrand(selected)
}

func (s Session) WithFavoritesCleared() Session {
	selected := s.SelectedBrand()
	s.Favorites = Favorites{}
	return s.rebrand(selected)
}

// View is what the presentation layer renders.
type View struct {
	Products      []Product  `json:"products"`
	Stats         *Stats     `json:"stats,omitempty"`
	StatsError    string     `json:"statsError,omitempty"`
	Brands        []string   `json:"brands"`
	SelectedBrand string     `json:"selectedBrand"`
	Pagination    Pagination `json:"pagination"`
	Choices       Choices    `json:"choices"`
	Favorites     []string   `json:"favorites"`
}

// View filters and sorts the active source and summarizes the result.
// Statistics are computed over the displayed list in both modes.
func (s Session) View(now time.Time) View {
	filtered := ApplyFilters(s.Source(), s.Choices, s.Brands, now)
	v := View{
		Products:      Sort(filtered, s.Choices.SortKey),
		Brands:        s.Brands,
		SelectedBrand: s.SelectedBrand(),
		Pagination:    s.Pagination,
		Choices:       s.Choices,
		Favorites:     make([]string, 0, len(s.Favorites)),
	}
	for _, f := range s.Favorites {
		v.Favorites = append(v.Favorites, f.UUID)
	}
	st, err := ComputeStatistics(v.Products, now)
	switch {
	case err == nil:
		v.Stats = &st
	case errors.Is(err, ErrEmptyInput):
		v.StatsError = "no products to summarize"
	default:
		v.StatsError = err.Error()
	}
	return v
}
