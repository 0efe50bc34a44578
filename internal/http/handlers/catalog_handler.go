package handlers

import (
	"clearfashion/internal/catalog"
	applog "clearfashion/internal/log"
	"clearfashion/internal/services"
	"clearfashion/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// parseQuery reads the page controls. On failure it returns the name of the
// offending field.
func parseQuery(c *fiber.Ctx) (services.Query, string, bool) {
	var q services.Query
	var ok bool
	if q.Page, ok = validate.Page(c.Query("page")); !ok {
		return q, "page", false
	}
	if q.Size, ok = validate.Size(c.Query("size")); !ok {
		return q, "size", false
	}
	if q.Choices.BrandIndex, ok = validate.BrandIndex(c.Query("brand")); !ok {
		return q, "brand", false
	}
	if q.Choices.SortKey, ok = validate.Sort(c.Query("sort")); !ok {
		return q, "sort", false
	}
	flags := []struct {
		name string
		dst  *bool
	}{
		{"reasonable", &q.Choices.ReasonablePrice},
		{"recent", &q.Choices.RecentlyReleased},
		{"favorites", &q.Choices.FavoritesOnly},
		{"refresh", &q.Refresh},
	}
	for _, f := range flags {
		if *f.dst, ok = validate.Flag(c.Query(f.name)); !ok {
			return q, f.name, false
		}
	}
	return q, "", true
}

// Page renders the product table with its controls and indicators.
func (h *CatalogHandler) Page(c *fiber.Ctx) error {
	q, field, ok := parseQuery(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": field, "value": c.Query(field)})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Invalid filter"})
	}
	view, err := h.Catalog.Browse(c.UserContext(), sessionID(c), q)
	if err != nil {
		applog.Error(c, "catalog.browse.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products. Please retry."})
	}

	fav := make(map[string]bool, len(view.Favorites))
	for _, id := range view.Favorites {
		fav[id] = true
	}
	return render(c, "catalog", fiber.Map{
		"View":      view,
		"Fav":       fav,
		"Pages":     view.Pagination.Pages(),
		"PageSizes": validate.PageSizes,
		"SortKeys":  catalog.SortKeys,
		"NoPhoto":   h.Catalog.Photo.Fallback(),
	})
}

// Products is the JSON twin of Page.
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	q, field, ok := parseQuery(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": field, "value": c.Query(field)})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + field})
	}
	view, err := h.Catalog.Browse(c.UserContext(), sessionID(c), q)
	if err != nil {
		applog.Error(c, "catalog.browse.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
	}
	return c.JSON(view)
}

func (h *CatalogHandler) Brands(c *fiber.Ctx) error {
	reports, err := h.Catalog.Brands(sessionID(c))
	if err != nil {
		applog.Error(c, "catalog.brands.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load brands"})
	}
	return c.JSON(fiber.Map{"brands": reports})
}

// Report accepts optional contains, min, max and limit overrides.
func (h *CatalogHandler) Report(c *fiber.Ctx) error {
	opts := catalog.DefaultReportOptions()
	if raw := c.Query("contains"); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "contains", "value": raw})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid contains"})
		}
		opts.NameContains = q
	}
	bounds := []struct {
		name string
		dst  *float64
	}{
		{"min", &opts.RangeMin},
		{"max", &opts.RangeMax},
		{"limit", &opts.ReasonableLimit},
	}
	for _, b := range bounds {
		raw := c.Query(b.name)
		if raw == "" {
			continue
		}
		v, ok := validate.Price(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": b.name, "value": raw})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + b.name})
		}
		*b.dst = v
	}
	if opts.RangeMin > opts.RangeMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min above max"})
	}

	report, err := h.Catalog.Report(sessionID(c), opts)
	if err != nil {
		applog.Error(c, "catalog.report.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not build report"})
	}
	return c.JSON(report)
}

func (h *CatalogHandler) Photos(c *fiber.Ctx) error {
	photos, err := h.Catalog.Photos(c.UserContext(), sessionID(c))
	if err != nil {
		applog.Error(c, "catalog.photos.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not resolve photos"})
	}
	return c.JSON(fiber.Map{"photos": photos})
}
