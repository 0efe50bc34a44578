package handlers

import (
	"errors"
	"net/url"
	"strings"

	applog "clearfashion/internal/log"
	"clearfashion/internal/services"
	"clearfashion/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type FavoritesHandler struct {
	Catalog *services.CatalogService
}

func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	favs, err := h.Catalog.Favorites(sessionID(c))
	if err != nil {
		applog.Error(c, "favorites.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load favorites"})
	}
	return c.JSON(fiber.Map{"favorites": favs})
}

func (h *FavoritesHandler) Save(c *fiber.Ctx) error {
	return h.toggle(c, true)
}

func (h *FavoritesHandler) Unsave(c *fiber.Ctx) error {
	return h.toggle(c, false)
}

func (h *FavoritesHandler) toggle(c *fiber.Ctx, on bool) error {
	action := "favorites.save"
	if !on {
		action = "favorites.unsave"
	}
	raw := c.FormValue("uuid")
	id, ok := validate.ProductID(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "uuid", "value": raw})
		return c.Status(fiber.StatusBadRequest).SendString("missing uuid")
	}
	if _, err := h.Catalog.Toggle(sessionID(c), id, on); err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			applog.Security(c, action+".unknown", map[string]any{"product": id})
			return c.Status(fiber.StatusNotFound).SendString("unknown product")
		}
		applog.Error(c, action+".fail", err, map[string]any{"product": id})
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update favorites")
	}
	applog.Audit(c, action, map[string]any{"product": id})
	return c.Redirect(backPath(c))
}

func (h *FavoritesHandler) Clear(c *fiber.Ctx) error {
	if err := h.Catalog.ClearFavorites(sessionID(c)); err != nil {
		applog.Error(c, "favorites.clear.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not clear favorites")
	}
	applog.Audit(c, "favorites.clear", nil)
	return c.Redirect(backPath(c))
}

// backPath returns the same-origin path of the referring page, "/" if none.
func backPath(c *fiber.Ctx) string {
	u, err := url.Parse(c.Get(fiber.HeaderReferer))
	if err != nil {
		return "/"
	}
	p := u.EscapedPath()
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}
