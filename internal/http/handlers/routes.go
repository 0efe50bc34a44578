package handlers

import "github.com/gofiber/fiber/v2"

// Mount registers the catalog pages and API on r. Session() must run first.
func Mount(r fiber.Router, d *Deps) {
	r.Get("/", d.CatalogHandler.Page)
	r.Post("/favorites", d.FavoritesHandler.Save)
	r.Post("/favorites/delete", d.FavoritesHandler.Unsave)
	r.Post("/favorites/clear", d.FavoritesHandler.Clear)

	api := r.Group("/api/v1")
	api.Get("/products", d.CatalogHandler.Products)
	api.Get("/brands", d.CatalogHandler.Brands)
	api.Get("/report", d.CatalogHandler.Report)
	api.Get("/photos", d.CatalogHandler.Photos)
	api.Get("/favorites", d.FavoritesHandler.List)
}
