package handlers

import (
	"context"
	"time"

	"clearfashion/internal/config"
	"clearfashion/internal/photo"
	"clearfashion/internal/repos"
	"clearfashion/internal/services"
	"clearfashion/internal/source"
	"clearfashion/pkg/cache"
	"clearfashion/pkg/retry"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CatalogHandler   *CatalogHandler
	FavoritesHandler *FavoritesHandler

	Catalog *services.CatalogService
	Cache   *cache.RedisCache
}

func NewDeps(ctx context.Context, db *sqlx.DB, cfg config.Config) *Deps {
	favRepo := repos.NewFavoriteRepo(db)

	pageCache := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
	src := source.New(cfg.SourceURL,
		source.WithTimeout(cfg.FetchTimeout),
		source.WithRateLimit(cfg.FetchRate),
		source.WithRetry(cfg.FetchRetries, retry.Exponential(100*time.Millisecond)),
		source.WithCache(pageCache),
	)
	photos := photo.New(cfg.PhotoTimeout, cfg.FallbackPhoto, photo.WithParallelism(cfg.PhotoWorkers))

	catalogSvc := services.NewCatalogService(src, favRepo, photos, cfg.PageSize)

	return &Deps{
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		FavoritesHandler: &FavoritesHandler{Catalog: catalogSvc},
		Catalog:          catalogSvc,
		Cache:            pageCache,
	}
}

// Close releases the page cache connection, if any.
func (d *Deps) Close() error {
	if d.Cache == nil {
		return nil
	}
	return d.Cache.Close()
}
