package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clearfashion/internal/catalog"
	"clearfashion/internal/photo"
	"clearfashion/internal/repos"
	"clearfashion/internal/source"
)

var ErrUnknownProduct = errors.New("unknown product")

// Query is one request for the catalog view. Zero Page/Size keep the
// current page.
type Query struct {
	Page    int
	Size    int
	Refresh bool
	Choices catalog.Choices
}

// CatalogService keeps one catalog.Session per visitor. Each call replaces
// the visitor's session with the one returned by the engine. Calls for the
// same visitor run one at a time, fetch and save included; different
// visitors never wait on each other.
type CatalogService struct {
	Source   *source.Client
	Favs     *repos.FavoriteRepo
	Photo    *photo.Checker
	PageSize int
	Now      func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// visitor guards one session. loaded is false until the favorites were read.
type visitor struct {
	mu     sync.Mutex
	loaded bool
	sess   catalog.Session
}

func NewCatalogService(src *source.Client, favs *repos.FavoriteRepo, photos *photo.Checker, pageSize int) *CatalogService {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &CatalogService{
		Source:   src,
		Favs:     favs,
		Photo:    photos,
		PageSize: pageSize,
		Now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

func (s *CatalogService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// lock returns the visitor for sid locked, reading its favorites from the
// store the first time. The caller must unlock v.mu.
func (s *CatalogService) lock(sid string) (*visitor, error) {
	s.mu.Lock()
	v, ok := s.visitors[sid]
	if !ok {
		v = &visitor{}
		s.visitors[sid] = v
	}
	s.mu.Unlock()

	v.mu.Lock()
	if v.loaded {
		return v, nil
	}
	favs, err := s.Favs.Load(sid)
	if err != nil {
		v.mu.Unlock()
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	v.sess = catalog.NewSession(favs)
	v.loaded = true
	return v, nil
}

// session is a snapshot of the visitor's session for read-only calls.
func (s *CatalogService) session(sid string) (catalog.Session, error) {
	v, err := s.lock(sid)
	if err != nil {
		return catalog.Session{}, err
	}
	defer v.mu.Unlock()
	return v.sess, nil
}

// Browse applies q to the visitor's session, fetching a new page from the
// source when q asks for one, and returns the resulting view.
func (s *CatalogService) Browse(ctx context.Context, sid string, q Query) (catalog.View, error) {
	v, err := s.lock(sid)
	if err != nil {
		return catalog.View{}, err
	}
	defer v.mu.Unlock()
	sess := v.sess

	// the brand index in q was chosen on the list currently shown, so it is
	// applied before a new page rebuilds that list
	sess = sess.WithChoices(q.Choices)

	page, size := q.Page, q.Size
	if page < 1 {
		page = max(sess.Pagination.CurrentPage, 1)
	}
	if size < 1 {
		size = sess.Pagination.PageSize
		if size < 1 {
			size = s.PageSize
		}
	}
	if q.Refresh || sess.Products == nil || page != sess.Pagination.CurrentPage || size != sess.Pagination.PageSize {
		prev := source.Page{Products: sess.Products, Pagination: sess.Pagination}
		fetch := s.Source.FetchOrKeep
		if q.Refresh {
			fetch = s.Source.RefreshOrKeep
		}
		if p, fresh := fetch(ctx, page, size, prev); fresh {
			sess = sess.WithPage(p.Products, p.Pagination)
		}
	}

	v.sess = sess
	return sess.View(s.now()), nil
}

// Toggle marks or unmarks a product of the current page (or the favorites)
// and persists the favorites.
func (s *CatalogService) Toggle(sid, uuid string, on bool) (catalog.Favorites, error) {
	v, err := s.lock(sid)
	if err != nil {
		return nil, err
	}
	defer v.mu.Unlock()
	sess := v.sess
	p, ok := catalog.FindByUUID(sess.Products, uuid)
	if !ok {
		p, ok = catalog.FindByUUID(sess.Favorites, uuid)
	}
	if !ok {
		if on {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, uuid)
		}
		return sess.Favorites, nil
	}

	next := sess.WithFavorite(p, on)
	if err := s.Favs.Save(sid, next.Favorites); err != nil {
		return nil, fmt.Errorf("save favorites: %w", err)
	}
	v.sess = next
	return next.Favorites, nil
}

// ClearFavorites empties the visitor's favorites and drops the stored slot.
func (s *CatalogService) ClearFavorites(sid string) error {
	v, err := s.lock(sid)
	if err != nil {
		return err
	}
	defer v.mu.Unlock()
	if err := s.Favs.Delete(sid); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	v.sess = v.sess.WithFavoritesCleared()
	return nil
}

func (s *CatalogService) Favorites(sid string) (catalog.Favorites, error) {
	sess, err := s.session(sid)
	if err != nil {
		return nil, err
	}
	return sess.Favorites, nil
}

// Brands reports per brand over the active source (page or favorites).
func (s *CatalogService) Brands(sid string) ([]catalog.BrandReport, error) {
	sess, err := s.session(sid)
	if err != nil {
		return nil, err
	}
	return catalog.BrandReports(sess.Source()), nil
}

// Report is the market overview of the current page.
func (s *CatalogService) Report(sid string, opts catalog.ReportOptions) (catalog.Report, error) {
	sess, err := s.session(sid)
	if err != nil {
		return catalog.Report{}, err
	}
	return catalog.BuildReport(sess.Products, s.now(), opts), nil
}

// Photos resolves the photo of every displayed product.
func (s *CatalogService) Photos(ctx context.Context, sid string) (map[string]string, error) {
	sess, err := s.session(sid)
	if err != nil {
		return nil, err
	}
	return s.Photo.ResolveAll(ctx, sess.View(s.now()).Products), nil
}
