// Package catalog holds the storefront view models for products, collections
// and content, and the Service that reads them with degraded defaults.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/result"
)

// ServiceConfig holds non-dependency configuration for the Service.
type ServiceConfig struct {
	// StoreDomain is the platform origin (e.g. https://shop.myshopify.com).
	// It is stripped from menu item URLs so links stay on the storefront.
	StoreDomain string
}

// Service reads catalog data from a Source. Upstream failures never
// propagate as errors: every method returns a result.Result whose Value is
// the safe default for the operation.
type Service struct {
	source      Source
	lg          *zap.Logger
	storeDomain string
	now         func() time.Time
}

// NewService creates a catalog Service reading from source.
func NewService(cfg ServiceConfig, source Source, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		source:      source,
		lg:          lg,
		storeDomain: strings.TrimSuffix(cfg.StoreDomain, "/"),
		now:         time.Now,
	}
}

// Products returns a page of products across the catalog.
func (s *Service) Products(ctx context.Context, q ProductQuery) result.Result[ProductPage] {
	page, err := s.source.Products(ctx, q)
	if err != nil {
		s.lg.Warn("Fetch products failed", zap.String("query", q.Query), zap.Error(err))
		return result.Failed(EmptyProductPage(), err)
	}
	return result.Found(normalizePage(page))
}

// CollectionProducts returns the products of a single collection. A missing
// collection yields an empty page.
func (s *Service) CollectionProducts(ctx context.Context, q CollectionQuery) result.Result[ProductPage] {
	q.SortKey = collectionSortKey(q.SortKey)
	page, err := s.source.CollectionProducts(ctx, q)
	switch {
	case errors.Is(err, ErrNotFound):
		return result.Empty(EmptyProductPage())
	case err != nil:
		s.lg.Warn("Fetch collection products failed", zap.String("collection", q.Handle), zap.Error(err))
		return result.Failed(EmptyProductPage(), err)
	}
	return result.Found(normalizePage(page))
}

// Collections returns all collections preceded by the synthetic All
// collection. On failure only All is returned.
func (s *Service) Collections(ctx context.Context) result.Result[[]Collection] {
	all := AllCollection(s.now().UTC())
	collections, err := s.source.Collections(ctx)
	if err != nil {
		s.lg.Warn("Fetch collections failed", zap.Error(err))
		return result.Failed([]Collection{all}, err)
	}
	out := make([]Collection, 0, len(collections)+1)
	out = append(out, all)
	out = append(out, collections...)
	return result.Found(out)
}

// Collection returns a single collection by handle.
func (s *Service) Collection(ctx context.Context, handle string) result.Result[*Collection] {
	if handle == AllHandle {
		all := AllCollection(s.now().UTC())
		return result.Found(&all)
	}
	c, err := s.source.Collection(ctx, handle)
	switch {
	case errors.Is(err, ErrNotFound):
		return result.Empty[*Collection](nil)
	case err != nil:
		s.lg.Warn("Fetch collection failed", zap.String("collection", handle), zap.Error(err))
		return result.Failed[*Collection](nil, err)
	}
	return result.Found(c)
}

// Product returns a single product by handle. Hidden products are included
// so direct links keep working.
func (s *Service) Product(ctx context.Context, handle string) result.Result[*Product] {
	p, err := s.source.Product(ctx, handle)
	switch {
	case errors.Is(err, ErrNotFound):
		return result.Empty[*Product](nil)
	case err != nil:
		s.lg.Warn("Fetch product failed", zap.String("handle", handle), zap.Error(err))
		return result.Failed[*Product](nil, err)
	}
	return result.Found(p)
}

// Recommendations returns products related to productID.
func (s *Service) Recommendations(ctx context.Context, productID string) result.Result[[]Product] {
	products, err := s.source.Recommendations(ctx, productID)
	if err != nil {
		s.lg.Warn("Fetch recommendations failed", zap.String("product_id", productID), zap.Error(err))
		return result.Failed([]Product{}, err)
	}
	if products == nil {
		products = []Product{}
	}
	return result.Found(products)
}

// Menu returns the navigation items of the menu identified by handle, with
// platform URLs rewritten to storefront paths.
func (s *Service) Menu(ctx context.Context, handle string) result.Result[[]MenuItem] {
	items, err := s.source.Menu(ctx, handle)
	if err != nil {
		s.lg.Warn("Fetch menu failed", zap.String("menu", handle), zap.Error(err))
		return result.Failed([]MenuItem{}, err)
	}
	out := make([]MenuItem, len(items))
	for i, item := range items {
		out[i] = MenuItem{Title: item.Title, Path: s.menuPath(item.Path)}
	}
	return result.Found(out)
}

func (s *Service) menuPath(u string) string {
	if s.storeDomain != "" {
		u = strings.Replace(u, s.storeDomain, "", 1)
	}
	u = strings.Replace(u, "/collections", "/search", 1)
	u = strings.Replace(u, "/pages", "", 1)
	return u
}

// Page returns a content page by handle.
func (s *Service) Page(ctx context.Context, handle string) result.Result[*Page] {
	p, err := s.source.Page(ctx, handle)
	switch {
	case errors.Is(err, ErrNotFound):
		return result.Empty[*Page](nil)
	case err != nil:
		s.lg.Warn("Fetch page failed", zap.String("page", handle), zap.Error(err))
		return result.Failed[*Page](nil, err)
	}
	return result.Found(p)
}

// Pages returns all content pages.
func (s *Service) Pages(ctx context.Context) result.Result[[]Page] {
	pages, err := s.source.Pages(ctx)
	if err != nil {
		s.lg.Warn("Fetch pages failed", zap.Error(err))
		return result.Failed([]Page{}, err)
	}
	if pages == nil {
		pages = []Page{}
	}
	return result.Found(pages)
}

// Vendors counts the products matching q per vendor, in first-seen order.
// Products without a vendor are not counted.
func (s *Service) Vendors(ctx context.Context, q ProductQuery) result.Result[[]VendorCount] {
	page := s.Products(ctx, q)
	if page.IsFailed() {
		return result.Failed([]VendorCount{}, page.Err)
	}
	return result.Found(countVendors(page.Value.Products))
}

// HighestPrice returns the highest variant price in the catalog, or nil when
// the catalog is empty.
func (s *Service) HighestPrice(ctx context.Context) result.Result[*Money] {
	m, err := s.source.HighestPrice(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		return result.Empty[*Money](nil)
	case err != nil:
		s.lg.Warn("Fetch highest price failed", zap.Error(err))
		return result.Failed[*Money](nil, err)
	}
	return result.Found(m)
}

func normalizePage(p *ProductPage) ProductPage {
	if p == nil {
		return EmptyProductPage()
	}
	out := *p
	if out.Products == nil {
		out.Products = []Product{}
	}
	return out
}

func countVendors(products []Product) []VendorCount {
	counts := make([]VendorCount, 0)
	index := make(map[string]int)
	for _, p := range products {
		if p.Vendor == "" {
			continue
		}
		if i, ok := index[p.Vendor]; ok {
			counts[i].ProductCount++
			continue
		}
		index[p.Vendor] = len(counts)
		counts = append(counts, VendorCount{Vendor: p.Vendor, ProductCount: 1})
	}
	return counts
}
