package catalog

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/result"
)

// ListingQuery holds the product listing filters as received from the URL.
type ListingQuery struct {
	Search   string
	Sort     string
	Cursor   string
	MinPrice string
	MaxPrice string
	Category string
	Tag      string
}

// Filtered reports whether any filter beyond sorting and paging is set.
func (q ListingQuery) Filtered() bool {
	return q.Search != "" || q.MinPrice != "" || q.MaxPrice != "" || q.Category != "" || q.Tag != ""
}

// SearchQuery builds the platform search expression for the filters.
func (q ListingQuery) SearchQuery() string {
	var parts []string
	if q.MaxPrice != "" {
		parts = append(parts, "variants.price:<="+q.MaxPrice)
	}
	if q.MinPrice != "" {
		parts = append(parts, "variants.price:>="+q.MinPrice)
	}
	if q.Search != "" {
		parts = append(parts, "title:*"+q.Search+"*")
	}
	if q.Tag != "" {
		parts = append(parts, "tag:"+q.Tag)
	}
	return strings.Join(parts, " ")
}

// Listing is everything the product listing view needs in one response.
type Listing struct {
	ProductPage
	Sort         SortOption      `json:"sort"`
	Collections  []Collection    `json:"collections"`
	Tags         []string        `json:"tags"`
	Categories   []CategoryCount `json:"categoriesWithCounts"`
	HighestPrice *Money          `json:"highestPrice"`
}

// Listing fetches the products page together with its filter facets. The
// independent reads run concurrently. The result fails only when the
// products themselves could not be fetched, which also cancels the facet
// reads; facet failures degrade to their defaults.
func (s *Service) Listing(ctx context.Context, q ListingQuery) result.Result[Listing] {
	sort := SortBySlug(q.Sort)

	var (
		products    result.Result[ProductPage]
		collections result.Result[[]Collection]
		highest     result.Result[*Money]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		switch {
		case q.Filtered() && q.Category != "" && q.Category != AllHandle:
			products = s.CollectionProducts(gctx, CollectionQuery{
				Handle:  q.Category,
				SortKey: sort.SortKey,
				Reverse: sort.Reverse,
			})
		default:
			products = s.Products(gctx, ProductQuery{
				Query:   q.SearchQuery(),
				SortKey: sort.SortKey,
				Reverse: sort.Reverse,
				Cursor:  q.Cursor,
			})
		}
		return products.Err
	})
	g.Go(func() error {
		collections = s.Collections(gctx)
		return nil
	})
	g.Go(func() error {
		highest = s.HighestPrice(gctx)
		return nil
	})
	// The products failure is carried by products.
	_ = g.Wait()

	listing := Listing{
		ProductPage:  products.Value,
		Sort:         sort,
		Collections:  collections.Value,
		Tags:         uniqueTags(products.Value.Products),
		Categories:   []CategoryCount{},
		HighestPrice: highest.Value,
	}
	if q.Filtered() {
		listing.Categories = countCategories(products.Value.Products)
	}

	if products.IsFailed() {
		return result.Failed(listing, products.Err)
	}
	return result.Found(listing)
}

func uniqueTags(products []Product) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, p := range products {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// countCategories counts products per collection title, in first-seen order.
func countCategories(products []Product) []CategoryCount {
	counts := make([]CategoryCount, 0)
	index := make(map[string]int)
	for _, p := range products {
		// A product listed twice in the same collection counts once.
		counted := make(map[string]struct{}, len(p.Collections))
		for _, c := range p.Collections {
			if _, ok := counted[c.Title]; ok {
				continue
			}
			counted[c.Title] = struct{}{}
			if i, ok := index[c.Title]; ok {
				counts[i].ProductCount++
				continue
			}
			index[c.Title] = len(counts)
			counts = append(counts, CategoryCount{Category: c.Title, ProductCount: 1})
		}
	}
	return counts
}
