package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/result"
)

func listingQuery(c *gin.Context) catalog.ListingQuery {
	return catalog.ListingQuery{
		Search:   c.Query("q"),
		Sort:     c.Query("sort"),
		Cursor:   c.Query("cursor"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		Category: c.Query("c"),
		Tag:      c.Query("t"),
	}
}

// Listing serves the product listing with its filter facets.
func (h *Handler) Listing(c *gin.Context) {
	list(c, h.catalog.Listing(c.Request.Context(), listingQuery(c)))
}

// Product serves a single product, hidden ones included.
func (h *Handler) Product(c *gin.Context) {
	single(c, h.catalog.Product(c.Request.Context(), c.Param("handle")), "Product")
}

// Recommendations serves the products related to a product handle.
func (h *Handler) Recommendations(c *gin.Context) {
	ctx := c.Request.Context()
	p := h.catalog.Product(ctx, c.Param("handle"))
	switch {
	case p.Status == result.StatusEmpty:
		errorJSON(c, http.StatusNotFound, "Product not found")
		return
	case p.IsFailed():
		list(c, result.Failed([]catalog.Product{}, p.Err))
		return
	}
	list(c, h.catalog.Recommendations(ctx, p.Value.ID))
}

// Collections serves all collections preceded by All.
func (h *Handler) Collections(c *gin.Context) {
	list(c, h.catalog.Collections(c.Request.Context()))
}

// Collection serves a single collection.
func (h *Handler) Collection(c *gin.Context) {
	single(c, h.catalog.Collection(c.Request.Context(), c.Param("handle")), "Collection")
}

// CollectionProducts serves the products of a collection sorted by the
// sort slug.
func (h *Handler) CollectionProducts(c *gin.Context) {
	sort := catalog.SortBySlug(c.Query("sort"))
	r := h.catalog.CollectionProducts(c.Request.Context(), catalog.CollectionQuery{
		Handle:  c.Param("handle"),
		SortKey: sort.SortKey,
		Reverse: sort.Reverse,
	})
	if r.Status == result.StatusEmpty {
		errorJSON(c, http.StatusNotFound, "Collection not found")
		return
	}
	list(c, r)
}

// Vendors serves product counts per vendor for the listing filters.
func (h *Handler) Vendors(c *gin.Context) {
	q := listingQuery(c)
	list(c, h.catalog.Vendors(c.Request.Context(), catalog.ProductQuery{Query: q.SearchQuery()}))
}

// HighestPrice serves the highest variant price, used as the price filter
// upper bound.
func (h *Handler) HighestPrice(c *gin.Context) {
	single(c, h.catalog.HighestPrice(c.Request.Context()), "Price")
}

// Menu serves a navigation menu.
func (h *Handler) Menu(c *gin.Context) {
	list(c, h.catalog.Menu(c.Request.Context(), c.Param("handle")))
}

// Pages serves all content pages.
func (h *Handler) Pages(c *gin.Context) {
	list(c, h.catalog.Pages(c.Request.Context()))
}

// Page serves a content page.
func (h *Handler) Page(c *gin.Context) {
	single(c, h.catalog.Page(c.Request.Context(), c.Param("handle")), "Page")
}
