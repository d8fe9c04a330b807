package shopify

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/cache"
	"github.com/xenking/storefront/internal/domain/catalog"
)

var _ catalog.Source = (*Client)(nil)

func (c *Client) catalogCall(name, query string, vars map[string]any, tags ...string) call {
	return call{name: name, query: query, variables: vars, tags: tags, ttl: c.catalogTTL}
}

// Products returns a page of visible products matching q.
func (c *Client) Products(ctx context.Context, q catalog.ProductQuery) (*catalog.ProductPage, error) {
	vars := map[string]any{"first": pageSize}
	if q.Query != "" {
		vars["query"] = q.Query
	}
	if q.SortKey != "" {
		vars["sortKey"] = q.SortKey
	}
	if q.Reverse {
		vars["reverse"] = true
	}
	if q.Cursor != "" {
		vars["cursor"] = q.Cursor
	}

	var data struct {
		Products Connection[*Product] `json:"products"`
	}
	if err := c.do(ctx, c.catalogCall("getProducts", getProductsQuery, vars, cache.TagProducts), &data); err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	return &catalog.ProductPage{
		PageInfo: data.Products.PageInfo,
		Products: c.normalizer.ReshapeProducts(Flatten(data.Products)),
	}, nil
}

// CollectionProducts returns the visible products of a collection.
func (c *Client) CollectionProducts(ctx context.Context, q catalog.CollectionQuery) (*catalog.ProductPage, error) {
	vars := map[string]any{"handle": q.Handle, "first": pageSize}
	if q.SortKey != "" {
		vars["sortKey"] = q.SortKey
	}
	if q.Reverse {
		vars["reverse"] = true
	}

	var data struct {
		Collection *struct {
			Products Connection[*Product] `json:"products"`
		} `json:"collection"`
	}
	cl := c.catalogCall("getCollectionProducts", getCollectionProductsQuery, vars, cache.TagCollections, cache.TagProducts)
	if err := c.do(ctx, cl, &data); err != nil {
		return nil, errors.Wrap(err, "get collection products")
	}
	if data.Collection == nil {
		return nil, catalog.ErrNotFound
	}
	return &catalog.ProductPage{
		PageInfo: data.Collection.Products.PageInfo,
		Products: c.normalizer.ReshapeProducts(Flatten(data.Collection.Products)),
	}, nil
}

// Collections returns every collection.
func (c *Client) Collections(ctx context.Context) ([]catalog.Collection, error) {
	var data struct {
		Collections Connection[*Collection] `json:"collections"`
	}
	if err := c.do(ctx, c.catalogCall("getCollections", getCollectionsQuery, nil, cache.TagCollections), &data); err != nil {
		return nil, errors.Wrap(err, "get collections")
	}
	return ReshapeCollections(Flatten(data.Collections)), nil
}

// Collection returns a collection by handle.
func (c *Client) Collection(ctx context.Context, handle string) (*catalog.Collection, error) {
	var data struct {
		Collection *Collection `json:"collection"`
	}
	vars := map[string]any{"handle": handle}
	if err := c.do(ctx, c.catalogCall("getCollection", getCollectionQuery, vars, cache.TagCollections), &data); err != nil {
		return nil, errors.Wrap(err, "get collection")
	}
	if data.Collection == nil {
		return nil, catalog.ErrNotFound
	}
	return ReshapeCollection(data.Collection), nil
}

// Product returns a product by handle, hidden or not.
func (c *Client) Product(ctx context.Context, handle string) (*catalog.Product, error) {
	var data struct {
		Product *Product `json:"product"`
	}
	vars := map[string]any{"handle": handle}
	if err := c.do(ctx, c.catalogCall("getProduct", getProductQuery, vars, cache.TagProducts), &data); err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	p := c.normalizer.ReshapeProduct(data.Product, false)
	if p == nil {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

// Recommendations returns visible products related to productID.
func (c *Client) Recommendations(ctx context.Context, productID string) ([]catalog.Product, error) {
	var data struct {
		ProductRecommendations []*Product `json:"productRecommendations"`
	}
	vars := map[string]any{"productId": productID}
	cl := c.catalogCall("getProductRecommendations", getProductRecommendationsQuery, vars, cache.TagProducts)
	if err := c.do(ctx, cl, &data); err != nil {
		return nil, errors.Wrap(err, "get product recommendations")
	}
	return c.normalizer.ReshapeProducts(data.ProductRecommendations), nil
}

// Menu returns the raw items of a menu. URLs are rewritten by the catalog
// service.
func (c *Client) Menu(ctx context.Context, handle string) ([]catalog.MenuItem, error) {
	var data struct {
		Menu *menu `json:"menu"`
	}
	vars := map[string]any{"handle": handle}
	if err := c.do(ctx, c.catalogCall("getMenu", getMenuQuery, vars, cache.TagCollections), &data); err != nil {
		return nil, errors.Wrap(err, "get menu")
	}
	if data.Menu == nil {
		return []catalog.MenuItem{}, nil
	}
	items := make([]catalog.MenuItem, len(data.Menu.Items))
	for i, item := range data.Menu.Items {
		items[i] = catalog.MenuItem{Title: item.Title, Path: item.URL}
	}
	return items, nil
}

// Page returns a content page by handle.
func (c *Client) Page(ctx context.Context, handle string) (*catalog.Page, error) {
	var data struct {
		PageByHandle *catalog.Page `json:"pageByHandle"`
	}
	if err := c.do(ctx, call{name: "getPage", query: getPageQuery, variables: map[string]any{"handle": handle}}, &data); err != nil {
		return nil, errors.Wrap(err, "get page")
	}
	if data.PageByHandle == nil {
		return nil, catalog.ErrNotFound
	}
	return data.PageByHandle, nil
}

// Pages returns every content page.
func (c *Client) Pages(ctx context.Context) ([]catalog.Page, error) {
	var data struct {
		Pages Connection[catalog.Page] `json:"pages"`
	}
	if err := c.do(ctx, call{name: "getPages", query: getPagesQuery}, &data); err != nil {
		return nil, errors.Wrap(err, "get pages")
	}
	return Flatten(data.Pages), nil
}

// HighestPrice returns the price of the most expensive variant.
func (c *Client) HighestPrice(ctx context.Context) (*catalog.Money, error) {
	var data struct {
		Products Connection[struct {
			Variants Connection[struct {
				Price catalog.Money `json:"price"`
			}] `json:"variants"`
		}] `json:"products"`
	}
	cl := c.catalogCall("getHighestProductPrice", getHighestProductPriceQuery, nil, cache.TagProducts)
	if err := c.do(ctx, cl, &data); err != nil {
		return nil, errors.Wrap(err, "get highest product price")
	}
	if len(data.Products.Edges) == 0 || len(data.Products.Edges[0].Node.Variants.Edges) == 0 {
		return nil, catalog.ErrNotFound
	}
	price := data.Products.Edges[0].Node.Variants.Edges[0].Node.Price
	return &price, nil
}
