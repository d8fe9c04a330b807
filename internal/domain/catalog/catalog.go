package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by a Source when the requested resource does not exist.
var ErrNotFound = errors.New("catalog resource not found")

// Money is an amount in the platform's decimal string form.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Decimal parses Amount. Malformed amounts parse as zero.
func (m Money) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Image is a product image with display defaults already applied.
type Image struct {
	URL            string `json:"url"`
	AltText        string `json:"altText"`
	TransformedSrc string `json:"transformedSrc"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// SEO holds search-engine metadata.
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SelectedOption is one name/value pair of a variant configuration.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Option is a product-level option with its possible values.
type Option struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Price            Money            `json:"price"`
	CompareAtPrice   *Money           `json:"compareAtPrice,omitempty"`
}

// PriceRange bounds the variant prices of a product.
type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
	MaxVariantPrice Money `json:"maxVariantPrice"`
}

// CollectionRef names a collection a product belongs to.
type CollectionRef struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// Product is the flattened view model of a platform product.
type Product struct {
	ID                  string          `json:"id"`
	Handle              string          `json:"handle"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	DescriptionHTML     string          `json:"descriptionHtml"`
	Vendor              string          `json:"vendor"`
	AvailableForSale    bool            `json:"availableForSale"`
	Options             []Option        `json:"options"`
	PriceRange          PriceRange      `json:"priceRange"`
	CompareAtPriceRange PriceRange      `json:"compareAtPriceRange"`
	FeaturedImage       *Image          `json:"featuredImage,omitempty"`
	Images              []Image         `json:"images"`
	Variants            []Variant       `json:"variants"`
	Tags                []string        `json:"tags"`
	Collections         []CollectionRef `json:"collections"`
	SEO                 SEO             `json:"seo"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// HasTag reports whether the product carries tag.
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Collection is a named grouping of products.
type Collection struct {
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SEO         SEO       `json:"seo"`
	Path        string    `json:"path"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AllHandle is the handle of the synthetic collection covering the whole catalog.
const AllHandle = "all"

// AllCollection returns the synthetic collection representing the unfiltered catalog.
func AllCollection(now time.Time) Collection {
	return Collection{
		Handle:      AllHandle,
		Title:       "All",
		Description: "All products",
		SEO:         SEO{Title: "All", Description: "All products"},
		Path:        "/products",
		UpdatedAt:   now,
	}
}

// PageInfo describes the position of a page within a cursor-paginated listing.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	EndCursor       string `json:"endCursor"`
}

// ProductPage is one page of products.
type ProductPage struct {
	PageInfo PageInfo  `json:"pageInfo"`
	Products []Product `json:"products"`
}

// EmptyProductPage is the default page returned when a listing cannot be fetched.
func EmptyProductPage() ProductPage {
	return ProductPage{Products: []Product{}}
}

// MenuItem is a navigation entry.
type MenuItem struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Page is a content page managed on the platform.
type Page struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	BodySummary string    `json:"bodySummary"`
	SEO         SEO       `json:"seo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VendorCount is the number of listed products per vendor.
type VendorCount struct {
	Vendor       string `json:"vendor"`
	ProductCount int    `json:"productCount"`
}

// CategoryCount is the number of listed products per collection title.
type CategoryCount struct {
	Category     string `json:"category"`
	ProductCount int    `json:"productCount"`
}

// ProductQuery selects a page of products across the whole catalog.
type ProductQuery struct {
	Query   string
	SortKey string
	Reverse bool
	Cursor  string
}

// CollectionQuery selects products of a single collection.
type CollectionQuery struct {
	Handle  string
	SortKey string
	Reverse bool
}

// Source reads catalog data from the commerce platform. Products returned by
// list operations already exclude hidden products.
type Source interface {
	Products(ctx context.Context, q ProductQuery) (*ProductPage, error)
	// CollectionProducts returns ErrNotFound when the collection does not exist.
	CollectionProducts(ctx context.Context, q CollectionQuery) (*ProductPage, error)
	Collections(ctx context.Context) ([]Collection, error)
	// Collection returns ErrNotFound when the collection does not exist.
	Collection(ctx context.Context, handle string) (*Collection, error)
	// Product returns ErrNotFound when the product does not exist. Hidden
	// products are returned.
	Product(ctx context.Context, handle string) (*Product, error)
	Recommendations(ctx context.Context, productID string) ([]Product, error)
	Menu(ctx context.Context, handle string) ([]MenuItem, error)
	// Page returns ErrNotFound when the page does not exist.
	Page(ctx context.Context, handle string) (*Page, error)
	Pages(ctx context.Context) ([]Page, error)
	// HighestPrice returns ErrNotFound when the catalog is empty.
	HighestPrice(ctx context.Context) (*Money, error)
}
