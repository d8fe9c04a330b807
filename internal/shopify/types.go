package shopify

import (
	"time"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/customer"
)

// Edge wraps one node of a Connection.
type Edge[T any] struct {
	Node T `json:"node"`
}

// Connection is the platform's cursor-paginated list wrapper.
type Connection[T any] struct {
	Edges    []Edge[T]        `json:"edges"`
	PageInfo catalog.PageInfo `json:"pageInfo"`
}

// Image is an image as returned by the platform. URLs may be
// protocol-relative.
type Image struct {
	URL            string `json:"url"`
	AltText        string `json:"altText"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	TransformedSrc string `json:"transformedSrc"`
}

// Product is a product as returned by the platform.
type Product struct {
	ID                  string                            `json:"id"`
	Handle              string                            `json:"handle"`
	Title               string                            `json:"title"`
	Description         string                            `json:"description"`
	DescriptionHTML     string                            `json:"descriptionHtml"`
	Vendor              string                            `json:"vendor"`
	AvailableForSale    bool                              `json:"availableForSale"`
	Options             []catalog.Option                  `json:"options"`
	PriceRange          catalog.PriceRange                `json:"priceRange"`
	CompareAtPriceRange catalog.PriceRange                `json:"compareAtPriceRange"`
	FeaturedImage       *Image                            `json:"featuredImage"`
	Images              Connection[Image]                 `json:"images"`
	Variants            Connection[catalog.Variant]       `json:"variants"`
	Collections         Connection[catalog.CollectionRef] `json:"collections"`
	Tags                []string                          `json:"tags"`
	SEO                 catalog.SEO                       `json:"seo"`
	UpdatedAt           time.Time                         `json:"updatedAt"`
}

// Collection is a collection as returned by the platform.
type Collection struct {
	Handle      string      `json:"handle"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	SEO         catalog.SEO `json:"seo"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CartCost is the cost block of a platform cart. The tax amount is absent on
// carts the platform has not taxed yet.
type CartCost struct {
	SubtotalAmount catalog.Money  `json:"subtotalAmount"`
	TotalAmount    catalog.Money  `json:"totalAmount"`
	TotalTaxAmount *catalog.Money `json:"totalTaxAmount"`
}

// Cart is a cart as returned by the platform.
type Cart struct {
	ID            string                `json:"id"`
	CheckoutURL   string                `json:"checkoutUrl"`
	TotalQuantity int                   `json:"totalQuantity"`
	Cost          CartCost              `json:"cost"`
	Lines         Connection[cart.Line] `json:"lines"`
}

type menu struct {
	Items []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"items"`
}

// userError is the platform's cart or customer user error.
type userError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func toCustomerErrors(in []userError) []customer.UserError {
	if len(in) == 0 {
		return nil
	}
	out := make([]customer.UserError, len(in))
	for i, ue := range in {
		field := ue.Field
		if field == nil {
			field = []string{}
		}
		out[i] = customer.UserError{Code: ue.Code, Field: field, Message: ue.Message}
	}
	return out
}
