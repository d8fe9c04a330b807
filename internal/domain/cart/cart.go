package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/catalog"
)

// Sentinel errors for cart operations. Their messages are shown to shoppers.
var (
	ErrMissingVariant = errors.New("missing product variant ID")
	ErrMissingCart    = errors.New("missing cart ID")
	ErrMissingLine    = errors.New("missing cart line ID")
	ErrOutOfStock     = errors.New("this item is currently out of stock")
	// ErrCartNotFound is returned when the session cart no longer exists
	// upstream, typically after a completed checkout.
	ErrCartNotFound = errors.New("cart not found")
)

// InvalidQuantityError indicates a negative line quantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must not be negative, got %d", e.Quantity)
}

// Cost aggregates the upstream-computed amounts of a cart.
type Cost struct {
	Subtotal catalog.Money `json:"subtotalAmount"`
	Total    catalog.Money `json:"totalAmount"`
	TotalTax catalog.Money `json:"totalTaxAmount"`
}

// Cart is a server-side cart owned by the commerce platform.
type Cart struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          Cost   `json:"cost"`
	Lines         []Line `json:"lines"`
}

// Quantity returns the sum of line quantities.
func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Line finds a line by id.
func (c *Cart) Line(id string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

// LineCost holds the upstream-computed amount of a line.
type LineCost struct {
	TotalAmount catalog.Money `json:"totalAmount"`
}

// Line is one quantity-bearing entry referencing a variant.
type Line struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Cost        LineCost    `json:"cost"`
	Merchandise Merchandise `json:"merchandise"`
}

// Merchandise is the denormalized variant snapshot rendered with a line.
type Merchandise struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	SelectedOptions []catalog.SelectedOption `json:"selectedOptions"`
	Price           catalog.Money            `json:"price"`
	Product         ProductSnapshot          `json:"product"`
}

// ProductSnapshot is the subset of product data needed to render a line.
type ProductSnapshot struct {
	ID            string         `json:"id"`
	Handle        string         `json:"handle"`
	Title         string         `json:"title"`
	FeaturedImage *catalog.Image `json:"featuredImage,omitempty"`
}

// LineInput adds a variant to a cart.
type LineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// LineUpdate sets the quantity of an existing line.
type LineUpdate struct {
	ID            string `json:"id"`
	MerchandiseID string `json:"merchandiseId,omitempty"`
	Quantity      int    `json:"quantity"`
}

// Platform performs cart operations on the commerce platform. Every method is
// a single round trip; the platform recomputes costs on each mutation.
type Platform interface {
	Create(ctx context.Context) (*Cart, error)
	// Get returns ErrCartNotFound when the cart no longer exists.
	Get(ctx context.Context, cartID string) (*Cart, error)
	// AddLines returns ErrOutOfStock when the platform refuses the lines.
	AddLines(ctx context.Context, cartID string, lines []LineInput) (*Cart, error)
	UpdateLines(ctx context.Context, cartID string, lines []LineUpdate) (*Cart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*Cart, error)
}

// Invalidator drops cached reads associated with tags.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}
