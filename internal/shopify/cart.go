package shopify

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/cart"
)

var _ cart.Platform = (*Carts)(nil)

// Carts performs cart operations through a Client.
type Carts struct {
	c *Client
}

// Carts returns the cart API of the client.
func (c *Client) Carts() *Carts {
	return &Carts{c: c}
}

// CartError is returned when the platform rejects a cart mutation for a
// reason other than stock or a missing cart.
type CartError struct {
	Operation string
	Messages  []string
}

func (e *CartError) Error() string {
	return "shopify " + e.Operation + ": " + strings.Join(e.Messages, "; ")
}

type cartPayload struct {
	Cart       *Cart       `json:"cart"`
	UserErrors []userError `json:"userErrors"`
}

// Create creates an empty cart.
func (a *Carts) Create(ctx context.Context) (*cart.Cart, error) {
	var data struct {
		CartCreate cartPayload `json:"cartCreate"`
	}
	if err := a.c.do(ctx, call{name: "createCart", query: createCartMutation}, &data); err != nil {
		return nil, errors.Wrap(err, "create cart")
	}
	p := data.CartCreate
	if p.Cart == nil {
		return nil, cartMutationError("cartCreate", p.UserErrors)
	}
	return ReshapeCart(p.Cart), nil
}

// Get returns a cart by id. Carts become null upstream once checked out.
func (a *Carts) Get(ctx context.Context, cartID string) (*cart.Cart, error) {
	var data struct {
		Cart *Cart `json:"cart"`
	}
	cl := call{
		name:      "getCart",
		query:     getCartQuery,
		variables: map[string]any{"cartId": cartID},
		tags:      []string{cart.Tag, cart.CartTag(cartID)},
		ttl:       a.c.cartTTL,
	}
	if err := a.c.do(ctx, cl, &data); err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if data.Cart == nil {
		return nil, cart.ErrCartNotFound
	}
	return ReshapeCart(data.Cart), nil
}

// AddLines adds lines to a cart.
func (a *Carts) AddLines(ctx context.Context, cartID string, lines []cart.LineInput) (*cart.Cart, error) {
	var data struct {
		CartLinesAdd cartPayload `json:"cartLinesAdd"`
	}
	vars := map[string]any{"cartId": cartID, "lines": lines}
	if err := a.c.do(ctx, call{name: "addToCart", query: addToCartMutation, variables: vars}, &data); err != nil {
		return nil, errors.Wrap(err, "add to cart")
	}
	p := data.CartLinesAdd
	if isCartMissing(p.UserErrors) {
		return nil, cart.ErrCartNotFound
	}
	if p.Cart == nil || isStockError(p.UserErrors) {
		return nil, cart.ErrOutOfStock
	}
	if len(p.UserErrors) > 0 {
		return nil, cartMutationError("cartLinesAdd", p.UserErrors)
	}
	return ReshapeCart(p.Cart), nil
}

// UpdateLines sets line quantities.
func (a *Carts) UpdateLines(ctx context.Context, cartID string, lines []cart.LineUpdate) (*cart.Cart, error) {
	var data struct {
		CartLinesUpdate cartPayload `json:"cartLinesUpdate"`
	}
	vars := map[string]any{"cartId": cartID, "lines": lines}
	if err := a.c.do(ctx, call{name: "editCartItems", query: editCartItemsMutation, variables: vars}, &data); err != nil {
		return nil, errors.Wrap(err, "update cart")
	}
	return mutationResult("cartLinesUpdate", data.CartLinesUpdate)
}

// RemoveLines removes lines from a cart.
func (a *Carts) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*cart.Cart, error) {
	var data struct {
		CartLinesRemove cartPayload `json:"cartLinesRemove"`
	}
	vars := map[string]any{"cartId": cartID, "lineIds": lineIDs}
	if err := a.c.do(ctx, call{name: "removeFromCart", query: removeFromCartMutation, variables: vars}, &data); err != nil {
		return nil, errors.Wrap(err, "remove from cart")
	}
	return mutationResult("cartLinesRemove", data.CartLinesRemove)
}

func mutationResult(op string, p cartPayload) (*cart.Cart, error) {
	switch {
	case isCartMissing(p.UserErrors):
		return nil, cart.ErrCartNotFound
	case len(p.UserErrors) > 0:
		return nil, cartMutationError(op, p.UserErrors)
	case p.Cart == nil:
		return nil, cart.ErrCartNotFound
	}
	return ReshapeCart(p.Cart), nil
}

func cartMutationError(op string, ues []userError) error {
	e := &CartError{Operation: op}
	for _, ue := range ues {
		e.Messages = append(e.Messages, ue.Message)
	}
	if len(e.Messages) == 0 {
		e.Messages = []string{"no cart returned"}
	}
	return e
}

func isCartMissing(ues []userError) bool {
	for _, ue := range ues {
		if strings.Contains(strings.ToLower(ue.Message), "cart does not exist") {
			return true
		}
	}
	return false
}

// stockCodes are the cart error codes reporting insufficient inventory.
var stockCodes = map[string]struct{}{
	"MERCHANDISE_NOT_ENOUGH_STOCK": {},
	"MERCHANDISE_OUT_OF_STOCK":     {},
}

// stockPhrases match stock errors of API versions whose codes are generic
// (INVALID or empty).
var stockPhrases = []string{
	"in stock",
	"out of stock",
	"not enough stock",
	"sold out",
	"inventory",
	"merchandise is not available",
	"merchandise is unavailable",
}

func isStockError(ues []userError) bool {
	for _, ue := range ues {
		if _, ok := stockCodes[ue.Code]; ok {
			return true
		}
	}
	for _, ue := range ues {
		msg := strings.ToLower(ue.Message)
		for _, phrase := range stockPhrases {
			if strings.Contains(msg, phrase) {
				return true
			}
		}
	}
	return false
}
