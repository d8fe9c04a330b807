package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/result"
)

type cartResponse struct {
	Cart *cart.Cart `json:"cart"`
}

type mutationResponse struct {
	Message string     `json:"message,omitempty"`
	Cart    *cart.Cart `json:"cart"`
}

type addItemRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// session reads the cart session from the cartId cookie. gin unescapes the
// cookie value.
func session(c *gin.Context) cart.Session {
	id, err := c.Cookie(cart.CookieName)
	if err != nil {
		return cart.Session{}
	}
	return cart.Session{CartID: id}
}

// persist rewrites or clears the cart cookie when the session changed.
func (h *Handler) persist(c *gin.Context, prev, next cart.Session) {
	switch {
	case next == prev:
	case next.HasCart():
		h.setCookie(c, cart.CookieName, next.CartID, 0)
	default:
		h.clearCookie(c, cart.CookieName)
	}
}

// Cart serves the session cart, or a null cart when there is none.
func (h *Handler) Cart(c *gin.Context) {
	prev := session(c)
	r, next := h.carts.Current(c.Request.Context(), prev)
	h.persist(c, prev, next)
	if r.Status == result.StatusFailed {
		degraded(c)
	}
	c.JSON(http.StatusOK, cartResponse{Cart: r.Value})
}

// AddCartItem adds a variant to the session cart, creating the cart on
// demand.
func (h *Handler) AddCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	prev := session(c)
	out, err := h.carts.AddItem(c.Request.Context(), prev, req.VariantID, req.Quantity)
	if out != nil {
		h.persist(c, prev, out.Session)
	}
	if err != nil {
		h.cartError(c, prev, err, "Error adding item to cart")
		return
	}
	c.JSON(http.StatusOK, mutationResponse{Message: "Item added to cart successfully", Cart: out.Cart})
}

// UpdateCartItem sets the quantity of a line; zero removes it.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	prev := session(c)
	out, err := h.carts.UpdateItemQuantity(c.Request.Context(), prev, c.Param("lineId"), req.VariantID, req.Quantity)
	if err != nil {
		h.cartError(c, prev, err, "Error updating item quantity")
		return
	}
	c.JSON(http.StatusOK, mutationResponse{Cart: out.Cart})
}

// RemoveCartItem removes a line from the session cart.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	prev := session(c)
	out, err := h.carts.RemoveItem(c.Request.Context(), prev, c.Param("lineId"))
	if err != nil {
		h.cartError(c, prev, err, "Error removing item from cart")
		return
	}
	c.JSON(http.StatusOK, mutationResponse{Cart: out.Cart})
}

// cartError maps cart errors to responses. Unexpected errors answer 502
// with fallback.
func (h *Handler) cartError(c *gin.Context, s cart.Session, err error, fallback string) {
	var qtyErr *cart.InvalidQuantityError
	switch {
	case errors.Is(err, cart.ErrMissingVariant):
		errorJSON(c, http.StatusBadRequest, "Missing product variant ID")
	case errors.Is(err, cart.ErrMissingCart):
		errorJSON(c, http.StatusBadRequest, "Missing cart ID")
	case errors.Is(err, cart.ErrMissingLine):
		errorJSON(c, http.StatusBadRequest, "Missing cart line ID")
	case errors.As(err, &qtyErr):
		errorJSON(c, http.StatusBadRequest, qtyErr.Error())
	case errors.Is(err, cart.ErrOutOfStock):
		errorJSON(c, http.StatusConflict, "This item is currently out of stock")
	case errors.Is(err, cart.ErrCartNotFound):
		h.clearCookie(c, cart.CookieName)
		errorJSON(c, http.StatusNotFound, "Cart not found")
	default:
		zctx.From(c.Request.Context()).Error("Cart operation failed",
			zap.String("cart_id", s.CartID),
			zap.Error(err),
		)
		errorJSON(c, http.StatusBadGateway, fallback)
	}
}
