// Package handler exposes the storefront JSON API over gin.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/customer"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// TokenCookie holds the customer access token.
const TokenCookie = "token"

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// CookieSecure marks the cart and token cookies Secure.
	CookieSecure bool
	// CookieDomain scopes the cookies; empty means the request host.
	CookieDomain string
	// WebhookSecret authenticates platform webhooks. Webhooks are ignored
	// when it is empty.
	WebhookSecret string
}

// Invalidator drops cached platform reads by tag.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// Handler serves the storefront API, delegating to the domain services.
type Handler struct {
	catalog   *catalog.Service
	carts     *cart.Manager
	customers *customer.Service
	cache     Invalidator
	cfg       HandlerConfig
	now       func() time.Time
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	catalogSvc *catalog.Service,
	carts *cart.Manager,
	customers *customer.Service,
	cache Invalidator,
) *Handler {
	return &Handler{
		catalog:   catalogSvc,
		carts:     carts,
		customers: customers,
		cache:     cache,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Register mounts every API route on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api", tagRoute)

	api.GET("/products", h.Listing)
	api.GET("/products/:handle", h.Product)
	api.GET("/products/:handle/recommendations", h.Recommendations)
	api.GET("/collections", h.Collections)
	api.GET("/collections/:handle", h.Collection)
	api.GET("/collections/:handle/products", h.CollectionProducts)
	api.GET("/vendors", h.Vendors)
	api.GET("/price/highest", h.HighestPrice)
	api.GET("/menus/:handle", h.Menu)
	api.GET("/pages", h.Pages)
	api.GET("/pages/:handle", h.Page)

	api.GET("/cart", h.Cart)
	api.POST("/cart/items", h.AddCartItem)
	api.PATCH("/cart/items/:lineId", h.UpdateCartItem)
	api.DELETE("/cart/items/:lineId", h.RemoveCartItem)

	api.POST("/customer/sign-up", h.SignUp)
	api.POST("/customer/login", h.Login)
	api.GET("/customer/me", h.Me)

	api.POST("/revalidate", h.Revalidate)
	api.POST("/revalidate/webhook", h.Webhook)
}

// NewEngine returns a gin engine serving the API. Recovery, logging and
// instrumentation are applied by the surrounding net/http middleware.
func NewEngine(h *Handler) *gin.Engine {
	e := gin.New()
	e.HandleMethodNotAllowed = true
	e.NoRoute(func(c *gin.Context) {
		errorJSON(c, http.StatusNotFound, "Not found")
	})
	e.NoMethod(func(c *gin.Context) {
		errorJSON(c, http.StatusMethodNotAllowed, "Method not allowed")
	})
	h.Register(e)
	return e
}

// tagRoute reports the matched route to the access log and telemetry.
func tagRoute(c *gin.Context) {
	httpmiddleware.TagRoute(c.Request.Context(), c.Request.Method, c.FullPath())
	c.Next()
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}

func (h *Handler) clearCookie(c *gin.Context, name string) {
	h.setCookie(c, name, "", -1)
}
