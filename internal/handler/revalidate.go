package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/cache"
	"github.com/xenking/storefront/internal/domain/cart"
)

// HeaderTopic names the webhook event, e.g. products/update.
const HeaderTopic = "X-Shopify-Topic"

type revalidateRequest struct {
	Tag string `json:"tag"`
}

type revalidateResponse struct {
	Status      int   `json:"status,omitempty"`
	Revalidated bool  `json:"revalidated"`
	Now         int64 `json:"now,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Revalidate drops the cached reads of one tag.
func (h *Handler) Revalidate(c *gin.Context) {
	var req revalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tag == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: "Missing tag parameter"})
		return
	}
	if err := h.cache.Invalidate(c.Request.Context(), req.Tag); err != nil {
		zctx.From(c.Request.Context()).Error("Revalidate failed", zap.String("tag", req.Tag), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, messageResponse{Message: "Error revalidating"})
		return
	}
	c.JSON(http.StatusOK, revalidateResponse{Revalidated: true, Now: h.now().UnixMilli()})
}

// webhookTag maps a webhook topic to the cache tag it invalidates. Checkout
// and order events drop every cached cart: a completed checkout consumes the
// cart upstream.
func webhookTag(topic string) string {
	switch {
	case strings.HasPrefix(topic, "products/"):
		return cache.TagProducts
	case strings.HasPrefix(topic, "collections/"):
		return cache.TagCollections
	case strings.HasPrefix(topic, "checkouts/"), topic == "orders/create", topic == "orders/paid":
		return cart.Tag
	default:
		return ""
	}
}

// Webhook handles platform catalog webhooks. It always answers 200 since the
// platform retries any other status.
func (h *Handler) Webhook(c *gin.Context) {
	lg := zctx.From(c.Request.Context())
	ignored := revalidateResponse{Status: http.StatusOK}

	secret := c.Query("secret")
	if h.cfg.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.WebhookSecret)) != 1 {
		lg.Error("Invalid revalidation secret")
		c.JSON(http.StatusOK, ignored)
		return
	}
	topic := c.GetHeader(HeaderTopic)
	tag := webhookTag(topic)
	if tag == "" {
		c.JSON(http.StatusOK, ignored)
		return
	}
	if err := h.cache.Invalidate(c.Request.Context(), tag); err != nil {
		lg.Error("Webhook revalidate failed", zap.String("topic", topic), zap.Error(err))
		c.JSON(http.StatusOK, ignored)
		return
	}
	lg.Info("Revalidated", zap.String("topic", topic), zap.String("tag", tag))
	c.JSON(http.StatusOK, revalidateResponse{Status: http.StatusOK, Revalidated: true, Now: h.now().UnixMilli()})
}
