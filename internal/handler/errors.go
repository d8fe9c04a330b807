package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/storefront/internal/domain/result"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// errorBody is the body of every non-customer error response.
type errorBody struct {
	Error string `json:"error"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}

func degraded(c *gin.Context) {
	c.Header(httpmiddleware.HeaderDegraded, "1")
}

// list answers 200 with the value, marking defaults served after an
// upstream failure.
func list[T any](c *gin.Context, r result.Result[T]) {
	if r.IsFailed() {
		degraded(c)
	}
	c.JSON(http.StatusOK, r.Value)
}

// single answers 404 for a missing resource and 503 when upstream failed.
func single[T any](c *gin.Context, r result.Result[T], what string) {
	switch r.Status {
	case result.StatusEmpty:
		errorJSON(c, http.StatusNotFound, what+" not found")
	case result.StatusFailed:
		degraded(c)
		errorJSON(c, http.StatusServiceUnavailable, "Storefront is temporarily unavailable")
	default:
		c.JSON(http.StatusOK, r.Value)
	}
}
