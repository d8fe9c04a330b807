package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/customer"
)

// CodeInvalidInput marks a request body rejected before reaching the
// platform.
const CodeInvalidInput = "INVALID_INPUT"

type customerErrors struct {
	Errors []customer.UserError `json:"errors"`
}

type signUpRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	Phone            string `json:"phone"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func customerError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, customerErrors{Errors: []customer.UserError{
		{Code: code, Field: []string{}, Message: msg},
	}})
}

// SignUp creates a customer and logs it in.
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customerError(c, http.StatusBadRequest, CodeInvalidInput, "Email and password are required")
		return
	}
	acc, err := h.customers.SignUp(c.Request.Context(), customer.Input{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Password:         req.Password,
		Phone:            req.Phone,
		AcceptsMarketing: req.AcceptsMarketing,
	})
	h.account(c, acc, err)
}

// Login exchanges credentials for an access token and the customer details.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customerError(c, http.StatusBadRequest, CodeInvalidInput, "Email and password are required")
		return
	}
	acc, err := h.customers.Login(c.Request.Context(), req.Email, req.Password)
	h.account(c, acc, err)
}

func (h *Handler) account(c *gin.Context, acc *customer.Account, err error) {
	var userErrs customer.UserErrors
	switch {
	case errors.As(err, &userErrs):
		c.AbortWithStatusJSON(http.StatusBadRequest, customerErrors{Errors: userErrs})
		return
	case err != nil:
		zctx.From(c.Request.Context()).Error("Customer request failed", zap.Error(err))
		customerError(c, http.StatusInternalServerError, customer.CodeInternalError, "Internal server error")
		return
	}
	h.setCookie(c, TokenCookie, acc.Token, 0)
	c.JSON(http.StatusOK, acc)
}

// Me serves the customer identified by the token cookie.
func (h *Handler) Me(c *gin.Context) {
	token, _ := c.Cookie(TokenCookie)
	cust, err := h.customers.Details(c.Request.Context(), token)
	switch {
	case errors.Is(err, customer.ErrUnauthenticated):
		customerError(c, http.StatusUnauthorized, customer.CodeNoToken, "Not logged in")
	case errors.Is(err, customer.ErrNotFound):
		h.clearCookie(c, TokenCookie)
		customerError(c, http.StatusUnauthorized, customer.CodeNoToken, "Session expired")
	case err != nil:
		zctx.From(c.Request.Context()).Error("Fetch customer failed", zap.Error(err))
		customerError(c, http.StatusInternalServerError, customer.CodeInternalError, "Internal server error")
	default:
		c.JSON(http.StatusOK, cust)
	}
}
