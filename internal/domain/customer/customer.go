package customer

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Error codes produced locally rather than by the platform.
const (
	CodeNoToken       = "NO_TOKEN"
	CodeInternalError = "INTERNAL_ERROR"
)

var (
	// ErrUnauthenticated is returned when no access token is presented.
	ErrUnauthenticated = errors.New("customer access token required")
	// ErrNotFound is returned when the platform knows no customer for a token.
	ErrNotFound = errors.New("customer not found")
)

// Customer is a storefront account as exposed by the platform.
type Customer struct {
	ID               string `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
}

// Input carries sign-up and login credentials.
type Input struct {
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Phone            string `json:"phone,omitempty"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
}

// UserError is a validation error reported by the platform.
type UserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrors is returned when the platform rejects customer input. The
// errors are forwarded to the caller as received.
type UserErrors []UserError

func (e UserErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ue := range e {
		msgs[i] = ue.Message
	}
	return "customer user errors: " + strings.Join(msgs, "; ")
}

// Account is an authenticated customer with its access token.
type Account struct {
	Customer
	Token string `json:"token"`
}

// Platform performs customer operations on the commerce platform. Validation
// failures are returned in the []UserError result, not as error.
type Platform interface {
	Create(ctx context.Context, in Input) (*Customer, []UserError, error)
	AccessToken(ctx context.Context, email, password string) (string, []UserError, error)
	// Details returns ErrNotFound when the token is unknown or expired.
	Details(ctx context.Context, token string) (*Customer, error)
}
