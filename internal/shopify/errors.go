package shopify

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// ErrNotConfigured is returned without a round trip when the store domain or
// the access token is missing.
var ErrNotConfigured = errors.New("shopify credentials not configured")

// StatusError is returned when the platform answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("shopify: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("shopify: http status %d: %s", e.StatusCode, e.Body)
}

// GraphQLError is one entry of the response errors array.
type GraphQLError struct {
	Message string
	Code    string
}

// Errors is returned when the response carries a non-empty errors array.
type Errors []GraphQLError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		if ge.Code != "" {
			msgs = append(msgs, ge.Code+": "+ge.Message)
			continue
		}
		msgs = append(msgs, ge.Message)
	}
	return "shopify graphql: " + strings.Join(msgs, "; ")
}
