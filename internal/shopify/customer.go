package shopify

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/customer"
)

var _ customer.Platform = (*Customers)(nil)

// Customers performs customer operations through a Client.
type Customers struct {
	c *Client
}

// Customers returns the customer API of the client.
func (c *Client) Customers() *Customers {
	return &Customers{c: c}
}

type customerNode struct {
	ID               string  `json:"id"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone"`
	AcceptsMarketing bool    `json:"acceptsMarketing"`
}

func (n *customerNode) customer() *customer.Customer {
	if n == nil {
		return nil
	}
	c := &customer.Customer{
		ID:               n.ID,
		FirstName:        n.FirstName,
		LastName:         n.LastName,
		Email:            n.Email,
		AcceptsMarketing: n.AcceptsMarketing,
	}
	if n.Phone != nil {
		c.Phone = *n.Phone
	}
	return c
}

// Create registers a customer.
func (a *Customers) Create(ctx context.Context, in customer.Input) (*customer.Customer, []customer.UserError, error) {
	input := map[string]any{
		"email":            in.Email,
		"password":         in.Password,
		"acceptsMarketing": in.AcceptsMarketing,
	}
	if in.FirstName != "" {
		input["firstName"] = in.FirstName
	}
	if in.LastName != "" {
		input["lastName"] = in.LastName
	}
	if in.Phone != "" {
		input["phone"] = in.Phone
	}

	var data struct {
		CustomerCreate struct {
			Customer           *customerNode `json:"customer"`
			CustomerUserErrors []userError   `json:"customerUserErrors"`
		} `json:"customerCreate"`
	}
	cl := call{name: "customerCreate", query: createCustomerMutation, variables: map[string]any{"input": input}}
	if err := a.c.do(ctx, cl, &data); err != nil {
		return nil, nil, errors.Wrap(err, "create customer")
	}
	p := data.CustomerCreate
	return p.Customer.customer(), toCustomerErrors(p.CustomerUserErrors), nil
}

// AccessToken exchanges credentials for a customer access token.
func (a *Customers) AccessToken(ctx context.Context, email, password string) (string, []customer.UserError, error) {
	var data struct {
		CustomerAccessTokenCreate struct {
			CustomerAccessToken *struct {
				AccessToken string `json:"accessToken"`
			} `json:"customerAccessToken"`
			CustomerUserErrors []userError `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	vars := map[string]any{"input": map[string]any{"email": email, "password": password}}
	cl := call{name: "customerAccessTokenCreate", query: getCustomerAccessTokenMutation, variables: vars}
	if err := a.c.do(ctx, cl, &data); err != nil {
		return "", nil, errors.Wrap(err, "create customer access token")
	}
	p := data.CustomerAccessTokenCreate
	var token string
	if p.CustomerAccessToken != nil {
		token = p.CustomerAccessToken.AccessToken
	}
	return token, toCustomerErrors(p.CustomerUserErrors), nil
}

// Details returns the customer owning token.
func (a *Customers) Details(ctx context.Context, token string) (*customer.Customer, error) {
	var data struct {
		Customer *customerNode `json:"customer"`
	}
	cl := call{name: "getCustomer", query: getCustomerDetailsQuery, variables: map[string]any{"input": token}}
	if err := a.c.do(ctx, cl, &data); err != nil {
		return nil, errors.Wrap(err, "get customer")
	}
	if data.Customer == nil {
		return nil, customer.ErrNotFound
	}
	return data.Customer.customer(), nil
}
