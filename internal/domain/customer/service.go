// Package customer implements storefront sign-up, login and account lookup
// on top of the platform's customer API.
package customer

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Service orchestrates customer operations.
type Service struct {
	platform Platform
	lg       *zap.Logger
}

// NewService creates a customer Service.
func NewService(platform Platform, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{platform: platform, lg: lg}
}

// SignUp creates a customer and signs it in. Rejected input is returned as
// UserErrors.
func (s *Service) SignUp(ctx context.Context, in Input) (*Account, error) {
	c, userErrs, err := s.platform.Create(ctx, in)
	if err != nil {
		return nil, errors.Wrap(err, "create customer")
	}
	if len(userErrs) > 0 {
		s.lg.Info("Customer creation rejected", zap.Int("errors", len(userErrs)))
		return nil, UserErrors(userErrs)
	}

	token, err := s.token(ctx, in.Email, in.Password, "Failed to get access token after registration")
	if err != nil {
		return nil, err
	}

	acc := &Account{Token: token}
	if c != nil {
		acc.Customer = *c
	}
	return acc, nil
}

// Login exchanges credentials for an access token and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, error) {
	token, err := s.token(ctx, email, password, "Failed to get access token")
	if err != nil {
		return nil, err
	}

	c, err := s.platform.Details(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "customer details")
	}
	return &Account{Customer: *c, Token: token}, nil
}

// Details returns the customer owning token.
func (s *Service) Details(ctx context.Context, token string) (*Customer, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	c, err := s.platform.Details(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "customer details")
	}
	return c, nil
}

func (s *Service) token(ctx context.Context, email, password, missing string) (string, error) {
	token, userErrs, err := s.platform.AccessToken(ctx, email, password)
	if err != nil {
		return "", errors.Wrap(err, "create access token")
	}
	if len(userErrs) > 0 {
		return "", UserErrors(userErrs)
	}
	if token == "" {
		return "", UserErrors{{Code: CodeNoToken, Field: []string{}, Message: missing}}
	}
	return token, nil
}
