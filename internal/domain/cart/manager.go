// Package cart owns the correlation between a browser session and a cart on
// the commerce platform, and the mutations shoppers perform on it.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/result"
)

// Manager resolves, creates and mutates session carts. It holds no state of
// its own: the platform is the single source of truth and the session is
// passed in and returned explicitly.
type Manager struct {
	platform Platform
	cache    Invalidator
	lg       *zap.Logger
}

// NewManager creates a Manager. cache may be nil when reads are not cached.
func NewManager(platform Platform, cache Invalidator, lg *zap.Logger) *Manager {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Manager{
		platform: platform,
		cache:    cache,
		lg:       lg,
	}
}

// Current resolves the session cart for a passive view. A cart the platform
// no longer knows yields an empty result and a cleared session; it is not
// recreated until the next add-item. On upstream failure the session is
// kept so a transient error does not orphan the cart.
func (m *Manager) Current(ctx context.Context, s Session) (result.Result[*Cart], Session) {
	if !s.HasCart() {
		return result.Empty[*Cart](nil), Session{}
	}

	c, err := m.platform.Get(ctx, s.CartID)
	switch {
	case errors.Is(err, ErrCartNotFound):
		m.lg.Info("Session cart expired", zap.String("cart_id", s.CartID))
		return result.Empty[*Cart](nil), Session{}
	case err != nil:
		m.lg.Warn("Fetch cart failed", zap.String("cart_id", s.CartID), zap.Error(err))
		return result.Failed[*Cart](nil, err), s
	}
	return result.Found(c), s
}

// AddItem adds quantity units of variantID to the session cart, creating a
// cart first when the session has none or its cart expired. A zero quantity
// adds one unit.
//
// Once a cart is resolved the returned Outcome is non-nil even when the add
// fails: it carries a nil Cart and the session to persist, so a cart created
// for a failed add is reused by the next attempt.
func (m *Manager) AddItem(ctx context.Context, s Session, variantID string, quantity int) (*Outcome, error) {
	if variantID == "" {
		return nil, ErrMissingVariant
	}
	if quantity < 0 {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}
	if quantity == 0 {
		quantity = 1
	}

	session, err := m.resolve(ctx, s)
	if err != nil {
		return nil, errors.Wrap(err, "resolve cart")
	}

	lines := []LineInput{{MerchandiseID: variantID, Quantity: quantity}}
	c, err := m.platform.AddLines(ctx, session.CartID, lines)
	if errors.Is(err, ErrCartNotFound) {
		// Expired between lookup and mutation.
		m.lg.Info("Session cart expired before add, creating a new one", zap.String("cart_id", session.CartID))
		next, cerr := m.create(ctx)
		if cerr != nil {
			return &Outcome{Session: Session{}}, errors.Wrap(cerr, "recreate cart")
		}
		session = next
		c, err = m.platform.AddLines(ctx, session.CartID, lines)
	}
	if err != nil {
		out := &Outcome{Session: session}
		if errors.Is(err, ErrOutOfStock) {
			return out, ErrOutOfStock
		}
		return out, errors.Wrap(err, "add lines")
	}

	m.invalidate(ctx, session.CartID)
	return &Outcome{Cart: c, Session: session}, nil
}

// UpdateItemQuantity sets the quantity of a line. A zero quantity removes
// the line.
func (m *Manager) UpdateItemQuantity(ctx context.Context, s Session, lineID, variantID string, quantity int) (*Outcome, error) {
	if !s.HasCart() {
		return nil, ErrMissingCart
	}
	if lineID == "" {
		return nil, ErrMissingLine
	}
	if quantity < 0 {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}
	if quantity == 0 {
		return m.RemoveItem(ctx, s, lineID)
	}

	c, err := m.platform.UpdateLines(ctx, s.CartID, []LineUpdate{{
		ID:            lineID,
		MerchandiseID: variantID,
		Quantity:      quantity,
	}})
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errors.Wrap(err, "update lines")
	}

	m.invalidate(ctx, s.CartID)
	return &Outcome{Cart: c, Session: s}, nil
}

// RemoveItem removes a line from the session cart.
func (m *Manager) RemoveItem(ctx context.Context, s Session, lineID string) (*Outcome, error) {
	if !s.HasCart() {
		return nil, ErrMissingCart
	}
	if lineID == "" {
		return nil, ErrMissingLine
	}

	c, err := m.platform.RemoveLines(ctx, s.CartID, []string{lineID})
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errors.Wrap(err, "remove lines")
	}

	m.invalidate(ctx, s.CartID)
	return &Outcome{Cart: c, Session: s}, nil
}

// resolve returns a session referencing a live cart, creating one when the
// session has none or the platform no longer knows it.
func (m *Manager) resolve(ctx context.Context, s Session) (Session, error) {
	if !s.HasCart() {
		return m.create(ctx)
	}

	_, err := m.platform.Get(ctx, s.CartID)
	switch {
	case errors.Is(err, ErrCartNotFound):
		m.lg.Info("Session cart expired, creating a new one", zap.String("cart_id", s.CartID))
		return m.create(ctx)
	case err != nil:
		return Session{}, errors.Wrap(err, "get cart")
	}
	return s, nil
}

func (m *Manager) create(ctx context.Context) (Session, error) {
	c, err := m.platform.Create(ctx)
	if err != nil {
		return Session{}, errors.Wrap(err, "create cart")
	}
	m.lg.Info("Cart created", zap.String("cart_id", c.ID))
	return Session{CartID: c.ID}, nil
}

func (m *Manager) invalidate(ctx context.Context, cartID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(ctx, CartTag(cartID)); err != nil {
		m.lg.Warn("Invalidate cart cache failed", zap.String("cart_id", cartID), zap.Error(err))
	}
}
