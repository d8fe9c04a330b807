package cart

// Tag is the cache tag shared by every cached cart read.
const Tag = "cart"

// CookieName is the name of the cookie holding the session cart id.
const CookieName = "cartId"

// Session correlates a browser session with an upstream cart. The zero value
// is the No Cart state.
type Session struct {
	CartID string
}

// HasCart reports whether the session references a cart.
func (s Session) HasCart() bool {
	return s.CartID != ""
}

// CartTag returns the cache tag of a single cart.
func CartTag(cartID string) string {
	return Tag + "/" + cartID
}

// Outcome is the result of a cart mutation: the refreshed cart and the
// session the caller must persist.
type Outcome struct {
	Cart    *Cart
	Session Session
}

// SessionChanged reports whether the caller must rewrite the session cookie.
func (o *Outcome) SessionChanged(prev Session) bool {
	return o.Session != prev
}
