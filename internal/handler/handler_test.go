package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/customer"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// --- Mock implementations ---

var errUpstream = errors.New("upstream unavailable")

type fakeSource struct {
	err      error
	products map[string]*catalog.Product
	pages    map[string]*catalog.Page
}

func (f *fakeSource) list() []catalog.Product {
	out := []catalog.Product{}
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out
}

func (f *fakeSource) Products(context.Context, catalog.ProductQuery) (*catalog.ProductPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.ProductPage{Products: f.list()}, nil
}

func (f *fakeSource) CollectionProducts(_ context.Context, q catalog.CollectionQuery) (*catalog.ProductPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if q.Handle != "shirts" {
		return nil, catalog.ErrNotFound
	}
	return &catalog.ProductPage{Products: f.list()}, nil
}

func (f *fakeSource) Collections(context.Context) ([]catalog.Collection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []catalog.Collection{{Handle: "shirts", Title: "Shirts", Path: "/products/shirts"}}, nil
}

func (f *fakeSource) Collection(_ context.Context, handle string) (*catalog.Collection, error) {
	if f.err != nil {
		return nil, f.err
	}
	if handle != "shirts" {
		return nil, catalog.ErrNotFound
	}
	return &catalog.Collection{Handle: "shirts", Title: "Shirts", Path: "/products/shirts"}, nil
}

func (f *fakeSource) Product(_ context.Context, handle string) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[handle]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeSource) Recommendations(_ context.Context, productID string) ([]catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []catalog.Product
	for _, p := range f.products {
		if p.ID != productID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeSource) Menu(context.Context, string) ([]catalog.MenuItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []catalog.MenuItem{{Title: "Shirts", Path: "/collections/shirts"}}, nil
}

func (f *fakeSource) Page(_ context.Context, handle string) (*catalog.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.pages[handle]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeSource) Pages(context.Context) ([]catalog.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []catalog.Page{}
	for _, p := range f.pages {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeSource) HighestPrice(context.Context) (*catalog.Money, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.products) == 0 {
		return nil, catalog.ErrNotFound
	}
	return &catalog.Money{Amount: "25.0", CurrencyCode: "USD"}, nil
}

type fakeCarts struct {
	mu         sync.Mutex
	carts      map[string]*cart.Cart
	seq        int
	getErr     error
	outOfStock bool
}

func (f *fakeCarts) Create(context.Context) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c := &cart.Cart{ID: "gid://shopify/Cart/" + string(rune('0'+f.seq)), Lines: []cart.Line{}}
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeCarts) Get(_ context.Context, id string) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.carts[id]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return c, nil
}

func (f *fakeCarts) AddLines(_ context.Context, id string, lines []cart.LineInput) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outOfStock {
		return nil, cart.ErrOutOfStock
	}
	c, ok := f.carts[id]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	for _, l := range lines {
		c.Lines = append(c.Lines, cart.Line{
			ID:          "line-" + l.MerchandiseID,
			Quantity:    l.Quantity,
			Merchandise: cart.Merchandise{ID: l.MerchandiseID},
		})
		c.TotalQuantity += l.Quantity
	}
	return c, nil
}

func (f *fakeCarts) UpdateLines(_ context.Context, id string, lines []cart.LineUpdate) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	for _, u := range lines {
		for i := range c.Lines {
			if c.Lines[i].ID == u.ID {
				c.TotalQuantity += u.Quantity - c.Lines[i].Quantity
				c.Lines[i].Quantity = u.Quantity
			}
		}
	}
	return c, nil
}

func (f *fakeCarts) RemoveLines(_ context.Context, id string, lineIDs []string) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ID == lineIDs[0] {
			c.TotalQuantity -= l.Quantity
			continue
		}
		kept = append(kept, l)
	}
	c.Lines = kept
	return c, nil
}

type fakeCustomers struct {
	userErrs []customer.UserError
	err      error
}

func (f *fakeCustomers) Create(_ context.Context, in customer.Input) (*customer.Customer, []customer.UserError, error) {
	if f.err != nil || f.userErrs != nil {
		return nil, f.userErrs, f.err
	}
	return &customer.Customer{ID: "cust-1", Email: in.Email, FirstName: in.FirstName}, nil, nil
}

func (f *fakeCustomers) AccessToken(_ context.Context, _, password string) (string, []customer.UserError, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	if password != "secret" {
		return "", []customer.UserError{{Code: "UNIDENTIFIED_CUSTOMER", Field: []string{}, Message: "Unidentified customer"}}, nil
	}
	return "tok-1", nil, nil
}

func (f *fakeCustomers) Details(_ context.Context, token string) (*customer.Customer, error) {
	if token != "tok-1" {
		return nil, customer.ErrNotFound
	}
	return &customer.Customer{ID: "cust-1", Email: "jane@example.com", FirstName: "Jane"}, nil
}

type recordingCache struct {
	mu   sync.Mutex
	tags []string
	err  error
}

func (r *recordingCache) Invalidate(_ context.Context, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tags...)
	return r.err
}

func (r *recordingCache) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tags...)
}

// --- Helpers ---

type testEnv struct {
	source    *fakeSource
	carts     *fakeCarts
	customers *fakeCustomers
	cache     *recordingCache
	engine    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		source: &fakeSource{
			products: map[string]*catalog.Product{
				"tee":    {ID: "gid://shopify/Product/1", Handle: "tee", Title: "Tee", Vendor: "Acme"},
				"hidden": {ID: "gid://shopify/Product/2", Handle: "hidden", Title: "Hidden", Tags: []string{"nextjs-frontend-hidden"}},
			},
			pages: map[string]*catalog.Page{"about": {Handle: "about", Title: "About"}},
		},
		carts:     &fakeCarts{carts: make(map[string]*cart.Cart)},
		customers: &fakeCustomers{},
		cache:     &recordingCache{},
	}
	h := NewHandler(
		HandlerConfig{CookieSecure: true, WebhookSecret: "hook-secret"},
		catalog.NewService(catalog.ServiceConfig{StoreDomain: "https://shop.example.com"}, env.source, nil),
		cart.NewManager(env.carts, env.cache, nil),
		customer.NewService(env.customers, nil),
		env.cache,
	)
	h.now = func() time.Time { return time.UnixMilli(1709287200000) }
	env.engine = NewEngine(h)
	return env
}

type call struct {
	method, path, body string
	cookies            []*http.Cookie
	header             map[string]string
}

func (e *testEnv) do(c call) *httptest.ResponseRecorder {
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func cartCookie(id string) *http.Cookie {
	return &http.Cookie{Name: cart.CookieName, Value: url.QueryEscape(id)}
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// --- Tests ---

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		path   string
		status int
		check  func(t *testing.T, body string)
	}{
		{name: "hidden product is served", path: "/api/products/hidden", status: http.StatusOK, check: func(t *testing.T, body string) {
			assert.Contains(t, body, `"handle":"hidden"`)
		}},
		{name: "missing product", path: "/api/products/nope", status: http.StatusNotFound, check: func(t *testing.T, body string) {
			assert.JSONEq(t, `{"error":"Product not found"}`, body)
		}},
		{name: "collection", path: "/api/collections/shirts", status: http.StatusOK},
		{name: "missing collection", path: "/api/collections/nope", status: http.StatusNotFound},
		{name: "collection products", path: "/api/collections/shirts/products?sort=latest-desc", status: http.StatusOK},
		{name: "missing collection products", path: "/api/collections/nope/products", status: http.StatusNotFound},
		{name: "collections start with all", path: "/api/collections", status: http.StatusOK, check: func(t *testing.T, body string) {
			var cols []catalog.Collection
			require.NoError(t, json.Unmarshal([]byte(body), &cols))
			require.Len(t, cols, 2)
			assert.Equal(t, catalog.AllHandle, cols[0].Handle)
		}},
		{name: "recommendations", path: "/api/products/tee/recommendations", status: http.StatusOK, check: func(t *testing.T, body string) {
			assert.Contains(t, body, `"handle":"hidden"`)
			assert.NotContains(t, body, `"handle":"tee"`)
		}},
		{name: "recommendations of missing product", path: "/api/products/nope/recommendations", status: http.StatusNotFound},
		{name: "menu rewrites paths", path: "/api/menus/main", status: http.StatusOK, check: func(t *testing.T, body string) {
			assert.JSONEq(t, `[{"title":"Shirts","path":"/search/shirts"}]`, body)
		}},
		{name: "page", path: "/api/pages/about", status: http.StatusOK},
		{name: "missing page", path: "/api/pages/nope", status: http.StatusNotFound},
		{name: "pages", path: "/api/pages", status: http.StatusOK},
		{name: "highest price", path: "/api/price/highest", status: http.StatusOK, check: func(t *testing.T, body string) {
			assert.JSONEq(t, `{"amount":"25.0","currencyCode":"USD"}`, body)
		}},
		{name: "vendors", path: "/api/vendors", status: http.StatusOK, check: func(t *testing.T, body string) {
			assert.JSONEq(t, `[{"vendor":"Acme","productCount":1}]`, body)
		}},
		{name: "unknown route", path: "/api/nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(call{method: http.MethodGet, path: tt.path})
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Empty(t, w.Header().Get(httpmiddleware.HeaderDegraded))
			if tt.check != nil {
				tt.check(t, w.Body.String())
			}
		})
	}
}

func TestCatalogRoutes_Degraded(t *testing.T) {
	env := newTestEnv(t)
	env.source.err = errUpstream

	for _, path := range []string{"/api/products?q=tee", "/api/collections", "/api/menus/main", "/api/pages", "/api/vendors", "/api/products/tee/recommendations"} {
		w := env.do(call{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "1", w.Header().Get(httpmiddleware.HeaderDegraded), path)
	}
	for _, path := range []string{"/api/products/tee", "/api/collections/shirts", "/api/pages/about", "/api/price/highest"} {
		w := env.do(call{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Equal(t, "1", w.Header().Get(httpmiddleware.HeaderDegraded), path)
	}

	w := env.do(call{method: http.MethodGet, path: "/api/products"})
	body := decodeBody(t, w)
	assert.Equal(t, []any{}, body["products"])
	assert.Len(t, body["collections"], 1, "only All")
}

func TestListing(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodGet, path: "/api/products?sort=price-asc&q=tee"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["products"], 2)
	sort, _ := body["sort"].(map[string]any)
	assert.Equal(t, "price-asc", sort["slug"])
	assert.Equal(t, map[string]any{"amount": "25.0", "currencyCode": "USD"}, body["highestPrice"])
}

func TestCart_NoSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodGet, path: "/api/cart"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cart":null}`, w.Body.String())
	assert.Nil(t, responseCookie(w, cart.CookieName))

	for _, c := range []call{
		{method: http.MethodPatch, path: "/api/cart/items/line-1", body: `{"quantity":2}`},
		{method: http.MethodDelete, path: "/api/cart/items/line-1"},
	} {
		w := env.do(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Missing cart ID"}`, w.Body.String())
	}
}

func TestCart_AddCreatesSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"gid://shopify/ProductVariant/11"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Item added to cart successfully", body["message"])

	ck := responseCookie(w, cart.CookieName)
	require.NotNil(t, ck)
	assert.Equal(t, url.QueryEscape("gid://shopify/Cart/1"), ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, []string{cart.CartTag("gid://shopify/Cart/1")}, env.cache.invalidated())

	// The cookie round trips back to the same cart.
	w = env.do(call{method: http.MethodGet, path: "/api/cart", cookies: []*http.Cookie{ck}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalQuantity":1`)
	assert.Nil(t, responseCookie(w, cart.CookieName), "unchanged session is not rewritten")

	w = env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"gid://shopify/ProductVariant/12","quantity":2}`, cookies: []*http.Cookie{ck}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalQuantity":3`)
	assert.Nil(t, responseCookie(w, cart.CookieName))
}

func TestCart_AddErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   string
		setup  func()
		status int
		want   string
	}{
		{name: "missing variant", body: `{"quantity":1}`, status: http.StatusBadRequest, want: "Missing product variant ID"},
		{name: "negative quantity", body: `{"variantId":"v","quantity":-1}`, status: http.StatusBadRequest, want: "quantity must not be negative, got -1"},
		{name: "malformed body", body: `{"variantId":`, status: http.StatusBadRequest, want: "Invalid request body"},
		{name: "out of stock", body: `{"variantId":"v"}`, setup: func() { env.carts.outOfStock = true }, status: http.StatusConflict, want: "This item is currently out of stock"},
		{name: "upstream failure", body: `{"variantId":"v"}`, setup: func() {
			env.carts.outOfStock = false
			env.carts.getErr = errUpstream
		}, status: http.StatusBadGateway, want: "Error adding item to cart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			w := env.do(call{method: http.MethodPost, path: "/api/cart/items", body: tt.body, cookies: []*http.Cookie{cartCookie("gid://shopify/Cart/live")}})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, decodeBody(t, w)["error"])
		})
	}
}

func TestCart_OutOfStockPersistsNewCart(t *testing.T) {
	env := newTestEnv(t)
	env.carts.outOfStock = true

	w := env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"v"}`})
	assert.Equal(t, http.StatusConflict, w.Code)
	ck := responseCookie(w, cart.CookieName)
	require.NotNil(t, ck, "the created cart is kept even though the add failed")
	assert.Equal(t, url.QueryEscape("gid://shopify/Cart/1"), ck.Value)

	w = env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"v"}`, cookies: []*http.Cookie{ck}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Nil(t, responseCookie(w, cart.CookieName), "second attempt reuses the cart")

	env.carts.outOfStock = false
	w = env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"v"}`, cookies: []*http.Cookie{ck}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, responseCookie(w, cart.CookieName))
	assert.Len(t, env.carts.carts, 1)
}

func TestCart_ExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	stale := []*http.Cookie{cartCookie("gid://shopify/Cart/checked-out")}

	w := env.do(call{method: http.MethodGet, path: "/api/cart", cookies: stale})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cart":null}`, w.Body.String())
	ck := responseCookie(w, cart.CookieName)
	require.NotNil(t, ck, "stale cookie is cleared")
	assert.Equal(t, -1, ck.MaxAge)

	w = env.do(call{method: http.MethodPatch, path: "/api/cart/items/line-1", body: `{"quantity":2}`, cookies: stale})
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, responseCookie(w, cart.CookieName))

	w = env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"v"}`, cookies: stale})
	require.Equal(t, http.StatusOK, w.Code)
	ck = responseCookie(w, cart.CookieName)
	require.NotNil(t, ck)
	assert.Equal(t, url.QueryEscape("gid://shopify/Cart/1"), ck.Value, "add recreates the cart")
}

func TestCart_UpstreamFailureKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	env.carts.getErr = errUpstream

	w := env.do(call{method: http.MethodGet, path: "/api/cart", cookies: []*http.Cookie{cartCookie("gid://shopify/Cart/1")}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cart":null}`, w.Body.String())
	assert.Equal(t, "1", w.Header().Get(httpmiddleware.HeaderDegraded))
	assert.Nil(t, responseCookie(w, cart.CookieName))
}

func TestCart_UpdateAndRemove(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"v1"}`})
	require.Equal(t, http.StatusOK, w.Code)
	session := []*http.Cookie{responseCookie(w, cart.CookieName)}

	w = env.do(call{method: http.MethodPatch, path: "/api/cart/items/line-v1", body: `{"variantId":"v1","quantity":4}`, cookies: session})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"totalQuantity":4`)

	w = env.do(call{method: http.MethodPatch, path: "/api/cart/items/line-v1", body: `{"quantity":-2}`, cookies: session})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(call{method: http.MethodPatch, path: "/api/cart/items/line-v1", body: `{"quantity":0}`, cookies: session})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalQuantity":0`)

	w = env.do(call{method: http.MethodPost, path: "/api/cart/items", body: `{"variantId":"v2"}`, cookies: session})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(call{method: http.MethodDelete, path: "/api/cart/items/line-v2", cookies: session})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lines":[]`)
}

func TestCustomer_Login(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodPost, path: "/api/customer/login", body: `{"email":"jane@example.com","password":"secret"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "tok-1", body["token"])
	assert.Equal(t, "Jane", body["firstName"])
	ck := responseCookie(w, TokenCookie)
	require.NotNil(t, ck)
	assert.Equal(t, "tok-1", ck.Value)
	assert.True(t, ck.HttpOnly)

	w = env.do(call{method: http.MethodGet, path: "/api/customer/me", cookies: []*http.Cookie{ck}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", decodeBody(t, w)["email"])

	w = env.do(call{method: http.MethodPost, path: "/api/customer/login", body: `{"email":"jane@example.com","password":"wrong"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"code":"UNIDENTIFIED_CUSTOMER","field":[],"message":"Unidentified customer"}]}`, w.Body.String())
	assert.Nil(t, responseCookie(w, TokenCookie))

	w = env.do(call{method: http.MethodPost, path: "/api/customer/login", body: `{"email":"jane@example.com"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), CodeInvalidInput)
}

func TestCustomer_SignUp(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodPost, path: "/api/customer/sign-up", body: `{"firstName":"Jane","email":"jane@example.com","password":"secret"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "tok-1", decodeBody(t, w)["token"])
	require.NotNil(t, responseCookie(w, TokenCookie))

	env.customers.userErrs = []customer.UserError{{Code: "TAKEN", Field: []string{"input", "email"}, Message: "Email has already been taken"}}
	w = env.do(call{method: http.MethodPost, path: "/api/customer/sign-up", body: `{"email":"jane@example.com","password":"secret"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"code":"TAKEN","field":["input","email"],"message":"Email has already been taken"}]}`, w.Body.String())

	env.customers.userErrs = nil
	env.customers.err = errUpstream
	w = env.do(call{method: http.MethodPost, path: "/api/customer/sign-up", body: `{"email":"jane@example.com","password":"secret"}`})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"errors":[{"code":"INTERNAL_ERROR","field":[],"message":"Internal server error"}]}`, w.Body.String())
}

func TestCustomer_Me(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodGet, path: "/api/customer/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(call{method: http.MethodGet, path: "/api/customer/me", cookies: []*http.Cookie{{Name: TokenCookie, Value: "expired"}}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	ck := responseCookie(w, TokenCookie)
	require.NotNil(t, ck)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestRevalidate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(call{method: http.MethodPost, path: "/api/revalidate", body: `{}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Missing tag parameter"}`, w.Body.String())

	w = env.do(call{method: http.MethodPost, path: "/api/revalidate", body: `{"tag":"products"}`})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"revalidated":true,"now":1709287200000}`, w.Body.String())
	assert.Equal(t, []string{"products"}, env.cache.invalidated())

	env.cache.err = errUpstream
	w = env.do(call{method: http.MethodPost, path: "/api/revalidate", body: `{"tag":"products"}`})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Error revalidating"}`, w.Body.String())
}

func TestWebhook(t *testing.T) {
	tests := []struct {
		name  string
		query string
		topic string
		want  string
		tags  []string
	}{
		{name: "missing secret", topic: "products/update", want: `{"status":200,"revalidated":false}`},
		{name: "wrong secret", query: "?secret=nope", topic: "products/update", want: `{"status":200,"revalidated":false}`},
		{name: "unrelated topic", query: "?secret=hook-secret", topic: "customers/create", want: `{"status":200,"revalidated":false}`},
		{name: "product update", query: "?secret=hook-secret", topic: "products/update", want: `{"status":200,"revalidated":true,"now":1709287200000}`, tags: []string{"products"}},
		{name: "collection delete", query: "?secret=hook-secret", topic: "collections/delete", want: `{"status":200,"revalidated":true,"now":1709287200000}`, tags: []string{"collections"}},
		{name: "order created", query: "?secret=hook-secret", topic: "orders/create", want: `{"status":200,"revalidated":true,"now":1709287200000}`, tags: []string{"cart"}},
		{name: "checkout update", query: "?secret=hook-secret", topic: "checkouts/update", want: `{"status":200,"revalidated":true,"now":1709287200000}`, tags: []string{"cart"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(call{
				method: http.MethodPost,
				path:   "/api/revalidate/webhook" + tt.query,
				header: map[string]string{HeaderTopic: tt.topic},
			})
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
			assert.Equal(t, tt.tags, env.cache.invalidated())
		})
	}
}
