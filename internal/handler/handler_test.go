package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kimhut-cafe/internal/domain/cart"
	"github.com/xenking/kimhut-cafe/internal/domain/order"
	"github.com/xenking/kimhut-cafe/internal/domain/product"
	"github.com/xenking/kimhut-cafe/internal/notify"
	"github.com/xenking/kimhut-cafe/pkg/httpmiddleware"
)

// --- Mock implementations ---

type mockDispatcher struct {
	outcome notify.Outcome
}

func (m *mockDispatcher) DispatchBoth(context.Context, string, notify.Email) notify.Outcome {
	return m.outcome
}

// --- Helpers ---

func newTestHandler(d order.Dispatcher) (*Handler, http.Handler) {
	idx := product.NewIndex([]product.Product{
		{ID: 1, Name: "Espresso", Price: decimal.RequireFromString("2.50"), Category: "Coffee"},
		{ID: 2, Name: "Iced Latte", Price: decimal.RequireFromString("4.00"), Category: "Coffee"},
		{ID: 3, Name: "Croissant", Price: decimal.RequireFromString("4.50"), Category: "Bakery"},
	})
	h := New(idx, cart.NewRegistry(time.Hour), order.NewFlow(idx, d))

	mux := http.NewServeMux()
	h.Register(mux)
	return h, httpmiddleware.Wrap(mux, httpmiddleware.Session("session_id"))
}

func postForm(t *testing.T, srv http.Handler, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, srv http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{})

	rec := get(t, srv, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Len(t, body["products"], 3)
	assert.Equal(t, []any{"All", "Bakery", "Coffee"}, body["categories"])
}

func TestListProducts_FilterAndSearch(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{})

	body := decode(t, get(t, srv, "/api/products?category=Coffee&q=latte", nil))
	products := body["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "Iced Latte", products[0].(map[string]any)["name"])
}

func TestAddToCart_DefaultQuantity(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{})

	rec := postForm(t, srv, "/api/cart", url.Values{"product_id": {"3"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(1), body["cart_count"])
}

func TestAddToCart_RejectsMalformedInput(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{})

	rec := postForm(t, srv, "/api/cart", url.Values{"product_id": {"3"}, "qty": {"two"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(t, srv, "/api/cart", url.Values{"product_id": {"abc"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCart_ZeroRemoves(t *testing.T) {
	h, srv := newTestHandler(&mockDispatcher{})
	sid := &http.Cookie{Name: "session_id", Value: "sess-1"}
	h.carts.Get("sess-1").Add(3, 2)

	rec := postForm(t, srv, "/api/cart/update", url.Values{"qty_3": {"0"}}, []*http.Cookie{sid})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(0), body["cart_count"])
	assert.Zero(t, h.carts.Get("sess-1").Len())
}

func TestGetCart_ResolvedItems(t *testing.T) {
	h, srv := newTestHandler(&mockDispatcher{})
	sid := &http.Cookie{Name: "session_id", Value: "sess-2"}
	h.carts.Get("sess-2").Add(3, 2)

	body := decode(t, get(t, srv, "/api/cart", []*http.Cookie{sid}))
	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Croissant", item["name"])
	assert.Equal(t, "9.00", item["line_total"])
	assert.Equal(t, "9.00", body["subtotal"])
}

func TestCheckout_SuccessEvenWhenNothingConfigured(t *testing.T) {
	h, srv := newTestHandler(&mockDispatcher{}) // both channels fail
	sid := &http.Cookie{Name: "session_id", Value: "sess-3"}
	h.carts.Get("sess-3").Add(3, 2)

	rec := postForm(t, srv, "/api/checkout", url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"phone":   {"555-0100"},
		"address": {"1 Main St"},
	}, []*http.Cookie{sid})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	notified := body["notified"].(map[string]any)
	assert.Equal(t, false, notified["push"])
	assert.Equal(t, false, notified["email"])
	assert.Equal(t, "9.00", body["subtotal"])
	assert.Zero(t, h.carts.Get("sess-3").Len(), "cart cleared even when both channels fail")
}

func TestSubmitContact_PushOnly(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{outcome: notify.Outcome{PushOK: true}})

	body := decode(t, postForm(t, srv, "/api/contact", url.Values{
		"name":    {"Bob"},
		"email":   {"a@b.com"},
		"message": {"hi"},
	}, nil))

	assert.Equal(t, true, body["sent"])
	assert.Equal(t, "Thanks! Your message was sent.", body["message"])
}

func TestSubmitContact_NeutralWhenUndelivered(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{})

	body := decode(t, postForm(t, srv, "/api/contact", url.Values{
		"name":    {"Bob"},
		"email":   {"a@b.com"},
		"message": {"hi"},
	}, nil))

	assert.Equal(t, true, body["ok"])
	assert.Equal(t, false, body["sent"])
	assert.Equal(t, "Message received, but notifications are not configured.", body["message"])
}

func TestSessionCookie_MintedOnFirstRequest(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{})

	rec := get(t, srv, "/api/cart", nil)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestCartsAreSessionScoped(t *testing.T) {
	_, srv := newTestHandler(&mockDispatcher{})
	a := &http.Cookie{Name: "session_id", Value: "sess-a"}
	b := &http.Cookie{Name: "session_id", Value: "sess-b"}

	postForm(t, srv, "/api/cart", url.Values{"product_id": {"1"}, "qty": {"2"}}, []*http.Cookie{a})

	bodyA := decode(t, get(t, srv, "/api/cart", []*http.Cookie{a}))
	bodyB := decode(t, get(t, srv, "/api/cart", []*http.Cookie{b}))
	assert.Equal(t, float64(2), bodyA["cart_count"])
	assert.Equal(t, float64(0), bodyB["cart_count"])
}
