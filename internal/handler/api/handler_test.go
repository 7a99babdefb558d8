package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/billing"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/handler/api"
	"github.com/atelierhq/atelier/internal/memstore"
	"github.com/atelierhq/atelier/internal/middleware"
	"github.com/atelierhq/atelier/internal/router"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/shipping"
	"github.com/atelierhq/atelier/internal/telemetry"
)

type apiFixture struct {
	store  *memstore.Store
	router *router.Router
}

func newAPIFixture(t *testing.T, base int64) *apiFixture {
	t.Helper()

	st := memstore.New(base)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	catalog, err := service.NewCatalogService(st, nil)
	require.NoError(t, err)
	cart, err := service.NewCartService(st, nil)
	require.NoError(t, err)
	checkout, err := service.NewCheckoutService(
		st,
		shipping.NewFlatRateProvider(shipping.DefaultMethods()),
		billing.Always(billing.StatusSucceeded),
		nil,
		metrics,
		nil,
		service.WithSyncPayments(),
	)
	require.NoError(t, err)
	orders, err := service.NewOrderService(st, nil)
	require.NoError(t, err)

	h, err := api.NewHandler(catalog, cart, checkout, orders,
		shipping.NewFlatRateProvider(shipping.DefaultMethods()), metrics, nil)
	require.NoError(t, err)

	r := router.New(middleware.Identity)
	h.RegisterRoutes(r)

	return &apiFixture{store: st, router: r}
}

func (f *apiFixture) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (f *apiFixture) seedItem(t *testing.T, title string, priceCents int64, publishedAt time.Time) domain.CatalogItem {
	t.Helper()

	item := domain.CatalogItem{
		ID:       uuid.New(),
		Category: domain.CategoryPainting,
		Translations: map[string]domain.Translation{
			"en": {Title: title},
		},
		FallbackLang: "en",
		PriceCents:   priceCents,
		Currency:     "USD",
		Status:       domain.ItemStatusAvailable,
		Stock:        3,
		PublishedAt:  &publishedAt,
		CreatedAt:    publishedAt,
		UpdatedAt:    publishedAt,
	}
	require.NoError(t, f.store.PutItem(context.Background(), &item))
	return item
}

func checkoutBody() map[string]any {
	address := map[string]any{
		"full_name":     "Ada Duval",
		"address_line1": "12 Rue des Ateliers",
		"city":          "Lyon",
		"postal_code":   "69001",
		"country":       "FR",
	}
	return map[string]any{
		"shipping_address": address,
		"billing_address":  address,
		"shipping_method":  "standard",
		"payment_method":   "card",
	}
}

func TestHandler_Health(t *testing.T) {
	f := newAPIFixture(t, 1000)

	rec := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestHandler_BrowseCatalog(t *testing.T) {
	f := newAPIFixture(t, 1000)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.seedItem(t, "Harbor Study", 4500, base)
	f.seedItem(t, "Winter Field", 18000, base.Add(-time.Hour))

	rec := f.do(t, http.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 2)

	// Newest first.
	first := items[0].(map[string]any)
	assert.Equal(t, "Harbor Study", first["title"])
	assert.Empty(t, body["next_cursor"])
}

func TestHandler_GetCatalogItem_BadID(t *testing.T) {
	f := newAPIFixture(t, 1000)

	rec := f.do(t, http.MethodGet, "/api/catalog/not-a-uuid", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetCatalogItem_NotFound(t *testing.T) {
	f := newAPIFixture(t, 1000)

	rec := f.do(t, http.MethodGet, "/api/catalog/"+uuid.NewString(), "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CartRequiresIdentity(t *testing.T) {
	f := newAPIFixture(t, 1000)

	rec := f.do(t, http.MethodGet, "/api/cart", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_CartFlow(t *testing.T) {
	f := newAPIFixture(t, 1000)
	item := f.seedItem(t, "Harbor Study", 4500, time.Now())

	rec := f.do(t, http.MethodPost, "/api/cart/items", "user-1", map[string]any{
		"product_id": item.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/cart", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(9000), body["subtotal_cents"])
	assert.Equal(t, float64(2), body["item_count"])

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/cart/items/%s", item.ID), "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["item_count"])
}

func TestHandler_Checkout(t *testing.T) {
	f := newAPIFixture(t, 1005)
	small := f.seedItem(t, "Small Study", 4500, time.Now())
	large := f.seedItem(t, "Large Canvas", 18000, time.Now())

	cart := &domain.Cart{OwnerID: "user-1"}
	cart.Add(small.ID, 1)
	cart.Add(large.ID, 2)
	require.NoError(t, f.store.SaveCart(context.Background(), cart))

	rec := f.do(t, http.MethodPost, "/api/checkout", "user-1", checkoutBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "#1006", body["number"])

	pricing := body["pricing"].(map[string]any)
	assert.Equal(t, float64(41100), pricing["subtotal_cents"])
	assert.Equal(t, float64(41600), pricing["total_cents"])

	// Payments run inline in this fixture, so the order is already settled.
	orderID := body["id"].(string)
	rec = f.do(t, http.MethodGet, "/api/orders/"+orderID, "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", decodeBody(t, rec)["payment_status"])

	// Another user never sees this order.
	rec = f.do(t, http.MethodGet, "/api/orders/"+orderID, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/account/stats", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)
	assert.Equal(t, float64(1), stats["total_orders"])
	assert.Equal(t, float64(41600), stats["total_spent_cents"])
}

func TestHandler_Checkout_ValidationFailure(t *testing.T) {
	f := newAPIFixture(t, 1000)
	item := f.seedItem(t, "Harbor Study", 4500, time.Now())

	cart := &domain.Cart{OwnerID: "user-1"}
	cart.Add(item.ID, 1)
	require.NoError(t, f.store.SaveCart(context.Background(), cart))

	body := checkoutBody()
	body["shipping_address"].(map[string]any)["city"] = ""

	rec := f.do(t, http.MethodPost, "/api/checkout", "user-1", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody(t, rec)
	assert.NotEmpty(t, resp["fields"])

	// Nothing was minted.
	current, err := f.store.CurrentOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), current)
}

func TestHandler_Wishlist(t *testing.T) {
	f := newAPIFixture(t, 1000)
	item := f.seedItem(t, "Harbor Study", 4500, time.Now())

	rec := f.do(t, http.MethodPost, "/api/wishlist", "user-1", map[string]any{
		"product_id": item.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/wishlist", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["products"], 1)

	rec = f.do(t, http.MethodDelete, "/api/wishlist/"+item.ID.String(), "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["products"])
}

func TestHandler_ListShippingMethods(t *testing.T) {
	f := newAPIFixture(t, 1000)

	rec := f.do(t, http.MethodGet, "/api/shipping-methods", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	methods := decodeBody(t, rec)["methods"].([]any)
	require.Len(t, methods, 2)
	standard := methods[0].(map[string]any)
	assert.Equal(t, "standard", standard["code"])
	assert.Equal(t, float64(500), standard["cost_cents"])
}
