package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/shipping"
)

func validAddress() domain.Address {
	return domain.Address{
		FullName:     "Ada Duval",
		AddressLine1: "12 Rue des Ateliers",
		City:         "Lyon",
		PostalCode:   "69001",
		Country:      "FR",
	}
}

func validRequest() service.CheckoutRequest {
	return service.CheckoutRequest{
		ShippingAddress: validAddress(),
		BillingAddress:  validAddress(),
		ShippingMethod:  "standard",
		PaymentMethod:   "card",
	}
}

func assemblyItem(title string, priceCents int64) domain.CatalogItem {
	return domain.CatalogItem{
		ID:           uuid.New(),
		Category:     domain.CategoryPainting,
		Translations: map[string]domain.Translation{"en": {Title: title}},
		FallbackLang: "en",
		PriceCents:   priceCents,
		Currency:     "usd",
		Status:       domain.ItemStatusAvailable,
		Images:       []domain.Image{{URL: "https://img/full.jpg", ThumbnailURL: "https://img/thumb.jpg"}},
	}
}

func TestAssembleOrder_PricingBreakdown(t *testing.T) {
	small := assemblyItem("Small Study", 4500)
	large := assemblyItem("Large Canvas", 18000)

	cart := &domain.Cart{OwnerID: "user-1"}
	cart.Add(small.ID, 1)
	cart.Add(large.ID, 2)

	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	order, err := service.AssembleOrder(service.AssemblyInput{
		OrderID: uuid.New(),
		Number:  1006,
		UserID:  "user-1",
		Cart:    cart,
		Items: map[uuid.UUID]*domain.CatalogItem{
			small.ID: &small,
			large.ID: &large,
		},
		Method:  shipping.Method{Code: "standard", Label: "Standard Shipping", CostCents: 500},
		Request: validRequest(),
		Now:     now,
	})
	require.NoError(t, err)

	assert.Equal(t, "#1006", order.Number)
	assert.Equal(t, int64(1*4500+2*18000), order.Pricing.SubtotalCents) // 41100
	assert.Equal(t, int64(500), order.Pricing.ShippingCents)
	assert.Equal(t, int64(0), order.Pricing.TaxCents)
	assert.Equal(t, int64(0), order.Pricing.DiscountCents)
	assert.Equal(t, int64(41600), order.Pricing.TotalCents)

	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, domain.OrderPending, order.Status)
	require.Len(t, order.History, 1)
	assert.Equal(t, string(domain.OrderPending), order.History[0].Status)
}

func TestAssembleOrder_FreezesLineSnapshots(t *testing.T) {
	item := assemblyItem("Etching", 7000)

	cart := &domain.Cart{OwnerID: "user-1"}
	cart.Add(item.ID, 1)

	order, err := service.AssembleOrder(service.AssemblyInput{
		OrderID: uuid.New(),
		Number:  1001,
		UserID:  "user-1",
		Cart:    cart,
		Items:   map[uuid.UUID]*domain.CatalogItem{item.ID: &item},
		Method:  shipping.Method{Code: "standard", CostCents: 500},
		Request: validRequest(),
		Now:     time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	line := order.Lines[0]
	assert.Equal(t, "Etching", line.Title)
	assert.Equal(t, "https://img/thumb.jpg", line.ImageURL)
	assert.Equal(t, int64(7000), line.UnitPriceCents)

	// Catalog edits after assembly never touch the order.
	item.PriceCents = 1
	item.Translations["en"] = domain.Translation{Title: "Renamed"}
	assert.Equal(t, "Etching", order.Lines[0].Title)
	assert.Equal(t, int64(7000), order.Lines[0].UnitPriceCents)
}

func TestAssembleOrder_EmptyCart(t *testing.T) {
	_, err := service.AssembleOrder(service.AssemblyInput{
		OrderID: uuid.New(),
		Number:  1001,
		UserID:  "user-1",
		Cart:    &domain.Cart{OwnerID: "user-1"},
		Request: validRequest(),
		Now:     time.Now(),
	})
	assert.ErrorIs(t, err, service.ErrEmptyCart)
}

func TestAssembleOrder_MissingCatalogItem(t *testing.T) {
	cart := &domain.Cart{OwnerID: "user-1"}
	cart.Add(uuid.New(), 1)

	_, err := service.AssembleOrder(service.AssemblyInput{
		OrderID: uuid.New(),
		Number:  1001,
		UserID:  "user-1",
		Cart:    cart,
		Items:   map[uuid.UUID]*domain.CatalogItem{},
		Request: validRequest(),
		Now:     time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestCheckoutRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*service.CheckoutRequest)
		wantErr bool
	}{
		{
			name:   "complete request",
			mutate: func(r *service.CheckoutRequest) {},
		},
		{
			name:    "missing shipping city",
			mutate:  func(r *service.CheckoutRequest) { r.ShippingAddress.City = "" },
			wantErr: true,
		},
		{
			name:    "missing billing name",
			mutate:  func(r *service.CheckoutRequest) { r.BillingAddress.FullName = "" },
			wantErr: true,
		},
		{
			name:    "bad country code",
			mutate:  func(r *service.CheckoutRequest) { r.ShippingAddress.Country = "France" },
			wantErr: true,
		},
		{
			name:    "missing shipping method",
			mutate:  func(r *service.CheckoutRequest) { r.ShippingMethod = "" },
			wantErr: true,
		},
		{
			name:    "missing payment method",
			mutate:  func(r *service.CheckoutRequest) { r.PaymentMethod = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsValidationError(err), "want field-level validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
