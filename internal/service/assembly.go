package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/shipping"
)

var validate = validator.New()

// CheckoutRequest carries the buyer-supplied checkout input.
type CheckoutRequest struct {
	ShippingAddress domain.Address `json:"shipping_address" validate:"required"`
	BillingAddress  domain.Address `json:"billing_address" validate:"required"`
	ShippingMethod  string         `json:"shipping_method" validate:"required"`
	PaymentMethod   string         `json:"payment_method" validate:"required"`
}

// Validate checks the request's addresses and required fields, returning a
// field-keyed ValidationError on failure.
func (r *CheckoutRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	ve := &domain.ValidationError{Op: "checkout.validate", Fields: map[string]string{}}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Internal(err, "checkout.validate", "failed to validate request")
	}
	for _, fe := range fieldErrs {
		ve.Fields[fe.Namespace()] = "failed on " + fe.Tag()
	}
	return ve
}

// AssemblyInput is everything needed to mint an order snapshot. All lookups
// happen before assembly; assembly itself is pure.
type AssemblyInput struct {
	OrderID uuid.UUID
	Number  int64
	UserID  string

	Cart  *domain.Cart
	Items map[uuid.UUID]*domain.CatalogItem

	Method  shipping.Method
	Request CheckoutRequest

	Now time.Time
}

// AssembleOrder builds an immutable order from a cart. Line titles, images
// and unit prices are frozen from the catalog items passed in; later catalog
// edits never touch the order.
func AssembleOrder(in AssemblyInput) (*domain.Order, error) {
	if in.Cart == nil || in.Cart.Empty() {
		return nil, ErrEmptyCart
	}

	var (
		lines    []domain.OrderLine
		subtotal int64
	)
	for _, cl := range in.Cart.Lines {
		item, ok := in.Items[cl.ProductID]
		if !ok {
			return nil, domain.NotFound("checkout.assemble", "product", cl.ProductID.String())
		}

		t := item.Translate("")
		var imageURL string
		if len(item.Images) > 0 {
			imageURL = item.Images[0].ThumbnailURL
		}

		line := domain.OrderLine{
			ProductID:      cl.ProductID,
			Quantity:       cl.Quantity,
			Title:          t.Title,
			ImageURL:       imageURL,
			UnitPriceCents: item.PriceCents,
		}
		lines = append(lines, line)
		subtotal += line.LineTotal()
	}

	pricing := domain.PricingBreakdown{
		SubtotalCents: subtotal,
		ShippingCents: in.Method.CostCents,
		DiscountCents: 0,
		TaxCents:      0, // tax calculation is a placeholder for now
	}
	pricing.TotalCents = pricing.SubtotalCents + pricing.ShippingCents + pricing.TaxCents - pricing.DiscountCents

	order := &domain.Order{
		ID:     in.OrderID,
		Number: domain.FormatOrderNumber(in.Number),
		UserID: in.UserID,

		Lines:   lines,
		Pricing: pricing,

		ShippingAddress: in.Request.ShippingAddress,
		BillingAddress:  in.Request.BillingAddress,
		ShippingMethod:  in.Method.Code,
		PaymentMethod:   in.Request.PaymentMethod,

		PaymentStatus: domain.PaymentPending,
		Status:        domain.OrderPending,

		CreatedAt: in.Now,
		UpdatedAt: in.Now,
	}
	order.AppendHistory(string(domain.OrderPending), "order created", in.Now)

	return order, nil
}
