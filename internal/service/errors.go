package service

import (
	"github.com/atelierhq/atelier/internal/domain"
)

// Catalog errors - use domain.ENOTFOUND
var (
	ErrProductNotFound = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
)

// Cart errors
var (
	ErrCartLineNotFound = domain.ErrCartLineNotFound
	ErrInvalidQuantity  = domain.ErrInvalidQuantity
)

// Checkout errors
var (
	ErrOrderNotFound         = domain.ErrOrderNotFound
	ErrEmptyCart             = domain.ErrEmptyCart
	ErrIncompleteAddress     = domain.Errorf(domain.EINVALID, "", "Shipping and billing addresses must be complete")
	ErrUnknownShippingMethod = domain.Errorf(domain.EINVALID, "", "Unknown shipping method")
	ErrCheckoutFailed        = domain.Errorf(domain.ECONFLICT, "", "Checkout could not be completed, no order was created")
)
