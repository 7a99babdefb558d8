package shipping_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/shipping"
)

func TestFlatRateProvider_Lookup(t *testing.T) {
	provider := shipping.NewFlatRateProvider(shipping.DefaultMethods())

	method, err := provider.Lookup(context.Background(), "standard")
	require.NoError(t, err)
	assert.Equal(t, "Standard Shipping", method.Label)
	assert.Equal(t, int64(500), method.CostCents)

	method, err = provider.Lookup(context.Background(), "express")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), method.CostCents)
}

func TestFlatRateProvider_Lookup_Unknown(t *testing.T) {
	provider := shipping.NewFlatRateProvider(shipping.DefaultMethods())

	_, err := provider.Lookup(context.Background(), "carrier-pigeon")
	assert.ErrorIs(t, err, shipping.ErrMethodNotFound)
}

func TestFlatRateProvider_Methods_ReturnsCopy(t *testing.T) {
	provider := shipping.NewFlatRateProvider(shipping.DefaultMethods())

	methods, err := provider.Methods(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 2)

	methods[0].CostCents = 999999

	again, err := provider.Methods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), again[0].CostCents, "callers must not mutate provider state")
}
