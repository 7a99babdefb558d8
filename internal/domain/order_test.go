package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/domain"
)

func TestCanTransitionPayment(t *testing.T) {
	tests := []struct {
		from domain.PaymentStatus
		to   domain.PaymentStatus
		want bool
	}{
		{domain.PaymentPending, domain.PaymentPaid, true},
		{domain.PaymentPending, domain.PaymentFailed, true},
		{domain.PaymentPending, domain.PaymentRefunded, false},
		{domain.PaymentPaid, domain.PaymentRefunded, true},
		{domain.PaymentPaid, domain.PaymentPending, false},
		{domain.PaymentPaid, domain.PaymentFailed, false},
		{domain.PaymentFailed, domain.PaymentPaid, false},
		{domain.PaymentFailed, domain.PaymentPending, false},
		{domain.PaymentRefunded, domain.PaymentPaid, false},
	}

	for _, tt := range tests {
		got := domain.CanTransitionPayment(tt.from, tt.to)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_TransitionPayment_AppendsHistory(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	order := &domain.Order{
		PaymentStatus: domain.PaymentPending,
		Status:        domain.OrderPending,
	}

	require.NoError(t, order.TransitionPayment(domain.PaymentPaid, "sim_ref", now))

	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, domain.OrderConfirmed, order.Status, "payment confirms a pending order")
	require.Len(t, order.History, 2)
	assert.Equal(t, "payment:paid", order.History[0].Status)
	assert.Equal(t, "sim_ref", order.History[0].Note)
	assert.Equal(t, "confirmed", order.History[1].Status)
}

func TestOrder_TransitionPayment_FailureDoesNotConfirm(t *testing.T) {
	order := &domain.Order{
		PaymentStatus: domain.PaymentPending,
		Status:        domain.OrderPending,
	}

	require.NoError(t, order.TransitionPayment(domain.PaymentFailed, "card declined", time.Now()))

	assert.Equal(t, domain.PaymentFailed, order.PaymentStatus)
	assert.Equal(t, domain.OrderPending, order.Status)
	require.Len(t, order.History, 1)
}

func TestOrder_TransitionPayment_PaidDoesNotReconfirmShippedOrder(t *testing.T) {
	order := &domain.Order{
		PaymentStatus: domain.PaymentPending,
		Status:        domain.OrderShipped,
	}

	require.NoError(t, order.TransitionPayment(domain.PaymentPaid, "", time.Now()))

	assert.Equal(t, domain.OrderShipped, order.Status, "fulfillment status is independent")
}

func TestOrder_TransitionPayment_IllegalMove(t *testing.T) {
	order := &domain.Order{
		PaymentStatus: domain.PaymentRefunded,
		Status:        domain.OrderConfirmed,
	}

	err := order.TransitionPayment(domain.PaymentPaid, "", time.Now())
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Empty(t, order.History, "failed transitions never write history")
	assert.Equal(t, domain.PaymentRefunded, order.PaymentStatus)
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "#1001", domain.FormatOrderNumber(1001))
	assert.Equal(t, "#1", domain.FormatOrderNumber(1))
}
