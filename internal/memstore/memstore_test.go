package memstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/memstore"
	"github.com/atelierhq/atelier/internal/store"
)

func TestStore_NextOrderNumber_BootstrapsAtBase(t *testing.T) {
	st := memstore.New(1000)
	ctx := context.Background()

	current, err := st.CurrentOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), current)

	var issued int64
	err = st.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		n, err := tx.NextOrderNumber(ctx)
		issued = n
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), issued)

	current, err = st.CurrentOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), current)
}

func TestStore_RunTransaction_ConcurrentCountersNeverCollide(t *testing.T) {
	const writers = 32

	st := memstore.New(1000, memstore.WithMaxRetries(200))
	ctx := context.Background()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		issued = make(map[int64]bool)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
				n, err := tx.NextOrderNumber(ctx)
				if err != nil {
					return err
				}
				mu.Lock()
				assert.False(t, issued[n], "number %d issued twice", n)
				issued[n] = true
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The callback may run multiple times; only committed numbers count.
	current, err := st.CurrentOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000+writers), current)
}

func TestStore_RunTransaction_CallbackErrorAbortsWithoutWrites(t *testing.T) {
	st := memstore.New(1000)
	ctx := context.Background()

	wantErr := domain.ErrEmptyCart
	err := st.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.NextOrderNumber(ctx); err != nil {
			return err
		}
		if err := tx.InsertOrder(ctx, &domain.Order{ID: uuid.New(), UserID: "user-1"}); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// Nothing committed: counter untouched, no orders visible.
	current, err := st.CurrentOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), current)

	orders, err := st.ListOrdersByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStore_RunTransaction_RetriesExhausted(t *testing.T) {
	st := memstore.New(1000, memstore.WithMaxRetries(3))
	ctx := context.Background()

	attempts := 0
	err := st.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		attempts++
		if _, err := tx.NextOrderNumber(ctx); err != nil {
			return err
		}
		// Force a conflict on every attempt by committing a competing
		// transaction after the read.
		return st.RunTransaction(ctx, func(ctx context.Context, inner store.Tx) error {
			_, err := inner.NextOrderNumber(ctx)
			return err
		})
	})

	require.ErrorIs(t, err, store.ErrRetriesExhausted)
	assert.Equal(t, 3, attempts)
}

func TestStore_TransitionPayment_GuardsIllegalMoves(t *testing.T) {
	st := memstore.New(1000)
	ctx := context.Background()

	order := &domain.Order{
		ID:            uuid.New(),
		Number:        "#1001",
		UserID:        "user-1",
		PaymentStatus: domain.PaymentPending,
		Status:        domain.OrderPending,
		CreatedAt:     time.Now(),
	}
	err := st.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.InsertOrder(ctx, order)
	})
	require.NoError(t, err)

	paid, err := st.TransitionPayment(ctx, order.ID, domain.PaymentPaid, "sim_ref")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, domain.OrderConfirmed, paid.Status)

	// paid -> failed is illegal and leaves the order untouched.
	_, err = st.TransitionPayment(ctx, order.ID, domain.PaymentFailed, "")
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))

	stored, err := st.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)

	refunded, err := st.TransitionPayment(ctx, order.ID, domain.PaymentRefunded, "customer return")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, refunded.PaymentStatus)
}

func TestStore_QueryPage_AppliesCursor(t *testing.T) {
	st := memstore.New(1000)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var all []domain.CatalogItem
	for i := 0; i < 5; i++ {
		pub := base.Add(-time.Duration(i) * time.Hour)
		item := domain.CatalogItem{
			ID:           uuid.New(),
			Category:     domain.CategoryPrint,
			Translations: map[string]domain.Translation{"en": {Title: "Print"}},
			FallbackLang: "en",
			PriceCents:   1200,
			Status:       domain.ItemStatusAvailable,
			PublishedAt:  &pub,
			CreatedAt:    pub,
		}
		require.NoError(t, st.PutItem(ctx, &item))
		all = append(all, item)
	}

	first, err := st.QueryPage(ctx, domain.CatalogQuery{
		Filters: domain.CatalogFilters{PublishedOnly: true},
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, first, 2)

	after := domain.CursorKey{
		PublishedAt: *first[1].PublishedAt,
		CreatedAt:   first[1].CreatedAt,
		ID:          first[1].ID,
	}
	rest, err := st.QueryPage(ctx, domain.CatalogQuery{
		Filters: domain.CatalogFilters{PublishedOnly: true},
		After:   &after,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, rest, 3)

	// No overlap between pages.
	seen := map[uuid.UUID]bool{first[0].ID: true, first[1].ID: true}
	for _, item := range rest {
		assert.False(t, seen[item.ID])
	}
}
