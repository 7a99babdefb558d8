package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// memTx buffers a transaction's writes. The counter version observed at read
// time is validated at commit; a mismatch aborts with store.ErrConflict and
// the runner retries the callback.
type memTx struct {
	s *Store

	counterRead bool
	counterVer  uint64
	counterNext int64

	orders []domain.Order
	stats  []statDelta
}

type statDelta struct {
	userID     string
	orders     int64
	spentCents int64
}

// NextOrderNumber reads and increments the shared counter, buffering the
// write. Bootstraps at the store base on first use.
func (tx *memTx) NextOrderNumber(ctx context.Context) (int64, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	current := tx.s.base
	if tx.s.counterSet {
		current = tx.s.counter
	}

	tx.counterRead = true
	tx.counterVer = tx.s.counterVer
	tx.counterNext = current + 1

	return tx.counterNext, nil
}

// InsertOrder buffers an order write.
func (tx *memTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	tx.orders = append(tx.orders, cloneOrder(*order))
	return nil
}

// AddCustomerStats buffers a stats increment.
func (tx *memTx) AddCustomerStats(ctx context.Context, userID string, orders int64, spentCents int64) error {
	tx.stats = append(tx.stats, statDelta{userID: userID, orders: orders, spentCents: spentCents})
	return nil
}

// commit validates the counter version and applies buffered writes.
func (tx *memTx) commit() error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	if tx.counterRead && tx.counterVer != tx.s.counterVer {
		return store.ErrConflict
	}

	if tx.counterRead {
		tx.s.counter = tx.counterNext
		tx.s.counterSet = true
		tx.s.counterVer++
	}

	now := tx.s.now()
	for i := range tx.orders {
		o := cloneOrder(tx.orders[i])
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
			o.UpdatedAt = now
		}
		tx.s.orders[o.ID] = o
	}

	for _, d := range tx.stats {
		st := tx.s.stats[d.userID]
		st.UserID = d.userID
		st.TotalOrders += d.orders
		st.TotalSpentCents += d.spentCents
		st.UpdatedAt = now
		tx.s.stats[d.userID] = st
	}

	return nil
}

// RunTransaction executes fn with buffered writes and optimistic conflict
// detection on the counter, retrying up to the configured bound.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx := &memTx{s: s}
		if err := fn(ctx, tx); err != nil {
			return err
		}

		err := tx.commit()
		if err == nil {
			return nil
		}
		if err != store.ErrConflict {
			return err
		}
	}

	return store.ErrRetriesExhausted
}

// GetOrder returns an order by ID.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := cloneOrder(o)
	return &cp, nil
}

// ListOrdersByUser returns a user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, cloneOrder(o))
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].Number > orders[j].Number
	})

	return orders, nil
}

// TransitionPayment applies a guarded payment-status transition atomically.
func (s *Store) TransitionPayment(ctx context.Context, orderID uuid.UUID, to domain.PaymentStatus, note string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}

	cp := cloneOrder(o)
	if err := cp.TransitionPayment(to, note, s.now()); err != nil {
		return nil, err
	}

	s.orders[orderID] = cloneOrder(cp)
	return &cp, nil
}

// GetCustomerStats returns the user's stats, zero-valued if absent.
func (s *Store) GetCustomerStats(ctx context.Context, userID string) (*domain.CustomerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stats[userID]
	if !ok {
		return &domain.CustomerStats{UserID: userID}, nil
	}
	cp := st
	return &cp, nil
}

// CurrentOrderNumber returns the last issued counter value without consuming
// one; the base value if the counter has not bootstrapped yet.
func (s *Store) CurrentOrderNumber(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.counterSet {
		return s.base, nil
	}
	return s.counter, nil
}

func cloneOrder(o domain.Order) domain.Order {
	cp := o
	cp.Lines = append([]domain.OrderLine(nil), o.Lines...)
	cp.History = append([]domain.StatusEntry(nil), o.History...)
	return cp
}
