// Package scroll coordinates incremental catalog loading for an
// infinite-scroll surface: one page at a time, one fetch in flight, stale
// results discarded after a reset.
package scroll

import (
	"context"
	"sync"

	"github.com/atelierhq/atelier/internal/domain"
)

// State is the coordinator's loading state.
type State string

const (
	// StateIdle means the current pages are loaded and more may exist.
	StateIdle State = "idle"

	// StateLoadingInitial means the first page is being fetched.
	StateLoadingInitial State = "loading_initial"

	// StateLoadingMore means a follow-up page is being fetched.
	StateLoadingMore State = "loading_more"

	// StateExhausted means every page has been loaded.
	StateExhausted State = "exhausted"

	// StateErrored means the last fetch failed; Retry re-runs it.
	StateErrored State = "errored"
)

// Fetcher loads one catalog page. An empty cursor requests the first page.
type Fetcher func(ctx context.Context, cursor string) (*domain.CatalogPage, error)

// Coordinator accumulates catalog pages. At most one fetch is outstanding at
// a time; calls that would start a second one are no-ops. Reset invalidates
// any in-flight fetch, whose result is then discarded.
type Coordinator struct {
	fetch Fetcher

	mu         sync.Mutex
	state      State
	items      []domain.CatalogItem
	nextCursor string
	lastErr    error

	// generation tags each accepted sequence of fetches; a completed fetch
	// whose generation no longer matches is stale.
	generation uint64

	// retry parameters captured when a fetch fails
	retryCursor  string
	retryInitial bool
}

// NewCoordinator creates an idle Coordinator.
func NewCoordinator(fetch Fetcher) *Coordinator {
	return &Coordinator{fetch: fetch, state: StateIdle}
}

// State returns the current loading state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns a copy of everything loaded so far, in page order.
func (c *Coordinator) Items() []domain.CatalogItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Err returns the error from the last failed fetch, nil otherwise.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Reset returns the coordinator to idle with no items. Any in-flight fetch
// is invalidated and its result discarded.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateIdle
	c.items = nil
	c.nextCursor = ""
	c.lastErr = nil
}

// LoadInitial fetches the first page, discarding anything loaded before.
// A no-op while another fetch is outstanding.
func (c *Coordinator) LoadInitial(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateLoadingInitial || c.state == StateLoadingMore {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	c.state = StateLoadingInitial
	c.items = nil
	c.nextCursor = ""
	c.lastErr = nil
	c.mu.Unlock()

	page, err := c.fetch(ctx, "")
	return c.complete(gen, "", true, page, err)
}

// LoadMore fetches the next page. A no-op unless the coordinator is idle:
// exhausted and errored states never fetch (errored requires Retry), and an
// outstanding fetch is never doubled.
func (c *Coordinator) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil
	}
	if len(c.items) == 0 && c.nextCursor == "" {
		// Nothing loaded yet; the first page goes through LoadInitial.
		c.mu.Unlock()
		return c.LoadInitial(ctx)
	}
	gen := c.generation
	cursor := c.nextCursor
	c.state = StateLoadingMore
	c.mu.Unlock()

	page, err := c.fetch(ctx, cursor)
	return c.complete(gen, cursor, false, page, err)
}

// Retry re-runs the last failed fetch. A no-op unless the coordinator is
// errored.
func (c *Coordinator) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateErrored {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	cursor := c.retryCursor
	initial := c.retryInitial
	c.lastErr = nil
	if initial {
		c.state = StateLoadingInitial
	} else {
		c.state = StateLoadingMore
	}
	c.mu.Unlock()

	page, err := c.fetch(ctx, cursor)
	return c.complete(gen, cursor, initial, page, err)
}

// complete folds a finished fetch into the coordinator. Results from an
// invalidated generation are dropped on the floor.
func (c *Coordinator) complete(gen uint64, cursor string, initial bool, page *domain.CatalogPage, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return nil
	}

	if err != nil {
		c.state = StateErrored
		c.lastErr = err
		c.retryCursor = cursor
		c.retryInitial = initial
		return err
	}

	if initial {
		c.items = page.Items
	} else {
		c.items = append(c.items, page.Items...)
	}
	c.nextCursor = page.NextCursor
	c.lastErr = nil

	if page.Exhausted() {
		c.state = StateExhausted
	} else {
		c.state = StateIdle
	}
	return nil
}
