package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/validation"
)

// maxCachedPages bounds the per-controller result cache; oldest keys go first.
const maxCachedPages = 32

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

type Fetcher interface {
	FetchPage(ctx context.Context, q FilterQuery) (*property.Page, error)
}

type FetcherFunc func(ctx context.Context, q FilterQuery) (*property.Page, error)

func (f FetcherFunc) FetchPage(ctx context.Context, q FilterQuery) (*property.Page, error) {
	return f(ctx, q)
}

// View is what the listing page renders.
type View struct {
	Query      FilterQuery    `json:"query"`
	Draft      FilterQuery    `json:"draft"`
	Status     Status         `json:"status"`
	Fetching   bool           `json:"fetching"`
	Result     *property.Page `json:"result,omitempty"`
	Stale      bool           `json:"stale"`
	TotalPages int            `json:"total_pages"`
	Error      string         `json:"error,omitempty"`
	Err        error          `json:"-"`
}

// Controller owns the listing query state of one browser session. Every
// fetch gets a sequence number; only the most recently issued one may change
// what is displayed, so responses to superseded requests are cached but
// never shown.
type Controller struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu         sync.Mutex
	draft      FilterQuery
	active     FilterQuery
	activeKey  Key
	pages      map[Key]cachedPage
	order      []Key
	pending    map[Key]int
	seq        uint64
	floor      uint64
	shown      *property.Page
	shownQuery FilterQuery
	err        error
}

type cachedPage struct {
	page *property.Page
	seq  uint64
}

func NewController(fetcher Fetcher, logger *slog.Logger) *Controller {
	q := NewFilterQuery()
	return &Controller{
		fetcher:   fetcher,
		logger:    logger.With("component", "listing"),
		draft:     q,
		active:    q,
		activeKey: q.Key(),
		pages:     make(map[Key]cachedPage),
		pending:   make(map[Key]int),
	}
}

// SetFilterField edits the draft only; nothing is fetched until ApplyFilters.
func (c *Controller) SetFilterField(field Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.set(field, value)
}

// ApplyFilters makes the draft filters active and returns to page 1.
func (c *Controller) ApplyFilters(ctx context.Context) View {
	c.mu.Lock()
	q := c.active.withFilters(c.draft)
	q.Page = 1
	c.draft.Page = 1
	c.mu.Unlock()

	return c.activate(ctx, q, false)
}

// SetPage moves to page n of the active query. Pages outside
// [1, TotalPages] are refused and the state is left untouched.
func (c *Controller) SetPage(ctx context.Context, n int) (View, bool) {
	c.mu.Lock()
	if n < 1 || n > c.totalPagesLocked() {
		c.mu.Unlock()
		return c.Current(), false
	}
	q := c.active
	q.Page = n
	c.draft.Page = n
	c.mu.Unlock()

	return c.activate(ctx, q, false), true
}

func (c *Controller) SetPerPage(ctx context.Context, n int) (View, error) {
	if !ValidPerPage(n) {
		return c.Current(), validation.Field("per_page", "Unsupported page size")
	}

	c.mu.Lock()
	q := c.active
	q.PerPage = n
	q.Page = 1
	c.draft.PerPage = n
	c.draft.Page = 1
	c.mu.Unlock()

	return c.activate(ctx, q, false), nil
}

// Load fetches the active query if it has no result yet and no request for
// it is outstanding.
func (c *Controller) Load(ctx context.Context) View {
	c.mu.Lock()
	_, cached := c.pages[c.activeKey]
	busy := c.pending[c.activeKey] > 0
	q := c.active
	c.mu.Unlock()

	if cached || busy {
		return c.Current()
	}
	return c.activate(ctx, q, true)
}

// Refresh refetches the active query even when a cached result exists.
func (c *Controller) Refresh(ctx context.Context) View {
	c.mu.Lock()
	q := c.active
	c.mu.Unlock()
	return c.activate(ctx, q, true)
}

// Invalidate drops every cached result. The displayed result stays visible
// until the next fetch replaces it. Responses to requests issued before the
// call are not cached.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[Key]cachedPage)
	c.order = nil
	c.floor = c.seq
}

func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) activate(ctx context.Context, q FilterQuery, force bool) View {
	key := q.Key()

	c.mu.Lock()
	c.active = q
	c.activeKey = key
	c.err = nil
	c.seq++
	seq := c.seq
	if cached, ok := c.pages[key]; ok && !force {
		c.show(q, cached.page)
		c.mu.Unlock()
		return c.Current()
	}
	c.pending[key]++
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, q)
	c.resolve(seq, q, page, err)
	return c.Current()
}

func (c *Controller) resolve(seq uint64, q FilterQuery, page *property.Page, err error) {
	key := q.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending[key]--; c.pending[key] <= 0 {
		delete(c.pending, key)
	}

	if err == nil && page == nil {
		err = errors.New("empty listing response")
	}
	if err == nil {
		c.store(key, page, seq)
	}

	if seq != c.seq {
		c.logger.Debug("discarding superseded listing response", "key", string(key), "error", err)
		return
	}
	if err != nil {
		c.err = err
		c.logger.Warn("listing fetch failed", "key", string(key), "error", err)
		return
	}
	c.err = nil
	c.show(q, page)
}

func (c *Controller) show(q FilterQuery, page *property.Page) {
	c.shown = page
	c.shownQuery = q
}

// store keeps the newest response per key. Responses older than the last
// invalidation or than the cached entry are dropped.
func (c *Controller) store(key Key, page *property.Page, seq uint64) {
	if seq <= c.floor {
		return
	}
	cached, ok := c.pages[key]
	if ok && cached.seq > seq {
		return
	}
	if !ok {
		c.order = append(c.order, key)
	}
	c.pages[key] = cachedPage{page: page, seq: seq}
	for len(c.order) > maxCachedPages {
		delete(c.pages, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *Controller) viewLocked() View {
	v := View{
		Query:    c.active,
		Draft:    c.draft,
		Fetching: c.pending[c.activeKey] > 0,
	}

	cached, ready := c.pages[c.activeKey]
	page := cached.page
	switch {
	case c.err != nil:
		v.Status = StatusError
		v.Err = c.err
		v.Error = c.err.Error()
		v.Result = c.shown
		v.Stale = c.shown != nil
	case ready && page == c.shown:
		v.Status = StatusReady
		v.Result = page
	case c.shown != nil:
		// Previous result stays on screen while the new key loads.
		v.Status = StatusLoading
		if !v.Fetching {
			v.Status = StatusReady
		}
		v.Result = c.shown
		v.Stale = true
	case v.Fetching:
		v.Status = StatusLoading
	default:
		v.Status = StatusIdle
	}

	v.TotalPages = c.totalPagesLocked()
	return v
}

// totalPagesLocked bounds paging by the displayed total, and only while that
// result belongs to the active filters. Until the active filters have a
// result only page 1 exists.
func (c *Controller) totalPagesLocked() int {
	if c.shown == nil || !sameFilters(c.shownQuery, c.active) {
		return 1
	}
	return TotalPages(c.shown.Total, c.active.PerPage)
}
