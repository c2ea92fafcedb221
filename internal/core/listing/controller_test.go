package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/validation"
	"github.com/propdesk/propdesk/internal/logging"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type countingFetcher struct {
	mu    sync.Mutex
	calls []FilterQuery
	total int
	err   error
}

func (f *countingFetcher) FetchPage(ctx context.Context, q FilterQuery) (*property.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if f.err != nil {
		return nil, f.err
	}
	return &property.Page{Items: []property.Property{{Title: q.City}}, Total: f.total}, nil
}

type fetchResult struct {
	page *property.Page
	err  error
}

// gatedFetcher blocks each request until the test releases its key.
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[Key]chan fetchResult
	started chan Key
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: map[Key]chan fetchResult{}, started: make(chan Key, 8)}
}

func (f *gatedFetcher) gate(k Key) chan fetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[k]
	if !ok {
		ch = make(chan fetchResult, 1)
		f.gates[k] = ch
	}
	return ch
}

func (f *gatedFetcher) FetchPage(ctx context.Context, q FilterQuery) (*property.Page, error) {
	k := q.Key()
	f.started <- k
	r := <-f.gate(k)
	return r.page, r.err
}

func (f *gatedFetcher) release(k Key, page *property.Page, err error) {
	f.gate(k) <- fetchResult{page: page, err: err}
}

// callFetcher blocks every call separately, in issue order, so repeated
// requests for one key can be resolved out of order.
type callFetcher struct {
	calls chan chan fetchResult
}

func newCallFetcher() *callFetcher {
	return &callFetcher{calls: make(chan chan fetchResult, 8)}
}

func (f *callFetcher) FetchPage(ctx context.Context, q FilterQuery) (*property.Page, error) {
	ch := make(chan fetchResult, 1)
	f.calls <- ch
	r := <-ch
	return r.page, r.err
}

func TestFilterQuery_KeyIsCanonical(t *testing.T) {
	price := 1000.0
	a := NewFilterQuery()
	a.City = "Hà Nội"
	a.MinPrice = &price

	b := NewFilterQuery()
	b.MinPrice = &price
	b.City = "Hà Nội"

	require.Equal(t, a.Key(), b.Key())

	b.Page = 2
	require.NotEqual(t, a.Key(), b.Key())

	c := a
	other := 1000.5
	c.MinPrice = &other
	require.NotEqual(t, a.Key(), c.Key())
}

func TestFilterQuery_ValuesOmitEmptyFilters(t *testing.T) {
	v := NewFilterQuery().Values()
	require.Equal(t, "page=1&per_page=10", v.Encode())
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 3, TotalPages(25, 10))
	require.Equal(t, 1, TotalPages(0, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 2, TotalPages(11, 10))
}

func TestController_SetFilterFieldDoesNotFetch(t *testing.T) {
	f := &countingFetcher{total: 3}
	c := NewController(f, logging.Discard())

	require.NoError(t, c.SetFilterField(FieldCity, "Da Nang"))
	require.NoError(t, c.SetFilterField(FieldMinPrice, "500"))
	require.Empty(t, f.calls)

	price := 500.0
	want := NewFilterQuery()
	want.City = "Da Nang"
	want.MinPrice = &price

	v := c.Current()
	if diff := cmp.Diff(want, v.Draft); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "", v.Query.City)
	require.Equal(t, StatusIdle, v.Status)
}

func TestController_SetFilterFieldRejectsBadValues(t *testing.T) {
	c := NewController(&countingFetcher{}, logging.Discard())

	err := c.SetFilterField(FieldStatus, "demolished")
	require.True(t, validation.IsValidationError(err))

	err = c.SetFilterField(FieldMaxPrice, "-1")
	require.Equal(t, "Price must be a non-negative number", validation.GetValidationErrors(err).Fields()["max_price"])

	require.NoError(t, c.SetFilterField(FieldMaxPrice, ""))
	require.Nil(t, c.Current().Draft.MaxPrice)
}

func TestController_ApplyFiltersResetsPage(t *testing.T) {
	f := &countingFetcher{total: 45}
	c := NewController(f, logging.Discard())

	c.Load(context.Background())
	_, ok := c.SetPage(context.Background(), 3)
	require.True(t, ok)

	require.NoError(t, c.SetFilterField(FieldCity, "Hue"))
	v := c.ApplyFilters(context.Background())

	require.Equal(t, 1, v.Query.Page)
	require.Equal(t, "Hue", v.Query.City)
	require.Equal(t, StatusReady, v.Status)
	require.Equal(t, "Hue", v.Result.Items[0].Title)
}

func TestController_PaginationBounds(t *testing.T) {
	f := &countingFetcher{total: 25}
	c := NewController(f, logging.Discard())

	v := c.Load(context.Background())
	require.Equal(t, 3, v.TotalPages)

	_, ok := c.SetPage(context.Background(), 4)
	require.False(t, ok)
	_, ok = c.SetPage(context.Background(), 0)
	require.False(t, ok)
	require.Equal(t, 1, c.Current().Query.Page)

	v, ok = c.SetPage(context.Background(), 3)
	require.True(t, ok)
	require.Equal(t, 3, v.Query.Page)
	require.Len(t, f.calls, 2)
}

func TestController_SetPerPage(t *testing.T) {
	f := &countingFetcher{total: 25}
	c := NewController(f, logging.Discard())
	c.Load(context.Background())
	c.SetPage(context.Background(), 2)

	_, err := c.SetPerPage(context.Background(), 15)
	require.Error(t, err)

	v, err := c.SetPerPage(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, 1, v.Query.Page)
	require.Equal(t, 20, v.Query.PerPage)
	require.Equal(t, 2, v.TotalPages)
}

func TestController_EquivalentQueriesShareCache(t *testing.T) {
	f := &countingFetcher{total: 5}
	c := NewController(f, logging.Discard())

	require.NoError(t, c.SetFilterField(FieldCity, "Hue"))
	c.ApplyFilters(context.Background())
	c.ApplyFilters(context.Background())
	require.Len(t, f.calls, 1)

	c.Invalidate()
	v := c.Current()
	require.True(t, v.Stale)
	require.NotNil(t, v.Result)

	v = c.Load(context.Background())
	require.Len(t, f.calls, 2)
	require.Equal(t, StatusReady, v.Status)
	require.False(t, v.Stale)
}

func TestController_ErrorKeepsQueryAndLastResult(t *testing.T) {
	f := &countingFetcher{total: 5}
	c := NewController(f, logging.Discard())
	first := c.Load(context.Background()).Result

	f.err = errors.New("connection refused")
	require.NoError(t, c.SetFilterField(FieldCity, "Vinh"))
	v := c.ApplyFilters(context.Background())

	require.Equal(t, StatusError, v.Status)
	require.Equal(t, "Vinh", v.Query.City)
	require.Same(t, first, v.Result)
	require.ErrorIs(t, v.Err, f.err)

	f.err = nil
	v = c.ApplyFilters(context.Background())
	require.Equal(t, StatusReady, v.Status)
	require.Equal(t, "Vinh", v.Result.Items[0].Title)
}

func TestController_LastRequestWins(t *testing.T) {
	f := newGatedFetcher()
	c := NewController(f, logging.Discard())
	ctx := context.Background()

	p1 := &property.Page{Items: []property.Property{{Title: "K1"}}, Total: 1}
	p2 := &property.Page{Items: []property.Property{{Title: "K2"}}, Total: 1}

	require.NoError(t, c.SetFilterField(FieldCity, "A"))
	done1 := make(chan View, 1)
	go func() { done1 <- c.ApplyFilters(ctx) }()
	k1 := <-f.started

	v := c.Current()
	require.Equal(t, StatusLoading, v.Status)
	require.True(t, v.Fetching)

	require.NoError(t, c.SetFilterField(FieldCity, "B"))
	done2 := make(chan View, 1)
	go func() { done2 <- c.ApplyFilters(ctx) }()
	k2 := <-f.started
	require.NotEqual(t, k1, k2)

	f.release(k2, p2, nil)
	v = <-done2
	require.Same(t, p2, v.Result)

	f.release(k1, p1, nil)
	<-done1

	v = c.Current()
	require.Equal(t, StatusReady, v.Status)
	require.Same(t, p2, v.Result)
	require.Equal(t, "B", v.Query.City)
	require.False(t, v.Fetching)
}

func TestController_SameKeyReissueNewestWins(t *testing.T) {
	ctx := context.Background()
	fresh := &property.Page{Items: []property.Property{{Title: "fresh"}}, Total: 3}
	old := &property.Page{Items: []property.Property{{Title: "old"}}, Total: 3}

	tests := []struct {
		name       string
		resolveNew bool
		older      fetchResult
	}{
		{name: "older failure resolves first", older: fetchResult{err: errors.New("boom")}},
		{name: "older failure resolves last", resolveNew: true, older: fetchResult{err: errors.New("boom")}},
		{name: "older success resolves last", resolveNew: true, older: fetchResult{page: old}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCallFetcher()
			c := NewController(f, logging.Discard())

			done1 := make(chan View, 1)
			go func() { done1 <- c.Refresh(ctx) }()
			first := <-f.calls
			done2 := make(chan View, 1)
			go func() { done2 <- c.Refresh(ctx) }()
			second := <-f.calls

			if tt.resolveNew {
				second <- fetchResult{page: fresh}
				<-done2
				first <- tt.older
				<-done1
			} else {
				first <- tt.older
				<-done1
				second <- fetchResult{page: fresh}
				<-done2
			}

			v := c.Current()
			require.Equal(t, StatusReady, v.Status)
			require.NoError(t, v.Err)
			require.Empty(t, v.Error)
			require.Same(t, fresh, v.Result)
			require.False(t, v.Stale)
			require.False(t, v.Fetching)
		})
	}
}

func TestController_SupersededFailureDoesNotShowError(t *testing.T) {
	ctx := context.Background()
	f := newCallFetcher()
	c := NewController(f, logging.Discard())

	require.NoError(t, c.SetFilterField(FieldCity, "A"))
	done1 := make(chan View, 1)
	go func() { done1 <- c.ApplyFilters(ctx) }()
	first := <-f.calls

	require.NoError(t, c.SetFilterField(FieldCity, "B"))
	done2 := make(chan View, 1)
	go func() { done2 <- c.ApplyFilters(ctx) }()
	second := <-f.calls

	p := &property.Page{Total: 1}
	second <- fetchResult{page: p}
	<-done2
	first <- fetchResult{err: errors.New("timeout")}
	<-done1

	v := c.Current()
	require.Equal(t, StatusReady, v.Status)
	require.Same(t, p, v.Result)
}

func TestController_PagingWaitsForActiveFilters(t *testing.T) {
	f := &countingFetcher{total: 25}
	c := NewController(f, logging.Discard())
	ctx := context.Background()
	require.Equal(t, 3, c.Load(ctx).TotalPages)

	f.err = errors.New("connection refused")
	require.NoError(t, c.SetFilterField(FieldCity, "Vinh"))
	v := c.ApplyFilters(ctx)
	require.Equal(t, StatusError, v.Status)
	require.Equal(t, 1, v.TotalPages)

	_, ok := c.SetPage(ctx, 2)
	require.False(t, ok)
	require.Equal(t, 1, c.Current().Query.Page)

	f.err = nil
	f.total = 45
	v = c.ApplyFilters(ctx)
	require.Equal(t, 5, v.TotalPages)
	_, ok = c.SetPage(ctx, 5)
	require.True(t, ok)
}

func TestController_InvalidateDropsInFlightResponse(t *testing.T) {
	ctx := context.Background()
	f := newCallFetcher()
	c := NewController(f, logging.Discard())

	done := make(chan View, 1)
	go func() { done <- c.Load(ctx) }()
	call := <-f.calls
	c.Invalidate()

	call <- fetchResult{page: &property.Page{Total: 1}}
	v := <-done
	require.NotNil(t, v.Result)

	c.mu.Lock()
	require.Empty(t, c.pages)
	c.mu.Unlock()
}

func TestController_StaleResultShownWhileLoading(t *testing.T) {
	f := newGatedFetcher()
	c := NewController(f, logging.Discard())
	ctx := context.Background()

	p1 := &property.Page{Total: 30}
	go c.Load(ctx)
	f.release(<-f.started, p1, nil)
	require.Eventually(t, func() bool { return c.Current().Status == StatusReady }, timeout, tick)

	done := make(chan struct{})
	go func() {
		c.SetPage(ctx, 2)
		close(done)
	}()
	k := <-f.started

	v := c.Current()
	require.Equal(t, StatusLoading, v.Status)
	require.Same(t, p1, v.Result)
	require.True(t, v.Stale)
	require.Equal(t, 2, v.Query.Page)

	p2 := &property.Page{Total: 30}
	f.release(k, p2, nil)
	<-done
	require.Same(t, p2, c.Current().Result)
}

func TestController_CacheIsBounded(t *testing.T) {
	f := &countingFetcher{total: 1}
	c := NewController(f, logging.Discard())

	for i := 0; i <= maxCachedPages; i++ {
		q := NewFilterQuery()
		q.PerPage = 10 + i
		c.activate(context.Background(), q, false)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.pages, maxCachedPages)
	require.Len(t, c.order, maxCachedPages)
}
