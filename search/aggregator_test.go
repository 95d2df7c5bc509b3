package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinewheel/geo"
	"dinewheel/places"
)

// fakeProvider scripts provider responses per query and records every
// call.
type fakeProvider struct {
	mu sync.Mutex

	textPages   map[string][]places.Page // query -> pages in order
	nearbyPages []places.Page
	textErrs    map[string]error
	details     map[string]places.Place

	textCalls   []places.TextSearchRequest
	nearbyCalls int
	detailCalls int

	// entered is closed on the first provider call, blocked releases it
	entered chan struct{}
	blocked chan struct{}
	once    sync.Once
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		textPages: make(map[string][]places.Page),
		textErrs:  make(map[string]error),
		details:   make(map[string]places.Place),
	}
}

func (f *fakeProvider) block(ctx context.Context) {
	if f.entered == nil {
		return
	}

	f.once.Do(func() { close(f.entered) })

	select {
	case <-f.blocked:
	case <-ctx.Done():
	}
}

func (f *fakeProvider) TextSearch(ctx context.Context, req places.TextSearchRequest) (places.Page, error) {
	f.block(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.textCalls = append(f.textCalls, req)

	if err, ok := f.textErrs[req.Query]; ok {
		return places.Page{}, err
	}

	pages := f.textPages[req.Query]
	if len(pages) == 0 {
		return places.Page{}, nil
	}

	if req.PageToken == "" {
		return pages[0], nil
	}

	for i, p := range pages {
		if p.NextPageToken == req.PageToken && i+1 < len(pages) {
			return pages[i+1], nil
		}
	}

	return places.Page{}, nil
}

func (f *fakeProvider) SearchNearby(ctx context.Context, _ places.NearbySearchRequest) (places.Page, error) {
	f.block(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nearbyCalls++

	if len(f.nearbyPages) == 0 {
		return places.Page{}, nil
	}

	page := f.nearbyPages[0]
	if len(f.nearbyPages) > 1 {
		f.nearbyPages = f.nearbyPages[1:]
	}

	return page, nil
}

func (f *fakeProvider) Details(_ context.Context, id string) (places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.detailCalls++

	if d, ok := f.details[id]; ok {
		return d, nil
	}

	return places.Place{}, errors.New("not found")
}

func (f *fakeProvider) textCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.textCalls)
}

func place(id, name string, lat, lng float64) places.Place {
	return places.Place{
		ID:       id,
		Name:     name,
		Location: geo.Coordinate{Latitude: lat, Longitude: lng},
	}
}

func testAggregator(p Provider) *Aggregator {
	a := NewAggregator(p, slog.New(slog.NewTextHandler(testWriter{}, nil)))
	a.pageDelay = time.Millisecond

	return a
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func pizzaCriteria() Criteria {
	return Criteria{
		Cuisine:     "Pizza",
		RadiusMiles: 5,
		Origin:      geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
	}
}

func TestAggregateRunsBothTextStrategies(t *testing.T) {
	f := newFakeProvider()
	f.textPages["Pizza restaurants"] = []places.Page{{Places: []places.Place{place("a", "A Pizza", 40.713, -74.006)}}}
	f.textPages["Pizza"] = []places.Page{{Places: []places.Place{place("b", "B Pizza", 40.714, -74.007)}}}

	got, err := testAggregator(f).Aggregate(context.Background(), pizzaCriteria())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	// strategy 2 runs even though strategy 1 yielded results
	queries := make([]string, 0, len(f.textCalls))
	for _, c := range f.textCalls {
		queries = append(queries, c.Query)
	}
	assert.Contains(t, queries, "Pizza restaurants")
	assert.Contains(t, queries, "Pizza")

	// no results, so the nearby fallback must not fire
	assert.Zero(t, f.nearbyCalls)
}

func TestAggregatePaginationDrain(t *testing.T) {
	f := newFakeProvider()
	f.textPages["Pizza restaurants"] = []places.Page{
		{Places: []places.Place{place("p1", "One", 40.71, -74)}, NextPageToken: "t1"},
		{Places: []places.Place{place("p2", "Two", 40.72, -74)}, NextPageToken: "t2"},
		{Places: []places.Place{place("p3", "Three", 40.73, -74)}, NextPageToken: "t3"},
		{Places: []places.Place{place("p4", "Four", 40.74, -74)}, NextPageToken: ""},
	}

	got, err := testAggregator(f).Aggregate(context.Background(), pizzaCriteria())
	require.NoError(t, err)

	// page limit 3 stops the drain even though a fourth page exists
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
}

func TestAggregateNearbyFallbackOnlyWhenEmpty(t *testing.T) {
	f := newFakeProvider()
	f.nearbyPages = []places.Page{{Places: []places.Place{place("n1", "Nearby Diner", 40.71, -74)}}}

	got, err := testAggregator(f).Aggregate(context.Background(), pizzaCriteria())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, 1, f.nearbyCalls)
}

func TestAggregateBurgerChainBooster(t *testing.T) {
	f := newFakeProvider()
	f.textPages["Burgers restaurants"] = []places.Page{{Places: []places.Place{place("b1", "Patty Place", 40.71, -74)}}}
	f.textPages["five guys"] = []places.Page{{Places: []places.Place{place("fg", "Five Guys", 40.72, -74)}}}
	f.textPages["shake shack"] = []places.Page{{Places: []places.Place{place("ss", "Shake Shack", 40.73, -74)}}}

	crit := pizzaCriteria()
	crit.Cuisine = "burgers" // case-insensitive match

	got, err := testAggregator(f).Aggregate(context.Background(), crit)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"b1", "fg", "ss"}, ids)

	var chainQueries int
	for _, c := range f.textCalls {
		for _, chain := range burgerChains {
			if c.Query == chain {
				chainQueries++
				break
			}
		}
	}
	assert.Equal(t, len(burgerChains), chainQueries, "every chain gets one query")
}

func TestAggregateBoosterSkippedWhenEnoughResults(t *testing.T) {
	f := newFakeProvider()

	var many []places.Place
	for i := 0; i < chainBoostThreshold; i++ {
		many = append(many, place(string(rune('a'+i)), "Burger Spot", 40.71, -74))
	}
	f.textPages["Burgers restaurants"] = []places.Page{{Places: many}}

	crit := pizzaCriteria()
	crit.Cuisine = "Burgers"

	_, err := testAggregator(f).Aggregate(context.Background(), crit)
	require.NoError(t, err)

	for _, c := range f.textCalls {
		assert.False(t, strings.Contains(c.Query, "guys"), "booster must not run")
	}
}

func TestAggregateStrategyFailureIsNonFatal(t *testing.T) {
	f := newFakeProvider()
	f.textErrs["Pizza restaurants"] = places.ErrQuotaExceeded
	f.textPages["Pizza"] = []places.Page{{Places: []places.Place{place("ok", "Survivor Pizza", 40.71, -74)}}}

	got, err := testAggregator(f).Aggregate(context.Background(), pizzaCriteria())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].ID)
}

func TestAggregateDeduplicatesAcrossStrategies(t *testing.T) {
	f := newFakeProvider()
	shared := place("dup", "Same Pizza", 40.71, -74)
	f.textPages["Pizza restaurants"] = []places.Page{{Places: []places.Place{shared, place("a", "A", 40.72, -74)}}}
	f.textPages["Pizza"] = []places.Page{{Places: []places.Place{shared, place("b", "B", 40.73, -74)}}}

	got, err := testAggregator(f).Aggregate(context.Background(), pizzaCriteria())
	require.NoError(t, err)

	assert.Len(t, got, 3)
	assert.Equal(t, "dup", got[0].ID, "first occurrence wins")
}

func TestDedupeIdempotent(t *testing.T) {
	a := []places.Place{place("1", "A", 0, 0), place("2", "B", 0, 0)}
	b := []places.Place{place("2", "B", 0, 0), place("3", "C", 0, 0)}

	merged := dedupe(append(append([]places.Place{}, a...), b...))
	again := dedupe(merged)

	assert.Equal(t, merged, again)
	assert.Len(t, merged, 3)
}

func TestAggregateOpenNowDropsExplicitlyClosed(t *testing.T) {
	open, closed := true, false

	pOpen := place("open", "Open Pizza", 40.71, -74)
	pOpen.OpenNow = &open
	pClosed := place("closed", "Closed Pizza", 40.72, -74)
	pClosed.OpenNow = &closed
	pUnknown := place("unknown", "Mystery Pizza", 40.73, -74)

	f := newFakeProvider()
	f.textPages["Pizza restaurants"] = []places.Page{{Places: []places.Place{pOpen, pClosed, pUnknown}}}

	crit := pizzaCriteria()
	crit.OpenNowOnly = true

	got, err := testAggregator(f).Aggregate(context.Background(), crit)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"open", "unknown"}, ids, "unknown open state passes")
}

func TestAggregateCancellationReturnsPartial(t *testing.T) {
	f := newFakeProvider()
	f.textPages["Pizza restaurants"] = []places.Page{
		{Places: []places.Place{place("p1", "One", 40.71, -74)}, NextPageToken: "t1"},
		{Places: []places.Place{place("p2", "Two", 40.72, -74)}},
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := NewAggregator(f, slog.New(slog.NewTextHandler(testWriter{}, nil)))
	a.pageDelay = time.Hour // cancellation must interrupt the inter-page wait

	done := make(chan struct{})

	var (
		got []places.Place
		err error
	)

	go func() {
		defer close(done)
		got, err = a.Aggregate(ctx, pizzaCriteria())
	}()

	time.Sleep(50 * time.Millisecond)
	calls := f.textCallCount()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("aggregation did not stop after cancellation")
	}

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, got, 1, "partial accumulation is returned")
	assert.Equal(t, calls, f.textCallCount(), "no further provider calls after cancellation")
}

func TestAggregateDetailsEnrichment(t *testing.T) {
	f := newFakeProvider()
	f.textPages["Pizza restaurants"] = []places.Page{{Places: []places.Place{place("p1", "One", 40.71, -74)}}}
	f.details["p1"] = places.Place{
		ID:      "p1",
		Address: "7 Carmine St",
		Phone:   "(212) 366-1182",
	}

	got, err := testAggregator(f).Aggregate(context.Background(), pizzaCriteria())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "7 Carmine St", got[0].Address)
	assert.Equal(t, "(212) 366-1182", got[0].Phone)
}
