package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Pipeline failures that bubble to the top level message handler. Strategy
// level failures never reach here; they are logged and swallowed inside
// the aggregator.
var (
	// ErrNoResults means no raw places were found by any strategy.
	ErrNoResults = errors.New("search: no restaurants found in the area")

	// ErrNoMatches means raw places were found but none satisfied the
	// filter criteria.
	ErrNoMatches = errors.New("search: no restaurants match the criteria")

	// ErrProviderUnavailable means a working provider session could not be
	// acquired within the bounded wait.
	ErrProviderUnavailable = errors.New("search: places provider not ready")
)

// providerReadyTimeout bounds the wait for a working provider session.
const providerReadyTimeout = 8 * time.Second

// ProviderFactory creates the provider handle. It is invoked at most once
// per controller, on first need.
type ProviderFactory func(ctx context.Context) (Provider, error)

// Controller owns the session state the original kept in globals: the
// provider handle (lazily created once), the result cache and the at most
// one in-flight aggregation. Starting a new search cancels any prior
// in-flight one; a cancelled search's partial results are never returned
// to a caller nor written to the cache.
type Controller struct {
	factory      ProviderFactory
	cache        *Cache
	logger       *slog.Logger
	readyTimeout time.Duration

	// identical concurrent criteria share one aggregation
	group singleflight.Group

	mu        sync.Mutex
	agg       *Aggregator
	cancel    context.CancelFunc
	currentID string
}

func NewController(factory ProviderFactory, cache *Cache, logger *slog.Logger) *Controller {
	if cache == nil {
		cache = NewCache()
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		factory:      factory,
		cache:        cache,
		logger:       logger,
		readyTimeout: providerReadyTimeout,
	}
}

// Cached returns the memoized result set for the criteria, if present.
func (s *Controller) Cached(c Criteria) ([]Restaurant, bool) {
	return s.cache.Get(c.CacheKey())
}

// Search resolves the criteria to a filtered, distance sorted restaurant
// list. A cache hit bypasses the provider entirely. On a miss the full
// pipeline runs: aggregate, enrich, filter, sort, cache.
//
// When the search is superseded by a newer one, Search returns
// context.Canceled; callers discard it silently.
func (s *Controller) Search(ctx context.Context, c Criteria) ([]Restaurant, error) {
	key := c.CacheKey()

	if rs, ok := s.cache.Get(key); ok {
		cacheHits.Inc()
		s.logger.Debug("cache hit", "key", key, "restaurants", len(rs))

		return rs, nil
	}

	cacheMisses.Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.runSearch(ctx, c, key)
	})
	if err != nil {
		return nil, err
	}

	return v.([]Restaurant), nil
}

func (s *Controller) runSearch(ctx context.Context, c Criteria, key string) ([]Restaurant, error) {
	searchID := uuid.New().String()
	log := s.logger.With("search_id", searchID, "cuisine", c.Cuisine)

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.supersede(searchID, cancel)
	defer s.release(searchID)

	agg, err := s.ensureProvider(sctx)
	if err != nil {
		return nil, err
	}

	searchesInflight.Inc()
	defer searchesInflight.Dec()

	log.Info("search started",
		"radius_miles", c.RadiusMiles,
		"min_rating", c.MinRating,
		"min_reviews", c.MinReviews,
		"open_now", c.OpenNowOnly)

	raw, err := agg.Aggregate(sctx, c)

	if cerr := sctx.Err(); cerr != nil {
		log.Debug("search superseded, discarding partial results", "partial", len(raw))

		return nil, context.Canceled
	}

	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		log.Info("search found nothing")

		return nil, ErrNoResults
	}

	matched := Filter(Enrich(raw, c.Origin), c)
	if len(matched) == 0 {
		log.Info("all results filtered out", "raw", len(raw))

		return nil, ErrNoMatches
	}

	SortByDistance(matched)

	// a late cancellation means the caller moved on; do not cache
	if sctx.Err() != nil {
		return nil, context.Canceled
	}

	s.cache.Put(key, matched)

	log.Info("search complete", "restaurants", len(matched))

	return matched, nil
}

// supersede registers this search as the current one, cancelling any
// prior in-flight aggregation first.
func (s *Controller) supersede(searchID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	s.cancel = cancel
	s.currentID = searchID
}

func (s *Controller) release(searchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID == searchID {
		s.cancel = nil
		s.currentID = ""
	}
}

// ensureProvider lazily creates the provider handle. At most one handle
// exists per controller and it is reused across searches. Acquisition is
// bounded by readyTimeout.
func (s *Controller) ensureProvider(ctx context.Context) (*Aggregator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.agg != nil {
		return s.agg, nil
	}

	readyCtx, cancel := context.WithTimeout(ctx, s.readyTimeout)
	defer cancel()

	p, err := s.factory(readyCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s.agg = NewAggregator(p, s.logger)

	return s.agg, nil
}
