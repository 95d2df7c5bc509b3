package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dinewheel/places"
)

const (
	// textPageLimit caps pagination for the text and proximity strategies,
	// chainPageLimit for the per-brand booster queries.
	textPageLimit  = 3
	chainPageLimit = 2

	// interPageDelay is the wait between pagination requests, respecting
	// provider rate limits.
	interPageDelay = 200 * time.Millisecond

	// chainBoostThreshold triggers the brand booster strategy when fewer
	// results than this were accumulated.
	chainBoostThreshold = 10
)

// burgerChains are the brand queries issued by the booster strategy for
// the Burgers cuisine.
var burgerChains = []string{
	"in-n-out", "in n out", "habit burger", "five guys",
	"wendys", "mcdonalds", "burger king", "shake shack",
}

// Provider is the slice of the places client the aggregator needs.
type Provider interface {
	TextSearch(ctx context.Context, req places.TextSearchRequest) (places.Page, error)
	SearchNearby(ctx context.Context, req places.NearbySearchRequest) (places.Page, error)
	Details(ctx context.Context, id string) (places.Place, error)
}

// Aggregator runs the query strategies against the provider sequentially
// and merges their results. Strategy failures are logged and swallowed;
// cancellation stops work at the next suspension point and returns the
// partial accumulation.
type Aggregator struct {
	provider  Provider
	logger    *slog.Logger
	pageDelay time.Duration
}

func NewAggregator(p Provider, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{
		provider:  p,
		logger:    logger,
		pageDelay: interPageDelay,
	}
}

// Aggregate runs up to four strategies and returns deduplicated raw
// places, enriched with detail lookups. On cancellation the partial result
// is returned together with the context error; the caller must discard it.
func (a *Aggregator) Aggregate(ctx context.Context, c Criteria) ([]places.Place, error) {
	radiusMeters := c.RadiusMiles * places.MetersPerMile

	var all []places.Place

	// Strategy 1: "<cuisine> restaurants" text query.
	all = append(all, a.drainText(ctx, places.TextSearchRequest{
		Query:        c.Cuisine + " restaurants",
		Bias:         c.Origin,
		RadiusMeters: radiusMeters,
		OpenNow:      c.OpenNowOnly,
	}, textPageLimit, "text_cuisine_restaurants")...)

	if err := ctx.Err(); err != nil {
		return dedupe(all), err
	}

	// Strategy 2: bare "<cuisine>" text query. Always runs; the two query
	// phrasings surface different result sets.
	all = append(all, a.drainText(ctx, places.TextSearchRequest{
		Query:        c.Cuisine,
		Bias:         c.Origin,
		RadiusMeters: radiusMeters,
		OpenNow:      c.OpenNowOnly,
	}, textPageLimit, "text_cuisine")...)

	if err := ctx.Err(); err != nil {
		return dedupe(all), err
	}

	// Strategy 3: proximity fallback, only when nothing was found at all.
	if len(all) == 0 {
		all = append(all, a.drainNearby(ctx, places.NearbySearchRequest{
			Center:       c.Origin,
			RadiusMeters: radiusMeters,
			IncludedType: "restaurant",
		}, textPageLimit)...)

		if err := ctx.Err(); err != nil {
			return dedupe(all), err
		}
	}

	// Strategy 4: brand boosters for multi-branch cuisines with thin
	// results.
	if strings.EqualFold(c.Cuisine, "Burgers") && len(all) < chainBoostThreshold {
		for _, chain := range burgerChains {
			all = append(all, a.drainText(ctx, places.TextSearchRequest{
				Query:        chain,
				Bias:         c.Origin,
				RadiusMeters: radiusMeters,
			}, chainPageLimit, "text_chain")...)

			if err := ctx.Err(); err != nil {
				return dedupe(all), err
			}
		}
	}

	unique := dedupe(all)

	if c.OpenNowOnly {
		unique = dropClosed(unique)
	}

	a.logger.Info("aggregation complete",
		"cuisine", c.Cuisine,
		"raw", len(all),
		"unique", len(unique))

	return a.enrichDetails(ctx, unique)
}

// drainText drains up to limit pages of a text query. A provider error or
// an empty page terminates the strategy without retry.
func (a *Aggregator) drainText(ctx context.Context, req places.TextSearchRequest, limit int, strategy string) []places.Place {
	var out []places.Place

	for page := 1; page <= limit; page++ {
		providerRequests.WithLabelValues(strategy).Inc()

		res, err := a.provider.TextSearch(ctx, req)
		if ctx.Err() != nil {
			return out
		}

		if err != nil {
			a.logger.Warn("text search strategy failed",
				"strategy", strategy, "query", req.Query, "page", page, "error", err)
			return out
		}

		if len(res.Places) == 0 {
			return out
		}

		out = append(out, res.Places...)

		if res.NextPageToken == "" || page == limit {
			return out
		}

		if !a.waitPage(ctx) {
			return out
		}

		req.PageToken = res.NextPageToken
	}

	return out
}

func (a *Aggregator) drainNearby(ctx context.Context, req places.NearbySearchRequest, limit int) []places.Place {
	var out []places.Place

	for page := 1; page <= limit; page++ {
		providerRequests.WithLabelValues("nearby_restaurant").Inc()

		res, err := a.provider.SearchNearby(ctx, req)
		if ctx.Err() != nil {
			return out
		}

		if err != nil {
			a.logger.Warn("nearby search strategy failed", "page", page, "error", err)
			return out
		}

		if len(res.Places) == 0 {
			return out
		}

		out = append(out, res.Places...)

		if res.NextPageToken == "" || page == limit {
			return out
		}

		if !a.waitPage(ctx) {
			return out
		}

		req.PageToken = res.NextPageToken
	}

	return out
}

// waitPage sleeps the inter page delay, returning false when the context
// is cancelled first.
func (a *Aggregator) waitPage(ctx context.Context) bool {
	timer := time.NewTimer(a.pageDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// enrichDetails fills address, phone, categories and open state from the
// details endpoint. Each lookup is a suspension point; a failed lookup
// leaves the place as is.
func (a *Aggregator) enrichDetails(ctx context.Context, list []places.Place) ([]places.Place, error) {
	for i := range list {
		if err := ctx.Err(); err != nil {
			return list, err
		}

		providerRequests.WithLabelValues("details").Inc()

		d, err := a.provider.Details(ctx, list[i].ID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return list, ctx.Err()
			}

			a.logger.Debug("details lookup failed", "id", list[i].ID, "error", err)

			continue
		}

		if list[i].Address == "" {
			list[i].Address = d.Address
		}
		if list[i].Phone == "" {
			list[i].Phone = d.Phone
		}
		if len(list[i].Categories) == 0 {
			list[i].Categories = d.Categories
		}
		if list[i].OpenNow == nil {
			list[i].OpenNow = d.OpenNow
		}
	}

	return list, ctx.Err()
}

// dedupe removes places with duplicate IDs, preserving first occurrence.
func dedupe(list []places.Place) []places.Place {
	seen := make(map[string]struct{}, len(list))
	out := make([]places.Place, 0, len(list))

	for _, p := range list {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}

	return out
}

// dropClosed removes places whose open state is known to be false. An
// unknown state passes.
func dropClosed(list []places.Place) []places.Place {
	out := make([]places.Place, 0, len(list))
	for _, p := range list {
		if p.OpenNow != nil && !*p.OpenNow {
			continue
		}
		out = append(out, p)
	}

	return out
}
