package search

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinewheel/geo"
	"dinewheel/places"
)

var testOrigin = geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060}

func TestEnrichComputesDistanceAndTags(t *testing.T) {
	raw := []places.Place{
		{
			ID:          "p1",
			Name:        "Joe's Pizza",
			Categories:  []string{"restaurant"},
			Location:    geo.Coordinate{Latitude: 40.7165, Longitude: -74.0030},
			Rating:      4.5,
			HasRating:   true,
			ReviewCount: 120,
			Address:     "7 Carmine St",
		},
	}

	rs := Enrich(raw, testOrigin)
	require.Len(t, rs, 1)

	r := rs[0]
	assert.Equal(t, "p1", r.ID)
	assert.InDelta(t, 0.3, r.DistanceMiles, 0.01, "distance rounds to one decimal")
	assert.Contains(t, r.CuisineTags, "Pizza")
	assert.Contains(t, r.CuisineTags, "Restaurant")
	assert.True(t, r.HasRating)
	assert.NotEmpty(t, r.PlusCode)
	assert.Contains(t, r.MapsURL, "google.com/maps/search")
}

func TestEnrichDefaultsMissingRating(t *testing.T) {
	raw := []places.Place{{ID: "p1", Name: "Mystery Diner", Location: testOrigin}}

	rs := Enrich(raw, testOrigin)
	require.Len(t, rs, 1)

	assert.False(t, rs[0].HasRating)
	assert.Zero(t, rs[0].ReviewCount)
	assert.NotEmpty(t, rs[0].CuisineTags, "classifier fallback keeps tags non-empty")
}

func TestFilterCriteria(t *testing.T) {
	rs := []Restaurant{
		{ID: "near-good", DistanceMiles: 0.3, Rating: 4.5, HasRating: true, ReviewCount: 120},
		{ID: "too-far", DistanceMiles: 7.2, Rating: 4.8, HasRating: true, ReviewCount: 500},
		{ID: "low-rating", DistanceMiles: 1.1, Rating: 3.2, HasRating: true, ReviewCount: 90},
		{ID: "few-reviews", DistanceMiles: 0.8, Rating: 4.9, HasRating: true, ReviewCount: 10},
		{ID: "no-rating", DistanceMiles: 2.0, HasRating: false, ReviewCount: 75},
	}

	c := Criteria{RadiusMiles: 5, MinRating: 4.0, MinReviews: 50}

	got := Filter(rs, c)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}

	assert.Equal(t, []string{"near-good", "no-rating"}, ids,
		"unknown rating never excludes a result")
}

func TestFilterMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))

	rs := make([]Restaurant, 100)
	for i := range rs {
		rs[i] = Restaurant{
			DistanceMiles: rng.Float64() * 10,
			Rating:        3 + rng.Float64()*2,
			HasRating:     rng.IntN(4) > 0,
			ReviewCount:   rng.IntN(500),
		}
	}

	base := Criteria{RadiusMiles: 5, MinRating: 4.0, MinReviews: 50}
	baseCount := len(Filter(rs, base))

	tighter := []Criteria{
		{RadiusMiles: 3, MinRating: 4.0, MinReviews: 50},
		{RadiusMiles: 5, MinRating: 4.5, MinReviews: 50},
		{RadiusMiles: 5, MinRating: 4.0, MinReviews: 100},
	}

	for _, c := range tighter {
		require.LessOrEqual(t, len(Filter(rs, c)), baseCount,
			"tightening %+v must not grow the result set", c)
	}
}

func TestSortByDistanceStable(t *testing.T) {
	rs := []Restaurant{
		{ID: "c", DistanceMiles: 2.0},
		{ID: "a", DistanceMiles: 0.5},
		{ID: "b1", DistanceMiles: 1.0},
		{ID: "b2", DistanceMiles: 1.0},
	}

	SortByDistance(rs)

	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}

	assert.Equal(t, []string{"a", "b1", "b2", "c"}, ids)
}

func TestCacheKeyCoarseOrigin(t *testing.T) {
	a := Criteria{Cuisine: "Pizza", RadiusMiles: 5, MinRating: 4, MinReviews: 50,
		Origin: geo.Coordinate{Latitude: 40.71281, Longitude: -74.00604}}
	b := a
	b.Origin = geo.Coordinate{Latitude: 40.71303, Longitude: -74.00580}

	assert.Equal(t, a.CacheKey(), b.CacheKey(), "nearby origins share a key")

	c := a
	c.Origin = geo.Coordinate{Latitude: 40.7200, Longitude: -74.0060}
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())

	d := a
	d.Cuisine = "pizza"
	assert.Equal(t, a.CacheKey(), d.CacheKey(), "cuisine label is case-insensitive")
}
