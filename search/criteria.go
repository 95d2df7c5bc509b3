// Package search implements the restaurant discovery pipeline: multi
// strategy aggregation against the places provider, enrichment, filtering,
// session caching and the request lifecycle around it.
package search

import (
	"fmt"
	"strings"

	"dinewheel/geo"
)

// Criteria fully determines a search: the query strategies issued and the
// cache key. It is a value and is never mutated after construction.
type Criteria struct {
	Cuisine     string         `json:"cuisine"`
	RadiusMiles float64        `json:"radius_miles"`
	MinRating   float64        `json:"min_rating"`
	MinReviews  int            `json:"min_reviews"`
	OpenNowOnly bool           `json:"open_now_only"`
	Origin      geo.Coordinate `json:"origin"`
}

// CacheKey returns the composite cache key for the criteria. The origin is
// rounded to 3 decimal degrees so that nearby repeated searches hit the
// same entry.
func (c Criteria) CacheKey() string {
	return fmt.Sprintf("%s|%.1f|%.1f|%d|%t|%.3f,%.3f",
		strings.ToLower(c.Cuisine),
		c.RadiusMiles,
		c.MinRating,
		c.MinReviews,
		c.OpenNowOnly,
		c.Origin.Latitude,
		c.Origin.Longitude,
	)
}
