package search

import (
	"math"
	"sort"

	"dinewheel/cuisine"
	"dinewheel/geo"
	"dinewheel/places"
)

// Restaurant is the canonical entity the wheels draw from. Constructed once
// per aggregation pass and immutable thereafter. CuisineTags is never empty
// and ID is the sole deduplication key across merged strategies.
type Restaurant struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Rating        float64  `json:"rating"`
	HasRating     bool     `json:"has_rating"`
	ReviewCount   int      `json:"review_count"`
	DistanceMiles float64  `json:"distance_miles"`
	CuisineTags   []string `json:"cuisine_tags"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	PlusCode      string   `json:"plus_code"`
	MapsURL       string   `json:"maps_url"`
}

// Enrich converts raw provider places into Restaurants: distance from the
// origin (fast path with a shared cosine term), classified cuisine tags,
// rating left unknown and review count zero when the provider omits them.
func Enrich(raw []places.Place, origin geo.Coordinate) []Restaurant {
	cosLat := geo.CosLat(origin)

	out := make([]Restaurant, 0, len(raw))
	for _, p := range raw {
		miles := geo.FastDistance(origin, cosLat, p.Location)

		out = append(out, Restaurant{
			ID:            p.ID,
			Name:          p.Name,
			Rating:        p.Rating,
			HasRating:     p.HasRating,
			ReviewCount:   p.ReviewCount,
			DistanceMiles: math.Round(miles*10) / 10,
			CuisineTags:   cuisine.Classify(p.Categories, p.Name),
			Address:       p.Address,
			Phone:         p.Phone,
			PlusCode:      p.Location.PlusCode(),
			MapsURL:       places.MapsURL(p.Name, p.Address),
		})
	}

	return out
}

// Filter keeps restaurants satisfying the criteria. An unknown rating
// never excludes a result; missing provider data is not treated as a low
// score.
func Filter(rs []Restaurant, c Criteria) []Restaurant {
	out := make([]Restaurant, 0, len(rs))
	for _, r := range rs {
		if r.DistanceMiles > c.RadiusMiles {
			continue
		}
		if r.HasRating && r.Rating < c.MinRating {
			continue
		}
		if r.ReviewCount < c.MinReviews {
			continue
		}
		out = append(out, r)
	}

	return out
}

// SortByDistance orders restaurants by ascending distance, stable.
func SortByDistance(rs []Restaurant) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].DistanceMiles < rs[j].DistanceMiles
	})
}
