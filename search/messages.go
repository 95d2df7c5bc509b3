package search

import (
	"context"
	"errors"

	"dinewheel/places"
)

// UserMessage maps a pipeline failure to one of the fixed human readable
// messages shown to the user. It is the single top level translation
// point; callers match the error here instead of wrapping and rethrowing.
// Cancellation has no message: a superseded search is discarded silently.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, places.ErrAccessDenied):
		return "Access to Google Places API was denied. Please check your API key and billing setup."
	case errors.Is(err, places.ErrQuotaExceeded):
		return "Google Places API quota exceeded. Please try again later."
	case errors.Is(err, places.ErrInvalidRequest):
		return "Invalid request to Google Places API. Please check your location and filters."
	case errors.Is(err, ErrProviderUnavailable):
		return "Google Maps API failed to load. Please check your internet connection and API key."
	case errors.Is(err, ErrNoResults):
		return "No restaurants found in your area. Try increasing the search radius."
	case errors.Is(err, ErrNoMatches):
		return "No restaurants found matching your criteria. Try adjusting your filters."
	default:
		return "Unable to fetch restaurant data. Please try again later."
	}
}
