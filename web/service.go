package web

import (
	"context"
	"fmt"
	"log/slog"

	"dinewheel/cuisine"
	"dinewheel/geo"
	"dinewheel/places"
	"dinewheel/search"
	"dinewheel/wheel"
)

// DemoLocation is used when the client does not supply coordinates.
var DemoLocation = geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060}

type Service struct {
	ctrl     *search.Controller
	geocoder *places.Geocoder
	apiKey   string
	logger   *slog.Logger
}

func NewService(ctrl *search.Controller, geocoder *places.Geocoder, apiKey string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		ctrl:     ctrl,
		geocoder: geocoder,
		apiKey:   apiKey,
		logger:   logger,
	}
}

func (s *Service) APIKey() string {
	return s.apiKey
}

func (s *Service) Cuisines() []string {
	return cuisine.Wheel
}

// Address resolves coordinates to a human-readable address. When the
// geocoder fails or times out the coordinates themselves are rendered,
// together with their plus code, so the caller always gets something to
// display.
func (s *Service) Address(ctx context.Context, c geo.Coordinate) string {
	addr, err := s.geocoder.ReverseGeocode(ctx, c)
	if err != nil {
		s.logger.Warn("reverse geocode failed", "error", err, "location", c.String())

		return fmt.Sprintf("Lat: %.4f, Lng: %.4f (%s)", c.Latitude, c.Longitude, c.PlusCode())
	}

	return addr
}

func (s *Service) Search(ctx context.Context, c search.Criteria) ([]search.Restaurant, error) {
	return s.ctrl.Search(ctx, c)
}

// SpinCuisine draws from the given cuisines, or from the full wheel when
// none are selected.
func (s *Service) SpinCuisine(selected []string) (wheel.State, string, error) {
	items := selected
	if len(items) == 0 {
		items = cuisine.Wheel
	}

	state, err := wheel.Draw(len(items))
	if err != nil {
		return wheel.State{}, "", err
	}

	return state, items[state.Index], nil
}

// SpinRestaurant draws a restaurant for the criteria, reusing the session
// cache when the same search already ran.
func (s *Service) SpinRestaurant(ctx context.Context, c search.Criteria) (wheel.State, search.Restaurant, error) {
	rs, ok := s.ctrl.Cached(c)
	if !ok {
		var err error

		rs, err = s.ctrl.Search(ctx, c)
		if err != nil {
			return wheel.State{}, search.Restaurant{}, err
		}
	}

	state, err := wheel.Draw(len(rs))
	if err != nil {
		return wheel.State{}, search.Restaurant{}, err
	}

	return state, rs[state.Index], nil
}
