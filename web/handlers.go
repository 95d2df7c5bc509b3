package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"dinewheel/geo"
	"dinewheel/places"
	"dinewheel/search"
	"dinewheel/wheel"
)

const defaultRadiusMiles = 5

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type searchRequest struct {
	Cuisine    string   `json:"cuisine"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Radius     float64  `json:"radius"`
	MinRating  float64  `json:"minRating"`
	MinReviews int      `json:"minReviews"`
	OpenNow    bool     `json:"openNow"`
}

func (req searchRequest) criteria() search.Criteria {
	origin := DemoLocation
	if req.Lat != nil && req.Lng != nil {
		origin = geo.Coordinate{Latitude: *req.Lat, Longitude: *req.Lng}
	}

	radius := req.Radius
	if radius <= 0 {
		radius = defaultRadiusMiles
	}

	return search.Criteria{
		Cuisine:     req.Cuisine,
		RadiusMiles: radius,
		MinRating:   req.MinRating,
		MinReviews:  req.MinReviews,
		OpenNowOnly: req.OpenNow,
		Origin:      origin,
	}
}

type searchResponse struct {
	SearchID    string              `json:"searchId"`
	Count       int                 `json:"count"`
	Restaurants []search.Restaurant `json:"restaurants"`
}

type spinResponse struct {
	State wheel.State `json:"state"`
	Item  any         `json:"item"`
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	if s.svc.APIKey() == "" {
		renderJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "API key not configured",
		})

		return
	}

	renderJSON(w, http.StatusOK, map[string]string{"apiKey": s.svc.APIKey()})
}

func (s *Server) getCuisines(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"cuisines": s.svc.Cuisines()})
}

func (s *Server) getAddress(w http.ResponseWriter, r *http.Request) {
	coord := DemoLocation

	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")

	if latStr != "" || lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)

		if latErr != nil || lngErr != nil {
			renderJSON(w, http.StatusUnprocessableEntity, apiError{
				Code:    http.StatusUnprocessableEntity,
				Message: "invalid coordinates",
			})

			return
		}

		coord = geo.Coordinate{Latitude: lat, Longitude: lng}
	}

	renderJSON(w, http.StatusOK, map[string]string{
		"address":  s.svc.Address(r.Context(), coord),
		"plusCode": coord.PlusCode(),
	})
}

func (s *Server) postSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusUnprocessableEntity, apiError{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})

		return
	}

	rs, err := s.svc.Search(r.Context(), req.criteria())
	if err != nil {
		s.renderSearchError(w, err)

		return
	}

	renderJSON(w, http.StatusOK, searchResponse{
		SearchID:    uuid.New().String(),
		Count:       len(rs),
		Restaurants: rs,
	})
}

func (s *Server) postSpinCuisine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cuisines []string `json:"cuisines"`
	}

	// an empty body means the full wheel
	_ = json.NewDecoder(r.Body).Decode(&req)

	state, item, err := s.svc.SpinCuisine(req.Cuisines)
	if err != nil {
		renderJSON(w, http.StatusUnprocessableEntity, apiError{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})

		return
	}

	renderJSON(w, http.StatusOK, spinResponse{State: state, Item: item})
}

func (s *Server) postSpinRestaurant(w http.ResponseWriter, r *http.Request) {
	var req searchRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusUnprocessableEntity, apiError{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})

		return
	}

	state, restaurant, err := s.svc.SpinRestaurant(r.Context(), req.criteria())
	if err != nil {
		s.renderSearchError(w, err)

		return
	}

	renderJSON(w, http.StatusOK, spinResponse{State: state, Item: restaurant})
}

// renderSearchError maps pipeline failures onto the fixed user message
// catalogue. A superseded search produces no body at all: the client that
// started the newer search owns the screen.
func (s *Server) renderSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	code := http.StatusBadGateway

	switch {
	case errors.Is(err, search.ErrNoResults), errors.Is(err, search.ErrNoMatches):
		code = http.StatusNotFound
	case errors.Is(err, search.ErrProviderUnavailable):
		code = http.StatusServiceUnavailable
	case errors.Is(err, places.ErrQuotaExceeded):
		code = http.StatusTooManyRequests
	case errors.Is(err, places.ErrInvalidRequest):
		code = http.StatusUnprocessableEntity
	}

	s.logger.Error("search failed", "error", err)

	renderJSON(w, code, apiError{Code: code, Message: search.UserMessage(err)})
}

func renderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(data)
}
