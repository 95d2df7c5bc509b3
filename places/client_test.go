package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinewheel/geo"
)

func TestTextSearchRequestShape(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.id")
		assert.Contains(t, r.URL.Path, ":searchText")

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{
			"places": [
				{
					"id": "p1",
					"displayName": {"text": "Joe's Pizza"},
					"types": ["restaurant", "food"],
					"location": {"latitude": 40.7146, "longitude": -74.0071},
					"rating": 4.5,
					"userRatingCount": 120,
					"currentOpeningHours": {"openNow": true},
					"formattedAddress": "7 Carmine St, New York"
				},
				{
					"id": "p2",
					"displayName": {"text": "No Rating Diner"},
					"location": {"latitude": 40.71, "longitude": -74.0}
				}
			],
			"nextPageToken": "tok-2"
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL+"/places"))

	page, err := c.TextSearch(context.Background(), TextSearchRequest{
		Query:        "Pizza restaurants",
		Bias:         geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		RadiusMeters: 5 * MetersPerMile,
		OpenNow:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Pizza restaurants", captured["textQuery"])
	assert.Equal(t, true, captured["openNow"])

	bias := captured["locationBias"].(map[string]any)["circle"].(map[string]any)
	assert.InDelta(t, 5*MetersPerMile, bias["radius"].(float64), 0.01)

	require.Len(t, page.Places, 2)
	assert.Equal(t, "tok-2", page.NextPageToken)

	joe := page.Places[0]
	assert.Equal(t, "p1", joe.ID)
	assert.Equal(t, "Joe's Pizza", joe.Name)
	assert.True(t, joe.HasRating)
	assert.InDelta(t, 4.5, joe.Rating, 1e-9)
	assert.Equal(t, 120, joe.ReviewCount)
	require.NotNil(t, joe.OpenNow)
	assert.True(t, *joe.OpenNow)

	diner := page.Places[1]
	assert.False(t, diner.HasRating)
	assert.Zero(t, diner.ReviewCount)
	assert.Nil(t, diner.OpenNow, "unknown open state stays unknown")
}

func TestTextSearchPageToken(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"places": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL+"/places"))

	_, err := c.TextSearch(context.Background(), TextSearchRequest{Query: "Sushi", PageToken: "tok-2"})
	require.NoError(t, err)

	assert.Equal(t, "tok-2", captured["pageToken"])
}

func TestSearchNearbyRequestShape(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":searchNearby")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"places": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL+"/places"))

	_, err := c.SearchNearby(context.Background(), NearbySearchRequest{
		Center:       geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		RadiusMeters: 1609.34,
		IncludedType: "restaurant",
	})
	require.NoError(t, err)

	types := captured["includedTypes"].([]any)
	require.Len(t, types, 1)
	assert.Equal(t, "restaurant", types[0])

	restriction := captured["locationRestriction"].(map[string]any)["circle"].(map[string]any)
	assert.InDelta(t, 1609.34, restriction["radius"].(float64), 0.01)
}

func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, ErrAccessDenied},
		{http.StatusUnauthorized, ErrAccessDenied},
		{http.StatusTooManyRequests, ErrQuotaExceeded},
		{http.StatusBadRequest, ErrInvalidRequest},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))

		c := NewClient("test-key", WithBaseURL(srv.URL+"/places"))
		_, err := c.TextSearch(context.Background(), TextSearchRequest{Query: "Pizza"})

		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		srv.Close()
	}
}

func TestClientReady(t *testing.T) {
	assert.ErrorIs(t, NewClient("").Ready(), ErrMissingAPIKey)
	assert.NoError(t, NewClient("k").Ready())
}

func TestDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/p1")
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))

		_, _ = w.Write([]byte(`{
			"id": "p1",
			"displayName": {"text": "Joe's Pizza"},
			"formattedAddress": "7 Carmine St, New York",
			"nationalPhoneNumber": "(212) 366-1182",
			"currentOpeningHours": {"openNow": false}
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL+"/places"))

	p, err := c.Details(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "7 Carmine St, New York", p.Address)
	assert.Equal(t, "(212) 366-1182", p.Phone)
	require.NotNil(t, p.OpenNow)
	assert.False(t, *p.OpenNow)
}

func TestMapsURL(t *testing.T) {
	u := MapsURL("Joe's Pizza", "7 Carmine St")
	assert.Contains(t, u, "https://www.google.com/maps/search/?api=1&query=")
	assert.Contains(t, u, "Carmine")
}
