package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dinewheel/geo"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/reverse"

	// geocodeTimeout bounds a reverse lookup; on expiry the caller falls
	// back to displaying raw coordinates.
	geocodeTimeout = 5 * time.Second

	geocodeUserAgent = "dinewheel/1.0"
)

// Geocoder resolves a coordinate to a human readable address using the
// Nominatim reverse geocoding API.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
}

type GeocoderOption func(*Geocoder)

func NewGeocoder(opts ...GeocoderOption) *Geocoder {
	g := &Geocoder{
		baseURL: nominatimURL,
		httpClient: &http.Client{
			Timeout: geocodeTimeout,
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// WithGeocoderBaseURL overrides the API endpoint. Used in tests.
func WithGeocoderBaseURL(u string) GeocoderOption {
	return func(g *Geocoder) {
		g.baseURL = u
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode returns the display address for a coordinate. The lookup
// is bounded by geocodeTimeout regardless of the parent context.
func (g *Geocoder) ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?format=json&lat=%f&lon=%f&zoom=18&addressdetails=1",
		g.baseURL, c.Latitude, c.Longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", geocodeUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var nr nominatimResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return "", fmt.Errorf("failed to parse reverse geocode response: %w", err)
	}

	if nr.DisplayName == "" {
		return "", fmt.Errorf("no address for %s", c)
	}

	return nr.DisplayName, nil
}
