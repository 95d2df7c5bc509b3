// Package places contains the clients for the external place search and
// reverse geocoding providers. The rest of the system consumes these
// through narrow interfaces; nothing here is cached or persisted.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dinewheel/geo"
)

const (
	placesBaseURL = "https://places.googleapis.com/v1/places"

	// MetersPerMile converts the user facing radius to provider units.
	MetersPerMile = 1609.34

	searchFieldMask = "places.id,places.displayName,places.types," +
		"places.location,places.rating,places.userRatingCount," +
		"places.currentOpeningHours.openNow,places.formattedAddress,nextPageToken"

	detailsFieldMask = "id,displayName,types,formattedAddress," +
		"nationalPhoneNumber,currentOpeningHours.openNow"

	defaultTimeout = 10 * time.Second
)

// Provider request failures, matched with errors.Is at the top level
// message handler.
var (
	ErrAccessDenied   = errors.New("places: access denied")
	ErrQuotaExceeded  = errors.New("places: quota exceeded")
	ErrInvalidRequest = errors.New("places: invalid request")
	ErrMissingAPIKey  = errors.New("places: API key is empty")
)

// Place is the provider-native place record. Rating and open state are
// optional: HasRating false and OpenNow nil mean the provider omitted them.
type Place struct {
	ID          string
	Name        string
	Categories  []string
	Location    geo.Coordinate
	Rating      float64
	HasRating   bool
	ReviewCount int
	OpenNow     *bool
	Address     string
	Phone       string
}

// Page is one page of search results. A non-empty NextPageToken signals
// that more pages are available.
type Page struct {
	Places        []Place
	NextPageToken string
}

// TextSearchRequest is a free-text query biased toward an origin.
type TextSearchRequest struct {
	Query        string
	Bias         geo.Coordinate
	RadiusMeters float64
	OpenNow      bool
	PageToken    string
}

// NearbySearchRequest is a proximity query with a required radius and
// category filter.
type NearbySearchRequest struct {
	Center       geo.Coordinate
	RadiusMeters float64
	IncludedType string
	PageToken    string
}

type ClientOption func(*Client)

// Client talks to the Google Places API (New).
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: placesBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Ready reports whether the client can issue requests.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	return nil
}

type searchResponse struct {
	Places        []apiPlace `json:"places"`
	NextPageToken string     `json:"nextPageToken"`
}

type apiPlace struct {
	ID          string `json:"id"`
	DisplayName *struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Types    []string `json:"types"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Rating              *float64 `json:"rating"`
	UserRatingCount     int      `json:"userRatingCount"`
	CurrentOpeningHours *struct {
		OpenNow bool `json:"openNow"`
	} `json:"currentOpeningHours"`
	FormattedAddress    string `json:"formattedAddress"`
	NationalPhoneNumber string `json:"nationalPhoneNumber"`
}

// TextSearch issues one page of a free-text query. Pass the previous
// page's token to continue pagination.
func (c *Client) TextSearch(ctx context.Context, req TextSearchRequest) (Page, error) {
	if req.Query == "" {
		return Page{}, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}

	payload := map[string]any{
		"textQuery": req.Query,
		"locationBias": map[string]any{
			"circle": map[string]any{
				"center": map[string]any{
					"latitude":  req.Bias.Latitude,
					"longitude": req.Bias.Longitude,
				},
				"radius": req.RadiusMeters,
			},
		},
	}

	if req.OpenNow {
		payload["openNow"] = true
	}

	if req.PageToken != "" {
		payload["pageToken"] = req.PageToken
	}

	return c.search(ctx, c.baseURL+":searchText", payload)
}

// SearchNearby issues one page of a proximity query restricted to a
// category.
func (c *Client) SearchNearby(ctx context.Context, req NearbySearchRequest) (Page, error) {
	payload := map[string]any{
		"includedTypes": []string{req.IncludedType},
		"locationRestriction": map[string]any{
			"circle": map[string]any{
				"center": map[string]any{
					"latitude":  req.Center.Latitude,
					"longitude": req.Center.Longitude,
				},
				"radius": req.RadiusMeters,
			},
		},
	}

	if req.PageToken != "" {
		payload["pageToken"] = req.PageToken
	}

	return c.search(ctx, c.baseURL+":searchNearby", payload)
}

func (c *Client) search(ctx context.Context, apiURL string, payload map[string]any) (Page, error) {
	body, err := c.do(ctx, apiURL, searchFieldMask, payload)
	if err != nil {
		return Page{}, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, fmt.Errorf("failed to parse search response: %w", err)
	}

	page := Page{NextPageToken: resp.NextPageToken}
	for _, p := range resp.Places {
		page.Places = append(page.Places, p.toPlace())
	}

	return page, nil
}

// Details looks up address, phone, categories and open state for a place.
func (c *Client) Details(ctx context.Context, id string) (Place, error) {
	if id == "" {
		return Place{}, fmt.Errorf("%w: empty place id", ErrInvalidRequest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return Place{}, err
	}

	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	body, err := c.roundTrip(req)
	if err != nil {
		return Place{}, err
	}

	var p apiPlace
	if err := json.Unmarshal(body, &p); err != nil {
		return Place{}, fmt.Errorf("failed to parse details response: %w", err)
	}

	return p.toPlace(), nil
}

func (c *Client) do(ctx context.Context, apiURL, fieldMask string, payload map[string]any) ([]byte, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	return c.roundTrip(req)
}

func (c *Client) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	return body, nil
}

func statusError(code int, body []byte) error {
	switch code {
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAccessDenied, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, body)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, body)
	default:
		return fmt.Errorf("places API error: %d, %s", code, body)
	}
}

func (p apiPlace) toPlace() Place {
	out := Place{
		ID:          p.ID,
		Categories:  p.Types,
		ReviewCount: p.UserRatingCount,
		Address:     p.FormattedAddress,
		Phone:       p.NationalPhoneNumber,
		Location: geo.Coordinate{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		},
	}

	if p.DisplayName != nil {
		out.Name = p.DisplayName.Text
	}

	if p.Rating != nil {
		out.Rating = *p.Rating
		out.HasRating = true
	}

	if p.CurrentOpeningHours != nil {
		open := p.CurrentOpeningHours.OpenNow
		out.OpenNow = &open
	}

	return out
}

// MapsURL returns the public Google Maps search link for a place, the same
// shape the results view links to.
func MapsURL(name, address string) string {
	q := name
	if address != "" {
		q = address + " " + name
	}

	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(q)
}
