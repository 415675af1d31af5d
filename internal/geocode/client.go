package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/spectralvoice/hauntify/internal/model"
	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/metrics"
)

// DefaultNominatimBase is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimBase = "https://nominatim.openstreetmap.org"

const userAgent = "Hauntify/1.0 (+https://github.com/spectralvoice/hauntify)"

// Client resolves place names to coordinates. Results are cached through
// the injected Cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	logger     *logger.Logger
}

// NewClient creates a geocoding client.
func NewClient(baseURL string, cache *Cache, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultNominatimBase
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		logger:     log,
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		Country string `json:"country"`
	} `json:"address"`
}

// Lookup resolves a place name. Returns (nil, nil) when the provider has
// no match; a nil error never accompanies invalid coordinates.
func (c *Client) Lookup(ctx context.Context, place string) (*model.LocationHit, error) {
	if hit, ok := c.cache.Get(place); ok {
		metrics.GeocodeLookups.WithLabelValues("hit").Inc()
		return &hit, nil
	}

	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("invalid nominatim base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("addressdetails", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("nominatim error: %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		metrics.GeocodeLookups.WithLabelValues("miss").Inc()
		c.logger.Debug("no geocoding results", "place", place)
		return nil, nil
	}

	var lat, lon float64
	if _, err := fmt.Sscanf(results[0].Lat, "%f", &lat); err != nil {
		return nil, fmt.Errorf("invalid latitude from nominatim: %w", err)
	}
	if _, err := fmt.Sscanf(results[0].Lon, "%f", &lon); err != nil {
		return nil, fmt.Errorf("invalid longitude from nominatim: %w", err)
	}
	if !ValidLatLon(lat, lon) {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("out-of-range coordinates from nominatim: %f, %f", lat, lon)
	}

	hit := model.LocationHit{
		Name:    results[0].DisplayName,
		Lat:     lat,
		Lon:     lon,
		Country: results[0].Address.Country,
	}
	c.cache.Put(place, hit)
	metrics.GeocodeLookups.WithLabelValues("miss").Inc()
	c.logger.Info("geocoded place", "place", place, "lat", lat, "lon", lon)
	return &hit, nil
}

// ValidLatLon reports whether a coordinate pair is finite and in range.
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
