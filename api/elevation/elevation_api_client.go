package elevation

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"profile-server/api"
	"profile-server/geo"
	"profile-server/metrics"
	"profile-server/models"
)

// ElevationApiClient talks to a Google Elevation compatible REST API.
type ElevationApiClient struct {
	*api.HTTPClient // Embed HTTPClient to reuse its methods and properties
	apiKey          string
	encodePolyline  bool
}

// NewElevationApiClient creates a new instance of ElevationApiClient
func NewElevationApiClient(httpClient *api.HTTPClient) *ElevationApiClient {
	return &ElevationApiClient{
		HTTPClient: httpClient,
	}
}

// SetCredentials sets the API key sent with every request.
func (c *ElevationApiClient) SetCredentials(apiKey string) {
	c.apiKey = apiKey
}

// SetPolylineEncoding switches the path parameter to the "enc:" polyline form.
func (c *ElevationApiClient) SetPolylineEncoding(enabled bool) {
	c.encodePolyline = enabled
}

// SampleAlongPath requests samples interpolated points along path.
func (c *ElevationApiClient) SampleAlongPath(ctx context.Context, path []models.LatLng, samples int) (models.Profile, error) {
	if err := validateRequest(path, samples); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("path", c.formatPath(path))
	query.Set("samples", strconv.Itoa(samples))
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	start := time.Now()
	var response models.ElevationResponse
	err := c.Request(ctx, "GET", "/json", query, nil, nil, &response)
	metrics.ElevationRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ElevationRequests.WithLabelValues("TRANSPORT_ERROR").Inc()
		return nil, err
	}
	metrics.ElevationRequests.WithLabelValues(response.Status).Inc()

	if response.Status != STATUS_OK {
		return nil, &StatusError{Status: response.Status, Message: response.ErrorMessage}
	}
	if len(response.Results) != samples {
		log.Printf("[ElevationApiClient] Requested %d samples, got %d", samples, len(response.Results))
	}
	return models.Profile(response.Results), nil
}

func (c *ElevationApiClient) formatPath(path []models.LatLng) string {
	if c.encodePolyline {
		return "enc:" + geo.EncodePath(path)
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
	}
	return strings.Join(parts, "|")
}
