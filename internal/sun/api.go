package sun

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultAPIBaseURL = "https://api.sunrise-sunset.org/json"

// APIClient fetches sun times from the sunrise-sunset.org public API.
type APIClient struct {
	// BaseURL may be overridden for tests; defaults to the public endpoint.
	BaseURL string

	latitude  float64
	longitude float64
	location  *time.Location
	client    *http.Client
}

func NewAPIClient(latitude, longitude float64, location *time.Location, timeout time.Duration) *APIClient {
	if location == nil {
		location = time.UTC
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		BaseURL:   defaultAPIBaseURL,
		latitude:  latitude,
		longitude: longitude,
		location:  location,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type apiResponse struct {
	Results struct {
		Sunrise   string `json:"sunrise"`
		Sunset    string `json:"sunset"`
		SolarNoon string `json:"solar_noon"`
		DayLength int    `json:"day_length"`
	} `json:"results"`
	Status string `json:"status"`
}

func (c *APIClient) Fetch(ctx context.Context) (*Data, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", c.latitude))
	query.Set("lng", fmt.Sprintf("%.6f", c.longitude))
	query.Set("formatted", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sunrise-sunset request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sunrise-sunset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sunrise-sunset bad status: %s", resp.Status)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sunrise-sunset decode: %w", err)
	}

	if payload.Status != "OK" {
		return nil, fmt.Errorf("sunrise-sunset api status: %s", payload.Status)
	}

	sunrise, err := parseAPITime(payload.Results.Sunrise)
	if err != nil {
		return nil, fmt.Errorf("sunrise-sunset sunrise: %w", err)
	}
	sunset, err := parseAPITime(payload.Results.Sunset)
	if err != nil {
		return nil, fmt.Errorf("sunrise-sunset sunset: %w", err)
	}
	solarNoon, err := parseAPITime(payload.Results.SolarNoon)
	if err != nil {
		return nil, fmt.Errorf("sunrise-sunset solar noon: %w", err)
	}

	data := &Data{
		Provider:         "api",
		SunriseMinutes:   minuteOfDay(sunrise, c.location),
		SunsetMinutes:    minuteOfDay(sunset, c.location),
		SolarNoonMinutes: minuteOfDay(solarNoon, c.location),
		DayLengthSeconds: payload.Results.DayLength,
		FetchedAt:        time.Now(),
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("sunrise-sunset data: %w", err)
	}

	return data, nil
}

// parseAPITime parses the API's unformatted timestamps, ISO 8601 UTC in the
// form 2006-01-02T15:04:05+00:00.
func parseAPITime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
