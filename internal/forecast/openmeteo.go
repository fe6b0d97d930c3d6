// Package forecast implements the hourly forecast provider backed by the
// Open-Meteo API. The client requests imperial units (°F, mph) and the
// event's own timezone so that hourly timestamps and the sunrise/sunset
// table line up with the local calendar day the scorer reasons about.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fairhour/internal/external"
	"fairhour/internal/types"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com"

// localHourLayout is the timestamp format Open-Meteo uses for hourly values
// when a timezone parameter is supplied (local wall time, no offset).
const localHourLayout = "2006-01-02T15:04"

// hourlyVariables lists the per-hour metrics requested from the provider, in
// the order the scorer consumes them.
const hourlyVariables = "temperature_2m,relative_humidity_2m,apparent_temperature," +
	"weather_code,wind_speed_10m,uv_index,precipitation_probability,cloud_cover,visibility"

// Client fetches hourly forecasts from Open-Meteo. It implements
// types.ForecastProvider and routes all HTTP traffic through the shared
// BaseClient for retries, circuit breaking, and error mapping.
type Client struct {
	base    *external.BaseClient
	baseURL string
	logger  *slog.Logger
}

// NewClient creates an Open-Meteo client. An empty baseURL selects the public
// endpoint; tests point it at a local server.
func NewClient(base *external.BaseClient, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:    base,
		baseURL: baseURL,
		logger:  logger,
	}
}

// openMeteoResponse mirrors the subset of the Open-Meteo payload we consume.
type openMeteoResponse struct {
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		Humidity    []float64 `json:"relative_humidity_2m"`
		FeelsLike   []float64 `json:"apparent_temperature"`
		WeatherCode []int     `json:"weather_code"`
		WindSpeed   []float64 `json:"wind_speed_10m"`
		UVIndex     []float64 `json:"uv_index"`
		PrecipProb  []float64 `json:"precipitation_probability"`
		CloudCover  []float64 `json:"cloud_cover"`
		VisibilityM []float64 `json:"visibility"`
	} `json:"hourly"`
	Daily struct {
		Time    []string `json:"time"`
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

// Fetch retrieves the hourly forecast and daily sun table for the given
// coordinates over the requested horizon. Timestamps are returned in the
// event's timezone.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, timezone string, horizonDays int) (*types.ForecastSeries, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidTimezone,
			fmt.Sprintf("unknown timezone %q", timezone),
			err,
		)
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("hourly", hourlyVariables)
	q.Set("daily", "sunrise,sunset")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("wind_speed_unit", "mph")
	q.Set("timezone", timezone)
	q.Set("forecast_days", strconv.Itoa(horizonDays))

	reqURL := fmt.Sprintf("%s/v1/forecast?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build forecast request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, c.wrapUpstream(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamForecast,
			fmt.Sprintf("forecast provider returned %d", resp.StatusCode),
			nil,
		)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "failed to decode forecast response", err)
	}

	series, err := buildSeries(&payload, loc)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "forecast fetched",
		"lat", lat,
		"lon", lon,
		"timezone", timezone,
		"hours", series.Len(),
		"days", len(series.Sun),
	)

	return series, nil
}

// wrapUpstream rebrands generic transport failures as forecast-specific so
// callers and metrics can distinguish the two external dependencies. Rate
// limit errors keep their code for correct 429 propagation.
func (c *Client) wrapUpstream(err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Code == types.ErrCodeUpstreamRateLimited {
		return err
	}
	return types.NewAppError(types.ErrCodeUpstreamForecast, "forecast provider unavailable", err)
}

// buildSeries validates slice alignment and converts the raw payload into a
// ForecastSeries. CloudCover and Visibility may be absent; every other hourly
// metric must cover all timestamps.
func buildSeries(payload *openMeteoResponse, loc *time.Location) (*types.ForecastSeries, error) {
	h := payload.Hourly
	n := len(h.Time)

	required := map[string]int{
		"temperature_2m":            len(h.Temperature),
		"relative_humidity_2m":      len(h.Humidity),
		"apparent_temperature":      len(h.FeelsLike),
		"weather_code":              len(h.WeatherCode),
		"wind_speed_10m":            len(h.WindSpeed),
		"uv_index":                  len(h.UVIndex),
		"precipitation_probability": len(h.PrecipProb),
	}
	for name, got := range required {
		if got != n {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamForecast,
				fmt.Sprintf("misaligned hourly series: %s has %d values for %d timestamps", name, got, n),
				nil,
			)
		}
	}

	series := &types.ForecastSeries{
		Times:       make([]time.Time, 0, n),
		Temperature: h.Temperature,
		Humidity:    h.Humidity,
		FeelsLike:   h.FeelsLike,
		WeatherCode: h.WeatherCode,
		WindSpeed:   h.WindSpeed,
		UVIndex:     h.UVIndex,
		PrecipProb:  h.PrecipProb,
		Sun:         make(map[string]types.SunTimes, len(payload.Daily.Time)),
	}
	if len(h.CloudCover) == n {
		series.CloudCover = h.CloudCover
	}
	if len(h.VisibilityM) == n {
		series.Visibility = h.VisibilityM
	}

	for _, raw := range h.Time {
		ts, err := time.ParseInLocation(localHourLayout, raw, loc)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamForecast,
				fmt.Sprintf("unparseable hourly timestamp %q", raw),
				err,
			)
		}
		series.Times = append(series.Times, ts)
	}

	d := payload.Daily
	if len(d.Sunrise) != len(d.Time) || len(d.Sunset) != len(d.Time) {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamForecast,
			"misaligned daily sunrise/sunset series",
			nil,
		)
	}
	for i, day := range d.Time {
		sunrise, err := time.ParseInLocation(localHourLayout, d.Sunrise[i], loc)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamForecast,
				fmt.Sprintf("unparseable sunrise %q", d.Sunrise[i]),
				err,
			)
		}
		sunset, err := time.ParseInLocation(localHourLayout, d.Sunset[i], loc)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamForecast,
				fmt.Sprintf("unparseable sunset %q", d.Sunset[i]),
				err,
			)
		}
		series.Sun[day] = types.SunTimes{Sunrise: sunrise, Sunset: sunset}
	}

	return series, nil
}
