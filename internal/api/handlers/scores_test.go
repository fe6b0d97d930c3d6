package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairhour/internal/types"
)

func newScoreRouter(provider *mockForecastProvider) http.Handler {
	h := NewScoreHandler(provider, fixedClock{now: testNow}, testHandlerLogger())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func previewURL(params map[string]string) string {
	base := map[string]string{
		"lat":      "45.52",
		"lon":      "-122.68",
		"timezone": "UTC",
		"mode":     "running",
		"time":     schedTime.Format(time.RFC3339),
	}
	for k, v := range params {
		if v == "" {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
	q := url.Values{}
	for k, v := range base {
		q.Set(k, v)
	}
	return "/scores?" + q.Encode()
}

func TestHandlePreview_Success(t *testing.T) {
	router := newScoreRouter(&mockForecastProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, previewURL(nil), nil))

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var resp struct {
		Data scorePreviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.ModeRunning, resp.Data.Mode)
	assert.InDelta(t, 96.1, resp.Data.Score, 0.05)
	assert.Equal(t, types.RatingExcellent, resp.Data.Rating)
}

func TestHandlePreview_DegradedTargetSuggestsAlternative(t *testing.T) {
	provider := &mockForecastProvider{
		fetchFn: func(context.Context, float64, float64, string, int) (*types.ForecastSeries, error) {
			s := clearSeries()
			// Ruin only the target hour (index 2 is 12:00).
			s.WeatherCode[2] = 65
			s.PrecipProb[2] = 90
			s.CloudCover[2] = 100
			return s, nil
		},
	}
	router := newScoreRouter(provider)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, previewURL(nil), nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data scorePreviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Alternative)
	assert.Greater(t, resp.Data.Alternative.Score, resp.Data.Score)
	assert.NotEqual(t, schedTime, resp.Data.Alternative.Time)
}

func TestHandlePreview_ParameterErrors(t *testing.T) {
	cases := []struct {
		name     string
		params   map[string]string
		wantCode types.ErrorCode
	}{
		{"missing lat", map[string]string{"lat": ""}, types.ErrCodeValidationMissingField},
		{"non-numeric lat", map[string]string{"lat": "north"}, types.ErrCodeValidationInvalidLat},
		{"lat out of range", map[string]string{"lat": "91"}, types.ErrCodeValidationInvalidLat},
		{"lon out of range", map[string]string{"lon": "-200"}, types.ErrCodeValidationInvalidLon},
		{"missing timezone", map[string]string{"timezone": ""}, types.ErrCodeValidationMissingField},
		{"unknown mode", map[string]string{"mode": "swimming"}, types.ErrCodeValidationInvalidMode},
		{"bad time", map[string]string{"time": "noonish"}, types.ErrCodeValidationInvalidTime},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newScoreRouter(&mockForecastProvider{})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, previewURL(tc.params), nil))

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, string(tc.wantCode), decodeError(t, w).Error.Code)
		})
	}
}

func TestHandlePreview_ForecastUnavailable(t *testing.T) {
	provider := &mockForecastProvider{
		fetchFn: func(context.Context, float64, float64, string, int) (*types.ForecastSeries, error) {
			return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "open-meteo unavailable", nil)
		},
	}
	router := newScoreRouter(provider)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, previewURL(nil), nil))

	require.Equal(t, http.StatusBadGateway, w.Code)
}
