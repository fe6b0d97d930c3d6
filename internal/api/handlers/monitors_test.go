package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairhour/internal/core"
	"fairhour/internal/types"
)

// =============================================================================
// Mocks
// =============================================================================

type mockMonitorService struct {
	initializeFn func(ctx context.Context, e *types.MonitoredEvent) error
	statusFn     func(ctx context.Context, id string) (*types.MonitoredEvent, error)

	lastInitialized *types.MonitoredEvent
}

func (m *mockMonitorService) Initialize(ctx context.Context, e *types.MonitoredEvent) error {
	m.lastInitialized = e
	if m.initializeFn != nil {
		return m.initializeFn(ctx, e)
	}
	return nil
}

func (m *mockMonitorService) Status(ctx context.Context, id string) (*types.MonitoredEvent, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, id)
	}
	return &types.MonitoredEvent{
		ID:            id,
		Contact:       "runner@example.com",
		Mode:          types.ModeRunning,
		ScheduledTime: schedTime,
		DurationMin:   60,
		Location:      types.Location{Lat: 45.52, Lon: -122.68},
		Timezone:      "UTC",
		InitialScore:  96.1,
		Credential:    types.SecretString("sg-key"),
	}, nil
}

type mockForecastProvider struct {
	fetchFn func(ctx context.Context, lat, lon float64, timezone string, horizonDays int) (*types.ForecastSeries, error)
}

func (m *mockForecastProvider) Fetch(ctx context.Context, lat, lon float64, timezone string, horizonDays int) (*types.ForecastSeries, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, lat, lon, timezone, horizonDays)
	}
	return clearSeries(), nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// =============================================================================
// Fixtures
// =============================================================================

// Scheduled slot: 2026-06-15 12:00 UTC; sun 05:30-20:30; "now" is 06:00.
var (
	schedTime = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	testNow   = time.Date(2026, 6, 15, 6, 0, 0, 0, time.UTC)
)

// clearSeries covers 10:00-15:00 with ideal running conditions.
func clearSeries() *types.ForecastSeries {
	s := &types.ForecastSeries{
		Sun: map[string]types.SunTimes{
			"2026-06-15": {
				Sunrise: time.Date(2026, 6, 15, 5, 30, 0, 0, time.UTC),
				Sunset:  time.Date(2026, 6, 15, 20, 30, 0, 0, time.UTC),
			},
		},
	}
	for h := 10; h <= 15; h++ {
		s.Times = append(s.Times, time.Date(2026, 6, 15, h, 0, 0, 0, time.UTC))
		s.Temperature = append(s.Temperature, 68)
		s.FeelsLike = append(s.FeelsLike, 70)
		s.Humidity = append(s.Humidity, 40)
		s.WeatherCode = append(s.WeatherCode, 0)
		s.WindSpeed = append(s.WindSpeed, 5)
		s.UVIndex = append(s.UVIndex, 3)
		s.PrecipProb = append(s.PrecipProb, 0)
		s.CloudCover = append(s.CloudCover, 10)
		s.Visibility = append(s.Visibility, 30000)
	}
	return s
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newMonitorRouter(svc *mockMonitorService, provider *mockForecastProvider) http.Handler {
	h := NewMonitorHandler(svc, provider, core.NewValidator(testHandlerLogger()), fixedClock{now: testNow}, testHandlerLogger())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func validCreateBody() string {
	return fmt.Sprintf(`{
		"contact": "runner@example.com",
		"mode": "running",
		"scheduled_time": %q,
		"duration_minutes": 60,
		"lat": 45.52,
		"lon": -122.68,
		"location_name": "Waterfront Loop",
		"timezone": "UTC",
		"sendgrid_key": "sg-key"
	}`, schedTime.Format(time.RFC3339))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) core.APIErrorResponse {
	t.Helper()
	var resp core.APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// HandleCreate
// =============================================================================

func TestHandleCreate_Success(t *testing.T) {
	svc := &mockMonitorService{}
	router := newMonitorRouter(svc, &mockForecastProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/monitors", strings.NewReader(validCreateBody())))

	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp struct {
		Data monitorResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, strings.HasPrefix(resp.Data.ID, "evt_"))
	assert.Equal(t, types.ModeRunning, resp.Data.Mode)
	assert.InDelta(t, 96.1, resp.Data.InitialScore, 0.05)
	assert.Equal(t, types.RatingExcellent, resp.Data.InitialRating)
	assert.False(t, resp.Data.AlertSent)

	require.NotNil(t, svc.lastInitialized)
	assert.Equal(t, "sg-key", svc.lastInitialized.Credential.Unmask())
	assert.Equal(t, "Waterfront Loop", svc.lastInitialized.Location.DisplayName)
}

func TestHandleCreate_CredentialNotEchoed(t *testing.T) {
	router := newMonitorRouter(&mockMonitorService{}, &mockForecastProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/monitors", strings.NewReader(validCreateBody())))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "sg-key")
}

func TestHandleCreate_MalformedJSON(t *testing.T) {
	router := newMonitorRouter(&mockMonitorService{}, &mockForecastProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/monitors", strings.NewReader(`{"contact":`)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidJSON), decodeError(t, w).Error.Code)
}

func TestHandleCreate_ValidationFailure(t *testing.T) {
	svc := &mockMonitorService{}
	router := newMonitorRouter(svc, &mockForecastProvider{})

	body := strings.Replace(validCreateBody(), "runner@example.com", "not-an-email", 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/monitors", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidEmail), decodeError(t, w).Error.Code)
	assert.Nil(t, svc.lastInitialized, "nothing may be persisted on validation failure")
}

func TestHandleCreate_PastScheduledTime(t *testing.T) {
	svc := &mockMonitorService{}
	router := newMonitorRouter(svc, &mockForecastProvider{})

	body := strings.Replace(validCreateBody(),
		schedTime.Format(time.RFC3339),
		testNow.Add(-time.Hour).Format(time.RFC3339), 1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/monitors", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidTime), decodeError(t, w).Error.Code)
	assert.Nil(t, svc.lastInitialized)
}

func TestHandleCreate_ForecastUnavailable(t *testing.T) {
	provider := &mockForecastProvider{
		fetchFn: func(context.Context, float64, float64, string, int) (*types.ForecastSeries, error) {
			return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "open-meteo unavailable", nil)
		},
	}
	svc := &mockMonitorService{}
	router := newMonitorRouter(svc, provider)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/monitors", strings.NewReader(validCreateBody())))

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Nil(t, svc.lastInitialized)
}

func TestHandleCreate_ServiceConflict(t *testing.T) {
	svc := &mockMonitorService{
		initializeFn: func(context.Context, *types.MonitoredEvent) error {
			return types.NewAppError(types.ErrCodeConflictMonitorExists, "monitor already exists", nil)
		},
	}
	router := newMonitorRouter(svc, &mockForecastProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/monitors", strings.NewReader(validCreateBody())))

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(types.ErrCodeConflictMonitorExists), decodeError(t, w).Error.Code)
}

// =============================================================================
// HandleGet
// =============================================================================

func TestHandleGet_Success(t *testing.T) {
	router := newMonitorRouter(&mockMonitorService{}, &mockForecastProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitors/evt_abc123", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data monitorResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "evt_abc123", resp.Data.ID)
	assert.Equal(t, types.RatingExcellent, resp.Data.InitialRating)
	assert.NotContains(t, w.Body.String(), "sg-key")
}

func TestHandleGet_NotFound(t *testing.T) {
	svc := &mockMonitorService{
		statusFn: func(_ context.Context, id string) (*types.MonitoredEvent, error) {
			return nil, types.NewAppError(types.ErrCodeNotFoundMonitor, "monitor not found", nil)
		},
	}
	router := newMonitorRouter(svc, &mockForecastProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitors/evt_gone", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(types.ErrCodeNotFoundMonitor), decodeError(t, w).Error.Code)
}
