// Package handlers contains the HTTP handler implementations for the
// FairHour API: monitor lifecycle (create, status) and score previews.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fairhour/internal/core"
	"fairhour/internal/monitor"
	"fairhour/internal/scoring"
	"fairhour/internal/types"
)

// MonitorServiceInterface is the service contract for the monitor handler.
// Defined locally to avoid tight coupling to the monitor package.
type MonitorServiceInterface interface {
	Initialize(ctx context.Context, e *types.MonitoredEvent) error
	Status(ctx context.Context, id string) (*types.MonitoredEvent, error)
}

// MonitorHandler maps HTTP requests to monitoring service operations.
type MonitorHandler struct {
	service   MonitorServiceInterface
	provider  types.ForecastProvider
	validator *core.Validator
	clock     types.Clock
	logger    *slog.Logger
}

// NewMonitorHandler creates a MonitorHandler with the provided dependencies.
func NewMonitorHandler(
	svc MonitorServiceInterface,
	provider types.ForecastProvider,
	val *core.Validator,
	clock types.Clock,
	logger *slog.Logger,
) *MonitorHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorHandler{
		service:   svc,
		provider:  provider,
		validator: val,
		clock:     clock,
		logger:    logger,
	}
}

// RegisterRoutes mounts the monitor endpoints onto the mux.
func (h *MonitorHandler) RegisterRoutes(r chi.Router) {
	r.Post("/monitors", h.HandleCreate)
	r.Get("/monitors/{id}", h.HandleGet)
}

// createMonitorRequest is the POST /v1/monitors request body.
type createMonitorRequest struct {
	Contact         string    `json:"contact" validate:"required,email"`
	Mode            string    `json:"mode" validate:"required,is_mode"`
	ScheduledTime   time.Time `json:"scheduled_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0"`
	Lat             float64   `json:"lat" validate:"latitude"`
	Lon             float64   `json:"lon" validate:"longitude"`
	LocationName    string    `json:"location_name"`
	Timezone        string    `json:"timezone" validate:"required,is_timezone"`
	SendGridKey     string    `json:"sendgrid_key"`
}

// monitorResponse is the representation of a monitored event returned to
// clients. The notification credential is never echoed back.
type monitorResponse struct {
	ID              string         `json:"id"`
	Contact         string         `json:"contact"`
	Mode            types.Mode     `json:"mode"`
	ScheduledTime   time.Time      `json:"scheduled_time"`
	DurationMinutes int            `json:"duration_minutes"`
	Location        types.Location `json:"location"`
	Timezone        string         `json:"timezone"`
	InitialScore    float64        `json:"initial_score"`
	InitialRating   types.Rating   `json:"initial_rating"`
	AlertSent       bool           `json:"alert_sent"`
	CreatedAt       time.Time      `json:"created_at,omitempty"`
}

func toMonitorResponse(e *types.MonitoredEvent) monitorResponse {
	return monitorResponse{
		ID:              e.ID,
		Contact:         e.Contact,
		Mode:            e.Mode,
		ScheduledTime:   e.ScheduledTime,
		DurationMinutes: e.DurationMin,
		Location:        e.Location,
		Timezone:        e.Timezone,
		InitialScore:    e.InitialScore,
		InitialRating:   scoring.RatingFor(e.InitialScore),
		AlertSent:       e.AlertSent,
		CreatedAt:       e.CreatedAt,
	}
}

// HandleCreate handles POST /v1/monitors. Malformed input is rejected before
// anything is persisted; the initial score is computed from a fresh forecast
// at scheduling time.
func (h *MonitorHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createMonitorRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if !req.ScheduledTime.After(h.clock.Now()) {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidTime,
			"scheduled_time must be in the future",
			nil,
		))
		return
	}

	series, err := h.provider.Fetch(r.Context(), req.Lat, req.Lon, req.Timezone, monitor.ForecastHorizonDays)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	mode := types.Mode(req.Mode)
	event := &types.MonitoredEvent{
		ID:            "evt_" + uuid.NewString(),
		Contact:       req.Contact,
		Mode:          mode,
		ScheduledTime: req.ScheduledTime,
		DurationMin:   req.DurationMinutes,
		Location: types.Location{
			Lat:         req.Lat,
			Lon:         req.Lon,
			DisplayName: req.LocationName,
		},
		Timezone:     req.Timezone,
		InitialScore: scoring.ResolveAndScore(series, req.ScheduledTime, mode),
		Credential:   types.SecretString(req.SendGridKey),
	}

	if err := h.service.Initialize(r.Context(), event); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "monitor created",
		"event_id", event.ID,
		"mode", event.Mode,
		"initial_score", event.InitialScore,
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: toMonitorResponse(event)})
}

// HandleGet handles GET /v1/monitors/{id}. Unknown and terminated monitors
// both yield 404.
func (h *MonitorHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.service.Status(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: toMonitorResponse(event)})
}
