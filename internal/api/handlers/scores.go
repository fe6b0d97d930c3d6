package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fairhour/internal/core"
	"fairhour/internal/monitor"
	"fairhour/internal/scoring"
	"fairhour/internal/types"
)

// ScoreHandler serves score previews: the suitability of a candidate hour for
// an activity, without arming a monitor.
type ScoreHandler struct {
	provider types.ForecastProvider
	clock    types.Clock
	logger   *slog.Logger
}

// NewScoreHandler creates a ScoreHandler with the provided dependencies.
func NewScoreHandler(provider types.ForecastProvider, clock types.Clock, logger *slog.Logger) *ScoreHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreHandler{
		provider: provider,
		clock:    clock,
		logger:   logger,
	}
}

// RegisterRoutes mounts the score endpoints onto the mux.
func (h *ScoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/scores", h.HandlePreview)
}

// scorePreviewResponse is the GET /v1/scores response body.
type scorePreviewResponse struct {
	Mode        types.Mode             `json:"mode"`
	Time        time.Time              `json:"time"`
	Score       float64                `json:"score"`
	Rating      types.Rating           `json:"rating"`
	Alternative *types.AlternativeSlot `json:"alternative,omitempty"`
}

// HandlePreview handles GET /v1/scores. Query parameters: lat, lon, timezone,
// mode, time (RFC 3339). Resolves the forecast hour nearest to the requested
// time, scores it for the mode, and reports the best alternative slot in the
// surrounding window.
func (h *ScoreHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := parseCoordinate(q.Get("lat"), -90, 90, types.ErrCodeValidationInvalidLat, "lat")
	if err != nil {
		core.Error(w, r, err)
		return
	}
	lon, err := parseCoordinate(q.Get("lon"), -180, 180, types.ErrCodeValidationInvalidLon, "lon")
	if err != nil {
		core.Error(w, r, err)
		return
	}

	timezone := q.Get("timezone")
	if timezone == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"timezone query parameter is required",
			nil,
		))
		return
	}

	mode := types.Mode(q.Get("mode"))
	if !mode.Valid() {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidMode,
			"mode must be one of the supported activity modes",
			nil,
		))
		return
	}

	target, err := time.Parse(time.RFC3339, q.Get("time"))
	if err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidTime,
			"time must be an RFC 3339 timestamp",
			nil,
		))
		return
	}

	series, err := h.provider.Fetch(r.Context(), lat, lon, timezone, monitor.ForecastHorizonDays)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	score := scoring.ResolveAndScore(series, target, mode)
	resp := scorePreviewResponse{
		Mode:        mode,
		Time:        target,
		Score:       score,
		Rating:      scoring.RatingFor(score),
		Alternative: scoring.FindBestAlternative(series, target, mode, h.clock),
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// parseCoordinate parses a required latitude or longitude query parameter and
// range-checks it.
func parseCoordinate(raw string, min, max float64, code types.ErrorCode, name string) (float64, error) {
	if raw == "" {
		return 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			name+" query parameter is required",
			nil,
		)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, types.NewAppError(code, name+" must be a valid number", nil)
	}
	if v < min || v > max {
		return 0, types.NewAppError(code, name+" is out of range", nil)
	}
	return v, nil
}
