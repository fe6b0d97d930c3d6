package types

import (
	"time"
)

// Location represents a geographic coordinate with an optional display name.
type Location struct {
	Lat         float64 `json:"lat" db:"location_lat"`
	Lon         float64 `json:"lon" db:"location_lon"`
	DisplayName string  `json:"display_name,omitempty" db:"location_display_name"`
}

// SunTimes holds the sunrise and sunset instants for one calendar day.
type SunTimes struct {
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`
}

// DayKey formats a timestamp as the local-date key used by ForecastSeries.Sun.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// HourSample is one fully resolved forecast hour, ready for scoring.
// Immutable once built; constructed fresh per scoring call.
type HourSample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature_f"`
	Humidity    float64   `json:"humidity_percent"`
	FeelsLike   float64   `json:"feels_like_f"`
	WeatherCode int       `json:"weather_code"`
	WindSpeed   float64   `json:"wind_speed_mph"`
	UVIndex     float64   `json:"uv_index"`
	PrecipProb  float64   `json:"precipitation_probability"`
	CloudCover  float64   `json:"cloud_cover_percent"`
	Visibility  float64   `json:"visibility_m"`

	// Light classification for the hour. Lit reports whether the hour falls
	// inside the sunrise-sunset span; LightFactor is the [0,1] multiplier
	// applied to the composite score (daylight or darkness weighting,
	// depending on the activity mode the sample was resolved for).
	Lit         bool    `json:"lit"`
	LightFactor float64 `json:"light_factor"`
}

// ScoredHour is an HourSample plus its composite suitability score and
// qualitative rating. Derived, never mutated after creation.
type ScoredHour struct {
	HourSample
	Score  float64 `json:"score"`
	Rating Rating  `json:"rating"`
}

// ForecastSeries is an ordered sequence of hourly forecast values as raw
// arrays aligned by index, plus a per-day sunrise/sunset table keyed by local
// calendar date (DayKey format).
//
// Invariant: all required per-metric slices share the same length and index
// alignment. CloudCover and Visibility are optional; a nil slice means the
// provider omitted the metric and consumers substitute the neutral defaults
// (50% cover, 20 000 m visibility) instead of failing.
type ForecastSeries struct {
	Times       []time.Time
	Temperature []float64 // °F
	Humidity    []float64 // %
	FeelsLike   []float64 // °F
	WeatherCode []int     // WMO code
	WindSpeed   []float64 // mph
	UVIndex     []float64
	PrecipProb  []float64 // %
	CloudCover  []float64 // %, optional
	Visibility  []float64 // meters, optional

	Sun map[string]SunTimes
}

// Len returns the number of hourly samples in the series.
func (s *ForecastSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Times)
}

// MonitoredEvent is the persistent record for one scheduled activity under
// deterioration monitoring. The AlertSent flag transitions false->true exactly
// once; the whole record is deleted once the scheduled time has passed.
type MonitoredEvent struct {
	ID            string       `json:"id" db:"id"`
	Contact       string       `json:"contact" db:"contact"`
	Mode          Mode         `json:"mode" db:"mode"`
	ScheduledTime time.Time    `json:"scheduled_time" db:"scheduled_time"`
	DurationMin   int          `json:"duration_minutes" db:"duration_minutes"`
	Location      Location     `json:"location" db:"-"`
	Timezone      string       `json:"timezone" db:"timezone"`
	InitialScore  float64      `json:"initial_score" db:"initial_score"`
	AlertSent     bool         `json:"alert_sent" db:"alert_sent"`
	Credential    SecretString `json:"-" db:"credential"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// Expired reports whether the event's scheduled time has passed as of now.
func (e *MonitoredEvent) Expired(now time.Time) bool {
	return now.After(e.ScheduledTime)
}

// AlternativeSlot is a different hour within the search window that scores
// higher than the originally scheduled hour under the same mode.
type AlternativeSlot struct {
	Time  time.Time `json:"time"`
	Score float64   `json:"score"`
}

// DeteriorationPayload is the contract handed to the notification dispatcher
// when an event's score has dropped past the alert threshold.
type DeteriorationPayload struct {
	Contact       string           `json:"contact"`
	Mode          Mode             `json:"mode"`
	ScheduledTime time.Time        `json:"scheduled_time"`
	DurationMin   int              `json:"duration_minutes"`
	Location      Location         `json:"location"`
	Timezone      string           `json:"timezone"`
	InitialScore  float64          `json:"initial_score"`
	CurrentScore  float64          `json:"current_score"`
	Alternative   *AlternativeSlot `json:"alternative,omitempty"`
}

// CalendarInvite is the input contract for the calendar-export collaborator.
type CalendarInvite struct {
	Title       string
	Start       time.Time
	Duration    time.Duration
	Description string
	Location    string
}
