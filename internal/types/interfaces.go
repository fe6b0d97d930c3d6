package types

import (
	"context"
	"time"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// ForecastProvider fetches an hourly forecast series for a location.
// Implementations fail with an upstream AppError on non-success status;
// callers treat any such failure as transient and do not retry within the
// same check cycle.
type ForecastProvider interface {
	Fetch(ctx context.Context, lat, lon float64, timezone string, horizonDays int) (*ForecastSeries, error)
}

// NotificationDispatcher delivers a deterioration notification using the
// per-event credential. Failure is non-fatal to the monitoring loop.
type NotificationDispatcher interface {
	Send(ctx context.Context, payload DeteriorationPayload, credential SecretString) error
}

// CalendarExporter produces a portable calendar attachment for an invite.
type CalendarExporter interface {
	Export(invite CalendarInvite) []byte
}
