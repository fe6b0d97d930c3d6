package scoring

import (
	"time"

	"fairhour/internal/types"
)

// twilightBand is the closed interval around each solar event classified as
// twilight. Ties at exactly the boundary favor the twilight classification.
const twilightBand = 30 * time.Minute

// Daylight multipliers for activities that want light.
const (
	daylightFull     = 1.0
	daylightTwilight = 0.6
	daylightNight    = 0.3
)

// Darkness multipliers for stargazing.
const (
	darknessDeepNight = 1.0
	darknessTwilight  = 0.3
	darknessDaylight  = 0.05
)

// ComputeDaylight classifies an hour against the day's sunrise/sunset and
// returns the lit flag plus the daylight multiplier.
//
// Inside sunrise-sunset: lit=true with multiplier 1.0, dropping to 0.6 within
// 30 minutes of either boundary. Outside the span but within 30 minutes of a
// boundary: lit=false, 0.6. Deep night: lit=false, 0.3. A day missing from
// the table fails open to (true, 1.0) rather than erroring.
func ComputeDaylight(t time.Time, sun map[string]types.SunTimes) (bool, float64) {
	st, ok := sun[types.DayKey(t)]
	if !ok {
		return true, daylightFull
	}

	lit := isLit(t, st)
	if nearBoundary(t, st) {
		return lit, daylightTwilight
	}
	if lit {
		return true, daylightFull
	}
	return false, daylightNight
}

// ComputeDarkness is the stargazing variant: symmetric inverse weighting.
//
// Deep night scores 1.0; the twilight band scores 0.3 on both sides of each
// boundary; full daylight scores 0.05. A day missing from the table fails
// open to (false, 0.05): unknown hours stay usable but heavily discounted,
// never a hard error.
func ComputeDarkness(t time.Time, sun map[string]types.SunTimes) (bool, float64) {
	st, ok := sun[types.DayKey(t)]
	if !ok {
		return false, darknessDaylight
	}

	lit := isLit(t, st)
	if nearBoundary(t, st) {
		return lit, darknessTwilight
	}
	if lit {
		return true, darknessDaylight
	}
	return false, darknessDeepNight
}

// isLit reports whether t falls within the sunrise-sunset span. The span is
// closed: the exact sunrise and sunset instants count as lit.
func isLit(t time.Time, st types.SunTimes) bool {
	return !t.Before(st.Sunrise) && !t.After(st.Sunset)
}

// nearBoundary reports whether t is within the closed twilight band of either
// solar event.
func nearBoundary(t time.Time, st types.SunTimes) bool {
	return absDuration(t.Sub(st.Sunrise)) <= twilightBand ||
		absDuration(t.Sub(st.Sunset)) <= twilightBand
}

// absDuration returns the absolute value of a time.Duration.
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
