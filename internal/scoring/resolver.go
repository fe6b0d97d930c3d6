package scoring

import (
	"time"

	"fairhour/internal/types"
)

// NeutralScore is returned when no forecast data is available to score
// against. Callers must treat it as a deliberate "no data" sentinel, not a
// real score.
const NeutralScore = 50.0

// alternativeWindow bounds the alternative-slot search to hours within this
// distance of the target.
const alternativeWindow = 4 * time.Hour

// ResolveAndScore maps a target timestamp onto the nearest available hourly
// sample and scores it for the mode. An exact match on the truncated-to-hour
// timestamp is preferred; otherwise the sample minimizing absolute time
// distance to the target wins. An empty series returns NeutralScore.
func ResolveAndScore(series *types.ForecastSeries, target time.Time, mode types.Mode) float64 {
	idx, ok := nearestIndex(series, target)
	if !ok {
		return NeutralScore
	}
	return Score(BuildSample(series, idx, mode), mode).Score
}

// BuildSample constructs the fully populated HourSample at index idx,
// substituting the neutral defaults for missing optional metrics and
// attaching the light classification appropriate to the mode (darkness for
// nocturnal modes, daylight otherwise).
func BuildSample(series *types.ForecastSeries, idx int, mode types.Mode) types.HourSample {
	sample := types.HourSample{
		Time:        series.Times[idx],
		Temperature: series.Temperature[idx],
		Humidity:    series.Humidity[idx],
		FeelsLike:   series.FeelsLike[idx],
		WeatherCode: series.WeatherCode[idx],
		WindSpeed:   series.WindSpeed[idx],
		UVIndex:     series.UVIndex[idx],
		PrecipProb:  series.PrecipProb[idx],
		CloudCover:  DefaultCloudCover,
		Visibility:  DefaultVisibility,
	}
	if idx < len(series.CloudCover) {
		sample.CloudCover = series.CloudCover[idx]
	}
	if idx < len(series.Visibility) {
		sample.Visibility = series.Visibility[idx]
	}

	if mode.Nocturnal() {
		sample.Lit, sample.LightFactor = ComputeDarkness(sample.Time, series.Sun)
	} else {
		sample.Lit, sample.LightFactor = ComputeDaylight(sample.Time, series.Sun)
	}
	return sample
}

// FindBestAlternative scans the series for a better slot near the target:
// same calendar date, within ±4 hours, strictly in the future, not the target
// slot itself, and with a light classification compatible with the mode.
// Among eligible slots the highest score wins; ties resolve to the first in
// chronological series order. Returns nil when no eligible slot exists --
// an expected outcome, not an error.
func FindBestAlternative(series *types.ForecastSeries, target time.Time, mode types.Mode, clock types.Clock) *types.AlternativeSlot {
	if series.Len() == 0 {
		return nil
	}

	now := clock.Now()
	targetHour := target.Truncate(time.Hour)
	ty, tm, td := target.Date()

	var best *types.AlternativeSlot
	for i, ts := range series.Times {
		if !ts.After(now) {
			continue
		}
		if ts.Equal(targetHour) {
			continue
		}
		y, m, d := ts.In(target.Location()).Date()
		if y != ty || m != tm || d != td {
			continue
		}
		if absDuration(ts.Sub(target)) > alternativeWindow {
			continue
		}

		sample := BuildSample(series, i, mode)
		if mode.Nocturnal() == sample.Lit {
			// Lit hours are useless for stargazing; dark ones for the rest.
			continue
		}

		scored := Score(sample, mode)
		if best == nil || scored.Score > best.Score {
			best = &types.AlternativeSlot{Time: ts, Score: scored.Score}
		}
	}
	return best
}

// nearestIndex resolves the series index for a target timestamp. Exact match
// on the truncated-to-hour timestamp is preferred; otherwise the index with
// the minimum absolute distance to the target is selected. Returns false for
// an empty series.
func nearestIndex(series *types.ForecastSeries, target time.Time) (int, bool) {
	if series.Len() == 0 {
		return 0, false
	}

	targetHour := target.Truncate(time.Hour)
	bestIdx := 0
	bestDiff := absDuration(series.Times[0].Sub(target))
	for i, ts := range series.Times {
		if ts.Equal(targetHour) {
			return i, true
		}
		diff := absDuration(ts.Sub(target))
		if diff < bestDiff {
			bestIdx = i
			bestDiff = diff
		}
	}
	return bestIdx, true
}
