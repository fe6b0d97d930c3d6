package scoring

import (
	"math"

	"fairhour/internal/types"
)

// Rating thresholds for the composite score.
const (
	ratingExcellentMin = 80.0
	ratingGoodMin      = 65.0
	ratingFairMin      = 45.0
)

// pavementUVGain scales the UV contribution to the synthetic pavement
// temperature. Full sun at UV 10 adds 30°F over air temperature; cloud cover
// attenuates the boost linearly.
const pavementUVGain = 3.0

// Score computes the composite suitability of one forecast hour for the given
// activity mode: every applicable sub-score independently in [0,100], the
// weighted sum per the mode's weight table, scaled by the hour's light factor
// and rounded to one decimal. Total and side-effect-free; an unknown mode
// falls back to the walking tables.
func Score(hour types.HourSample, mode types.Mode) types.ScoredHour {
	t, ok := modeTables[mode]
	if !ok {
		t = modeTables[types.ModeWalking]
	}

	w := t.Weights
	composite := w.Temperature * t.Temperature.Eval(hour.FeelsLike)
	composite += w.Wind * t.Wind.Eval(hour.WindSpeed)
	composite += w.Precip * t.Precip.Eval(hour.PrecipProb)
	composite += w.Code * codeScore(t.Codes, hour.WeatherCode)

	if t.Humidity != nil {
		composite += w.Humidity * t.Humidity.Eval(hour.Humidity)
	}
	if t.UV != nil {
		composite += w.UV * t.UV.Eval(hour.UVIndex)
	}
	if t.Pavement != nil {
		pavement := PavementTemperature(hour.Temperature, hour.UVIndex, hour.CloudCover)
		composite += w.Pavement * t.Pavement.Eval(pavement)
	}
	if t.CloudCover != nil {
		composite += w.CloudCover * t.CloudCover.Eval(hour.CloudCover)
	}
	if t.Visibility != nil {
		composite += w.Visibility * t.Visibility.Eval(hour.Visibility)
	}

	composite = round1(clampScore(composite) * hour.LightFactor)

	return types.ScoredHour{
		HourSample: hour,
		Score:      composite,
		Rating:     RatingFor(composite),
	}
}

// PavementTemperature estimates surface temperature from air temperature, UV
// index, and cloud cover: air °F boosted by UV scaled by inverse cloud cover.
// A closed-form heuristic for paw safety, not a physical simulation.
func PavementTemperature(airF, uvIndex, cloudCover float64) float64 {
	shade := 1.0 - cloudCover/100.0
	if shade < 0 {
		shade = 0
	}
	return airF + uvIndex*pavementUVGain*shade
}

// RatingFor maps a composite score to its qualitative band.
func RatingFor(score float64) types.Rating {
	switch {
	case score >= ratingExcellentMin:
		return types.RatingExcellent
	case score >= ratingGoodMin:
		return types.RatingGood
	case score >= ratingFairMin:
		return types.RatingFair
	default:
		return types.RatingPoor
	}
}

// codeScore looks up the categorical weather-code sub-score, defaulting to
// the neutral value for unmapped codes.
func codeScore(codes map[int]float64, code int) float64 {
	if s, ok := codes[code]; ok {
		return clampScore(s)
	}
	return unmappedCodeScore
}

// round1 rounds to one decimal place, the reporting precision for composite
// scores.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
