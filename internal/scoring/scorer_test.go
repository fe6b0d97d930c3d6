package scoring

import (
	"math"
	"testing"

	"fairhour/internal/types"
)

// perfectRunningHour is a mid-range ideal: ~70°F feels-like, 40% humidity,
// 5 mph wind, UV 3, no precipitation, clear sky, full daylight.
func perfectRunningHour() types.HourSample {
	return types.HourSample{
		Time:        at(10, 0),
		Temperature: 68,
		FeelsLike:   70,
		Humidity:    40,
		WindSpeed:   5,
		UVIndex:     3,
		PrecipProb:  0,
		WeatherCode: 0,
		CloudCover:  10,
		Visibility:  30000,
		Lit:         true,
		LightFactor: 1.0,
	}
}

func TestPerfectRunningHourScoresExcellent(t *testing.T) {
	scored := Score(perfectRunningHour(), types.ModeRunning)
	if scored.Score < 80 {
		t.Errorf("perfect hour score = %v, want >= 80", scored.Score)
	}
	if scored.Rating != types.RatingExcellent {
		t.Errorf("perfect hour rating = %s, want Excellent", scored.Rating)
	}
}

func TestDegradedHourScoresPoor(t *testing.T) {
	perfect := Score(perfectRunningHour(), types.ModeRunning)

	bad := perfectRunningHour()
	bad.Temperature = 98
	bad.FeelsLike = 100
	bad.PrecipProb = 90
	bad.WeatherCode = 65 // heavy rain
	bad.WindSpeed = 25
	bad.Humidity = 85
	bad.UVIndex = 9

	scored := Score(bad, types.ModeRunning)
	if scored.Score >= perfect.Score {
		t.Errorf("degraded score %v not below perfect score %v", scored.Score, perfect.Score)
	}
	if scored.Score >= 45 {
		t.Errorf("degraded score = %v, want < 45", scored.Score)
	}
	if scored.Rating != types.RatingPoor {
		t.Errorf("degraded rating = %s, want Poor", scored.Rating)
	}
}

func TestCompositeWithinRangeAcrossModes(t *testing.T) {
	extremes := []types.HourSample{
		{FeelsLike: -40, Temperature: -40, WindSpeed: 80, PrecipProb: 100, WeatherCode: 99, Humidity: 100, UVIndex: 15, CloudCover: 100, Visibility: 0, Lit: true, LightFactor: 1.0},
		{FeelsLike: 130, Temperature: 130, WindSpeed: 0, PrecipProb: 0, WeatherCode: 0, Humidity: 0, UVIndex: 0, CloudCover: 0, Visibility: 50000, Lit: true, LightFactor: 1.0},
		perfectRunningHour(),
	}
	for _, mode := range types.AllModes {
		for _, hour := range extremes {
			scored := Score(hour, mode)
			if scored.Score < 0 || scored.Score > 100 {
				t.Errorf("mode %s score %v outside [0,100]", mode, scored.Score)
			}
			// One decimal of reported precision.
			if math.Abs(scored.Score*10-math.Round(scored.Score*10)) > 1e-9 {
				t.Errorf("mode %s score %v not rounded to one decimal", mode, scored.Score)
			}
		}
	}
}

func TestLightFactorScalesComposite(t *testing.T) {
	hour := perfectRunningHour()
	full := Score(hour, types.ModeRunning)

	hour.LightFactor = 0.3
	dim := Score(hour, types.ModeRunning)

	want := round1(full.Score / 1.0 * 0.3)
	// Allow rounding slack from the two independent round1 passes.
	if math.Abs(dim.Score-want) > 0.2 {
		t.Errorf("dim score = %v, want about %v", dim.Score, want)
	}
}

func TestStargazingPrefersClearDarkSky(t *testing.T) {
	clearNight := types.HourSample{
		Time:        at(23, 0),
		Temperature: 55,
		FeelsLike:   55,
		WindSpeed:   3,
		PrecipProb:  0,
		WeatherCode: 0,
		CloudCover:  5,
		Visibility:  40000,
		Lit:         false,
		LightFactor: 1.0,
	}
	overcast := clearNight
	overcast.CloudCover = 95
	overcast.WeatherCode = 3

	clear := Score(clearNight, types.ModeStargazing)
	cloudy := Score(overcast, types.ModeStargazing)
	if clear.Score <= cloudy.Score {
		t.Errorf("clear night %v not above overcast %v", clear.Score, cloudy.Score)
	}
	if clear.Rating != types.RatingExcellent {
		t.Errorf("clear dark sky rating = %s, want Excellent", clear.Rating)
	}
}

func TestPavementTemperature(t *testing.T) {
	cases := []struct {
		air, uv, cloud, want float64
	}{
		{90, 10, 0, 120},  // full sun, strong UV
		{90, 10, 100, 90}, // overcast cancels the boost
		{70, 0, 0, 70},    // no UV, no boost
		{80, 5, 50, 87.5}, // half cover halves the boost
	}
	for _, tc := range cases {
		if got := PavementTemperature(tc.air, tc.uv, tc.cloud); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("PavementTemperature(%v, %v, %v) = %v, want %v",
				tc.air, tc.uv, tc.cloud, got, tc.want)
		}
	}
}

func TestDogWalkingPenalizesHotPavement(t *testing.T) {
	mild := types.HourSample{
		Time: at(9, 0), Temperature: 65, FeelsLike: 65, Humidity: 45,
		WindSpeed: 5, UVIndex: 2, PrecipProb: 0, WeatherCode: 0,
		CloudCover: 20, Visibility: 30000, Lit: true, LightFactor: 1.0,
	}
	scorching := mild
	scorching.Temperature = 95
	scorching.FeelsLike = 99
	scorching.UVIndex = 10
	scorching.CloudCover = 0

	if Score(scorching, types.ModeDogWalking).Score >= Score(mild, types.ModeDogWalking).Score {
		t.Error("hot-pavement hour should score below a mild hour for dog walking")
	}
}

func TestRatingBands(t *testing.T) {
	cases := []struct {
		score float64
		want  types.Rating
	}{
		{100, types.RatingExcellent},
		{80, types.RatingExcellent},
		{79.9, types.RatingGood},
		{65, types.RatingGood},
		{64.9, types.RatingFair},
		{45, types.RatingFair},
		{44.9, types.RatingPoor},
		{0, types.RatingPoor},
	}
	for _, tc := range cases {
		if got := RatingFor(tc.score); got != tc.want {
			t.Errorf("RatingFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
