package scoring

import "fairhour/internal/types"

// unmappedCodeScore is the sub-score assigned to weather codes absent from a
// mode's code table.
const unmappedCodeScore = 50.0

// Neutral defaults substituted when the forecast provider omits an optional
// metric. Deliberate fail-open values, not error conditions.
const (
	DefaultCloudCover = 50.0    // %
	DefaultVisibility = 20000.0 // meters
)

// weightTable holds the fixed per-mode factor weights. Entries for factors a
// mode does not score are zero; the non-zero entries sum to 1.0.
type weightTable struct {
	Temperature float64
	Humidity    float64
	Wind        float64
	Precip      float64
	UV          float64
	Pavement    float64
	CloudCover  float64
	Visibility  float64
	Code        float64
}

// modeTable bundles the curve set, weather-code table, and weights for one
// activity mode. A nil curve means the mode does not score that factor.
type modeTable struct {
	Temperature Curve
	Humidity    Curve
	Wind        Curve
	Precip      Curve
	UV          Curve
	Pavement    Curve
	CloudCover  Curve
	Visibility  Curve
	Codes       map[int]float64
	Weights     weightTable
}

// Shared curves. Inputs are °F for temperatures, mph for wind, percent for
// humidity/precipitation/cloud cover, UV index units, and meters for
// visibility.
var (
	humidityCurve = Curve{{0, 90}, {30, 100}, {50, 85}, {70, 60}, {85, 35}, {100, 15}}

	uvCurve = Curve{{0, 100}, {2, 95}, {4, 85}, {6, 70}, {8, 50}, {11, 30}}

	// Dogs walk on the surface; the UV penalty ramps harder.
	dogUVCurve = Curve{{0, 100}, {2, 90}, {4, 70}, {6, 45}, {8, 25}, {11, 10}}

	pavementCurve = Curve{{70, 100}, {85, 90}, {95, 60}, {105, 30}, {115, 10}, {125, 0}}

	cloudCoverCurve = Curve{{0, 100}, {10, 90}, {25, 70}, {50, 40}, {75, 15}, {100, 0}}

	visibilityCurve = Curve{{0, 0}, {2000, 10}, {5000, 30}, {10000, 60}, {20000, 90}, {40000, 100}}
)

// landCodes scores WMO weather codes for daylight land activities.
// Unmapped codes fall back to unmappedCodeScore.
var landCodes = map[int]float64{
	0: 100, 1: 95, 2: 85, 3: 70,
	45: 55, 48: 50,
	51: 45, 53: 35, 55: 25, 56: 20, 57: 15,
	61: 30, 63: 18, 65: 8, 66: 12, 67: 6,
	71: 35, 73: 20, 75: 10, 77: 25,
	80: 28, 81: 16, 82: 6, 85: 20, 86: 10,
	95: 2, 96: 0, 99: 0,
}

// stargazeCodes scores WMO weather codes for sky observation: any cloud or
// precipitation is heavily penalized.
var stargazeCodes = map[int]float64{
	0: 100, 1: 80, 2: 55, 3: 25,
	45: 15, 48: 12,
	51: 10, 53: 8, 55: 5,
	61: 8, 63: 4, 65: 2,
	71: 8, 73: 4, 75: 2,
	80: 6, 81: 4, 82: 2, 85: 5, 86: 3,
	95: 0, 96: 0, 99: 0,
}

// modeTables is the closed set of per-mode scoring tables, selected by
// activity mode. Fixed domain knowledge loaded at startup.
var modeTables = map[types.Mode]modeTable{
	types.ModeRunning: {
		Temperature: Curve{{10, 10}, {30, 40}, {50, 85}, {60, 100}, {70, 95}, {80, 60}, {90, 30}, {100, 10}},
		Humidity:    humidityCurve,
		Wind:        Curve{{0, 100}, {5, 95}, {10, 85}, {15, 70}, {20, 50}, {30, 25}, {40, 10}},
		Precip:      Curve{{0, 100}, {20, 85}, {40, 60}, {60, 35}, {80, 15}, {100, 5}},
		UV:          uvCurve,
		Codes:       landCodes,
		Weights: weightTable{
			Temperature: 0.30, Humidity: 0.15, Wind: 0.15,
			Precip: 0.25, UV: 0.05, Code: 0.10,
		},
	},
	types.ModeWalking: {
		Temperature: Curve{{10, 15}, {30, 50}, {50, 90}, {65, 100}, {75, 90}, {85, 65}, {95, 35}, {105, 15}},
		Humidity:    humidityCurve,
		Wind:        Curve{{0, 100}, {5, 95}, {10, 90}, {15, 80}, {20, 65}, {30, 40}, {40, 15}},
		Precip:      Curve{{0, 100}, {20, 80}, {40, 55}, {60, 30}, {80, 10}, {100, 0}},
		UV:          uvCurve,
		Codes:       landCodes,
		Weights: weightTable{
			Temperature: 0.30, Humidity: 0.10, Wind: 0.10,
			Precip: 0.30, UV: 0.05, Code: 0.15,
		},
	},
	types.ModeCycling: {
		Temperature: Curve{{15, 10}, {35, 45}, {55, 90}, {65, 100}, {75, 85}, {85, 55}, {95, 25}, {105, 10}},
		Humidity:    humidityCurve,
		Wind:        Curve{{0, 100}, {5, 90}, {10, 75}, {15, 55}, {20, 35}, {30, 15}, {40, 5}},
		Precip:      Curve{{0, 100}, {20, 80}, {40, 50}, {60, 25}, {80, 10}, {100, 0}},
		UV:          uvCurve,
		Codes:       landCodes,
		Weights: weightTable{
			Temperature: 0.25, Humidity: 0.10, Wind: 0.25,
			Precip: 0.25, UV: 0.05, Code: 0.10,
		},
	},
	types.ModeDogWalking: {
		Temperature: Curve{{10, 20}, {30, 55}, {50, 95}, {60, 100}, {70, 90}, {80, 55}, {90, 20}, {100, 5}},
		Humidity:    humidityCurve,
		Wind:        Curve{{0, 100}, {5, 95}, {10, 85}, {15, 75}, {20, 55}, {30, 30}, {40, 10}},
		Precip:      Curve{{0, 100}, {20, 85}, {40, 55}, {60, 30}, {80, 12}, {100, 5}},
		UV:          dogUVCurve,
		Pavement:    pavementCurve,
		Codes:       landCodes,
		Weights: weightTable{
			Temperature: 0.25, Humidity: 0.10, Wind: 0.10,
			Precip: 0.20, UV: 0.10, Pavement: 0.15, Code: 0.10,
		},
	},
	types.ModeStargazing: {
		Temperature: Curve{{0, 25}, {20, 50}, {40, 80}, {55, 100}, {70, 95}, {85, 70}, {95, 50}},
		Wind:        Curve{{0, 100}, {5, 95}, {10, 85}, {20, 60}, {30, 35}, {40, 15}},
		Precip:      Curve{{0, 100}, {20, 70}, {40, 40}, {60, 15}, {80, 5}, {100, 0}},
		CloudCover:  cloudCoverCurve,
		Visibility:  visibilityCurve,
		Codes:       stargazeCodes,
		Weights: weightTable{
			Temperature: 0.10, Wind: 0.10, Precip: 0.25,
			CloudCover: 0.35, Visibility: 0.10, Code: 0.10,
		},
	},
}

// sum returns the total of all weight entries; used by tests to assert each
// mode's weights form a convex combination.
func (w weightTable) sum() float64 {
	return w.Temperature + w.Humidity + w.Wind + w.Precip +
		w.UV + w.Pavement + w.CloudCover + w.Visibility + w.Code
}
