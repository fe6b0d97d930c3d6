package types

// Mode identifies an outdoor activity. Modes are a closed enumeration: the
// curve sets and weight tables behind each one are fixed domain knowledge,
// not user-configurable.
type Mode string

const (
	ModeRunning    Mode = "running"
	ModeWalking    Mode = "walking"
	ModeCycling    Mode = "cycling"
	ModeDogWalking Mode = "dog_walking"
	ModeStargazing Mode = "stargazing"
)

// AllModes lists every valid activity mode. Used by validators.
var AllModes = []Mode{
	ModeRunning,
	ModeWalking,
	ModeCycling,
	ModeDogWalking,
	ModeStargazing,
}

// Valid reports whether m is one of the known activity modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeRunning, ModeWalking, ModeCycling, ModeDogWalking, ModeStargazing:
		return true
	}
	return false
}

// Nocturnal reports whether the mode prefers dark hours. Nocturnal modes use
// the darkness weighting and require unlit hours when searching alternatives.
func (m Mode) Nocturnal() bool {
	return m == ModeStargazing
}

// Rating is the four-level qualitative band for a composite score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// MetricNamespace is the CloudWatch namespace all telemetry publishes under.
const MetricNamespace = "FairHour"

// Telemetry metric names for CloudWatch. All components MUST use these
// constants.
const (
	MetricCheckCycle      = "MonitorCheckCycle"
	MetricScoreDrop       = "MonitorScoreDrop"
	MetricAlertSent       = "DeteriorationAlertSent"
	MetricForecastFailure = "ForecastFetchFailure"
	MetricNotifyFailure   = "NotificationFailure"
	MetricAPIRequestCount = "APIRequestCount"
	MetricAPILatency      = "APILatency"

	DimMode     = "Mode"
	DimMethod   = "Method"
	DimEndpoint = "Endpoint"
	DimStatus   = "Status"
)
