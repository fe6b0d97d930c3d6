package email

import (
	"fmt"
	"strings"
	"time"

	"fairhour/internal/types"
)

// humanTimeLayout is how schedule times render in email bodies.
const humanTimeLayout = "Monday, Jan 2 at 3:04 PM"

// modeLabels maps activity modes to reader-facing names.
var modeLabels = map[types.Mode]string{
	types.ModeRunning:    "Running",
	types.ModeWalking:    "Walking",
	types.ModeCycling:    "Cycling",
	types.ModeDogWalking: "Dog walking",
	types.ModeStargazing: "Stargazing",
}

func modeLabel(m types.Mode) string {
	if label, ok := modeLabels[m]; ok {
		return label
	}
	return string(m)
}

// buildSubject produces the alert subject line.
func buildSubject(p types.DeteriorationPayload) string {
	return fmt.Sprintf("Weather alert: conditions for %s have worsened",
		strings.ToLower(modeLabel(p.Mode)))
}

// buildBody renders the plain-text alert. Times are shown in the event's own
// timezone; an unloadable timezone falls back to the stored instant as-is.
func buildBody(p types.DeteriorationPayload) string {
	when := p.ScheduledTime
	if loc, err := time.LoadLocation(p.Timezone); err == nil {
		when = when.In(loc)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The forecast for your %s", strings.ToLower(modeLabel(p.Mode)))
	if p.Location.DisplayName != "" {
		fmt.Fprintf(&b, " in %s", p.Location.DisplayName)
	}
	fmt.Fprintf(&b, " on %s has deteriorated.\n\n", when.Format(humanTimeLayout))
	fmt.Fprintf(&b, "Score when you scheduled it: %.1f\n", p.InitialScore)
	fmt.Fprintf(&b, "Score now: %.1f\n", p.CurrentScore)

	if p.Alternative != nil {
		altWhen := p.Alternative.Time
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			altWhen = altWhen.In(loc)
		}
		fmt.Fprintf(&b, "\nA better slot the same day: %s (score %.1f).\n",
			altWhen.Format(humanTimeLayout), p.Alternative.Score)
		b.WriteString("A calendar invite for the new slot is attached.\n")
	} else {
		b.WriteString("\nNo better slot was found within four hours of your scheduled time.\n")
	}

	return b.String()
}

// durationOf returns the event duration, defaulting to one hour when the
// stored value is missing or nonsensical.
func durationOf(p types.DeteriorationPayload) time.Duration {
	if p.DurationMin <= 0 {
		return time.Hour
	}
	return time.Duration(p.DurationMin) * time.Minute
}
