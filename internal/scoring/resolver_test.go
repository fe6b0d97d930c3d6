package scoring

import (
	"testing"
	"time"

	"fairhour/internal/types"
)

// mockClock implements types.Clock for deterministic testing.
type mockClock struct {
	now time.Time
}

func (c *mockClock) Now() time.Time { return c.now }

// testSeries builds a series with ideal daylight conditions at the given
// hours of 2026-06-15 UTC. Callers mutate individual indexes to shape
// scenarios.
func testSeries(hours ...int) *types.ForecastSeries {
	s := &types.ForecastSeries{Sun: testSun()}
	for _, h := range hours {
		s.Times = append(s.Times, at(h, 0))
		s.Temperature = append(s.Temperature, 68)
		s.FeelsLike = append(s.FeelsLike, 70)
		s.Humidity = append(s.Humidity, 40)
		s.WeatherCode = append(s.WeatherCode, 0)
		s.WindSpeed = append(s.WindSpeed, 5)
		s.UVIndex = append(s.UVIndex, 3)
		s.PrecipProb = append(s.PrecipProb, 0)
		s.CloudCover = append(s.CloudCover, 10)
		s.Visibility = append(s.Visibility, 30000)
	}
	return s
}

// makeRainy turns index i into a heavy-rain hour.
func makeRainy(s *types.ForecastSeries, i int) {
	s.WeatherCode[i] = 65
	s.PrecipProb[i] = 90
	s.CloudCover[i] = 100
}

func TestResolveAndScoreEmptySeriesReturnsNeutral(t *testing.T) {
	empty := &types.ForecastSeries{}
	for _, mode := range types.AllModes {
		if got := ResolveAndScore(empty, at(12, 0), mode); got != NeutralScore {
			t.Errorf("mode %s: empty series score = %v, want %v", mode, got, NeutralScore)
		}
	}
}

func TestResolveAndScorePrefersExactHourMatch(t *testing.T) {
	s := testSeries(11, 12, 13)
	makeRainy(s, 0)
	makeRainy(s, 2)

	// 12:14 truncates to 12:00, the clear hour.
	score := ResolveAndScore(s, at(12, 14), types.ModeRunning)
	if score < 80 {
		t.Errorf("exact-match score = %v, want the clear 12:00 sample (>= 80)", score)
	}
}

func TestResolveAndScoreFallsBackToNearest(t *testing.T) {
	s := testSeries(10, 13)
	makeRainy(s, 1)

	// 11:20 has no exact sample; 10:00 (80 min away) beats 13:00 (100 min).
	score := ResolveAndScore(s, at(11, 20), types.ModeRunning)
	if score < 80 {
		t.Errorf("nearest-match score = %v, want the clear 10:00 sample (>= 80)", score)
	}
}

func TestBuildSampleSubstitutesOptionalDefaults(t *testing.T) {
	s := testSeries(12)
	s.CloudCover = nil
	s.Visibility = nil

	sample := BuildSample(s, 0, types.ModeRunning)
	if sample.CloudCover != DefaultCloudCover {
		t.Errorf("cloud cover default = %v, want %v", sample.CloudCover, DefaultCloudCover)
	}
	if sample.Visibility != DefaultVisibility {
		t.Errorf("visibility default = %v, want %v", sample.Visibility, DefaultVisibility)
	}
}

func TestBuildSampleUsesDarknessForStargazing(t *testing.T) {
	s := testSeries(12)
	sample := BuildSample(s, 0, types.ModeStargazing)
	if !sample.Lit || sample.LightFactor != 0.05 {
		t.Errorf("midday stargazing sample = (%v, %v), want (true, 0.05)",
			sample.Lit, sample.LightFactor)
	}
}

func TestFindBestAlternativePicksClearNeighbor(t *testing.T) {
	s := testSeries(11, 12, 13, 14, 15)
	makeRainy(s, 0)     // 11:00
	makeRainy(s, 1)     // 12:00, the target
	makeRainy(s, 2)     // 13:00
	s.WindSpeed[4] = 18 // 15:00 clear but windy

	clock := &mockClock{now: at(10, 30)}
	alt := FindBestAlternative(s, at(12, 0), types.ModeRunning, clock)
	if alt == nil {
		t.Fatal("expected an alternative, got none")
	}
	if !alt.Time.Equal(at(14, 0)) {
		t.Errorf("alternative time = %v, want 14:00", alt.Time)
	}

	target := ResolveAndScore(s, at(12, 0), types.ModeRunning)
	if alt.Score <= target {
		t.Errorf("alternative score %v not above target score %v", alt.Score, target)
	}
}

func TestFindBestAlternativeNeverReturnsTargetSlot(t *testing.T) {
	s := testSeries(12, 13)
	makeRainy(s, 1) // only other eligible slot is poor, target itself is perfect

	clock := &mockClock{now: at(10, 0)}
	alt := FindBestAlternative(s, at(12, 0), types.ModeRunning, clock)
	if alt != nil && alt.Time.Equal(at(12, 0)) {
		t.Error("alternative must never be the target slot itself")
	}
}

func TestFindBestAlternativeExcludesPast(t *testing.T) {
	s := testSeries(11, 12, 13)
	clock := &mockClock{now: at(13, 30)} // everything already passed
	if alt := FindBestAlternative(s, at(12, 0), types.ModeRunning, clock); alt != nil {
		t.Errorf("expected none when all slots are past, got %v", alt.Time)
	}
}

func TestFindBestAlternativeStargazingAllDaylightReturnsNone(t *testing.T) {
	s := testSeries(10, 11, 12, 13, 14)
	clock := &mockClock{now: at(9, 0)}
	if alt := FindBestAlternative(s, at(12, 0), types.ModeStargazing, clock); alt != nil {
		t.Errorf("expected none for stargazing in daylight window, got %v", alt.Time)
	}
}

func TestFindBestAlternativeStaysOnSameCalendarDay(t *testing.T) {
	s := testSeries(21, 22)
	// Next-day 01:00 and 02:00: inside the ±4h window of a 23:00 target but
	// on a different date, so they must be skipped even with ideal skies.
	for _, h := range []int{1, 2} {
		s.Times = append(s.Times, time.Date(2026, 6, 16, h, 0, 0, 0, time.UTC))
		s.Temperature = append(s.Temperature, 55)
		s.FeelsLike = append(s.FeelsLike, 55)
		s.Humidity = append(s.Humidity, 40)
		s.WeatherCode = append(s.WeatherCode, 0)
		s.WindSpeed = append(s.WindSpeed, 2)
		s.UVIndex = append(s.UVIndex, 0)
		s.PrecipProb = append(s.PrecipProb, 0)
		s.CloudCover = append(s.CloudCover, 0)
		s.Visibility = append(s.Visibility, 40000)
	}

	clock := &mockClock{now: at(20, 0)}
	alt := FindBestAlternative(s, at(23, 0), types.ModeStargazing, clock)
	if alt == nil {
		t.Fatal("expected a same-day alternative")
	}
	if alt.Time.Day() != 15 {
		t.Errorf("alternative crossed the calendar day: %v", alt.Time)
	}
	// 22:00 is deep night (factor 1.0) and beats 21:00 twilight (0.3).
	if !alt.Time.Equal(at(22, 0)) {
		t.Errorf("alternative = %v, want 22:00", alt.Time)
	}
}

func TestFindBestAlternativeTieBreaksChronologically(t *testing.T) {
	s := testSeries(12, 13, 14) // 13:00 and 14:00 identical conditions
	makeRainy(s, 0)

	clock := &mockClock{now: at(10, 0)}
	alt := FindBestAlternative(s, at(12, 0), types.ModeRunning, clock)
	if alt == nil {
		t.Fatal("expected an alternative")
	}
	if !alt.Time.Equal(at(13, 0)) {
		t.Errorf("tie should resolve to the earlier slot, got %v", alt.Time)
	}
}

func TestFindBestAlternativeEmptySeries(t *testing.T) {
	clock := &mockClock{now: at(10, 0)}
	if alt := FindBestAlternative(&types.ForecastSeries{}, at(12, 0), types.ModeRunning, clock); alt != nil {
		t.Error("empty series must yield no alternative")
	}
}
