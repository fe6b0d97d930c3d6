package scoring

import (
	"testing"
	"time"

	"fairhour/internal/types"
)

// testSun builds a one-day sunrise/sunset table: 2026-06-15 UTC,
// sunrise 05:30, sunset 20:30.
func testSun() map[string]types.SunTimes {
	return map[string]types.SunTimes{
		"2026-06-15": {
			Sunrise: time.Date(2026, 6, 15, 5, 30, 0, 0, time.UTC),
			Sunset:  time.Date(2026, 6, 15, 20, 30, 0, 0, time.UTC),
		},
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 6, 15, hour, min, 0, 0, time.UTC)
}

func TestComputeDaylight(t *testing.T) {
	sun := testSun()
	cases := []struct {
		name    string
		t       time.Time
		wantLit bool
		wantMul float64
	}{
		{"full daylight midday", at(12, 0), true, 1.0},
		{"inside span just past twilight band", at(6, 1), true, 1.0},
		{"twilight inside span after sunrise", at(5, 45), true, 0.6},
		{"twilight before sunrise", at(5, 0), false, 0.6},
		{"exact sunrise favors twilight", at(5, 30), true, 0.6},
		{"exact band edge before sunrise", at(5, 0), false, 0.6},
		{"deep night before dawn", at(4, 29), false, 0.3},
		{"twilight inside span before sunset", at(20, 10), true, 0.6},
		{"exact sunset favors twilight", at(20, 30), true, 0.6},
		{"twilight after sunset", at(20, 59), false, 0.6},
		{"deep night after dusk", at(21, 1), false, 0.3},
	}
	for _, tc := range cases {
		lit, mul := ComputeDaylight(tc.t, sun)
		if lit != tc.wantLit || mul != tc.wantMul {
			t.Errorf("%s: ComputeDaylight = (%v, %v), want (%v, %v)",
				tc.name, lit, mul, tc.wantLit, tc.wantMul)
		}
	}
}

func TestComputeDarkness(t *testing.T) {
	sun := testSun()
	cases := []struct {
		name    string
		t       time.Time
		wantLit bool
		wantMul float64
	}{
		{"full daylight midday", at(12, 0), true, 0.05},
		{"twilight inside span after sunrise", at(5, 45), true, 0.3},
		{"twilight before sunrise", at(5, 0), false, 0.3},
		{"exact sunrise favors twilight", at(5, 30), true, 0.3},
		{"deep night before dawn", at(4, 29), false, 1.0},
		{"deep night after dusk", at(21, 1), false, 1.0},
		{"twilight after sunset", at(20, 59), false, 0.3},
	}
	for _, tc := range cases {
		lit, mul := ComputeDarkness(tc.t, sun)
		if lit != tc.wantLit || mul != tc.wantMul {
			t.Errorf("%s: ComputeDarkness = (%v, %v), want (%v, %v)",
				tc.name, lit, mul, tc.wantLit, tc.wantMul)
		}
	}
}

// Both models are complementary at the exact sunrise instant: daylight
// reports (true, 0.6) while darkness reports (true, 0.3).
func TestDaylightDarknessBoundaryComplement(t *testing.T) {
	sun := testSun()
	sunrise := at(5, 30)

	lit, mul := ComputeDaylight(sunrise, sun)
	if !lit || mul != 0.6 {
		t.Errorf("daylight at sunrise = (%v, %v), want (true, 0.6)", lit, mul)
	}
	lit, mul = ComputeDarkness(sunrise, sun)
	if !lit || mul != 0.3 {
		t.Errorf("darkness at sunrise = (%v, %v), want (true, 0.3)", lit, mul)
	}
}

// A date missing from the table fails open, never errors.
func TestMissingDayFailsOpen(t *testing.T) {
	sun := testSun()
	unknown := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	lit, mul := ComputeDaylight(unknown, sun)
	if !lit || mul != 1.0 {
		t.Errorf("daylight missing day = (%v, %v), want (true, 1.0)", lit, mul)
	}
	lit, mul = ComputeDarkness(unknown, sun)
	if lit || mul != 0.05 {
		t.Errorf("darkness missing day = (%v, %v), want (false, 0.05)", lit, mul)
	}
}

func TestMissingDayOnNilTable(t *testing.T) {
	lit, mul := ComputeDaylight(at(12, 0), nil)
	if !lit || mul != 1.0 {
		t.Errorf("daylight nil table = (%v, %v), want (true, 1.0)", lit, mul)
	}
}
