// Package scoring implements the suitability engine: piecewise-linear
// desirability curves, the daylight/darkness model, per-mode composite
// scoring, nearest-hour forecast resolution, and the alternative-slot search.
//
// Every function in this package is pure and reentrant; callers may invoke
// them concurrently without coordination.
package scoring

import "math"

// Breakpoint is one control point of a desirability curve: a metric value and
// the 0-100 sub-score assigned at that value.
type Breakpoint struct {
	In  float64
	Out float64
}

// Curve is a breakpoint table sorted by ascending input. Between breakpoints
// the output is linearly interpolated; outside the table's input domain the
// output clamps to the first/last breakpoint's output.
type Curve []Breakpoint

// Eval returns the interpolated sub-score for x, clamped to [0,100].
// Total: an empty curve returns the neutral sub-score 50.
func (c Curve) Eval(x float64) float64 {
	if len(c) == 0 {
		return 50
	}
	if x <= c[0].In {
		return clampScore(c[0].Out)
	}
	last := c[len(c)-1]
	if x >= last.In {
		return clampScore(last.Out)
	}
	for i := 1; i < len(c); i++ {
		if x > c[i].In {
			continue
		}
		x0, y0 := c[i-1].In, c[i-1].Out
		x1, y1 := c[i].In, c[i].Out
		if x0 == x1 {
			// Degenerate segment.
			return clampScore(y0)
		}
		y := y0 + (x-x0)/(x1-x0)*(y1-y0)
		return clampScore(y)
	}
	return clampScore(last.Out)
}

// clampScore bounds a sub-score to the [0,100] range.
func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
