// Package monitor implements the per-event monitoring state machine:
// Uninitialized -> Armed -> Armed (repeating) / Armed[AlertSent] -> Terminated.
//
// Each monitored event is owned by exactly one actor goroutine addressed by
// the event id. All operations against that id (timer wakes, status queries)
// are serialized through the actor's mailbox, so no locking is needed on the
// event record itself. Different events are fully independent.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"fairhour/internal/scoring"
	"fairhour/internal/telemetry"
	"fairhour/internal/types"
)

const (
	// DropThreshold is the score deterioration that triggers an alert.
	DropThreshold = 15.0
	// RecheckInterval is the cadence between wakes while the event is armed.
	RecheckInterval = 30 * time.Minute
	// ForecastHorizonDays is how far ahead each wake fetches.
	ForecastHorizonDays = 7

	firstWakeMax  = time.Hour
	firstWakeMin  = time.Minute
	firstWakeLead = 2 * time.Hour
)

// firstWakeDelay computes the delay before the first check:
// min(1h, max(1min, scheduled - 2h - now)). The first check happens roughly
// an hour out, pulled closer when the event is imminent, and never in the
// past.
func firstWakeDelay(now, scheduled time.Time) time.Duration {
	d := scheduled.Sub(now) - firstWakeLead
	if d < firstWakeMin {
		d = firstWakeMin
	}
	if d > firstWakeMax {
		d = firstWakeMax
	}
	return d
}

// statusRequest asks the actor for a snapshot of its event record.
type statusRequest struct {
	reply chan types.MonitoredEvent
}

// actor owns one monitored event. Only the run goroutine touches the event
// after construction.
type actor struct {
	event *types.MonitoredEvent

	repo       EventRepo
	provider   types.ForecastProvider
	dispatcher types.NotificationDispatcher
	metrics    telemetry.MonitorMetrics
	clock      types.Clock
	logger     *slog.Logger

	mailbox chan statusRequest
	stop    <-chan struct{}
	// done is closed when the run goroutine exits; status queries racing with
	// termination unblock through it.
	done chan struct{}
	// onTerminate unregisters the actor from the service map.
	onTerminate func(id string)
}

// run drives the timer loop until the event terminates or the service stops.
func (a *actor) run(initialDelay time.Duration) {
	defer close(a.done)

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			next, terminated := a.wake(context.Background())
			if terminated {
				a.onTerminate(a.event.ID)
				return
			}
			timer.Reset(next)

		case req := <-a.mailbox:
			req.reply <- *a.event

		case <-a.stop:
			return
		}
	}
}

// status returns a snapshot of the event, serialized through the mailbox.
// ok is false when the actor has already terminated.
func (a *actor) status() (types.MonitoredEvent, bool) {
	req := statusRequest{reply: make(chan types.MonitoredEvent, 1)}
	select {
	case a.mailbox <- req:
		return <-req.reply, true
	case <-a.done:
		return types.MonitoredEvent{}, false
	}
}

// wake performs one check cycle. It returns the delay until the next wake,
// or terminated=true when the event's scheduled time has passed and all
// state has been removed.
//
// Collaborator failures (forecast fetch, notification dispatch) are logged
// and swallowed; the loop's liveness takes priority over any single check.
func (a *actor) wake(ctx context.Context) (next time.Duration, terminated bool) {
	now := a.clock.Now()
	e := a.event

	if e.Expired(now) {
		if err := a.repo.Delete(ctx, e.ID); err != nil {
			a.logger.ErrorContext(ctx, "failed to delete expired event",
				"event_id", e.ID,
				"error", err,
			)
			// Retry deletion at the next wake rather than leaking the actor
			// with no timer armed.
			return RecheckInterval, false
		}
		a.logger.InfoContext(ctx, "monitoring terminated",
			"event_id", e.ID,
			"scheduled_time", e.ScheduledTime,
		)
		return 0, true
	}

	started := time.Now()
	series, err := a.provider.Fetch(ctx, e.Location.Lat, e.Location.Lon, e.Timezone, ForecastHorizonDays)
	if err != nil {
		a.logger.WarnContext(ctx, "forecast fetch failed; rechecking later",
			"event_id", e.ID,
			"error", err,
		)
		a.metrics.RecordForecastFailure(ctx)
		return RecheckInterval, false
	}

	if series.Len() == 0 {
		// The resolver's neutral 50 is a no-data sentinel, not a real score;
		// never treat it as a deterioration.
		a.logger.WarnContext(ctx, "empty forecast series; skipping check",
			"event_id", e.ID,
		)
		return RecheckInterval, false
	}

	current := scoring.ResolveAndScore(series, e.ScheduledTime, e.Mode)
	drop := e.InitialScore - current
	a.metrics.RecordCheckCycle(ctx, e.Mode, time.Since(started))

	a.logger.DebugContext(ctx, "check cycle complete",
		"event_id", e.ID,
		"initial_score", e.InitialScore,
		"current_score", current,
		"drop", drop,
	)

	if drop >= DropThreshold && !e.AlertSent && e.Credential.Unmask() != "" {
		a.metrics.RecordScoreDrop(ctx, e.Mode, drop)
		a.notify(ctx, series, current)
	}

	return RecheckInterval, false
}

// notify searches for an alternative slot and dispatches the deterioration
// alert. The alert flag is set only after a successful dispatch, so a failed
// delivery is retried on the next wake; a successful one is never repeated.
func (a *actor) notify(ctx context.Context, series *types.ForecastSeries, current float64) {
	e := a.event
	alt := scoring.FindBestAlternative(series, e.ScheduledTime, e.Mode, a.clock)

	payload := types.DeteriorationPayload{
		Contact:       e.Contact,
		Mode:          e.Mode,
		ScheduledTime: e.ScheduledTime,
		DurationMin:   e.DurationMin,
		Location:      e.Location,
		Timezone:      e.Timezone,
		InitialScore:  e.InitialScore,
		CurrentScore:  current,
		Alternative:   alt,
	}

	if err := a.dispatcher.Send(ctx, payload, e.Credential); err != nil {
		a.logger.WarnContext(ctx, "deterioration alert delivery failed",
			"event_id", e.ID,
			"error", err,
		)
		a.metrics.RecordNotifyFailure(ctx)
		return
	}

	e.AlertSent = true
	if err := a.repo.MarkAlertSent(ctx, e.ID); err != nil {
		// The in-memory flag still guards this actor's lifetime; the persisted
		// flag only matters across restarts.
		a.logger.ErrorContext(ctx, "failed to persist alert flag",
			"event_id", e.ID,
			"error", err,
		)
	}
	a.metrics.RecordAlertSent(ctx, e.Mode)
	a.logger.InfoContext(ctx, "deterioration alert sent",
		"event_id", e.ID,
		"current_score", current,
		"has_alternative", alt != nil,
	)
}
