package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fairhour/internal/telemetry"
	"fairhour/internal/types"
)

// EventRepo abstracts the persistence operations the monitor needs. Satisfied
// by db.EventRepository.
type EventRepo interface {
	Create(ctx context.Context, e *types.MonitoredEvent) error
	GetByID(ctx context.Context, id string) (*types.MonitoredEvent, error)
	MarkAlertSent(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context, now time.Time) ([]*types.MonitoredEvent, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ServiceConfig holds the collaborators for creating a Service.
type ServiceConfig struct {
	Repo       EventRepo
	Provider   types.ForecastProvider
	Dispatcher types.NotificationDispatcher
	Metrics    telemetry.MonitorMetrics
	Clock      types.Clock
	Logger     *slog.Logger
}

// Service manages the set of live actors. The mutex guards only actor
// creation and removal; event state is owned by each actor's goroutine.
type Service struct {
	repo       EventRepo
	provider   types.ForecastProvider
	dispatcher types.NotificationDispatcher
	metrics    telemetry.MonitorMetrics
	clock      types.Clock
	logger     *slog.Logger

	mu     sync.Mutex
	actors map[string]*actor

	stop     chan struct{}
	stopOnce sync.Once
}

// NewService creates a monitoring service. Actors are spawned by Initialize
// and Restore; Close stops them all.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NoopMetrics{}
	}
	return &Service{
		repo:       cfg.Repo,
		provider:   cfg.Provider,
		dispatcher: cfg.Dispatcher,
		metrics:    metrics,
		clock:      clock,
		logger:     logger,
		actors:     make(map[string]*actor),
		stop:       make(chan struct{}),
	}
}

// Initialize persists the event and arms its monitoring actor. The caller
// supplies the full metadata including the initial score computed at
// scheduling time. Rejects events whose scheduled time has already passed
// and ids that are already being monitored.
func (s *Service) Initialize(ctx context.Context, e *types.MonitoredEvent) error {
	now := s.clock.Now()
	if e.Expired(now) {
		return types.NewAppError(
			types.ErrCodeValidationInvalidTime,
			"scheduled time is in the past",
			nil,
		)
	}

	s.mu.Lock()
	if _, exists := s.actors[e.ID]; exists {
		s.mu.Unlock()
		return types.NewAppError(types.ErrCodeConflictMonitorExists, "monitor already exists", nil)
	}
	s.mu.Unlock()

	e.AlertSent = false
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}

	delay := firstWakeDelay(now, e.ScheduledTime)
	s.spawn(e, delay)

	s.logger.InfoContext(ctx, "monitor armed",
		"event_id", e.ID,
		"mode", e.Mode,
		"scheduled_time", e.ScheduledTime,
		"first_wake_in", delay,
	)
	return nil
}

// Status returns the current event record. Live actors answer through their
// mailbox; for ids without an actor (e.g. before Restore ran) the persisted
// record is consulted. Terminated or unknown ids yield ErrCodeNotFoundMonitor.
func (s *Service) Status(ctx context.Context, id string) (*types.MonitoredEvent, error) {
	s.mu.Lock()
	a, ok := s.actors[id]
	s.mu.Unlock()

	if ok {
		if snapshot, alive := a.status(); alive {
			return &snapshot, nil
		}
	}
	return s.repo.GetByID(ctx, id)
}

// Restore re-arms actors for every persisted event that has not yet reached
// its scheduled time. Called once at startup.
func (s *Service) Restore(ctx context.Context) error {
	now := s.clock.Now()
	events, err := s.repo.ListActive(ctx, now)
	if err != nil {
		return err
	}

	for _, e := range events {
		s.mu.Lock()
		_, exists := s.actors[e.ID]
		s.mu.Unlock()
		if exists {
			continue
		}
		s.spawn(e, firstWakeDelay(now, e.ScheduledTime))
	}

	s.logger.InfoContext(ctx, "monitors restored", "count", len(events))
	return nil
}

// Sweep deletes expired event rows left behind by crashes. Runs on the
// janitor cron as a backstop for actors that never reached their terminal
// cleanup.
func (s *Service) Sweep(ctx context.Context) {
	n, err := s.repo.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "janitor sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "janitor sweep removed expired events", "count", n)
	}
}

// Close stops all actor goroutines. Persisted state is left intact for the
// next process to restore.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// spawn registers and starts an actor for the event.
func (s *Service) spawn(e *types.MonitoredEvent, delay time.Duration) {
	a := &actor{
		event:       e,
		repo:        s.repo,
		provider:    s.provider,
		dispatcher:  s.dispatcher,
		metrics:     s.metrics,
		clock:       s.clock,
		logger:      s.logger.With("event_id", e.ID),
		mailbox:     make(chan statusRequest),
		stop:        s.stop,
		done:        make(chan struct{}),
		onTerminate: s.remove,
	}

	s.mu.Lock()
	s.actors[e.ID] = a
	s.mu.Unlock()

	go a.run(delay)
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	delete(s.actors, id)
	s.mu.Unlock()
}
