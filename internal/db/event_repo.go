package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fairhour/internal/types"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// EventRepository provides data access for the monitored_events table.
// One row per scheduled activity under deterioration monitoring; rows are
// deleted outright once the scheduled time has passed.
type EventRepository struct {
	db DBTX
}

// NewEventRepository creates an EventRepository backed by the given database
// connection (pool or transaction).
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// eventColumns is the standard column set for monitored event queries.
const eventColumns = `id, contact, mode, scheduled_time, duration_minutes,
	location_lat, location_lon, location_display_name,
	timezone, initial_score, alert_sent, credential, created_at`

// scanEvent scans a single monitored event row. The column order must match
// eventColumns. pgx.Row and pgx.Rows share the Scan signature, so both paths
// use this helper.
func scanEvent(row pgx.Row) (*types.MonitoredEvent, error) {
	var e types.MonitoredEvent
	var displayName *string
	var credential string

	err := row.Scan(
		&e.ID,
		&e.Contact,
		&e.Mode,
		&e.ScheduledTime,
		&e.DurationMin,
		&e.Location.Lat,
		&e.Location.Lon,
		&displayName,
		&e.Timezone,
		&e.InitialScore,
		&e.AlertSent,
		&credential,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if displayName != nil {
		e.Location.DisplayName = *displayName
	}
	e.Credential = types.SecretString(credential)

	return &e, nil
}

// Create inserts a new monitored event. The caller must set the ID (UUID)
// and all required fields before calling. A duplicate ID maps to
// ErrCodeConflictMonitorExists.
func (r *EventRepository) Create(ctx context.Context, e *types.MonitoredEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO monitored_events (
			id, contact, mode, scheduled_time, duration_minutes,
			location_lat, location_lon, location_display_name,
			timezone, initial_score, alert_sent, credential, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12, COALESCE($13, NOW())
		)`,
		e.ID,
		e.Contact,
		e.Mode,
		e.ScheduledTime,
		e.DurationMin,
		e.Location.Lat,
		e.Location.Lon,
		nilIfEmpty(e.Location.DisplayName),
		e.Timezone,
		e.InitialScore,
		e.AlertSent,
		e.Credential.Unmask(),
		nilIfZeroTime(e.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return types.NewAppError(types.ErrCodeConflictMonitorExists, "monitor already exists", err)
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create monitored event", err)
	}
	return nil
}

// GetByID retrieves a monitored event by its ID. Returns
// ErrCodeNotFoundMonitor if no row matches.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*types.MonitoredEvent, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM monitored_events WHERE id = $1`,
		id,
	)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundMonitor, "monitor not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve monitored event", err)
	}
	return e, nil
}

// MarkAlertSent flips the alert_sent flag to true. The flag only ever
// transitions false to true; repeated calls are harmless no-ops at the SQL
// level. Returns ErrCodeNotFoundMonitor if the event no longer exists.
func (r *EventRepository) MarkAlertSent(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE monitored_events SET alert_sent = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to mark alert sent", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundMonitor, "monitor not found", nil)
	}
	return nil
}

// Delete removes a monitored event. Deleting an already-removed event is not
// an error; terminal cleanup and the janitor sweep may race.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM monitored_events WHERE id = $1`,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete monitored event", err)
	}
	return nil
}

// ListActive returns all events whose scheduled time is still in the future,
// ordered by scheduled time. Used on startup to rebuild in-memory monitors.
func (r *EventRepository) ListActive(ctx context.Context, now time.Time) ([]*types.MonitoredEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM monitored_events
		 WHERE scheduled_time > $1
		 ORDER BY scheduled_time`,
		now,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list active monitored events", err)
	}
	defer rows.Close()

	var results []*types.MonitoredEvent
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan monitored event row", scanErr)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating monitored event rows", err)
	}

	return results, nil
}

// DeleteExpired removes events whose scheduled time passed before the cutoff.
// Returns the number of rows removed. Used by the janitor sweep as a backstop
// for monitors that never reached their terminal cleanup.
func (r *EventRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM monitored_events WHERE scheduled_time < $1`,
		cutoff,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to delete expired monitored events", err)
	}
	return tag.RowsAffected(), nil
}

// nilIfEmpty converts an empty string to nil for nullable text columns.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nilIfZeroTime converts a zero time to nil so COALESCE can default the
// column to NOW().
func nilIfZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
