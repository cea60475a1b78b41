package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetdesk/internal/domain"
	"fleetdesk/pkg/platform/sentinel"
	txcontext "fleetdesk/pkg/platform/tx"
)

// PostgresStore persists driver-day counters in PostgreSQL. Commits are a
// single additive UPDATE guarded by the caller's baseline, so two concurrent
// approvals can never both apply against the same starting point.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, key Key) (*Counter, error) {
	insert := `
		INSERT INTO driver_rse_counters
			(organization_id, driver_id, business_date, regulatory_category,
			 driving_minutes, amplitude_minutes, break_minutes, rest_minutes, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, 0, now())
		ON CONFLICT (organization_id, driver_id, business_date, regulatory_category) DO NOTHING
	`
	if _, err := s.execer(ctx).ExecContext(ctx, insert,
		uuid.UUID(key.OrgID), uuid.UUID(key.DriverID), key.Date, string(key.Category),
	); err != nil {
		return nil, fmt.Errorf("insert counter: %w", err)
	}

	query := `
		SELECT driving_minutes, amplitude_minutes, break_minutes, rest_minutes, updated_at
		FROM driver_rse_counters
		WHERE organization_id = $1 AND driver_id = $2 AND business_date = $3 AND regulatory_category = $4
	`
	c := Counter{Key: key}
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(key.OrgID), uuid.UUID(key.DriverID), key.Date, string(key.Category),
	).Scan(
		&c.Snapshot.DrivingMinutes,
		&c.Snapshot.AmplitudeMinutes,
		&c.Snapshot.BreakMinutes,
		&c.Snapshot.RestMinutes,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get counter: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CommitDelta(ctx context.Context, key Key, baseline, delta domain.CounterSnapshot, now time.Time) (*Counter, error) {
	query := `
		UPDATE driver_rse_counters
		SET driving_minutes = driving_minutes + $5,
			amplitude_minutes = amplitude_minutes + $6,
			break_minutes = break_minutes + $7,
			rest_minutes = rest_minutes + $8,
			updated_at = $9
		WHERE organization_id = $1 AND driver_id = $2 AND business_date = $3 AND regulatory_category = $4
			AND driving_minutes = $10 AND amplitude_minutes = $11
			AND break_minutes = $12 AND rest_minutes = $13
		RETURNING driving_minutes, amplitude_minutes, break_minutes, rest_minutes, updated_at
	`
	c := Counter{Key: key}
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(key.OrgID), uuid.UUID(key.DriverID), key.Date, string(key.Category),
		delta.DrivingMinutes, delta.AmplitudeMinutes, delta.BreakMinutes, delta.RestMinutes,
		now,
		baseline.DrivingMinutes, baseline.AmplitudeMinutes, baseline.BreakMinutes, baseline.RestMinutes,
	).Scan(
		&c.Snapshot.DrivingMinutes,
		&c.Snapshot.AmplitudeMinutes,
		&c.Snapshot.BreakMinutes,
		&c.Snapshot.RestMinutes,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row missing or moved past the baseline; either way the
			// caller's read is stale.
			return nil, sentinel.ErrStaleBaseline
		}
		return nil, fmt.Errorf("commit counter delta: %w", err)
	}
	return &c, nil
}
