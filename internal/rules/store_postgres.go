package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/platform/sentinel"
	txcontext "fleetdesk/pkg/platform/tx"
)

// PostgresStore persists license rules in PostgreSQL. Pure I/O - validation
// and fallback logic live in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const ruleColumns = `id, organization_id, license_category_id,
	max_daily_driving_hours, max_daily_amplitude_hours,
	break_minutes_per_driving_block, driving_block_hours_for_break,
	capped_average_speed_kmh, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, rule *LicenseRule) error {
	query := `
		INSERT INTO organization_license_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(rule.ID),
		uuid.UUID(rule.OrgID),
		uuid.UUID(rule.LicenseCategoryID),
		rule.MaxDailyDrivingHours,
		rule.MaxDailyAmplitudeHours,
		rule.BreakMinutesPerDrivingBlock,
		rule.DrivingBlockHoursForBreak,
		rule.CappedAverageSpeedKmh,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert license rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) (*LicenseRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM organization_license_rules
		WHERE organization_id = $1 AND id = $2
	`
	rule, err := scanRule(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(orgID), uuid.UUID(ruleID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get license rule: %w", err)
	}
	return rule, nil
}

func (s *PostgresStore) FindByCategory(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (*LicenseRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM organization_license_rules
		WHERE organization_id = $1 AND license_category_id = $2
	`
	rule, err := scanRule(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(orgID), uuid.UUID(categoryID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find license rule by category: %w", err)
	}
	return rule, nil
}

func (s *PostgresStore) List(ctx context.Context, orgID id.OrgID) ([]*LicenseRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM organization_license_rules
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list license rules: %w", err)
	}
	defer rows.Close()

	var out []*LicenseRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan license rule: %w", err)
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate license rules: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, rule *LicenseRule) error {
	query := `
		UPDATE organization_license_rules
		SET max_daily_driving_hours = $3,
			max_daily_amplitude_hours = $4,
			break_minutes_per_driving_block = $5,
			driving_block_hours_for_break = $6,
			capped_average_speed_kmh = $7,
			updated_at = $8
		WHERE organization_id = $1 AND id = $2
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(rule.OrgID),
		uuid.UUID(rule.ID),
		rule.MaxDailyDrivingHours,
		rule.MaxDailyAmplitudeHours,
		rule.BreakMinutesPerDrivingBlock,
		rule.DrivingBlockHoursForBreak,
		rule.CappedAverageSpeedKmh,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update license rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update license rule rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM organization_license_rules WHERE organization_id = $1 AND id = $2`,
		uuid.UUID(orgID), uuid.UUID(ruleID),
	)
	if err != nil {
		return fmt.Errorf("delete license rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete license rule rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type ruleRow interface {
	Scan(dest ...any) error
}

func scanRule(row ruleRow) (*LicenseRule, error) {
	var (
		rule       LicenseRule
		ruleID     uuid.UUID
		orgID      uuid.UUID
		categoryID uuid.UUID
		speedCap   sql.NullFloat64
	)
	err := row.Scan(
		&ruleID,
		&orgID,
		&categoryID,
		&rule.MaxDailyDrivingHours,
		&rule.MaxDailyAmplitudeHours,
		&rule.BreakMinutesPerDrivingBlock,
		&rule.DrivingBlockHoursForBreak,
		&speedCap,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.ID = id.RuleID(ruleID)
	rule.OrgID = id.OrgID(orgID)
	rule.LicenseCategoryID = id.LicenseCategoryID(categoryID)
	if speedCap.Valid {
		rule.CappedAverageSpeedKmh = &speedCap.Float64
	}
	return &rule, nil
}
