package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	txcontext "fleetdesk/pkg/platform/tx"
)

// PostgresStore implements Store with the transactional outbox pattern: the
// entry row and its outbox row land in the same transaction, so a published
// Kafka record always has a durable entry behind it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	violations, err := json.Marshal(entry.Violations)
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}
	warnings, err := json.Marshal(entry.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	counterBefore, err := json.Marshal(entry.CounterBefore)
	if err != nil {
		return fmt.Errorf("marshal counter snapshot: %w", err)
	}
	var rulesUsed []byte
	if entry.RulesUsed != nil {
		rulesUsed, err = json.Marshal(entry.RulesUsed)
		if err != nil {
			return fmt.Errorf("marshal rules used: %w", err)
		}
	}

	var quoteID, missionID, vehicleCategoryID *uuid.UUID
	if entry.QuoteID != nil {
		qid := uuid.UUID(*entry.QuoteID)
		quoteID = &qid
	}
	if entry.MissionID != nil {
		mid := uuid.UUID(*entry.MissionID)
		missionID = &mid
	}
	if entry.VehicleCategoryID != nil {
		vcid := uuid.UUID(*entry.VehicleCategoryID)
		vehicleCategoryID = &vcid
	}

	insertEntry := `
		INSERT INTO compliance_audit_log (
			id, organization_id, driver_id, quote_id, mission_id,
			vehicle_category_id, regulatory_category, business_date, decision,
			violations, warnings, reason, rules_used, counter_before,
			evaluated_at, committed, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = s.execer(ctx).ExecContext(ctx, insertEntry,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.OrgID),
		uuid.UUID(entry.DriverID),
		quoteID,
		missionID,
		vehicleCategoryID,
		string(entry.Category),
		entry.BusinessDate,
		string(entry.Decision),
		violations,
		warnings,
		entry.Reason,
		rulesUsed,
		counterBefore,
		entry.EvaluatedAt,
		entry.Committed,
		entry.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	insertOutbox := `
		INSERT INTO compliance_audit_outbox (entry_id, payload, created_at)
		VALUES ($1, $2, $3)
	`
	if _, err := s.execer(ctx).ExecContext(ctx, insertOutbox,
		uuid.UUID(entry.ID), payload, entry.EvaluatedAt,
	); err != nil {
		return fmt.Errorf("insert outbox record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDriver(ctx context.Context, orgID id.OrgID, driverID id.DriverID, limit int, before *time.Time) ([]*Entry, error) {
	query := `
		SELECT id, organization_id, driver_id, quote_id, mission_id,
			vehicle_category_id, regulatory_category, business_date, decision,
			violations, warnings, reason, rules_used, counter_before,
			evaluated_at, committed, request_id
		FROM compliance_audit_log
		WHERE organization_id = $1 AND driver_id = $2
			AND ($3::timestamptz IS NULL OR evaluated_at < $3)
		ORDER BY evaluated_at DESC
		LIMIT $4
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query,
		uuid.UUID(orgID), uuid.UUID(driverID), before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		entry             Entry
		entryID           uuid.UUID
		orgID             uuid.UUID
		driverID          uuid.UUID
		quoteID           *uuid.UUID
		missionID         *uuid.UUID
		vehicleCategoryID *uuid.UUID
		category          string
		decision          string
		violations        []byte
		warnings          []byte
		rulesUsed         []byte
		counterBefore     []byte
	)
	err := rows.Scan(
		&entryID, &orgID, &driverID, &quoteID, &missionID,
		&vehicleCategoryID, &category, &entry.BusinessDate, &decision,
		&violations, &warnings, &entry.Reason, &rulesUsed, &counterBefore,
		&entry.EvaluatedAt, &entry.Committed, &entry.RequestID,
	)
	if err != nil {
		return nil, err
	}
	entry.ID = id.AuditEntryID(entryID)
	entry.OrgID = id.OrgID(orgID)
	entry.DriverID = id.DriverID(driverID)
	if quoteID != nil {
		qid := id.QuoteID(*quoteID)
		entry.QuoteID = &qid
	}
	if missionID != nil {
		mid := id.MissionID(*missionID)
		entry.MissionID = &mid
	}
	if vehicleCategoryID != nil {
		vcid := id.VehicleCategoryID(*vehicleCategoryID)
		entry.VehicleCategoryID = &vcid
	}
	entry.Category = id.RegulatoryCategory(category)
	entry.Decision = domain.Decision(decision)
	if err := json.Unmarshal(violations, &entry.Violations); err != nil {
		return nil, fmt.Errorf("unmarshal violations: %w", err)
	}
	if err := json.Unmarshal(warnings, &entry.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	if len(counterBefore) > 0 {
		if err := json.Unmarshal(counterBefore, &entry.CounterBefore); err != nil {
			return nil, fmt.Errorf("unmarshal counter snapshot: %w", err)
		}
	}
	if len(rulesUsed) > 0 {
		entry.RulesUsed = &domain.RuleSet{}
		if err := json.Unmarshal(rulesUsed, entry.RulesUsed); err != nil {
			return nil, fmt.Errorf("unmarshal rules used: %w", err)
		}
	}
	return &entry, nil
}

func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]*OutboxRecord, error) {
	query := `
		SELECT id, entry_id, payload, created_at
		FROM compliance_audit_outbox
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox records: %w", err)
	}
	defer rows.Close()

	var out []*OutboxRecord
	for rows.Next() {
		var (
			rec     OutboxRecord
			entryID uuid.UUID
		)
		if err := rows.Scan(&rec.ID, &entryID, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox record: %w", err)
		}
		rec.EntryID = id.AuditEntryID(entryID)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox records: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE compliance_audit_outbox SET published_at = $1 WHERE id = ANY($2)`,
		publishedAt, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
