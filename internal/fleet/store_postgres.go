package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/platform/sentinel"
)

// PostgresDriverStore persists drivers in PostgreSQL.
type PostgresDriverStore struct {
	db *sql.DB
}

func NewPostgresDriverStore(db *sql.DB) *PostgresDriverStore {
	return &PostgresDriverStore{db: db}
}

func (s *PostgresDriverStore) Create(ctx context.Context, driver *Driver) error {
	query := `
		INSERT INTO drivers (id, organization_id, full_name, license_category_id, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var categoryID *uuid.UUID
	if driver.LicenseCategoryID != nil {
		cid := uuid.UUID(*driver.LicenseCategoryID)
		categoryID = &cid
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(driver.ID),
		uuid.UUID(driver.OrgID),
		driver.FullName,
		categoryID,
		driver.Active,
		driver.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert driver: %w", err)
	}
	return nil
}

func (s *PostgresDriverStore) GetByID(ctx context.Context, orgID id.OrgID, driverID id.DriverID) (*Driver, error) {
	query := `
		SELECT id, organization_id, full_name, license_category_id, active, created_at
		FROM drivers
		WHERE organization_id = $1 AND id = $2
	`
	driver, err := scanDriver(s.db.QueryRowContext(ctx, query, uuid.UUID(orgID), uuid.UUID(driverID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get driver: %w", err)
	}
	return driver, nil
}

func (s *PostgresDriverStore) List(ctx context.Context, orgID id.OrgID) ([]*Driver, error) {
	query := `
		SELECT id, organization_id, full_name, license_category_id, active, created_at
		FROM drivers
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, driver)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drivers: %w", err)
	}
	return out, nil
}

type driverRow interface {
	Scan(dest ...any) error
}

func scanDriver(row driverRow) (*Driver, error) {
	var (
		driver     Driver
		driverID   uuid.UUID
		orgID      uuid.UUID
		categoryID *uuid.UUID
	)
	if err := row.Scan(&driverID, &orgID, &driver.FullName, &categoryID, &driver.Active, &driver.CreatedAt); err != nil {
		return nil, err
	}
	driver.ID = id.DriverID(driverID)
	driver.OrgID = id.OrgID(orgID)
	if categoryID != nil {
		cid := id.LicenseCategoryID(*categoryID)
		driver.LicenseCategoryID = &cid
	}
	return &driver, nil
}

// PostgresCategoryStore persists license categories in PostgreSQL.
type PostgresCategoryStore struct {
	db *sql.DB
}

func NewPostgresCategoryStore(db *sql.DB) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

func (s *PostgresCategoryStore) Create(ctx context.Context, category *LicenseCategory) error {
	query := `
		INSERT INTO license_categories (id, organization_id, code, label, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(category.ID),
		uuid.UUID(category.OrgID),
		category.Code,
		category.Label,
		category.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert license category: %w", err)
	}
	return nil
}

func (s *PostgresCategoryStore) GetByID(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (*LicenseCategory, error) {
	query := `
		SELECT id, organization_id, code, label, created_at
		FROM license_categories
		WHERE organization_id = $1 AND id = $2
	`
	var (
		category LicenseCategory
		cid      uuid.UUID
		oid      uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(orgID), uuid.UUID(categoryID)).
		Scan(&cid, &oid, &category.Code, &category.Label, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get license category: %w", err)
	}
	category.ID = id.LicenseCategoryID(cid)
	category.OrgID = id.OrgID(oid)
	return &category, nil
}

func (s *PostgresCategoryStore) List(ctx context.Context, orgID id.OrgID) ([]*LicenseCategory, error) {
	query := `
		SELECT id, organization_id, code, label, created_at
		FROM license_categories
		WHERE organization_id = $1
		ORDER BY code ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list license categories: %w", err)
	}
	defer rows.Close()

	var out []*LicenseCategory
	for rows.Next() {
		var (
			category LicenseCategory
			cid      uuid.UUID
			oid      uuid.UUID
		)
		if err := rows.Scan(&cid, &oid, &category.Code, &category.Label, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan license category: %w", err)
		}
		category.ID = id.LicenseCategoryID(cid)
		category.OrgID = id.OrgID(oid)
		out = append(out, &category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate license categories: %w", err)
	}
	return out, nil
}
