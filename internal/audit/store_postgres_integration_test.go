//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fleetdesk/internal/audit"
	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore

	orgID    id.OrgID
	driverID id.DriverID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
	s.orgID = id.OrgID(uuid.New())
	s.driverID = id.DriverID(uuid.New())
}

func (s *PostgresStoreSuite) newEntry(evaluatedAt time.Time) *audit.Entry {
	return &audit.Entry{
		ID:           id.AuditEntryID(uuid.New()),
		OrgID:        s.orgID,
		DriverID:     s.driverID,
		Category:     id.RegulatoryHeavy,
		BusinessDate: "2026-08-28",
		Decision:     domain.DecisionApproved,
		Violations:   []domain.Violation{},
		Warnings:     []domain.Warning{},
		Reason:       "within daily limits",
		RulesUsed:    domain.DefaultHeavyRuleSet(),
		CounterBefore: domain.CounterSnapshot{
			DrivingMinutes:   120,
			AmplitudeMinutes: 150,
		},
		EvaluatedAt: evaluatedAt,
		Committed:   true,
		RequestID:   "req-1",
	}
}

func (s *PostgresStoreSuite) TestAppendAndListRoundTrip() {
	ctx := context.Background()
	entry := s.newEntry(time.Now().UTC().Truncate(time.Microsecond))
	quoteID := id.QuoteID(uuid.New())
	entry.QuoteID = &quoteID
	vehicleCategoryID := id.VehicleCategoryID(uuid.New())
	entry.VehicleCategoryID = &vehicleCategoryID
	entry.Violations = []domain.Violation{{
		Type:   domain.ViolationDrivingTimeExceeded,
		Actual: 11,
		Limit:  10,
		Unit:   "hours",
	}}
	entry.Decision = domain.DecisionBlocked
	entry.Committed = false

	s.Require().NoError(s.store.Append(ctx, entry))

	got, err := s.store.ListByDriver(ctx, s.orgID, s.driverID, 10, nil)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(entry.ID, got[0].ID)
	s.Equal(domain.DecisionBlocked, got[0].Decision)
	s.Require().NotNil(got[0].QuoteID)
	s.Equal(quoteID, *got[0].QuoteID)
	s.Require().NotNil(got[0].VehicleCategoryID)
	s.Equal(vehicleCategoryID, *got[0].VehicleCategoryID)
	s.Require().Len(got[0].Violations, 1)
	s.Equal(domain.ViolationDrivingTimeExceeded, got[0].Violations[0].Type)
	s.Equal(120, got[0].CounterBefore.DrivingMinutes)
	s.Require().NotNil(got[0].RulesUsed)
	s.Equal(domain.RuleSourceRegulatoryDefault, got[0].RulesUsed.Source)
	s.False(got[0].Committed)
}

func (s *PostgresStoreSuite) TestListMostRecentFirstWithLimit() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Append(ctx, s.newEntry(base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := s.store.ListByDriver(ctx, s.orgID, s.driverID, 3, nil)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(base.Add(4*time.Minute), got[0].EvaluatedAt.UTC())
	s.Equal(base.Add(2*time.Minute), got[2].EvaluatedAt.UTC())
}

func (s *PostgresStoreSuite) TestListBeforeIsStrict() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Append(ctx, s.newEntry(base.Add(time.Duration(i)*time.Minute))))
	}

	before := base.Add(time.Minute)
	got, err := s.store.ListByDriver(ctx, s.orgID, s.driverID, 10, &before)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(base, got[0].EvaluatedAt.UTC())
}

func (s *PostgresStoreSuite) TestListScopedToOrgAndDriver() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newEntry(time.Now().UTC())))

	got, err := s.store.ListByDriver(ctx, id.OrgID(uuid.New()), s.driverID, 10, nil)
	s.Require().NoError(err)
	s.Empty(got)

	got, err = s.store.ListByDriver(ctx, s.orgID, id.DriverID(uuid.New()), 10, nil)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *PostgresStoreSuite) TestAppendQueuesOutboxRecord() {
	ctx := context.Background()
	entry := s.newEntry(time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Append(ctx, entry))

	records, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(entry.ID, records[0].EntryID)
	s.NotEmpty(records[0].Payload)
}

func (s *PostgresStoreSuite) TestMarkPublishedClearsBacklog() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newEntry(time.Now().UTC())))
	s.Require().NoError(s.store.Append(ctx, s.newEntry(time.Now().UTC())))

	records, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 2)

	s.Require().NoError(s.store.MarkPublished(ctx, []int64{records[0].ID}, time.Now().UTC()))

	remaining, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(records[1].ID, remaining[0].ID)
}
