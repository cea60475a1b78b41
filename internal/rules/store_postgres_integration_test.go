//go:build integration

package rules_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fleetdesk/internal/fleet"
	"fleetdesk/internal/rules"
	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/platform/sentinel"
	"fleetdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	store      *rules.PostgresStore
	categories *fleet.PostgresCategoryStore

	orgID      id.OrgID
	categoryID id.LicenseCategoryID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = rules.NewPostgres(s.postgres.DB)
	s.categories = fleet.NewPostgresCategoryStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateAll(ctx))

	s.orgID = id.OrgID(uuid.New())
	s.categoryID = id.LicenseCategoryID(uuid.New())

	category, err := fleet.NewLicenseCategory(s.categoryID, s.orgID, "D", "Bus and coach", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.categories.Create(ctx, category))
}

func (s *PostgresStoreSuite) newRule(limits rules.Limits) *rules.LicenseRule {
	rule, err := rules.NewLicenseRule(id.RuleID(uuid.New()), s.orgID, s.categoryID, limits, time.Now().UTC())
	s.Require().NoError(err)
	return rule
}

func defaultLimits() rules.Limits {
	return rules.Limits{
		MaxDailyDrivingHours:        9,
		MaxDailyAmplitudeHours:      13,
		BreakMinutesPerDrivingBlock: 45,
		DrivingBlockHoursForBreak:   4.5,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGetByID() {
	ctx := context.Background()
	speedCap := 90.0
	limits := defaultLimits()
	limits.CappedAverageSpeedKmh = &speedCap
	rule := s.newRule(limits)

	s.Require().NoError(s.store.Create(ctx, rule))

	got, err := s.store.GetByID(ctx, s.orgID, rule.ID)
	s.Require().NoError(err)
	s.Equal(rule.ID, got.ID)
	s.Equal(rule.LicenseCategoryID, got.LicenseCategoryID)
	s.Equal(9.0, got.MaxDailyDrivingHours)
	s.Require().NotNil(got.CappedAverageSpeedKmh)
	s.Equal(90.0, *got.CappedAverageSpeedKmh)
}

func (s *PostgresStoreSuite) TestCreateDuplicateCategoryConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newRule(defaultLimits())))

	err := s.store.Create(ctx, s.newRule(defaultLimits()))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestGetByIDScopedToOrg() {
	ctx := context.Background()
	rule := s.newRule(defaultLimits())
	s.Require().NoError(s.store.Create(ctx, rule))

	_, err := s.store.GetByID(ctx, id.OrgID(uuid.New()), rule.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindByCategory() {
	ctx := context.Background()
	rule := s.newRule(defaultLimits())
	s.Require().NoError(s.store.Create(ctx, rule))

	got, err := s.store.FindByCategory(ctx, s.orgID, s.categoryID)
	s.Require().NoError(err)
	s.Equal(rule.ID, got.ID)

	_, err = s.store.FindByCategory(ctx, s.orgID, id.LicenseCategoryID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatePersistsNewLimits() {
	ctx := context.Background()
	rule := s.newRule(defaultLimits())
	s.Require().NoError(s.store.Create(ctx, rule))

	limits := defaultLimits()
	limits.MaxDailyDrivingHours = 8
	s.Require().NoError(rule.ApplyLimits(limits, time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, rule))

	got, err := s.store.GetByID(ctx, s.orgID, rule.ID)
	s.Require().NoError(err)
	s.Equal(8.0, got.MaxDailyDrivingHours)
}

func (s *PostgresStoreSuite) TestUpdateMissingRuleNotFound() {
	ctx := context.Background()
	rule := s.newRule(defaultLimits())

	err := s.store.Update(ctx, rule)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	rule := s.newRule(defaultLimits())
	s.Require().NoError(s.store.Create(ctx, rule))

	s.Require().NoError(s.store.Delete(ctx, s.orgID, rule.ID))

	_, err := s.store.GetByID(ctx, s.orgID, rule.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.Delete(ctx, s.orgID, rule.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListNewestFirst() {
	ctx := context.Background()

	otherCategory := id.LicenseCategoryID(uuid.New())
	category, err := fleet.NewLicenseCategory(otherCategory, s.orgID, "C", "Heavy goods", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.categories.Create(ctx, category))

	older, err := rules.NewLicenseRule(id.RuleID(uuid.New()), s.orgID, s.categoryID, defaultLimits(),
		time.Now().UTC().Add(-time.Hour))
	s.Require().NoError(err)
	newer, err := rules.NewLicenseRule(id.RuleID(uuid.New()), s.orgID, otherCategory, defaultLimits(),
		time.Now().UTC())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))

	got, err := s.store.List(ctx, s.orgID)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(newer.ID, got[0].ID)
	s.Equal(older.ID, got[1].ID)
}
