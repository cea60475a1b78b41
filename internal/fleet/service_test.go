package fleet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
)

type FleetServiceSuite struct {
	suite.Suite
	service *Service

	orgID id.OrgID
}

func TestFleetServiceSuite(t *testing.T) {
	suite.Run(t, new(FleetServiceSuite))
}

func (s *FleetServiceSuite) SetupTest() {
	s.orgID = id.OrgID(uuid.New())
	s.service = New(NewInMemoryDriverStore(), NewInMemoryCategoryStore())
}

func (s *FleetServiceSuite) TestCreateDriver() {
	ctx := context.Background()

	s.Run("without license category", func() {
		driver, err := s.service.CreateDriver(ctx, s.orgID, "Jean Dupont", nil)
		s.Require().NoError(err)
		s.False(driver.ID.IsNil())
		s.Nil(driver.LicenseCategoryID)
		s.True(driver.Active)
	})

	s.Run("with known license category", func() {
		category, err := s.service.CreateCategory(ctx, s.orgID, "D", "Bus and coach")
		s.Require().NoError(err)

		driver, err := s.service.CreateDriver(ctx, s.orgID, "Marie Petit", &category.ID)
		s.Require().NoError(err)
		s.Require().NotNil(driver.LicenseCategoryID)
		s.Equal(category.ID, *driver.LicenseCategoryID)
	})

	s.Run("rejects unknown license category", func() {
		unknown := id.LicenseCategoryID(uuid.New())
		_, err := s.service.CreateDriver(ctx, s.orgID, "Luc Martin", &unknown)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects blank name", func() {
		_, err := s.service.CreateDriver(ctx, s.orgID, "  ", nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *FleetServiceSuite) TestGetDriverScopedToOrg() {
	ctx := context.Background()

	driver, err := s.service.CreateDriver(ctx, s.orgID, "Jean Dupont", nil)
	s.Require().NoError(err)

	got, err := s.service.GetDriver(ctx, s.orgID, driver.ID)
	s.Require().NoError(err)
	s.Equal(driver.ID, got.ID)

	_, err = s.service.GetDriver(ctx, id.OrgID(uuid.New()), driver.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *FleetServiceSuite) TestListDrivers() {
	ctx := context.Background()

	_, err := s.service.CreateDriver(ctx, s.orgID, "Jean Dupont", nil)
	s.Require().NoError(err)
	_, err = s.service.CreateDriver(ctx, s.orgID, "Marie Petit", nil)
	s.Require().NoError(err)

	drivers, err := s.service.ListDrivers(ctx, s.orgID)
	s.Require().NoError(err)
	s.Len(drivers, 2)

	foreign, err := s.service.ListDrivers(ctx, id.OrgID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(foreign)
}

func (s *FleetServiceSuite) TestCreateCategory() {
	ctx := context.Background()

	s.Run("creates and lists by code", func() {
		_, err := s.service.CreateCategory(ctx, s.orgID, "D", "Bus and coach")
		s.Require().NoError(err)
		_, err = s.service.CreateCategory(ctx, s.orgID, "B", "Car")
		s.Require().NoError(err)

		categories, err := s.service.ListCategories(ctx, s.orgID)
		s.Require().NoError(err)
		s.Require().Len(categories, 2)
		s.Equal("B", categories[0].Code)
		s.Equal("D", categories[1].Code)
	})

	s.Run("duplicate code conflicts", func() {
		_, err := s.service.CreateCategory(ctx, s.orgID, "D", "again")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects blank code", func() {
		_, err := s.service.CreateCategory(ctx, s.orgID, " ", "label")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *FleetServiceSuite) TestCategoryExists() {
	ctx := context.Background()

	category, err := s.service.CreateCategory(ctx, s.orgID, "D", "Bus and coach")
	s.Require().NoError(err)

	ok, err := s.service.CategoryExists(ctx, s.orgID, category.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.CategoryExists(ctx, s.orgID, id.LicenseCategoryID(uuid.New()))
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.CategoryExists(ctx, id.OrgID(uuid.New()), category.ID)
	s.Require().NoError(err)
	s.False(ok)
}
