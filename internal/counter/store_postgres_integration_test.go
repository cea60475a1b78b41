//go:build integration

package counter_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fleetdesk/internal/counter"
	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/platform/sentinel"
	"fleetdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *counter.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = counter.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) newKey() counter.Key {
	return counter.Key{
		OrgID:    id.OrgID(uuid.New()),
		DriverID: id.DriverID(uuid.New()),
		Date:     "2026-08-28",
		Category: id.RegulatoryHeavy,
	}
}

func (s *PostgresStoreSuite) TestGetOrCreateStartsAtZero() {
	ctx := context.Background()
	key := s.newKey()

	c, err := s.store.GetOrCreate(ctx, key)
	s.Require().NoError(err)
	s.Equal(domain.CounterSnapshot{}, c.Snapshot)
}

func (s *PostgresStoreSuite) TestGetOrCreateNeverResets() {
	ctx := context.Background()
	key := s.newKey()

	c, err := s.store.GetOrCreate(ctx, key)
	s.Require().NoError(err)

	delta := domain.CounterSnapshot{DrivingMinutes: 120, AmplitudeMinutes: 150, BreakMinutes: 30}
	_, err = s.store.CommitDelta(ctx, key, c.Snapshot, delta, time.Now().UTC())
	s.Require().NoError(err)

	again, err := s.store.GetOrCreate(ctx, key)
	s.Require().NoError(err)
	s.Equal(delta, again.Snapshot)
}

func (s *PostgresStoreSuite) TestCommitDeltaIsAdditive() {
	ctx := context.Background()
	key := s.newKey()

	c, err := s.store.GetOrCreate(ctx, key)
	s.Require().NoError(err)

	first, err := s.store.CommitDelta(ctx, key, c.Snapshot,
		domain.CounterSnapshot{DrivingMinutes: 60, AmplitudeMinutes: 60}, time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(60, first.Snapshot.DrivingMinutes)

	second, err := s.store.CommitDelta(ctx, key, first.Snapshot,
		domain.CounterSnapshot{DrivingMinutes: 30, AmplitudeMinutes: 45, BreakMinutes: 15}, time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(90, second.Snapshot.DrivingMinutes)
	s.Equal(105, second.Snapshot.AmplitudeMinutes)
	s.Equal(15, second.Snapshot.BreakMinutes)
}

func (s *PostgresStoreSuite) TestStaleBaselineRejected() {
	ctx := context.Background()
	key := s.newKey()

	c, err := s.store.GetOrCreate(ctx, key)
	s.Require().NoError(err)

	_, err = s.store.CommitDelta(ctx, key, c.Snapshot,
		domain.CounterSnapshot{DrivingMinutes: 60, AmplitudeMinutes: 60}, time.Now().UTC())
	s.Require().NoError(err)

	// Reusing the zero baseline after the first commit must fail.
	_, err = s.store.CommitDelta(ctx, key, c.Snapshot,
		domain.CounterSnapshot{DrivingMinutes: 30, AmplitudeMinutes: 30}, time.Now().UTC())
	s.Require().ErrorIs(err, sentinel.ErrStaleBaseline)
}

func (s *PostgresStoreSuite) TestMissingRowIsStale() {
	ctx := context.Background()

	_, err := s.store.CommitDelta(ctx, s.newKey(), domain.CounterSnapshot{},
		domain.CounterSnapshot{DrivingMinutes: 60}, time.Now().UTC())
	s.Require().ErrorIs(err, sentinel.ErrStaleBaseline)
}

// TestConcurrentCommitsSameBaseline verifies the guard serializes racing
// writers: with the same baseline exactly one wins, so no consumption is ever
// double counted.
func (s *PostgresStoreSuite) TestConcurrentCommitsSameBaseline() {
	ctx := context.Background()
	key := s.newKey()

	c, err := s.store.GetOrCreate(ctx, key)
	s.Require().NoError(err)

	const goroutines = 10
	var wg sync.WaitGroup
	var committed, stale atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.CommitDelta(ctx, key, c.Snapshot,
				domain.CounterSnapshot{DrivingMinutes: 60, AmplitudeMinutes: 60}, time.Now().UTC())
			switch {
			case err == nil:
				committed.Add(1)
			case errors.Is(err, sentinel.ErrStaleBaseline):
				stale.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), committed.Load(), "exactly one commit should win")
	s.Equal(int32(goroutines-1), stale.Load(), "the rest should observe a stale baseline")

	final, err := s.store.GetOrCreate(ctx, key)
	s.Require().NoError(err)
	s.Equal(60, final.Snapshot.DrivingMinutes)
}
