package counter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/sentinel"
)

// Service owns business-date keying and wraps store failures into coded
// errors. It stays deliberately thin: projection is pure math on
// domain.CounterSnapshot and decision logic belongs to the evaluator.
type Service struct {
	store  Store
	loc    *time.Location
	logger *slog.Logger
}

func NewService(store Store, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, loc: loc, logger: logger}
}

// KeyFor builds the counter key for a trip: the pickup time is mapped to the
// organization's business day.
func (s *Service) KeyFor(orgID id.OrgID, driverID id.DriverID, pickupAt time.Time, category id.RegulatoryCategory) Key {
	return Key{
		OrgID:    orgID,
		DriverID: driverID,
		Date:     BusinessDate(pickupAt, s.loc),
		Category: category,
	}
}

// Load returns the driver-day counter, creating a zero row on first touch.
func (s *Service) Load(ctx context.Context, key Key) (*Counter, error) {
	c, err := s.store.GetOrCreate(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load driver counter")
	}
	return c, nil
}

// Commit applies delta on top of baseline. sentinel.ErrStaleBaseline passes
// through untouched so the evaluator can re-read and retry; everything else
// becomes an internal coded error.
func (s *Service) Commit(ctx context.Context, key Key, baseline, delta domain.CounterSnapshot, now time.Time) (*Counter, error) {
	c, err := s.store.CommitDelta(ctx, key, baseline, delta, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrStaleBaseline) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit driver counter")
	}
	s.logger.InfoContext(ctx, "counter committed",
		"driver_id", key.DriverID.String(),
		"business_date", key.Date,
		"driving_minutes", c.Snapshot.DrivingMinutes,
		"amplitude_minutes", c.Snapshot.AmplitudeMinutes,
	)
	return c, nil
}
