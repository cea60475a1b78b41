package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fleetdesk/internal/audit/metrics"
	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/requestcontext"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service records compliance audit entries and serves the paginated query.
// Writes are synchronous; whether a failed write aborts the caller is the
// caller's decision, not this service's.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for write failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends one audit entry. The entry ID and timestamp are filled in
// when the caller left them zero.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry.ID.IsNil() {
		entry.ID = id.AuditEntryID(uuid.New())
	}
	if entry.EvaluatedAt.IsZero() {
		entry.EvaluatedAt = requestcontext.Now(ctx)
	}
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}
	if entry.Violations == nil {
		entry.Violations = []domain.Violation{}
	}
	if entry.Warnings == nil {
		entry.Warnings = []domain.Warning{}
	}

	if err := s.store.Append(ctx, entry); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementWriteFailure()
		}
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "CRITICAL: compliance audit write failed",
				"driver_id", entry.DriverID.String(),
				"decision", string(entry.Decision),
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	if s.metrics != nil {
		s.metrics.IncrementRecorded()
	}
	return nil
}

// List returns a driver's audit entries, most recent first. limit defaults
// to 50 and is capped at 200; before narrows to strictly earlier entries.
func (s *Service) List(ctx context.Context, orgID id.OrgID, driverID id.DriverID, limit int, before *time.Time) ([]*Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	entries, err := s.store.ListByDriver(ctx, orgID, driverID, limit, before)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries")
	}
	return entries, nil
}
