package compliance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fleetdesk/internal/audit"
	"fleetdesk/internal/compliance/metrics"
	"fleetdesk/internal/counter"
	"fleetdesk/internal/domain"
	"fleetdesk/internal/fleet"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/sentinel"
	"fleetdesk/pkg/requestcontext"
)

// maxCommitRetries bounds re-evaluation after stale-baseline commit
// conflicts. Past this, the dispatch load is contended enough that the
// caller should just resubmit.
const maxCommitRetries = 3

// RuleResolver yields the rule set for an evaluation, nil for LIGHT.
type RuleResolver interface {
	Resolve(ctx context.Context, orgID id.OrgID, category id.RegulatoryCategory, categoryID *id.LicenseCategoryID) (*domain.RuleSet, error)
}

// DriverDirectory confirms the driver exists and supplies its license
// category when the request does not name one.
type DriverDirectory interface {
	GetDriver(ctx context.Context, orgID id.OrgID, driverID id.DriverID) (*fleet.Driver, error)
}

// CounterPort is the evaluator's view of the counter service.
type CounterPort interface {
	KeyFor(orgID id.OrgID, driverID id.DriverID, pickupAt time.Time, category id.RegulatoryCategory) counter.Key
	Load(ctx context.Context, key counter.Key) (*counter.Counter, error)
	Commit(ctx context.Context, key counter.Key, baseline, delta domain.CounterSnapshot, now time.Time) (*counter.Counter, error)
}

// AuditRecorder appends one audit entry per evaluation.
type AuditRecorder interface {
	Record(ctx context.Context, entry *audit.Entry) error
}

// TxRunner executes fn inside a storage transaction. The context handed to
// fn carries the transaction so stores join it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTxRunner runs fn directly. Used with the in-memory stores, whose
// counter commit is already atomic.
type NoopTxRunner struct{}

func (NoopTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Request is one compliance question: may this driver take this trip.
type Request struct {
	DriverID          id.DriverID
	Category          id.RegulatoryCategory
	VehicleCategoryID *id.VehicleCategoryID
	LicenseCategoryID *id.LicenseCategoryID
	PickupAt          time.Time
	Trip              domain.TripAnalysis
	QuoteID           *id.QuoteID
	MissionID         *id.MissionID

	// Commit persists the consumption when the decision is APPROVED.
	// Preview evaluations leave it false and never touch counters.
	Commit bool
}

// Result is the evaluator's answer. Non-compliance is a decision, not an
// error; Evaluate only errors on infrastructure or data-integrity failures.
type Result struct {
	Decision      domain.Decision
	IsCompliant   bool
	Violations    []domain.Violation
	Warnings      []domain.Warning
	Reason        string
	RulesUsed     *domain.RuleSet
	Adjusted      domain.AdjustedDurations
	BusinessDate  string
	CounterBefore domain.CounterSnapshot
	CounterAfter  *domain.CounterSnapshot
	Committed     bool
}

// Service is the compliance evaluator.
type Service struct {
	rules    RuleResolver
	drivers  DriverDirectory
	counters CounterPort
	auditor  AuditRecorder
	txRunner TxRunner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTxRunner sets the transaction runner used to make the counter commit
// and its audit entry atomic.
func WithTxRunner(runner TxRunner) Option {
	return func(s *Service) { s.txRunner = runner }
}

func New(rules RuleResolver, drivers DriverDirectory, counters CounterPort, auditor AuditRecorder, opts ...Option) *Service {
	s := &Service{
		rules:    rules,
		drivers:  drivers,
		counters: counters,
		auditor:  auditor,
		txRunner: NoopTxRunner{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate answers the compliance question and, when asked, commits the
// approved consumption. The audit entry is written whatever the outcome.
func (s *Service) Evaluate(ctx context.Context, orgID id.OrgID, req Request) (*Result, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveEvaluation(start)
		}
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	driver, err := s.drivers.GetDriver(ctx, orgID, req.DriverID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			// The caller references a driver this org does not have. That
			// is corrupted dispatch data, not a user-facing 404.
			return nil, dErrors.New(dErrors.CodeDataIntegrity, "driver does not exist for this organization")
		}
		return nil, err
	}
	categoryID := req.LicenseCategoryID
	if categoryID == nil {
		categoryID = driver.LicenseCategoryID
	}

	key := s.counters.KeyFor(orgID, req.DriverID, req.PickupAt, req.Category)

	var (
		rules *domain.RuleSet
		day   *counter.Counter
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rErr error
		rules, rErr = s.rules.Resolve(gctx, orgID, req.Category, categoryID)
		return rErr
	})
	g.Go(func() error {
		var cErr error
		day, cErr = s.counters.Load(gctx, key)
		return cErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := s.evaluateAgainst(day.Snapshot, req, rules, key.Date)

	if !req.Commit || result.Decision != domain.DecisionApproved {
		s.recordAudit(ctx, orgID, req, result, false)
		s.observeDecision(ctx, orgID, req, result)
		return result, nil
	}

	committed, err := s.commitApproved(ctx, orgID, req, rules, key, result)
	if err != nil {
		return nil, err
	}
	s.observeDecision(ctx, orgID, req, committed)
	return committed, nil
}

// evaluateAgainst runs the pure part of the pipeline: inject breaks,
// project, classify.
func (s *Service) evaluateAgainst(baseline domain.CounterSnapshot, req Request, rules *domain.RuleSet, businessDate string) *Result {
	adj := InjectBreaks(req.Trip, rules)
	projected := baseline.Add(adj)

	if rules == nil {
		return &Result{
			Decision:      domain.DecisionApproved,
			IsCompliant:   true,
			Violations:    []domain.Violation{},
			Warnings:      []domain.Warning{},
			Reason:        "unregulated vehicle category, no driving-time limits apply",
			Adjusted:      adj,
			BusinessDate:  businessDate,
			CounterBefore: baseline,
		}
	}

	v := classify(projected, req.Trip, rules)
	return &Result{
		Decision:      v.Decision,
		IsCompliant:   !v.Decision.Blocks(),
		Violations:    v.Violations,
		Warnings:      v.Warnings,
		Reason:        v.Reason,
		RulesUsed:     rules,
		Adjusted:      adj,
		BusinessDate:  businessDate,
		CounterBefore: baseline,
	}
}

// commitApproved persists the approved consumption atomically with its audit
// entry. A stale baseline means another commit landed first; the evaluation
// is redone against the fresh counter before retrying, and a decision that
// flips to WARNING or BLOCKED on re-read is returned uncommitted.
func (s *Service) commitApproved(ctx context.Context, orgID id.OrgID, req Request, rules *domain.RuleSet, key counter.Key, result *Result) (*Result, error) {
	for attempt := 0; attempt <= maxCommitRetries; attempt++ {
		delta := domain.CounterSnapshot{
			DrivingMinutes:   result.Adjusted.TotalDrivingMinutes,
			AmplitudeMinutes: result.Adjusted.AdjustedAmplitudeMinutes,
			BreakMinutes:     result.Adjusted.InjectedBreakMinutes,
		}

		var after *counter.Counter
		err := s.txRunner.RunInTx(ctx, func(txCtx context.Context) error {
			// Commit first: a stale baseline aborts the transaction before
			// any audit row exists, so retries never leave orphans.
			var cErr error
			after, cErr = s.counters.Commit(txCtx, key, result.CounterBefore, delta, requestcontext.Now(ctx))
			if cErr != nil {
				return cErr
			}
			return s.auditor.Record(txCtx, s.buildEntry(orgID, req, result, true))
		})
		if err == nil {
			result.Committed = true
			result.CounterAfter = &after.Snapshot
			return result, nil
		}
		if !errors.Is(err, sentinel.ErrStaleBaseline) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit approved evaluation")
		}

		if s.metrics != nil {
			s.metrics.IncrementCommitConflict()
		}
		s.logger.InfoContext(ctx, "counter commit conflict, re-evaluating",
			"driver_id", req.DriverID.String(),
			"attempt", attempt+1,
		)

		fresh, err := s.counters.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		result = s.evaluateAgainst(fresh.Snapshot, req, rules, key.Date)
		if result.Decision != domain.DecisionApproved {
			// The concurrent commit consumed the remaining headroom.
			s.recordAudit(ctx, orgID, req, result, false)
			return result, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeConflict, "driver counter is contended, retry the request")
}

// recordAudit writes the entry best-effort: the decision already stands and
// a failed write must not turn it into an error response. The audit service
// logs and counts the failure.
func (s *Service) recordAudit(ctx context.Context, orgID id.OrgID, req Request, result *Result, committed bool) {
	entry := s.buildEntry(orgID, req, result, committed)
	if err := s.auditor.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "evaluation served without audit trail",
			"driver_id", req.DriverID.String(),
			"decision", string(result.Decision),
			"error", err,
		)
	}
}

func (s *Service) buildEntry(orgID id.OrgID, req Request, result *Result, committed bool) *audit.Entry {
	return &audit.Entry{
		OrgID:             orgID,
		DriverID:          req.DriverID,
		QuoteID:           req.QuoteID,
		MissionID:         req.MissionID,
		VehicleCategoryID: req.VehicleCategoryID,
		Category:          req.Category,
		BusinessDate:      result.BusinessDate,
		Decision:          result.Decision,
		Violations:        result.Violations,
		Warnings:          result.Warnings,
		Reason:            result.Reason,
		RulesUsed:         result.RulesUsed,
		CounterBefore:     result.CounterBefore,
		Committed:         committed,
	}
}

func (s *Service) observeDecision(ctx context.Context, orgID id.OrgID, req Request, result *Result) {
	if s.metrics != nil {
		s.metrics.IncrementEvaluation(string(result.Decision))
	}
	s.logger.InfoContext(ctx, "compliance evaluation",
		"request_id", requestcontext.RequestID(ctx),
		"organization_id", orgID.String(),
		"driver_id", req.DriverID.String(),
		"decision", string(result.Decision),
		"committed", result.Committed,
		"violations", len(result.Violations),
		"warnings", len(result.Warnings),
	)
}

func validateRequest(req Request) error {
	if req.DriverID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "driver id is required")
	}
	if req.PickupAt.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "pickup time is required")
	}
	for _, seg := range []domain.Segment{req.Trip.Approach, req.Trip.Service, req.Trip.Return} {
		if seg.DurationMinutes < 0 || seg.DistanceKm < 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "trip segments must not be negative")
		}
	}
	return nil
}
