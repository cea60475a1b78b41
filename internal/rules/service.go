package rules

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/sentinel"
	"fleetdesk/pkg/requestcontext"
)

// Service owns license rule administration and rule resolution.
type Service struct {
	store      Store
	categories CategoryDirectory
	cache      *Cache
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithCache enables the Redis-backed resolved-rule cache.
func WithCache(cache *Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, categories CategoryDirectory, opts ...Option) *Service {
	s := &Service{
		store:      store,
		categories: categories,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the rule set applying to an evaluation, or nil when the
// regulatory category is LIGHT (no limits; callers must treat nil as always
// compliant).
//
// For HEAVY, resolution order is: org override for the license category,
// else the named regulatory default set. An explicitly requested license
// category that does not exist for the org is a configuration error,
// distinct from the "no rule configured, use defaults" fallback.
func (s *Service) Resolve(ctx context.Context, orgID id.OrgID, category id.RegulatoryCategory, categoryID *id.LicenseCategoryID) (*domain.RuleSet, error) {
	if !category.IsRegulated() {
		return nil, nil
	}
	if categoryID == nil {
		// No license category requested: defaults scoped to the vehicle
		// category stand in for a real license rule row.
		return domain.DefaultHeavyRuleSet(), nil
	}

	if s.cache != nil {
		if rs, ok := s.cache.Get(ctx, orgID, *categoryID); ok {
			return rs, nil
		}
	}

	exists, err := s.categories.CategoryExists(ctx, orgID, *categoryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up license category")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "license category does not exist for this organization")
	}

	var rs *domain.RuleSet
	rule, err := s.store.FindByCategory(ctx, orgID, *categoryID)
	switch {
	case err == nil:
		rs = rule.RuleSet()
	case errors.Is(err, sentinel.ErrNotFound):
		rs = domain.DefaultHeavyRuleSet()
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve license rule")
	}

	if s.cache != nil {
		s.cache.Set(ctx, orgID, *categoryID, rs)
	}
	return rs, nil
}

// CreateRule validates and persists an org override for a license category.
func (s *Service) CreateRule(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID, limits Limits) (*LicenseRule, error) {
	exists, err := s.categories.CategoryExists(ctx, orgID, categoryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up license category")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "license category does not exist for this organization")
	}

	rule, err := NewLicenseRule(id.RuleID(uuid.New()), orgID, categoryID, limits, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, rule); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a rule already exists for this license category")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create license rule")
	}

	s.invalidate(ctx, orgID, categoryID)
	return rule, nil
}

// GetRule returns one rule, org-scoped.
func (s *Service) GetRule(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) (*LicenseRule, error) {
	rule, err := s.store.GetByID(ctx, orgID, ruleID)
	if err != nil {
		return nil, wrapRuleErr(err)
	}
	return rule, nil
}

// ListRules returns the org's rules, newest first.
func (s *Service) ListRules(ctx context.Context, orgID id.OrgID) ([]*LicenseRule, error) {
	rules, err := s.store.List(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list license rules")
	}
	return rules, nil
}

// UpdateRule applies new limits to an existing rule.
func (s *Service) UpdateRule(ctx context.Context, orgID id.OrgID, ruleID id.RuleID, limits Limits) (*LicenseRule, error) {
	rule, err := s.store.GetByID(ctx, orgID, ruleID)
	if err != nil {
		return nil, wrapRuleErr(err)
	}
	if err := rule.ApplyLimits(limits, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, rule); err != nil {
		return nil, wrapRuleErr(err)
	}

	s.invalidate(ctx, orgID, rule.LicenseCategoryID)
	return rule, nil
}

// DeleteRule removes a rule; evaluations for its category fall back to the
// regulatory defaults afterwards.
func (s *Service) DeleteRule(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) error {
	rule, err := s.store.GetByID(ctx, orgID, ruleID)
	if err != nil {
		return wrapRuleErr(err)
	}
	if err := s.store.Delete(ctx, orgID, ruleID); err != nil {
		return wrapRuleErr(err)
	}

	s.invalidate(ctx, orgID, rule.LicenseCategoryID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, orgID, categoryID)
	}
}

func wrapRuleErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "license rule not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "license rule store failure")
}
