package compliance

import (
	"fmt"
	"strings"

	"fleetdesk/internal/domain"
)

// warningThresholdPercent is the share of a limit at which advisory warnings
// start firing. At or above the limit itself the violation takes over.
const warningThresholdPercent = 90.0

// verdict is the classifier's output before audit and transport shaping.
type verdict struct {
	Decision   domain.Decision
	Violations []domain.Violation
	Warnings   []domain.Warning
	Reason     string
}

// classify compares the projected day counter against the resolved rules.
// projected already includes the candidate trip; rules is never nil here,
// the LIGHT short-circuit happens before classification.
func classify(projected domain.CounterSnapshot, trip domain.TripAnalysis, rules *domain.RuleSet) verdict {
	violations := make([]domain.Violation, 0, 2)
	warnings := make([]domain.Warning, 0, 2)

	drivingLimit := rules.MaxDailyDrivingMinutes()
	if projected.DrivingMinutes > drivingLimit {
		violations = append(violations, domain.Violation{
			Type:   domain.ViolationDrivingTimeExceeded,
			Actual: minutesToHours(projected.DrivingMinutes),
			Limit:  rules.MaxDailyDrivingHours,
			Unit:   "hours",
		})
	} else if w, ok := approachWarning("daily_driving", projected.DrivingMinutes, drivingLimit); ok {
		warnings = append(warnings, w)
	}

	amplitudeLimit := rules.MaxDailyAmplitudeMinutes()
	if projected.AmplitudeMinutes > amplitudeLimit {
		violations = append(violations, domain.Violation{
			Type:   domain.ViolationAmplitudeExceeded,
			Actual: minutesToHours(projected.AmplitudeMinutes),
			Limit:  rules.MaxDailyAmplitudeHours,
			Unit:   "hours",
		})
	} else if w, ok := approachWarning("daily_amplitude", projected.AmplitudeMinutes, amplitudeLimit); ok {
		warnings = append(warnings, w)
	}

	// Consistency check: the plan must carry at least the break time the
	// projected driving total mandates. Injection should guarantee this;
	// a shortfall means corrupted counter state or a bypassed injector.
	blockMinutes := rules.DrivingBlockMinutes()
	if blockMinutes > 0 {
		required := (projected.DrivingMinutes / blockMinutes) * rules.BreakMinutesPerDrivingBlock
		if projected.BreakMinutes < required {
			violations = append(violations, domain.Violation{
				Type:   domain.ViolationBreakRequired,
				Actual: float64(projected.BreakMinutes),
				Limit:  float64(required),
				Unit:   "minutes",
			})
		} else if remainder := projected.DrivingMinutes % blockMinutes; remainder > 0 {
			pct := float64(remainder) / float64(blockMinutes) * 100
			if pct >= warningThresholdPercent {
				warnings = append(warnings, domain.Warning{
					Type:           domain.WarningBreakRecommended,
					Metric:         "continuous_driving_block",
					Actual:         float64(remainder),
					Limit:          float64(blockMinutes),
					PercentOfLimit: pct,
				})
			}
		}
	}

	if rules.CappedAverageSpeedKmh != nil {
		speed := trip.AverageSpeedKmh()
		if speed > *rules.CappedAverageSpeedKmh {
			violations = append(violations, domain.Violation{
				Type:   domain.ViolationSpeedLimitExceeded,
				Actual: speed,
				Limit:  *rules.CappedAverageSpeedKmh,
				Unit:   "km/h",
			})
		}
	}

	switch {
	case len(violations) > 0:
		return verdict{
			Decision:   domain.DecisionBlocked,
			Violations: violations,
			Warnings:   warnings,
			Reason:     blockedReason(violations),
		}
	case len(warnings) > 0:
		return verdict{
			Decision:   domain.DecisionWarning,
			Violations: violations,
			Warnings:   warnings,
			Reason:     warningReason(warnings),
		}
	default:
		return verdict{
			Decision:   domain.DecisionApproved,
			Violations: violations,
			Warnings:   warnings,
			Reason:     "within daily limits",
		}
	}
}

func approachWarning(metric string, actualMinutes, limitMinutes int) (domain.Warning, bool) {
	if limitMinutes <= 0 {
		return domain.Warning{}, false
	}
	pct := float64(actualMinutes) / float64(limitMinutes) * 100
	if pct < warningThresholdPercent {
		return domain.Warning{}, false
	}
	return domain.Warning{
		Type:           domain.WarningApproachingLimit,
		Metric:         metric,
		Actual:         minutesToHours(actualMinutes),
		Limit:          minutesToHours(limitMinutes),
		PercentOfLimit: pct,
	}, true
}

func blockedReason(violations []domain.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.Message())
	}
	return strings.Join(parts, "; ")
}

func warningReason(warnings []domain.Warning) string {
	parts := make([]string, 0, len(warnings))
	for _, w := range warnings {
		parts = append(parts, fmt.Sprintf("%s at %.0f%% of limit", w.Metric, w.PercentOfLimit))
	}
	return strings.Join(parts, "; ")
}

func minutesToHours(minutes int) float64 {
	return float64(minutes) / 60
}
