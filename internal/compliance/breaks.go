package compliance

import "fleetdesk/internal/domain"

// InjectBreaks computes the mandatory break time a planned trip must absorb
// under the resolved rules. Pure function of its inputs.
//
// One break of BreakMinutesPerDrivingBlock is owed per completed driving
// block: blockCount = floor(drivingMinutes / blockMinutes). 270 minutes of
// driving under the 4.5h/45min default owes exactly one 45 minute break;
// 269 minutes owes none. Breaks extend the amplitude span but never count
// as driving.
//
// nil rules (LIGHT regime) pass the trip through untouched.
func InjectBreaks(trip domain.TripAnalysis, rules *domain.RuleSet) domain.AdjustedDurations {
	driving := trip.TotalDrivingMinutes()
	if rules == nil {
		return domain.AdjustedDurations{
			TotalDrivingMinutes:      driving,
			AdjustedAmplitudeMinutes: driving,
		}
	}

	blockMinutes := rules.DrivingBlockMinutes()
	injected := 0
	if blockMinutes > 0 {
		injected = (driving / blockMinutes) * rules.BreakMinutesPerDrivingBlock
	}
	return domain.AdjustedDurations{
		TotalDrivingMinutes:      driving,
		InjectedBreakMinutes:     injected,
		AdjustedAmplitudeMinutes: driving + injected,
	}
}
