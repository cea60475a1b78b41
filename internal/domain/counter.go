package domain

// CounterSnapshot is an immutable view of one driver-day counter state.
// Audit entries persist the pre-evaluation snapshot; projections add a
// trip's adjusted durations to it without touching storage.
type CounterSnapshot struct {
	DrivingMinutes   int `json:"driving_minutes"`
	AmplitudeMinutes int `json:"amplitude_minutes"`
	BreakMinutes     int `json:"break_minutes"`
	RestMinutes      int `json:"rest_minutes"`
}

// Add returns the snapshot advanced by a trip's adjusted durations.
// Pure and additive; committing the result into storage is a separate,
// explicitly gated operation.
func (s CounterSnapshot) Add(adj AdjustedDurations) CounterSnapshot {
	return CounterSnapshot{
		DrivingMinutes:   s.DrivingMinutes + adj.TotalDrivingMinutes,
		AmplitudeMinutes: s.AmplitudeMinutes + adj.AdjustedAmplitudeMinutes,
		BreakMinutes:     s.BreakMinutes + adj.InjectedBreakMinutes,
		RestMinutes:      s.RestMinutes,
	}
}

// Delta returns the per-field difference snapshot - other. Counter commits
// are expressed as deltas so concurrent writers stay additive.
func (s CounterSnapshot) Delta(other CounterSnapshot) CounterSnapshot {
	return CounterSnapshot{
		DrivingMinutes:   s.DrivingMinutes - other.DrivingMinutes,
		AmplitudeMinutes: s.AmplitudeMinutes - other.AmplitudeMinutes,
		BreakMinutes:     s.BreakMinutes - other.BreakMinutes,
		RestMinutes:      s.RestMinutes - other.RestMinutes,
	}
}
