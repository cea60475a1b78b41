package domain

// Segment is one leg of a planned trip as priced by the shadow calculation.
// The compliance engine only consumes durations and distances; it never
// computes them.
type Segment struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
}

// TripAnalysis carries the three legs of a quoted trip: deadhead to pickup,
// the service itself, and the return leg. Approach+service+return are treated
// as one continuous duty unless split by a prior rest.
type TripAnalysis struct {
	Approach Segment `json:"approach"`
	Service  Segment `json:"service"`
	Return   Segment `json:"return"`
}

// TotalDrivingMinutes sums driving time across all three legs.
func (t TripAnalysis) TotalDrivingMinutes() int {
	return t.Approach.DurationMinutes + t.Service.DurationMinutes + t.Return.DurationMinutes
}

// TotalDistanceKm sums distance across all three legs.
func (t TripAnalysis) TotalDistanceKm() float64 {
	return t.Approach.DistanceKm + t.Service.DistanceKm + t.Return.DistanceKm
}

// AverageSpeedKmh derives the trip's implied average speed. Returns 0 for a
// zero-duration trip so callers can skip the speed check instead of dividing
// by zero.
func (t TripAnalysis) AverageSpeedKmh() float64 {
	minutes := t.TotalDrivingMinutes()
	if minutes <= 0 {
		return 0
	}
	return t.TotalDistanceKm() / (float64(minutes) / 60)
}

// AdjustedDurations is the break injector's output: trip durations after
// mandatory breaks have been inserted. Break time never counts as driving
// but does extend the amplitude span.
type AdjustedDurations struct {
	TotalDrivingMinutes      int `json:"total_driving_minutes"`
	InjectedBreakMinutes     int `json:"injected_break_minutes"`
	AdjustedAmplitudeMinutes int `json:"adjusted_amplitude_minutes"`
}
