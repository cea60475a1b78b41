package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleetdesk/internal/domain"
)

func tripOf(minutes int) domain.TripAnalysis {
	return domain.TripAnalysis{Service: domain.Segment{DurationMinutes: minutes}}
}

func TestInjectBreaks(t *testing.T) {
	rules := domain.DefaultHeavyRuleSet()

	tests := []struct {
		name          string
		drivingMin    int
		wantBreak     int
		wantAmplitude int
	}{
		{"zero trip", 0, 0, 0},
		{"under one block", 269, 0, 269},
		{"exactly one block", 270, 45, 315},
		{"just past one block", 271, 45, 316},
		{"two full blocks", 540, 90, 630},
		{"almost two blocks", 539, 45, 584},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := InjectBreaks(tripOf(tt.drivingMin), rules)
			assert.Equal(t, tt.drivingMin, adj.TotalDrivingMinutes)
			assert.Equal(t, tt.wantBreak, adj.InjectedBreakMinutes)
			assert.Equal(t, tt.wantAmplitude, adj.AdjustedAmplitudeMinutes)
		})
	}
}

func TestInjectBreaks_NilRulesPassThrough(t *testing.T) {
	adj := InjectBreaks(tripOf(600), nil)
	assert.Equal(t, 600, adj.TotalDrivingMinutes)
	assert.Equal(t, 0, adj.InjectedBreakMinutes)
	assert.Equal(t, 600, adj.AdjustedAmplitudeMinutes)
}

func TestInjectBreaks_SplitAcrossLegs(t *testing.T) {
	// 120 + 90 + 60 = 270 driving minutes; legs form one continuous duty.
	trip := domain.TripAnalysis{
		Approach: domain.Segment{DurationMinutes: 120},
		Service:  domain.Segment{DurationMinutes: 90},
		Return:   domain.Segment{DurationMinutes: 60},
	}
	adj := InjectBreaks(trip, domain.DefaultHeavyRuleSet())
	assert.Equal(t, 270, adj.TotalDrivingMinutes)
	assert.Equal(t, 45, adj.InjectedBreakMinutes)
}

func TestInjectBreaks_MonotonicInDrivingTime(t *testing.T) {
	rules := domain.DefaultHeavyRuleSet()
	prev := InjectBreaks(tripOf(0), rules)
	for minutes := 1; minutes <= 900; minutes++ {
		cur := InjectBreaks(tripOf(minutes), rules)
		assert.GreaterOrEqual(t, cur.InjectedBreakMinutes, prev.InjectedBreakMinutes, "minutes=%d", minutes)
		assert.Greater(t, cur.AdjustedAmplitudeMinutes, prev.AdjustedAmplitudeMinutes, "minutes=%d", minutes)
		prev = cur
	}
}
