package domain

import "fmt"

// Decision is the terminal outcome of one compliance evaluation.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionWarning  Decision = "WARNING"
	DecisionBlocked  Decision = "BLOCKED"
)

// Blocks reports whether the decision prevents quote submission.
func (d Decision) Blocks() bool {
	return d == DecisionBlocked
}

// ViolationType is the closed set of blocking violation kinds. Consumers
// switch exhaustively over these; there is no open-ended payload bag.
type ViolationType string

const (
	ViolationDrivingTimeExceeded ViolationType = "DRIVING_TIME_EXCEEDED"
	ViolationAmplitudeExceeded   ViolationType = "AMPLITUDE_EXCEEDED"
	ViolationBreakRequired       ViolationType = "BREAK_REQUIRED"
	ViolationSpeedLimitExceeded  ViolationType = "SPEED_LIMIT_EXCEEDED"
)

// Violation is one blocking rule breach. Severity is always blocking; the
// advisory tier is Warning.
type Violation struct {
	Type   ViolationType `json:"type"`
	Actual float64       `json:"actual"`
	Limit  float64       `json:"limit"`
	Unit   string        `json:"unit"`
}

// Message renders the actual-vs-limit comparison for operators.
func (v Violation) Message() string {
	switch v.Type {
	case ViolationDrivingTimeExceeded:
		return fmt.Sprintf("daily driving time %.1f %s exceeds the %.1f %s limit", v.Actual, v.Unit, v.Limit, v.Unit)
	case ViolationAmplitudeExceeded:
		return fmt.Sprintf("daily amplitude %.1f %s exceeds the %.1f %s limit", v.Actual, v.Unit, v.Limit, v.Unit)
	case ViolationBreakRequired:
		return fmt.Sprintf("%.0f %s of mandatory break are missing from the plan", v.Limit-v.Actual, v.Unit)
	case ViolationSpeedLimitExceeded:
		return fmt.Sprintf("implied average speed %.1f %s exceeds the %.1f %s cap", v.Actual, v.Unit, v.Limit, v.Unit)
	default:
		return fmt.Sprintf("violation %s: %.1f over %.1f %s", v.Type, v.Actual, v.Limit, v.Unit)
	}
}

// WarningType is the closed set of non-blocking advisory kinds.
type WarningType string

const (
	WarningApproachingLimit WarningType = "APPROACHING_LIMIT"
	WarningBreakRecommended WarningType = "BREAK_RECOMMENDED"
)

// Warning is a non-blocking advisory emitted when a metric nears its limit.
type Warning struct {
	Type           WarningType `json:"type"`
	Metric         string      `json:"metric"`
	Actual         float64     `json:"actual"`
	Limit          float64     `json:"limit"`
	PercentOfLimit float64     `json:"percent_of_limit"`
}
