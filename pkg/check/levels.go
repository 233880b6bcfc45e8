// Package check pkg/check/levels.go implements the threshold engine.
package check

import (
	"fmt"
	"strconv"
)

// Levels holds the configured warn/crit bounds for one metric. Any subset
// may be nil, meaning no ceiling or floor on that side. Upper bounds
// escalate when the value is at or above them, lower bounds when the value
// is at or below them.
type Levels struct {
	WarnUpper *float64 `json:"warn_upper,omitempty"`
	CritUpper *float64 `json:"crit_upper,omitempty"`
	WarnLower *float64 `json:"warn_lower,omitempty"`
	CritLower *float64 `json:"crit_lower,omitempty"`
}

// Upper builds levels with only upper bounds.
func Upper(warn, crit float64) Levels {
	return Levels{WarnUpper: &warn, CritUpper: &crit}
}

// Lower builds levels with only lower bounds.
func Lower(warn, crit float64) Levels {
	return Levels{WarnLower: &warn, CritLower: &crit}
}

// Validate checks that crit is the more severe bound on each configured
// side.
func (l Levels) Validate() error {
	if l.WarnUpper != nil && l.CritUpper != nil && *l.CritUpper < *l.WarnUpper {
		return fmt.Errorf("%w: crit_upper %v below warn_upper %v",
			ErrInvalidLevels, *l.CritUpper, *l.WarnUpper)
	}

	if l.WarnLower != nil && l.CritLower != nil && *l.CritLower > *l.WarnLower {
		return fmt.Errorf("%w: crit_lower %v above warn_lower %v",
			ErrInvalidLevels, *l.CritLower, *l.WarnLower)
	}

	return nil
}

// Evaluate grades a value against the configured bounds and returns the
// state plus an annotated rendering of the value. Missing or non-numeric
// readings never escalate; they come back OK with an informational note.
func (l Levels) Evaluate(v Value) (State, string) {
	if !v.IsNumeric() {
		return StateOK, fmt.Sprintf("%s (no current reading)", v)
	}

	upper, upperNote := l.evaluateUpper(v.Num)
	lower, lowerNote := l.evaluateLower(v.Num)

	state := upper.Worse(lower)
	if state == StateOK {
		return StateOK, v.String()
	}

	note := upperNote
	if lower.Severity() > upper.Severity() {
		note = lowerNote
	}

	return state, fmt.Sprintf("%s %s %s", v, state.Marker(), note)
}

func (l Levels) evaluateUpper(n float64) (State, string) {
	note := fmt.Sprintf("(warn/crit at %s/%s)", fmtBound(l.WarnUpper), fmtBound(l.CritUpper))

	if l.CritUpper != nil && n >= *l.CritUpper {
		return StateCrit, note
	}

	if l.WarnUpper != nil && n >= *l.WarnUpper {
		return StateWarn, note
	}

	return StateOK, ""
}

func (l Levels) evaluateLower(n float64) (State, string) {
	note := fmt.Sprintf("(warn/crit below %s/%s)", fmtBound(l.WarnLower), fmtBound(l.CritLower))

	if l.CritLower != nil && n <= *l.CritLower {
		return StateCrit, note
	}

	if l.WarnLower != nil && n <= *l.WarnLower {
		return StateWarn, note
	}

	return StateOK, ""
}

// EvaluateFloor implements the inverted threshold mode used by the peak
// detection checks: the metric must exceed the bound, and the state
// escalates when it stays at or below it. This is deliberately a distinct
// entry point so callers cannot flip alert polarity by accident; regular
// checks use Levels.Evaluate.
func EvaluateFloor(v, warn, crit float64) (State, string) {
	switch {
	case v <= crit:
		return StateCrit, fmt.Sprintf("less than %s", fmtFloat(crit))
	case v <= warn:
		return StateWarn, fmt.Sprintf("less than %s", fmtFloat(warn))
	default:
		return StateOK, ""
	}
}

func fmtBound(b *float64) string {
	if b == nil {
		return ""
	}

	return fmtFloat(*b)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
