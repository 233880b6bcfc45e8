// Package check pkg/check/value.go provides the core value and dataset
// model shared by every check plugin.
package check

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the tagged Value type.
type ValueKind int

const (
	// KindNumeric is a parsed numeric reading, possibly with a unit.
	KindNumeric ValueKind = iota
	// KindText is a non-numeric reading (status strings etc.).
	KindText
	// KindUnavailable marks a reading the source reported as unavailable.
	KindUnavailable
	// KindNotApplicable marks a reading that does not apply to the device.
	KindNotApplicable
)

// Value is the tagged representation of a single parsed reading. Using an
// explicit kind avoids stringly-typed comparisons downstream of the parser.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
	Unit string
}

// Numeric builds a numeric Value with an optional unit.
func Numeric(v float64, unit string) Value {
	return Value{Kind: KindNumeric, Num: v, Unit: unit}
}

// Text builds a textual Value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Unavailable builds the unavailable sentinel.
func Unavailable() Value {
	return Value{Kind: KindUnavailable}
}

// NotApplicable builds the not-applicable sentinel.
func NotApplicable() Value {
	return Value{Kind: KindNotApplicable}
}

// IsNumeric reports whether the value carries a usable number.
func (v Value) IsNumeric() bool {
	return v.Kind == KindNumeric
}

// String renders the value for summaries.
func (v Value) String() string {
	switch v.Kind {
	case KindNumeric:
		s := strconv.FormatFloat(v.Num, 'f', -1, 64)
		if v.Unit != "" {
			return s + v.Unit
		}

		return s
	case KindText:
		return v.Text
	case KindUnavailable:
		return "unavailable"
	case KindNotApplicable:
		return "n/a"
	default:
		return fmt.Sprintf("invalid value kind %d", v.Kind)
	}
}

// ParseValue converts a raw source string into a tagged Value. Sentinel
// strings used by the supported sources map onto the Unavailable and
// NotApplicable kinds instead of failing the parse.
func ParseValue(raw, unit string) Value {
	switch strings.TrimSpace(raw) {
	case "Unavailable", "unavailable":
		return Unavailable()
	case "Not Applicable", "n/a", "N/A", "":
		return NotApplicable()
	}

	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return Numeric(n, unit)
	}

	return Text(strings.TrimSpace(raw))
}
