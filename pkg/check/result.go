// Package check pkg/check/result.go defines the status protocol shared
// with the reporting sink.
package check

import (
	"strconv"
	"strings"
)

// State is the graded outcome of one check evaluation. The numeric values
// are the wire contract with the reporting sink and the process exit codes
// of the standalone checker binaries.
type State int

const (
	StateOK      State = 0
	StateWarn    State = 1
	StateCrit    State = 2
	StateUnknown State = 3
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarn:
		return "WARN"
	case StateCrit:
		return "CRIT"
	case StateUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// Severity ranks states for worst-of aggregation: CRIT outranks UNKNOWN,
// which outranks WARN.
func (s State) Severity() int {
	switch s {
	case StateOK:
		return 0
	case StateWarn:
		return 1
	case StateUnknown:
		return 2
	case StateCrit:
		return 3
	default:
		return 2
	}
}

// Worse returns whichever of the two states is more severe.
func (s State) Worse(other State) State {
	if other.Severity() > s.Severity() {
		return other
	}

	return s
}

// Marker returns the parenthetical severity marker appended to annotated
// values: single for WARN, double for CRIT.
func (s State) Marker() string {
	switch s {
	case StateWarn:
		return "(!)"
	case StateCrit:
		return "(!!)"
	case StateUnknown:
		return "(?)"
	default:
		return ""
	}
}

// ExitCode maps the state onto the checker process exit code.
func (s State) ExitCode() int {
	return int(s)
}

// PerfData is one numeric measurement emitted alongside a status for
// historical graphing.
type PerfData struct {
	Label string   `json:"label"`
	Value float64  `json:"value"`
	Unit  string   `json:"unit,omitempty"`
	Warn  *float64 `json:"warn,omitempty"`
	Crit  *float64 `json:"crit,omitempty"`
}

// String renders the measurement as label=value[unit];warn;crit.
func (p PerfData) String() string {
	var b strings.Builder

	b.WriteString(p.Label)
	b.WriteByte('=')
	b.WriteString(strconv.FormatFloat(p.Value, 'f', -1, 64))
	b.WriteString(p.Unit)

	if p.Warn != nil || p.Crit != nil {
		b.WriteByte(';')
		b.WriteString(fmtBound(p.Warn))
		b.WriteByte(';')
		b.WriteString(fmtBound(p.Crit))
	}

	return b.String()
}

// Result is the standardized output of one check evaluation. It is
// produced once, serialized immediately, and not retained.
type Result struct {
	State   State      `json:"state"`
	Summary string     `json:"summary"`
	Perf    []PerfData `json:"perf,omitempty"`
}

// NewResult assembles a result from one or more summary clauses. Clauses
// are comma-joined into a single summary line.
func NewResult(state State, clauses ...string) Result {
	return Result{State: state, Summary: strings.Join(clauses, ", ")}
}

// WithPerf attaches performance data to the result.
func (r Result) WithPerf(perf ...PerfData) Result {
	r.Perf = append(r.Perf, perf...)

	return r
}

// Line renders the canonical single-line form: "STATE - summary | perf".
func (r Result) Line() string {
	var b strings.Builder

	b.WriteString(r.State.String())
	b.WriteString(" - ")
	b.WriteString(r.Summary)

	if len(r.Perf) > 0 {
		b.WriteString(" |")

		for _, p := range r.Perf {
			b.WriteByte(' ')
			b.WriteString(p.String())
		}
	}

	return b.String()
}
