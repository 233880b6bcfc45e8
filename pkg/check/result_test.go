package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCodes(t *testing.T) {
	// The numeric values are the wire contract with the reporting sink.
	assert.Equal(t, 0, int(NewResult(StateOK, "fine").State))
	assert.Equal(t, 1, int(NewResult(StateWarn, "hm").State))
	assert.Equal(t, 2, int(NewResult(StateCrit, "bad").State))
	assert.Equal(t, 3, int(NewResult(StateUnknown, "eh").State))

	assert.Equal(t, 0, StateOK.ExitCode())
	assert.Equal(t, 2, StateCrit.ExitCode())
}

func TestStateWorse(t *testing.T) {
	assert.Equal(t, StateWarn, StateOK.Worse(StateWarn))
	assert.Equal(t, StateCrit, StateWarn.Worse(StateCrit))
	assert.Equal(t, StateCrit, StateCrit.Worse(StateUnknown))
	assert.Equal(t, StateUnknown, StateUnknown.Worse(StateWarn))
	assert.Equal(t, StateOK, StateOK.Worse(StateOK))
}

func TestResultLine(t *testing.T) {
	warn, crit := 40.0, 50.0

	res := NewResult(StateWarn, "balance: 42 (!)", "usage: 12").WithPerf(PerfData{
		Label: "credit_balance",
		Value: 42,
		Warn:  &warn,
		Crit:  &crit,
	})

	assert.Equal(t, "WARN - balance: 42 (!), usage: 12 | credit_balance=42;40;50", res.Line())
}

func TestResultLineWithoutPerf(t *testing.T) {
	res := NewResult(StateOK, "Unit is in standby")
	assert.Equal(t, "OK - Unit is in standby", res.Line())
}

func TestPerfDataString(t *testing.T) {
	assert.Equal(t, "humidity=21%", PerfData{Label: "humidity", Value: 21, Unit: "%"}.String())

	crit := 65.0
	assert.Equal(t, "humidity=21%;;65", PerfData{Label: "humidity", Value: 21, Unit: "%", Crit: &crit}.String())
}
