// Package cloudcredits implements the burstable-instance CPU credit
// check fed by cloud API metric payloads.
package cloudcredits

import (
	"context"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/checker"
)

const (
	// CheckType is the registry key for this plugin.
	CheckType = "cloud_credits"

	// MetricUsage and MetricBalance are both required for discovery; a
	// host missing either gets no credit item at all.
	MetricUsage   = "CPUCreditUsage"
	MetricBalance = "CPUCreditBalance"

	// ItemKey names the single discovered item.
	ItemKey = "CPU Credits"

	levelsParam = "balance_levels"

	defaultWarnLower = 100
	defaultCritLower = 50
)

// Plugin evaluates the remaining credit balance against lower levels: the
// balance draining toward zero is the alert condition.
type Plugin struct {
	Defaults check.Levels
}

// New returns the plugin with default balance levels.
func New() *Plugin {
	return &Plugin{
		Defaults: check.Lower(defaultWarnLower, defaultCritLower),
	}
}

// Registration bundles the plugin for the check registry.
func Registration() checker.Plugin {
	p := New()

	return checker.Plugin{Parse: p, Discover: p, Check: p}
}

// Parse normalizes API metric records. Records from other sources are
// ignored; optional metrics may be absent.
func (p *Plugin) Parse(records []check.RecordSet) (check.Dataset, error) {
	ds := make(check.Dataset)

	for _, set := range records {
		if set.Source != check.SourceAPI {
			continue
		}

		for _, r := range set.Records {
			ds[r.Key] = check.ParseValue(r.Value, r.Unit)
		}
	}

	return ds, nil
}

// Discover emits exactly one item when both credit counters are present,
// none otherwise.
func (p *Plugin) Discover(ds check.Dataset) []check.ServiceItem {
	if !ds.Has(MetricUsage) || !ds.Has(MetricBalance) {
		return nil
	}

	return []check.ServiceItem{{
		Key:    ItemKey,
		Params: check.Params{levelsParam: p.Defaults},
	}}
}

// Check grades the credit balance. A balance the API has not reported yet
// is informational, never an alert.
func (p *Plugin) Check(_ context.Context, item check.ServiceItem, ds check.Dataset) (check.Result, error) {
	balance := ds.Get(MetricBalance)
	usage := ds.Get(MetricUsage)

	if !balance.IsNumeric() {
		return check.NewResult(check.StateOK, "credit balance not yet reported"), nil
	}

	levels := item.LevelsParam(levelsParam, p.Defaults)
	state, annotated := levels.Evaluate(balance)

	res := check.NewResult(state,
		"balance: "+annotated,
		"usage: "+usage.String(),
	).WithPerf(check.PerfData{
		Label: "credit_balance",
		Value: balance.Num,
		Warn:  levels.WarnLower,
		Crit:  levels.CritLower,
	})

	if usage.IsNumeric() {
		res = res.WithPerf(check.PerfData{Label: "credit_usage", Value: usage.Num})
	}

	return res, nil
}
