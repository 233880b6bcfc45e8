// Package humidity implements the multi-channel humidity sensor check fed
// by remote agent output.
package humidity

import (
	"context"
	"strings"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/checker"
)

const (
	// CheckType is the registry key for this plugin.
	CheckType = "humidity"

	// metricSuffix is stripped from raw sensor labels to form the stable
	// item key: "Supply Humidity" discovers as "Supply".
	metricSuffix = " Humidity"

	// deviceStateKey carries the unit's operating state alongside the
	// sensor readings.
	deviceStateKey = "Device State"

	levelsParam = "levels"
)

// Plugin discovers one item per humidity channel and grades readings in
// both directions: too dry and too damp both matter.
type Plugin struct {
	Defaults check.Levels
}

func defaultLevels() check.Levels {
	warnUpper, critUpper := 60.0, 65.0
	warnLower, critLower := 35.0, 30.0

	return check.Levels{
		WarnUpper: &warnUpper,
		CritUpper: &critUpper,
		WarnLower: &warnLower,
		CritLower: &critLower,
	}
}

// New returns the plugin with default levels.
func New() *Plugin {
	return &Plugin{Defaults: defaultLevels()}
}

// Registration bundles the plugin for the check registry.
func Registration() checker.Plugin {
	p := New()

	return checker.Plugin{Parse: p, Discover: p, Check: p}
}

// Parse normalizes agent records into the dataset, sensors and device
// state alike.
func (p *Plugin) Parse(records []check.RecordSet) (check.Dataset, error) {
	ds := make(check.Dataset)

	for _, set := range records {
		if set.Source != check.SourceAgent {
			continue
		}

		for _, r := range set.Records {
			ds[r.Key] = check.ParseValue(r.Value, r.Unit)
		}
	}

	return ds, nil
}

// Discover emits one item per humidity channel carrying a usable reading.
// Channels reporting unavailable or not-applicable values are left out;
// re-running discovery on the same dataset yields the same items.
func (p *Plugin) Discover(ds check.Dataset) []check.ServiceItem {
	var items []check.ServiceItem

	for key, v := range ds {
		if !strings.HasSuffix(key, metricSuffix) {
			continue
		}

		if !v.IsNumeric() {
			continue
		}

		items = append(items, check.ServiceItem{
			Key:    strings.TrimSuffix(key, metricSuffix),
			Params: check.Params{levelsParam: p.Defaults},
		})
	}

	return items
}

// Check grades one channel. A unit in standby reports its sensors as
// unavailable; that is an operating mode, not a fault.
func (p *Plugin) Check(_ context.Context, item check.ServiceItem, ds check.Dataset) (check.Result, error) {
	v := ds.Get(item.Key + metricSuffix)

	if !v.IsNumeric() {
		if strings.EqualFold(ds.Get(deviceStateKey).Text, "standby") {
			return check.NewResult(check.StateOK, "Unit is in standby"), nil
		}

		return check.NewResult(check.StateOK, "sensor reading unavailable"), nil
	}

	levels := item.LevelsParam(levelsParam, p.Defaults)
	state, annotated := levels.Evaluate(v)

	return check.NewResult(state, annotated).WithPerf(check.PerfData{
		Label: "humidity",
		Value: v.Num,
		Unit:  "%",
		Warn:  levels.WarnUpper,
		Crit:  levels.CritUpper,
	}), nil
}
