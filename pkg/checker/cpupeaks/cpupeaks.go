// Package cpupeaks implements peak detection over historical CPU
// utilization windows.
//
// Unlike the regular upper-bound checks, this check alerts when the peak
// stays BELOW the configured levels: a host whose utilization never rose
// above a few percent over the whole window is idle capacity worth
// flagging. The inverted comparison lives in check.EvaluateFloor and is
// selected here explicitly.
package cpupeaks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/checker"
	"github.com/mfreeman451/checkmate/pkg/prediction"
)

const (
	// CheckType identifies this check in results and storage.
	CheckType = "cpu_peaks"

	// Category is the series category scanned for peaks.
	Category = "CPU utilization"

	// ItemKey names the single item the engine plugin discovers per host.
	ItemKey = "CPU peaks"

	// DefaultWindow is how far back the scan reaches when no explicit
	// window is configured.
	DefaultWindow = 30 * 24 * time.Hour

	// primaryMetric is the single combined utilization series. Hosts
	// without it fall back to the per-mode series summed together.
	primaryMetric = "util"

	timeFormat = "2006-01-02 15:04:05"

	defaultWarn = 10
	defaultCrit = 5
)

// fallbackMetrics are combined by element-wise summation when the primary
// series does not exist for this host type.
var fallbackMetrics = []string{"user", "system", "wait"}

// Config holds the evaluation window and the floor levels.
type Config struct {
	Warn  float64
	Crit  float64
	From  time.Time
	Until time.Time
}

// Checker scans one host's utilization history for its peak.
type Checker struct {
	predictor *prediction.Predictor
}

// New builds a Checker on top of the given series store.
func New(store prediction.SeriesStore, opts ...prediction.Option) *Checker {
	return &Checker{predictor: prediction.New(store, opts...)}
}

// Run evaluates the peak for one host. Absent history is not a monitoring
// failure: it reports OK with an explanatory message.
func (c *Checker) Run(ctx context.Context, host string, cfg Config) check.Result {
	peak, err := c.predictor.PredictPeak(ctx, prediction.Query{
		Host:        host,
		Category:    Category,
		Metric:      primaryMetric,
		Fallback:    fallbackMetrics,
		Aggregation: "MAX",
		From:        cfg.From,
		Until:       cfg.Until,
	})

	if errors.Is(err, prediction.ErrNoData) {
		return check.NewResult(check.StateOK, "no CPU utilization data found in the selected time range")
	}

	if err != nil {
		return check.NewResult(check.StateOK, fmt.Sprintf("CPU utilization history unavailable: %v", err))
	}

	state, note := check.EvaluateFloor(peak.Value, cfg.Warn, cfg.Crit)

	clauses := []string{
		fmt.Sprintf("CPU utilization peak of %.2f%% at %s", peak.Value, peak.At.Format(timeFormat)),
	}
	if note != "" {
		clauses = append(clauses, "peak was "+note)
	}

	return check.NewResult(state, clauses...).WithPerf(check.PerfData{
		Label: "peak",
		Value: peak.Value,
		Unit:  "%",
		Warn:  &cfg.Warn,
		Crit:  &cfg.Crit,
	})
}

// Plugin adapts the peak scan to the check registry so the engine can
// run it cyclically. The scan reads stored history, not the cycle's
// collected records, so parse and discovery are trivial.
type Plugin struct {
	checker *Checker
	warn    float64
	crit    float64
	window  time.Duration
}

// Registration bundles the plugin for the check registry with default
// floor levels over the default window.
func Registration(store prediction.SeriesStore, opts ...prediction.Option) checker.Plugin {
	p := &Plugin{
		checker: New(store, opts...),
		warn:    defaultWarn,
		crit:    defaultCrit,
		window:  DefaultWindow,
	}

	return checker.Plugin{Parse: p, Discover: p, Check: p}
}

// Parse ignores the cycle's records; the check consults stored history.
func (p *Plugin) Parse([]check.RecordSet) (check.Dataset, error) {
	return check.Dataset{}, nil
}

// Discover emits the single peak item for every host this check runs on.
func (p *Plugin) Discover(check.Dataset) []check.ServiceItem {
	return []check.ServiceItem{{Key: ItemKey}}
}

// Check scans the window ending now for the item's host.
func (p *Plugin) Check(ctx context.Context, item check.ServiceItem, _ check.Dataset) (check.Result, error) {
	until := time.Now()

	return p.checker.Run(ctx, item.Host, Config{
		Warn:  p.warn,
		Crit:  p.crit,
		From:  until.Add(-p.window),
		Until: until,
	}), nil
}
