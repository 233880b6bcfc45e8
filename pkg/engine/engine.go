// Package engine pkg/engine/engine.go drives check evaluation: one unit
// of work is one host and check type for one cycle, and units run in
// parallel with no shared mutable state between them.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/checker"
)

const defaultLaunchRate = 64 // unit launches per second

// Unit is one independent evaluation: the raw records collected for one
// host and check type this cycle.
type Unit struct {
	Host      string            `json:"host"`
	CheckType string            `json:"check_type"`
	Records   []check.RecordSet `json:"records"`
}

// ItemResult pairs one discovered item's graded result with its origin.
type ItemResult struct {
	Host      string        `json:"host"`
	CheckType string        `json:"check_type"`
	Item      string        `json:"item"`
	Result    check.Result  `json:"result"`
	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
}

// Sink receives every item result as it is produced. Implementations must
// be safe for concurrent use; units run in parallel.
type Sink interface {
	Publish(res ItemResult)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(res ItemResult)

func (f SinkFunc) Publish(res ItemResult) {
	f(res)
}

// Engine evaluates units against the registered plugins.
type Engine struct {
	registry checker.Registry
	sinks    []Sink
	limiter  *rate.Limiter
	debug    bool
}

// Option modifies Engine configuration.
type Option func(*Engine)

// WithSink attaches a result sink.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		e.sinks = append(e.sinks, s)
	}
}

// WithLaunchRate bounds how many unit evaluations start per second.
func WithLaunchRate(perSecond float64, burst int) Option {
	return func(e *Engine) {
		e.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithDebug disables local panic recovery so internal errors surface
// verbatim. Never the default in production evaluation paths.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// New validates the registry for completeness and builds an engine.
func New(registry checker.Registry, opts ...Option) (*Engine, error) {
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("registry validation: %w", err)
	}

	e := &Engine{
		registry: registry,
		limiter:  rate.NewLimiter(defaultLaunchRate, defaultLaunchRate),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// RunCycle evaluates all units in parallel and publishes every item
// result to the configured sinks. One unit's failure never aborts its
// siblings.
func (e *Engine) RunCycle(ctx context.Context, units []Unit) {
	var wg sync.WaitGroup

	for _, unit := range units {
		if err := e.limiter.Wait(ctx); err != nil {
			log.Printf("Cycle aborted while rate limiting: %v", err)

			return
		}

		wg.Add(1)

		go func(u Unit) {
			defer wg.Done()
			e.RunUnit(ctx, u)
		}(unit)
	}

	wg.Wait()
}

// RunUnit evaluates one unit and publishes every item result to the
// configured sinks, returning them to the caller as well.
func (e *Engine) RunUnit(ctx context.Context, unit Unit) []ItemResult {
	results := e.EvaluateUnit(ctx, unit)

	for _, res := range results {
		e.publish(res)
	}

	return results
}

// EvaluateUnit runs parse, discovery, and per-item checks for one unit.
// Stages execute strictly sequentially; parse failures grade the whole
// unit UNKNOWN.
func (e *Engine) EvaluateUnit(ctx context.Context, unit Unit) []ItemResult {
	started := time.Now()

	plugin, err := e.registry.Get(unit.CheckType)
	if err != nil {
		return []ItemResult{e.itemResult(unit, "", started,
			check.NewResult(check.StateUnknown, err.Error()))}
	}

	ds, err := plugin.Parse.Parse(unit.Records)
	if err != nil {
		return []ItemResult{e.itemResult(unit, "", started,
			check.NewResult(check.StateUnknown, fmt.Sprintf("parse failure: %v", err)))}
	}

	items := plugin.Discover.Discover(ds)
	results := make([]ItemResult, 0, len(items))

	for _, item := range items {
		item.Host = unit.Host

		itemStarted := time.Now()
		res := e.checkItem(ctx, plugin, item, ds)
		results = append(results, e.itemResult(unit, item.Key, itemStarted, res))
	}

	return results
}

// checkItem grades one item, converting internal errors and panics into
// UNKNOWN so siblings keep running. With debug enabled, panics propagate
// for developer diagnosis.
func (e *Engine) checkItem(ctx context.Context, plugin checker.Plugin, item check.ServiceItem, ds check.Dataset) (res check.Result) {
	if !e.debug {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered from panic checking item %s: %v", item.Key, r)

				res = check.NewResult(check.StateUnknown, fmt.Sprintf("internal error: %v", r))
			}
		}()
	}

	res, err := plugin.Check.Check(ctx, item, ds)
	if err != nil {
		return check.NewResult(check.StateUnknown, err.Error())
	}

	return res
}

func (e *Engine) itemResult(unit Unit, item string, started time.Time, res check.Result) ItemResult {
	return ItemResult{
		Host:      unit.Host,
		CheckType: unit.CheckType,
		Item:      item,
		Result:    res,
		Elapsed:   time.Since(started),
		Timestamp: started,
	}
}

func (e *Engine) publish(res ItemResult) {
	for _, s := range e.sinks {
		s.Publish(res)
	}
}
