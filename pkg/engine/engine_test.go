package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/checker"
)

type stubParser struct {
	ds  check.Dataset
	err error
}

func (p stubParser) Parse([]check.RecordSet) (check.Dataset, error) {
	return p.ds, p.err
}

type stubDiscoverer struct {
	items []check.ServiceItem
}

func (d stubDiscoverer) Discover(check.Dataset) []check.ServiceItem {
	return d.items
}

type stubChecker struct {
	fn func(item check.ServiceItem) (check.Result, error)
}

func (c stubChecker) Check(_ context.Context, item check.ServiceItem, _ check.Dataset) (check.Result, error) {
	return c.fn(item)
}

func okChecker() stubChecker {
	return stubChecker{fn: func(item check.ServiceItem) (check.Result, error) {
		return check.NewResult(check.StateOK, item.Key+" fine"), nil
	}}
}

func registryWith(t *testing.T, checkType string, p checker.Plugin) checker.Registry {
	t.Helper()

	r := checker.NewRegistry()
	r.Register(checkType, p)

	return r
}

type recordingSink struct {
	mu      sync.Mutex
	results []ItemResult
}

func (s *recordingSink) Publish(res ItemResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, res)
}

func (s *recordingSink) all() []ItemResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ItemResult(nil), s.results...)
}

func TestEvaluateUnitHappyPath(t *testing.T) {
	items := []check.ServiceItem{{Key: "Supply"}, {Key: "Return"}}
	reg := registryWith(t, "humidity", checker.Plugin{
		Parse:    stubParser{ds: check.Dataset{}},
		Discover: stubDiscoverer{items: items},
		Check:    okChecker(),
	})

	e, err := New(reg)
	require.NoError(t, err)

	results := e.EvaluateUnit(context.Background(), Unit{Host: "dc-01", CheckType: "humidity"})
	require.Len(t, results, 2)
	assert.Equal(t, "dc-01", results[0].Host)
	assert.Equal(t, check.StateOK, results[0].Result.State)
	assert.Equal(t, "Supply", results[0].Item)
}

func TestEvaluateUnitStampsItemHost(t *testing.T) {
	// History-backed checks address their stored series by item host.
	var seen []string

	reg := registryWith(t, "cpu_peaks", checker.Plugin{
		Parse:    stubParser{ds: check.Dataset{}},
		Discover: stubDiscoverer{items: []check.ServiceItem{{Key: "CPU peaks"}}},
		Check: stubChecker{fn: func(item check.ServiceItem) (check.Result, error) {
			seen = append(seen, item.Host)

			return check.NewResult(check.StateOK, "fine"), nil
		}},
	})

	e, err := New(reg)
	require.NoError(t, err)

	e.EvaluateUnit(context.Background(), Unit{Host: "web-01", CheckType: "cpu_peaks"})
	e.EvaluateUnit(context.Background(), Unit{Host: "web-02", CheckType: "cpu_peaks"})

	assert.Equal(t, []string{"web-01", "web-02"}, seen)
}

func TestEvaluateUnitUnknownCheckType(t *testing.T) {
	e, err := New(checker.NewRegistry())
	require.NoError(t, err)

	results := e.EvaluateUnit(context.Background(), Unit{Host: "dc-01", CheckType: "nope"})
	require.Len(t, results, 1)
	assert.Equal(t, check.StateUnknown, results[0].Result.State)
}

func TestEvaluateUnitParseFailure(t *testing.T) {
	reg := registryWith(t, "humidity", checker.Plugin{
		Parse:    stubParser{err: check.ErrMissingField},
		Discover: stubDiscoverer{},
		Check:    okChecker(),
	})

	e, err := New(reg)
	require.NoError(t, err)

	results := e.EvaluateUnit(context.Background(), Unit{Host: "dc-01", CheckType: "humidity"})
	require.Len(t, results, 1)
	assert.Equal(t, check.StateUnknown, results[0].Result.State)
	assert.Contains(t, results[0].Result.Summary, "parse failure")
}

func TestEvaluateUnitPanicIsolation(t *testing.T) {
	// One item's internal error must never abort its siblings.
	items := []check.ServiceItem{{Key: "bad"}, {Key: "good"}}
	reg := registryWith(t, "humidity", checker.Plugin{
		Parse:    stubParser{ds: check.Dataset{}},
		Discover: stubDiscoverer{items: items},
		Check: stubChecker{fn: func(item check.ServiceItem) (check.Result, error) {
			if item.Key == "bad" {
				panic("boom")
			}

			return check.NewResult(check.StateOK, "fine"), nil
		}},
	})

	e, err := New(reg)
	require.NoError(t, err)

	results := e.EvaluateUnit(context.Background(), Unit{Host: "dc-01", CheckType: "humidity"})
	require.Len(t, results, 2)
	assert.Equal(t, check.StateUnknown, results[0].Result.State)
	assert.Contains(t, results[0].Result.Summary, "internal error")
	assert.Equal(t, check.StateOK, results[1].Result.State)
}

func TestEvaluateUnitDebugRepanics(t *testing.T) {
	reg := registryWith(t, "humidity", checker.Plugin{
		Parse:    stubParser{ds: check.Dataset{}},
		Discover: stubDiscoverer{items: []check.ServiceItem{{Key: "bad"}}},
		Check: stubChecker{fn: func(check.ServiceItem) (check.Result, error) {
			panic("boom")
		}},
	})

	e, err := New(reg, WithDebug(true))
	require.NoError(t, err)

	assert.Panics(t, func() {
		e.EvaluateUnit(context.Background(), Unit{Host: "dc-01", CheckType: "humidity"})
	})
}

func TestEvaluateUnitCheckErrorBecomesUnknown(t *testing.T) {
	reg := registryWith(t, "humidity", checker.Plugin{
		Parse:    stubParser{ds: check.Dataset{}},
		Discover: stubDiscoverer{items: []check.ServiceItem{{Key: "Supply"}}},
		Check: stubChecker{fn: func(check.ServiceItem) (check.Result, error) {
			return check.Result{}, check.ErrNotNumeric
		}},
	})

	e, err := New(reg)
	require.NoError(t, err)

	results := e.EvaluateUnit(context.Background(), Unit{Host: "dc-01", CheckType: "humidity"})
	require.Len(t, results, 1)
	assert.Equal(t, check.StateUnknown, results[0].Result.State)
}

func TestRunCyclePublishesToSinks(t *testing.T) {
	reg := registryWith(t, "humidity", checker.Plugin{
		Parse:    stubParser{ds: check.Dataset{}},
		Discover: stubDiscoverer{items: []check.ServiceItem{{Key: "Supply"}}},
		Check:    okChecker(),
	})

	sink := &recordingSink{}

	e, err := New(reg, WithSink(sink))
	require.NoError(t, err)

	units := []Unit{
		{Host: "dc-01", CheckType: "humidity"},
		{Host: "dc-02", CheckType: "humidity"},
		{Host: "dc-03", CheckType: "humidity"},
	}

	e.RunCycle(context.Background(), units)

	results := sink.all()
	require.Len(t, results, 3)

	hosts := map[string]bool{}
	for _, res := range results {
		hosts[res.Host] = true
	}

	assert.Len(t, hosts, 3)
}

func TestNewRejectsIncompleteRegistry(t *testing.T) {
	reg := checker.NewRegistry()
	reg.Register("broken", checker.Plugin{})

	_, err := New(reg)
	assert.Error(t, err)
}
