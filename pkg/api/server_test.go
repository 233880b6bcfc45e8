package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/engine"
)

type stubEvaluator struct {
	lastUnit engine.Unit
	results  []engine.ItemResult
}

func (e *stubEvaluator) RunUnit(_ context.Context, unit engine.Unit) []engine.ItemResult {
	e.lastUnit = unit

	return e.results
}

func itemResult(host, checkType, item string, state check.State, summary string) engine.ItemResult {
	return engine.ItemResult{
		Host:      host,
		CheckType: checkType,
		Item:      item,
		Result:    check.NewResult(state, summary),
		Timestamp: time.Now(),
	}
}

func TestGetHostsEmpty(t *testing.T) {
	s := NewAPIServer(nil, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hosts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestPublishThenGetHosts(t *testing.T) {
	s := NewAPIServer(nil, nil)

	s.Publish(itemResult("dc-01", "humidity", "Supply", check.StateOK, "41.2 %"))
	s.Publish(itemResult("dc-01", "humidity", "Return", check.StateCrit, "71.0 % (!!)"))
	s.Publish(itemResult("web-01", "cloud_credits", "CPU Credits", check.StateWarn, "balance: 42 (!)"))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hosts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var hosts []HostStatus

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hosts))
	require.Len(t, hosts, 2)

	// Sorted by host name.
	assert.Equal(t, "dc-01", hosts[0].Host)
	assert.Equal(t, check.StateCrit, hosts[0].WorstState)
	require.Len(t, hosts[0].Services, 2)
	assert.Equal(t, "Return", hosts[0].Services[0].Name)
	assert.Equal(t, "Supply", hosts[0].Services[1].Name)

	assert.Equal(t, "web-01", hosts[1].Host)
	assert.Equal(t, check.StateWarn, hosts[1].WorstState)
}

func TestPublishReplacesServiceStatus(t *testing.T) {
	s := NewAPIServer(nil, nil)

	s.Publish(itemResult("dc-01", "humidity", "Supply", check.StateWarn, "61.0 % (!)"))
	s.Publish(itemResult("dc-01", "humidity", "Supply", check.StateOK, "55.0 %"))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hosts/dc-01", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var host HostStatus

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &host))
	require.Len(t, host.Services, 1)
	assert.Equal(t, check.StateOK, host.Services[0].State)
	assert.Equal(t, "55.0 %", host.Services[0].Summary)
	assert.Equal(t, check.StateOK, host.WorstState)
}

func TestGetHostNotFound(t *testing.T) {
	s := NewAPIServer(nil, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hosts/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServiceHistoryWithoutDatabase(t *testing.T) {
	s := NewAPIServer(nil, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hosts/dc-01/services/Supply/history", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestHostMetricsWithoutManager(t *testing.T) {
	s := NewAPIServer(nil, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hosts/dc-01/metrics", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestIngestChecksWithoutEngine(t *testing.T) {
	s := NewAPIServer(nil, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(
		http.MethodPost, "/api/hosts/dc-01/checks/humidity", strings.NewReader("[]")))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIngestChecks(t *testing.T) {
	s := NewAPIServer(nil, nil)

	evaluator := &stubEvaluator{
		results: []engine.ItemResult{
			itemResult("dc-01", "humidity", "Supply", check.StateOK, "41.2 %"),
		},
	}
	s.SetEvaluator(evaluator)

	records := []check.RecordSet{{
		Source: check.SourceAgent,
		Records: []check.RawRecord{
			{Key: "Supply Humidity", Value: "41.2", Unit: "%"},
		},
	}}

	body, err := json.Marshal(records)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(
		http.MethodPost, "/api/hosts/dc-01/checks/humidity", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "dc-01", evaluator.lastUnit.Host)
	assert.Equal(t, "humidity", evaluator.lastUnit.CheckType)
	require.Len(t, evaluator.lastUnit.Records, 1)
	assert.Equal(t, "Supply Humidity", evaluator.lastUnit.Records[0].Records[0].Key)

	var results []engine.ItemResult

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, check.StateOK, results[0].Result.State)
}

func TestIngestChecksBadPayload(t *testing.T) {
	s := NewAPIServer(nil, nil)
	s.SetEvaluator(&stubEvaluator{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(
		http.MethodPost, "/api/hosts/dc-01/checks/humidity", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSHeaders(t *testing.T) {
	s := NewAPIServer(nil, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hosts", nil))

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
