// Package api pkg/api/server.go serves graded check results to the
// reporting and visualization layer, and accepts raw record pushes from
// the collection transports.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/mfreeman451/checkmate/db"
	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/engine"
	httpx "github.com/mfreeman451/checkmate/pkg/http"
	"github.com/mfreeman451/checkmate/pkg/metrics"
)

const (
	defaultHistoryLimit   = 100
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultIngestBodySize = 4 << 20 // 4MB
)

// Evaluator runs one unit of check evaluation. Satisfied by
// *engine.Engine.
type Evaluator interface {
	RunUnit(ctx context.Context, unit engine.Unit) []engine.ItemResult
}

// APIServer holds the latest per-host service statuses and the HTTP
// surface over them. It implements engine.Sink.
type APIServer struct {
	mu        sync.RWMutex
	hosts     map[string]map[string]ServiceStatus
	router    *mux.Router
	srv       *http.Server
	evaluator Evaluator
	database  *db.DB
	metrics   *metrics.MetricsManager
	hub       *streamHub
}

func NewAPIServer(database *db.DB, m *metrics.MetricsManager) *APIServer {
	s := &APIServer{
		hosts:    make(map[string]map[string]ServiceStatus),
		router:   mux.NewRouter(),
		database: database,
		metrics:  m,
		hub:      newStreamHub(),
	}
	s.setupRoutes()

	return s
}

// SetEvaluator wires the engine in after construction; the engine needs
// this server as a sink, so the two cannot reference each other in their
// constructors.
func (s *APIServer) SetEvaluator(e Evaluator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluator = e
}

func (s *APIServer) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware, httpx.RequestLogger)

	s.router.HandleFunc("/api/hosts", s.getHosts).Methods(http.MethodGet)
	s.router.HandleFunc("/api/hosts/{host}", s.getHost).Methods(http.MethodGet)
	s.router.HandleFunc("/api/hosts/{host}/services/{service}/history", s.getServiceHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/api/hosts/{host}/metrics", s.getHostMetrics).Methods(http.MethodGet)
	s.router.HandleFunc("/api/hosts/{host}/checks/{type}", s.ingestChecks).Methods(http.MethodPost)
	s.router.HandleFunc("/api/stream", s.hub.serveWS)
}

// Publish implements engine.Sink: it refreshes the status tables and
// feeds the live stream.
func (s *APIServer) Publish(res engine.ItemResult) {
	s.mu.Lock()

	services, ok := s.hosts[res.Host]
	if !ok {
		services = make(map[string]ServiceStatus)
		s.hosts[res.Host] = services
	}

	services[res.CheckType+"/"+res.Item] = ServiceStatus{
		Name:       res.Item,
		CheckType:  res.CheckType,
		State:      res.Result.State,
		StateText:  res.Result.State.String(),
		Summary:    res.Result.Summary,
		Perf:       res.Result.Perf,
		LastUpdate: res.Timestamp,
	}

	s.mu.Unlock()

	s.hub.broadcast(res)

	if s.metrics != nil {
		s.metrics.AddMetric(res.Host, res.Timestamp, res.Elapsed.Microseconds(), res.Item)
	}
}

func (s *APIServer) hostStatus(host string, services map[string]ServiceStatus) HostStatus {
	status := HostStatus{
		Host:     host,
		Services: make([]ServiceStatus, 0, len(services)),
	}

	for _, svc := range services {
		status.WorstState = status.WorstState.Worse(svc.State)

		if svc.LastUpdate.After(status.LastUpdate) {
			status.LastUpdate = svc.LastUpdate
		}

		status.Services = append(status.Services, svc)
	}

	sort.Slice(status.Services, func(i, j int) bool {
		return status.Services[i].Name < status.Services[j].Name
	})

	return status
}

func (s *APIServer) getHosts(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()

	out := make([]HostStatus, 0, len(s.hosts))
	for host, services := range s.hosts {
		out = append(out, s.hostStatus(host, services))
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })

	writeJSON(w, out)
}

func (s *APIServer) getHost(w http.ResponseWriter, r *http.Request) {
	host := mux.Vars(r)["host"]

	s.mu.RLock()
	services, ok := s.hosts[host]

	if !ok {
		s.mu.RUnlock()
		http.Error(w, "host not found", http.StatusNotFound)

		return
	}

	status := s.hostStatus(host, services)
	s.mu.RUnlock()

	writeJSON(w, status)
}

func (s *APIServer) getServiceHistory(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		http.Error(w, "history storage not configured", http.StatusNotImplemented)

		return
	}

	vars := mux.Vars(r)

	history, err := s.database.GetResultHistory(vars["host"], vars["service"], defaultHistoryLimit)
	if err != nil {
		log.Printf("Error fetching service history: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, history)
}

func (s *APIServer) getHostMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.Error(w, "metrics not configured", http.StatusNotImplemented)

		return
	}

	writeJSON(w, s.metrics.GetMetrics(mux.Vars(r)["host"]))
}

// ingestChecks accepts one cycle's raw record sets for a host and check
// type, evaluates them synchronously, and returns the item results.
func (s *APIServer) ingestChecks(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	evaluator := s.evaluator
	s.mu.RUnlock()

	if evaluator == nil {
		http.Error(w, "engine not ready", http.StatusServiceUnavailable)

		return
	}

	vars := mux.Vars(r)

	var records []check.RecordSet

	body := http.MaxBytesReader(w, r.Body, defaultIngestBodySize)
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		http.Error(w, "invalid record payload: "+err.Error(), http.StatusBadRequest)

		return
	}

	results := evaluator.RunUnit(r.Context(), engine.Unit{
		Host:      vars["host"],
		CheckType: vars["type"],
		Records:   records,
	})

	writeJSON(w, results)
}

// Start begins serving on addr and blocks until the server stops.
func (s *APIServer) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	log.Printf("API server listening on %s", addr)

	return s.srv.ListenAndServe()
}

// Shutdown stops the HTTP server and closes stream clients.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.hub.close()

	if s.srv == nil {
		return nil
	}

	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
