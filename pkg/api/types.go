package api

import (
	"time"

	"github.com/mfreeman451/checkmate/pkg/check"
)

// ServiceStatus is the latest graded result for one service item.
type ServiceStatus struct {
	Name       string           `json:"name"`
	CheckType  string           `json:"check_type"`
	State      check.State      `json:"state"`
	StateText  string           `json:"state_text"`
	Summary    string           `json:"summary"`
	Perf       []check.PerfData `json:"perf,omitempty"`
	LastUpdate time.Time        `json:"last_update"`
}

// HostStatus is the rollup served for one host.
type HostStatus struct {
	Host       string          `json:"host"`
	WorstState check.State     `json:"worst_state"`
	LastUpdate time.Time       `json:"last_update"`
	Services   []ServiceStatus `json:"services"`
}
