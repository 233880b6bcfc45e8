package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfreeman451/checkmate/pkg/models"
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// EngineConfig represents the configuration for the engine server.
type EngineConfig struct {
	ListenAddr       string               `json:"listen_addr"` // gRPC health endpoint, e.g. :50051
	HTTPAddr         string               `json:"http_addr"`   // status API, e.g. :8090
	DBPath           string               `json:"db_path"`     // sqlite history store
	Retention        Duration             `json:"retention"`   // how long to keep samples and results
	RetrievalTimeout Duration             `json:"retrieval_timeout"`
	LaunchRate       float64              `json:"launch_rate"` // unit evaluations per second
	Debug            bool                 `json:"debug"`       // re-raise internal errors, dev only
	Metrics          models.MetricsConfig `json:"metrics"`
}

var (
	errListenAddrRequired = fmt.Errorf("listen_addr is required")
	errHTTPAddrRequired   = fmt.Errorf("http_addr is required")
	errDBPathRequired     = fmt.Errorf("db_path is required")
)

// Validate implements Validator.
func (c *EngineConfig) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.HTTPAddr == "" {
		return errHTTPAddrRequired
	}

	if c.DBPath == "" {
		return errDBPathRequired
	}

	if c.Retention == 0 {
		c.Retention = Duration(30 * 24 * time.Hour)
	}

	if c.RetrievalTimeout == 0 {
		c.RetrievalTimeout = Duration(30 * time.Second)
	}

	return nil
}
