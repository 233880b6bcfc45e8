// Package source pkg/source/snmp.go adapts SNMP devices into raw record
// sets for the check engine.
package source

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/mfreeman451/checkmate/pkg/check"
)

// SNMPVersion represents supported SNMP versions.
type SNMPVersion string

const (
	Version1  SNMPVersion = "v1"
	Version2c SNMPVersion = "v2c"
)

// SNMPTarget describes one SNMP device to fetch records from.
type SNMPTarget struct {
	Host      string        `json:"host"`
	Port      uint16        `json:"port"`
	Community string        `json:"community"`
	Version   SNMPVersion   `json:"version"`
	Timeout   time.Duration `json:"timeout"`
	Retries   int           `json:"retries"`
}

// SNMPError wraps SNMP-specific errors with additional context.
type SNMPError struct {
	Op      string
	Target  string
	Wrapped error
}

func (e *SNMPError) Error() string {
	return fmt.Sprintf("SNMP %s failed for target %s: %v", e.Op, e.Target, e.Wrapped)
}

func (e *SNMPError) Unwrap() error {
	return e.Wrapped
}

// SNMPSource fetches named OIDs from one target and renders them as a
// source-tagged record set.
type SNMPSource struct {
	client    *gosnmp.GoSNMP
	target    *SNMPTarget
	mu        sync.Mutex
	connected bool
}

// NewSNMPSource validates the target and prepares a client for it.
func NewSNMPSource(target *SNMPTarget) (*SNMPSource, error) {
	if err := validateTarget(target); err != nil {
		return nil, fmt.Errorf("invalid target: %w", err)
	}

	client := &gosnmp.GoSNMP{
		Target:             target.Host,
		Port:               target.Port,
		Community:          target.Community,
		Timeout:            target.Timeout,
		Retries:            target.Retries,
		ExponentialTimeout: true,
		MaxOids:            gosnmp.MaxOids,
	}

	switch target.Version {
	case Version1:
		client.Version = gosnmp.Version1
	case Version2c:
		client.Version = gosnmp.Version2c
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSNMPVersion, target.Version)
	}

	return &SNMPSource{
		client: client,
		target: target,
	}, nil
}

// Fetch retrieves the named OIDs and returns one raw record per name. OIDs
// the device does not answer for are omitted rather than failing the
// fetch.
func (s *SNMPSource) Fetch(oids map[string]string) (check.RecordSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		if err := s.client.Connect(); err != nil {
			return check.RecordSet{}, &SNMPError{Op: "connect", Target: s.target.Host, Wrapped: err}
		}

		s.connected = true
	}

	byOID := make(map[string]string, len(oids))
	request := make([]string, 0, len(oids))

	for name, oid := range oids {
		byOID[oid] = name
		request = append(request, oid)
	}

	set := check.RecordSet{Source: check.SourceSNMP}

	// Split OIDs into chunks of MaxOids size
	for i := 0; i < len(request); i += gosnmp.MaxOids {
		end := i + gosnmp.MaxOids
		if end > len(request) {
			end = len(request)
		}

		result, err := s.client.Get(request[i:end])
		if err != nil {
			return check.RecordSet{}, &SNMPError{Op: "get", Target: s.target.Host, Wrapped: err}
		}

		for _, variable := range result.Variables {
			name, ok := byOID[variable.Name]
			if !ok {
				continue
			}

			value, err := renderVariable(variable)
			if err != nil {
				return check.RecordSet{}, &SNMPError{Op: "convert", Target: s.target.Host, Wrapped: err}
			}

			set.Records = append(set.Records, check.RawRecord{Key: name, Value: value})
		}
	}

	return set, nil
}

// Close closes the SNMP connection.
func (s *SNMPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	if err := s.client.Conn.Close(); err != nil {
		return err
	}

	s.connected = false

	return nil
}

// renderVariable converts an SNMP variable into its raw string form; the
// plugin parse stage takes over typing from there.
func renderVariable(variable gosnmp.SnmpPDU) (string, error) {
	switch variable.Type {
	case gosnmp.OctetString:
		return string(variable.Value.([]byte)), nil
	case gosnmp.Integer:
		return strconv.Itoa(variable.Value.(int)), nil
	case gosnmp.Counter32, gosnmp.Gauge32:
		return strconv.FormatUint(uint64(variable.Value.(uint)), 10), nil
	case gosnmp.Counter64:
		return strconv.FormatUint(variable.Value.(uint64), 10), nil
	case gosnmp.IPAddress, gosnmp.ObjectIdentifier:
		return variable.Value.(string), nil
	case gosnmp.TimeTicks:
		ticks := time.Duration(variable.Value.(uint32)) * time.Second / 100

		return strconv.FormatFloat(ticks.Seconds(), 'f', -1, 64), nil
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance:
		return "Unavailable", nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedSNMPType, variable.Type)
	}
}

// validateTarget performs basic validation of target configuration.
func validateTarget(target *SNMPTarget) error {
	if target == nil {
		return ErrNilTarget
	}

	if target.Host == "" {
		return ErrTargetHostRequired
	}

	if target.Port == 0 {
		target.Port = 161 // Default SNMP port
	}

	if target.Timeout == 0 {
		target.Timeout = 5 * time.Second
	}

	if target.Retries == 0 {
		target.Retries = 3
	}

	return nil
}
