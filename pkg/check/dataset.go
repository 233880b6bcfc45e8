// Package check pkg/check/dataset.go
package check

import "fmt"

// Source identifies which collection transport produced a record set.
type Source string

const (
	SourceSNMP  Source = "snmp"
	SourceAgent Source = "agent"
	SourceAPI   Source = "api"
)

// RawRecord is one (key, value[, unit]) tuple as delivered by a source.
type RawRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// RecordSet is a source-tagged batch of raw records for one host and one
// collection cycle.
type RecordSet struct {
	Source  Source      `json:"source"`
	Records []RawRecord `json:"records"`
}

// Dataset is the normalized per-entity mapping produced by a plugin's
// parse stage. It is immutable for the remainder of the cycle.
type Dataset map[string]Value

// Get returns the value for key, or the NotApplicable sentinel when the
// key was never parsed.
func (d Dataset) Get(key string) Value {
	if v, ok := d[key]; ok {
		return v
	}

	return NotApplicable()
}

// Has reports whether key was parsed into the dataset, regardless of kind.
func (d Dataset) Has(key string) bool {
	_, ok := d[key]

	return ok
}

// Numeric returns the numeric reading for key or an error if the key is
// missing or not numeric.
func (d Dataset) Numeric(key string) (float64, error) {
	v, ok := d[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}

	if !v.IsNumeric() {
		return 0, fmt.Errorf("%w: %s is %s", ErrNotNumeric, key, v)
	}

	return v.Num, nil
}
