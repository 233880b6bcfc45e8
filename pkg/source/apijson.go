// Package source pkg/source/apijson.go parses cloud API metric payloads.
package source

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mfreeman451/checkmate/pkg/check"
)

// apiMetric is one entry of a cloud API metrics payload.
type apiMetric struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
	Unit  string      `json:"unit,omitempty"`
}

// ParseAPIPayload converts a cloud API JSON document of the form
// {"metrics": [{"name": ..., "value": ..., "unit": ...}, ...]} into a raw
// record set. Null values map onto the Unavailable sentinel rather than
// failing the parse.
func ParseAPIPayload(data []byte) (check.RecordSet, error) {
	if len(data) == 0 {
		return check.RecordSet{}, ErrEmptyPayload
	}

	var payload struct {
		Metrics []apiMetric `json:"metrics"`
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return check.RecordSet{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	set := check.RecordSet{Source: check.SourceAPI}

	for _, m := range payload.Metrics {
		if m.Name == "" {
			return check.RecordSet{}, fmt.Errorf("%w: metric without name", ErrMalformedRecord)
		}

		record := check.RawRecord{Key: m.Name, Unit: m.Unit}

		switch v := m.Value.(type) {
		case nil:
			record.Value = "Unavailable"
		case float64:
			record.Value = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			record.Value = v
		default:
			return check.RecordSet{}, fmt.Errorf("%w: metric %s has value of type %T", ErrMalformedRecord, m.Name, m.Value)
		}

		set.Records = append(set.Records, record)
	}

	return set, nil
}
