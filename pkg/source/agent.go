// Package source pkg/source/agent.go parses remote agent output blocks.
package source

import (
	"fmt"
	"strings"

	"github.com/mfreeman451/checkmate/pkg/check"
)

// ParseAgentBlock converts a remote agent text block into a raw record
// set. Each non-empty line is key:value[:unit]; lines beginning with #
// are skipped. A line without a separator is a malformed mandatory field
// and fails the whole block.
func ParseAgentBlock(block string) (check.RecordSet, error) {
	set := check.RecordSet{Source: check.SourceAgent}

	for lineNo, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 2 {
			return check.RecordSet{}, fmt.Errorf("%w: line %d: %q", ErrMalformedRecord, lineNo+1, line)
		}

		record := check.RawRecord{
			Key:   strings.TrimSpace(parts[0]),
			Value: strings.TrimSpace(parts[1]),
		}

		if len(parts) == 3 {
			record.Unit = strings.TrimSpace(parts[2])
		}

		set.Records = append(set.Records, record)
	}

	return set, nil
}
