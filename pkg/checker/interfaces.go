package checker

import (
	"github.com/mfreeman451/checkmate/pkg/check"
)

// Plugin bundles the three operations of one check type. All three must be
// non-nil; Registry.Validate enforces this at startup so an incomplete
// registration fails before the first cycle runs.
type Plugin struct {
	Parse    check.Parser
	Discover check.Discoverer
	Check    check.Checker
}
