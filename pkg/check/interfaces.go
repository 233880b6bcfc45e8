package check

import "context"

// Parser converts one cycle's raw record sets into a normalized dataset.
// It is a pure transform; malformed mandatory fields surface as an error
// that aborts evaluation for this host and check type.
type Parser interface {
	Parse(records []RecordSet) (Dataset, error)
}

// Discoverer produces the set of monitorable items from a dataset.
// Discovery is idempotent.
type Discoverer interface {
	Discover(ds Dataset) []ServiceItem
}

// Checker grades one discovered item against the dataset.
type Checker interface {
	Check(ctx context.Context, item ServiceItem, ds Dataset) (Result, error)
}
