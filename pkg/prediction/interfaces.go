// Package prediction pkg/prediction/interfaces.go

package prediction

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock_store.go -package=prediction github.com/mfreeman451/checkmate/pkg/prediction SeriesStore

// SeriesStore is the contract supplied by the external time-series
// backend. A returned series covers [from, until) at the store's native
// step; nil entries are gaps.
type SeriesStore interface {
	GetSeries(ctx context.Context, host, category, metric, aggregation string, from, until time.Time) (Series, error)
}
