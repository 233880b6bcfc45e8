// Package prediction pkg/prediction/predictor.go implements peak
// detection over historical data windows.
package prediction

import (
	"context"
	"fmt"
	"log"
	"time"
)

const defaultTimeout = 30 * time.Second

// Query names the series to scan: one primary metric, plus the component
// metrics to sum when the primary does not exist for this host type.
type Query struct {
	Host        string
	Category    string
	Metric      string
	Fallback    []string
	Aggregation string
	From        time.Time
	Until       time.Time
}

// Predictor retrieves historical windows from a SeriesStore and computes
// peak aggregates. Retrieval is bounded by the configured timeout; a
// timeout is treated like any other retrieval failure.
type Predictor struct {
	store   SeriesStore
	timeout time.Duration
}

// Option modifies Predictor configuration.
type Option func(*Predictor)

// WithTimeout overrides the retrieval timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Predictor) {
		p.timeout = d
	}
}

func New(store SeriesStore, opts ...Option) *Predictor {
	p := &Predictor{
		store:   store,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PredictPeak finds the maximum value and its timestamp over the window.
// It first tries the primary metric; if that retrieval fails it combines
// the fallback component series by element-wise summation. Exhausting all
// fallbacks, or a fully null window, returns ErrNoData.
func (p *Predictor) PredictPeak(ctx context.Context, q Query) (Peak, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	series, err := p.retrieve(ctx, q)
	if err != nil {
		return Peak{}, err
	}

	return series.Peak()
}

func (p *Predictor) retrieve(ctx context.Context, q Query) (Series, error) {
	series, err := p.store.GetSeries(ctx, q.Host, q.Category, q.Metric, q.Aggregation, q.From, q.Until)
	if err == nil {
		return series, nil
	}

	if len(q.Fallback) == 0 {
		return Series{}, fmt.Errorf("%w: %s/%s: %w", ErrNoData, q.Host, q.Metric, err)
	}

	log.Printf("Primary series %s/%s unavailable, combining %d components: %v",
		q.Host, q.Metric, len(q.Fallback), err)

	components := make([]Series, 0, len(q.Fallback))

	for _, metric := range q.Fallback {
		c, err := p.store.GetSeries(ctx, q.Host, q.Category, metric, q.Aggregation, q.From, q.Until)
		if err != nil {
			return Series{}, fmt.Errorf("%w: fallback %s/%s: %w", ErrNoData, q.Host, metric, err)
		}

		components = append(components, c)
	}

	return CombineSum(components)
}
