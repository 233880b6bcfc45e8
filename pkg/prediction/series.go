package prediction

import (
	"fmt"
	"time"
)

// Series is one retrieved time-series window. Values has one entry per
// step; nil marks a missing sample.
type Series struct {
	From   time.Time
	Step   time.Duration
	Values []*float64
}

// Peak is the maximum observed value in a window and when it occurred.
type Peak struct {
	Value float64
	At    time.Time
}

// Peak scans the series for the maximum non-nil value. An all-nil or
// empty series returns ErrNoData, which is distinct from a low peak.
func (s Series) Peak() (Peak, error) {
	var (
		peak  Peak
		found bool
	)

	for i, v := range s.Values {
		if v == nil {
			continue
		}

		if !found || *v > peak.Value {
			peak = Peak{
				Value: *v,
				At:    s.From.Add(time.Duration(i) * s.Step),
			}
			found = true
		}
	}

	if !found {
		return Peak{}, ErrNoData
	}

	return peak, nil
}

// CombineSum merges component series into one derived series by
// element-wise summation. A nil component at a given step makes the
// combined value nil at that step; there are no partial sums. All inputs
// must share step and length.
func CombineSum(components []Series) (Series, error) {
	if len(components) == 0 {
		return Series{}, ErrNoSeries
	}

	combined := Series{
		From:   components[0].From,
		Step:   components[0].Step,
		Values: make([]*float64, len(components[0].Values)),
	}

	for _, c := range components[1:] {
		if c.Step != combined.Step || len(c.Values) != len(combined.Values) {
			return Series{}, fmt.Errorf("%w: step %v/%v, len %d/%d",
				ErrSeriesMismatch, c.Step, combined.Step, len(c.Values), len(combined.Values))
		}
	}

	for i := range combined.Values {
		sum := 0.0
		complete := true

		for _, c := range components {
			if c.Values[i] == nil {
				complete = false
				break
			}

			sum += *c.Values[i]
		}

		if complete {
			v := sum
			combined.Values[i] = &v
		}
	}

	return combined, nil
}
