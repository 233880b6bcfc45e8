package prediction

import "errors"

var (
	// ErrNoData means the window contained no usable samples. Callers
	// report this as OK with a note, never as a failure.
	ErrNoData = errors.New("no data points in range")

	ErrNoSeries       = errors.New("no component series")
	ErrSeriesMismatch = errors.New("component series do not align")
)
