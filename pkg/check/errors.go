package check

import "errors"

var (
	ErrMissingField  = errors.New("missing mandatory field")
	ErrNotNumeric    = errors.New("value is not numeric")
	ErrInvalidLevels = errors.New("invalid levels")
)
