package source

import "errors"

var (
	ErrNilTarget              = errors.New("target configuration is nil")
	ErrTargetHostRequired     = errors.New("target host is required")
	ErrUnsupportedSNMPVersion = errors.New("unsupported SNMP version")
	ErrUnsupportedSNMPType    = errors.New("unsupported SNMP type")
	ErrMalformedRecord        = errors.New("malformed record")
	ErrEmptyPayload           = errors.New("empty payload")
)
