package engine

import "errors"

// Validation errors. Both are raised before any book mutation: a
// rejected submission is a complete no-op and is never retried
// internally.
var (
	ErrInvalidOrder      = errors.New("invalid order")
	ErrUnknownInstrument = errors.New("unknown instrument")
)
