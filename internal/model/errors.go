package model

import "errors"

// ErrMalformedRecord is returned when a stored JSON column does not decode
// into its expected shape. Callers decide whether to fail the request or
// skip the record.
var ErrMalformedRecord = errors.New("malformed record")
