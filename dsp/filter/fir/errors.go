package fir

import "errors"

// ErrInvalidConfiguration is returned when a coefficient table cannot be
// used to build a filter: it is empty, contains a non-finite value, or is
// missing.
var ErrInvalidConfiguration = errors.New("fir: invalid configuration")
