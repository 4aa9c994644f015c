package store

import "errors"

// ErrStorage is returned when the underlying persistence layer fails. It is
// distinct from domain errors: callers treat it as a run-level failure rather
// than a per-invoice one.
var ErrStorage = errors.New("invoice store persistence failure")
