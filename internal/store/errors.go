package store

import "errors"

// ErrNotFound is returned when a ticket id does not address an existing
// ticket. Callers must branch on it rather than treat it as a generic failure.
var ErrNotFound = errors.New("ticket not found")

// ErrInvalidInput marks create/update payloads the store refuses to accept,
// such as a missing department or an unknown status value.
var ErrInvalidInput = errors.New("invalid ticket input")
