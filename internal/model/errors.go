// Sentinel errors shared across the repository and engine layers.  Handlers
// translate these into HTTP responses: not-found errors become 404, invariant
// and hold-state errors become 409, retry exhaustion becomes 503.  They are
// compared with errors.Is so wrapping with context is safe anywhere.
package model

import "errors"

// ErrNotFound is returned when a referenced ticket type does not exist.
var ErrNotFound = errors.New("ticket type not found")

// ErrHoldNotFound is returned when a referenced hold does not exist.
var ErrHoldNotFound = errors.New("hold not found")

// ErrVersionConflict signals an optimistic-concurrency collision: the row's
// version moved between read and write.  Callers re-read and retry a bounded
// number of times before giving up.
var ErrVersionConflict = errors.New("inventory version conflict")

// ErrInvariantViolation is returned when a mutation would break
// sold + held <= total or drive a counter negative.  The mutation is
// rejected whole; the previous consistent state is preserved.
var ErrInvariantViolation = errors.New("inventory invariant violation")

// ErrHoldNotActive is returned when an operation requires an active hold but
// the hold has already expired, been released, or been completed.  The caller
// must restart the reservation flow.
var ErrHoldNotActive = errors.New("hold is not active")

// ErrInsufficientInventory is returned when a hold request cannot be granted
// even after conflict resolution.  The accompanying result carries the
// currently available quantity so the caller can offer a reduced amount.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// ErrRetryExhausted is a transient failure: the bounded optimistic retry
// budget ran out under heavy contention.  Retrying the same request is safe.
var ErrRetryExhausted = errors.New("optimistic retries exhausted")

// ErrInvalidQuantity is returned for zero or negative quantities.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrInvalidRequest is returned for requests missing required identifiers.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnknownChannel is returned for purchase channels missing from the
// timeout table.
var ErrUnknownChannel = errors.New("unknown purchase channel")

// ErrAlreadyExists is returned when creating a ticket type that is already
// provisioned.
var ErrAlreadyExists = errors.New("ticket type already exists")

// ErrAlreadyRefunded is returned when a refund is requested for a hold whose
// purchase was already refunded.
var ErrAlreadyRefunded = errors.New("purchase already refunded")
