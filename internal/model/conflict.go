package model

import "time"

// ResolutionStrategy names the policy used to arbitrate contending hold
// requests.  First-come-first-served is the implemented default; the other
// values are recognized extension points.
type ResolutionStrategy string

const (
    StrategyFCFS     ResolutionStrategy = "fcfs"
    StrategyPriority ResolutionStrategy = "priority_based"
    StrategyRandom   ResolutionStrategy = "random_selection"
)

// ConflictingRequest is one contender inside a resolved conflict, recorded
// for audit purposes.
type ConflictingRequest struct {
    SessionID         string
    RequestedQuantity int
    GrantedQuantity   int
    Timestamp         time.Time
    Priority          int
}

// ConflictResolution records how scarce remaining inventory was divided when
// the sum of simultaneous requests exceeded what was available.  It is
// produced only when more than one request contended within the same
// coalescing window; an uncontended shortfall is a plain rejection.
type ConflictResolution struct {
    ConflictID        string
    TicketTypeID      string
    AttemptedQuantity int
    AvailableQuantity int
    Requests          []ConflictingRequest
    Strategy          ResolutionStrategy
    ResolvedAt        time.Time
}
