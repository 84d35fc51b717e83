package inventory

import (
    "context"
    "time"

    "github.com/ticketflow/inventory/internal/model"
)

// Event types emitted after every inventory-affecting action.
const (
    EventHoldCreated       = "hold_created"
    EventHoldReleased      = "hold_released"
    EventHoldExpired       = "hold_expired"
    EventPurchaseCompleted = "purchase_completed"
    EventRefundIssued      = "refund_issued"
    EventCapacityAdjusted  = "capacity_adjusted"
    EventTicketTypeCreated = "ticket_type_created"
)

// Event describes a completed state change.  Consumers use it to invalidate
// façade caches and to publish "status changed" notifications; it is emitted
// only after the ledger mutation and audit append have succeeded, so a
// subsequent status read always observes the change.
type Event struct {
    Type         string
    TicketTypeID string
    EventID      string
    HoldID       string
    Quantity     int
    Channel      model.Channel
    Available    int
    OccurredAt   time.Time
}

// ChangeListener receives engine events.  Implementations must not block:
// the manager calls listeners synchronously on the request path.
type ChangeListener func(ctx context.Context, ev Event)
