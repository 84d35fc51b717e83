// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// InventoryEvent is published on every inventory-affecting action (hold
// created, released, expired, purchase completed, refund, capacity change).
// It carries enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.  Available is the
// post-mutation availability, so consumers can render "status changed"
// updates directly from the message.
type InventoryEvent struct {
    Type         string `json:"type"`
    TicketTypeID string `json:"ticket_type_id"`
    EventID      string `json:"event_id"`
    HoldID       string `json:"hold_id,omitempty"`
    Quantity     int    `json:"quantity"`
    Channel      string `json:"channel"`
    Available    int    `json:"available"`
    OccurredAt   string `json:"occurred_at"`
}
