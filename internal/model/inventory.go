package model

import "time"

// TicketInventory is the authoritative counter row for a single ticket type
// within an event.  It is the only shared mutable resource in the system and
// is never locked exclusively: every writer competes through a version-checked
// compare-and-swap update, so the Version field increases by exactly one on
// every successful mutation.
//
// Invariant: SoldQuantity + HeldQuantity <= TotalQuantity and all three
// counters are non-negative.  Available capacity is always derived, never
// stored on its own.
type TicketInventory struct {
    TicketTypeID  string    // identity of the ticket type (primary key)
    EventID       string    // event this ticket type belongs to
    TotalQuantity int       // configured capacity
    SoldQuantity  int       // completed purchases
    HeldQuantity  int       // quantity currently locked by active holds
    Version       uint64    // optimistic-concurrency generation counter
    CreatedAt     time.Time // ticket_inventory.created_at
    UpdatedAt     time.Time // ticket_inventory.updated_at
}

// AvailableQuantity returns the derived capacity still open for new holds.
func (ti *TicketInventory) AvailableQuantity() int {
    return ti.TotalQuantity - ti.SoldQuantity - ti.HeldQuantity
}

// SoldOut reports whether no further quantity can be held or sold.
func (ti *TicketInventory) SoldOut() bool {
    return ti.AvailableQuantity() <= 0
}

// InvariantHolds reports whether the counters satisfy the ledger invariant.
// Repositories check it before persisting and tests use it to assert that no
// sequence of operations can corrupt the row.
func (ti *TicketInventory) InvariantHolds() bool {
    if ti.TotalQuantity < 0 || ti.SoldQuantity < 0 || ti.HeldQuantity < 0 {
        return false
    }
    return ti.SoldQuantity+ti.HeldQuantity <= ti.TotalQuantity
}
