// Package inventory implements the ticket inventory engine: the hold
// manager, conflict resolver, expiry sweeper, audit log and status façade.
// Persistence is abstracted behind small store interfaces so the engine is
// equally correct over MySQL in production and over in-memory fakes in
// tests; correctness never depends on locks, only on the version-checked
// TryMutate primitive every writer shares.
package inventory

import (
    "context"
    "time"

    "github.com/ticketflow/inventory/internal/model"
)

// LedgerStore is the authoritative counter store.  TryMutate and
// AdjustCapacity are conditional writes: they succeed only when the stored
// version equals expectedVersion and the invariant
// sold + held <= total (all non-negative) survives the change, and they
// reject atomically otherwise with model.ErrVersionConflict or
// model.ErrInvariantViolation.
type LedgerStore interface {
    CreateInventory(ctx context.Context, inv *model.TicketInventory) error
    GetInventory(ctx context.Context, ticketTypeID string) (*model.TicketInventory, error)
    GetInventoryBulk(ctx context.Context, ticketTypeIDs []string) ([]*model.TicketInventory, error)
    ListInventoryByEvent(ctx context.Context, eventID string) ([]*model.TicketInventory, error)
    TryMutate(ctx context.Context, ticketTypeID string, deltaSold, deltaHeld int, expectedVersion uint64) (*model.TicketInventory, error)
    AdjustCapacity(ctx context.Context, ticketTypeID string, newTotal int, expectedVersion uint64) (*model.TicketInventory, error)
}

// HoldStore persists reservation records.  TransitionStatus reports whether
// the caller won the guarded transition; the winner of a transition out of
// "active" owns the corresponding ledger mutation.
type HoldStore interface {
    CreateHold(ctx context.Context, h *model.InventoryHold) error
    GetHold(ctx context.Context, id string) (*model.InventoryHold, error)
    ListActiveBySession(ctx context.Context, sessionID, ticketTypeID string) ([]*model.InventoryHold, error)
    ListActiveByTicketType(ctx context.Context, ticketTypeID string) ([]*model.InventoryHold, error)
    ListExpired(ctx context.Context, now time.Time, limit int) ([]*model.InventoryHold, error)
    TransitionStatus(ctx context.Context, id string, from, to model.HoldStatus) (bool, error)
}

// AuditStore is the append-only transaction trail.  There is deliberately no
// update or delete.
type AuditStore interface {
    Append(ctx context.Context, tx *model.InventoryTransaction) error
    Query(ctx context.Context, f model.TransactionFilter) ([]*model.InventoryTransaction, error)
}
