package inventory

import (
    "context"

    "github.com/ticketflow/inventory/internal/model"
)

// AuditLog wraps the append-only transaction store and adds replay-based
// reconciliation.  It exposes exactly two store operations — append and
// query — and no way to mutate or delete history; corrections enter the log
// as new rows.
type AuditLog struct {
    store AuditStore
}

// NewAuditLog returns an AuditLog over the given store.
func NewAuditLog(store AuditStore) *AuditLog { return &AuditLog{store: store} }

// Append records one transaction.
func (a *AuditLog) Append(ctx context.Context, tx *model.InventoryTransaction) error {
    return a.store.Append(ctx, tx)
}

// Query returns transactions matching the filter, oldest first.
func (a *AuditLog) Query(ctx context.Context, f model.TransactionFilter) ([]*model.InventoryTransaction, error) {
    return a.store.Query(ctx, f)
}

// ReplayedCounters is ledger state recomputed purely from the transaction
// log.
type ReplayedCounters struct {
    Sold     int
    Held     int
    Capacity int
}

// Replay folds the full ordered transaction history of a ticket type from
// zero.  For a consistent system the result matches the live ledger row
// exactly; this is the conservation property dispute resolution relies on.
func (a *AuditLog) Replay(ctx context.Context, ticketTypeID string) (ReplayedCounters, error) {
    var c ReplayedCounters
    txs, err := a.store.Query(ctx, model.TransactionFilter{
        TicketTypeID: ticketTypeID,
        Limit:        replayPageSize,
    })
    if err != nil {
        return c, err
    }
    for _, tx := range txs {
        switch tx.Type {
        case model.TxHoldCreate:
            c.Held += tx.Quantity
        case model.TxHoldRelease, model.TxHoldExpire:
            c.Held -= tx.Quantity
        case model.TxPurchaseComplete:
            c.Sold += tx.Quantity
            c.Held -= tx.Quantity
        case model.TxRefund:
            c.Sold -= tx.Quantity
        case model.TxAdminAdjustment:
            c.Capacity += tx.Quantity
        }
    }
    return c, nil
}

// replayPageSize is deliberately large: replay must see the whole history of
// a ticket type, not a default page.
const replayPageSize = 1_000_000

// ReconcileReport compares live ledger counters against a replay of the
// transaction log.
type ReconcileReport struct {
    TicketTypeID   string
    LedgerSold     int
    LedgerHeld     int
    LedgerCapacity int
    ReplaySold     int
    ReplayHeld     int
    ReplayCapacity int
    Consistent     bool
}

// Reconcile replays the log for a ticket type and reports any drift against
// the ledger row.  Drift means a mutation happened without its audit row (or
// vice versa) and needs operator attention; the engine never repairs it
// silently.
func (a *AuditLog) Reconcile(ctx context.Context, ledger LedgerStore, ticketTypeID string) (*ReconcileReport, error) {
    inv, err := ledger.GetInventory(ctx, ticketTypeID)
    if err != nil {
        return nil, err
    }
    replayed, err := a.Replay(ctx, ticketTypeID)
    if err != nil {
        return nil, err
    }
    report := &ReconcileReport{
        TicketTypeID:   ticketTypeID,
        LedgerSold:     inv.SoldQuantity,
        LedgerHeld:     inv.HeldQuantity,
        LedgerCapacity: inv.TotalQuantity,
        ReplaySold:     replayed.Sold,
        ReplayHeld:     replayed.Held,
        ReplayCapacity: replayed.Capacity,
    }
    report.Consistent = report.LedgerSold == report.ReplaySold &&
        report.LedgerHeld == report.ReplayHeld &&
        report.LedgerCapacity == report.ReplayCapacity
    return report, nil
}
