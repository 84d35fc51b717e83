package model

import "time"

// TransactionType classifies an inventory-affecting action in the audit log.
type TransactionType string

const (
    TxHoldCreate       TransactionType = "hold_create"
    TxHoldRelease      TransactionType = "hold_release"
    TxHoldExpire       TransactionType = "hold_expire"
    TxPurchaseComplete TransactionType = "purchase_complete"
    TxRefund           TransactionType = "refund"
    TxAdminAdjustment  TransactionType = "admin_adjustment"
)

// InventoryTransaction is one row of the append-only reconciliation trail.
// Rows are never mutated or deleted: corrections are expressed as new rows
// (a refund rather than an edited purchase).  Replaying the ordered log for
// a ticket type from zero must reproduce the ledger's sold/held counters.
//
// Quantity carries the units affected by the action.  For admin_adjustment
// it is the signed capacity delta (newTotal - oldTotal) so the replay can
// track capacity changes too.
type InventoryTransaction struct {
    ID            string
    Type          TransactionType
    TicketTypeID  string
    Quantity      int
    RelatedHoldID *string
    Channel       Channel
    ActorID       *string // admin user for admin_adjustment rows, nil otherwise
    CreatedAt     time.Time
}

// TransactionFilter narrows an audit-log query.  Zero values mean "no
// constraint"; Limit of 0 falls back to the store's default page size.
type TransactionFilter struct {
    TicketTypeID  string
    Type          TransactionType
    Channel       Channel
    RelatedHoldID string
    From          time.Time
    To            time.Time
    Limit         int
}
