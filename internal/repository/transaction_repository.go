package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/ticketflow/inventory/internal/model"
)

// defaultQueryLimit bounds audit queries that do not specify their own limit.
const defaultQueryLimit = 200

// TransactionRepo provides access to the inventory_transactions table, the
// append-only reconciliation trail.  It exposes Append and Query only: rows
// are never updated or deleted, and corrections are expressed as new rows
// (a refund rather than an edited purchase).
type TransactionRepo struct {
    db *sql.DB
}

// NewTransactionRepo returns a TransactionRepo bound to the provided database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// Append inserts one transaction row.
func (r *TransactionRepo) Append(ctx context.Context, tx *model.InventoryTransaction) error {
    const q = `INSERT INTO inventory_transactions
               (id, type, ticket_type_id, quantity, related_hold_id, channel, actor_id, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    var holdID, actorID any
    if tx.RelatedHoldID != nil {
        holdID = *tx.RelatedHoldID
    }
    if tx.ActorID != nil {
        actorID = *tx.ActorID
    }
    _, err := r.db.ExecContext(ctx, q, tx.ID, string(tx.Type), tx.TicketTypeID,
        tx.Quantity, holdID, string(tx.Channel), actorID, tx.CreatedAt.UTC())
    return err
}

// Query returns transactions matching the filter, oldest first so a replay
// of the result reproduces ledger state in order.
func (r *TransactionRepo) Query(ctx context.Context, f model.TransactionFilter) ([]*model.InventoryTransaction, error) {
    q := `SELECT id, type, ticket_type_id, quantity, related_hold_id, channel, actor_id, created_at
          FROM inventory_transactions WHERE 1=1`
    var args []any
    if f.TicketTypeID != "" {
        q += ` AND ticket_type_id = ?`
        args = append(args, f.TicketTypeID)
    }
    if f.Type != "" {
        q += ` AND type = ?`
        args = append(args, string(f.Type))
    }
    if f.Channel != "" {
        q += ` AND channel = ?`
        args = append(args, string(f.Channel))
    }
    if f.RelatedHoldID != "" {
        q += ` AND related_hold_id = ?`
        args = append(args, f.RelatedHoldID)
    }
    if !f.From.IsZero() {
        q += ` AND created_at >= ?`
        args = append(args, f.From.UTC())
    }
    if !f.To.IsZero() {
        q += ` AND created_at <= ?`
        args = append(args, f.To.UTC())
    }
    limit := f.Limit
    if limit <= 0 {
        limit = defaultQueryLimit
    }
    q += ` ORDER BY created_at, id LIMIT ?`
    args = append(args, limit)

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []*model.InventoryTransaction
    for rows.Next() {
        var tx model.InventoryTransaction
        var holdID, actorID sql.NullString
        var createdAt time.Time
        if err := rows.Scan(&tx.ID, &tx.Type, &tx.TicketTypeID, &tx.Quantity,
            &holdID, &tx.Channel, &actorID, &createdAt); err != nil {
            return nil, err
        }
        if holdID.Valid {
            tx.RelatedHoldID = &holdID.String
        }
        if actorID.Valid {
            tx.ActorID = &actorID.String
        }
        tx.CreatedAt = createdAt
        out = append(out, &tx)
    }
    return out, rows.Err()
}
