package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/ticketflow/inventory/internal/model"
)

// HoldRepo provides data access to the inventory_holds table.  Holds are
// never deleted: they move through guarded status transitions so that the
// audit trail keeps every terminal hold.  All timestamps are UTC.
type HoldRepo struct {
    db *sql.DB
}

// NewHoldRepo returns a HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

const holdColumns = `id, ticket_type_id, event_id, quantity, session_id, user_id, channel, status, created_at, expires_at`

func scanHold(row interface{ Scan(...any) error }) (*model.InventoryHold, error) {
    var h model.InventoryHold
    var userID sql.NullString
    err := row.Scan(&h.ID, &h.TicketTypeID, &h.EventID, &h.Quantity, &h.SessionID,
        &userID, &h.Channel, &h.Status, &h.CreatedAt, &h.ExpiresAt)
    if err != nil {
        return nil, err
    }
    if userID.Valid {
        h.UserID = &userID.String
    }
    return &h, nil
}

// CreateHold inserts a new hold row.  The caller supplies the ID and all
// timestamps so that the engine's clock is the only source of time.
func (r *HoldRepo) CreateHold(ctx context.Context, h *model.InventoryHold) error {
    const q = `INSERT INTO inventory_holds
               (id, ticket_type_id, event_id, quantity, session_id, user_id, channel, status, created_at, expires_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var userID any
    if h.UserID != nil {
        userID = *h.UserID
    }
    _, err := r.db.ExecContext(ctx, q, h.ID, h.TicketTypeID, h.EventID, h.Quantity,
        h.SessionID, userID, string(h.Channel), string(h.Status), h.CreatedAt.UTC(), h.ExpiresAt.UTC())
    return err
}

// GetHold fetches a single hold by ID.
func (r *HoldRepo) GetHold(ctx context.Context, id string) (*model.InventoryHold, error) {
    q := `SELECT ` + holdColumns + ` FROM inventory_holds WHERE id = ?`
    h, err := scanHold(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, model.ErrHoldNotFound
    }
    return h, err
}

// ListActiveBySession returns all active holds owned by a session, optionally
// narrowed to one ticket type.  Used to release a whole cart on page unload
// and to let a returning client resume its session.
func (r *HoldRepo) ListActiveBySession(ctx context.Context, sessionID, ticketTypeID string) ([]*model.InventoryHold, error) {
    q := `SELECT ` + holdColumns + ` FROM inventory_holds WHERE session_id = ? AND status = ?`
    args := []any{sessionID, string(model.HoldStatusActive)}
    if ticketTypeID != "" {
        q += ` AND ticket_type_id = ?`
        args = append(args, ticketTypeID)
    }
    q += ` ORDER BY created_at`
    return r.listHolds(ctx, q, args...)
}

// ListActiveByTicketType returns all active holds against a ticket type.
// Used by the admin force-release bulk operation.
func (r *HoldRepo) ListActiveByTicketType(ctx context.Context, ticketTypeID string) ([]*model.InventoryHold, error) {
    q := `SELECT ` + holdColumns + ` FROM inventory_holds WHERE ticket_type_id = ? AND status = ? ORDER BY created_at`
    return r.listHolds(ctx, q, ticketTypeID, string(model.HoldStatusActive))
}

// ListExpired returns up to limit active holds whose deadline has passed at
// the given instant, oldest first.  The (status, expires_at) index keeps the
// sweeper's scan cheap.
func (r *HoldRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*model.InventoryHold, error) {
    q := `SELECT ` + holdColumns + ` FROM inventory_holds
          WHERE status = ? AND expires_at <= ? ORDER BY expires_at LIMIT ?`
    return r.listHolds(ctx, q, string(model.HoldStatusActive), now.UTC(), limit)
}

// TransitionStatus atomically moves a hold from one status to another.  It
// reports whether this caller won the transition; losing (the hold was
// already in another state) is not an error.  Winning the transition out of
// "active" is what licenses the corresponding ledger mutation, which is how
// release, expiry and completion stay mutually exclusive and idempotent.
func (r *HoldRepo) TransitionStatus(ctx context.Context, id string, from, to model.HoldStatus) (bool, error) {
    const q = `UPDATE inventory_holds SET status = ? WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, string(to), id, string(from))
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

func (r *HoldRepo) listHolds(ctx context.Context, q string, args ...any) ([]*model.InventoryHold, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []*model.InventoryHold
    for rows.Next() {
        h, err := scanHold(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, h)
    }
    return out, rows.Err()
}
