package repository // repository implements MySQL persistence for the inventory engine

import (
    "context"       // context for managing deadlines
    "database/sql"  // sql provides DB interfaces
    "errors"        // errors.As for driver error inspection
    "fmt"           // building the bulk IN clause
    "strings"       // joining placeholders

    "github.com/go-sql-driver/mysql" // driver error codes (duplicate key)

    "github.com/ticketflow/inventory/internal/model"
)

// InventoryRepo provides data access to the ticket_inventory table, the
// single source of truth for capacity/sold/held counters.  Every mutation is
// conditional on a version match: the UPDATE carries the expected version and
// the full invariant in its WHERE clause, so a row can never be driven into
// an inconsistent state even under concurrent writers.  No method takes an
// exclusive lock.
type InventoryRepo struct {
    db *sql.DB
}

// NewInventoryRepo returns an InventoryRepo bound to the provided database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const inventoryColumns = `ticket_type_id, event_id, total_quantity, sold_quantity, held_quantity, version, created_at, updated_at`

func scanInventory(row interface{ Scan(...any) error }) (*model.TicketInventory, error) {
    var ti model.TicketInventory
    err := row.Scan(&ti.TicketTypeID, &ti.EventID, &ti.TotalQuantity, &ti.SoldQuantity,
        &ti.HeldQuantity, &ti.Version, &ti.CreatedAt, &ti.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &ti, nil
}

// CreateInventory inserts the ledger row for a newly defined ticket type.
// Sold and held start at zero and version at one.  A duplicate ticket type
// maps to model.ErrAlreadyExists.
func (r *InventoryRepo) CreateInventory(ctx context.Context, inv *model.TicketInventory) error {
    const q = `INSERT INTO ticket_inventory
               (ticket_type_id, event_id, total_quantity, sold_quantity, held_quantity, version)
               VALUES (?, ?, ?, 0, 0, 1)`
    _, err := r.db.ExecContext(ctx, q, inv.TicketTypeID, inv.EventID, inv.TotalQuantity)
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == 1062 {
            return model.ErrAlreadyExists
        }
        return err
    }
    return nil
}

// GetInventory fetches the current ledger state for one ticket type.
func (r *InventoryRepo) GetInventory(ctx context.Context, ticketTypeID string) (*model.TicketInventory, error) {
    q := `SELECT ` + inventoryColumns + ` FROM ticket_inventory WHERE ticket_type_id = ?`
    ti, err := scanInventory(r.db.QueryRowContext(ctx, q, ticketTypeID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, model.ErrNotFound
    }
    return ti, err
}

// GetInventoryBulk fetches ledger state for several ticket types at once.
// Unknown IDs are silently absent from the result.
func (r *InventoryRepo) GetInventoryBulk(ctx context.Context, ticketTypeIDs []string) ([]*model.TicketInventory, error) {
    if len(ticketTypeIDs) == 0 {
        return nil, nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ticketTypeIDs)), ",")
    q := fmt.Sprintf(`SELECT %s FROM ticket_inventory WHERE ticket_type_id IN (%s)`,
        inventoryColumns, placeholders)
    args := make([]any, 0, len(ticketTypeIDs))
    for _, id := range ticketTypeIDs {
        args = append(args, id)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []*model.TicketInventory
    for rows.Next() {
        ti, err := scanInventory(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, ti)
    }
    return out, rows.Err()
}

// ListInventoryByEvent returns all ticket-type ledgers belonging to an event,
// ordered by ticket type for stable summaries.
func (r *InventoryRepo) ListInventoryByEvent(ctx context.Context, eventID string) ([]*model.TicketInventory, error) {
    q := `SELECT ` + inventoryColumns + ` FROM ticket_inventory WHERE event_id = ? ORDER BY ticket_type_id`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []*model.TicketInventory
    for rows.Next() {
        ti, err := scanInventory(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, ti)
    }
    return out, rows.Err()
}

// TryMutate applies sold/held deltas if and only if the stored version equals
// expectedVersion and the post-mutation invariant holds.  The whole condition
// lives in the UPDATE's WHERE clause, so the check and the write are one
// atomic statement; there is no partial application.  When zero rows match,
// the row is re-read once to tell the caller which precondition failed:
// model.ErrNotFound, model.ErrVersionConflict or model.ErrInvariantViolation.
func (r *InventoryRepo) TryMutate(ctx context.Context, ticketTypeID string, deltaSold, deltaHeld int, expectedVersion uint64) (*model.TicketInventory, error) {
    const q = `UPDATE ticket_inventory
               SET sold_quantity = sold_quantity + ?,
                   held_quantity = held_quantity + ?,
                   version       = version + 1,
                   updated_at    = UTC_TIMESTAMP()
               WHERE ticket_type_id = ?
                 AND version = ?
                 AND sold_quantity + ? >= 0
                 AND held_quantity + ? >= 0
                 AND sold_quantity + held_quantity + ? <= total_quantity`
    res, err := r.db.ExecContext(ctx, q,
        deltaSold, deltaHeld, ticketTypeID, expectedVersion,
        deltaSold, deltaHeld, deltaSold+deltaHeld)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, r.classifyRejection(ctx, ticketTypeID, expectedVersion)
    }
    return r.GetInventory(ctx, ticketTypeID)
}

// AdjustCapacity sets a new total capacity under the same version-checked
// regime.  The WHERE clause refuses any total below the committed
// sold + held, so active holds are never stranded by a shrink.
func (r *InventoryRepo) AdjustCapacity(ctx context.Context, ticketTypeID string, newTotal int, expectedVersion uint64) (*model.TicketInventory, error) {
    const q = `UPDATE ticket_inventory
               SET total_quantity = ?,
                   version        = version + 1,
                   updated_at     = UTC_TIMESTAMP()
               WHERE ticket_type_id = ?
                 AND version = ?
                 AND ? >= 0
                 AND sold_quantity + held_quantity <= ?`
    res, err := r.db.ExecContext(ctx, q, newTotal, ticketTypeID, expectedVersion, newTotal, newTotal)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, r.classifyRejection(ctx, ticketTypeID, expectedVersion)
    }
    return r.GetInventory(ctx, ticketTypeID)
}

// classifyRejection decides why a guarded UPDATE matched no rows.  A missing
// row is NotFound, a moved version is VersionConflict, anything else means
// the invariant guard refused the deltas.
func (r *InventoryRepo) classifyRejection(ctx context.Context, ticketTypeID string, expectedVersion uint64) error {
    current, err := r.GetInventory(ctx, ticketTypeID)
    if err != nil {
        return err
    }
    if current.Version != expectedVersion {
        return model.ErrVersionConflict
    }
    return model.ErrInvariantViolation
}
