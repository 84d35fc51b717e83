package inventory

import (
    "context"
    "fmt"

    "github.com/ticketflow/inventory/internal/model"
)

// Bulk update actions accepted by the admin surface.
const (
    BulkSetCapacity  = "set_capacity"
    BulkAddCapacity  = "add_capacity"
    BulkForceRelease = "force_release"
)

// BulkOperation is one step of an admin bulk update.  Quantity is the new
// total for set_capacity, the signed delta for add_capacity, and ignored for
// force_release.
type BulkOperation struct {
    Action       string `json:"action"`
    TicketTypeID string `json:"ticket_type_id"`
    Quantity     int    `json:"quantity"`
}

// BulkOperationResult reports one operation's outcome.
type BulkOperationResult struct {
    Index        int    `json:"index"`
    Action       string `json:"action"`
    TicketTypeID string `json:"ticket_type_id"`
    OK           bool   `json:"ok"`
    Error        string `json:"error,omitempty"`
    Released     int    `json:"released,omitempty"` // holds released by force_release
}

// BulkResult aggregates a whole bulk update.
type BulkResult struct {
    Succeeded int                   `json:"succeeded"`
    Failed    int                   `json:"failed"`
    Results   []BulkOperationResult `json:"results"`
}

// BulkUpdate runs admin operations in order with per-operation isolation:
// one failed step is reported in its slot and the rest still run.
func (m *Manager) BulkUpdate(ctx context.Context, ops []BulkOperation, actorID string) *BulkResult {
    res := &BulkResult{Results: make([]BulkOperationResult, 0, len(ops))}
    for i, op := range ops {
        r := BulkOperationResult{Index: i, Action: op.Action, TicketTypeID: op.TicketTypeID}
        err := m.applyBulkOp(ctx, op, actorID, &r)
        if err != nil {
            r.Error = err.Error()
            res.Failed++
        } else {
            r.OK = true
            res.Succeeded++
        }
        res.Results = append(res.Results, r)
    }
    return res
}

func (m *Manager) applyBulkOp(ctx context.Context, op BulkOperation, actorID string, r *BulkOperationResult) error {
    switch op.Action {
    case BulkSetCapacity:
        _, err := m.AdjustCapacity(ctx, op.TicketTypeID, op.Quantity, actorID)
        return err
    case BulkAddCapacity:
        inv, err := m.ledger.GetInventory(ctx, op.TicketTypeID)
        if err != nil {
            return err
        }
        _, err = m.AdjustCapacity(ctx, op.TicketTypeID, inv.TotalQuantity+op.Quantity, actorID)
        return err
    case BulkForceRelease:
        holds, err := m.holds.ListActiveByTicketType(ctx, op.TicketTypeID)
        if err != nil {
            return err
        }
        for _, h := range holds {
            if err := m.ReleaseHold(ctx, h.ID); err != nil {
                return fmt.Errorf("release %s: %w", h.ID, err)
            }
            r.Released++
        }
        return nil
    default:
        return fmt.Errorf("%w: unknown bulk action %q", model.ErrInvalidRequest, op.Action)
    }
}
