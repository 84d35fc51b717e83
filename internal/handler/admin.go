package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ticketflow/inventory/internal/inventory"
    "github.com/ticketflow/inventory/internal/model"
)

// AdminHandler groups the privileged operations: ticket-type provisioning,
// capacity adjustment, bulk updates, refunds, audit-log queries and
// reconciliation.  All routes sit behind JWT authentication plus the ADMIN
// role, so handlers can take the actor identity from the context.
type AdminHandler struct {
    Manager *inventory.Manager
    Audit   *inventory.AuditLog
    Ledger  inventory.LedgerStore
}

// NewAdminHandler constructs an AdminHandler.  All dependencies must be
// non-nil.
func NewAdminHandler(m *inventory.Manager, a *inventory.AuditLog, l inventory.LedgerStore) *AdminHandler {
    if m == nil || a == nil || l == nil {
        panic("nil dependency passed to NewAdminHandler")
    }
    return &AdminHandler{Manager: m, Audit: a, Ledger: l}
}

// CreateTicketType handles POST /v1/admin/ticket-types.  It provisions the
// ledger row for a new ticket type with its opening capacity.
func (h *AdminHandler) CreateTicketType(c echo.Context) error {
    var body struct {
        TicketTypeID  string `json:"ticket_type_id"`
        EventID       string `json:"event_id"`
        TotalQuantity int    `json:"total_quantity"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    inv, err := h.Manager.CreateTicketType(c.Request().Context(), body.TicketTypeID, body.EventID, body.TotalQuantity, actorID(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, inventoryJSON(inv))
}

// AdjustCapacity handles PUT /v1/admin/ticket-types/:id/capacity.  Reducing
// capacity below sold + held is rejected with 409; active holds are never
// reconciled away by an admin edit.
func (h *AdminHandler) AdjustCapacity(c echo.Context) error {
    ticketTypeID := c.Param("id")
    if ticketTypeID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket type id is required"})
    }
    var body struct {
        TotalQuantity int `json:"total_quantity"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    inv, err := h.Manager.AdjustCapacity(c.Request().Context(), ticketTypeID, body.TotalQuantity, actorID(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, inventoryJSON(inv))
}

// BulkUpdate handles POST /v1/admin/bulk.  Operations run in order with
// per-operation isolation; the response reports each slot's outcome and the
// overall status is 200 when everything succeeded, 207 otherwise.
func (h *AdminHandler) BulkUpdate(c echo.Context) error {
    var body struct {
        Operations []inventory.BulkOperation `json:"operations"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.Operations) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "operations array is required"})
    }
    res := h.Manager.BulkUpdate(c.Request().Context(), body.Operations, actorID(c))
    status := http.StatusOK
    if res.Failed > 0 {
        status = http.StatusMultiStatus
    }
    return c.JSON(status, res)
}

// RefundPurchase handles POST /v1/admin/holds/:id/refund.  The correction is
// recorded as a new refund transaction; a second refund for the same hold
// returns 409.
func (h *AdminHandler) RefundPurchase(c echo.Context) error {
    holdID := c.Param("id")
    if holdID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "hold id is required"})
    }
    if err := h.Manager.RefundPurchase(c.Request().Context(), holdID, actorID(c)); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"refunded": true, "hold_id": holdID})
}

// QueryTransactions handles GET /v1/admin/transactions.  Filters arrive as
// query parameters: ticket_type_id, type, channel, hold_id, from, to
// (RFC 3339) and limit.
func (h *AdminHandler) QueryTransactions(c echo.Context) error {
    filter := model.TransactionFilter{
        TicketTypeID:  c.QueryParam("ticket_type_id"),
        Type:          model.TransactionType(c.QueryParam("type")),
        Channel:       model.Channel(c.QueryParam("channel")),
        RelatedHoldID: c.QueryParam("hold_id"),
    }
    if raw := c.QueryParam("from"); raw != "" {
        t, err := time.Parse(time.RFC3339, raw)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC 3339"})
        }
        filter.From = t
    }
    if raw := c.QueryParam("to"); raw != "" {
        t, err := time.Parse(time.RFC3339, raw)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC 3339"})
        }
        filter.To = t
    }
    if raw := c.QueryParam("limit"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
        }
        filter.Limit = n
    }
    txs, err := h.Audit.Query(c.Request().Context(), filter)
    if err != nil {
        return respondError(c, err)
    }
    out := make([]echo.Map, 0, len(txs))
    for _, tx := range txs {
        out = append(out, transactionJSON(tx))
    }
    return c.JSON(http.StatusOK, echo.Map{"transactions": out, "count": len(out)})
}

// Reconcile handles GET /v1/admin/ticket-types/:id/reconcile.  It replays the
// transaction log for the ticket type and reports any drift against the live
// ledger row.  Drift is surfaced, never repaired here.
func (h *AdminHandler) Reconcile(c echo.Context) error {
    ticketTypeID := c.Param("id")
    if ticketTypeID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket type id is required"})
    }
    report, err := h.Audit.Reconcile(c.Request().Context(), h.Ledger, ticketTypeID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "ticket_type_id": report.TicketTypeID,
        "consistent":     report.Consistent,
        "ledger": echo.Map{
            "sold":     report.LedgerSold,
            "held":     report.LedgerHeld,
            "capacity": report.LedgerCapacity,
        },
        "replay": echo.Map{
            "sold":     report.ReplaySold,
            "held":     report.ReplayHeld,
            "capacity": report.ReplayCapacity,
        },
    })
}

// inventoryJSON renders a ledger row for admin responses.
func inventoryJSON(inv *model.TicketInventory) echo.Map {
    return echo.Map{
        "ticket_type_id": inv.TicketTypeID,
        "event_id":       inv.EventID,
        "total_quantity": inv.TotalQuantity,
        "sold_quantity":  inv.SoldQuantity,
        "held_quantity":  inv.HeldQuantity,
        "available":      inv.AvailableQuantity(),
        "version":        inv.Version,
    }
}
