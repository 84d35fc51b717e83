package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/ticketflow/inventory/internal/inventory"
    "github.com/ticketflow/inventory/internal/model"
)

// HoldHandler exposes the buyer-facing reservation lifecycle: create a hold,
// list and release a session's holds, release a single hold, and complete a
// purchase.  All writes go through the manager; handlers only translate HTTP
// into engine calls.
type HoldHandler struct {
    Manager *inventory.Manager
}

// NewHoldHandler constructs a HoldHandler.  The manager must be non-nil.
func NewHoldHandler(m *inventory.Manager) *HoldHandler {
    if m == nil {
        panic("nil manager passed to NewHoldHandler")
    }
    return &HoldHandler{Manager: m}
}

// CreateHold handles POST /v1/ticket-types/:id/holds.  The body carries the
// quantity, channel and optional user; the session ID comes from the body or
// the X-Session-ID header.  A full grant returns 201.  A partial grant also
// returns 201 with granted < requested so the client can decide whether to
// keep or release the remainder.  A zero grant returns 409 with the observed
// availability.
func (h *HoldHandler) CreateHold(c echo.Context) error {
    ticketTypeID := c.Param("id")
    if ticketTypeID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket type id is required"})
    }
    var body struct {
        Quantity  int     `json:"quantity"`
        SessionID string  `json:"session_id"`
        UserID    *string `json:"user_id"`
        Channel   string  `json:"channel"`
        Priority  int     `json:"priority"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.SessionID == "" {
        body.SessionID = c.Request().Header.Get("X-Session-ID")
    }
    if body.Channel == "" {
        body.Channel = string(model.ChannelOnline)
    }

    res, err := h.Manager.RequestHold(c.Request().Context(), inventory.HoldRequest{
        TicketTypeID: ticketTypeID,
        Quantity:     body.Quantity,
        SessionID:    body.SessionID,
        UserID:       body.UserID,
        Channel:      model.Channel(body.Channel),
        Priority:     body.Priority,
    })
    if err != nil {
        if res != nil {
            // Rejected for scarcity; tell the caller what is still there.
            return c.JSON(http.StatusConflict, echo.Map{
                "error":     "insufficient inventory",
                "requested": res.Requested,
                "available": res.Available,
            })
        }
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "hold":      holdJSON(res.Hold),
        "requested": res.Requested,
        "granted":   res.Granted,
        "available": res.Available,
        "partial":   res.Granted < res.Requested,
    })
}

// ListSessionHolds handles GET /v1/sessions/:id/holds.  It returns the
// session's active holds so a returning client can resume its cart.
func (h *HoldHandler) ListSessionHolds(c echo.Context) error {
    sessionID := c.Param("id")
    if sessionID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "session id is required"})
    }
    holds, err := h.Manager.SessionHolds(c.Request().Context(), sessionID)
    if err != nil {
        return respondError(c, err)
    }
    out := make([]echo.Map, 0, len(holds))
    for _, hold := range holds {
        out = append(out, holdJSON(hold))
    }
    return c.JSON(http.StatusOK, echo.Map{"holds": out})
}

// ReleaseSession handles DELETE /v1/sessions/:id/holds.  It releases every
// active hold owned by the session, optionally narrowed to one ticket type
// with ?ticket_type_id=.  Used on cart teardown and page unload.
func (h *HoldHandler) ReleaseSession(c echo.Context) error {
    sessionID := c.Param("id")
    if sessionID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "session id is required"})
    }
    released, err := h.Manager.ReleaseSession(c.Request().Context(), sessionID, c.QueryParam("ticket_type_id"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// ReleaseHold handles DELETE /v1/holds/:id.  Releasing a hold that already
// reached a terminal state is a no-op, so retried deletes from flaky clients
// succeed with the same 204.
func (h *HoldHandler) ReleaseHold(c echo.Context) error {
    holdID := c.Param("id")
    if holdID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "hold id is required"})
    }
    if err := h.Manager.ReleaseHold(c.Request().Context(), holdID); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// CompleteHold handles POST /v1/holds/:id/complete.  Called by the payment
// flow once payment is authorized.  A hold that expired or was already
// finished returns 409 and the buyer has to re-select tickets.
func (h *HoldHandler) CompleteHold(c echo.Context) error {
    holdID := c.Param("id")
    if holdID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "hold id is required"})
    }
    res, err := h.Manager.CompleteHold(c.Request().Context(), holdID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "hold_id":        res.HoldID,
        "ticket_type_id": res.TicketTypeID,
        "event_id":       res.EventID,
        "quantity":       res.Quantity,
        "sold":           res.SoldQuantity,
        "available":      res.Available,
    })
}
