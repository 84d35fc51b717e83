package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/ticketflow/inventory/internal/inventory"
)

// StatusHandler serves the read-only availability endpoints the selection UI
// polls.  It never touches the hold or audit stores; all reads go through the
// façade, which may answer from its short-lived cache.
type StatusHandler struct {
    Facade *inventory.StatusFacade
}

// NewStatusHandler constructs a StatusHandler.  The façade must be non-nil.
func NewStatusHandler(f *inventory.StatusFacade) *StatusHandler {
    if f == nil {
        panic("nil facade passed to NewStatusHandler")
    }
    return &StatusHandler{Facade: f}
}

// GetStatus handles GET /v1/ticket-types/:id/status.  It returns the
// availability view for a single ticket type, including the sold-out and
// low-stock flags the UI renders as badges.
func (h *StatusHandler) GetStatus(c echo.Context) error {
    id := c.Param("id")
    if id == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket type id is required"})
    }
    st, err := h.Facade.GetStatus(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// GetBulkStatus handles GET /v1/status?ids=a,b,c.  Unknown IDs are silently
// absent from the response rather than failing the whole batch, so one stale
// ID in a cart does not blank the page.
func (h *StatusHandler) GetBulkStatus(c echo.Context) error {
    raw := c.QueryParam("ids")
    if raw == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids query parameter is required"})
    }
    var ids []string
    for _, id := range strings.Split(raw, ",") {
        if id = strings.TrimSpace(id); id != "" {
            ids = append(ids, id)
        }
    }
    if len(ids) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids query parameter is required"})
    }
    statuses, err := h.Facade.GetBulkStatus(c.Request().Context(), ids)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"statuses": statuses})
}

// GetEventStatus handles GET /v1/events/:id/status.  It aggregates every
// ticket type of the event into one summary.  An event with no ticket types
// is indistinguishable from an unknown event and returns 404.
func (h *StatusHandler) GetEventStatus(c echo.Context) error {
    id := c.Param("id")
    if id == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event id is required"})
    }
    es, err := h.Facade.GetEventStatus(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, es)
}
