package handler

// common.go holds helpers shared across handler files: the mapping from
// engine sentinel errors to HTTP responses and the JSON shapes for holds and
// purchases.  Every handler funnels engine errors through respondError so the
// error contract stays uniform across endpoints.

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ticketflow/inventory/internal/model"
)

// respondError translates an engine error into the matching HTTP response.
// Unknown errors become a 500 with a generic message so internals never leak
// to buyers.
func respondError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, model.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
    case errors.Is(err, model.ErrHoldNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
    case errors.Is(err, model.ErrInsufficientInventory):
        return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient inventory"})
    case errors.Is(err, model.ErrHoldNotActive):
        return c.JSON(http.StatusConflict, echo.Map{"error": "hold is not active"})
    case errors.Is(err, model.ErrInvariantViolation):
        return c.JSON(http.StatusConflict, echo.Map{"error": "operation would violate inventory invariants"})
    case errors.Is(err, model.ErrAlreadyExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "ticket type already exists"})
    case errors.Is(err, model.ErrAlreadyRefunded):
        return c.JSON(http.StatusConflict, echo.Map{"error": "purchase already refunded"})
    case errors.Is(err, model.ErrInvalidQuantity):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
    case errors.Is(err, model.ErrUnknownChannel):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown sales channel"})
    case errors.Is(err, model.ErrInvalidRequest):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, model.ErrRetryExhausted):
        // Contention exceeded the retry budget; the client should back off
        // and try again.
        c.Response().Header().Set("Retry-After", "1")
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "inventory contention, retry shortly"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

// holdJSON renders a hold for API responses.
func holdJSON(h *model.InventoryHold) echo.Map {
    out := echo.Map{
        "id":             h.ID,
        "ticket_type_id": h.TicketTypeID,
        "event_id":       h.EventID,
        "quantity":       h.Quantity,
        "session_id":     h.SessionID,
        "channel":        string(h.Channel),
        "status":         string(h.Status),
        "created_at":     h.CreatedAt.Format(time.RFC3339),
        "expires_at":     h.ExpiresAt.Format(time.RFC3339),
    }
    if h.UserID != nil {
        out["user_id"] = *h.UserID
    }
    return out
}

// transactionJSON renders one audit-log row.
func transactionJSON(tx *model.InventoryTransaction) echo.Map {
    out := echo.Map{
        "id":             tx.ID,
        "type":           string(tx.Type),
        "ticket_type_id": tx.TicketTypeID,
        "quantity":       tx.Quantity,
        "channel":        string(tx.Channel),
        "created_at":     tx.CreatedAt.Format(time.RFC3339),
    }
    if tx.RelatedHoldID != nil {
        out["related_hold_id"] = *tx.RelatedHoldID
    }
    if tx.ActorID != nil {
        out["actor_id"] = *tx.ActorID
    }
    return out
}

// actorID extracts the admin identity placed in the context by the JWT
// middleware.  Admin routes sit behind that middleware, so an empty result
// only happens in tests driving handlers directly.
func actorID(c echo.Context) string {
    if v := c.Get("actor_id"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "unknown"
}
