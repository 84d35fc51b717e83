package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/ticketflow/inventory/internal/config"
    "github.com/ticketflow/inventory/internal/handler"
    "github.com/ticketflow/inventory/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the buyer-facing endpoints: availability reads and
// the hold lifecycle.  These routes carry no JWT; holds are owned by the
// caller's session identifier.  The token-bucket limiter applies to the whole
// group so an on-sale burst from one client cannot crowd out the rest.
func RegisterPublic(e *echo.Echo, s *handler.StatusHandler, h *handler.HoldHandler, rl config.RateLimitConfig, rdb *redis.Client) {
    g := e.Group("/v1")
    g.Use(middleware.NewTokenBucket(rl, rdb))

    // Availability reads.  Served from the façade, possibly via its cache.
    g.GET("/ticket-types/:id/status", s.GetStatus)
    g.GET("/status", s.GetBulkStatus)
    g.GET("/events/:id/status", s.GetEventStatus)

    // Hold lifecycle.
    g.POST("/ticket-types/:id/holds", h.CreateHold)
    g.GET("/sessions/:id/holds", h.ListSessionHolds)
    g.DELETE("/sessions/:id/holds", h.ReleaseSession)
    g.DELETE("/holds/:id", h.ReleaseHold)
    g.POST("/holds/:id/complete", h.CompleteHold)
}

// RegisterAdmin registers the privileged surface under /v1/admin.  Every
// route requires a valid access token carrying the ADMIN role; the actor
// identity from the token ends up in the audit trail of each adjustment.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN"))

    g.POST("/ticket-types", a.CreateTicketType)
    g.PUT("/ticket-types/:id/capacity", a.AdjustCapacity)
    g.GET("/ticket-types/:id/reconcile", a.Reconcile)
    g.POST("/bulk", a.BulkUpdate)
    g.POST("/holds/:id/refund", a.RefundPurchase)
    g.GET("/transactions", a.QueryTransactions)
}
