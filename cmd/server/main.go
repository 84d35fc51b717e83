package main // Entry point package

import (
    "context"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/ticketflow/inventory/internal/clock"
    "github.com/ticketflow/inventory/internal/config"
    "github.com/ticketflow/inventory/internal/database"
    "github.com/ticketflow/inventory/internal/handler"
    "github.com/ticketflow/inventory/internal/inventory"
    "github.com/ticketflow/inventory/internal/model"
    "github.com/ticketflow/inventory/internal/queue"
    "github.com/ticketflow/inventory/internal/repository"
    "github.com/ticketflow/inventory/internal/router"
    queue_publisher "github.com/ticketflow/inventory/internal/service"
)

func main() {
    // Load a local .env when present; real deployments set the environment
    // directly and have no such file.
    if err := godotenv.Load(); err == nil {
        log.Printf("loaded configuration from .env")
    }

    cfg := config.Load()
    policy := config.LoadHoldPolicy()
    sweepCfg := config.LoadSweeperConfig()
    facadeCfg := config.LoadFacadeConfig()
    rlCfg := config.LoadRateLimitConfig()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, config.LoadDBPool())
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    if err := database.Migrate(ctx, db); err != nil {
        log.Fatalf("migrate: %v", err)
    }

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; status cache and rate limiting disabled")
    }

    invRepo := repository.NewInventoryRepo(db)
    holdRepo := repository.NewHoldRepo(db)
    txRepo := repository.NewTransactionRepo(db)

    clk := clock.NewSystem()
    audit := inventory.NewAuditLog(txRepo)

    resolver := inventory.NewResolver(invRepo, clk, policy.ResolverWindow, policy.MaxRetries)
    resolver.OnResolution(func(res model.ConflictResolution) {
        log.Printf("resolver: %d contenders for %s, %d requested against %d available",
            len(res.Requests), res.TicketTypeID, res.AttemptedQuantity, res.AvailableQuantity)
    })

    manager := inventory.NewManager(invRepo, holdRepo, audit, resolver, clk, policy)
    facade := inventory.NewStatusFacade(invRepo, rdb, facadeCfg)

    // Every completed mutation invalidates the cached views and publishes an
    // event for downstream consumers.  Publishing is best-effort; a broker
    // outage must not fail the originating request.
    manager.OnChange(func(ctx context.Context, ev inventory.Event) {
        facade.Invalidate(ctx, ev.TicketTypeID, ev.EventID)
        go func(ev inventory.Event) {
            pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
            defer cancel()
            _ = queue_publisher.PublishInventoryEvent(pubCtx, queue.InventoryEvent{
                Type:         ev.Type,
                TicketTypeID: ev.TicketTypeID,
                EventID:      ev.EventID,
                HoldID:       ev.HoldID,
                Quantity:     ev.Quantity,
                Channel:      string(ev.Channel),
                Available:    ev.Available,
                OccurredAt:   ev.OccurredAt.UTC().Format(time.RFC3339),
            })
        }(ev)
    })

    sweeper := inventory.NewSweeper(manager, holdRepo, clk, sweepCfg)
    go sweeper.Run(ctx)

    go func() {
        if err := queue.StartInventoryConsumer(); err != nil {
            log.Printf("inventory-consumer: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    router.RegisterRoutes(e)
    router.RegisterPublic(e, handler.NewStatusHandler(facade), handler.NewHoldHandler(manager), rlCfg, rdb)
    router.RegisterAdmin(e, handler.NewAdminHandler(manager, audit, invRepo), cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    go func() {
        if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
            log.Printf("server: %v", err)
            stop()
        }
    }()

    <-ctx.Done()
    log.Printf("shutting down")

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Printf("shutdown: %v", err)
        os.Exit(1)
    }
}
