package inventory

import (
    "context"
    "log"
    "time"

    "github.com/ticketflow/inventory/internal/clock"
    "github.com/ticketflow/inventory/internal/config"
)

// Sweeper reclaims abandoned holds without requiring the abandoning client
// to take any action.  It polls on a fixed interval, so expiry is a soft
// deadline: a hold may stay nominally active for up to one interval past
// ExpiresAt before reclamation, which is why CompleteHold re-checks the
// deadline itself.
//
// Sweeping is safe to run concurrently with itself and with the manager:
// expiry goes through the same guarded status transition as release, so an
// already-finished hold is a no-op.
type Sweeper struct {
    manager *Manager
    holds   HoldStore
    clk     clock.Clock
    cfg     config.SweeperConfig
}

// NewSweeper constructs a Sweeper over the given manager and hold store.
func NewSweeper(manager *Manager, holds HoldStore, clk clock.Clock, cfg config.SweeperConfig) *Sweeper {
    return &Sweeper{manager: manager, holds: holds, clk: clk, cfg: cfg}
}

// Run sweeps on the configured interval until ctx is cancelled.  One sweep
// runs immediately on startup to clear any backlog from downtime.
func (s *Sweeper) Run(ctx context.Context) {
    if !s.cfg.Enabled {
        log.Printf("sweeper: disabled")
        return
    }
    log.Printf("sweeper: running every %s (batch %d)", s.cfg.Interval, s.cfg.BatchSize)
    s.sweep(ctx)
    ticker := time.NewTicker(s.cfg.Interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Printf("sweeper: stopping")
            return
        case <-ticker.C:
            s.sweep(ctx)
        }
    }
}

func (s *Sweeper) sweep(ctx context.Context) {
    expired, err := s.SweepOnce(ctx)
    if err != nil {
        log.Printf("sweeper: cycle failed: %v", err)
        return
    }
    if expired > 0 {
        log.Printf("sweeper: reclaimed %d expired holds", expired)
    }
}

// SweepOnce expires every active hold whose deadline has passed, up to the
// configured batch size, and returns how many were reclaimed.  A failure on
// one hold is logged and skipped; a single bad row must not abort the cycle.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
    stale, err := s.holds.ListExpired(ctx, s.clk.Now(), s.cfg.BatchSize)
    if err != nil {
        return 0, err
    }
    expired := 0
    for _, h := range stale {
        if err := s.manager.ExpireHold(ctx, h.ID); err != nil {
            log.Printf("sweeper: expire %s (%s x%d) failed: %v", h.ID, h.TicketTypeID, h.Quantity, err)
            continue
        }
        expired++
    }
    return expired, nil
}
