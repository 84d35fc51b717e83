package inventory

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/ticketflow/inventory/internal/config"
    "github.com/ticketflow/inventory/internal/model"
)

func testSweeper(e *testEngine, batch int) *Sweeper {
    return NewSweeper(e.manager, e.holds, e.clk, config.SweeperConfig{
        Enabled:   true,
        Interval:  5 * time.Minute,
        BatchSize: batch,
    })
}

func TestSweepReclaimsExpiredHolds(t *testing.T) {
    e := newTestEngine(t, "tt-1", 10)
    ctx := context.Background()

    resA, err := e.manager.RequestHold(ctx, holdReq("tt-1", "sess-a", 3))
    require.NoError(t, err)
    cashReq := holdReq("tt-1", "sess-b", 2)
    cashReq.Channel = model.ChannelCash
    resB, err := e.manager.RequestHold(ctx, cashReq)
    require.NoError(t, err)

    // Past the online deadline but well inside the cash one.
    e.clk.Advance(20 * time.Minute)

    s := testSweeper(e, 100)
    expired, err := s.SweepOnce(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, expired)

    holdA, err := e.holds.GetHold(ctx, resA.Hold.ID)
    require.NoError(t, err)
    assert.Equal(t, model.HoldStatusExpired, holdA.Status)
    holdB, err := e.holds.GetHold(ctx, resB.Hold.ID)
    require.NoError(t, err)
    assert.Equal(t, model.HoldStatusActive, holdB.Status)

    inv := e.inventory(t, "tt-1")
    assert.Equal(t, 2, inv.HeldQuantity)
    assert.Equal(t, 8, inv.AvailableQuantity())

    txs, err := e.audit.Query(ctx, model.TransactionFilter{TicketTypeID: "tt-1", Type: model.TxHoldExpire})
    require.NoError(t, err)
    require.Len(t, txs, 1)
    assert.Equal(t, 3, txs[0].Quantity)
}

// Sweeping twice over the same backlog reclaims once: the second cycle finds
// no active holds past their deadline.
func TestSweepIdempotent(t *testing.T) {
    e := newTestEngine(t, "tt-1", 10)
    ctx := context.Background()

    _, err := e.manager.RequestHold(ctx, holdReq("tt-1", "sess-a", 4))
    require.NoError(t, err)
    e.clk.Advance(time.Hour)

    s := testSweeper(e, 100)
    first, err := s.SweepOnce(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, first)

    second, err := s.SweepOnce(ctx)
    require.NoError(t, err)
    assert.Equal(t, 0, second)

    inv := e.inventory(t, "tt-1")
    assert.Equal(t, 0, inv.HeldQuantity)
}

// A hold released by its owner between listing and expiry is left alone; the
// transition guard makes the sweep a no-op for it.
func TestSweepDoesNotDoubleReclaimReleased(t *testing.T) {
    e := newTestEngine(t, "tt-1", 10)
    ctx := context.Background()

    res, err := e.manager.RequestHold(ctx, holdReq("tt-1", "sess-a", 4))
    require.NoError(t, err)
    e.clk.Advance(time.Hour)
    require.NoError(t, e.manager.ReleaseHold(ctx, res.Hold.ID))

    s := testSweeper(e, 100)
    expired, err := s.SweepOnce(ctx)
    require.NoError(t, err)
    assert.Equal(t, 0, expired)

    inv := e.inventory(t, "tt-1")
    assert.Equal(t, 0, inv.HeldQuantity)
    assert.Equal(t, 10, inv.AvailableQuantity())
}

func TestSweepHonorsBatchSize(t *testing.T) {
    e := newTestEngine(t, "tt-1", 10)
    ctx := context.Background()

    for i := 0; i < 5; i++ {
        _, err := e.manager.RequestHold(ctx, holdReq("tt-1", "sess-a", 1))
        require.NoError(t, err)
    }
    e.clk.Advance(time.Hour)

    s := testSweeper(e, 2)
    expired, err := s.SweepOnce(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, expired)

    // The remainder is picked up by subsequent cycles.
    expired, err = s.SweepOnce(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, expired)
    expired, err = s.SweepOnce(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, expired)

    inv := e.inventory(t, "tt-1")
    assert.Equal(t, 0, inv.HeldQuantity)
}

func TestRunStopsOnContextCancel(t *testing.T) {
    e := newTestEngine(t, "tt-1", 10)
    s := NewSweeper(e.manager, e.holds, e.clk, config.SweeperConfig{
        Enabled:   true,
        Interval:  time.Millisecond,
        BatchSize: 10,
    })

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        s.Run(ctx)
        close(done)
    }()
    cancel()

    select {
    case <-done:
    case <-time.After(time.Second):
        t.Fatal("sweeper did not stop on context cancellation")
    }
}
