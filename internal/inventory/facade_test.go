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

func testFacadeConfig() config.FacadeConfig {
    return config.FacadeConfig{
        CacheEnabled: false,
        CacheTTL:     5 * time.Second,
        CachePrefix:  "inv",
        LowStock:     10,
        VeryLowStock: 3,
    }
}

func seedLedger(t *testing.T, rows ...*model.TicketInventory) *memLedger {
    t.Helper()
    ledger := newMemLedger()
    for _, row := range rows {
        require.NoError(t, ledger.CreateInventory(context.Background(), row))
    }
    return ledger
}

func TestGetStatusFlags(t *testing.T) {
    ledger := seedLedger(t,
        &model.TicketInventory{TicketTypeID: "plenty", EventID: "ev", TotalQuantity: 100},
        &model.TicketInventory{TicketTypeID: "low", EventID: "ev", TotalQuantity: 100, SoldQuantity: 92},
        &model.TicketInventory{TicketTypeID: "very-low", EventID: "ev", TotalQuantity: 100, SoldQuantity: 95, HeldQuantity: 3},
        &model.TicketInventory{TicketTypeID: "gone", EventID: "ev", TotalQuantity: 100, SoldQuantity: 60, HeldQuantity: 40},
    )
    f := NewStatusFacade(ledger, nil, testFacadeConfig())
    ctx := context.Background()

    st, err := f.GetStatus(ctx, "plenty")
    require.NoError(t, err)
    assert.Equal(t, 100, st.Available)
    assert.False(t, st.SoldOut)
    assert.False(t, st.LowStock)
    assert.False(t, st.VeryLowStock)

    st, err = f.GetStatus(ctx, "low")
    require.NoError(t, err)
    assert.Equal(t, 8, st.Available)
    assert.True(t, st.LowStock)
    assert.False(t, st.VeryLowStock)

    st, err = f.GetStatus(ctx, "very-low")
    require.NoError(t, err)
    assert.Equal(t, 2, st.Available)
    assert.True(t, st.LowStock)
    assert.True(t, st.VeryLowStock)

    st, err = f.GetStatus(ctx, "gone")
    require.NoError(t, err)
    assert.Equal(t, 0, st.Available)
    assert.True(t, st.SoldOut)
    assert.False(t, st.LowStock)

    _, err = f.GetStatus(ctx, "missing")
    assert.ErrorIs(t, err, model.ErrNotFound)
}

// Unknown IDs are absent from a bulk read, not an error; one stale ID in a
// cart must not blank the whole page.
func TestGetBulkStatusSkipsUnknown(t *testing.T) {
    ledger := seedLedger(t,
        &model.TicketInventory{TicketTypeID: "a", EventID: "ev", TotalQuantity: 10},
        &model.TicketInventory{TicketTypeID: "b", EventID: "ev", TotalQuantity: 20},
    )
    f := NewStatusFacade(ledger, nil, testFacadeConfig())

    statuses, err := f.GetBulkStatus(context.Background(), []string{"a", "nope", "b"})
    require.NoError(t, err)
    require.Len(t, statuses, 2)
    byID := map[string]InventoryStatus{}
    for _, st := range statuses {
        byID[st.TicketTypeID] = st
    }
    assert.Equal(t, 10, byID["a"].Total)
    assert.Equal(t, 20, byID["b"].Total)
}

func TestGetEventStatusAggregates(t *testing.T) {
    ledger := seedLedger(t,
        &model.TicketInventory{TicketTypeID: "vip", EventID: "ev-1", TotalQuantity: 50, SoldQuantity: 50},
        &model.TicketInventory{TicketTypeID: "ga", EventID: "ev-1", TotalQuantity: 200, SoldQuantity: 120, HeldQuantity: 30},
        &model.TicketInventory{TicketTypeID: "other", EventID: "ev-2", TotalQuantity: 10},
    )
    f := NewStatusFacade(ledger, nil, testFacadeConfig())
    ctx := context.Background()

    es, err := f.GetEventStatus(ctx, "ev-1")
    require.NoError(t, err)
    assert.Equal(t, 250, es.TotalCapacity)
    assert.Equal(t, 170, es.TotalSold)
    assert.Equal(t, 30, es.TotalHeld)
    assert.Equal(t, 50, es.TotalAvailable)
    assert.False(t, es.SoldOut)
    assert.Len(t, es.TicketTypes, 2)

    // No ticket types means the event is unknown as far as inventory goes.
    _, err = f.GetEventStatus(ctx, "ev-none")
    assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEventSoldOutWhenEveryTypeExhausted(t *testing.T) {
    ledger := seedLedger(t,
        &model.TicketInventory{TicketTypeID: "vip", EventID: "ev-1", TotalQuantity: 50, SoldQuantity: 50},
        &model.TicketInventory{TicketTypeID: "ga", EventID: "ev-1", TotalQuantity: 100, SoldQuantity: 70, HeldQuantity: 30},
    )
    f := NewStatusFacade(ledger, nil, testFacadeConfig())

    es, err := f.GetEventStatus(context.Background(), "ev-1")
    require.NoError(t, err)
    assert.True(t, es.SoldOut)
    assert.Equal(t, 0, es.TotalAvailable)
}
