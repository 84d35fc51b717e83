package inventory

import (
    "context"
    "encoding/json"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/ticketflow/inventory/internal/config"
    "github.com/ticketflow/inventory/internal/model"
)

// InventoryStatus is the read-optimized view the selection UI polls for
// availability badges.
type InventoryStatus struct {
    TicketTypeID string `json:"ticket_type_id"`
    EventID      string `json:"event_id"`
    Total        int    `json:"total"`
    Sold         int    `json:"sold"`
    Held         int    `json:"held"`
    Available    int    `json:"available"`
    SoldOut      bool   `json:"sold_out"`
    LowStock     bool   `json:"low_stock"`
    VeryLowStock bool   `json:"very_low_stock"`
    Version      uint64 `json:"version"`
}

// EventStatus aggregates every ticket type of one event.
type EventStatus struct {
    EventID        string            `json:"event_id"`
    TotalCapacity  int               `json:"total_capacity"`
    TotalSold      int               `json:"total_sold"`
    TotalHeld      int               `json:"total_held"`
    TotalAvailable int               `json:"total_available"`
    SoldOut        bool              `json:"sold_out"`
    TicketTypes    []InventoryStatus `json:"ticket_types"`
}

// StatusFacade is the read-only aggregation surface for UI consumption.  It
// may serve from a short-TTL Redis cache that the manager invalidates on
// every mutation, so a completed mutation is visible to the next read.  The
// façade is advisory display state only: no write decision ever consults it,
// reservations always go back to the ledger through the manager.
type StatusFacade struct {
    ledger LedgerStore
    cache  *redis.Client // nil disables caching
    cfg    config.FacadeConfig
}

// NewStatusFacade builds a façade over the ledger.  cache may be nil, in
// which case every read goes straight to the ledger.
func NewStatusFacade(ledger LedgerStore, cache *redis.Client, cfg config.FacadeConfig) *StatusFacade {
    if !cfg.CacheEnabled {
        cache = nil
    }
    return &StatusFacade{ledger: ledger, cache: cache, cfg: cfg}
}

func (f *StatusFacade) statusKey(ticketTypeID string) string {
    return f.cfg.CachePrefix + ":status:" + ticketTypeID
}

func (f *StatusFacade) eventKey(eventID string) string {
    return f.cfg.CachePrefix + ":event:" + eventID
}

func (f *StatusFacade) build(inv *model.TicketInventory) InventoryStatus {
    avail := inv.AvailableQuantity()
    return InventoryStatus{
        TicketTypeID: inv.TicketTypeID,
        EventID:      inv.EventID,
        Total:        inv.TotalQuantity,
        Sold:         inv.SoldQuantity,
        Held:         inv.HeldQuantity,
        Available:    avail,
        SoldOut:      avail <= 0,
        LowStock:     avail > 0 && avail < f.cfg.LowStock,
        VeryLowStock: avail > 0 && avail < f.cfg.VeryLowStock,
        Version:      inv.Version,
    }
}

// GetStatus returns the availability view for one ticket type.
func (f *StatusFacade) GetStatus(ctx context.Context, ticketTypeID string) (*InventoryStatus, error) {
    if st := f.fromCache(ctx, f.statusKey(ticketTypeID)); st != nil {
        return st, nil
    }
    inv, err := f.ledger.GetInventory(ctx, ticketTypeID)
    if err != nil {
        return nil, err
    }
    st := f.build(inv)
    f.toCache(ctx, f.statusKey(ticketTypeID), st)
    return &st, nil
}

// GetBulkStatus returns availability for several ticket types at once.
// Unknown IDs are simply absent from the result, matching the ledger's bulk
// read semantics.
func (f *StatusFacade) GetBulkStatus(ctx context.Context, ticketTypeIDs []string) ([]InventoryStatus, error) {
    out := make([]InventoryStatus, 0, len(ticketTypeIDs))
    var misses []string
    for _, id := range ticketTypeIDs {
        if st := f.fromCache(ctx, f.statusKey(id)); st != nil {
            out = append(out, *st)
            continue
        }
        misses = append(misses, id)
    }
    if len(misses) > 0 {
        invs, err := f.ledger.GetInventoryBulk(ctx, misses)
        if err != nil {
            return nil, err
        }
        for _, inv := range invs {
            st := f.build(inv)
            f.toCache(ctx, f.statusKey(inv.TicketTypeID), st)
            out = append(out, st)
        }
    }
    return out, nil
}

// GetEventStatus aggregates all ticket types of an event into one summary.
func (f *StatusFacade) GetEventStatus(ctx context.Context, eventID string) (*EventStatus, error) {
    if cached := f.eventFromCache(ctx, eventID); cached != nil {
        return cached, nil
    }
    invs, err := f.ledger.ListInventoryByEvent(ctx, eventID)
    if err != nil {
        return nil, err
    }
    if len(invs) == 0 {
        return nil, model.ErrNotFound
    }
    summary := &EventStatus{EventID: eventID}
    for _, inv := range invs {
        st := f.build(inv)
        summary.TicketTypes = append(summary.TicketTypes, st)
        summary.TotalCapacity += st.Total
        summary.TotalSold += st.Sold
        summary.TotalHeld += st.Held
        summary.TotalAvailable += st.Available
    }
    summary.SoldOut = summary.TotalAvailable <= 0
    f.toCache(ctx, f.eventKey(eventID), summary)
    return summary, nil
}

// Invalidate drops the cached views touched by a mutation.  Wired as a
// manager change listener so staleness is bounded by the mutation itself,
// not only the TTL.
func (f *StatusFacade) Invalidate(ctx context.Context, ticketTypeID, eventID string) {
    if f.cache == nil {
        return
    }
    keys := []string{f.statusKey(ticketTypeID)}
    if eventID != "" {
        keys = append(keys, f.eventKey(eventID))
    }
    f.cache.Del(ctx, keys...)
}

func (f *StatusFacade) fromCache(ctx context.Context, key string) *InventoryStatus {
    if f.cache == nil {
        return nil
    }
    raw, err := f.cache.Get(ctx, key).Bytes()
    if err != nil {
        return nil
    }
    var st InventoryStatus
    if json.Unmarshal(raw, &st) != nil {
        return nil
    }
    return &st
}

func (f *StatusFacade) eventFromCache(ctx context.Context, eventID string) *EventStatus {
    if f.cache == nil {
        return nil
    }
    raw, err := f.cache.Get(ctx, f.eventKey(eventID)).Bytes()
    if err != nil {
        return nil
    }
    var es EventStatus
    if json.Unmarshal(raw, &es) != nil {
        return nil
    }
    return &es
}

func (f *StatusFacade) toCache(ctx context.Context, key string, v any) {
    if f.cache == nil {
        return
    }
    raw, err := json.Marshal(v)
    if err != nil {
        return
    }
    ttl := f.cfg.CacheTTL
    if ttl <= 0 {
        ttl = 5 * time.Second
    }
    f.cache.Set(ctx, key, raw, ttl)
}
