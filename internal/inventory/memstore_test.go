package inventory

// In-memory store fakes used by the engine tests.  They implement the same
// conditional-write contract as the MySQL repositories: version-checked
// mutation, invariant enforcement, guarded status transitions.  Each fake is
// safe for concurrent use so tests can hammer the engine from many
// goroutines.

import (
    "context"
    "sync"
    "time"

    "github.com/ticketflow/inventory/internal/model"
)

type memLedger struct {
    mu   sync.Mutex
    rows map[string]*model.TicketInventory
}

func newMemLedger() *memLedger {
    return &memLedger{rows: make(map[string]*model.TicketInventory)}
}

func (m *memLedger) CreateInventory(_ context.Context, inv *model.TicketInventory) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.rows[inv.TicketTypeID]; ok {
        return model.ErrAlreadyExists
    }
    row := *inv
    row.Version = 1
    row.CreatedAt = time.Now().UTC()
    row.UpdatedAt = row.CreatedAt
    m.rows[inv.TicketTypeID] = &row
    return nil
}

func (m *memLedger) GetInventory(_ context.Context, ticketTypeID string) (*model.TicketInventory, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    row, ok := m.rows[ticketTypeID]
    if !ok {
        return nil, model.ErrNotFound
    }
    cp := *row
    return &cp, nil
}

func (m *memLedger) GetInventoryBulk(_ context.Context, ticketTypeIDs []string) ([]*model.TicketInventory, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]*model.TicketInventory, 0, len(ticketTypeIDs))
    for _, id := range ticketTypeIDs {
        if row, ok := m.rows[id]; ok {
            cp := *row
            out = append(out, &cp)
        }
    }
    return out, nil
}

func (m *memLedger) ListInventoryByEvent(_ context.Context, eventID string) ([]*model.TicketInventory, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []*model.TicketInventory
    for _, row := range m.rows {
        if row.EventID == eventID {
            cp := *row
            out = append(out, &cp)
        }
    }
    return out, nil
}

func (m *memLedger) TryMutate(_ context.Context, ticketTypeID string, deltaSold, deltaHeld int, expectedVersion uint64) (*model.TicketInventory, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    row, ok := m.rows[ticketTypeID]
    if !ok {
        return nil, model.ErrNotFound
    }
    if row.Version != expectedVersion {
        return nil, model.ErrVersionConflict
    }
    next := *row
    next.SoldQuantity += deltaSold
    next.HeldQuantity += deltaHeld
    if !next.InvariantHolds() {
        return nil, model.ErrInvariantViolation
    }
    next.Version++
    next.UpdatedAt = time.Now().UTC()
    m.rows[ticketTypeID] = &next
    cp := next
    return &cp, nil
}

func (m *memLedger) AdjustCapacity(_ context.Context, ticketTypeID string, newTotal int, expectedVersion uint64) (*model.TicketInventory, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    row, ok := m.rows[ticketTypeID]
    if !ok {
        return nil, model.ErrNotFound
    }
    if row.Version != expectedVersion {
        return nil, model.ErrVersionConflict
    }
    next := *row
    next.TotalQuantity = newTotal
    if !next.InvariantHolds() {
        return nil, model.ErrInvariantViolation
    }
    next.Version++
    next.UpdatedAt = time.Now().UTC()
    m.rows[ticketTypeID] = &next
    cp := next
    return &cp, nil
}

type memHolds struct {
    mu   sync.Mutex
    rows map[string]*model.InventoryHold
}

func newMemHolds() *memHolds {
    return &memHolds{rows: make(map[string]*model.InventoryHold)}
}

func (m *memHolds) CreateHold(_ context.Context, h *model.InventoryHold) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.rows[h.ID]; ok {
        return model.ErrAlreadyExists
    }
    cp := *h
    m.rows[h.ID] = &cp
    return nil
}

func (m *memHolds) GetHold(_ context.Context, id string) (*model.InventoryHold, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    row, ok := m.rows[id]
    if !ok {
        return nil, model.ErrHoldNotFound
    }
    cp := *row
    return &cp, nil
}

func (m *memHolds) ListActiveBySession(_ context.Context, sessionID, ticketTypeID string) ([]*model.InventoryHold, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []*model.InventoryHold
    for _, row := range m.rows {
        if row.SessionID != sessionID || row.Status != model.HoldStatusActive {
            continue
        }
        if ticketTypeID != "" && row.TicketTypeID != ticketTypeID {
            continue
        }
        cp := *row
        out = append(out, &cp)
    }
    return out, nil
}

func (m *memHolds) ListActiveByTicketType(_ context.Context, ticketTypeID string) ([]*model.InventoryHold, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []*model.InventoryHold
    for _, row := range m.rows {
        if row.TicketTypeID == ticketTypeID && row.Status == model.HoldStatusActive {
            cp := *row
            out = append(out, &cp)
        }
    }
    return out, nil
}

func (m *memHolds) ListExpired(_ context.Context, now time.Time, limit int) ([]*model.InventoryHold, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []*model.InventoryHold
    for _, row := range m.rows {
        if row.Status == model.HoldStatusActive && row.ExpiredAt(now) {
            cp := *row
            out = append(out, &cp)
            if limit > 0 && len(out) >= limit {
                break
            }
        }
    }
    return out, nil
}

func (m *memHolds) TransitionStatus(_ context.Context, id string, from, to model.HoldStatus) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    row, ok := m.rows[id]
    if !ok {
        return false, model.ErrHoldNotFound
    }
    if row.Status != from {
        return false, nil
    }
    row.Status = to
    return true, nil
}

type memAudit struct {
    mu   sync.Mutex
    rows []*model.InventoryTransaction
}

func newMemAudit() *memAudit { return &memAudit{} }

func (m *memAudit) Append(_ context.Context, tx *model.InventoryTransaction) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    cp := *tx
    m.rows = append(m.rows, &cp)
    return nil
}

func (m *memAudit) Query(_ context.Context, f model.TransactionFilter) ([]*model.InventoryTransaction, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    limit := f.Limit
    if limit <= 0 {
        limit = 200
    }
    var out []*model.InventoryTransaction
    for _, row := range m.rows {
        if f.TicketTypeID != "" && row.TicketTypeID != f.TicketTypeID {
            continue
        }
        if f.Type != "" && row.Type != f.Type {
            continue
        }
        if f.Channel != "" && row.Channel != f.Channel {
            continue
        }
        if f.RelatedHoldID != "" && (row.RelatedHoldID == nil || *row.RelatedHoldID != f.RelatedHoldID) {
            continue
        }
        if !f.From.IsZero() && row.CreatedAt.Before(f.From) {
            continue
        }
        if !f.To.IsZero() && row.CreatedAt.After(f.To) {
            continue
        }
        cp := *row
        out = append(out, &cp)
        if len(out) >= limit {
            break
        }
    }
    return out, nil
}
