package inventory

import (
    "context"
    "errors"
    "fmt"
    "log"

    "github.com/google/uuid"

    "github.com/ticketflow/inventory/internal/clock"
    "github.com/ticketflow/inventory/internal/config"
    "github.com/ticketflow/inventory/internal/model"
)

// Manager orchestrates the reservation lifecycle.  It is the only writer of
// hold records and the only component that turns hold state changes into
// ledger mutations and audit entries.  No operation blocks beyond the
// bounded optimistic retry budget (plus the resolver's coalescing window on
// the scarcity path).
type Manager struct {
    ledger   LedgerStore
    holds    HoldStore
    audit    *AuditLog
    resolver *Resolver
    clk      clock.Clock
    policy   config.HoldPolicyConfig
    onChange ChangeListener
}

// NewManager wires the engine together.  resolver may be nil, in which case
// scarce requests are rejected without arbitration (useful in tools that
// only replay or reconcile).
func NewManager(ledger LedgerStore, holds HoldStore, audit *AuditLog, resolver *Resolver, clk clock.Clock, policy config.HoldPolicyConfig) *Manager {
    return &Manager{
        ledger:   ledger,
        holds:    holds,
        audit:    audit,
        resolver: resolver,
        clk:      clk,
        policy:   policy,
    }
}

// OnChange registers a listener notified after every completed state change.
// Must be called during wiring, before the manager serves requests.
func (m *Manager) OnChange(fn ChangeListener) { m.onChange = fn }

// HoldRequest carries one reservation attempt.
type HoldRequest struct {
    TicketTypeID string
    Quantity     int
    SessionID    string
    UserID       *string
    Channel      model.Channel
    Priority     int
}

// HoldResult reports the outcome of a reservation attempt.  Granted may be
// less than Requested when the resolver handed out a final remainder; the
// caller can release the hold if a partial grant is unwanted.  When the
// request fails with ErrInsufficientInventory, Available tells the caller
// how much could be requested instead.
type HoldResult struct {
    Hold      *model.InventoryHold
    Requested int
    Granted   int
    Available int
}

// PurchaseResult reports a completed purchase.
type PurchaseResult struct {
    HoldID       string
    TicketTypeID string
    EventID      string
    Quantity     int
    SoldQuantity int
    Available    int
}

// RequestHold reserves quantity against a ticket type.  Fast path: when the
// observed availability covers the request, a single version-checked
// increment of held is attempted, retried up to the configured budget on
// conflicts.  Scarcity path: when availability falls short the request is
// escalated to the conflict resolver, which may grant all, part, or none of
// it.  On any grant the hold record is persisted, a hold_create transaction
// is appended and the expiry deadline is set from the channel timeout table.
func (m *Manager) RequestHold(ctx context.Context, req HoldRequest) (*HoldResult, error) {
    if req.Quantity <= 0 {
        return nil, model.ErrInvalidQuantity
    }
    if !req.Channel.Valid() {
        return nil, model.ErrUnknownChannel
    }
    if req.SessionID == "" {
        return nil, fmt.Errorf("%w: session id is required", model.ErrInvalidRequest)
    }

    granted := 0
    var state *model.TicketInventory
    scarce := false

    for attempt := 0; attempt < m.policy.MaxRetries; attempt++ {
        inv, err := m.ledger.GetInventory(ctx, req.TicketTypeID)
        if err != nil {
            return nil, err
        }
        if inv.AvailableQuantity() < req.Quantity {
            scarce = true
            break
        }
        newState, err := m.ledger.TryMutate(ctx, req.TicketTypeID, 0, req.Quantity, inv.Version)
        if err == nil {
            granted = req.Quantity
            state = newState
            break
        }
        if !errorIsRetryable(err) {
            return nil, err
        }
        // Version moved underneath us; re-read and try again.
    }

    if granted == 0 && !scarce {
        return nil, model.ErrRetryExhausted
    }

    if granted == 0 {
        if m.resolver == nil {
            inv, err := m.ledger.GetInventory(ctx, req.TicketTypeID)
            if err != nil {
                return nil, err
            }
            return &HoldResult{Requested: req.Quantity, Available: inv.AvailableQuantity()}, model.ErrInsufficientInventory
        }
        g := m.resolver.Resolve(ctx, req.TicketTypeID, req.SessionID, req.Quantity, req.Priority)
        if g.Err != nil {
            return nil, g.Err
        }
        if g.Quantity == 0 {
            return &HoldResult{Requested: req.Quantity, Available: g.Available}, model.ErrInsufficientInventory
        }
        granted = g.Quantity
        state = g.State
    }

    now := m.clk.Now()
    hold := &model.InventoryHold{
        ID:           uuid.New().String(),
        TicketTypeID: req.TicketTypeID,
        EventID:      state.EventID,
        Quantity:     granted,
        SessionID:    req.SessionID,
        UserID:       req.UserID,
        Channel:      req.Channel,
        Status:       model.HoldStatusActive,
        CreatedAt:    now,
        ExpiresAt:    now.Add(m.policy.Timeout(req.Channel)),
    }
    if err := m.holds.CreateHold(ctx, hold); err != nil {
        // The held quantity is already committed; return it before failing.
        m.compensateHeld(ctx, req.TicketTypeID, granted)
        return nil, err
    }

    m.appendTx(ctx, model.TxHoldCreate, hold, granted, nil)
    m.notify(ctx, EventHoldCreated, hold, state)

    return &HoldResult{
        Hold:      hold,
        Requested: req.Quantity,
        Granted:   granted,
        Available: state.AvailableQuantity(),
    }, nil
}

// ReleaseHold cancels a hold on behalf of its owner (or an admin override).
// Idempotent: releasing a hold that is already terminal is a no-op, not an
// error.  Winning the active→released transition is what licenses the
// ledger decrement, so a double release can never double-increment
// availability.
func (m *Manager) ReleaseHold(ctx context.Context, holdID string) error {
    return m.finishHold(ctx, holdID, model.HoldStatusReleased, model.TxHoldRelease, EventHoldReleased)
}

// ExpireHold reclaims a hold whose deadline passed.  Same transition guard
// as ReleaseHold, but recorded as a distinct hold_expire transaction so the
// audit trail can tell abandonment from explicit cancellation.
func (m *Manager) ExpireHold(ctx context.Context, holdID string) error {
    return m.finishHold(ctx, holdID, model.HoldStatusExpired, model.TxHoldExpire, EventHoldExpired)
}

func (m *Manager) finishHold(ctx context.Context, holdID string, to model.HoldStatus, txType model.TransactionType, event string) error {
    hold, err := m.holds.GetHold(ctx, holdID)
    if err != nil {
        return err
    }
    if hold.Status.Terminal() {
        return nil
    }
    won, err := m.holds.TransitionStatus(ctx, holdID, model.HoldStatusActive, to)
    if err != nil {
        return err
    }
    if !won {
        // Someone else completed, released or expired it first.
        return nil
    }
    state, err := m.mutateWithRetry(ctx, hold.TicketTypeID, 0, -hold.Quantity)
    if err != nil {
        // The ledger write failed after we won the transition.  Reactivate
        // the hold so a retry (or the next sweep) can finish the job;
        // leaving it terminal would strand the held units forever.
        m.reactivate(ctx, holdID, to)
        return err
    }
    hold.Status = to
    m.appendTx(ctx, txType, hold, hold.Quantity, nil)
    m.notify(ctx, event, hold, state)
    return nil
}

// ReleaseSession releases every active hold owned by a session, optionally
// narrowed to one ticket type.  Used on cart teardown and page unload.
// Returns the number of holds released.
func (m *Manager) ReleaseSession(ctx context.Context, sessionID, ticketTypeID string) (int, error) {
    holds, err := m.holds.ListActiveBySession(ctx, sessionID, ticketTypeID)
    if err != nil {
        return 0, err
    }
    released := 0
    for _, h := range holds {
        if err := m.ReleaseHold(ctx, h.ID); err != nil {
            return released, err
        }
        released++
    }
    return released, nil
}

// SessionHolds lists the active holds owned by a session so a returning
// client can resume its cart.
func (m *Manager) SessionHolds(ctx context.Context, sessionID string) ([]*model.InventoryHold, error) {
    return m.holds.ListActiveBySession(ctx, sessionID, "")
}

// CompleteHold converts a hold into a sale at the instant payment is
// authorized.  The hold must still be active and unexpired at completion
// time regardless of sweeper cadence: an expired-but-unswept hold is lazily
// expired here and the call fails with ErrHoldNotActive, forcing the caller
// to re-run ticket selection.
func (m *Manager) CompleteHold(ctx context.Context, holdID string) (*PurchaseResult, error) {
    hold, err := m.holds.GetHold(ctx, holdID)
    if err != nil {
        return nil, err
    }
    if hold.Status != model.HoldStatusActive {
        return nil, model.ErrHoldNotActive
    }
    if hold.ExpiredAt(m.clk.Now()) {
        if err := m.ExpireHold(ctx, holdID); err != nil {
            log.Printf("inventory: lazy expire of %s failed: %v", holdID, err)
        }
        return nil, model.ErrHoldNotActive
    }
    won, err := m.holds.TransitionStatus(ctx, holdID, model.HoldStatusActive, model.HoldStatusCompleted)
    if err != nil {
        return nil, err
    }
    if !won {
        return nil, model.ErrHoldNotActive
    }
    state, err := m.mutateWithRetry(ctx, hold.TicketTypeID, hold.Quantity, -hold.Quantity)
    if err != nil {
        // No sale happened; hand the hold back so the payment flow can
        // retry the completion.
        m.reactivate(ctx, holdID, model.HoldStatusCompleted)
        return nil, err
    }
    hold.Status = model.HoldStatusCompleted
    m.appendTx(ctx, model.TxPurchaseComplete, hold, hold.Quantity, nil)
    m.notify(ctx, EventPurchaseCompleted, hold, state)
    return &PurchaseResult{
        HoldID:       hold.ID,
        TicketTypeID: hold.TicketTypeID,
        EventID:      hold.EventID,
        Quantity:     hold.Quantity,
        SoldQuantity: state.SoldQuantity,
        Available:    state.AvailableQuantity(),
    }, nil
}

// RefundPurchase reverses a completed purchase in the ledger.  The hold
// stays in its terminal completed state; the correction exists as a refund
// transaction, keeping the trail append-only.  A second refund for the same
// hold is rejected.
func (m *Manager) RefundPurchase(ctx context.Context, holdID, actorID string) error {
    hold, err := m.holds.GetHold(ctx, holdID)
    if err != nil {
        return err
    }
    if hold.Status != model.HoldStatusCompleted {
        return model.ErrHoldNotActive
    }
    prior, err := m.audit.Query(ctx, model.TransactionFilter{
        RelatedHoldID: holdID,
        Type:          model.TxRefund,
        Limit:         1,
    })
    if err != nil {
        return err
    }
    if len(prior) > 0 {
        return model.ErrAlreadyRefunded
    }
    state, err := m.mutateWithRetry(ctx, hold.TicketTypeID, -hold.Quantity, 0)
    if err != nil {
        return err
    }
    m.appendTx(ctx, model.TxRefund, hold, hold.Quantity, &actorID)
    m.notify(ctx, EventRefundIssued, hold, state)
    return nil
}

// CreateTicketType provisions the ledger row for a new ticket type with the
// given capacity.  The opening capacity is recorded as an admin_adjustment
// transaction so replaying the log from zero reproduces the row.
func (m *Manager) CreateTicketType(ctx context.Context, ticketTypeID, eventID string, total int, actorID string) (*model.TicketInventory, error) {
    if total < 0 {
        return nil, model.ErrInvariantViolation
    }
    if ticketTypeID == "" || eventID == "" {
        return nil, fmt.Errorf("%w: ticket type and event ids are required", model.ErrInvalidRequest)
    }
    inv := &model.TicketInventory{
        TicketTypeID:  ticketTypeID,
        EventID:       eventID,
        TotalQuantity: total,
    }
    if err := m.ledger.CreateInventory(ctx, inv); err != nil {
        return nil, err
    }
    created, err := m.ledger.GetInventory(ctx, ticketTypeID)
    if err != nil {
        return nil, err
    }
    m.appendAdjustment(ctx, ticketTypeID, total, actorID)
    m.notify(ctx, EventTicketTypeCreated, &model.InventoryHold{
        TicketTypeID: ticketTypeID,
        EventID:      eventID,
        Channel:      model.ChannelAdmin,
    }, created)
    return created, nil
}

// AdjustCapacity sets a new total capacity for a ticket type.  A reduction
// below the committed sold + held is rejected with ErrInvariantViolation and
// leaves the ledger untouched; already-active holds are never reconciled
// away.
func (m *Manager) AdjustCapacity(ctx context.Context, ticketTypeID string, newTotal int, actorID string) (*model.TicketInventory, error) {
    for attempt := 0; attempt < m.policy.MaxRetries; attempt++ {
        inv, err := m.ledger.GetInventory(ctx, ticketTypeID)
        if err != nil {
            return nil, err
        }
        if newTotal < inv.SoldQuantity+inv.HeldQuantity {
            return nil, model.ErrInvariantViolation
        }
        state, err := m.ledger.AdjustCapacity(ctx, ticketTypeID, newTotal, inv.Version)
        if err == nil {
            m.appendAdjustment(ctx, ticketTypeID, newTotal-inv.TotalQuantity, actorID)
            m.notify(ctx, EventCapacityAdjusted, &model.InventoryHold{
                TicketTypeID: ticketTypeID,
                EventID:      state.EventID,
                Channel:      model.ChannelAdmin,
            }, state)
            return state, nil
        }
        if !errorIsRetryable(err) {
            return nil, err
        }
    }
    return nil, model.ErrRetryExhausted
}

// mutateWithRetry applies sold/held deltas, re-reading the version on each
// optimistic conflict up to the retry budget.
func (m *Manager) mutateWithRetry(ctx context.Context, ticketTypeID string, deltaSold, deltaHeld int) (*model.TicketInventory, error) {
    for attempt := 0; attempt < m.policy.MaxRetries; attempt++ {
        inv, err := m.ledger.GetInventory(ctx, ticketTypeID)
        if err != nil {
            return nil, err
        }
        state, err := m.ledger.TryMutate(ctx, ticketTypeID, deltaSold, deltaHeld, inv.Version)
        if err == nil {
            return state, nil
        }
        if !errorIsRetryable(err) {
            return nil, err
        }
    }
    return nil, model.ErrRetryExhausted
}

// reactivate undoes a won status transition whose ledger write failed, so
// the hold stays retryable instead of terminal with its quantity still
// counted as held.  If even the revert fails the hold is stranded until an
// operator intervenes; reconciliation cannot see it (ledger and log agree the
// units are held), so it is logged loudly here.
func (m *Manager) reactivate(ctx context.Context, holdID string, from model.HoldStatus) {
    if _, err := m.holds.TransitionStatus(ctx, holdID, from, model.HoldStatusActive); err != nil {
        log.Printf("inventory: failed to reactivate hold %s after ledger error: %v", holdID, err)
    }
}

// compensateHeld is the failure path of RequestHold: the ledger increment
// succeeded but the hold row could not be written, so the quantity must be
// handed back.
func (m *Manager) compensateHeld(ctx context.Context, ticketTypeID string, quantity int) {
    if _, err := m.mutateWithRetry(ctx, ticketTypeID, 0, -quantity); err != nil {
        log.Printf("inventory: failed to return %d units to %s after hold write error: %v",
            quantity, ticketTypeID, err)
    }
}

func (m *Manager) appendTx(ctx context.Context, txType model.TransactionType, hold *model.InventoryHold, quantity int, actorID *string) {
    holdID := hold.ID
    tx := &model.InventoryTransaction{
        ID:            uuid.New().String(),
        Type:          txType,
        TicketTypeID:  hold.TicketTypeID,
        Quantity:      quantity,
        RelatedHoldID: &holdID,
        Channel:       hold.Channel,
        ActorID:       actorID,
        CreatedAt:     m.clk.Now(),
    }
    if err := m.audit.Append(ctx, tx); err != nil {
        // The counters already moved; losing the audit row is a
        // reconciliation finding, not a reason to unwind the mutation.
        log.Printf("inventory: audit append failed for %s on %s: %v", txType, hold.TicketTypeID, err)
    }
}

func (m *Manager) appendAdjustment(ctx context.Context, ticketTypeID string, delta int, actorID string) {
    tx := &model.InventoryTransaction{
        ID:           uuid.New().String(),
        Type:         model.TxAdminAdjustment,
        TicketTypeID: ticketTypeID,
        Quantity:     delta,
        Channel:      model.ChannelAdmin,
        ActorID:      &actorID,
        CreatedAt:    m.clk.Now(),
    }
    if err := m.audit.Append(ctx, tx); err != nil {
        log.Printf("inventory: audit append failed for adjustment on %s: %v", ticketTypeID, err)
    }
}

func (m *Manager) notify(ctx context.Context, eventType string, hold *model.InventoryHold, state *model.TicketInventory) {
    if m.onChange == nil {
        return
    }
    available := 0
    if state != nil {
        available = state.AvailableQuantity()
    }
    m.onChange(ctx, Event{
        Type:         eventType,
        TicketTypeID: hold.TicketTypeID,
        EventID:      hold.EventID,
        HoldID:       hold.ID,
        Quantity:     hold.Quantity,
        Channel:      hold.Channel,
        Available:    available,
        OccurredAt:   m.clk.Now(),
    })
}

// errorIsRetryable reports whether a ledger rejection is worth another
// read-and-retry cycle.  Only version conflicts qualify; invariant
// violations and missing rows are final for the attempted deltas.
func errorIsRetryable(err error) bool {
    return errors.Is(err, model.ErrVersionConflict)
}
