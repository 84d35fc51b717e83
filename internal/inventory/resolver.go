package inventory

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/ticketflow/inventory/internal/clock"
    "github.com/ticketflow/inventory/internal/model"
)

// Grant is the resolver's decision for one contender.  Quantity may be less
// than requested when only a remainder was left; zero means rejected, with
// Available carrying the availability observed at decision time so the
// caller can offer a reduced quantity.
type Grant struct {
    Quantity  int
    Available int
    State     *model.TicketInventory // post-grant ledger state, nil when nothing was granted
    Err       error
}

type contender struct {
    sessionID string
    quantity  int
    priority  int
    timestamp time.Time
    seq       int // arrival order, breaks timestamp ties
    result    chan Grant
}

// Resolver arbitrates concurrent hold requests that exceed what is
// available.  Requests for the same ticket type arriving within one
// coalescing window are gathered into a batch; when the window closes the
// batch is sorted by request timestamp (first come, first served) and stock
// is granted in order until exhausted.  Every contender receives a decision
// within the bounded window plus the grant retry budget; nothing blocks
// indefinitely.
//
// Grants go through the same version-checked TryMutate as every other
// writer, so the resolver adds arbitration fairness but is not needed for
// oversell safety.
type Resolver struct {
    ledger     LedgerStore
    clk        clock.Clock
    window     time.Duration
    maxRetries int

    // onResolution, when set, receives the audit record produced whenever a
    // batch held more than one contender.
    onResolution func(model.ConflictResolution)

    mu      sync.Mutex
    batches map[string][]*contender
}

// NewResolver constructs a Resolver flushing batches after the given window.
func NewResolver(ledger LedgerStore, clk clock.Clock, window time.Duration, maxRetries int) *Resolver {
    if window <= 0 {
        window = 50 * time.Millisecond
    }
    if maxRetries < 1 {
        maxRetries = 1
    }
    return &Resolver{
        ledger:     ledger,
        clk:        clk,
        window:     window,
        maxRetries: maxRetries,
        batches:    make(map[string][]*contender),
    }
}

// OnResolution registers the audit callback.  Must be called before the
// resolver starts receiving requests.
func (r *Resolver) OnResolution(fn func(model.ConflictResolution)) { r.onResolution = fn }

// Resolve submits a contending request and blocks until the batch decision.
// If ctx is cancelled while waiting, any quantity granted in the meantime is
// returned to the ledger and the context error is reported.
func (r *Resolver) Resolve(ctx context.Context, ticketTypeID, sessionID string, quantity, priority int) Grant {
    req := &contender{
        sessionID: sessionID,
        quantity:  quantity,
        priority:  priority,
        timestamp: r.clk.Now(),
        result:    make(chan Grant, 1),
    }

    r.mu.Lock()
    pending, open := r.batches[ticketTypeID]
    req.seq = len(pending)
    r.batches[ticketTypeID] = append(pending, req)
    r.mu.Unlock()

    if !open {
        // First contender opens the batch and schedules the flush.
        time.AfterFunc(r.window, func() { r.flush(ticketTypeID) })
    }

    // The wait is bounded by the window plus the flush's retry budget, so
    // waiting out a cancelled context here cannot hang; it lets us undo a
    // grant that raced with the cancellation instead of leaking held stock.
    g := <-req.result
    if ctx.Err() != nil {
        if g.Quantity > 0 {
            r.rollback(ticketTypeID, g.Quantity)
        }
        return Grant{Err: ctx.Err()}
    }
    return g
}

// flush closes the batch for a ticket type and hands out stock first come,
// first served.
func (r *Resolver) flush(ticketTypeID string) {
    r.mu.Lock()
    reqs := r.batches[ticketTypeID]
    delete(r.batches, ticketTypeID)
    r.mu.Unlock()
    if len(reqs) == 0 {
        return
    }

    sort.SliceStable(reqs, func(i, j int) bool {
        if reqs[i].timestamp.Equal(reqs[j].timestamp) {
            return reqs[i].seq < reqs[j].seq
        }
        return reqs[i].timestamp.Before(reqs[j].timestamp)
    })

    ctx := context.Background()
    observedAvailable := -1
    record := make([]model.ConflictingRequest, 0, len(reqs))

    for _, req := range reqs {
        g := r.grantOne(ctx, ticketTypeID, req.quantity)
        if observedAvailable < 0 && g.Err == nil {
            if g.State != nil {
                observedAvailable = g.State.AvailableQuantity() + g.Quantity
            } else {
                observedAvailable = g.Available
            }
        }
        record = append(record, model.ConflictingRequest{
            SessionID:         req.sessionID,
            RequestedQuantity: req.quantity,
            GrantedQuantity:   g.Quantity,
            Timestamp:         req.timestamp,
            Priority:          req.priority,
        })
        req.result <- g
    }

    if len(reqs) > 1 && r.onResolution != nil {
        attempted := 0
        for _, req := range reqs {
            attempted += req.quantity
        }
        if observedAvailable < 0 {
            observedAvailable = 0
        }
        r.onResolution(model.ConflictResolution{
            ConflictID:        uuid.New().String(),
            TicketTypeID:      ticketTypeID,
            AttemptedQuantity: attempted,
            AvailableQuantity: observedAvailable,
            Requests:          record,
            Strategy:          model.StrategyFCFS,
            ResolvedAt:        r.clk.Now(),
        })
    }
}

// grantOne reserves up to want units for a single contender, retrying
// version conflicts against fresh reads.  A partial remainder is granted as
// a smaller quantity rather than rejected outright.
func (r *Resolver) grantOne(ctx context.Context, ticketTypeID string, want int) Grant {
    for attempt := 0; attempt < r.maxRetries; attempt++ {
        inv, err := r.ledger.GetInventory(ctx, ticketTypeID)
        if err != nil {
            return Grant{Err: err}
        }
        avail := inv.AvailableQuantity()
        grant := min(want, avail)
        if grant <= 0 {
            return Grant{Quantity: 0, Available: avail}
        }
        state, err := r.ledger.TryMutate(ctx, ticketTypeID, 0, grant, inv.Version)
        switch {
        case err == nil:
            return Grant{Quantity: grant, Available: state.AvailableQuantity(), State: state}
        case errorIsRetryable(err):
            continue
        default:
            return Grant{Err: err}
        }
    }
    return Grant{Err: model.ErrRetryExhausted}
}

// rollback returns quantity to the ledger after a grant raced with a caller
// cancellation.  Best effort with the usual retry budget; a failure here is
// eventually repaired by reconciliation.
func (r *Resolver) rollback(ticketTypeID string, quantity int) {
    ctx := context.Background()
    for attempt := 0; attempt < r.maxRetries; attempt++ {
        inv, err := r.ledger.GetInventory(ctx, ticketTypeID)
        if err != nil {
            return
        }
        if _, err := r.ledger.TryMutate(ctx, ticketTypeID, 0, -quantity, inv.Version); err == nil || !errorIsRetryable(err) {
            return
        }
    }
}
