package model

import "time"

// HoldStatus is the lifecycle state of an inventory hold.  A hold starts as
// active and ends in exactly one of the three terminal states; terminal holds
// are immutable.
type HoldStatus string

const (
    HoldStatusActive    HoldStatus = "active"
    HoldStatusExpired   HoldStatus = "expired"
    HoldStatusReleased  HoldStatus = "released"
    HoldStatusCompleted HoldStatus = "completed"
)

// Terminal reports whether the status is one of the immutable end states.
func (s HoldStatus) Terminal() bool {
    switch s {
    case HoldStatusExpired, HoldStatusReleased, HoldStatusCompleted:
        return true
    }
    return false
}

// Channel identifies the purchase context a hold was created from.  The
// channel determines how long the hold lives before the sweeper reclaims it:
// online checkout sessions are short-lived, cash reservations at a physical
// venue need a long grace window, admin and bulk operations sit in between.
type Channel string

const (
    ChannelOnline Channel = "online"
    ChannelCash   Channel = "cash"
    ChannelAdmin  Channel = "admin"
    ChannelBulk   Channel = "bulk"
)

// Valid reports whether c is one of the known purchase channels.
func (c Channel) Valid() bool {
    switch c {
    case ChannelOnline, ChannelCash, ChannelAdmin, ChannelBulk:
        return true
    }
    return false
}

// InventoryHold is a time-boxed reservation of quantity against a ticket
// type.  It is owned by the session (and optionally user) that created it;
// only the sweeper may expire it without the owner's consent.
//
// Fields:
//  ID           – hold identifier (UUID).
//  TicketTypeID – ticket type the quantity is held against.
//  EventID      – event the ticket type belongs to.
//  Quantity     – units locked by this hold.
//  SessionID    – checkout session that owns the hold.
//  UserID       – authenticated user, nil for guests.
//  Channel      – purchase context, decides the expiry timeout.
//  Status       – lifecycle state; terminal states are immutable.
//  CreatedAt    – when the hold was created.
//  ExpiresAt    – nominal expiry deadline enforced by the sweeper.
type InventoryHold struct {
    ID           string
    TicketTypeID string
    EventID      string
    Quantity     int
    SessionID    string
    UserID       *string
    Channel      Channel
    Status       HoldStatus
    CreatedAt    time.Time
    ExpiresAt    time.Time
}

// ExpiredAt reports whether the hold's nominal deadline has passed at the
// given instant.  The sweeper enforces this deadline on a polling cycle, so
// consumers that need hard guarantees (purchase completion) must check it
// themselves rather than trust Status alone.
func (h *InventoryHold) ExpiredAt(now time.Time) bool {
    return !h.ExpiresAt.After(now)
}
