package config

import (
    "time"

    "github.com/ticketflow/inventory/internal/model"
)

// HoldPolicyConfig controls the reservation lifecycle: how long a hold lives
// per purchase channel, how many optimistic-concurrency retries a mutation
// gets before surfacing a transient failure, and how long the conflict
// resolver coalesces contending requests before deciding.
//
// The channel timeout table is a plain mapping so that adding a channel is a
// configuration change, not a code change in the hold manager.
type HoldPolicyConfig struct {
    Timeouts       map[model.Channel]time.Duration
    MaxRetries     int
    ResolverWindow time.Duration
}

// LoadHoldPolicy reads hold-policy settings from environment variables.
// Defaults: online 15m, cash 4h, admin 1h, bulk 30m, 3 retries, 50ms window.
// Online checkout sessions abandon often and should recycle stock quickly;
// cash reservations at a physical venue need a long grace window; admin and
// bulk operations are supervised and get intermediate windows.
func LoadHoldPolicy() HoldPolicyConfig {
    cfg := HoldPolicyConfig{
        Timeouts: map[model.Channel]time.Duration{
            model.ChannelOnline: envDur("HOLD_TTL_ONLINE", 15*time.Minute),
            model.ChannelCash:   envDur("HOLD_TTL_CASH", 4*time.Hour),
            model.ChannelAdmin:  envDur("HOLD_TTL_ADMIN", time.Hour),
            model.ChannelBulk:   envDur("HOLD_TTL_BULK", 30*time.Minute),
        },
        MaxRetries:     envInt("HOLD_MAX_RETRIES", 3),
        ResolverWindow: envDur("RESOLVER_WINDOW", 50*time.Millisecond),
    }
    if cfg.MaxRetries < 1 {
        cfg.MaxRetries = 1
    }
    return cfg
}

// Timeout returns the hold lifetime for a channel, falling back to the
// online timeout for channels absent from the table.
func (c HoldPolicyConfig) Timeout(ch model.Channel) time.Duration {
    if d, ok := c.Timeouts[ch]; ok && d > 0 {
        return d
    }
    return c.Timeouts[model.ChannelOnline]
}
