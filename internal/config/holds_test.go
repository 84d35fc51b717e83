package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"

    "github.com/ticketflow/inventory/internal/model"
)

func TestLoadHoldPolicyDefaults(t *testing.T) {
    cfg := LoadHoldPolicy()
    assert.Equal(t, 15*time.Minute, cfg.Timeout(model.ChannelOnline))
    assert.Equal(t, 4*time.Hour, cfg.Timeout(model.ChannelCash))
    assert.Equal(t, time.Hour, cfg.Timeout(model.ChannelAdmin))
    assert.Equal(t, 30*time.Minute, cfg.Timeout(model.ChannelBulk))
    assert.Equal(t, 3, cfg.MaxRetries)
    assert.Equal(t, 50*time.Millisecond, cfg.ResolverWindow)
}

func TestTimeoutEnv(t *testing.T) {
    t.Setenv("HOLD_TTL_ONLINE", "5m")
    t.Setenv("HOLD_TTL_CASH", "not-a-duration")
    cfg := LoadHoldPolicy()
    assert.Equal(t, 5*time.Minute, cfg.Timeout(model.ChannelOnline))
    assert.Equal(t, 4*time.Hour, cfg.Timeout(model.ChannelCash))
}

// A channel missing from the table falls back to the online timeout rather
// than a zero lifetime.
func TestTimeoutFallback(t *testing.T) {
    cfg := HoldPolicyConfig{
        Timeouts: map[model.Channel]time.Duration{
            model.ChannelOnline: 10 * time.Minute,
        },
    }
    assert.Equal(t, 10*time.Minute, cfg.Timeout(model.ChannelCash))
    assert.Equal(t, 10*time.Minute, cfg.Timeout(model.Channel("future")))
}

func TestLoadHoldPolicyClampsRetries(t *testing.T) {
    t.Setenv("HOLD_MAX_RETRIES", "0")
    cfg := LoadHoldPolicy()
    assert.Equal(t, 1, cfg.MaxRetries)
}
