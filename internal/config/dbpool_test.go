package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadDBPoolDefaults(t *testing.T) {
    cfg := LoadDBPool()
    assert.Equal(t, 25, cfg.MaxOpenConns)
    assert.Equal(t, 25, cfg.MaxIdleConns)
    assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
    assert.Equal(t, 5*time.Second, cfg.PingTimeout)
}

func TestLoadDBPoolClampsIdleToOpen(t *testing.T) {
    t.Setenv("DB_MAX_OPEN_CONNS", "4")
    t.Setenv("DB_MAX_IDLE_CONNS", "50")
    cfg := LoadDBPool()
    assert.Equal(t, 4, cfg.MaxOpenConns)
    assert.Equal(t, 4, cfg.MaxIdleConns)
}
