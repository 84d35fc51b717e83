package config

import "time"

// FacadeConfig controls the read-optimized status façade.  The cache is
// advisory display state for polling UIs: reservations always re-check the
// ledger, so a short TTL bounds staleness without risking oversell.
// LowStock/VeryLowStock are the thresholds below which the façade raises its
// urgency flags.
type FacadeConfig struct {
    CacheEnabled bool
    CacheTTL     time.Duration
    CachePrefix  string
    LowStock     int
    VeryLowStock int
}

// LoadFacadeConfig reads façade settings from environment variables.
func LoadFacadeConfig() FacadeConfig {
    cfg := FacadeConfig{
        CacheEnabled: envBool("STATUS_CACHE_ENABLED", true),
        CacheTTL:     envDur("STATUS_CACHE_TTL", 5*time.Second),
        CachePrefix:  getenv("STATUS_CACHE_PREFIX", "inv"),
        LowStock:     envInt("LOW_STOCK_THRESHOLD", 10),
        VeryLowStock: envInt("VERY_LOW_STOCK_THRESHOLD", 3),
    }
    if cfg.VeryLowStock > cfg.LowStock {
        cfg.VeryLowStock = cfg.LowStock
    }
    return cfg
}
