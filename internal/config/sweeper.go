package config

import "time"

// SweeperConfig controls the background expiry sweeper.  Interval is the
// pause between sweep cycles; BatchSize bounds how many expired holds a
// single cycle loads at once so a large backlog cannot starve the loop.
type SweeperConfig struct {
    Enabled   bool
    Interval  time.Duration
    BatchSize int
}

// LoadSweeperConfig reads sweeper settings from environment variables.
// The 5-minute default interval means a hold can linger up to one interval
// past its nominal expiry before reclamation; callers that need a hard
// deadline re-check expiry themselves.
func LoadSweeperConfig() SweeperConfig {
    cfg := SweeperConfig{
        Enabled:   envBool("SWEEPER_ENABLED", true),
        Interval:  envDur("SWEEPER_INTERVAL", 5*time.Minute),
        BatchSize: envInt("SWEEPER_BATCH_SIZE", 500),
    }
    if cfg.BatchSize < 1 {
        cfg.BatchSize = 1
    }
    return cfg
}
