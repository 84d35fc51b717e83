package config

import "time"

// DBPoolConfig sizes the MySQL connection pool.  The hold path holds no
// transactions open across requests, so a modest pool covers an on-sale
// burst; the limiter in front of the public surface sheds the rest.
type DBPoolConfig struct {
    MaxOpenConns    int
    MaxIdleConns    int
    ConnMaxLifetime time.Duration
    PingTimeout     time.Duration
}

// LoadDBPool reads pool settings from environment variables.
func LoadDBPool() DBPoolConfig {
    cfg := DBPoolConfig{
        MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
        MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
        ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
        PingTimeout:     envDur("DB_PING_TIMEOUT", 5*time.Second),
    }
    if cfg.MaxOpenConns < 1 {
        cfg.MaxOpenConns = 1
    }
    if cfg.MaxIdleConns > cfg.MaxOpenConns {
        cfg.MaxIdleConns = cfg.MaxOpenConns
    }
    return cfg
}
