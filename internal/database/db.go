package database

import (
    "context"
    "database/sql"
    "fmt"

    _ "github.com/go-sql-driver/mysql"

    "github.com/ticketflow/inventory/internal/config"
)

// Open connects to MySQL with the given pool settings and verifies the
// connection.  parseTime and loc=UTC keep DATETIME columns flowing through
// the engine as UTC time.Time values, which the hold-expiry comparisons
// depend on.
func Open(user, pass, host, port, name string, pool config.DBPoolConfig) (*sql.DB, error) {
    db, err := sql.Open("mysql", buildDSN(user, pass, host, port, name))
    if err != nil {
        return nil, err
    }

    db.SetMaxOpenConns(pool.MaxOpenConns)
    db.SetMaxIdleConns(pool.MaxIdleConns)
    db.SetConnMaxLifetime(pool.ConnMaxLifetime)

    ctx, cancel := context.WithTimeout(context.Background(), pool.PingTimeout)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        return nil, err
    }
    return db, nil
}

func buildDSN(user, pass, host, port, name string) string {
    auth := user
    if pass != "" {
        auth = fmt.Sprintf("%s:%s", user, pass)
    }
    return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, host, port, name)
}
