package database

import (
    "context"
    "database/sql"
    _ "embed"
    "fmt"
    "strings"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the three durable collections if they do not exist yet:
// ticket_inventory (versioned counters), inventory_holds (keyed by id,
// indexed for session lookup and expiry sweeping) and inventory_transactions
// (append-only).  Statements are idempotent, so running at every startup is
// safe.
func Migrate(ctx context.Context, db *sql.DB) error {
    for _, stmt := range strings.Split(schemaSQL, ";") {
        stmt = strings.TrimSpace(stmt)
        if stmt == "" {
            continue
        }
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("apply schema: %w", err)
        }
    }
    return nil
}
