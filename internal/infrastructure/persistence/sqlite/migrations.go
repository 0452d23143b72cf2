package sqlite

import (
	"fmt"
)

var migrations = []struct {
	name string
	stmt string
}{
	{
		name: "001_pending_sales",
		stmt: `
			CREATE TABLE IF NOT EXISTS pending_sales (
				temp_id TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				retry_count INTEGER NOT NULL DEFAULT 0
			)
		`,
	},
	{
		name: "002_session_state",
		stmt: `
			CREATE TABLE IF NOT EXISTS session_state (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`,
	},
	{
		name: "003_reconciliation_log",
		stmt: `
			CREATE TABLE IF NOT EXISTS reconciliation_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				sale_id TEXT NOT NULL,
				reason TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)
		`,
	},
}

// RunMigrations applies the local schema. Each migration runs once; applied
// names are tracked in a migrations table.
func RunMigrations(conn *Connection) error {
	db := conn.GetDB()

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.Query("SELECT name FROM migrations")
	if err != nil {
		return fmt.Errorf("failed to query migrations table: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}

		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (name) VALUES (?)", m.name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.name, err)
		}
	}

	return nil
}
