package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates a SQLite database in the test's temp directory.
// File-backed rather than :memory: because every pool connection must see
// the same database. The database is automatically cleaned up when the
// test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Paper-money account table
		CREATE TABLE account (
			user_id VARCHAR(36) NOT NULL PRIMARY KEY,
			balance FLOAT NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Fund catalogue table
		CREATE TABLE fund (
			scheme_code VARCHAR(10) NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			fund_house VARCHAR(100),
			category VARCHAR(100)
		);

		-- NAV price table
		CREATE TABLE nav_price (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			scheme_code VARCHAR(10) NOT NULL,
			date DATE NOT NULL,
			nav FLOAT NOT NULL,
			FOREIGN KEY(scheme_code) REFERENCES fund(scheme_code),
			CONSTRAINT unique_nav_price UNIQUE (scheme_code, date)
		);

		-- Holding table (aggregated position per user per fund)
		CREATE TABLE holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			scheme_code VARCHAR(10) NOT NULL,
			total_units FLOAT NOT NULL DEFAULT 0,
			invested_amount FLOAT NOT NULL DEFAULT 0,
			FOREIGN KEY(user_id) REFERENCES account(user_id) ON DELETE CASCADE,
			FOREIGN KEY(scheme_code) REFERENCES fund(scheme_code),
			CONSTRAINT unique_user_scheme UNIQUE (user_id, scheme_code)
		);

		-- Recurring plan table
		CREATE TABLE recurring_plan (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			scheme_code VARCHAR(10) NOT NULL,
			target_scheme_code VARCHAR(10),
			type VARCHAR(3) NOT NULL,
			amount FLOAT NOT NULL,
			frequency VARCHAR(9) NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE,
			next_due_date DATE NOT NULL,
			remaining_installments INTEGER,
			status VARCHAR(9) NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES account(user_id) ON DELETE CASCADE,
			FOREIGN KEY(scheme_code) REFERENCES fund(scheme_code)
		);

		-- Execution record table (append-only audit trail)
		CREATE TABLE execution_record (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			plan_id VARCHAR(36) NOT NULL,
			scheduled_date DATE NOT NULL,
			executed_at DATETIME NOT NULL,
			status VARCHAR(7) NOT NULL,
			amount FLOAT NOT NULL,
			units FLOAT NOT NULL DEFAULT 0,
			nav_used FLOAT NOT NULL DEFAULT 0,
			cost_basis FLOAT NOT NULL DEFAULT 0,
			realized_gain FLOAT NOT NULL DEFAULT 0,
			failure_reason VARCHAR(30),
			FOREIGN KEY(plan_id) REFERENCES recurring_plan(id) ON DELETE CASCADE,
			CONSTRAINT unique_plan_slot UNIQUE (plan_id, scheduled_date)
		);

		-- Cash transaction table (append-only ledger of balance movements)
		CREATE TABLE cash_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			type VARCHAR(12) NOT NULL,
			amount FLOAT NOT NULL,
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES account(user_id) ON DELETE CASCADE
		);

		-- System setting table
		CREATE TABLE system_setting (
			"key" VARCHAR(30) NOT NULL PRIMARY KEY,
			value VARCHAR(500) NOT NULL,
			updated_at DATETIME
		);
	`

	_, err := db.Exec(schema)
	return err
}
