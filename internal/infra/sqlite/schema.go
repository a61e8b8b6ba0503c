package sqlite

import "errors"

var errReadOnly = errors.New("sqlite: write in read-only transaction")

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema statements.
// Each string is a single SQL statement (SQLite executes one at a time).
// Times are stored as Unix nanoseconds so the logical clock round-trips
// exactly.
func Migrations() []string {
	return []string{
		// Journeys: id is the dense engine-assigned id, never AUTOINCREMENT.
		`CREATE TABLE IF NOT EXISTS journeys (
			id            INTEGER PRIMARY KEY,
			creator       TEXT NOT NULL,
			action        TEXT NOT NULL,
			format        TEXT NOT NULL,
			duration      INTEGER NOT NULL CHECK(duration > 0),
			daily_value   INTEGER NOT NULL CHECK(daily_value > 0),
			description   TEXT NOT NULL DEFAULT '',
			sink          TEXT NOT NULL,
			start_date    INTEGER NOT NULL,
			current_value INTEGER NOT NULL DEFAULT 0 CHECK(current_value >= 0),
			deposit       INTEGER NOT NULL DEFAULT 0 CHECK(deposit >= 0),
			completed     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journeys_creator ON journeys(creator, id)`,

		// Accrued, withdrawable balances
		`CREATE TABLE IF NOT EXISTS balances (
			account TEXT PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0 CHECK(balance >= 0)
		)`,

		// Per-account statement
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			type        TEXT NOT NULL,
			entry_type  TEXT NOT NULL,
			account     TEXT NOT NULL,
			amount      INTEGER NOT NULL CHECK(amount >= 0),
			journey_id  INTEGER,
			description TEXT NOT NULL DEFAULT '',
			balance     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account, id)`,

		// Singleton settings (fee beneficiary)
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Notification outbox
		`CREATE TABLE IF NOT EXISTS journey_events (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			kind       TEXT NOT NULL,
			journey_id INTEGER NOT NULL,
			creator    TEXT NOT NULL DEFAULT '',
			amount     INTEGER NOT NULL DEFAULT 0,
			note       TEXT NOT NULL DEFAULT '',
			at         INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_journey ON journey_events(journey_id, seq)`,
	}
}
