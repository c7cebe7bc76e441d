package sqlite

import (
	"database/sql"
	"fmt"
)

// schema sets up the database tables.
// These run on startup to ensure tables exist.
// Child tables keep a position column so people and items come back in the
// order they were added; that order breaks ties when rounding cents.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    discount_kind TEXT NOT NULL DEFAULT 'percent',
    discount_value REAL NOT NULL DEFAULT 0,
    vat_kind TEXT NOT NULL DEFAULT 'percent',
    vat_value REAL NOT NULL DEFAULT 0,
    service_kind TEXT NOT NULL DEFAULT 'percent',
    service_value REAL NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 1,
    grand_total_cents INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
    bill_id TEXT NOT NULL,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS items (
    bill_id TEXT NOT NULL,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    price_cents INTEGER NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_participants (
    bill_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, item_id, person_id),
    FOREIGN KEY (bill_id, item_id) REFERENCES items(bill_id, id) ON DELETE CASCADE,
    FOREIGN KEY (bill_id, person_id) REFERENCES people(bill_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_people_bill_id ON people(bill_id, position);
CREATE INDEX IF NOT EXISTS idx_items_bill_id ON items(bill_id, position);
CREATE INDEX IF NOT EXISTS idx_item_participants_bill_id ON item_participants(bill_id, item_id, position);
CREATE INDEX IF NOT EXISTS idx_bills_updated_at ON bills(updated_at);
`

// addedColumns lists columns introduced after a table was first created.
// Databases created before then get them through ALTER TABLE.
var addedColumns = []struct {
	table, column, ddl string
}{
	{"bills", "grand_total_cents", "ALTER TABLE bills ADD COLUMN grand_total_cents INTEGER NOT NULL DEFAULT 0"},
}

// runMigrations executes the schema setup. It reports whether any column was
// added to an existing table, in which case derived values need a backfill.
func runMigrations(db *sql.DB) (bool, error) {
	if _, err := db.Exec(schema); err != nil {
		return false, err
	}

	altered := false
	for _, c := range addedColumns {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", c.table, c.column).Scan(&n)
		if err != nil {
			return false, fmt.Errorf("failed to inspect %s: %w", c.table, err)
		}
		if n > 0 {
			continue
		}
		if _, err := db.Exec(c.ddl); err != nil {
			return false, fmt.Errorf("failed to add %s.%s: %w", c.table, c.column, err)
		}
		altered = true
	}
	return altered, nil
}
