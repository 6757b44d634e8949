package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    mortgage_share REAL NOT NULL DEFAULT 0,
    default_split_pct REAL,
    credit REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    amount REAL NOT NULL,
    due_date TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    split_type TEXT NOT NULL,
    paid_by TEXT,
    paid_date TEXT,
    is_paid INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    name TEXT NOT NULL,
    amount REAL NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_assignments (
    item_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    PRIMARY KEY (item_id, member_id),
    FOREIGN KEY (item_id) REFERENCES bill_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS custom_splits (
    bill_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (bill_id, member_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS contributions (
    bill_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    amount REAL NOT NULL,
    paid_at TEXT,
    PRIMARY KEY (bill_id, member_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_credit (
    bill_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    used REAL NOT NULL DEFAULT 0,
    earned REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (bill_id, member_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS coverage_allocations (
    bill_id TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    covered_id TEXT NOT NULL,
    amount REAL NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlement_records (
    id TEXT PRIMARY KEY,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    amount REAL NOT NULL,
    type TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bill_items_bill_id ON bill_items(bill_id);
CREATE INDEX IF NOT EXISTS idx_item_assignments_item_id ON item_assignments(item_id);
CREATE INDEX IF NOT EXISTS idx_custom_splits_bill_id ON custom_splits(bill_id);
CREATE INDEX IF NOT EXISTS idx_contributions_bill_id ON contributions(bill_id);
CREATE INDEX IF NOT EXISTS idx_bill_credit_bill_id ON bill_credit(bill_id);
CREATE INDEX IF NOT EXISTS idx_coverage_bill_id ON coverage_allocations(bill_id);
CREATE INDEX IF NOT EXISTS idx_bills_due_date ON bills(due_date);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
