package store

import (
	"database/sql"
	"fmt"
	"log"
)

// A migration is an ordered, versioned set of schema statements. Versions
// are applied in sequence and recorded in schema_version; never edit a
// shipped migration, append a new one.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{1, "base schema", []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			phone TEXT DEFAULT '',
			address TEXT DEFAULT '',
			email TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS equipment (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL,
			make TEXT NOT NULL,
			model TEXT DEFAULT '',
			cpu TEXT DEFAULT '',
			ram TEXT DEFAULT '',
			storage TEXT DEFAULT '',
			os TEXT DEFAULT '',
			serial TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (customer_id) REFERENCES customers(id)
		)`,
		`CREATE TABLE IF NOT EXISTS technicians (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS parts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sku TEXT NOT NULL UNIQUE,
			description TEXT DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0,
			unit_cost REAL DEFAULT 0 CHECK(unit_cost >= 0),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS work_orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			equipment_id INTEGER NOT NULL,
			technician_id INTEGER,
			date_opened TEXT NOT NULL,
			date_closed TEXT,
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open','closed')),
			description TEXT DEFAULT '',
			FOREIGN KEY (equipment_id) REFERENCES equipment(id),
			FOREIGN KEY (technician_id) REFERENCES technicians(id)
		)`,
		`CREATE TABLE IF NOT EXISTS work_details (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workorder_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			description TEXT NOT NULL,
			FOREIGN KEY (workorder_id) REFERENCES work_orders(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS part_usages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workorder_id INTEGER NOT NULL,
			part_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL CHECK(quantity > 0),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (workorder_id) REFERENCES work_orders(id),
			FOREIGN KEY (part_id) REFERENCES parts(id)
		)`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS change_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			operator TEXT DEFAULT 'system',
			action TEXT NOT NULL,
			entity TEXT NOT NULL,
			record_id TEXT NOT NULL,
			summary TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}},
	{2, "invoices", []string{
		`CREATE TABLE IF NOT EXISTS invoices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			number TEXT NOT NULL UNIQUE,
			customer_id INTEGER NOT NULL,
			workorder_id INTEGER,
			date_issued TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft','issued','paid','cancelled')),
			total REAL NOT NULL DEFAULT 0,
			notes TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			paid_at DATETIME,
			FOREIGN KEY (customer_id) REFERENCES customers(id),
			FOREIGN KEY (workorder_id) REFERENCES work_orders(id)
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_lines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK(quantity > 0),
			unit_price REAL NOT NULL CHECK(unit_price >= 0),
			line_total REAL NOT NULL,
			FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE
		)`,
	}},
	{3, "indexes", []string{
		`CREATE INDEX IF NOT EXISTS idx_equipment_customer ON equipment(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_work_orders_equipment ON work_orders(equipment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_work_orders_status ON work_orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_work_details_wo ON work_details(workorder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_part_usages_wo ON part_usages(workorder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_part_usages_part ON part_usages(part_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_change_log_entity ON change_log(entity, record_id)`,
	}},
}

// LatestSchemaVersion is the version a freshly migrated store reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the highest applied migration version, 0 for a
// fresh database.
func (s *Store) SchemaVersion() (int, error) {
	var v sql.NullInt64
	err := s.DB.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v)
	if err != nil {
		return 0, persistErr("read schema version", err)
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

func (s *Store) migrate(opts Options) error {
	if _, err := s.DB.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return persistErr("create schema_version", err)
	}

	cur, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	target := LatestSchemaVersion()
	if cur == target {
		return nil
	}
	if cur > target {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", cur, target)
	}

	// Back up a populated file-backed database before touching its schema.
	if opts.PreMigrate != nil && cur > 0 && !s.inMemory() {
		if err := opts.PreMigrate(s.DB, cur, target); err != nil {
			return fmt.Errorf("pre-migration backup: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= cur {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return err
		}
		log.Printf("applied migration %d (%s)", m.version, m.name)
	}
	return nil
}

func (s *Store) applyMigration(m migration) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return persistErr(fmt.Sprintf("begin migration %d", m.version), err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return persistErr(fmt.Sprintf("migration %d (%s)", m.version, m.name), err)
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
		return persistErr(fmt.Sprintf("record migration %d", m.version), err)
	}
	if err := tx.Commit(); err != nil {
		return persistErr(fmt.Sprintf("commit migration %d", m.version), err)
	}
	return nil
}
