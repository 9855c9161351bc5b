// Package store is the persistence layer: a single SQLite file holding all
// records, opened once by the composition root and passed explicitly to
// every component that needs it.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the database handle and the path it was opened from. The
// zero value is not usable; construct with Open or OpenOptions.
type Store struct {
	DB   *sql.DB
	Path string
}

// Options controls Open behavior.
type Options struct {
	// PreMigrate, when set, runs after pending migrations are detected on a
	// file-backed store and before they are applied. A non-nil error aborts
	// the open. Used to take a safety backup of the database file.
	PreMigrate func(db *sql.DB, fromVersion, toVersion int) error
}

// Open opens (creating if necessary) the SQLite database at path and brings
// its schema up to date. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	return OpenOptions(path, Options{})
}

func OpenOptions(path string, opts Options) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=1")
	if err != nil {
		return nil, persistErr("open database", err)
	}

	// SQLite handles 1 writer + multiple readers with WAL mode.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	// Set the pragmas explicitly as well; not every driver parses
	// connection string params.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, persistErr("enable WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		db.Close()
		return nil, persistErr("set busy_timeout", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, persistErr("enable foreign keys", err)
	}

	s := &Store{DB: db, Path: path}
	if err := s.migrate(opts); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}

// inMemory reports whether the store has no backing file.
func (s *Store) inMemory() bool {
	return s.Path == ":memory:" || strings.Contains(s.Path, "mode=memory")
}

// now is the timestamp format used for created_at/updated_at columns.
func now() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// today is the date format used for date_opened/date_closed/detail dates.
func today() string {
	return time.Now().Format("2006-01-02")
}

// Null helpers for optional columns.

func ns(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func sp(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func ni(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func ip(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// exists reports whether a row with the given id is present. Table names
// are always compile-time constants at the call sites.
func (s *Store) exists(table string, id int64) (bool, error) {
	var one int
	err := s.DB.QueryRow("SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, persistErr("check "+table, err)
	}
	return true, nil
}

// Setting returns the value for key from app_settings, or fallback when the
// key is absent.
func (s *Store) Setting(key, fallback string) string {
	var v string
	err := s.DB.QueryRow("SELECT value FROM app_settings WHERE key=?", key).Scan(&v)
	if err != nil {
		return fallback
	}
	return v
}

// SetSetting upserts a key-value pair in app_settings.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.DB.Exec(`INSERT INTO app_settings (key, value, updated_at) VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, now())
	if err != nil {
		return persistErr(fmt.Sprintf("set setting %s", key), err)
	}
	return nil
}
