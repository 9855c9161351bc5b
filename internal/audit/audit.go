// Package audit appends a row to the change log for every mutating
// operation. Audit writes are best-effort: a failure is logged and never
// propagated, so a full log can never block shop work.
package audit

import (
	"database/sql"
	"log"
	"strconv"
	"strings"

	"rsm/internal/events"
	"rsm/internal/models"
	"rsm/internal/store"
)

// Actions recorded in the change log.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionClose   = "close"
	ActionConsume = "consume"
	ActionIssue   = "issue"
	ActionPay     = "pay"
	ActionCancel  = "cancel"
	ActionImport  = "import"
	ActionExport  = "export"
	ActionBackup  = "backup"
	ActionRestore = "restore"
	ActionSeed    = "seed"
)

// Logger writes change-log rows and broadcasts the change on the hub.
// A nil Logger is a valid no-op.
type Logger struct {
	DB       *sql.DB
	Operator string
	Hub      *events.Hub
}

// ID formats a numeric record id for the change log.
func ID(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Log records one change. Errors are logged, not returned.
func (a *Logger) Log(action, entity, recordID, summary string) {
	if a == nil || a.DB == nil {
		return
	}
	op := a.Operator
	if op == "" {
		op = "system"
	}
	_, err := a.DB.Exec(`INSERT INTO change_log (operator, action, entity, record_id, summary)
		VALUES (?, ?, ?, ?, ?)`, op, action, entity, recordID, summary)
	if err != nil {
		log.Printf("audit: record %s %s %s: %v", action, entity, recordID, err)
		return
	}
	a.Hub.Broadcast(events.Event{Entity: entity, Action: action, RecordID: recordID})
}

// Filter narrows a change-log listing. Zero values mean "any".
type Filter struct {
	Entity string
	Action string
	Search string // matched against summary and record_id
	From   string // inclusive lower bound on created_at
	To     string // inclusive upper bound on created_at
	Limit  int
}

// List returns change-log rows newest first.
func (a *Logger) List(f Filter) ([]models.ChangeEntry, error) {
	query := `SELECT id, operator, action, entity, record_id, summary, created_at FROM change_log`
	conditions := []string{}
	args := []any{}

	if f.Entity != "" {
		conditions = append(conditions, "entity = ?")
		args = append(args, f.Entity)
	}
	if f.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, f.Action)
	}
	if f.Search != "" {
		conditions = append(conditions, "(summary LIKE ? OR record_id LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.From != "" {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, f.To+" 23:59:59")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := a.DB.Query(query, args...)
	if err != nil {
		return nil, &store.PersistenceError{Op: "list changes", Err: err}
	}
	defer rows.Close()

	entries := []models.ChangeEntry{}
	for rows.Next() {
		var e models.ChangeEntry
		if err := rows.Scan(&e.ID, &e.Operator, &e.Action, &e.Entity, &e.RecordID, &e.Summary, &e.CreatedAt); err != nil {
			return nil, &store.PersistenceError{Op: "scan change entry", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.PersistenceError{Op: "list changes", Err: err}
	}
	return entries, nil
}
