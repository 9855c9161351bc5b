// Package ledger records part consumption against work orders. Recording a
// usage and decrementing the part's on-hand quantity happen in one
// transaction; either both land or neither does.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"rsm/internal/audit"
	"rsm/internal/store"
	"rsm/internal/validation"
)

// Ledger applies inventory movements to a store.
type Ledger struct {
	Store *store.Store

	// AllowNegative permits consuming more of a part than is on hand,
	// driving the quantity below zero. On by default: a shop often pulls
	// from a bin before the paperwork catches up.
	AllowNegative bool

	Audit *audit.Logger
}

// New returns a Ledger with the default oversell policy.
func New(s *store.Store) *Ledger {
	return &Ledger{Store: s, AllowNegative: true}
}

// ConsumePart records qty units of a part used on a work order and
// decrements the part's stock, atomically. It returns the new usage row's
// id.
//
// qty must be positive. The work order and part must exist. When
// AllowNegative is off and the part's stock is short, nothing changes and
// a validation error is returned.
func (l *Ledger) ConsumePart(workorderID, partID int64, qty int) (int64, error) {
	if qty <= 0 {
		return 0, validation.Errf("quantity", "quantity must be positive, got %d", qty)
	}

	tx, err := l.Store.DB.Begin()
	if err != nil {
		return 0, &store.PersistenceError{Op: "begin consume", Err: err}
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRow("SELECT 1 FROM work_orders WHERE id = ?", workorderID).Scan(&one)
	if err == sql.ErrNoRows {
		return 0, &store.NotFoundError{Entity: "work order", ID: workorderID}
	}
	if err != nil {
		return 0, &store.PersistenceError{Op: "check work order", Err: err}
	}

	touched := time.Now().Format("2006-01-02 15:04:05")
	var res sql.Result
	if l.AllowNegative {
		res, err = tx.Exec(`UPDATE parts SET quantity = quantity - ?, updated_at = ? WHERE id = ?`,
			qty, touched, partID)
	} else {
		res, err = tx.Exec(`UPDATE parts SET quantity = quantity - ?, updated_at = ? WHERE id = ? AND quantity >= ?`,
			qty, touched, partID, qty)
	}
	if err != nil {
		return 0, &store.PersistenceError{Op: "decrement part", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &store.PersistenceError{Op: "decrement part", Err: err}
	}
	if affected == 0 {
		// Either the part does not exist or the stock guard refused the
		// decrement. Look again to tell the two apart.
		var have int
		err = tx.QueryRow("SELECT quantity FROM parts WHERE id = ?", partID).Scan(&have)
		if err == sql.ErrNoRows {
			return 0, &store.NotFoundError{Entity: "part", ID: partID}
		}
		if err != nil {
			return 0, &store.PersistenceError{Op: "check part", Err: err}
		}
		return 0, validation.Errf("quantity", "insufficient stock for part %d: have %d, need %d", partID, have, qty)
	}

	res, err = tx.Exec(`INSERT INTO part_usages (workorder_id, part_id, quantity, created_at)
		VALUES (?, ?, ?, ?)`, workorderID, partID, qty, touched)
	if err != nil {
		return 0, &store.PersistenceError{Op: "insert part usage", Err: err}
	}
	usageID, err := res.LastInsertId()
	if err != nil {
		return 0, &store.PersistenceError{Op: "part usage id", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &store.PersistenceError{Op: "commit consume", Err: err}
	}

	l.Audit.Log(audit.ActionConsume, "part", audit.ID(partID),
		fmt.Sprintf("consumed %d on work order %d", qty, workorderID))
	return usageID, nil
}
