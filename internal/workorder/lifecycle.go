// Package workorder drives a work order through its lifecycle: opened
// against a piece of equipment, annotated with dated detail entries and
// part usages, and eventually closed. Closed is terminal.
package workorder

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rsm/internal/audit"
	"rsm/internal/ledger"
	"rsm/internal/models"
	"rsm/internal/store"
	"rsm/internal/validation"
)

// transitions maps a status to the statuses it may move to.
var transitions = map[string][]string{
	models.WorkOrderOpen:   {models.WorkOrderClosed},
	models.WorkOrderClosed: {},
}

func canTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Lifecycle owns work-order state changes.
type Lifecycle struct {
	Store  *store.Store
	Ledger *ledger.Ledger
	Audit  *audit.Logger
}

func New(s *store.Store, l *ledger.Ledger) *Lifecycle {
	return &Lifecycle{Store: s, Ledger: l}
}

func today() string {
	return time.Now().Format("2006-01-02")
}

// Open creates a work order in the open state for existing equipment,
// optionally assigned to a technician, and returns its id.
func (f *Lifecycle) Open(equipmentID int64, technicianID *int64, description string) (int64, error) {
	w := models.WorkOrder{
		EquipmentID:  equipmentID,
		TechnicianID: technicianID,
		Description:  description,
	}
	id, err := f.Store.CreateWorkOrder(&w)
	if err != nil {
		return 0, err
	}
	f.Audit.Log(audit.ActionCreate, "work_order", audit.ID(id), w.Description)
	return id, nil
}

// LogDetail appends a dated entry to the work order's repair log. Entries
// may be added in any state; closing a work order does not freeze its log.
func (f *Lifecycle) LogDetail(workorderID int64, description string) (int64, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, validation.Errf("description", "description is required")
	}

	var one int
	err := f.Store.DB.QueryRow("SELECT 1 FROM work_orders WHERE id = ?", workorderID).Scan(&one)
	if err == sql.ErrNoRows {
		return 0, &store.NotFoundError{Entity: "work order", ID: workorderID}
	}
	if err != nil {
		return 0, &store.PersistenceError{Op: "check work order", Err: err}
	}

	res, err := f.Store.DB.Exec(`INSERT INTO work_details (workorder_id, date, description)
		VALUES (?, ?, ?)`, workorderID, today(), description)
	if err != nil {
		return 0, &store.PersistenceError{Op: "insert work detail", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &store.PersistenceError{Op: "work detail id", Err: err}
	}
	f.Audit.Log(audit.ActionUpdate, "work_order", audit.ID(workorderID), "detail logged")
	return id, nil
}

// Close moves an open work order to closed and stamps date_closed. Closing
// an unknown id is an error, not a no-op; closing twice is rejected by the
// transition table.
func (f *Lifecycle) Close(workorderID int64) error {
	var status string
	err := f.Store.DB.QueryRow("SELECT status FROM work_orders WHERE id = ?", workorderID).Scan(&status)
	if err == sql.ErrNoRows {
		return &store.NotFoundError{Entity: "work order", ID: workorderID}
	}
	if err != nil {
		return &store.PersistenceError{Op: "check work order", Err: err}
	}
	if !canTransition(status, models.WorkOrderClosed) {
		return validation.Errf("status", "cannot close work order %d: status is %q", workorderID, status)
	}

	_, err = f.Store.DB.Exec(`UPDATE work_orders SET status = ?, date_closed = ? WHERE id = ?`,
		models.WorkOrderClosed, today(), workorderID)
	if err != nil {
		return &store.PersistenceError{Op: "close work order", Err: err}
	}
	f.Audit.Log(audit.ActionClose, "work_order", audit.ID(workorderID),
		fmt.Sprintf("closed on %s", today()))
	return nil
}

// RecordPartUsage charges qty units of a part to the work order through the
// inventory ledger.
func (f *Lifecycle) RecordPartUsage(workorderID, partID int64, qty int) (int64, error) {
	return f.Ledger.ConsumePart(workorderID, partID, qty)
}
