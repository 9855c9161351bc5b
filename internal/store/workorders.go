package store

import (
	"database/sql"
	"strings"

	"rsm/internal/models"
	"rsm/internal/validation"
)

// CreateWorkOrder inserts a new work order in the open state. The equipment
// (and technician, when assigned) must already exist.
func (s *Store) CreateWorkOrder(w *models.WorkOrder) (int64, error) {
	w.Description = strings.TrimSpace(w.Description)
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "description", w.Description)
	validation.ValidateMaxLength(ve, "description", w.Description, 1000)
	if w.Status != "" && w.Status != models.WorkOrderOpen {
		ve.Add("status", "new work orders must start open")
	}
	if w.DateOpened != "" {
		validation.ValidateDate(ve, "date_opened", w.DateOpened)
	}
	if ve.HasErrors() {
		return 0, ve
	}

	ok, err := s.exists("equipment", w.EquipmentID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &ReferenceError{Field: "equipment_id", Entity: "equipment", ID: w.EquipmentID}
	}
	if w.TechnicianID != nil {
		ok, err := s.exists("technicians", *w.TechnicianID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, &ReferenceError{Field: "technician_id", Entity: "technician", ID: *w.TechnicianID}
		}
	}

	if w.DateOpened == "" {
		w.DateOpened = today()
	}
	w.Status = models.WorkOrderOpen

	res, err := s.DB.Exec(`INSERT INTO work_orders (equipment_id, technician_id, date_opened, status, description)
		VALUES (?, ?, ?, ?, ?)`,
		w.EquipmentID, ni(w.TechnicianID), w.DateOpened, w.Status, w.Description)
	if err != nil {
		return 0, persistErr("insert work order", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persistErr("work order id", err)
	}
	w.ID = id
	return id, nil
}

// GetWorkOrder returns the work order with its detail log and part usages.
func (s *Store) GetWorkOrder(id int64) (*models.WorkOrder, error) {
	var (
		w      models.WorkOrder
		tech   sql.NullInt64
		closed sql.NullString
	)
	err := s.DB.QueryRow(`SELECT id, equipment_id, technician_id, date_opened, date_closed, status, description
		FROM work_orders WHERE id = ?`, id).
		Scan(&w.ID, &w.EquipmentID, &tech, &w.DateOpened, &closed, &w.Status, &w.Description)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "work order", ID: id}
	}
	if err != nil {
		return nil, persistErr("get work order", err)
	}
	w.TechnicianID = ip(tech)
	w.DateClosed = sp(closed)

	if w.Details, err = s.ListWorkDetails(id); err != nil {
		return nil, err
	}
	if w.Usages, err = s.ListPartUsages(id); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorkOrders returns work orders oldest first, optionally filtered by
// status.
func (s *Store) ListWorkOrders(status string) ([]models.WorkOrder, error) {
	ve := &validation.ValidationErrors{}
	validation.ValidateEnum(ve, "status", status, validation.ValidWorkOrderStatuses)
	if ve.HasErrors() {
		return nil, ve
	}

	query := `SELECT id, equipment_id, technician_id, date_opened, date_closed, status, description FROM work_orders`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, persistErr("list work orders", err)
	}
	defer rows.Close()

	orders := []models.WorkOrder{}
	for rows.Next() {
		var (
			w      models.WorkOrder
			tech   sql.NullInt64
			closed sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.EquipmentID, &tech, &w.DateOpened, &closed, &w.Status, &w.Description); err != nil {
			return nil, persistErr("scan work order", err)
		}
		w.TechnicianID = ip(tech)
		w.DateClosed = sp(closed)
		orders = append(orders, w)
	}
	return orders, rows.Err()
}

// ListWorkDetails returns the detail log for a work order, oldest entry
// first.
func (s *Store) ListWorkDetails(workorderID int64) ([]models.WorkDetail, error) {
	rows, err := s.DB.Query(`SELECT id, workorder_id, date, description
		FROM work_details WHERE workorder_id = ? ORDER BY date, id`, workorderID)
	if err != nil {
		return nil, persistErr("list work details", err)
	}
	defer rows.Close()

	details := []models.WorkDetail{}
	for rows.Next() {
		var d models.WorkDetail
		if err := rows.Scan(&d.ID, &d.WorkOrderID, &d.Date, &d.Description); err != nil {
			return nil, persistErr("scan work detail", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListPartUsages returns the parts consumed by a work order, joined with
// the part's SKU and description, in the order they were recorded.
func (s *Store) ListPartUsages(workorderID int64) ([]models.PartUsage, error) {
	rows, err := s.DB.Query(`SELECT pu.id, pu.workorder_id, pu.part_id, pu.quantity, pu.created_at,
			p.sku, p.description
		FROM part_usages pu
		JOIN parts p ON p.id = pu.part_id
		WHERE pu.workorder_id = ?
		ORDER BY pu.id`, workorderID)
	if err != nil {
		return nil, persistErr("list part usages", err)
	}
	defer rows.Close()

	usages := []models.PartUsage{}
	for rows.Next() {
		var u models.PartUsage
		if err := rows.Scan(&u.ID, &u.WorkOrderID, &u.PartID, &u.Quantity, &u.CreatedAt, &u.SKU, &u.PartDescription); err != nil {
			return nil, persistErr("scan part usage", err)
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}
