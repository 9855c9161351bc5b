package store

import (
	"database/sql"
	"strings"

	"rsm/internal/models"
	"rsm/internal/validation"
)

func validateEquipment(e *models.Equipment) *validation.ValidationErrors {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "make", e.Make)
	validation.ValidateMaxLength(ve, "make", e.Make, 100)
	validation.ValidateMaxLength(ve, "model", e.Model, 100)
	validation.ValidateMaxLength(ve, "serial", e.Serial, 100)
	return ve
}

// CreateEquipment inserts an equipment record owned by an existing customer.
func (s *Store) CreateEquipment(e *models.Equipment) (int64, error) {
	e.Make = strings.TrimSpace(e.Make)
	e.Serial = strings.TrimSpace(e.Serial)
	if ve := validateEquipment(e); ve.HasErrors() {
		return 0, ve
	}
	ok, err := s.exists("customers", e.CustomerID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &ReferenceError{Field: "customer_id", Entity: "customer", ID: e.CustomerID}
	}

	res, err := s.DB.Exec(`INSERT INTO equipment (customer_id, make, model, cpu, ram, storage, os, serial, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CustomerID, e.Make, e.Model, e.CPU, e.RAM, e.Storage, e.OS, e.Serial, now())
	if err != nil {
		return 0, persistErr("insert equipment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persistErr("equipment id", err)
	}
	e.ID = id
	return id, nil
}

// GetEquipment returns the equipment record with the given id.
func (s *Store) GetEquipment(id int64) (*models.Equipment, error) {
	var e models.Equipment
	err := s.DB.QueryRow(`SELECT id, customer_id, make, model, cpu, ram, storage, os, serial, created_at
		FROM equipment WHERE id = ?`, id).
		Scan(&e.ID, &e.CustomerID, &e.Make, &e.Model, &e.CPU, &e.RAM, &e.Storage, &e.OS, &e.Serial, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "equipment", ID: id}
	}
	if err != nil {
		return nil, persistErr("get equipment", err)
	}
	return &e, nil
}

// ListEquipment returns all equipment, optionally restricted to one customer
// when customerID > 0.
func (s *Store) ListEquipment(customerID int64) ([]models.Equipment, error) {
	query := `SELECT id, customer_id, make, model, cpu, ram, storage, os, serial, created_at FROM equipment`
	args := []any{}
	if customerID > 0 {
		query += " WHERE customer_id = ?"
		args = append(args, customerID)
	}
	query += " ORDER BY id"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, persistErr("list equipment", err)
	}
	defer rows.Close()

	items := []models.Equipment{}
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Make, &e.Model, &e.CPU, &e.RAM, &e.Storage, &e.OS, &e.Serial, &e.CreatedAt); err != nil {
			return nil, persistErr("scan equipment", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
