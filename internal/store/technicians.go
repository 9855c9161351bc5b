package store

import (
	"database/sql"
	"strings"

	"rsm/internal/models"
	"rsm/internal/validation"
)

// CreateTechnician inserts a new technician.
func (s *Store) CreateTechnician(t *models.Technician) (int64, error) {
	t.Name = strings.TrimSpace(t.Name)
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "name", t.Name)
	validation.ValidateMaxLength(ve, "name", t.Name, 100)
	if ve.HasErrors() {
		return 0, ve
	}

	res, err := s.DB.Exec("INSERT INTO technicians (name, created_at) VALUES (?, ?)", t.Name, now())
	if err != nil {
		return 0, persistErr("insert technician", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persistErr("technician id", err)
	}
	t.ID = id
	return id, nil
}

// GetTechnician returns the technician with the given id.
func (s *Store) GetTechnician(id int64) (*models.Technician, error) {
	var t models.Technician
	err := s.DB.QueryRow("SELECT id, name, created_at FROM technicians WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "technician", ID: id}
	}
	if err != nil {
		return nil, persistErr("get technician", err)
	}
	return &t, nil
}

// ListTechnicians returns all technicians ordered by name.
func (s *Store) ListTechnicians() ([]models.Technician, error) {
	rows, err := s.DB.Query("SELECT id, name, created_at FROM technicians ORDER BY name, id")
	if err != nil {
		return nil, persistErr("list technicians", err)
	}
	defer rows.Close()

	techs := []models.Technician{}
	for rows.Next() {
		var t models.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, persistErr("scan technician", err)
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}
