package store

import (
	"database/sql"
	"strings"

	"rsm/internal/models"
	"rsm/internal/validation"
)

func validatePart(p *models.Part) *validation.ValidationErrors {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "sku", p.SKU)
	validation.ValidateMaxLength(ve, "sku", p.SKU, 50)
	validation.ValidateMaxLength(ve, "description", p.Description, 500)
	validation.ValidateNonNegativeInt(ve, "quantity", p.Quantity)
	validation.ValidateNonNegativeFloat(ve, "unit_cost", p.UnitCost)
	return ve
}

// CreatePart inserts a new part. The SKU must be unique; the initial
// quantity may not be negative.
func (s *Store) CreatePart(p *models.Part) (int64, error) {
	p.SKU = strings.TrimSpace(p.SKU)
	if ve := validatePart(p); ve.HasErrors() {
		return 0, ve
	}

	ts := now()
	res, err := s.DB.Exec(`INSERT INTO parts (sku, description, quantity, unit_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.SKU, p.Description, p.Quantity, p.UnitCost, ts, ts)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, validation.Errf("sku", "sku %q already exists", p.SKU)
		}
		return 0, persistErr("insert part", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persistErr("part id", err)
	}
	p.ID = id
	return id, nil
}

// GetPart returns the part with the given id.
func (s *Store) GetPart(id int64) (*models.Part, error) {
	var p models.Part
	err := s.DB.QueryRow(`SELECT id, sku, description, quantity, unit_cost, created_at, updated_at
		FROM parts WHERE id = ?`, id).
		Scan(&p.ID, &p.SKU, &p.Description, &p.Quantity, &p.UnitCost, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "part", ID: id}
	}
	if err != nil {
		return nil, persistErr("get part", err)
	}
	return &p, nil
}

// ListParts returns all parts ordered by SKU.
func (s *Store) ListParts() ([]models.Part, error) {
	rows, err := s.DB.Query(`SELECT id, sku, description, quantity, unit_cost, created_at, updated_at
		FROM parts ORDER BY sku, id`)
	if err != nil {
		return nil, persistErr("list parts", err)
	}
	defer rows.Close()

	parts := []models.Part{}
	for rows.Next() {
		var p models.Part
		if err := rows.Scan(&p.ID, &p.SKU, &p.Description, &p.Quantity, &p.UnitCost, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, persistErr("scan part", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// LowStockParts returns parts whose quantity is at or under threshold,
// scarcest first.
func (s *Store) LowStockParts(threshold int) ([]models.Part, error) {
	rows, err := s.DB.Query(`SELECT id, sku, description, quantity, unit_cost, created_at, updated_at
		FROM parts WHERE quantity <= ? ORDER BY quantity, sku`, threshold)
	if err != nil {
		return nil, persistErr("low stock parts", err)
	}
	defer rows.Close()

	parts := []models.Part{}
	for rows.Next() {
		var p models.Part
		if err := rows.Scan(&p.ID, &p.SKU, &p.Description, &p.Quantity, &p.UnitCost, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, persistErr("scan part", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}
