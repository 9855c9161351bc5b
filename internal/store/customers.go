package store

import (
	"database/sql"
	"strings"

	"rsm/internal/models"
	"rsm/internal/validation"
)

func validateCustomer(c *models.Customer) *validation.ValidationErrors {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "first_name", c.FirstName)
	validation.RequireField(ve, "last_name", c.LastName)
	validation.ValidateMaxLength(ve, "first_name", c.FirstName, 100)
	validation.ValidateMaxLength(ve, "last_name", c.LastName, 100)
	validation.ValidateMaxLength(ve, "phone", c.Phone, 50)
	validation.ValidateMaxLength(ve, "address", c.Address, 500)
	validation.ValidateEmail(ve, "email", c.Email)
	return ve
}

// CreateCustomer inserts a new customer and fills in its assigned ID.
func (s *Store) CreateCustomer(c *models.Customer) (int64, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	if ve := validateCustomer(c); ve.HasErrors() {
		return 0, ve
	}

	res, err := s.DB.Exec(`INSERT INTO customers (first_name, last_name, phone, address, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.FirstName, c.LastName, c.Phone, c.Address, c.Email, now())
	if err != nil {
		return 0, persistErr("insert customer", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persistErr("customer id", err)
	}
	c.ID = id
	return id, nil
}

// GetCustomer returns the customer with the given id.
func (s *Store) GetCustomer(id int64) (*models.Customer, error) {
	var c models.Customer
	err := s.DB.QueryRow(`SELECT id, first_name, last_name, phone, address, email, created_at
		FROM customers WHERE id = ?`, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Address, &c.Email, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "customer", ID: id}
	}
	if err != nil {
		return nil, persistErr("get customer", err)
	}
	return &c, nil
}

// ListCustomers returns all customers ordered by last then first name.
func (s *Store) ListCustomers() ([]models.Customer, error) {
	rows, err := s.DB.Query(`SELECT id, first_name, last_name, phone, address, email, created_at
		FROM customers ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, persistErr("list customers", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Address, &c.Email, &c.CreatedAt); err != nil {
			return nil, persistErr("scan customer", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CountCustomers returns the number of customer records.
func (s *Store) CountCustomers() (int, error) {
	var n int
	if err := s.DB.QueryRow("SELECT COUNT(*) FROM customers").Scan(&n); err != nil {
		return 0, persistErr("count customers", err)
	}
	return n, nil
}
