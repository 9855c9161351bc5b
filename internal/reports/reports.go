// Package reports answers the read-side questions the shop actually asks:
// what is on the bench right now, what has a customer brought in before,
// what happened on this work order, and where is the record matching a
// scrap of remembered text.
package reports

import (
	"database/sql"
	"strings"

	"rsm/internal/models"
	"rsm/internal/store"
)

// Reports serves read-only queries. It never mutates the store.
type Reports struct {
	Store *store.Store
}

func New(s *store.Store) *Reports {
	return &Reports{Store: s}
}

const summarySelect = `SELECT wo.id, wo.status, wo.date_opened, wo.date_closed, wo.description,
		e.id, e.make, e.model, e.serial,
		c.id, c.first_name || ' ' || c.last_name,
		t.name
	FROM work_orders wo
	JOIN equipment e ON e.id = wo.equipment_id
	JOIN customers c ON c.id = e.customer_id
	LEFT JOIN technicians t ON t.id = wo.technician_id`

func scanSummaries(rows *sql.Rows) ([]models.WorkOrderSummary, error) {
	defer rows.Close()
	summaries := []models.WorkOrderSummary{}
	for rows.Next() {
		var (
			s      models.WorkOrderSummary
			closed sql.NullString
			tech   sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Status, &s.DateOpened, &closed, &s.Description,
			&s.EquipmentID, &s.EquipmentMake, &s.EquipmentModel, &s.EquipmentSerial,
			&s.CustomerID, &s.CustomerName, &tech); err != nil {
			return nil, &store.PersistenceError{Op: "scan work order summary", Err: err}
		}
		if closed.Valid {
			v := closed.String
			s.DateClosed = &v
		}
		if tech.Valid {
			v := tech.String
			s.TechnicianName = &v
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.PersistenceError{Op: "work order summaries", Err: err}
	}
	return summaries, nil
}

// OpenWorkOrders returns every open work order, oldest first, so the
// longest-waiting job tops the list.
func (r *Reports) OpenWorkOrders() ([]models.WorkOrderSummary, error) {
	rows, err := r.Store.DB.Query(summarySelect+`
		WHERE wo.status = ?
		ORDER BY wo.date_opened, wo.id`, models.WorkOrderOpen)
	if err != nil {
		return nil, &store.PersistenceError{Op: "open work orders", Err: err}
	}
	return scanSummaries(rows)
}

// WorkOrderHistory returns every work order ever opened against the
// customer's equipment, newest first.
func (r *Reports) WorkOrderHistory(customerID int64) ([]models.WorkOrderSummary, error) {
	if _, err := r.Store.GetCustomer(customerID); err != nil {
		return nil, err
	}
	rows, err := r.Store.DB.Query(summarySelect+`
		WHERE c.id = ?
		ORDER BY wo.date_opened DESC, wo.id DESC`, customerID)
	if err != nil {
		return nil, &store.PersistenceError{Op: "work order history", Err: err}
	}
	return scanSummaries(rows)
}

// WorkDetails returns a work order's repair log in the order it was
// written.
func (r *Reports) WorkDetails(workorderID int64) ([]models.WorkDetail, error) {
	if err := r.requireWorkOrder(workorderID); err != nil {
		return nil, err
	}
	return r.Store.ListWorkDetails(workorderID)
}

// PartUsages returns the parts charged to a work order with their SKU and
// description.
func (r *Reports) PartUsages(workorderID int64) ([]models.PartUsage, error) {
	if err := r.requireWorkOrder(workorderID); err != nil {
		return nil, err
	}
	return r.Store.ListPartUsages(workorderID)
}

func (r *Reports) requireWorkOrder(id int64) error {
	var one int
	err := r.Store.DB.QueryRow("SELECT 1 FROM work_orders WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return &store.NotFoundError{Entity: "work order", ID: id}
	}
	if err != nil {
		return &store.PersistenceError{Op: "check work order", Err: err}
	}
	return nil
}

// Search finds customers and work orders whose text fields contain term,
// case-insensitively. Customers match on name, phone, and email; work
// orders on description, equipment serial, and the order id itself.
func (r *Reports) Search(term string) (*models.SearchResults, error) {
	results := &models.SearchResults{
		Customers:  []models.Customer{},
		WorkOrders: []models.WorkOrderSummary{},
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return results, nil
	}
	pattern := "%" + strings.ToLower(term) + "%"

	rows, err := r.Store.DB.Query(`SELECT id, first_name, last_name, phone, address, email, created_at
		FROM customers
		WHERE LOWER(first_name) LIKE ?
		   OR LOWER(last_name) LIKE ?
		   OR LOWER(first_name || ' ' || last_name) LIKE ?
		   OR LOWER(phone) LIKE ?
		   OR LOWER(email) LIKE ?
		ORDER BY last_name, first_name, id`,
		pattern, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, &store.PersistenceError{Op: "search customers", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Address, &c.Email, &c.CreatedAt); err != nil {
			return nil, &store.PersistenceError{Op: "scan customer", Err: err}
		}
		results.Customers = append(results.Customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.PersistenceError{Op: "search customers", Err: err}
	}

	woRows, err := r.Store.DB.Query(summarySelect+`
		WHERE LOWER(wo.description) LIKE ?
		   OR LOWER(e.serial) LIKE ?
		   OR CAST(wo.id AS TEXT) LIKE ?
		ORDER BY wo.id`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, &store.PersistenceError{Op: "search work orders", Err: err}
	}
	if results.WorkOrders, err = scanSummaries(woRows); err != nil {
		return nil, err
	}
	return results, nil
}

// Dashboard gathers the counts and hot lists shown on the shop's landing
// screen. threshold is the low-stock cutoff (quantity at or under).
func (r *Reports) Dashboard(threshold int) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{WorkOrdersByStatus: map[string]int{}}

	counts := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM customers", &stats.Customers},
		{"SELECT COUNT(*) FROM equipment", &stats.Equipment},
		{"SELECT COUNT(*) FROM technicians", &stats.Technicians},
		{"SELECT COUNT(*) FROM parts", &stats.Parts},
	}
	for _, c := range counts {
		if err := r.Store.DB.QueryRow(c.query).Scan(c.dst); err != nil {
			return nil, &store.PersistenceError{Op: "dashboard counts", Err: err}
		}
	}

	rows, err := r.Store.DB.Query("SELECT status, COUNT(*) FROM work_orders GROUP BY status")
	if err != nil {
		return nil, &store.PersistenceError{Op: "work orders by status", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, &store.PersistenceError{Op: "scan status count", Err: err}
		}
		stats.WorkOrdersByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, &store.PersistenceError{Op: "work orders by status", Err: err}
	}

	if stats.LowStock, err = r.Store.LowStockParts(threshold); err != nil {
		return nil, err
	}

	recent, err := r.Store.DB.Query(summarySelect + ` ORDER BY wo.id DESC LIMIT 5`)
	if err != nil {
		return nil, &store.PersistenceError{Op: "recent work orders", Err: err}
	}
	if stats.RecentWorkOrders, err = scanSummaries(recent); err != nil {
		return nil, err
	}
	return stats, nil
}
