// Package billing manages invoices and their line items. An invoice starts
// as a draft, is issued to the customer, and ends paid or cancelled.
package billing

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"rsm/internal/audit"
	"rsm/internal/models"
	"rsm/internal/store"
	"rsm/internal/validation"
)

var transitions = map[string][]string{
	models.InvoiceDraft:     {models.InvoiceIssued, models.InvoiceCancelled},
	models.InvoiceIssued:    {models.InvoicePaid, models.InvoiceCancelled},
	models.InvoicePaid:      {},
	models.InvoiceCancelled: {},
}

func canTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Billing creates and advances invoices.
type Billing struct {
	Store *store.Store
	Audit *audit.Logger
}

func New(s *store.Store) *Billing {
	return &Billing{Store: s}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// nextNumber produces the next invoice number for the current year, in the
// form INV-2026-00001. Numbering restarts each year.
func nextNumber(tx *sql.Tx) (string, error) {
	year := time.Now().Format("2006")
	var last int
	err := tx.QueryRow(`SELECT COALESCE(MAX(CAST(SUBSTR(number, 10) AS INTEGER)), 0)
		FROM invoices WHERE number LIKE ?`, "INV-"+year+"-%").Scan(&last)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%05d", year, last+1), nil
}

// Create builds a draft invoice for a customer, optionally tied to a work
// order. Lines are stored with computed totals; the invoice total is their
// sum. The whole write is one transaction.
func (b *Billing) Create(customerID int64, workorderID *int64, notes string, lines []models.InvoiceLine) (*models.Invoice, error) {
	ve := &validation.ValidationErrors{}
	if len(lines) == 0 {
		ve.Add("lines", "an invoice needs at least one line")
	}
	for i := range lines {
		lines[i].Description = strings.TrimSpace(lines[i].Description)
		if lines[i].Description == "" {
			ve.Add("lines", fmt.Sprintf("line %d: description is required", i+1))
		}
		if lines[i].Quantity <= 0 {
			ve.Add("lines", fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if lines[i].UnitPrice < 0 {
			ve.Add("lines", fmt.Sprintf("line %d: unit price cannot be negative", i+1))
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if _, err := b.Store.GetCustomer(customerID); err != nil {
		if store.IsNotFound(err) {
			return nil, &store.ReferenceError{Field: "customer_id", Entity: "customer", ID: customerID}
		}
		return nil, err
	}
	if workorderID != nil {
		var one int
		err := b.Store.DB.QueryRow("SELECT 1 FROM work_orders WHERE id = ?", *workorderID).Scan(&one)
		if err == sql.ErrNoRows {
			return nil, &store.ReferenceError{Field: "workorder_id", Entity: "work order", ID: *workorderID}
		}
		if err != nil {
			return nil, &store.PersistenceError{Op: "check work order", Err: err}
		}
	}

	total := 0.0
	for i := range lines {
		lines[i].LineTotal = round2(float64(lines[i].Quantity) * lines[i].UnitPrice)
		total += lines[i].LineTotal
	}
	total = round2(total)

	tx, err := b.Store.DB.Begin()
	if err != nil {
		return nil, &store.PersistenceError{Op: "begin invoice", Err: err}
	}
	defer tx.Rollback()

	number, err := nextNumber(tx)
	if err != nil {
		return nil, &store.PersistenceError{Op: "invoice number", Err: err}
	}
	issued := time.Now().Format("2006-01-02")
	res, err := tx.Exec(`INSERT INTO invoices (number, customer_id, workorder_id, date_issued, status, total, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		number, customerID, nullableID(workorderID), issued, models.InvoiceDraft, total, notes)
	if err != nil {
		return nil, &store.PersistenceError{Op: "insert invoice", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &store.PersistenceError{Op: "invoice id", Err: err}
	}
	for i := range lines {
		lineRes, err := tx.Exec(`INSERT INTO invoice_lines (invoice_id, description, quantity, unit_price, line_total)
			VALUES (?, ?, ?, ?, ?)`,
			id, lines[i].Description, lines[i].Quantity, lines[i].UnitPrice, lines[i].LineTotal)
		if err != nil {
			return nil, &store.PersistenceError{Op: "insert invoice line", Err: err}
		}
		if lines[i].ID, err = lineRes.LastInsertId(); err != nil {
			return nil, &store.PersistenceError{Op: "invoice line id", Err: err}
		}
		lines[i].InvoiceID = id
	}
	if err := tx.Commit(); err != nil {
		return nil, &store.PersistenceError{Op: "commit invoice", Err: err}
	}

	b.Audit.Log(audit.ActionCreate, "invoice", number, fmt.Sprintf("total %.2f", total))
	return &models.Invoice{
		ID: id, Number: number, CustomerID: customerID, WorkOrderID: workorderID,
		DateIssued: issued, Status: models.InvoiceDraft, Total: total, Notes: notes,
		Lines: lines,
	}, nil
}

func nullableID(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// Issue moves a draft invoice to issued and re-stamps its issue date.
func (b *Billing) Issue(id int64) error {
	return b.setStatus(id, models.InvoiceIssued, audit.ActionIssue)
}

// MarkPaid records payment of an issued invoice.
func (b *Billing) MarkPaid(id int64) error {
	return b.setStatus(id, models.InvoicePaid, audit.ActionPay)
}

// Cancel voids a draft or issued invoice.
func (b *Billing) Cancel(id int64) error {
	return b.setStatus(id, models.InvoiceCancelled, audit.ActionCancel)
}

func (b *Billing) setStatus(id int64, to, action string) error {
	var (
		status string
		number string
	)
	err := b.Store.DB.QueryRow("SELECT status, number FROM invoices WHERE id = ?", id).Scan(&status, &number)
	if err == sql.ErrNoRows {
		return &store.NotFoundError{Entity: "invoice", ID: id}
	}
	if err != nil {
		return &store.PersistenceError{Op: "check invoice", Err: err}
	}
	if !canTransition(status, to) {
		return validation.Errf("status", "invoice %s cannot go from %q to %q", number, status, to)
	}

	switch to {
	case models.InvoicePaid:
		_, err = b.Store.DB.Exec("UPDATE invoices SET status = ?, paid_at = ? WHERE id = ?",
			to, time.Now().Format("2006-01-02 15:04:05"), id)
	case models.InvoiceIssued:
		_, err = b.Store.DB.Exec("UPDATE invoices SET status = ?, date_issued = ? WHERE id = ?",
			to, time.Now().Format("2006-01-02"), id)
	default:
		_, err = b.Store.DB.Exec("UPDATE invoices SET status = ? WHERE id = ?", to, id)
	}
	if err != nil {
		return &store.PersistenceError{Op: "update invoice status", Err: err}
	}
	b.Audit.Log(action, "invoice", number, "status "+to)
	return nil
}

// Get returns an invoice with its lines.
func (b *Billing) Get(id int64) (*models.Invoice, error) {
	var (
		inv    models.Invoice
		wo     sql.NullInt64
		paidAt sql.NullString
	)
	err := b.Store.DB.QueryRow(`SELECT id, number, customer_id, workorder_id, date_issued, status, total, notes, created_at, paid_at
		FROM invoices WHERE id = ?`, id).
		Scan(&inv.ID, &inv.Number, &inv.CustomerID, &wo, &inv.DateIssued, &inv.Status,
			&inv.Total, &inv.Notes, &inv.CreatedAt, &paidAt)
	if err == sql.ErrNoRows {
		return nil, &store.NotFoundError{Entity: "invoice", ID: id}
	}
	if err != nil {
		return nil, &store.PersistenceError{Op: "get invoice", Err: err}
	}
	if wo.Valid {
		v := wo.Int64
		inv.WorkOrderID = &v
	}
	if paidAt.Valid {
		v := paidAt.String
		inv.PaidAt = &v
	}

	rows, err := b.Store.DB.Query(`SELECT id, invoice_id, description, quantity, unit_price, line_total
		FROM invoice_lines WHERE invoice_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, &store.PersistenceError{Op: "invoice lines", Err: err}
	}
	defer rows.Close()
	inv.Lines = []models.InvoiceLine{}
	for rows.Next() {
		var l models.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, &store.PersistenceError{Op: "scan invoice line", Err: err}
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.PersistenceError{Op: "invoice lines", Err: err}
	}
	return &inv, nil
}

// List returns invoices newest first, optionally filtered by status. Lines
// are not loaded.
func (b *Billing) List(status string) ([]models.Invoice, error) {
	query := `SELECT id, number, customer_id, workorder_id, date_issued, status, total, notes, created_at, paid_at FROM invoices`
	args := []any{}
	if status != "" {
		ve := &validation.ValidationErrors{}
		validation.ValidateEnum(ve, "status", status, validation.ValidInvoiceStatuses)
		if ve.HasErrors() {
			return nil, ve
		}
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC"

	rows, err := b.Store.DB.Query(query, args...)
	if err != nil {
		return nil, &store.PersistenceError{Op: "list invoices", Err: err}
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		var (
			inv    models.Invoice
			wo     sql.NullInt64
			paidAt sql.NullString
		)
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &wo, &inv.DateIssued, &inv.Status,
			&inv.Total, &inv.Notes, &inv.CreatedAt, &paidAt); err != nil {
			return nil, &store.PersistenceError{Op: "scan invoice", Err: err}
		}
		if wo.Valid {
			v := wo.Int64
			inv.WorkOrderID = &v
		}
		if paidAt.Valid {
			v := paidAt.String
			inv.PaidAt = &v
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
