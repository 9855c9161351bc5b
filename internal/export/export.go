// Package export moves records across the file boundary: delimited text
// and XLSX going out, delimited text coming back in. Imports are
// all-or-nothing; one bad row rolls back the whole file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"rsm/internal/audit"
	"rsm/internal/store"
	"rsm/internal/validation"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// WriteDelimited writes a header row followed by data rows as CSV.
func WriteDelimited(w io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadDelimited reads a CSV stream and splits it into the header row and
// the data rows.
func ReadDelimited(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file: no header row")
	}
	return records[0], records[1:], nil
}

// WriteDelimitedFile writes headers and rows to a CSV file at path.
func WriteDelimitedFile(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteDelimited(f, headers, rows)
}

// ReadDelimitedFile reads the CSV file at path.
func ReadDelimitedFile(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadDelimited(f)
}

// WriteXLSX writes headers and rows to a single styled sheet.
func WriteXLSX(w io.Writer, sheetName string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	return f.Write(w)
}

// Exporter produces entity files and reads them back in.
type Exporter struct {
	Store *store.Store
	Audit *audit.Logger
}

func New(s *store.Store) *Exporter {
	return &Exporter{Store: s}
}

func (e *Exporter) dispatch(w io.Writer, format, sheet string, headers []string, rows [][]string) error {
	switch format {
	case "", FormatCSV:
		return WriteDelimited(w, headers, rows)
	case FormatXLSX:
		return WriteXLSX(w, sheet, headers, rows)
	default:
		return validation.Errf("format", "unknown format %q (want csv or xlsx)", format)
	}
}

var customerColumns = []string{"id", "first_name", "last_name", "phone", "address", "email"}

// Customers writes every customer in the given format and returns the row
// count.
func (e *Exporter) Customers(w io.Writer, format string) (int, error) {
	customers, err := e.Store.ListCustomers()
	if err != nil {
		return 0, err
	}
	headers := customerColumns
	rows := [][]string{}
	for _, c := range customers {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10), c.FirstName, c.LastName, c.Phone, c.Address, c.Email,
		})
	}
	if err := e.dispatch(w, format, "Customers", headers, rows); err != nil {
		return 0, err
	}
	e.Audit.Log(audit.ActionExport, "customer", "all", fmt.Sprintf("%d rows as %s", len(rows), formatName(format)))
	return len(rows), nil
}

var partColumns = []string{"id", "sku", "description", "quantity", "unit_cost"}

// Parts writes every part in the given format and returns the row count.
func (e *Exporter) Parts(w io.Writer, format string) (int, error) {
	parts, err := e.Store.ListParts()
	if err != nil {
		return 0, err
	}
	headers := partColumns
	rows := [][]string{}
	for _, p := range parts {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10), p.SKU, p.Description,
			strconv.Itoa(p.Quantity), strconv.FormatFloat(p.UnitCost, 'f', 2, 64),
		})
	}
	if err := e.dispatch(w, format, "Parts", headers, rows); err != nil {
		return 0, err
	}
	e.Audit.Log(audit.ActionExport, "part", "all", fmt.Sprintf("%d rows as %s", len(rows), formatName(format)))
	return len(rows), nil
}

// WorkOrders writes work orders, optionally filtered by status, and
// returns the row count.
func (e *Exporter) WorkOrders(w io.Writer, format, status string) (int, error) {
	orders, err := e.Store.ListWorkOrders(status)
	if err != nil {
		return 0, err
	}
	headers := []string{"id", "equipment_id", "technician_id", "date_opened", "date_closed", "status", "description"}
	rows := [][]string{}
	for _, o := range orders {
		tech, closed := "", ""
		if o.TechnicianID != nil {
			tech = strconv.FormatInt(*o.TechnicianID, 10)
		}
		if o.DateClosed != nil {
			closed = *o.DateClosed
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10), strconv.FormatInt(o.EquipmentID, 10),
			tech, o.DateOpened, closed, o.Status, o.Description,
		})
	}
	if err := e.dispatch(w, format, "WorkOrders", headers, rows); err != nil {
		return 0, err
	}
	e.Audit.Log(audit.ActionExport, "work_order", "all", fmt.Sprintf("%d rows as %s", len(rows), formatName(format)))
	return len(rows), nil
}

func formatName(format string) string {
	if format == "" {
		return FormatCSV
	}
	return format
}

// columnIndex maps canonical column names to their position in the header
// row, case-insensitively. Every wanted column must be present.
func columnIndex(headers, want []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	missing := []string{}
	for _, col := range want {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, validation.Errf("header", "missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ImportCustomers upserts customers from a CSV stream. Rows carrying an id
// update that record (or recreate it under the same id); rows without one
// insert. The whole file is applied in a single transaction.
func (e *Exporter) ImportCustomers(r io.Reader) (inserted, updated int, err error) {
	headers, rows, err := ReadDelimited(r)
	if err != nil {
		return 0, 0, err
	}
	idx, err := columnIndex(headers, customerColumns)
	if err != nil {
		return 0, 0, err
	}

	tx, err := e.Store.DB.Begin()
	if err != nil {
		return 0, 0, &store.PersistenceError{Op: "begin import", Err: err}
	}
	defer tx.Rollback()

	for n, row := range rows {
		line := n + 2 // 1-based, after the header
		first := cell(row, idx["first_name"])
		last := cell(row, idx["last_name"])
		if first == "" || last == "" {
			return 0, 0, validation.Errf("row", "row %d: first_name and last_name are required", line)
		}
		phone := cell(row, idx["phone"])
		address := cell(row, idx["address"])
		email := cell(row, idx["email"])

		rawID := cell(row, idx["id"])
		if rawID == "" || rawID == "0" {
			if _, err := tx.Exec(`INSERT INTO customers (first_name, last_name, phone, address, email)
				VALUES (?, ?, ?, ?, ?)`, first, last, phone, address, email); err != nil {
				return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
			}
			inserted++
			continue
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return 0, 0, validation.Errf("row", "row %d: bad id %q", line, rawID)
		}
		res, err := tx.Exec(`UPDATE customers SET first_name = ?, last_name = ?, phone = ?, address = ?, email = ?
			WHERE id = ?`, first, last, phone, address, email, id)
		if err != nil {
			return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
		}
		if affected == 0 {
			if _, err := tx.Exec(`INSERT INTO customers (id, first_name, last_name, phone, address, email)
				VALUES (?, ?, ?, ?, ?, ?)`, id, first, last, phone, address, email); err != nil {
				return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
			}
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, &store.PersistenceError{Op: "commit import", Err: err}
	}
	e.Audit.Log(audit.ActionImport, "customer", "all", fmt.Sprintf("%d inserted, %d updated", inserted, updated))
	return inserted, updated, nil
}

// ImportParts upserts parts from a CSV stream, same rules as
// ImportCustomers. Quantities must be non-negative integers.
func (e *Exporter) ImportParts(r io.Reader) (inserted, updated int, err error) {
	headers, rows, err := ReadDelimited(r)
	if err != nil {
		return 0, 0, err
	}
	idx, err := columnIndex(headers, partColumns)
	if err != nil {
		return 0, 0, err
	}

	tx, err := e.Store.DB.Begin()
	if err != nil {
		return 0, 0, &store.PersistenceError{Op: "begin import", Err: err}
	}
	defer tx.Rollback()

	for n, row := range rows {
		line := n + 2
		sku := cell(row, idx["sku"])
		if sku == "" {
			return 0, 0, validation.Errf("row", "row %d: sku is required", line)
		}
		description := cell(row, idx["description"])
		qty, err := strconv.Atoi(cell(row, idx["quantity"]))
		if err != nil || qty < 0 {
			return 0, 0, validation.Errf("row", "row %d: quantity must be a non-negative integer", line)
		}
		cost := 0.0
		if raw := cell(row, idx["unit_cost"]); raw != "" {
			if cost, err = strconv.ParseFloat(raw, 64); err != nil || cost < 0 {
				return 0, 0, validation.Errf("row", "row %d: unit_cost must be a non-negative number", line)
			}
		}

		rawID := cell(row, idx["id"])
		if rawID == "" || rawID == "0" {
			if _, err := tx.Exec(`INSERT INTO parts (sku, description, quantity, unit_cost)
				VALUES (?, ?, ?, ?)`, sku, description, qty, cost); err != nil {
				return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
			}
			inserted++
			continue
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return 0, 0, validation.Errf("row", "row %d: bad id %q", line, rawID)
		}
		res, err := tx.Exec(`UPDATE parts SET sku = ?, description = ?, quantity = ?, unit_cost = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`, sku, description, qty, cost, id)
		if err != nil {
			return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
		}
		if affected == 0 {
			if _, err := tx.Exec(`INSERT INTO parts (id, sku, description, quantity, unit_cost)
				VALUES (?, ?, ?, ?, ?)`, id, sku, description, qty, cost); err != nil {
				return 0, 0, &store.PersistenceError{Op: fmt.Sprintf("import row %d", line), Err: err}
			}
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, &store.PersistenceError{Op: "commit import", Err: err}
	}
	e.Audit.Log(audit.ActionImport, "part", "all", fmt.Sprintf("%d inserted, %d updated", inserted, updated))
	return inserted, updated, nil
}
